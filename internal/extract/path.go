package extract

import (
	"github.com/ppiankov/relcontext/internal/tree"
)

// Path linearizes the dependency path between two anchors. It is read
// off the governing subtree of the pair, see PathOf.
func Path(t *tree.Tree, n1, n2 tree.NodeID) ([]tree.Node, error) {
	g, err := Governing(t, n1, n2)
	if err != nil {
		return nil, err
	}
	return PathOf(g.Tree), nil
}

// PathOf linearizes a governing subtree. With two branches under the
// governor the path climbs from the leftmost leaf to the governor, then
// descends the second branch through first children down to a leaf. A
// single branch is climbed from the leftmost leaf when it starts before
// the governor and descended from the governor otherwise.
//
// Path nodes carry no children; a node with a role has its label and
// role swapped.
func PathOf(g *tree.Tree) []tree.Node {
	root := g.Root()
	if root == tree.None {
		return nil
	}
	kids := g.Children(root)

	var ids []tree.NodeID
	switch {
	case len(kids) >= 2:
		ids = append(climb(g, leftmostLeaf(g, root)), descend(g, kids[1])...)
	case len(kids) == 1 && g.Node(kids[0]).Span.Start < g.Node(root).Span.Start:
		ids = climb(g, leftmostLeaf(g, root))
	default:
		ids = descend(g, root)
	}

	path := make([]tree.Node, len(ids))
	for i, id := range ids {
		path[i] = swapRole(*g.Node(id))
	}
	return path
}

// climb returns id and its ancestors up to the root, bottom-up.
func climb(t *tree.Tree, id tree.NodeID) []tree.NodeID {
	ids := []tree.NodeID{id}
	for cur := t.Parent(id); cur != tree.None; cur = t.Parent(cur) {
		ids = append(ids, cur)
	}
	return ids
}

// descend returns id and its first-child chain down to a leaf.
func descend(t *tree.Tree, id tree.NodeID) []tree.NodeID {
	ids := []tree.NodeID{id}
	for kids := t.Children(id); len(kids) > 0; kids = t.Children(kids[0]) {
		ids = append(ids, kids[0])
	}
	return ids
}

func leftmostLeaf(t *tree.Tree, id tree.NodeID) tree.NodeID {
	ids := descend(t, id)
	return ids[len(ids)-1]
}

func swapRole(n tree.Node) tree.Node {
	n.Children = nil
	if n.Dep.Role != "" {
		n.Label, n.Dep.Role = n.Dep.Role, n.Label
	}
	return n
}

// PathLabels returns the labels of a path in order.
func PathLabels(path []tree.Node) []string {
	out := make([]string, len(path))
	for i, n := range path {
		out[i] = n.Label
	}
	return out
}

// PathWords returns, for each path node, the label it had before the
// role swap: the word form for dependency words.
func PathWords(path []tree.Node) []string {
	out := make([]string, len(path))
	for i, n := range path {
		out[i] = n.Label
		if n.Dep.Role != "" {
			out[i] = n.Dep.Role
		}
	}
	return out
}

// PathTags returns the part-of-speech tag of each path node, or its
// label for nodes without one.
func PathTags(path []tree.Node) []string {
	out := make([]string, len(path))
	for i, n := range path {
		out[i] = n.Label
		if n.Dep.Tag != "" {
			out[i] = n.Dep.Tag
		}
	}
	return out
}
