package tree

import "fmt"

// CheckSpans verifies that every internal node reachable from the root
// spans exactly the hull of its children. Dependency word nodes are
// exempt: a word keeps its own token span whatever it governs.
func (t *Tree) CheckSpans() error {
	var err error
	t.Walk(t.root, func(id NodeID) bool {
		n := t.nodes[id]
		if n.IsLeaf() || (t.flavor == Dependency && n.IsWord()) {
			return true
		}
		h := t.nodes[n.Children[0]].Span
		for _, c := range n.Children[1:] {
			h = h.Hull(t.nodes[c].Span)
		}
		if h != n.Span {
			err = fmt.Errorf("node %d %q spans %v, children hull %v", id, n.Label, n.Span, h)
			return false
		}
		return true
	})
	return err
}
