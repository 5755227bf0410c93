// Package tree is an arena-backed store of labeled syntax nodes.
//
// A Tree owns every node it holds. Nodes refer to their children by
// NodeID, an index into the owning arena, and never to their parent:
// the parent of a node is found by searching from the root. Extraction
// builds new trees by copying nodes into a fresh arena, so the source
// arena is never touched.
package tree

import (
	"github.com/ppiankov/relcontext/internal/span"
)

// Flavor distinguishes constituent trees from dependency trees.
type Flavor int

const (
	Constituent Flavor = iota
	Dependency
)

func (f Flavor) String() string {
	switch f {
	case Constituent:
		return "constituent"
	case Dependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// NodeID addresses a node inside one Tree.
type NodeID int

// None is the zero reference.
const None NodeID = -1

// DepAttrs carries the dependency-only fields of a node. Index is the
// 1-based word position; wrapper nodes inserted by alignment have
// Index 0 and an empty Role.
type DepAttrs struct {
	Index int    `json:"index,omitempty"`
	Role  string `json:"role,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Node is a labeled node with ordered children.
type Node struct {
	Label    string
	Span     span.Span
	Children []NodeID
	Dep      DepAttrs
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// IsWord reports whether the node stands for a dependency word.
func (n *Node) IsWord() bool {
	return n.Dep.Index > 0
}

// Tree is a single-owner node arena with a declared root.
type Tree struct {
	flavor Flavor
	nodes  []*Node
	root   NodeID
}

// New returns an empty tree of the given flavor.
func New(flavor Flavor) *Tree {
	return &Tree{flavor: flavor, root: None}
}

// Flavor returns the tree flavor.
func (t *Tree) Flavor() Flavor {
	return t.flavor
}

// Root returns the root node id, or None for an empty tree.
func (t *Tree) Root() NodeID {
	return t.root
}

// SetRoot declares id as the root.
func (t *Tree) SetRoot(id NodeID) {
	t.root = id
}

// Len returns the number of nodes in the arena, reachable or not.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Add stores a copy of n and returns its id. The children slice is
// copied so the caller may reuse it.
func (t *Tree) Add(n Node) NodeID {
	if n.Children != nil {
		n.Children = append([]NodeID(nil), n.Children...)
	}
	t.nodes = append(t.nodes, &n)
	return NodeID(len(t.nodes) - 1)
}

// Node returns the node stored at id, or nil if id is out of range.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Valid reports whether id addresses a node of t.
func (t *Tree) Valid(id NodeID) bool {
	return t.Node(id) != nil
}

// Children returns the child ids of id.
func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.Children
	}
	return nil
}

// AppendChild adds child as the last child of parent.
func (t *Tree) AppendChild(parent, child NodeID) {
	n := t.Node(parent)
	n.Children = append(n.Children, child)
}

// Parent finds the parent of id by depth-first search from the root.
// It returns None for the root and for nodes not reachable from it.
func (t *Tree) Parent(id NodeID) NodeID {
	if t.root == None || id == t.root {
		return None
	}
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range t.nodes[cur].Children {
			if c == id {
				return cur
			}
			stack = append(stack, c)
		}
	}
	return None
}

// ChildIndex returns the position of child among parent's children, or -1.
func (t *Tree) ChildIndex(parent, child NodeID) int {
	for i, c := range t.Children(parent) {
		if c == child {
			return i
		}
	}
	return -1
}

// Contains reports whether target is ancestor itself or lies in its subtree.
func (t *Tree) Contains(ancestor, target NodeID) bool {
	if ancestor == target {
		return true
	}
	found := false
	t.Walk(ancestor, func(id NodeID) bool {
		if id == target {
			found = true
			return false
		}
		return true
	})
	return found
}

// Walk visits the subtree under from in pre-order, children left to
// right. Returning false from fn stops the walk.
func (t *Tree) Walk(from NodeID, fn func(NodeID) bool) {
	if !t.Valid(from) {
		return
	}
	t.walk(from, fn)
}

func (t *Tree) walk(id NodeID, fn func(NodeID) bool) bool {
	if !fn(id) {
		return false
	}
	for _, c := range t.nodes[id].Children {
		if !t.walk(c, fn) {
			return false
		}
	}
	return true
}

// Leaves returns the leaves under the root in left-to-right order.
func (t *Tree) Leaves() []NodeID {
	var leaves []NodeID
	t.Walk(t.root, func(id NodeID) bool {
		if t.nodes[id].IsLeaf() {
			leaves = append(leaves, id)
		}
		return true
	})
	return leaves
}

// ReplaceChild swaps old for repl in parent's child list. It returns
// false if old is not a child of parent.
func (t *Tree) ReplaceChild(parent, old, repl NodeID) bool {
	i := t.ChildIndex(parent, old)
	if i < 0 {
		return false
	}
	t.nodes[parent].Children[i] = repl
	return true
}

// SpliceChildren replaces parent's children in positions [l, r] with
// the single node repl.
func (t *Tree) SpliceChildren(parent NodeID, l, r int, repl NodeID) {
	n := t.nodes[parent]
	out := make([]NodeID, 0, len(n.Children)-(r-l))
	out = append(out, n.Children[:l]...)
	out = append(out, repl)
	out = append(out, n.Children[r+1:]...)
	n.Children = out
}

// CopyNode copies id into dst without its children.
func (t *Tree) CopyNode(dst *Tree, id NodeID) NodeID {
	n := *t.nodes[id]
	n.Children = nil
	return dst.Add(n)
}

// CopySubtree deep-copies the subtree under id into dst and returns the
// id of the copy.
func (t *Tree) CopySubtree(dst *Tree, id NodeID) NodeID {
	cp := t.CopyNode(dst, id)
	for _, c := range t.nodes[id].Children {
		dst.AppendChild(cp, t.CopySubtree(dst, c))
	}
	return cp
}

// Clone returns an independent copy of the reachable tree.
func (t *Tree) Clone() *Tree {
	out := New(t.flavor)
	if t.root != None {
		out.root = t.CopySubtree(out, t.root)
	}
	return out
}

// Equal compares two trees structurally from their roots.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.flavor != o.flavor {
		return false
	}
	if t.root == None || o.root == None {
		return t.root == None && o.root == None
	}
	return EqualSubtree(t, t.root, o, o.root)
}

// EqualSubtree compares the subtree at a in ta with the one at b in tb
// by label, span, dependency attributes and children in order.
func EqualSubtree(ta *Tree, a NodeID, tb *Tree, b NodeID) bool {
	na, nb := ta.Node(a), tb.Node(b)
	if na == nil || nb == nil {
		return na == nb
	}
	if na.Label != nb.Label || na.Span != nb.Span || na.Dep != nb.Dep {
		return false
	}
	if len(na.Children) != len(nb.Children) {
		return false
	}
	for i := range na.Children {
		if !EqualSubtree(ta, na.Children[i], tb, nb.Children[i]) {
			return false
		}
	}
	return true
}
