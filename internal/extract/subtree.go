// Package extract builds relation contexts: the minimal structure that
// connects two aligned mention nodes of one sentence.
//
// Extraction never modifies the source tree. Every result lives in a
// fresh tree.Tree arena.
package extract

import (
	"errors"
	"fmt"

	"github.com/ppiankov/relcontext/internal/span"
	"github.com/ppiankov/relcontext/internal/tree"
)

// ErrOutOfSentence is returned when a mention has no aligned node in the
// sentence, or the two nodes do not share a tree.
var ErrOutOfSentence = errors.New("mentions do not share a sentence tree")

// Subtree is an extracted tree plus the copies of the two anchor nodes,
// First being the one that starts earlier in the text.
type Subtree struct {
	Tree   *tree.Tree
	First  tree.NodeID
	Second tree.NodeID
}

func (s Subtree) String() string {
	return s.Tree.String()
}

// PathEnclosed extracts the path-enclosed subtree of a constituent tree.
// If one anchor contains the other the result is a copy of the
// container's subtree. Otherwise the result is rooted at a copy of the
// lowest common ancestor with exactly two children: the spine down to
// the left anchor and the spine down to the right anchor. Siblings off
// the spines are dropped.
func PathEnclosed(t *tree.Tree, n1, n2 tree.NodeID) (Subtree, error) {
	if err := checkAnchors(t, tree.Constituent, n1, n2); err != nil {
		return Subtree{}, err
	}
	n1, n2 = textOrder(t, n1, n2)

	if container, ok := containment(t, n1, n2); ok {
		out := tree.New(t.Flavor())
		c := newCopier(t, out, n1, n2)
		out.SetRoot(c.subtree(container))
		return Subtree{Tree: out, First: c.marks[n1], Second: c.marks[n2]}, nil
	}
	return twoSpines(t, n1, n2)
}

// Governing extracts the governing subtree of a dependency tree. When
// one anchor governs the other, transitively, the result is the single
// chain from the governor down to the governed anchor. Otherwise it is
// the two-spine tree under their nearest common governor.
func Governing(t *tree.Tree, n1, n2 tree.NodeID) (Subtree, error) {
	if err := checkAnchors(t, tree.Dependency, n1, n2); err != nil {
		return Subtree{}, err
	}
	n1, n2 = textOrder(t, n1, n2)

	if container, ok := containment(t, n1, n2); ok {
		contained := n2
		if container == n2 {
			contained = n1
		}
		out := tree.New(t.Flavor())
		c := newCopier(t, out, n1, n2)
		top, err := c.spine(contained, container)
		if err != nil {
			return Subtree{}, err
		}
		root := c.node(container)
		out.AppendChild(root, top)
		out.SetRoot(root)
		fixSpans(out, root)
		return Subtree{Tree: out, First: c.marks[n1], Second: c.marks[n2]}, nil
	}
	return twoSpines(t, n1, n2)
}

// twoSpines builds the general-case subtree. The left spine climbs from
// n1 until the original ancestor contains n2; that ancestor is the LCA.
// The right spine climbs from n2 up to the LCA.
func twoSpines(t *tree.Tree, n1, n2 tree.NodeID) (Subtree, error) {
	out := tree.New(t.Flavor())
	c := newCopier(t, out, n1, n2)

	lca, err := lowestCommonAncestor(t, n1, n2)
	if err != nil {
		return Subtree{}, err
	}
	left, err := c.spine(n1, lca)
	if err != nil {
		return Subtree{}, err
	}
	right, err := c.spine(n2, lca)
	if err != nil {
		return Subtree{}, err
	}
	root := c.node(lca)
	out.AppendChild(root, left)
	out.AppendChild(root, right)
	out.SetRoot(root)
	fixSpans(out, root)
	return Subtree{Tree: out, First: c.marks[n1], Second: c.marks[n2]}, nil
}

// lowestCommonAncestor climbs from n1 by parent search until the
// current ancestor's subtree holds n2.
func lowestCommonAncestor(t *tree.Tree, n1, n2 tree.NodeID) (tree.NodeID, error) {
	cur := n1
	for {
		p := t.Parent(cur)
		if p == tree.None {
			return tree.None, fmt.Errorf("node %d has no ancestor holding node %d: %w", n1, n2, ErrOutOfSentence)
		}
		if t.Contains(p, n2) {
			return p, nil
		}
		cur = p
	}
}

// containment returns the anchor whose subtree holds the other one.
func containment(t *tree.Tree, n1, n2 tree.NodeID) (tree.NodeID, bool) {
	switch {
	case t.Contains(n1, n2):
		return n1, true
	case t.Contains(n2, n1):
		return n2, true
	}
	return tree.None, false
}

// textOrder returns the anchors with the one starting first in front.
func textOrder(t *tree.Tree, n1, n2 tree.NodeID) (tree.NodeID, tree.NodeID) {
	if before(t.Node(n2).Span, t.Node(n1).Span) {
		return n2, n1
	}
	return n1, n2
}

func before(a, b span.Span) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.End < b.End
}

func checkAnchors(t *tree.Tree, f tree.Flavor, n1, n2 tree.NodeID) error {
	if t == nil || t.Flavor() != f {
		return fmt.Errorf("expected %s tree: %w", f, ErrOutOfSentence)
	}
	for _, id := range []tree.NodeID{n1, n2} {
		if !t.Valid(id) || !t.Contains(t.Root(), id) {
			return fmt.Errorf("node %d not in tree: %w", id, ErrOutOfSentence)
		}
	}
	return nil
}

// copier copies nodes from src into dst and remembers where the two
// anchors landed.
type copier struct {
	src, dst *tree.Tree
	marks    map[tree.NodeID]tree.NodeID
}

func newCopier(src, dst *tree.Tree, anchors ...tree.NodeID) *copier {
	c := &copier{src: src, dst: dst, marks: make(map[tree.NodeID]tree.NodeID, len(anchors))}
	for _, a := range anchors {
		c.marks[a] = tree.None
	}
	return c
}

func (c *copier) node(id tree.NodeID) tree.NodeID {
	cp := c.src.CopyNode(c.dst, id)
	if _, ok := c.marks[id]; ok {
		c.marks[id] = cp
	}
	return cp
}

func (c *copier) subtree(id tree.NodeID) tree.NodeID {
	cp := c.node(id)
	for _, ch := range c.src.Children(id) {
		c.dst.AppendChild(cp, c.subtree(ch))
	}
	return cp
}

// spine copies the anchor with its whole subtree, then each ancestor
// below stop holding only the previous copy. It returns the top copy.
func (c *copier) spine(anchor, stop tree.NodeID) (tree.NodeID, error) {
	top := c.subtree(anchor)
	cur := anchor
	for {
		p := c.src.Parent(cur)
		if p == tree.None {
			return tree.None, fmt.Errorf("node %d is not below node %d: %w", anchor, stop, ErrOutOfSentence)
		}
		if p == stop {
			return top, nil
		}
		cp := c.node(p)
		c.dst.AppendChild(cp, top)
		top = cp
		cur = p
	}
}

// fixSpans resets every non-word internal node to the hull of its
// children, bottom-up.
func fixSpans(t *tree.Tree, id tree.NodeID) {
	n := t.Node(id)
	if n.IsLeaf() {
		return
	}
	for _, ch := range n.Children {
		fixSpans(t, ch)
	}
	if t.Flavor() == tree.Dependency && n.IsWord() {
		return
	}
	h := t.Node(n.Children[0]).Span
	for _, ch := range n.Children[1:] {
		h = h.Hull(t.Node(ch).Span)
	}
	n.Span = h
}
