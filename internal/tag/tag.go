// Package tag marks the two mention anchors of an extracted relation
// context with ordered placeholder labels.
package tag

import (
	"slices"
	"strings"

	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/span"
	"github.com/ppiankov/relcontext/internal/tree"
)

// Placeholder prefixes for the first and second mention in text order.
const (
	FirstPrefix  = "T1-"
	SecondPrefix = "T2-"
)

// Order returns the two mentions sorted by headword position.
func Order(m1, m2 *model.Mention) (*model.Mention, *model.Mention) {
	a, b := m1.HeadwordSpan, m2.HeadwordSpan
	if b.Start < a.Start || (b.Start == a.Start && b.End < a.End) {
		return m2, m1
	}
	return m1, m2
}

// matcher decides whether a node with span sp stands for a mention.
type matcher func(sp span.Span, m *model.Mention) bool

// exact matches constituent nodes whose span is the headword span.
func exact(sp span.Span, m *model.Mention) bool {
	return sp.Closed() == m.HeadwordSpan
}

// overlapping matches dependency nodes whose span touches the headword
// span at any point.
func overlapping(sp span.Span, m *model.Mention) bool {
	return sp.Closed().Overlaps(m.HeadwordSpan)
}

func matcherFor(f tree.Flavor) matcher {
	if f == tree.Dependency {
		return overlapping
	}
	return exact
}

// Tree returns a copy of t with the first node matching each mention
// relabeled. Nodes are visited from a stack seeded with the root, so
// later children are seen before earlier ones. Nodes match on the
// entity type label and on the flavor's span predicate. A mention
// without a match is left untagged; callers check with HasBoth.
func Tree(t *tree.Tree, m1, m2 *model.Mention) *tree.Tree {
	out := t.Clone()
	first, second := Order(m1, m2)
	match := matcherFor(t.Flavor())

	nodes := stackOrder(out)
	relabel(nodes, first, FirstPrefix, match)
	relabel(nodes, second, SecondPrefix, match)
	return out
}

func stackOrder(t *tree.Tree) []*tree.Node {
	if t.Root() == tree.None {
		return nil
	}
	var nodes []*tree.Node
	open := []tree.NodeID{t.Root()}
	for len(open) > 0 {
		id := open[len(open)-1]
		open = open[:len(open)-1]
		n := t.Node(id)
		nodes = append(nodes, n)
		open = append(open, n.Children...)
	}
	return nodes
}

// Roles returns a copy of a dependency tree in which every word with a
// grammatical role shows the role as its label and keeps the word form
// as its role. Entity nodes are left as they are.
func Roles(t *tree.Tree) *tree.Tree {
	out := t.Clone()
	if out.Flavor() != tree.Dependency || out.Root() == tree.None {
		return out
	}
	out.Walk(out.Root(), func(id tree.NodeID) bool {
		n := out.Node(id)
		if n.IsWord() && n.Dep.Role != "" && !slices.Contains(model.EntityTypes, n.Label) {
			n.Label, n.Dep.Role = n.Dep.Role, n.Label
		}
		return true
	})
	return out
}

// Path returns a copy of a dependency path with the mention nodes
// relabeled, matching like Tree does on dependency trees. The path is
// scanned in order.
func Path(path []tree.Node, m1, m2 *model.Mention) []tree.Node {
	out := make([]tree.Node, len(path))
	copy(out, path)
	first, second := Order(m1, m2)

	nodes := make([]*tree.Node, len(out))
	for i := range out {
		nodes[i] = &out[i]
	}
	relabel(nodes, first, FirstPrefix, overlapping)
	relabel(nodes, second, SecondPrefix, overlapping)
	return out
}

func relabel(nodes []*tree.Node, m *model.Mention, prefix string, match matcher) {
	for _, n := range nodes {
		if n.Label == m.EntityType && match(n.Span, m) {
			n.Label = prefix + n.Label
			return
		}
	}
}

// HasBoth reports whether t carries both placeholders.
func HasBoth(t *tree.Tree) bool {
	var first, second bool
	t.Walk(t.Root(), func(id tree.NodeID) bool {
		l := t.Node(id).Label
		first = first || strings.HasPrefix(l, FirstPrefix)
		second = second || strings.HasPrefix(l, SecondPrefix)
		return !(first && second)
	})
	return first && second
}

// PathHasBoth reports whether a path carries both placeholders.
func PathHasBoth(path []tree.Node) bool {
	var first, second bool
	for _, n := range path {
		first = first || strings.HasPrefix(n.Label, FirstPrefix)
		second = second || strings.HasPrefix(n.Label, SecondPrefix)
	}
	return first && second
}
