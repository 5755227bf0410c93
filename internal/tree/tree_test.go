package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/relcontext/internal/span"
)

func mustParse(t *testing.T, s string) *Tree {
	t.Helper()
	tr, err := ParseBracketed(s, nil)
	require.NoError(t, err)
	return tr
}

func findLabel(t *testing.T, tr *Tree, label string) NodeID {
	t.Helper()
	found := None
	tr.Walk(tr.Root(), func(id NodeID) bool {
		if tr.Node(id).Label == label {
			found = id
			return false
		}
		return true
	})
	require.NotEqual(t, None, found, "label %q not found", label)
	return found
}

func TestParseBracketed_AssignsSpans(t *testing.T) {
	tr := mustParse(t, "(ROOT (S (NP (NNP John)) (VP (VBZ loves) (NP (NNP Mary)))))")

	assert.Equal(t, Constituent, tr.Flavor())
	assert.Equal(t, "ROOT", tr.Node(tr.Root()).Label)

	leaves := tr.Leaves()
	require.Len(t, leaves, 3)
	assert.Equal(t, span.Span{Start: 0, End: 4}, tr.Node(leaves[0]).Span)
	assert.Equal(t, span.Span{Start: 5, End: 10}, tr.Node(leaves[1]).Span)
	assert.Equal(t, span.Span{Start: 11, End: 15}, tr.Node(leaves[2]).Span)
	assert.Equal(t, span.Span{Start: 0, End: 15}, tr.Node(tr.Root()).Span)
	assert.NoError(t, tr.CheckSpans())
}

func TestParseBracketed_TokenSpans(t *testing.T) {
	tokens := []span.Span{{Start: 8, End: 10}, {Start: 10, End: 15}, {Start: 15, End: 18}}
	tr, err := ParseBracketed("(NP (DT a) (NN b) (NN c))", tokens)
	require.NoError(t, err)
	assert.Equal(t, span.Span{Start: 8, End: 18}, tr.Node(tr.Root()).Span)

	_, err = ParseBracketed("(NP (DT a) (NN b))", tokens)
	assert.ErrorIs(t, err, ErrTokenCount)
}

func TestParseBracketed_Errors(t *testing.T) {
	for _, s := range []string{"", "(S (NP x)", "(S x))", "()", ")"} {
		_, err := ParseBracketed(s, nil)
		assert.Error(t, err, "input %q", s)
	}
}

func TestParseBracketed_UnlabeledWrapper(t *testing.T) {
	tr := mustParse(t, "( (S (NP x) (VP y)))")
	assert.Equal(t, "S", tr.Node(tr.Root()).Label)
}

func TestFormat_RoundTrip(t *testing.T) {
	in := "(S (NP (NNP John)) (VP (VBZ runs)))"
	tr := mustParse(t, in)
	assert.Equal(t, "(S (NP (NNP (John))) (VP (VBZ (runs))))", tr.String())

	again := mustParse(t, tr.String())
	assert.True(t, tr.Equal(again))
}

func TestFormat_EscapesBrackets(t *testing.T) {
	tr := New(Constituent)
	tr.SetRoot(tr.Add(Node{Label: "("}))
	assert.Equal(t, "(-LRB-)", tr.String())
}

func TestTree_Parent(t *testing.T) {
	tr := mustParse(t, "(S (NP x) (VP (V y) (NP2 z)))")
	vp := findLabel(t, tr, "VP")
	np2 := findLabel(t, tr, "NP2")

	assert.Equal(t, vp, tr.Parent(np2))
	assert.Equal(t, tr.Root(), tr.Parent(vp))
	assert.Equal(t, None, tr.Parent(tr.Root()))
	assert.Equal(t, 1, tr.ChildIndex(vp, np2))
}

func TestTree_Contains(t *testing.T) {
	tr := mustParse(t, "(S (NP x) (VP (V y) (NP2 z)))")
	vp := findLabel(t, tr, "VP")
	np := findLabel(t, tr, "NP")
	np2 := findLabel(t, tr, "NP2")

	assert.True(t, tr.Contains(vp, np2))
	assert.True(t, tr.Contains(vp, vp))
	assert.False(t, tr.Contains(vp, np))
}

func TestTree_SpliceChildren(t *testing.T) {
	tr := mustParse(t, "(NP (A a) (B b) (C c) (D d))")
	root := tr.Root()
	kids := tr.Children(root)
	group := tr.Add(Node{Label: "PER", Children: []NodeID{kids[1], kids[2]}})
	tr.SpliceChildren(root, 1, 2, group)

	assert.Equal(t, "(NP (A (a)) (PER (B (b)) (C (c))) (D (d)))", tr.String())
}

func TestTree_CloneIsIndependent(t *testing.T) {
	tr := mustParse(t, "(S (NP x) (VP y))")
	cp := tr.Clone()
	require.True(t, tr.Equal(cp))

	cp.Node(cp.Root()).Label = "X"
	assert.Equal(t, "S", tr.Node(tr.Root()).Label)
	assert.False(t, tr.Equal(cp))
}

func TestCheckSpans_DetectsViolation(t *testing.T) {
	tr := mustParse(t, "(S (NP x) (VP y))")
	tr.Node(tr.Root()).Span = span.Span{Start: 0, End: 99}
	assert.Error(t, tr.CheckSpans())
}

func TestCheckSpans_DependencyWordsExempt(t *testing.T) {
	tr := New(Dependency)
	a := tr.Add(Node{Label: "a", Span: span.Span{Start: 0, End: 1}, Dep: DepAttrs{Index: 1, Role: "nsubj"}})
	r := tr.Add(Node{Label: "r", Span: span.Span{Start: 2, End: 3}, Dep: DepAttrs{Index: 2, Role: "root"}, Children: []NodeID{a}})
	tr.SetRoot(r)
	assert.NoError(t, tr.CheckSpans())
}
