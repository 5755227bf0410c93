package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/relcontext/internal/align"
	"github.com/ppiankov/relcontext/internal/extract"
	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/span"
	"github.com/ppiankov/relcontext/internal/structure"
	"github.com/ppiankov/relcontext/internal/tree"
)

func context(t *testing.T) (*extract.Context, *model.Mention, *model.Mention) {
	t.Helper()
	s, err := structure.Build(0, "(ROOT (S (NP (NNP John)) (VP (VBZ loves) (NP (NNP Mary)))))", nil, []structure.DepWord{
		{Index: 1, Head: 2, Role: "nsubj"},
		{Index: 2, Head: 0, Role: "root"},
		{Index: 3, Head: 2, Role: "dobj"},
	})
	require.NoError(t, err)
	john := &model.Mention{ID: "m1", EntityType: "PER", Head: span.Span{Start: 0, End: 3}}
	mary := &model.Mention{ID: "m2", EntityType: "PER", Head: span.Span{Start: 11, End: 14}}
	a := align.New("John loves Mary")
	require.NoError(t, a.Align(s, john))
	require.NoError(t, a.Align(s, mary))

	ctx, err := extract.NewContextExtractor().Extract(s, john, mary)
	require.NoError(t, err)
	return ctx, john, mary
}

func TestTree_TagsInTextOrder(t *testing.T) {
	ctx, john, mary := context(t)

	ct := Tree(ctx.Constituent.Tree, mary, john)
	assert.Equal(t, "(S (NP (T1-PER (NNP (John)))) (VP (NP (T2-PER (NNP (Mary))))))", ct.String())
	assert.True(t, HasBoth(ct))

	dt := Tree(ctx.Dependency.Tree, john, mary)
	assert.Equal(t, "(loves (T1-PER (John)) (T2-PER (Mary)))", dt.String())
	assert.True(t, HasBoth(dt))

	// The input is not modified.
	assert.Equal(t, "(S (NP (PER (NNP (John)))) (VP (NP (PER (NNP (Mary))))))", ctx.Constituent.String())
}

func TestTree_Deterministic(t *testing.T) {
	ctx, john, mary := context(t)
	a := Tree(ctx.Constituent.Tree, john, mary)
	b := Tree(ctx.Constituent.Tree, john, mary)
	assert.True(t, a.Equal(b))
}

func TestTree_NoMatchLeavesUntagged(t *testing.T) {
	ctx, john, mary := context(t)
	shifted := *john
	shifted.HeadwordSpan = span.Span{Start: 1, End: 2}

	ct := Tree(ctx.Constituent.Tree, &shifted, mary)
	assert.False(t, HasBoth(ct))
	assert.Equal(t, "(S (NP (PER (NNP (John)))) (VP (NP (T2-PER (NNP (Mary))))))", ct.String())

	// Dependency nodes only need to overlap the headword.
	dt := Tree(ctx.Dependency.Tree, &shifted, mary)
	assert.True(t, HasBoth(dt))
}

func TestTree_TypeMustMatch(t *testing.T) {
	ctx, john, mary := context(t)
	org := *mary
	org.EntityType = "ORG"

	dt := Tree(ctx.Dependency.Tree, john, &org)
	assert.False(t, HasBoth(dt))
}

func TestTree_LaterChildrenFirst(t *testing.T) {
	dt := tree.New(tree.Dependency)
	left := dt.Add(tree.Node{Label: "PER", Span: span.Span{Start: 0, End: 5}})
	right := dt.Add(tree.Node{Label: "PER", Span: span.Span{Start: 4, End: 9}})
	root := dt.Add(tree.Node{Label: "saw", Span: span.Span{Start: 10, End: 13}, Children: []tree.NodeID{left, right}, Dep: tree.DepAttrs{Index: 3, Role: "root"}})
	dt.SetRoot(root)

	m := &model.Mention{ID: "m1", EntityType: "PER", HeadwordSpan: span.Span{Start: 4, End: 4}}
	other := &model.Mention{ID: "m2", EntityType: "ORG", HeadwordSpan: span.Span{Start: 11, End: 12}}

	out := Tree(dt, m, other)
	assert.Equal(t, "(saw (PER) (T1-PER))", out.String())
	assert.False(t, HasBoth(out))
}

func TestRoles(t *testing.T) {
	ctx, john, mary := context(t)

	dt := Roles(Tree(ctx.Dependency.Tree, john, mary))
	assert.Equal(t, "(root (T1-PER (nsubj)) (T2-PER (dobj)))", dt.String())
	assert.True(t, HasBoth(dt))

	var words []string
	dt.Walk(dt.Root(), func(id tree.NodeID) bool {
		if n := dt.Node(id); n.IsWord() {
			words = append(words, n.Dep.Role)
		}
		return true
	})
	assert.Equal(t, []string{"loves", "John", "Mary"}, words)

	// Constituent trees and the input are left alone.
	assert.Equal(t, "(loves (PER (John)) (PER (Mary)))", ctx.Dependency.String())
	assert.True(t, Roles(ctx.Constituent.Tree).Equal(ctx.Constituent.Tree))
}

func TestPath_Tags(t *testing.T) {
	ctx, john, mary := context(t)

	path := Path(ctx.Path, mary, john)
	assert.Equal(t, []string{"nsubj", "T1-PER", "root", "T2-PER", "dobj"}, extract.PathLabels(path))
	assert.True(t, PathHasBoth(path))
	assert.Equal(t, []string{"nsubj", "PER", "root", "PER", "dobj"}, extract.PathLabels(ctx.Path))
	assert.False(t, PathHasBoth(ctx.Path))
}

func TestOrder(t *testing.T) {
	a := &model.Mention{ID: "a", HeadwordSpan: span.Span{Start: 5, End: 9}}
	b := &model.Mention{ID: "b", HeadwordSpan: span.Span{Start: 5, End: 6}}
	c := &model.Mention{ID: "c", HeadwordSpan: span.Span{Start: 1, End: 2}}

	first, second := Order(a, b)
	assert.Equal(t, "b", first.ID)
	assert.Equal(t, "a", second.ID)

	first, _ = Order(a, c)
	assert.Equal(t, "c", first.ID)
}
