// Package align resolves entity mentions to head nodes of a sentence's
// constituent and dependency trees.
//
// Alignment splices an entity-labeled node into the tree at the
// selected node, so it runs once per mention and flavor; a repeated
// call fails with structure.ErrAlreadyAligned.
package align

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/span"
	"github.com/ppiankov/relcontext/internal/structure"
	"github.com/ppiankov/relcontext/internal/tree"
)

var (
	// ErrEmptySentence is returned for a tree with no leaves.
	ErrEmptySentence = errors.New("sentence has no leaves")

	// ErrAlreadyAligned re-exports the alignment table's duplicate error.
	ErrAlreadyAligned = structure.ErrAlreadyAligned
)

// Dependency roles and constituent labels that mark a preposition.
var (
	PrepositionRoles = []string{"prep", "case"}
	prepositionTag   = "IN"
	prepPhraseLabel  = "PP"
)

// Result describes the node recorded for a mention.
type Result struct {
	Node         tree.NodeID
	Headword     string
	HeadwordSpan span.Span // closed
}

// Aligner resolves mentions against the text they were annotated on.
type Aligner struct {
	text []rune
}

// New returns an aligner over the document text. Offsets are rune offsets.
func New(text string) *Aligner {
	return &Aligner{text: []rune(text)}
}

// Align resolves m in the dependency tree and then in the constituent
// tree, and stores the constituent headword on m.
func (a *Aligner) Align(s *structure.Sentence, m *model.Mention) error {
	if _, err := a.AlignFlavor(s, m, tree.Dependency); err != nil {
		return err
	}
	res, err := a.AlignFlavor(s, m, tree.Constituent)
	if err != nil {
		return err
	}
	m.Headword = res.Headword
	m.HeadwordSpan = res.HeadwordSpan
	return nil
}

// AlignFlavor resolves m in one tree of s, splices the entity node into
// that tree and records it in the sentence's alignment table.
func (a *Aligner) AlignFlavor(s *structure.Sentence, m *model.Mention, f tree.Flavor) (Result, error) {
	if _, ok := s.Head(m.ID, f); ok {
		return Result{}, fmt.Errorf("mention %s in %s tree: %w", m.ID, f, ErrAlreadyAligned)
	}
	var (
		res Result
		err error
	)
	if f == tree.Dependency {
		res, err = a.alignDependency(s, m)
	} else {
		res, err = a.alignConstituent(s, m)
	}
	if err != nil {
		return Result{}, err
	}
	if err := s.SetHead(m.ID, f, res.Node); err != nil {
		return Result{}, err
	}
	return res, nil
}

// window is the leaf index range chosen for a head span.
type window struct {
	left, right int
	leftStart   int // start offset of the left leaf
}

// bracket narrows the leaf sequence to the head span [start, end]. Leaf
// ends are exclusive, the head end is inclusive; a leaf just outside
// the range is pulled back in when it starts at start-1 (left) or ends
// at end+1 (right).
func bracket(tr *tree.Tree, leaves []tree.NodeID, head span.Span) window {
	n := len(leaves)
	start, end := head.Start, head.End
	i, j := 0, n-1

	leftIndex := tr.Node(leaves[i]).Span.Start
	rightIndex := tr.Node(leaves[j]).Span.End
	prevLeft, prevRight := leftIndex, rightIndex

	for i < n-1 && leftIndex < start {
		i++
		prevLeft = leftIndex
		leftIndex = tr.Node(leaves[i]).Span.Start
	}
	for j > 0 && end < rightIndex {
		j--
		prevRight = rightIndex
		rightIndex = tr.Node(leaves[j]).Span.End
	}

	if leftIndex > start && prevLeft == start-1 {
		i--
		leftIndex = tr.Node(leaves[i]).Span.Start
	}
	if end > rightIndex && prevRight == end+1 {
		j++
	}
	return window{left: i, right: j, leftStart: leftIndex}
}

// pick selects the head leaf within w. Scanning right to left, a
// preposition that is not the leftmost leaf moves the head to the leaf
// before it. Without one the rightmost leaf is the head. An empty
// window falls back to its right boundary.
func pick(w window, isPrep func(k int) bool) int {
	if w.left >= w.right {
		if w.left == w.right {
			return w.left
		}
		return w.right
	}
	for k := w.right; k >= w.left; k-- {
		if k > w.left && isPrep(k) {
			return k - 1
		}
	}
	return w.right
}

func (a *Aligner) alignDependency(s *structure.Sentence, m *model.Mention) (Result, error) {
	dt := s.Dependency
	leaves := s.Words()
	if len(leaves) == 0 {
		return Result{}, fmt.Errorf("sentence %d dependency tree: %w", s.Index, ErrEmptySentence)
	}
	w := bracket(dt, leaves, m.Head)
	origin := leaves[pick(w, func(k int) bool {
		return slices.Contains(PrepositionRoles, dt.Node(leaves[k]).Dep.Role)
	})]

	sp := dt.Node(origin).Span
	wrapper := dt.Add(tree.Node{Label: m.EntityType, Span: sp, Children: []tree.NodeID{origin}})
	replace(dt, origin, wrapper)
	return a.result(wrapper, sp), nil
}

func (a *Aligner) alignConstituent(s *structure.Sentence, m *model.Mention) (Result, error) {
	ct := s.Constituent
	leaves := ct.Leaves()
	if len(leaves) == 0 {
		return Result{}, fmt.Errorf("sentence %d constituent tree: %w", s.Index, ErrEmptySentence)
	}
	w := bracket(ct, leaves, m.Head)
	origin := leaves[pick(w, func(k int) bool {
		pre := ct.Parent(leaves[k])
		if pre == tree.None || ct.Node(pre).Label != prepositionTag {
			return false
		}
		pp := ct.Parent(pre)
		return pp != tree.None && ct.Node(pp).Label == prepPhraseLabel
	})]

	leftIndex := w.leftStart
	rightIndex := ct.Node(origin).Span.End

	// Climb while the ancestor still covers exactly the bracketed range.
	upper := ct.Parent(origin)
	for upper != tree.None {
		us := ct.Node(upper).Span
		if us.Start < leftIndex || us.End != rightIndex {
			break
		}
		origin = upper
		upper = ct.Parent(upper)
	}

	// The ancestor is wider than the head: group the children that
	// start at the head's left edge through origin.
	if upper != tree.None && ct.Node(upper).Span.Start < leftIndex && ct.Node(origin).Span.Start > leftIndex {
		kids := ct.Children(upper)
		r := ct.ChildIndex(upper, origin)
		l := r
		for l > 0 && ct.Node(kids[l]).Span.Start > leftIndex {
			l--
		}
		if ct.Node(kids[l]).Span.Start == leftIndex {
			sp := span.Span{Start: ct.Node(kids[l]).Span.Start, End: ct.Node(kids[r]).Span.End}
			group := ct.Add(tree.Node{Label: m.EntityType, Span: sp, Children: kids[l : r+1]})
			ct.SpliceChildren(upper, l, r, group)
			return a.result(group, sp), nil
		}
	}

	sp := ct.Node(origin).Span
	on := ct.Node(origin)
	if on.IsLeaf() || isPreTerminal(ct, origin) {
		wrapper := ct.Add(tree.Node{Label: m.EntityType, Span: sp, Children: []tree.NodeID{origin}})
		replace(ct, origin, wrapper)
		return a.result(wrapper, sp), nil
	}

	// A phrase keeps its place and label; the entity node takes over its
	// children.
	entity := ct.Add(tree.Node{Label: m.EntityType, Span: sp, Children: on.Children})
	on.Children = []tree.NodeID{entity}
	return a.result(entity, sp), nil
}

func isPreTerminal(tr *tree.Tree, id tree.NodeID) bool {
	kids := tr.Children(id)
	return len(kids) == 1 && tr.Node(kids[0]).IsLeaf()
}

// replace puts repl where old sits: in its parent's child list, or as
// the root.
func replace(tr *tree.Tree, old, repl tree.NodeID) {
	if p := tr.Parent(old); p != tree.None {
		tr.ReplaceChild(p, old, repl)
		return
	}
	if tr.Root() == old {
		tr.SetRoot(repl)
	}
}

func (a *Aligner) result(id tree.NodeID, sp span.Span) Result {
	return Result{
		Node:         id,
		Headword:     a.slice(sp),
		HeadwordSpan: sp.Closed(),
	}
}

// slice returns the text under a half-open span with line breaks
// flattened, clipped to the text bounds.
func (a *Aligner) slice(sp span.Span) string {
	start := max(0, min(sp.Start, len(a.text)))
	end := max(start, min(sp.End, len(a.text)))
	return strings.ReplaceAll(string(a.text[start:end]), "\n", " ")
}
