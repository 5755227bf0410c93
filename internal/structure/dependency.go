package structure

import (
	"fmt"

	"github.com/ppiankov/relcontext/internal/span"
	"github.com/ppiankov/relcontext/internal/tree"
)

// DepWord is one word of a dependency analysis. Head is the 1-based
// index of the governor, 0 for the root.
type DepWord struct {
	Index int
	Word  string
	Span  span.Span
	Head  int
	Role  string
	Tag   string
}

// BuildDependencyTree links words into a dependency tree. Dependents
// are ordered by index. The returned slice holds the node of word i at
// position i-1.
func BuildDependencyTree(words []DepWord) (*tree.Tree, []tree.NodeID, error) {
	n := len(words)
	root := 0
	for i, w := range words {
		if w.Index != i+1 {
			return nil, nil, fmt.Errorf("position %d has index %d: %w", i, w.Index, ErrIndexGap)
		}
		switch {
		case w.Head == 0:
			if root != 0 {
				return nil, nil, fmt.Errorf("words %d and %d: %w", root, w.Index, ErrMultipleRoots)
			}
			root = w.Index
		case w.Head < 0 || w.Head > n:
			return nil, nil, fmt.Errorf("word %d head %d: %w", w.Index, w.Head, ErrMissingGovernor)
		case w.Head == w.Index:
			return nil, nil, fmt.Errorf("word %d governs itself: %w", w.Index, ErrCycle)
		}
	}
	if root == 0 {
		return nil, nil, ErrNoRoot
	}
	for _, w := range words {
		cur, steps := w.Index, 0
		for cur != 0 {
			if steps > n {
				return nil, nil, fmt.Errorf("word %d: %w", w.Index, ErrCycle)
			}
			cur = words[cur-1].Head
			steps++
		}
	}

	t := tree.New(tree.Dependency)
	ids := make([]tree.NodeID, n)
	for i, w := range words {
		ids[i] = t.Add(tree.Node{
			Label: w.Word,
			Span:  w.Span,
			Dep:   tree.DepAttrs{Index: w.Index, Role: w.Role, Tag: w.Tag},
		})
	}
	for _, w := range words {
		if w.Head != 0 {
			t.AppendChild(ids[w.Head-1], ids[w.Index-1])
		}
	}
	t.SetRoot(ids[root-1])
	return t, ids, nil
}

// Edge is a governor/dependent pair as parsers report them (1-based
// indices, governor 0 for the root).
type Edge struct {
	Governor  int
	Dependent int
	Role      string
}

// AttachEdges fills Head and Role of words from edges. Every word must
// appear exactly once as a dependent.
func AttachEdges(words []DepWord, edges []Edge) error {
	seen := make([]bool, len(words))
	for _, e := range edges {
		if e.Dependent < 1 || e.Dependent > len(words) {
			return fmt.Errorf("edge to word %d of %d: %w", e.Dependent, len(words), ErrIndexGap)
		}
		if seen[e.Dependent-1] {
			return fmt.Errorf("word %d: %w", e.Dependent, ErrMultipleGovernors)
		}
		seen[e.Dependent-1] = true
		words[e.Dependent-1].Head = e.Governor
		words[e.Dependent-1].Role = e.Role
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("word %d: %w", i+1, ErrMissingGovernor)
		}
	}
	return nil
}
