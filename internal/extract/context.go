package extract

import (
	"fmt"

	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/structure"
	"github.com/ppiankov/relcontext/internal/tree"
)

// Context is the relation context of a mention pair.
type Context struct {
	Constituent Subtree
	Dependency  Subtree
	Path        []tree.Node
}

// ContextExtractor extracts relation contexts from aligned sentences.
type ContextExtractor struct{}

// NewContextExtractor creates a new context extractor
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{}
}

// Extract builds the constituent subtree, the dependency subtree and the
// dependency path connecting m1 and m2 in s. Both mentions must have
// been aligned in s; otherwise the error wraps ErrOutOfSentence. The
// sentence is left untouched, so Extract may run for any number of
// pairs of the same sentence.
func (e *ContextExtractor) Extract(s *structure.Sentence, m1, m2 *model.Mention) (*Context, error) {
	c1, d1, err := heads(s, m1)
	if err != nil {
		return nil, err
	}
	c2, d2, err := heads(s, m2)
	if err != nil {
		return nil, err
	}

	ct, err := PathEnclosed(s.Constituent, c1, c2)
	if err != nil {
		return nil, fmt.Errorf("constituent subtree: %w", err)
	}
	dt, err := Governing(s.Dependency, d1, d2)
	if err != nil {
		return nil, fmt.Errorf("dependency subtree: %w", err)
	}
	return &Context{Constituent: ct, Dependency: dt, Path: PathOf(dt.Tree)}, nil
}

func heads(s *structure.Sentence, m *model.Mention) (tree.NodeID, tree.NodeID, error) {
	c, ok := s.Head(m.ID, tree.Constituent)
	if !ok {
		return tree.None, tree.None, fmt.Errorf("mention %s in sentence %d: %w", m.ID, s.Index, ErrOutOfSentence)
	}
	d, ok := s.Head(m.ID, tree.Dependency)
	if !ok {
		return tree.None, tree.None, fmt.Errorf("mention %s in sentence %d: %w", m.ID, s.Index, ErrOutOfSentence)
	}
	return c, d, nil
}
