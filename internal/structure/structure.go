// Package structure holds the per-sentence syntactic structures that
// alignment and extraction work on.
package structure

import (
	"errors"
	"fmt"

	"github.com/ppiankov/relcontext/internal/span"
	"github.com/ppiankov/relcontext/internal/tree"
)

var (
	ErrNoRoot            = errors.New("dependency tree has no root")
	ErrMultipleRoots     = errors.New("dependency tree has more than one root")
	ErrMissingGovernor   = errors.New("dependency word has no governor")
	ErrMultipleGovernors = errors.New("dependency word has more than one governor")
	ErrIndexGap          = errors.New("dependency indices are not contiguous from 1")
	ErrCycle             = errors.New("dependency governors form a cycle")
	ErrFlavor            = errors.New("tree has the wrong flavor")

	// ErrAlreadyAligned is returned when a mention is aligned twice in the
	// same tree of the same sentence.
	ErrAlreadyAligned = errors.New("mention already aligned")
)

// Sentence is one sentence's constituent tree, dependency tree and the
// dependency words in index order, plus the alignment table filled in
// while mentions are resolved.
type Sentence struct {
	Index       int
	Span        span.Span // half-open
	Constituent *tree.Tree
	Dependency  *tree.Tree

	words []tree.NodeID
	heads map[headKey]tree.NodeID
}

type headKey struct {
	mention string
	flavor  tree.Flavor
}

// New assembles a sentence. words lists the dependency word nodes so
// that words[i] carries index i+1.
func New(index int, sp span.Span, constituent, dependency *tree.Tree, words []tree.NodeID) (*Sentence, error) {
	if constituent == nil || constituent.Flavor() != tree.Constituent || constituent.Root() == tree.None {
		return nil, fmt.Errorf("sentence %d constituent tree: %w", index, ErrFlavor)
	}
	if dependency == nil || dependency.Flavor() != tree.Dependency {
		return nil, fmt.Errorf("sentence %d dependency tree: %w", index, ErrFlavor)
	}
	if dependency.Root() == tree.None {
		return nil, fmt.Errorf("sentence %d: %w", index, ErrNoRoot)
	}
	for i, id := range words {
		n := dependency.Node(id)
		if n == nil || n.Dep.Index != i+1 {
			return nil, fmt.Errorf("sentence %d word %d: %w", index, i+1, ErrIndexGap)
		}
	}
	return &Sentence{
		Index:       index,
		Span:        sp,
		Constituent: constituent,
		Dependency:  dependency,
		words:       append([]tree.NodeID(nil), words...),
		heads:       make(map[headKey]tree.NodeID),
	}, nil
}

// Tree returns the tree of the given flavor.
func (s *Sentence) Tree(f tree.Flavor) *tree.Tree {
	if f == tree.Dependency {
		return s.Dependency
	}
	return s.Constituent
}

// Words returns the dependency word nodes in index order.
func (s *Sentence) Words() []tree.NodeID {
	return s.words
}

// Word returns the dependency node with the given 1-based index.
func (s *Sentence) Word(index int) (tree.NodeID, bool) {
	if index < 1 || index > len(s.words) {
		return tree.None, false
	}
	return s.words[index-1], true
}

// SetHead records id as the head node of a mention in the tree of
// flavor f. A mention can be recorded once per flavor.
func (s *Sentence) SetHead(mentionID string, f tree.Flavor, id tree.NodeID) error {
	k := headKey{mention: mentionID, flavor: f}
	if _, ok := s.heads[k]; ok {
		return fmt.Errorf("mention %s in %s tree: %w", mentionID, f, ErrAlreadyAligned)
	}
	s.heads[k] = id
	return nil
}

// Head returns the recorded head node of a mention.
func (s *Sentence) Head(mentionID string, f tree.Flavor) (tree.NodeID, bool) {
	id, ok := s.heads[headKey{mention: mentionID, flavor: f}]
	return id, ok
}
