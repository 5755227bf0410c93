package structure

import (
	"fmt"

	"github.com/ppiankov/relcontext/internal/span"
	"github.com/ppiankov/relcontext/internal/tree"
)

// Build assembles a sentence from a bracketed constituent parse and a
// dependency analysis over the same tokens. Word spans and tags are
// taken from the constituent leaves and their pre-terminals; a word
// that already carries a tag keeps it.
func Build(index int, parse string, tokens []span.Span, words []DepWord) (*Sentence, error) {
	ct, err := tree.ParseBracketed(parse, tokens)
	if err != nil {
		return nil, fmt.Errorf("sentence %d constituent parse: %w", index, err)
	}
	leaves := ct.Leaves()
	if len(leaves) != len(words) {
		return nil, fmt.Errorf("sentence %d: %d leaves, %d dependency words: %w", index, len(leaves), len(words), ErrIndexGap)
	}
	words = append([]DepWord(nil), words...)
	for i, leaf := range leaves {
		n := ct.Node(leaf)
		words[i].Span = n.Span
		if words[i].Word == "" {
			words[i].Word = n.Label
		}
		if words[i].Tag == "" {
			if p := ct.Parent(leaf); p != tree.None {
				words[i].Tag = ct.Node(p).Label
			}
		}
	}
	dt, ids, err := BuildDependencyTree(words)
	if err != nil {
		return nil, fmt.Errorf("sentence %d dependency tree: %w", index, err)
	}
	return New(index, ct.Node(ct.Root()).Span, ct, dt, ids)
}
