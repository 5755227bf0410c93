// Package parser talks to a CoreNLP-compatible annotation server and
// turns its output into sentence structures.
package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/relcontext/internal/span"
	"github.com/ppiankov/relcontext/internal/structure"
)

// Annotation is the server's JSON document.
type Annotation struct {
	Sentences []Sentence `json:"sentences"`
}

// Sentence is one annotated sentence.
type Sentence struct {
	Index             int          `json:"index"`
	Parse             string       `json:"parse"`
	BasicDependencies []Dependency `json:"basicDependencies"`
	Tokens            []Token      `json:"tokens"`
}

// Dependency is one governor/dependent edge. Governor 0 is the root.
type Dependency struct {
	Dep            string `json:"dep"`
	Governor       int    `json:"governor"`
	GovernorGloss  string `json:"governorGloss,omitempty"`
	Dependent      int    `json:"dependent"`
	DependentGloss string `json:"dependentGloss,omitempty"`
}

// Token is one token with its character offsets into the document.
type Token struct {
	Index                int    `json:"index"`
	Word                 string `json:"word"`
	OriginalText         string `json:"originalText,omitempty"`
	CharacterOffsetBegin int    `json:"characterOffsetBegin"`
	CharacterOffsetEnd   int    `json:"characterOffsetEnd"`
	POS                  string `json:"pos"`
}

// Decode reads an annotation document.
func Decode(r io.Reader) (*Annotation, error) {
	var a Annotation
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode annotation: %w", err)
	}
	return &a, nil
}

// Build converts one annotated sentence into a sentence structure. An
// invariant violation in the dependency edges is returned as an error
// wrapping the structure package's sentinel.
func Build(s Sentence) (*structure.Sentence, error) {
	spans := make([]span.Span, len(s.Tokens))
	words := make([]structure.DepWord, len(s.Tokens))
	for i, tok := range s.Tokens {
		spans[i] = span.New(tok.CharacterOffsetBegin, tok.CharacterOffsetEnd)
		words[i] = structure.DepWord{Index: i + 1, Word: tok.Word, Tag: tok.POS}
	}

	edges := make([]structure.Edge, len(s.BasicDependencies))
	for i, d := range s.BasicDependencies {
		role := d.Dep
		if d.Governor == 0 {
			role = strings.ToLower(role)
		}
		edges[i] = structure.Edge{Governor: d.Governor, Dependent: d.Dependent, Role: role}
	}
	if err := structure.AttachEdges(words, edges); err != nil {
		return nil, fmt.Errorf("sentence %d: %w", s.Index, err)
	}

	return structure.Build(s.Index, s.Parse, spans, words)
}

// BuildAll converts every sentence. Sentences that fail to build are
// skipped and their errors returned alongside the good ones.
func BuildAll(a *Annotation) ([]*structure.Sentence, []error) {
	var (
		out  []*structure.Sentence
		errs []error
	)
	for _, s := range a.Sentences {
		built, err := Build(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, built)
	}
	return out, errs
}
