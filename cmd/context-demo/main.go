// Demo program that walks one hand-parsed sentence through alignment,
// extraction and tagging without a parser server.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/parser"
	"github.com/ppiankov/relcontext/internal/pipeline"
	"github.com/ppiankov/relcontext/internal/span"
)

const text = "The president of Acme visited Paris."

func main() {
	fmt.Println("=== Relation Context Demo ===")
	fmt.Println()
	fmt.Printf("Text: %s\n\n", text)

	doc := &model.Document{
		ID:   "demo",
		Text: text,
		Entities: []model.Entity{
			{ID: "E1", Type: "PER", Mentions: []model.Mention{mention("m1", "E1", "PER", "NOM", 4, 12)}},
			{ID: "E2", Type: "ORG", Mentions: []model.Mention{mention("m2", "E2", "ORG", "NAM", 17, 20)}},
			{ID: "E3", Type: "GPE", Mentions: []model.Mention{mention("m3", "E3", "GPE", "NAM", 30, 34)}},
		},
		Relations: []model.Relation{
			{ID: "R1", Type: "EMP-ORG", Arg1: "m1", Arg2: "m2"},
			{ID: "R2", Type: "PHYS", Arg1: "m1", Arg2: "m3"},
		},
	}

	p := pipeline.NewPipeline(model.DefaultConfig(), nil, nil)
	report, err := p.ProcessDocument(context.Background(), doc, annotation())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, inst := range report.Instances {
		fmt.Printf("%s  [%s]\n", inst.ID, inst.Type)
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("  constituent: %s\n", inst.Constituent)
		fmt.Printf("  dependency:  %s\n", inst.Dependency)
		fmt.Printf("  path:        %s\n", strings.Join(inst.Path, " "))
		fmt.Printf("  path words:  %s\n", strings.Join(inst.PathWords, " "))
		fmt.Printf("  leaves:      %s\n", strings.Join(inst.Words, " "))
		fmt.Printf("  kernel:      %s\n\n", pipeline.KernelLine(&inst))
	}
	fmt.Printf("pairs=%d instances=%d untagged=%d\n",
		report.Stats.Pairs, len(report.Instances), report.Stats.Untagged)
}

func mention(id, entity, typ, mtype string, start, end int) model.Mention {
	sp := span.Span{Start: start, End: end}
	return model.Mention{ID: id, EntityID: entity, EntityType: typ, MentionType: mtype, Head: sp, Extent: sp}
}

func annotation() *parser.Annotation {
	words := []struct {
		word, pos  string
		begin, end int
	}{
		{"The", "DT", 0, 3},
		{"president", "NN", 4, 13},
		{"of", "IN", 14, 16},
		{"Acme", "NNP", 17, 21},
		{"visited", "VBD", 22, 29},
		{"Paris", "NNP", 30, 35},
		{".", ".", 35, 36},
	}
	tokens := make([]parser.Token, len(words))
	for i, w := range words {
		tokens[i] = parser.Token{Index: i + 1, Word: w.word, POS: w.pos, CharacterOffsetBegin: w.begin, CharacterOffsetEnd: w.end}
	}
	return &parser.Annotation{Sentences: []parser.Sentence{{
		Index:  0,
		Parse:  "(ROOT (S (NP (NP (DT The) (NN president)) (PP (IN of) (NP (NNP Acme)))) (VP (VBD visited) (NP (NNP Paris))) (. .)))",
		Tokens: tokens,
		BasicDependencies: []parser.Dependency{
			{Dep: "ROOT", Governor: 0, Dependent: 5},
			{Dep: "det", Governor: 2, Dependent: 1},
			{Dep: "nsubj", Governor: 5, Dependent: 2},
			{Dep: "prep", Governor: 2, Dependent: 3},
			{Dep: "pobj", Governor: 3, Dependent: 4},
			{Dep: "dobj", Governor: 5, Dependent: 6},
			{Dep: "punct", Governor: 5, Dependent: 7},
		},
	}}}
}
