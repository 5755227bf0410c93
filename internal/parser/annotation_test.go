package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/relcontext/internal/span"
	"github.com/ppiankov/relcontext/internal/structure"
	"github.com/ppiankov/relcontext/internal/tree"
)

func TestDecodeAndBuild(t *testing.T) {
	a, err := Decode(strings.NewReader(annotationJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sents, errs := BuildAll(a)
	if len(errs) != 0 {
		t.Fatalf("BuildAll errors: %v", errs)
	}
	if len(sents) != 1 {
		t.Fatalf("got %d sentences", len(sents))
	}
	s := sents[0]
	if s.Span != (span.Span{Start: 0, End: 9}) {
		t.Errorf("sentence span = %v", s.Span)
	}

	dt := s.Tree(tree.Dependency)
	root := dt.Node(dt.Root())
	if root.Label != "runs" || root.Dep.Role != "root" || root.Dep.Index != 2 {
		t.Errorf("dependency root = %+v", root)
	}
	john, ok := s.Word(1)
	if !ok {
		t.Fatal("word 1 missing")
	}
	n := dt.Node(john)
	if n.Dep.Role != "nsubj" || n.Dep.Tag != "NNP" || n.Span != (span.Span{Start: 0, End: 4}) {
		t.Errorf("word 1 = %+v", n)
	}
}

func TestBuild_MissingGovernor(t *testing.T) {
	a, err := Decode(strings.NewReader(annotationJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sent := a.Sentences[0]
	sent.BasicDependencies = sent.BasicDependencies[:1]
	if _, err := Build(sent); !errors.Is(err, structure.ErrMissingGovernor) {
		t.Errorf("expected ErrMissingGovernor, got %v", err)
	}

	_, errs := BuildAll(&Annotation{Sentences: []Sentence{sent, a.Sentences[0]}})
	if len(errs) != 1 {
		t.Errorf("expected 1 dropped sentence, got %d", len(errs))
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode(strings.NewReader("{")); err == nil {
		t.Error("expected decode error")
	}
}
