package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/parser"
	"github.com/ppiankov/relcontext/internal/span"
)

const text = "John works for Acme."

func annotation() *parser.Annotation {
	tok := func(i int, w, pos string, b, e int) parser.Token {
		return parser.Token{Index: i, Word: w, POS: pos, CharacterOffsetBegin: b, CharacterOffsetEnd: e}
	}
	return &parser.Annotation{Sentences: []parser.Sentence{{
		Index: 0,
		Parse: "(ROOT (S (NP (NNP John)) (VP (VBZ works) (PP (IN for) (NP (NNP Acme)))) (. .)))",
		BasicDependencies: []parser.Dependency{
			{Dep: "ROOT", Governor: 0, Dependent: 2},
			{Dep: "nsubj", Governor: 2, Dependent: 1},
			{Dep: "prep", Governor: 2, Dependent: 3},
			{Dep: "pobj", Governor: 3, Dependent: 4},
			{Dep: "punct", Governor: 2, Dependent: 5},
		},
		Tokens: []parser.Token{
			tok(1, "John", "NNP", 0, 4),
			tok(2, "works", "VBZ", 5, 10),
			tok(3, "for", "IN", 11, 14),
			tok(4, "Acme", "NNP", 15, 19),
			tok(5, ".", ".", 19, 20),
		},
	}}}
}

func document() *model.Document {
	mention := func(id, entity, typ string, s, e int) model.Mention {
		sp := span.Span{Start: s, End: e}
		return model.Mention{ID: id, EntityID: entity, EntityType: typ, MentionType: "NAM", Head: sp, Extent: sp}
	}
	return &model.Document{
		ID:   "doc1",
		Text: text,
		Entities: []model.Entity{
			{ID: "E1", Type: "PER", Mentions: []model.Mention{mention("m1", "E1", "PER", 0, 3)}},
			{ID: "E2", Type: "ORG", Mentions: []model.Mention{mention("m2", "E2", "ORG", 15, 18)}},
		},
		Relations: []model.Relation{{ID: "R1", Type: "EMP-ORG", Arg1: "m2", Arg2: "m1"}},
	}
}

type fakeAnnotator struct {
	calls int
	ann   *parser.Annotation
}

func (f *fakeAnnotator) Annotate(_ context.Context, _ string) (*parser.Annotation, error) {
	f.calls++
	return f.ann, nil
}

func newPipeline(ann Annotator) *Pipeline {
	return NewPipeline(model.DefaultConfig(), ann, nil)
}

func TestProcessDocument_Instance(t *testing.T) {
	p := newPipeline(nil)
	report, err := p.ProcessDocument(context.Background(), document(), annotation())
	require.NoError(t, err)

	require.Len(t, report.Instances, 1)
	inst := report.Instances[0]
	assert.Equal(t, "Ddoc1-S0-M1_m1-M2_m2", inst.ID)
	assert.Equal(t, "m1", inst.Arg1, "PER ranks before ORG")
	assert.Equal(t, "EMP-ORG", inst.Type)
	assert.Equal(t, 3, inst.TypeIndex)
	assert.Equal(t, []string{"nsubj", "T1-PER", "root", "prep", "T2-ORG", "pobj"}, inst.Path)
	assert.Equal(t, "(S (NP (T1-PER (NNP (John)))) (VP (PP (NP (T2-ORG (NNP (Acme)))))))", inst.Constituent)
	assert.NotContains(t, inst.Constituent, "works", "off-spine siblings are dropped")
	assert.Equal(t, "(root (T1-PER (nsubj)) (prep (T2-ORG (pobj))))", inst.Dependency)

	assert.Equal(t, []string{"T1-PER", "John", "T2-ORG", "Acme"}, inst.Words)
	assert.Equal(t, []string{"T1-PER", "NNP", "T2-ORG", "NNP"}, inst.Tags)
	assert.Equal(t, []string{"T1-PER", "nsubj", "T2-ORG", "pobj"}, inst.Relations)
	assert.Equal(t, []string{"John", "T1-PER", "works", "for", "T2-ORG", "Acme"}, inst.PathWords)
	assert.Equal(t, []string{"NNP", "T1-PER", "VBZ", "IN", "T2-ORG", "NNP"}, inst.PathTags)

	assert.Equal(t, model.Stats{Documents: 1, Sentences: 1, Mentions: 2, Pairs: 1, Positive: 1}, report.Stats)
}

func TestProcessDocument_SameEntitySkipped(t *testing.T) {
	doc := document()
	doc.Entities[1].ID = "E1"
	doc.Entities[1].Mentions[0].EntityID = "E1"

	report, err := newPipeline(nil).ProcessDocument(context.Background(), doc, annotation())
	require.NoError(t, err)
	assert.Empty(t, report.Instances)
	assert.Zero(t, report.Stats.Pairs)
}

func TestProcessDocument_NoGoldRelationIsNegative(t *testing.T) {
	doc := document()
	doc.Relations = nil

	report, err := newPipeline(nil).ProcessDocument(context.Background(), doc, annotation())
	require.NoError(t, err)
	require.Len(t, report.Instances, 1)
	assert.Equal(t, model.NoRelation, report.Instances[0].Type)
	assert.Zero(t, report.Instances[0].TypeIndex)
	assert.Equal(t, 1, report.Stats.Negative)
}

func TestProcessDocument_UnassignedMention(t *testing.T) {
	doc := document()
	doc.Entities = append(doc.Entities, model.Entity{ID: "E3", Type: "LOC", Mentions: []model.Mention{{
		ID: "m3", EntityID: "E3", EntityType: "LOC", MentionType: "NAM",
		Head: span.Span{Start: 40, End: 45}, Extent: span.Span{Start: 40, End: 45},
	}}})

	report, err := newPipeline(nil).ProcessDocument(context.Background(), doc, annotation())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Stats.Unassigned)
	assert.Len(t, report.Instances, 1)
}

func TestProcessDocument_DropsBrokenSentence(t *testing.T) {
	ann := annotation()
	ann.Sentences[0].BasicDependencies = ann.Sentences[0].BasicDependencies[1:]

	report, err := newPipeline(nil).ProcessDocument(context.Background(), document(), ann)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Stats.DroppedSentences)
	assert.Equal(t, 2, report.Stats.Unassigned)
	assert.Empty(t, report.Instances)
}

func writeDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc1.json")
	doc := `{"id":"doc1","text":"John works for Acme.","entities":[
{"id":"E1","type":"PER","mentions":[{"id":"m1","type":"NAM","head":{"start":0,"end":3}}]},
{"id":"E2","type":"ORG","mentions":[{"id":"m2","type":"NAM","head":{"start":15,"end":18}}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestProcessFile_UsesAnnotator(t *testing.T) {
	path := writeDocument(t)
	fake := &fakeAnnotator{ann: annotation()}

	report, err := newPipeline(fake).ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, path, report.Source)
	assert.Len(t, report.Instances, 1)
}

func TestProcessFile_PrefersAnnotationFile(t *testing.T) {
	path := writeDocument(t)
	var buf bytes.Buffer
	require.NoError(t, jsonEncode(&buf, annotation()))
	require.NoError(t, os.WriteFile(path+AnnotationSuffix, buf.Bytes(), 0o644))
	fake := &fakeAnnotator{ann: annotation()}

	report, err := newPipeline(fake).ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, fake.calls)
	assert.Len(t, report.Instances, 1)
}

func TestProcessFile_NoAnnotator(t *testing.T) {
	_, err := newPipeline(nil).ProcessFile(context.Background(), writeDocument(t))
	assert.ErrorIs(t, err, ErrNoAnnotator)
}
