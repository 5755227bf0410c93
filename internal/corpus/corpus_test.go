package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/span"
)

const jsonDoc = `{
  "id": "doc1",
  "text": "John works for Acme.",
  "entities": [
    {"id": "E1", "type": "PER", "mentions": [{"id": "m1", "type": "NAM", "head": {"start": 0, "end": 3}}]},
    {"id": "E2", "type": "ORG", "mentions": [{"id": "m2", "type": "NAM", "head": {"start": 15, "end": 18}, "extent": {"start": 15, "end": 19}}]}
  ],
  "relations": [{"id": "R1", "type": "EMP-ORG", "arg1": "m1", "arg2": "m2"}]
}`

func TestDecodeJSON(t *testing.T) {
	doc, err := DecodeJSON(strings.NewReader(jsonDoc))
	require.NoError(t, err)

	assert.Equal(t, "doc1", doc.ID)
	ms := doc.Mentions()
	require.Len(t, ms, 2)
	assert.Equal(t, span.Span{Start: 0, End: 3}, ms[0].Extent, "extent filled from head")
	assert.Equal(t, "PER", ms[0].EntityType)
	assert.Equal(t, "E1", ms[0].EntityID)
	assert.Equal(t, span.Span{Start: 15, End: 19}, ms[1].Extent)
	assert.Equal(t, "EMP-ORG", doc.RelationType("m2", "m1"))
}

func TestDecodeJSON_MentionWithoutSpans(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(`{"id":"d","text":"x","entities":[{"id":"E","type":"PER","mentions":[{"id":"m"}]}]}`))
	assert.ErrorIs(t, err, model.ErrNoSpan)
}

func TestStripMarkup_KeepsEntityReferences(t *testing.T) {
	text, err := StripMarkup(strings.NewReader("<DOC>\n<BODY><TEXT>AT&amp;T said</TEXT></BODY>\n</DOC>\n"))
	require.NoError(t, err)
	assert.Equal(t, "\nAT&amp;T said\n\n", text)
}

const sgm = `<DOC>
<DOCID>doc2</DOCID>
<TEXT>
Mary lives in Paris.
</TEXT>
</DOC>
`

const apf = `<?xml version="1.0"?>
<source_file URI="doc2.sgm" SOURCE="newswire" TYPE="text">
<document DOCID="doc2">
  <entity ID="doc2-E1" TYPE="PER" SUBTYPE="Individual">
    <entity_mention ID="doc2-E1-1" TYPE="NAM">
      <extent><charseq START="7" END="10">Mary</charseq></extent>
      <head><charseq START="7" END="10">Mary</charseq></head>
    </entity_mention>
  </entity>
  <entity ID="doc2-E2" TYPE="GPE">
    <entity_mention ID="doc2-E2-1" TYPE="NAM">
      <extent><charseq START="21" END="25">Paris</charseq></extent>
    </entity_mention>
  </entity>
  <relation ID="doc2-R1" TYPE="PHYS" SUBTYPE="Located">
    <relation_mention ID="doc2-R1-1">
      <rel_mention_arg ENTITYMENTIONID="doc2-E2-1" ROLE="Arg-2"/>
      <rel_mention_arg ENTITYMENTIONID="doc2-E1-1" ROLE="Arg-1"/>
    </relation_mention>
  </relation>
</document>
</source_file>
`

func writeACE(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc2.sgm"), []byte(sgm), 0o644))
	apfPath := filepath.Join(dir, "doc2.apf.xml")
	require.NoError(t, os.WriteFile(apfPath, []byte(apf), 0o644))
	return apfPath
}

func TestLoadACE(t *testing.T) {
	apfPath := writeACE(t)
	doc, err := LoadACE(apfPath)
	require.NoError(t, err)

	assert.Equal(t, "doc2", doc.ID)
	runes := []rune(doc.Text)
	ms := doc.Mentions()
	require.Len(t, ms, 2)
	assert.Equal(t, "Mary", string(runes[ms[0].Head.Start:ms[0].Head.End+1]))
	assert.Equal(t, "Paris", string(runes[ms[1].Head.Start:ms[1].Head.End+1]), "head filled from extent")
	assert.Equal(t, "GPE", ms[1].EntityType)

	require.Len(t, doc.Relations, 1)
	r := doc.Relations[0]
	assert.Equal(t, "doc2-E1-1", r.Arg1)
	assert.Equal(t, "doc2-E2-1", r.Arg2)
	assert.Equal(t, "PHYS", r.Type)
	assert.Equal(t, "doc2-R1-1", r.ID)
}

func TestLoadACE_InvertedCharseq(t *testing.T) {
	apfPath := writeACE(t)
	inverted := strings.Replace(apf, `<head><charseq START="7" END="10">`, `<head><charseq START="10" END="7">`, 1)
	require.NoError(t, os.WriteFile(apfPath, []byte(inverted), 0o644))

	doc, err := LoadACE(apfPath)
	require.NoError(t, err)
	assert.Equal(t, span.Span{Start: 7, End: 10}, doc.Mentions()[0].Head)
}

func TestLoad_Dispatch(t *testing.T) {
	apfPath := writeACE(t)
	doc, err := Load(strings.TrimSuffix(apfPath, ".apf.xml") + ".sgm")
	require.NoError(t, err)
	assert.Equal(t, "doc2", doc.ID)

	jsonPath := filepath.Join(t.TempDir(), "d.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonDoc), 0o644))
	doc, err = Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "doc1", doc.ID)

	_, err = Load("notes.txt")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRelationArgs_NoRoles(t *testing.T) {
	a1, a2 := relationArgs([]apfArg{{MentionID: "a"}, {MentionID: "b"}})
	assert.Equal(t, "a", a1)
	assert.Equal(t, "b", a2)
}
