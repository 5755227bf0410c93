package model

import (
	"fmt"
	"time"
)

// NoRelation labels a mention pair with no gold relation.
const NoRelation = "NONE"

// Instance is one relation-extraction example built from a mention
// pair within a sentence.
type Instance struct {
	ID       string `json:"id"` // D<doc>-S<sentence>-M1_<id>-M2_<id>
	DocID    string `json:"doc_id"`
	Sentence int    `json:"sentence"`

	// Arguments in argument order.
	Arg1 string `json:"arg1"`
	Arg2 string `json:"arg2"`

	Type      string `json:"type"`
	TypeIndex int    `json:"type_index"`

	Constituent string   `json:"constituent"` // bracketed, tagged
	Dependency  string   `json:"dependency"`  // bracketed, tagged, roles as labels
	Path        []string `json:"path"`        // labels after role swap and tagging

	// Flat sequences over the leaves of the constituent subtree, led by
	// the first placeholder with the second one inserted before the
	// second mention's headword.
	Words     []string `json:"words,omitempty"`
	Tags      []string `json:"tags,omitempty"`      // pre-terminal of each leaf
	Relations []string `json:"relations,omitempty"` // grammatical relation of each leaf

	// Flat sequences along Path.
	PathWords []string `json:"path_words,omitempty"`
	PathTags  []string `json:"path_tags,omitempty"`
}

// InstanceID formats the identifier of a mention pair.
func InstanceID(doc string, sentence int, m1, m2 string) string {
	return fmt.Sprintf("D%s-S%d-M1_%s-M2_%s", doc, sentence, m1, m2)
}

// Stats counts what happened while processing documents.
type Stats struct {
	Documents        int `json:"documents"`
	Sentences        int `json:"sentences"`
	DroppedSentences int `json:"dropped_sentences"`
	Mentions         int `json:"mentions"`
	Unassigned       int `json:"unassigned_mentions"`
	Pairs            int `json:"pairs"`
	OutOfSentence    int `json:"out_of_sentence"`
	Untagged         int `json:"untagged"`
	Positive         int `json:"positive"`
	Negative         int `json:"negative"`
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Documents += o.Documents
	s.Sentences += o.Sentences
	s.DroppedSentences += o.DroppedSentences
	s.Mentions += o.Mentions
	s.Unassigned += o.Unassigned
	s.Pairs += o.Pairs
	s.OutOfSentence += o.OutOfSentence
	s.Untagged += o.Untagged
	s.Positive += o.Positive
	s.Negative += o.Negative
}

// Report is the outcome of processing one document.
type Report struct {
	DocID       string     `json:"doc_id"`
	Source      string     `json:"source"`
	ProcessedAt time.Time  `json:"processed_at"`
	Instances   []Instance `json:"instances"`
	Stats       Stats      `json:"stats"`
}
