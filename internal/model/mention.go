package model

import (
	"errors"

	"github.com/ppiankov/relcontext/internal/span"
)

// ErrNoSpan is returned when a mention has neither a head nor an extent.
var ErrNoSpan = errors.New("mention has neither head nor extent")

// Mention is one textual reference to an entity. Head, Extent and
// HeadwordSpan are closed character intervals.
type Mention struct {
	ID          string    `json:"id"`
	EntityID    string    `json:"entity_id"`
	EntityType  string    `json:"entity_type"`           // used verbatim as a tree label (e.g. "PER")
	MentionType string    `json:"mention_type,omitempty"` // NAM, NOM, PRO, PRE
	Head        span.Span `json:"head"`
	Extent      span.Span `json:"extent"`

	// Filled by alignment from the document text.
	Headword     string    `json:"headword,omitempty"`
	HeadwordSpan span.Span `json:"headword_span"`
}

// FillSpans resolves a mention's head and extent when the annotation
// supplies only one of them: the missing one is set equal to the other.
func FillSpans(head, extent *span.Span) (span.Span, span.Span, error) {
	switch {
	case head == nil && extent == nil:
		return span.Span{}, span.Span{}, ErrNoSpan
	case head == nil:
		return *extent, *extent, nil
	case extent == nil:
		return *head, *head, nil
	default:
		return *head, *extent, nil
	}
}

// Entity groups the mentions that co-refer.
type Entity struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Subtype  string    `json:"subtype,omitempty"`
	Mentions []Mention `json:"mentions"`
}

// Relation is a gold relation mention between two entity mentions.
type Relation struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
	Arg1    string `json:"arg1"` // mention id
	Arg2    string `json:"arg2"` // mention id
}

// Document is one annotated source text.
type Document struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations,omitempty"`
}

// Mentions returns every mention of every entity, in entity order.
func (d *Document) Mentions() []Mention {
	var out []Mention
	for _, e := range d.Entities {
		out = append(out, e.Mentions...)
	}
	return out
}

// RelationType returns the gold type linking mentions a and b in either
// order, or NoRelation.
func (d *Document) RelationType(a, b string) string {
	for _, r := range d.Relations {
		if (r.Arg1 == a && r.Arg2 == b) || (r.Arg1 == b && r.Arg2 == a) {
			return r.Type
		}
	}
	return NoRelation
}
