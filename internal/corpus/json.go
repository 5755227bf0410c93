package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/span"
)

type jsonDocument struct {
	ID        string           `json:"id"`
	Text      string           `json:"text"`
	Entities  []jsonEntity     `json:"entities"`
	Relations []model.Relation `json:"relations"`
}

type jsonEntity struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Subtype  string        `json:"subtype"`
	Mentions []jsonMention `json:"mentions"`
}

type jsonMention struct {
	ID     string     `json:"id"`
	Type   string     `json:"type"`
	Head   *span.Span `json:"head"`
	Extent *span.Span `json:"extent"`
}

// LoadJSON reads a JSON document file.
func LoadJSON(path string) (*model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := DecodeJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// DecodeJSON reads a JSON document. Mention spans are closed intervals;
// a mention with only a head or only an extent gets the other from it.
func DecodeJSON(r io.Reader) (*model.Document, error) {
	var raw jsonDocument
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	doc := &model.Document{ID: raw.ID, Text: raw.Text, Relations: raw.Relations}
	for _, e := range raw.Entities {
		ent := model.Entity{ID: e.ID, Type: e.Type, Subtype: e.Subtype}
		for _, m := range e.Mentions {
			head, extent, err := model.FillSpans(m.Head, m.Extent)
			if err != nil {
				return nil, fmt.Errorf("mention %s: %w", m.ID, err)
			}
			ent.Mentions = append(ent.Mentions, model.Mention{
				ID:          m.ID,
				EntityID:    e.ID,
				EntityType:  e.Type,
				MentionType: m.Type,
				Head:        head,
				Extent:      extent,
			})
		}
		doc.Entities = append(doc.Entities, ent)
	}
	return doc, nil
}
