package corpus

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/span"
)

type apfSource struct {
	URI      string      `xml:"URI,attr"`
	Document apfDocument `xml:"document"`
}

type apfDocument struct {
	DocID     string        `xml:"DOCID,attr"`
	Entities  []apfEntity   `xml:"entity"`
	Relations []apfRelation `xml:"relation"`
}

type apfEntity struct {
	ID       string             `xml:"ID,attr"`
	Type     string             `xml:"TYPE,attr"`
	Subtype  string             `xml:"SUBTYPE,attr"`
	Mentions []apfEntityMention `xml:"entity_mention"`
}

type apfEntityMention struct {
	ID     string      `xml:"ID,attr"`
	Type   string      `xml:"TYPE,attr"`
	Extent *apfCharseq `xml:"extent>charseq"`
	Head   *apfCharseq `xml:"head>charseq"`
}

type apfCharseq struct {
	Start int `xml:"START,attr"`
	End   int `xml:"END,attr"`
}

type apfRelation struct {
	ID       string               `xml:"ID,attr"`
	Type     string               `xml:"TYPE,attr"`
	Subtype  string               `xml:"SUBTYPE,attr"`
	Mentions []apfRelationMention `xml:"relation_mention"`
}

type apfRelationMention struct {
	ID   string   `xml:"ID,attr"`
	Args []apfArg `xml:"rel_mention_arg"`
}

type apfArg struct {
	MentionID string `xml:"ENTITYMENTIONID,attr"`
	Role      string `xml:"ROLE,attr"`
}

func (c *apfCharseq) span() *span.Span {
	if c == nil {
		return nil
	}
	sp := span.New(c.Start, c.End)
	return &sp
}

// LoadACE reads an ACE annotation file and the source text it names.
// The source is looked up from the annotation's URI attribute next to
// the annotation file, falling back to the annotation's base name with
// ".sgm".
func LoadACE(apfPath string) (*model.Document, error) {
	f, err := os.Open(apfPath)
	if err != nil {
		return nil, fmt.Errorf("open annotation: %w", err)
	}
	defer func() { _ = f.Close() }()

	var src apfSource
	if err := xml.NewDecoder(f).Decode(&src); err != nil {
		return nil, fmt.Errorf("%s: decode annotation: %w", apfPath, err)
	}

	text, err := readSource(sourcePath(apfPath, src.URI))
	if err != nil {
		return nil, err
	}
	return convertACE(src.Document, text)
}

func sourcePath(apfPath, uri string) string {
	dir := filepath.Dir(apfPath)
	if uri != "" {
		p := filepath.Join(dir, filepath.Base(uri))
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return strings.TrimSuffix(apfPath, ".apf.xml") + ".sgm"
}

func readSource(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = f.Close() }()

	text, err := StripMarkup(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// StripMarkup drops SGML tags and keeps the text between them verbatim,
// character references included, so annotation offsets into the tag-free
// text stay valid.
func StripMarkup(r io.Reader) (string, error) {
	var b strings.Builder
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return b.String(), nil
			}
			return "", fmt.Errorf("tokenize source: %w", z.Err())
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}

func convertACE(d apfDocument, text string) (*model.Document, error) {
	doc := &model.Document{ID: d.DocID, Text: text}
	for _, e := range d.Entities {
		ent := model.Entity{ID: e.ID, Type: e.Type, Subtype: e.Subtype}
		for _, m := range e.Mentions {
			head, extent, err := model.FillSpans(m.Head.span(), m.Extent.span())
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

	for _, r := range d.Relations {
		for _, rm := range r.Mentions {
			arg1, arg2 := relationArgs(rm.Args)
			if arg1 == "" || arg2 == "" {
				continue
			}
			id := rm.ID
			if id == "" {
				id = r.ID
			}
			doc.Relations = append(doc.Relations, model.Relation{
				ID:      id,
				Type:    r.Type,
				Subtype: r.Subtype,
				Arg1:    arg1,
				Arg2:    arg2,
			})
		}
	}
	return doc, nil
}

// relationArgs picks the Arg-1 and Arg-2 mentions, falling back to the
// first two arguments in document order when roles are absent.
func relationArgs(args []apfArg) (string, string) {
	var arg1, arg2 string
	for _, a := range args {
		switch a.Role {
		case "Arg-1":
			arg1 = a.MentionID
		case "Arg-2":
			arg2 = a.MentionID
		}
	}
	if arg1 == "" && arg2 == "" && len(args) >= 2 {
		return args[0].MentionID, args[1].MentionID
	}
	return arg1, arg2
}
