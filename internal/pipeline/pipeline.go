// Package pipeline turns annotated documents into relation instances.
package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/relcontext/internal/align"
	"github.com/ppiankov/relcontext/internal/corpus"
	"github.com/ppiankov/relcontext/internal/extract"
	"github.com/ppiankov/relcontext/internal/logging"
	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/parser"
	"github.com/ppiankov/relcontext/internal/structure"
	"github.com/ppiankov/relcontext/internal/tag"
	"github.com/ppiankov/relcontext/internal/tree"
)

// AnnotationSuffix names the pre-computed annotation file that may sit
// next to a document.
const AnnotationSuffix = ".corenlp.json"

// ErrNoAnnotator is returned when a document has no pre-computed
// annotation and no annotator is configured.
var ErrNoAnnotator = errors.New("no annotation file and no annotator configured")

// Annotator produces parser annotations for raw text.
type Annotator interface {
	Annotate(ctx context.Context, text string) (*parser.Annotation, error)
}

// Pipeline orchestrates annotation, alignment, extraction and tagging
// for one document at a time. It holds no per-document state and is
// safe for concurrent use.
type Pipeline struct {
	annotator Annotator
	extractor *extract.ContextExtractor
	config    *model.Config
	logger    *zap.Logger
}

// NewPipeline creates a pipeline. annotator may be nil when every
// document comes with an annotation file.
func NewPipeline(cfg *model.Config, annotator Annotator, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		annotator: annotator,
		extractor: extract.NewContextExtractor(),
		config:    cfg,
		logger:    logging.OrNop(logger),
	}
}

// ProcessFile loads the document at path and processes it. An
// annotation file at path+AnnotationSuffix is used when present.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*model.Report, error) {
	return p.ProcessFileWithAnnotation(ctx, path, "")
}

// ProcessFileWithAnnotation processes the document at path with the
// annotation stored at annPath. An empty annPath falls back to the
// sidecar file and then to the annotator.
func (p *Pipeline) ProcessFileWithAnnotation(ctx context.Context, path, annPath string) (*model.Report, error) {
	doc, err := corpus.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	if annPath == "" {
		if _, err := os.Stat(path + AnnotationSuffix); err == nil {
			annPath = path + AnnotationSuffix
		}
	}
	ann, err := p.annotation(ctx, doc, annPath)
	if err != nil {
		return nil, err
	}

	report, err := p.ProcessDocument(ctx, doc, ann)
	if err != nil {
		return nil, err
	}
	report.Source = path
	return report, nil
}

func (p *Pipeline) annotation(ctx context.Context, doc *model.Document, annPath string) (*parser.Annotation, error) {
	if annPath != "" {
		f, err := os.Open(annPath)
		if err != nil {
			return nil, fmt.Errorf("open annotation: %w", err)
		}
		defer func() { _ = f.Close() }()
		ann, err := parser.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", annPath, err)
		}
		return ann, nil
	}
	if p.annotator == nil {
		return nil, fmt.Errorf("document %s: %w", doc.ID, ErrNoAnnotator)
	}
	ann, err := p.annotator.Annotate(ctx, doc.Text)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	return ann, nil
}

// ProcessDocument builds the relation instances of doc from its
// annotation.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc *model.Document, ann *parser.Annotation) (*model.Report, error) {
	report := &model.Report{DocID: doc.ID, ProcessedAt: time.Now().UTC()}
	stats := &report.Stats
	stats.Documents = 1

	sentences, dropped := parser.BuildAll(ann)
	stats.Sentences = len(sentences)
	stats.DroppedSentences = len(dropped)
	for _, err := range dropped {
		p.logger.Warn("dropping sentence", zap.String("doc", doc.ID), zap.Error(err))
	}

	groups, unassigned := p.assign(doc, sentences)
	stats.Unassigned = unassigned

	aligner := align.New(doc.Text)
	for i, s := range sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mentions := groups[i]
		stats.Mentions += len(mentions)

		aligned := mentions[:0]
		for _, m := range mentions {
			if err := aligner.Align(s, m); err != nil {
				p.logger.Warn("alignment failed",
					zap.String("doc", doc.ID), zap.Int("sentence", s.Index),
					zap.String("mention", m.ID), zap.Error(err))
				continue
			}
			aligned = append(aligned, m)
		}
		report.Instances = append(report.Instances, p.pairs(doc, s, aligned, stats)...)
	}

	p.logger.Debug("document processed",
		zap.String("doc", doc.ID),
		zap.Int("sentences", stats.Sentences),
		zap.Int("instances", len(report.Instances)))
	return report, nil
}

// assign groups the document's mentions by sentence. A mention belongs
// to the first sentence whose span holds its extent, with one character
// of slack on either side. It returns the number of mentions that fit
// no sentence or were filtered out by type.
func (p *Pipeline) assign(doc *model.Document, sentences []*structure.Sentence) ([][]*model.Mention, int) {
	groups := make([][]*model.Mention, len(sentences))
	unassigned := 0
	for _, m := range doc.Mentions() {
		if !p.wanted(m) {
			unassigned++
			continue
		}
		placed := false
		for i, s := range sentences {
			if m.Extent.Start >= s.Span.Start-1 && m.Extent.End+1 <= s.Span.End+1 {
				groups[i] = append(groups[i], &m)
				placed = true
				break
			}
		}
		if !placed {
			unassigned++
		}
	}
	return groups, unassigned
}

func (p *Pipeline) wanted(m model.Mention) bool {
	ex := p.config.Extraction
	if len(ex.EntityTypes) > 0 && !slices.Contains(ex.EntityTypes, m.EntityType) {
		return false
	}
	if len(ex.MentionTypes) > 0 && m.MentionType != "" && !slices.Contains(ex.MentionTypes, m.MentionType) {
		return false
	}
	return true
}

// pairs builds an instance for every admissible mention pair of s.
func (p *Pipeline) pairs(doc *model.Document, s *structure.Sentence, mentions []*model.Mention, stats *model.Stats) []model.Instance {
	slices.SortStableFunc(mentions, func(a, b *model.Mention) int {
		return cmp.Or(
			cmp.Compare(a.HeadwordSpan.Start, b.HeadwordSpan.Start),
			cmp.Compare(a.HeadwordSpan.End, b.HeadwordSpan.End),
		)
	})

	var out []model.Instance
	for k := 0; k < len(mentions); k++ {
		for l := k + 1; l < len(mentions); l++ {
			a1, a2 := mentions[k], mentions[l]
			if p.config.Extraction.SkipSameEntity && a1.EntityID == a2.EntityID {
				continue
			}
			stats.Pairs++
			if model.CompareMentions(a1, a2) > 0 {
				a1, a2 = a2, a1
			}

			inst, err := p.instance(doc, s, a1, a2)
			switch {
			case errors.Is(err, extract.ErrOutOfSentence):
				stats.OutOfSentence++
				p.logger.Debug("pair outside shared structure",
					zap.String("doc", doc.ID), zap.String("m1", a1.ID), zap.String("m2", a2.ID), zap.Error(err))
				continue
			case errors.Is(err, errUntagged):
				stats.Untagged++
				p.logger.Debug("pair excluded: placeholders missing",
					zap.String("doc", doc.ID), zap.String("m1", a1.ID), zap.String("m2", a2.ID))
				continue
			case err != nil:
				p.logger.Warn("extraction failed",
					zap.String("doc", doc.ID), zap.String("m1", a1.ID), zap.String("m2", a2.ID), zap.Error(err))
				continue
			}

			if inst.Type == model.NoRelation {
				stats.Negative++
			} else {
				stats.Positive++
			}
			out = append(out, inst)
		}
	}
	return out
}

var errUntagged = errors.New("relation context lacks a placeholder")

func (p *Pipeline) instance(doc *model.Document, s *structure.Sentence, a1, a2 *model.Mention) (model.Instance, error) {
	rc, err := p.extractor.Extract(s, a1, a2)
	if err != nil {
		return model.Instance{}, err
	}

	ct := tag.Tree(rc.Constituent.Tree, a1, a2)
	dt := tag.Tree(rc.Dependency.Tree, a1, a2)
	if !tag.HasBoth(ct) || !tag.HasBoth(dt) {
		return model.Instance{}, errUntagged
	}
	path := tag.Path(rc.Path, a1, a2)
	words, tags, rels := sequences(s, ct, a1, a2)

	types := p.config.Extraction.RelationTypes
	if len(types) == 0 {
		types = model.RelationTypes
	}
	relType := doc.RelationType(a1.ID, a2.ID)
	idx := model.RelationTypeIndex(types, relType)
	if idx < 0 {
		relType = model.NoRelation
		idx = max(0, model.RelationTypeIndex(types, relType))
	}

	return model.Instance{
		ID:          model.InstanceID(doc.ID, s.Index, a1.ID, a2.ID),
		DocID:       doc.ID,
		Sentence:    s.Index,
		Arg1:        a1.ID,
		Arg2:        a2.ID,
		Type:        relType,
		TypeIndex:   idx,
		Constituent: ct.String(),
		Dependency:  tag.Roles(dt).String(),
		Path:        extract.PathLabels(path),
		Words:       words,
		Tags:        tags,
		Relations:   rels,
		PathWords:   extract.PathWords(path),
		PathTags:    extract.PathTags(path),
	}, nil
}

// sequences reads the leaves of a tagged constituent subtree of s as
// words, pre-terminals and grammatical relations. Each sequence starts
// with the first placeholder; the second goes before the leaf where the
// second mention's headword starts.
func sequences(s *structure.Sentence, ct *tree.Tree, a1, a2 *model.Mention) (words, tags, rels []string) {
	first, second := tag.Order(a1, a2)
	t1 := tag.FirstPrefix + first.EntityType
	t2 := tag.SecondPrefix + second.EntityType

	// Constituent leaf k of the sentence is dependency word k+1.
	index := make(map[int]int)
	for k, leaf := range s.Constituent.Leaves() {
		index[s.Constituent.Node(leaf).Span.Start] = k + 1
	}

	words, tags, rels = []string{t1}, []string{t1}, []string{t1}
	for _, leaf := range ct.Leaves() {
		n := ct.Node(leaf)
		if n.Span.Start == second.HeadwordSpan.Start {
			words, tags, rels = append(words, t2), append(tags, t2), append(rels, t2)
		}
		words = append(words, n.Label)

		pre := n.Label
		if p := ct.Parent(leaf); p != tree.None {
			pre = ct.Node(p).Label
		}
		tags = append(tags, pre)

		rel := n.Label
		if id, ok := s.Word(index[n.Span.Start]); ok {
			if r := s.Dependency.Node(id).Dep.Role; r != "" {
				rel = r
			}
		}
		rels = append(rels, rel)
	}
	return words, tags, rels
}
