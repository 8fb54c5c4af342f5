package relevance

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/embedding"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/report"
)

// Request is one persona/job analysis over a set of parsed documents.
type Request struct {
	Persona string
	Job     string

	// InputDocuments lists every requested filename, including ones that
	// could not be parsed. Defaults to the names of Documents.
	InputDocuments []string
	Documents      []*doctree.Document
	Now            time.Time // Zero means time.Now
}

// Analyzer runs outline extraction, ranking and excerpting for a collection.
type Analyzer struct {
	encoder *QueryEncoder
	ranker  *Ranker
	log     *slog.Logger
}

// NewAnalyzer fails with ErrNoEmbedder when emb is nil.
func NewAnalyzer(emb embedding.Embedder, topN int, log *slog.Logger) (*Analyzer, error) {
	enc, err := NewQueryEncoder(emb)
	if err != nil {
		return nil, err
	}
	rk, err := NewRanker(emb, topN)
	if err != nil {
		return nil, err
	}
	return &Analyzer{encoder: enc, ranker: rk, log: log}, nil
}

// Outlines extracts the outline of each document.
func Outlines(docs []*doctree.Document) []DocumentOutline {
	out := make([]DocumentOutline, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentOutline{
			Name:      d.Name,
			Fragments: d.Fragments,
			Outline:   outline.Extract(d.Fragments),
		})
	}
	return out
}

// Analyze ranks the collection's sections for the request. Any embedding
// failure aborts the whole run.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*report.Analysis, error) {
	return a.AnalyzeOutlines(ctx, req, Outlines(req.Documents))
}

// AnalyzeOutlines is Analyze for documents whose outlines are already known.
func (a *Analyzer) AnalyzeOutlines(ctx context.Context, req Request, docs []DocumentOutline) (*report.Analysis, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	inputs := req.InputDocuments
	if inputs == nil {
		inputs = make([]string, 0, len(docs))
		for _, d := range docs {
			inputs = append(inputs, d.Name)
		}
	}

	query, err := a.encoder.Encode(ctx, req.Persona, req.Job)
	if err != nil {
		return nil, err
	}
	ranked, err := a.ranker.Rank(ctx, query, docs)
	if err != nil {
		return nil, err
	}
	a.log.Info("sections ranked", "documents", len(docs), "kept", len(ranked), "top_n", a.ranker.TopN())

	res := report.NewAnalysis(inputs, req.Persona, req.Job, now)
	for i, s := range ranked {
		res.ExtractedSections = append(res.ExtractedSections, report.ExtractedSection{
			Document:       s.Document,
			SectionTitle:   s.Fragment.Text,
			ImportanceRank: i + 1,
			PageNumber:     s.Fragment.Page,
		})
		text := Excerpt(s.Fragment, docs[s.source].Fragments)
		if text == "" {
			continue
		}
		res.SubsectionAnalysis = append(res.SubsectionAnalysis, report.Subsection{
			Document:    s.Document,
			RefinedText: text,
			PageNumber:  s.Fragment.Page,
		})
	}
	return res, nil
}
