package relevance

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/embedding"
)

// ErrDimensionMismatch is returned when a section vector and the query
// vector differ in length and so cannot be compared.
var ErrDimensionMismatch = errors.New("relevance: embedding dimension mismatch")

// DefaultTopN is the number of sections kept when no limit is configured.
const DefaultTopN = 5

// DocumentOutline pairs a document's fragments with its extracted outline.
type DocumentOutline struct {
	Name      string
	Fragments []doctree.Fragment
	Outline   doctree.Outline
}

// RankedSection is a heading fragment scored against the query.
// Fragment is a copy; the source fragment list is never modified.
type RankedSection struct {
	Document string
	Fragment doctree.Fragment
	Score    float64

	source int // Index into the ranked documents
}

// Ranker scores outline headings by cosine similarity to a query vector.
type Ranker struct {
	emb  embedding.Embedder
	topN int
}

func NewRanker(emb embedding.Embedder, topN int) (*Ranker, error) {
	if emb == nil {
		return nil, ErrNoEmbedder
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Ranker{emb: emb, topN: topN}, nil
}

// TopN returns the configured result limit.
func (r *Ranker) TopN() int { return r.topN }

// ResolveHeading finds the first fragment with the item's exact text and page.
func ResolveHeading(item doctree.OutlineItem, frags []doctree.Fragment) (doctree.Fragment, bool) {
	for _, f := range frags {
		if f.Text == item.Text && f.Page == item.Page {
			return f, true
		}
	}
	return doctree.Fragment{}, false
}

// Rank pools the resolvable headings of all documents, scores them against
// query and returns the best TopN by descending score. Equal scores keep
// document order, then outline order. Headings with no matching fragment are
// skipped.
func (r *Ranker) Rank(ctx context.Context, query []float32, docs []DocumentOutline) ([]RankedSection, error) {
	var pooled []RankedSection
	for di, d := range docs {
		var heads []doctree.Fragment
		for _, item := range d.Outline.Items {
			if f, ok := ResolveHeading(item, d.Fragments); ok {
				heads = append(heads, f)
			}
		}
		if len(heads) == 0 {
			continue
		}

		texts := make([]string, len(heads))
		for i, h := range heads {
			texts[i] = h.Text
		}
		vecs, err := embedding.EmbedAll(ctx, r.emb, texts)
		if err != nil {
			return nil, fmt.Errorf("embed sections of %s: %w", d.Name, err)
		}
		for i, h := range heads {
			if len(vecs[i]) != len(query) {
				return nil, fmt.Errorf("%w: section %q of %s has %d dims, query has %d",
					ErrDimensionMismatch, h.Text, d.Name, len(vecs[i]), len(query))
			}
			pooled = append(pooled, RankedSection{
				Document: d.Name,
				Fragment: h,
				Score:    embedding.CosineSimilarity(query, vecs[i]),
				source:   di,
			})
		}
	}

	sort.SliceStable(pooled, func(i, j int) bool { return pooled[i].Score > pooled[j].Score })
	if len(pooled) > r.topN {
		pooled = pooled[:r.topN]
	}
	return pooled, nil
}
