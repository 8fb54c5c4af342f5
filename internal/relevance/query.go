// Package relevance ranks outline sections of a document collection against
// a persona and the task that persona needs to get done.
package relevance

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgallion1/docoutline/internal/embedding"
)

// ErrNoEmbedder is returned when ranking is attempted without an embedding capability.
var ErrNoEmbedder = errors.New("relevance: no embedder available")

// BuildQuery renders the persona and job as the single query sentence.
func BuildQuery(persona, job string) string {
	return fmt.Sprintf("As a %s, I need to %s", persona, job)
}

// QueryEncoder embeds the persona/job query.
type QueryEncoder struct {
	emb embedding.Embedder
}

func NewQueryEncoder(emb embedding.Embedder) (*QueryEncoder, error) {
	if emb == nil {
		return nil, ErrNoEmbedder
	}
	return &QueryEncoder{emb: emb}, nil
}

// Encode returns the query vector. It is called once per analysis run.
func (q *QueryEncoder) Encode(ctx context.Context, persona, job string) ([]float32, error) {
	vec, err := q.emb.Embed(ctx, BuildQuery(persona, job))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return vec, nil
}
