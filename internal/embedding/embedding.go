// Package embedding provides sentence embeddings for relevance ranking.
//
// The concrete client speaks the OpenAI-compatible embeddings API, so any
// server hosting a sentence-transformer model (for example all-MiniLM-L6-v2)
// can back it. Retry and caching are layered on as decorators.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by New when no embedding endpoint is set.
var ErrNotConfigured = errors.New("embedding endpoint not configured")

// Embedder maps a text to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder is implemented by embedders that can encode many texts in one call.
// The result has one vector per input, in input order.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedAll encodes texts with a single batch call when emb supports it,
// otherwise one text at a time.
func EmbedAll(ctx context.Context, emb Embedder, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if b, ok := emb.(BatchEmbedder); ok {
		vecs, err := b.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("batch embed: got %d vectors for %d texts", len(vecs), len(texts))
		}
		return vecs, nil
	}

	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := emb.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	return vecs, nil
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
