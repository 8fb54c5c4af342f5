package relevance

import (
	"context"
	"log/slog"
)

var discardLog = slog.New(slog.DiscardHandler)

// stubEmbedder returns fixed vectors per text.
type stubEmbedder struct {
	vecs     map[string][]float32
	fallback []float32
	err      error
	calls    int
	texts    []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	s.texts = append(s.texts, text)
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vecs[text]; ok {
		return v, nil
	}
	if s.fallback != nil {
		return s.fallback, nil
	}
	return []float32{0, 1}, nil
}

// batchStub counts batch calls on top of stubEmbedder.
type batchStub struct {
	stubEmbedder
	batches [][]string
}

func (b *batchStub) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	b.batches = append(b.batches, texts)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := b.stubEmbedder.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
