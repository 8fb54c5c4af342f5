package embedding

import (
	"context"
	"log/slog"
	"sync"
)

var discardLog = slog.New(slog.DiscardHandler)

// fakeEmbedder returns a vector derived from the text length and counts calls.
type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	texts  []string
	errs   []error // Returned in order, one per call, before succeeding
	vector func(text string) []float32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.texts = append(f.texts, text)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if f.vector != nil {
		return f.vector(text), nil
	}
	return []float32{float32(len(text)), 1}, nil
}

// fakeBatchEmbedder adds batch support and counts batch calls.
type fakeBatchEmbedder struct {
	fakeEmbedder
	batchCalls int
}

func (f *fakeBatchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.batchCalls++
	f.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.fakeEmbedder.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// memStore is an in-memory Store with injectable failures.
type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}
