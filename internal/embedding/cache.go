package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"

	"github.com/dgallion1/docoutline/internal/metrics"
)

// ErrCacheMiss is returned by a Store when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

const cacheKeyPrefix = "docoutline:emb:"

// Store is a byte-valued key-value store backing CachedEmbedder.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedEmbedder caches vectors by model, requested dimensions and text.
// Store failures are logged and never fail the embedding call.
type CachedEmbedder struct {
	inner Embedder
	store Store
	model string
	dims  int // 0 means the model's native size
	log   *slog.Logger
}

func NewCachedEmbedder(inner Embedder, store Store, model string, dims int, log *slog.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, store: store, model: model, dims: dims, log: log}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)
	if vec, ok := c.get(ctx, key); ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
		return vec, nil
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, vec)
	return vec, nil
}

// EmbedBatch serves hits from the cache and sends only the misses upstream.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		keys[i] = c.cacheKey(t)
		if vec, ok := c.get(ctx, keys[i]); ok {
			metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
			out[i] = vec
			continue
		}
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := EmbedAll(ctx, c.inner, missTexts)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		c.put(ctx, keys[i], vecs[j])
	}
	return out, nil
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.model + "\x00" + strconv.Itoa(c.dims) + "\x00" + text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) get(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Warn("embedding cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	vec, err := decodeVector(data)
	if err != nil {
		c.log.Warn("embedding cache entry unreadable", "key", key, "error", err)
		return nil, false
	}
	if c.dims > 0 && len(vec) != c.dims {
		c.log.Warn("embedding cache entry has wrong dimensions", "key", key, "got", len(vec), "want", c.dims)
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) put(ctx context.Context, key string, vec []float32) {
	if err := c.store.Set(ctx, key, encodeVector(vec)); err != nil {
		c.log.Warn("embedding cache set failed", "key", key, "error", err)
	}
}
