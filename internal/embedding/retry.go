package embedding

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// MaxRetries is the number of attempts made for a retryable failure.
const MaxRetries = 3

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// RetryEmbedder retries retryable failures of the wrapped embedder.
type RetryEmbedder struct {
	inner Embedder
	log   *slog.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetryEmbedder(inner Embedder, log *slog.Logger) *RetryEmbedder {
	return &RetryEmbedder{inner: inner, log: log, sleep: sleepCtx}
}

func (r *RetryEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := r.do(ctx, func() error {
		var err error
		vec, err = r.inner.Embed(ctx, text)
		return err
	})
	return vec, err
}

// EmbedBatch retries the whole batch. It falls back to per-text calls when
// the inner embedder has no batch support.
func (r *RetryEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vecs [][]float32
	err := r.do(ctx, func() error {
		var err error
		vecs, err = EmbedAll(ctx, r.inner, texts)
		return err
	})
	return vecs, err
}

func (r *RetryEmbedder) do(ctx context.Context, call func() error) error {
	var err error
	for attempt := range MaxRetries {
		if attempt > 0 {
			wait := Backoff(attempt - 1)
			r.log.Warn("retrying embedding request", "attempt", attempt+1, "wait", wait, "error", err)
			if serr := r.sleep(ctx, wait); serr != nil {
				return serr
			}
		}
		err = call()
		if err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
