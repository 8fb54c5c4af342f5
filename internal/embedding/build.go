package embedding

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Cache drivers accepted by Config.CacheDriver.
const (
	CacheNone   = "none"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Config selects the endpoint and cache used by New.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration

	CacheDriver   string
	CachePath     string
	RedisAddrs    []string
	RedisPassword string
	CacheTTL      time.Duration
}

// Service is an assembled embedder chain: cache, then retry, then the HTTP client.
type Service struct {
	Embedder Embedder
	Client   *OpenAIEmbedder
	Stats    *LatencyStats

	closer io.Closer
}

// New builds the embedder chain described by cfg. It returns ErrNotConfigured
// when no endpoint is set.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*Service, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNotConfigured
	}

	stats := NewLatencyStats(time.Hour)
	client := NewOpenAIEmbedder(OpenAIConfig{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Timeout:    cfg.Timeout,
		Stats:      stats,
	})
	svc := &Service{
		Embedder: NewRetryEmbedder(client, log),
		Client:   client,
		Stats:    stats,
	}

	var store Store
	switch cfg.CacheDriver {
	case "", CacheNone:
	case CacheSQLite:
		s, err := OpenSQLiteStore(ctx, cfg.CachePath, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("embedding cache: %w", err)
		}
		if n, err := s.Prune(ctx); err != nil {
			log.Warn("embedding cache prune failed", "error", err)
		} else if n > 0 {
			log.Info("embedding cache pruned", "entries", n)
		}
		store, svc.closer = s, s
	case CacheRedis:
		s, err := NewRedisStore(RedisConfig{Addrs: cfg.RedisAddrs, Password: cfg.RedisPassword, TTL: cfg.CacheTTL})
		if err != nil {
			return nil, fmt.Errorf("embedding cache: %w", err)
		}
		store, svc.closer = s, s
	default:
		return nil, fmt.Errorf("unknown embedding cache driver %q", cfg.CacheDriver)
	}

	if store != nil {
		svc.Embedder = NewCachedEmbedder(svc.Embedder, store, cfg.Model, cfg.Dimensions, log)
		log.Info("embedding cache enabled", "driver", cfg.CacheDriver)
	}
	log.Info("embedding endpoint configured", "base_url", cfg.BaseURL, "model", cfg.Model)
	return svc, nil
}

// Close releases the cache store, if any.
func (s *Service) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
