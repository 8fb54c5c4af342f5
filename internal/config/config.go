package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/embedding"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Embedding endpoint (OpenAI-compatible)
	EmbeddingBaseURL    string        `yaml:"embedding_base_url"`
	EmbeddingAPIKey     string        `yaml:"embedding_api_key"`
	EmbeddingModel      string        `yaml:"embedding_model"`
	EmbeddingDimensions int           `yaml:"embedding_dimensions"`
	EmbeddingTimeout    time.Duration `yaml:"embedding_timeout"`

	// Embedding cache
	EmbedCache     string        `yaml:"embed_cache"` // none, sqlite, redis
	EmbedCachePath string        `yaml:"embed_cache_path"`
	RedisAddrs     []string      `yaml:"redis_addrs"`
	RedisPassword  string        `yaml:"redis_password"`
	EmbedCacheTTL  time.Duration `yaml:"embed_cache_ttl"`

	// Ranking
	TopNSections int `yaml:"top_n_sections"`

	// Worker pool
	WorkerCount        int `yaml:"worker_count"`
	MaxQueueSize       int `yaml:"max_queue_size"`
	MaxConcurrentParse int `yaml:"max_concurrent_parse"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:                 "8090",
		LogLevel:             "info",
		EmbeddingModel:       "all-minilm",
		EmbeddingTimeout:     30 * time.Second,
		EmbedCache:           embedding.CacheNone,
		EmbedCachePath:       "docoutline-embeddings.db",
		EmbedCacheTTL:        7 * 24 * time.Hour,
		TopNSections:         5,
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxConcurrentParse:   4,
		MaxUploadBytes:       52428800, // 50MB
		JobTTL:               1 * time.Hour,
		PDFFallbackPdftotext: true,
	}
}

// Load builds a Config from defaults, then the YAML file named by
// DOCOUTLINE_CONFIG if set, then environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("DOCOUTLINE_CONFIG"); path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)

	cfg.APIKey = envOr("DOCOUTLINE_API_KEY", cfg.APIKey)

	cfg.EmbeddingBaseURL = envOr("EMBEDDING_BASE_URL", cfg.EmbeddingBaseURL)
	cfg.EmbeddingAPIKey = envOr("EMBEDDING_API_KEY", cfg.EmbeddingAPIKey)
	cfg.EmbeddingModel = envOr("EMBEDDING_MODEL", cfg.EmbeddingModel)
	cfg.EmbeddingDimensions = envInt("EMBEDDING_DIMENSIONS", cfg.EmbeddingDimensions)
	cfg.EmbeddingTimeout = envDuration("EMBEDDING_TIMEOUT", cfg.EmbeddingTimeout)

	cfg.EmbedCache = strings.ToLower(envOr("EMBED_CACHE", cfg.EmbedCache))
	cfg.EmbedCachePath = envOr("EMBED_CACHE_PATH", cfg.EmbedCachePath)
	cfg.RedisAddrs = envList("REDIS_ADDRS", cfg.RedisAddrs)
	cfg.RedisPassword = envOr("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.EmbedCacheTTL = envDuration("EMBED_CACHE_TTL", cfg.EmbedCacheTTL)

	cfg.TopNSections = envInt("TOP_N_SECTIONS", cfg.TopNSections)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxConcurrentParse = envInt("MAX_CONCURRENT_PARSE", cfg.MaxConcurrentParse)

	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)

	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Defaults()
	if c.Port == "" {
		c.Port = d.Port
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = d.EmbeddingModel
	}
	if c.EmbeddingDimensions < 0 {
		c.EmbeddingDimensions = 0
	}
	if c.EmbeddingTimeout <= 0 {
		c.EmbeddingTimeout = d.EmbeddingTimeout
	}
	if c.EmbedCache == "" {
		c.EmbedCache = d.EmbedCache
	}
	if c.EmbedCacheTTL <= 0 {
		c.EmbedCacheTTL = d.EmbedCacheTTL
	}
	if c.TopNSections <= 0 {
		c.TopNSections = d.TopNSections
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxConcurrentParse <= 0 {
		c.MaxConcurrentParse = d.MaxConcurrentParse
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
}

// Validate checks what the HTTP server needs.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCOUTLINE_API_KEY is required")
	}
	return c.ValidateEmbedding()
}

// ValidateEmbedding checks the embedding cache settings.
func (c Config) ValidateEmbedding() error {
	switch c.EmbedCache {
	case embedding.CacheNone:
	case embedding.CacheSQLite:
		if c.EmbedCachePath == "" {
			return fmt.Errorf("EMBED_CACHE_PATH is required for the sqlite cache")
		}
	case embedding.CacheRedis:
		if len(c.RedisAddrs) == 0 {
			return fmt.Errorf("REDIS_ADDRS is required for the redis cache")
		}
	default:
		return fmt.Errorf("EMBED_CACHE must be one of none, sqlite, redis; got %q", c.EmbedCache)
	}
	return nil
}

// Embedding returns the settings for embedding.New.
func (c Config) Embedding() embedding.Config {
	return embedding.Config{
		BaseURL:       c.EmbeddingBaseURL,
		APIKey:        c.EmbeddingAPIKey,
		Model:         c.EmbeddingModel,
		Dimensions:    c.EmbeddingDimensions,
		Timeout:       c.EmbeddingTimeout,
		CacheDriver:   c.EmbedCache,
		CachePath:     c.EmbedCachePath,
		RedisAddrs:    c.RedisAddrs,
		RedisPassword: c.RedisPassword,
		CacheTTL:      c.EmbedCacheTTL,
	}
}

// SlogLevel parses LogLevel, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, def, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(name)
		if val == "" && hasDefault {
			val = def
		}
		return []byte(val)
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
