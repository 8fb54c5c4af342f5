package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/embedding"
)

var envKeys = []string{
	"DOCOUTLINE_CONFIG", "PORT", "LOG_LEVEL", "DOCOUTLINE_API_KEY",
	"EMBEDDING_BASE_URL", "EMBEDDING_API_KEY", "EMBEDDING_MODEL", "EMBEDDING_DIMENSIONS", "EMBEDDING_TIMEOUT",
	"EMBED_CACHE", "EMBED_CACHE_PATH", "REDIS_ADDRS", "REDIS_PASSWORD", "EMBED_CACHE_TTL",
	"TOP_N_SECTIONS", "WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_CONCURRENT_PARSE",
	"MAX_UPLOAD_BYTES", "JOB_TTL", "PDF_FALLBACK_PDFTOTEXT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.EmbeddingModel != "all-minilm" || cfg.EmbeddingTimeout != 30*time.Second {
		t.Errorf("unexpected embedding defaults: %q %v", cfg.EmbeddingModel, cfg.EmbeddingTimeout)
	}
	if cfg.EmbedCache != embedding.CacheNone || cfg.EmbedCacheTTL != 168*time.Hour {
		t.Errorf("unexpected cache defaults: %q %v", cfg.EmbedCache, cfg.EmbedCacheTTL)
	}
	if cfg.TopNSections != 5 || cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 || cfg.MaxConcurrentParse != 4 {
		t.Errorf("unexpected pool defaults: %+v", cfg)
	}
	if cfg.MaxUploadBytes != 52428800 || cfg.JobTTL != time.Hour || !cfg.PDFFallbackPdftotext {
		t.Errorf("unexpected limits: %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DOCOUTLINE_API_KEY", "secret")
	t.Setenv("EMBEDDING_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("EMBEDDING_DIMENSIONS", "384")
	t.Setenv("EMBED_CACHE", "Redis")
	t.Setenv("REDIS_ADDRS", "a:6379, b:6379,,")
	t.Setenv("TOP_N_SECTIONS", "10")
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("JOB_TTL", "garbage")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9000" || cfg.APIKey != "secret" {
		t.Errorf("unexpected port/key: %q %q", cfg.Port, cfg.APIKey)
	}
	if cfg.EmbeddingBaseURL != "http://localhost:11434/v1" || cfg.EmbeddingDimensions != 384 {
		t.Errorf("unexpected embedding config: %+v", cfg)
	}
	if cfg.EmbedCache != embedding.CacheRedis {
		t.Errorf("expected cache driver lowercased to redis, got %q", cfg.EmbedCache)
	}
	if len(cfg.RedisAddrs) != 2 || cfg.RedisAddrs[0] != "a:6379" || cfg.RedisAddrs[1] != "b:6379" {
		t.Errorf("unexpected redis addrs: %q", cfg.RedisAddrs)
	}
	if cfg.TopNSections != 10 {
		t.Errorf("expected top n 10, got %d", cfg.TopNSections)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected invalid worker count to fall back to 4, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected unparsable TTL to keep default, got %v", cfg.JobTTL)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
}

func TestLoad_YAMLFileWithExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_EMBED_HOST", "embedder.internal")
	path := filepath.Join(t.TempDir(), "docoutline.yaml")
	content := `
port: "7070"
api_key: from-file
embedding_base_url: http://${TEST_EMBED_HOST}:8080/v1
embedding_model: ${TEST_UNSET_MODEL:-nomic-embed-text}
embedding_timeout: 5s
embed_cache: sqlite
embed_cache_path: /tmp/cache.db
top_n_sections: 3
worker_count: 8
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCOUTLINE_CONFIG", path)
	t.Setenv("WORKER_COUNT", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7070" || cfg.APIKey != "from-file" {
		t.Errorf("unexpected file values: %q %q", cfg.Port, cfg.APIKey)
	}
	if cfg.EmbeddingBaseURL != "http://embedder.internal:8080/v1" {
		t.Errorf("expected expanded base URL, got %q", cfg.EmbeddingBaseURL)
	}
	if cfg.EmbeddingModel != "nomic-embed-text" {
		t.Errorf("expected default from expansion, got %q", cfg.EmbeddingModel)
	}
	if cfg.EmbeddingTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.EmbeddingTimeout)
	}
	if cfg.EmbedCache != embedding.CacheSQLite || cfg.EmbedCachePath != "/tmp/cache.db" {
		t.Errorf("unexpected cache settings: %q %q", cfg.EmbedCache, cfg.EmbedCachePath)
	}
	if cfg.TopNSections != 3 {
		t.Errorf("expected top n 3, got %d", cfg.TopNSections)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected env to override file worker count, got %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("expected unset keys to keep defaults, got %d", cfg.MaxQueueSize)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCOUTLINE_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing api key", func(c *Config) { c.APIKey = "" }, true},
		{"unknown cache", func(c *Config) { c.EmbedCache = "memcached" }, true},
		{"redis without addrs", func(c *Config) { c.EmbedCache = embedding.CacheRedis }, true},
		{"redis with addrs", func(c *Config) { c.EmbedCache = embedding.CacheRedis; c.RedisAddrs = []string{"localhost:6379"} }, false},
		{"sqlite without path", func(c *Config) { c.EmbedCache = embedding.CacheSQLite; c.EmbedCachePath = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.APIKey = "secret"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_EXPAND_SET", "value")
	t.Setenv("TEST_EXPAND_EMPTY", "")
	got := string(expandEnvVars([]byte("a=${TEST_EXPAND_SET} b=${TEST_EXPAND_EMPTY:-fallback} c=${TEST_EXPAND_EMPTY}")))
	want := "a=value b=fallback c="
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := (Config{LogLevel: tt.in}).SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEmbedding(t *testing.T) {
	cfg := Defaults()
	cfg.EmbeddingBaseURL = "http://localhost:11434/v1"
	cfg.EmbedCache = embedding.CacheRedis
	cfg.RedisAddrs = []string{"a:6379"}

	ec := cfg.Embedding()
	if ec.BaseURL != cfg.EmbeddingBaseURL || ec.Model != "all-minilm" || ec.CacheDriver != embedding.CacheRedis {
		t.Errorf("unexpected embedding config: %+v", ec)
	}
	if len(ec.RedisAddrs) != 1 || ec.CacheTTL != cfg.EmbedCacheTTL {
		t.Errorf("cache settings not carried: %+v", ec)
	}
}

func TestValidate_AcceptsEmbeddingCacheDrivers(t *testing.T) {
	for _, driver := range []string{embedding.CacheNone, embedding.CacheSQLite, embedding.CacheRedis} {
		cfg := Defaults()
		cfg.APIKey = "secret"
		cfg.EmbedCache = driver
		cfg.RedisAddrs = []string{"localhost:6379"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("driver %q rejected: %v", driver, err)
		}
		if got := cfg.Embedding().CacheDriver; got != driver {
			t.Errorf("expected driver %q carried to embedding config, got %q", driver, got)
		}
	}
}
