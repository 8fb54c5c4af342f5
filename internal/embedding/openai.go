package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dgallion1/docoutline/internal/metrics"
)

// OpenAIConfig holds the settings for an OpenAI-compatible embeddings endpoint.
type OpenAIConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int           // 0 leaves the model default
	Timeout    time.Duration // Per request
	Stats      *LatencyStats // Optional
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	stats      *LatencyStats
}

func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		stats:      cfg.Stats,
	}
}

// Model returns the configured model name.
func (e *OpenAIEmbedder) Model() string {
	return string(e.model)
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch encodes all texts in one request. The response is reordered by
// index since servers may return items out of order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	model := string(e.model)
	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(model, "api_error").Inc()
		return nil, parseAPIError(err)
	}
	if len(resp.Data) != len(texts) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(model, "count_mismatch").Inc()
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	vecs := make([][]float32, len(data))
	for i, d := range data {
		if len(d.Embedding) == 0 {
			metrics.EmbeddingRequestsTotal.WithLabelValues(model, "error").Inc()
			metrics.EmbeddingErrorsTotal.WithLabelValues(model, "empty_vector").Inc()
			return nil, fmt.Errorf("empty embedding at index %d", d.Index)
		}
		vecs[i] = d.Embedding
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
	if e.stats != nil {
		e.stats.Record(duration)
	}
	return vecs, nil
}

// HealthCheck verifies API availability via ListModels.
func (e *OpenAIEmbedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError turns 429 and 5xx responses into *RetryableError and
// extracts a readable message from everything else.
func parseAPIError(err error) error {
	var status int
	var msg string

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status, msg = apiErr.HTTPStatusCode, apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
		if msg = extractDetail(reqErr.Body); msg == "" {
			msg = string(reqErr.Body)
		}
	default:
		return fmt.Errorf("embedding request failed: %w", err)
	}

	if status == http.StatusTooManyRequests || status >= 500 {
		return &RetryableError{StatusCode: status, Message: msg}
	}
	return fmt.Errorf("embedding API error %d: %s", status, msg)
}

// extractDetail reads the "detail" field used by some self-hosted servers.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
