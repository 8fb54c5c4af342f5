package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/embedding"
	"github.com/dgallion1/docoutline/internal/metrics"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server for docoutline.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	stats        *embedding.LatencyStats
	model        string
	log          *slog.Logger
	cfg          config.Config
	parseOpts    parser.Options

	// Bounds synchronous parses on the request path.
	parseSem chan struct{}
}

// NewServer creates and configures the HTTP server. stats may be nil when
// no embedding endpoint is configured.
func NewServer(orch *pipeline.Orchestrator, stats *embedding.LatencyStats, model string, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		stats:        stats,
		model:        model,
		log:          log,
		cfg:          cfg,
		parseOpts:    parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		parseSem:     make(chan struct{}, max(cfg.MaxConcurrentParse, 1)),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(metrics.Middleware)

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/outline", s.handleOutline)
		r.Post("/api/outline/batch", s.handleOutlineBatch)
		r.Post("/api/analyze", s.handleAnalyze)
		r.Get("/api/jobs/{jobID}/status", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/result", s.handleJobResult)
		r.Get("/api/stats/embedding", s.handleEmbeddingStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"analysis_enabled": s.orchestrator.CanAnalyze(),
		"queue_depth":      s.orchestrator.QueueDepth(),
	})
}
