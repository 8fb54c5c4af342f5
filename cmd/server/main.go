package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/embedding"
	"github.com/dgallion1/docoutline/internal/metrics"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	metrics.Register()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Embedding endpoint is optional: without it only outlines are served.
	var (
		emb   embedding.Embedder
		stats *embedding.LatencyStats
		model string
	)
	svc, err := embedding.New(ctx, cfg.Embedding(), log)
	switch {
	case errors.Is(err, embedding.ErrNotConfigured):
		log.Warn("EMBEDDING_BASE_URL not set, analysis disabled")
	case err != nil:
		log.Error("embedding setup failed", "error", err)
		os.Exit(1)
	default:
		defer svc.Close()
		emb, stats, model = svc.Embedder, svc.Stats, svc.Client.Model()

		hcCtx, hcCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := svc.Client.HealthCheck(hcCtx); err != nil {
			log.Warn("embedding endpoint unreachable at startup", "error", err)
		}
		hcCancel()
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, emb, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, stats, model, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting docoutline", "port", cfg.Port, "analysis_enabled", orch.CanAnalyze())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
