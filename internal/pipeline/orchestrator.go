package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/embedding"
	"github.com/dgallion1/docoutline/internal/metrics"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/relevance"
)

// ErrQueueFull is returned by Submit when the job queue has no room.
var ErrQueueFull = errors.New("job queue is full")

// Orchestrator manages the document job pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	embedder embedding.Embedder
	log      *slog.Logger
	cfg      config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. emb may be nil, which disables
// analysis jobs.
func NewOrchestrator(cfg config.Config, emb embedding.Embedder, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		embedder: emb,
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	opts := parser.Options{FallbackPdftotext: o.cfg.PDFFallbackPdftotext}
	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.embedder, o.log, opts, o.cfg.MaxConcurrentParse, o.cfg.TopNSections)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					metrics.QueueDepth.Set(float64(len(o.queue)))
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Debug("expired jobs removed", "count", n)
				}
				metrics.JobsStored.Set(float64(o.jobs.Len()))
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing. Analysis jobs are refused with
// relevance.ErrNoEmbedder when no embedder is configured.
func (o *Orchestrator) Submit(job *Job) error {
	if job.Kind == KindAnalysis && o.embedder == nil {
		return relevance.ErrNoEmbedder
	}
	o.jobs.Put(job)
	metrics.JobsStored.Set(float64(o.jobs.Len()))
	select {
	case o.queue <- job:
		metrics.QueueDepth.Set(float64(len(o.queue)))
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// CanAnalyze reports whether analysis jobs can run.
func (o *Orchestrator) CanAnalyze() bool {
	return o.embedder != nil
}
