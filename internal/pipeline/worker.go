package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/embedding"
	"github.com/dgallion1/docoutline/internal/metrics"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/relevance"
	"github.com/dgallion1/docoutline/internal/report"
)

// Worker processes a single outline or analysis job.
type Worker struct {
	embedder embedding.Embedder
	log      *slog.Logger
	opts     parser.Options

	maxConcurrentParse int
	defaultTopN        int
}

// NewWorker creates a worker. emb may be nil, in which case analysis jobs fail.
func NewWorker(emb embedding.Embedder, log *slog.Logger, opts parser.Options, maxParse, topN int) *Worker {
	return &Worker{
		embedder:           emb,
		log:                log,
		opts:               opts,
		maxConcurrentParse: max(maxParse, 1),
		defaultTopN:        topN,
	}
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	docs := w.parseAll(ctx, job, log)
	job.releaseFiles()
	if err := ctx.Err(); err != nil {
		w.fail(job, log, "parsing", fmt.Sprintf("canceled: %s", err))
		return
	}
	if len(docs) == 0 {
		w.fail(job, log, "parsing", "no documents could be parsed")
		return
	}

	// Phase 2: Outline
	job.SetStatus(StatusOutlining, "outlining")
	switch job.Kind {
	case KindOutline:
		results := make([]report.OutlineResult, 0, len(docs))
		for _, d := range docs {
			results = append(results, report.OutlineResult{Document: d.Name, Outline: BuildOutline(d)})
		}
		job.SetOutlines(results)
		log.Info("outlines built", "documents", len(results))

	case KindAnalysis:
		outlines := relevance.Outlines(docs)

		// Phase 3: Rank
		job.SetStatus(StatusRanking, "ranking")
		topN := job.TopN
		if topN <= 0 {
			topN = w.defaultTopN
		}
		analyzer, err := relevance.NewAnalyzer(w.embedder, topN, log)
		if err != nil {
			w.fail(job, log, "ranking", err.Error())
			return
		}
		res, err := analyzer.AnalyzeOutlines(ctx, relevance.Request{
			Persona:        job.Persona,
			Job:            job.Task,
			InputDocuments: job.Filenames(),
			Documents:      docs,
		}, outlines)
		if err != nil {
			w.fail(job, log, "ranking", fmt.Sprintf("rank: %s", err))
			return
		}
		job.SetSectionsRanked(len(res.ExtractedSections))
		job.SetAnalysis(res)

	default:
		w.fail(job, log, "outlining", fmt.Sprintf("unknown job kind %q", job.Kind))
		return
	}

	status := StatusCompleted
	if job.Snapshot().Progress.DocumentsFailed > 0 {
		status = StatusPartial
	}
	job.SetStatus(status, "done")
	metrics.JobsTotal.WithLabelValues(string(job.Kind), string(status)).Inc()
	log.Info("job finished", "status", status)
}

// parseAll parses every upload with bounded concurrency and returns the
// documents that parsed, in submission order.
func (w *Worker) parseAll(ctx context.Context, job *Job, log *slog.Logger) []*doctree.Document {
	files := job.Files()
	parsed := make([]*doctree.Document, len(files))
	sem := make(chan struct{}, w.maxConcurrentParse)
	var wg sync.WaitGroup

	for i, f := range files {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil
		}
		wg.Add(1)
		go func(i int, f Upload) {
			defer wg.Done()
			defer func() { <-sem }()
			doc, err := LoadDocument(f.Filename, f.Data, w.opts)
			if err != nil {
				log.Warn("document skipped", "filename", f.Filename, "error", err)
				job.AddError(fmt.Sprintf("%s: %s", f.Filename, err))
				job.DocumentDone(false)
				metrics.DocumentsTotal.WithLabelValues("failed").Inc()
				return
			}
			parsed[i] = doc
			job.DocumentDone(true)
			metrics.DocumentsTotal.WithLabelValues("parsed").Inc()
		}(i, f)
	}
	wg.Wait()

	docs := make([]*doctree.Document, 0, len(parsed))
	for _, d := range parsed {
		if d != nil {
			docs = append(docs, d)
		}
	}
	return docs
}

func (w *Worker) fail(job *Job, log *slog.Logger, phase, msg string) {
	log.Error("job failed", "phase", phase, "error", msg)
	job.AddError(msg)
	job.SetStatus(StatusFailed, phase)
	metrics.JobsTotal.WithLabelValues(string(job.Kind), string(StatusFailed)).Inc()
}
