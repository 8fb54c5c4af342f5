package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/report"
	"github.com/go-chi/chi/v5"
)

// handleAnalyze queues a persona/job relevance analysis over the uploaded files.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.orchestrator.CanAnalyze() {
		jsonError(w, "analysis unavailable: no embedding endpoint configured", http.StatusServiceUnavailable)
		return
	}

	uploads, ok := s.parseJobForm(w, r)
	if !ok {
		return
	}

	persona := strings.TrimSpace(r.FormValue("persona"))
	task := strings.TrimSpace(r.FormValue("job_to_be_done"))
	if persona == "" || task == "" {
		jsonError(w, "persona and job_to_be_done are required", http.StatusBadRequest)
		return
	}
	topN := 0
	if v := r.FormValue("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "top_n must be a positive integer", http.StatusBadRequest)
			return
		}
		topN = n
	}

	job := pipeline.NewJob(pipeline.KindAnalysis, uploads)
	job.Persona = persona
	job.Task = task
	job.TopN = topN
	s.submit(w, job)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	switch {
	case !snap.Status.Done():
		jsonError(w, "job not finished: "+string(snap.Status), http.StatusConflict)
		return
	case snap.Status == pipeline.StatusFailed:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "job failed",
			"errors": snap.Progress.Errors,
		})
		return
	}

	if snap.Kind == pipeline.KindAnalysis {
		writeJSON(w, http.StatusOK, job.Analysis())
		return
	}
	outlines := job.Outlines()
	if outlines == nil {
		outlines = []report.OutlineResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"outlines": outlines})
}
