package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dgallion1/docoutline/internal/pipeline"
)

// handleOutline parses one uploaded file and returns its outline inline.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fh := r.MultipartForm.File["file"]
	if len(fh) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	upload, err := s.readUpload(fh[0])
	if err != nil {
		writeUploadError(w, err)
		return
	}

	select {
	case s.parseSem <- struct{}{}:
		defer func() { <-s.parseSem }()
	case <-r.Context().Done():
		return
	}

	doc, err := pipeline.LoadDocument(upload.Filename, upload.Data, s.parseOpts)
	if err != nil {
		s.log.Warn("outline parse failed", "filename", upload.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, pipeline.BuildOutline(doc))
}

// handleOutlineBatch queues an outline job over several files.
func (s *Server) handleOutlineBatch(w http.ResponseWriter, r *http.Request) {
	uploads, ok := s.parseJobForm(w, r)
	if !ok {
		return
	}
	s.submit(w, pipeline.NewJob(pipeline.KindOutline, uploads))
}

// parseJobForm reads the multipart "files" field shared by the async endpoints.
func (s *Server) parseJobForm(w http.ResponseWriter, r *http.Request) ([]pipeline.Upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 4*s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form", http.StatusBadRequest)
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	uploads, err := s.readUploads(r, "files")
	if err != nil {
		writeUploadError(w, err)
		return nil, false
	}
	return uploads, true
}

func (s *Server) submit(w http.ResponseWriter, job *pipeline.Job) {
	if err := s.orchestrator.Submit(job); err != nil {
		s.log.Warn("job rejected", "job_id", job.ID, "kind", job.Kind, "error", err)
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	s.log.Info("job queued",
		"job_id", job.ID,
		"kind", job.Kind,
		"documents", strings.Join(job.Filenames(), ","),
	)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id":   job.ID,
		"status":   string(pipeline.StatusQueued),
		"poll_url": fmt.Sprintf("/api/jobs/%s/status", job.ID),
	})
}
