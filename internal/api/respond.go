package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

// writeJSON encodes v without HTML escaping so document text is returned verbatim.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}

// uploadError carries the HTTP status for a rejected upload.
type uploadError struct {
	code int
	msg  string
}

func (e *uploadError) Error() string { return e.msg }

// readUpload reads one multipart file, enforcing the extension allowlist and
// the size limit.
func (s *Server) readUpload(fh *multipart.FileHeader) (pipeline.Upload, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return pipeline.Upload{}, &uploadError{http.StatusBadRequest, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename))}
	}

	f, err := fh.Open()
	if err != nil {
		return pipeline.Upload{}, &uploadError{http.StatusBadRequest, "failed to open file"}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return pipeline.Upload{}, &uploadError{http.StatusInternalServerError, "failed to read file"}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return pipeline.Upload{}, &uploadError{http.StatusRequestEntityTooLarge, fmt.Sprintf("%s exceeds max size (%d bytes)", filename, s.cfg.MaxUploadBytes)}
	}
	return pipeline.Upload{Filename: filename, Data: data}, nil
}

// readUploads reads every file under field, failing on the first bad one.
func (s *Server) readUploads(r *http.Request, field string) ([]pipeline.Upload, error) {
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, &uploadError{http.StatusBadRequest, "at least one file is required"}
	}
	uploads := make([]pipeline.Upload, 0, len(headers))
	for _, fh := range headers {
		u, err := s.readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

func writeUploadError(w http.ResponseWriter, err error) {
	if ue, ok := err.(*uploadError); ok {
		jsonError(w, ue.msg, ue.code)
		return
	}
	jsonError(w, err.Error(), http.StatusBadRequest)
}
