package api

import "net/http"

func (s *Server) handleEmbeddingStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "embedding stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model": s.model,
		"stats": s.stats.Snapshot(),
	})
}
