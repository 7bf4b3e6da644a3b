package api

import (
	"net/http"
)

func (s *Server) handleRemoteStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.RemoteStats == nil {
		jsonError(w, "remote stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":    s.deps.RemoteStats.Snapshot(),
		"sessions": s.deps.Sessions.Len(),
	})
}
