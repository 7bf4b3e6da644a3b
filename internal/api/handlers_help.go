package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/blockbook/internal/help"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, help.NewSheet(r.URL.Query().Get("post_type"), s.cfg.ShowSupport))
}

func (s *Server) handleHelpTopic(w http.ResponseWriter, r *http.Request) {
	body, err := help.RenderTopic(chi.URLParam(r, "topic"))
	if errors.Is(err, help.ErrUnknownTopic) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("render help topic", "error", err)
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(body))
}
