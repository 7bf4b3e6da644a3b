package api

import (
	"net/http"

	"github.com/dgallion1/blockbook/internal/settings"
)

type editorSettingsRequest struct {
	Context  settings.Context  `json:"context"`
	Settings settings.Settings `json:"settings"`
}

func (s *Server) handleEditorSettings(w http.ResponseWriter, r *http.Request) {
	var req editorSettingsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Context.PostType == "" && req.Context.TemplateSlug == "" {
		jsonError(w, "context.post_type or context.template_slug is required", http.StatusBadRequest)
		return
	}

	out := s.deps.Settings.Run(r.Context(), req.Context, req.Settings)
	writeJSON(w, http.StatusOK, out)
}
