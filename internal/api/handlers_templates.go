package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/blockbook/internal/block"
	"github.com/dgallion1/blockbook/internal/templates"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	slugs, err := s.deps.Templates.Slugs(r.Context())
	if err != nil {
		s.log.Error("list templates", "error", err)
		jsonError(w, "failed to list templates", http.StatusBadGateway)
		return
	}
	if slugs == nil {
		slugs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"slugs": slugs})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := templates.Get(r.Context(), s.deps.Templates, chi.URLParam(r, "slug"))
	if errors.Is(err, templates.ErrNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get template", "error", err)
		jsonError(w, "failed to load template", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type putTemplateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		jsonError(w, "template store not configured", http.StatusNotImplemented)
		return
	}
	var req putTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := block.ParseStrict(req.Content); err != nil {
		jsonError(w, "invalid template content: "+err.Error(), http.StatusBadRequest)
		return
	}

	t := templates.Template{
		Slug:    chi.URLParam(r, "slug"),
		Theme:   s.deps.Store.Theme(),
		Title:   req.Title,
		Content: req.Content,
		Source:  "custom",
	}
	if err := s.deps.Store.Put(r.Context(), t); err != nil {
		s.log.Error("put template", "error", err)
		jsonError(w, "failed to save template", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		jsonError(w, "template store not configured", http.StatusNotImplemented)
		return
	}
	if err := s.deps.Store.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
		s.log.Error("delete template", "error", err)
		jsonError(w, "failed to delete template", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
