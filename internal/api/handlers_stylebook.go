package api

import (
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/dgallion1/blockbook/internal/settings"
	"github.com/dgallion1/blockbook/internal/stylebook"
	"github.com/go-chi/chi/v5"
)

const defaultPreviewWidth = 800

func (s *Server) handleStyleBook(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"examples": s.examples,
		"tabs":     s.tabs,
	})
}

func (s *Server) handleStyleBookExport(w http.ResponseWriter, r *http.Request) {
	data, err := stylebook.ExportYAML(s.examples, s.tabs)
	if err != nil {
		s.log.Error("export style book", "error", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="style-book.yaml"`)
	w.Write(data)
}

// handleStyleBookPreview renders one tab of the style book as an HTML page.
// The editor settings come from the settings pipeline for the given
// post_type (page when empty).
func (s *Server) handleStyleBookPreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category := q.Get("category")
	if category != "" && !slices.ContainsFunc(s.tabs, func(t stylebook.Tab) bool { return t.Name == category }) {
		jsonError(w, "unknown category: "+category, http.StatusNotFound)
		return
	}

	width := defaultPreviewWidth
	if v := q.Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "width must be a positive integer", http.StatusBadRequest)
			return
		}
		width = n
	}

	book := stylebook.NewBook(s.examples, s.tabs, nil, nil)
	if id := q.Get("session"); id != "" {
		sess, err := s.deps.Sessions.Get(id)
		if err != nil {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		book = stylebook.NewBook(s.examples, s.tabs, sess.IsSelected, sess)
	}

	postType := q.Get("post_type")
	if postType == "" {
		postType = "page"
	}
	editor := s.deps.Settings.Run(r.Context(), settings.Context{PostType: postType}, nil)

	base := url.URL{Path: r.URL.Path}
	keep := url.Values{}
	for _, k := range []string{"session", "width", "post_type"} {
		if v := q.Get(k); v != "" {
			keep.Set(k, v)
		}
	}
	base.RawQuery = keep.Encode()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := stylebook.Page{
		Book:     book,
		Active:   category,
		Settings: editor,
		Width:    width,
		BaseURL:  base.String(),
	}.Render(w)
	if err != nil {
		s.log.Error("render style book", "error", err)
	}
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	sess := s.deps.Sessions.Open()
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type selectRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	book := stylebook.NewBook(s.examples, s.tabs, sess.IsSelected, sess)
	if err := book.Activate(req.Name); err != nil {
		if errors.Is(err, stylebook.ErrUnknownExample) {
			jsonError(w, "unknown example: "+req.Name, http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type keyRequest struct {
	Key              string `json:"key"`
	DefaultPrevented bool   `json:"default_prevented"`
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req keyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	book := stylebook.NewBook(s.examples, s.tabs, sess.IsSelected, sess)
	consumed := book.HandleKey(req.Key, req.DefaultPrevented)
	writeJSON(w, http.StatusOK, map[string]any{
		"consumed": consumed,
		"session":  sess.Snapshot(),
	})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Sessions.Close(id); err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*stylebook.Session, bool) {
	sess, err := s.deps.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return sess, true
}
