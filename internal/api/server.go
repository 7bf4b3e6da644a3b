package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/blockbook/internal/blocktype"
	"github.com/dgallion1/blockbook/internal/config"
	"github.com/dgallion1/blockbook/internal/settings"
	"github.com/dgallion1/blockbook/internal/stylebook"
	"github.com/dgallion1/blockbook/internal/templates"
	"github.com/dgallion1/blockbook/internal/wpclient"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the services the API serves from.
type Deps struct {
	Settings   *settings.Pipeline
	BlockTypes *blocktype.Registry
	Templates  templates.Registry
	Store      *templates.SQLStore // optional; enables template writes
	Sessions   *stylebook.Sessions

	RemoteStats *wpclient.Stats // optional; set when a remote site is configured
}

// Server is the HTTP API server for blockbook.
type Server struct {
	router   chi.Router
	deps     Deps
	examples []stylebook.Example
	tabs     []stylebook.Tab
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. The style book catalog
// is built once from the block types registered at this point.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		deps: deps,
		log:  log,
		cfg:  cfg,
	}
	s.examples = stylebook.BuildCatalog(deps.BlockTypes, log)
	s.tabs = stylebook.Tabs(s.examples, deps.BlockTypes.Categories())
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/editor-settings", s.handleEditorSettings)

		r.Get("/api/style-book", s.handleStyleBook)
		r.Get("/api/style-book/export.yaml", s.handleStyleBookExport)
		r.Get("/api/style-book/preview", s.handleStyleBookPreview)
		r.Post("/api/style-book/sessions", s.handleOpenSession)
		r.Get("/api/style-book/sessions/{id}", s.handleGetSession)
		r.Post("/api/style-book/sessions/{id}/select", s.handleSelect)
		r.Post("/api/style-book/sessions/{id}/key", s.handleKey)
		r.Delete("/api/style-book/sessions/{id}", s.handleCloseSession)

		r.Get("/api/block-types", s.handleListBlockTypes)
		r.Get("/api/block-types/{namespace}/{name}/variations/active", s.handleActiveVariation)
		r.Get("/api/block-types/{namespace}/{name}/variations/default", s.handleDefaultVariation)

		r.Get("/api/help", s.handleHelp)
		r.Get("/api/help/{topic}", s.handleHelpTopic)

		r.Get("/api/templates", s.handleListTemplates)
		r.Get("/api/templates/{slug}", s.handleGetTemplate)
		r.Put("/api/templates/{slug}", s.handlePutTemplate)
		r.Delete("/api/templates/{slug}", s.handleDeleteTemplate)

		r.Post("/api/import", s.handleImport)

		r.Get("/api/stats/remote", s.handleRemoteStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// decodeBody reads a JSON request body of at most 1MB.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
