package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/blockbook/internal/block"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListBlockTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"block_types": s.deps.BlockTypes.Types(),
		"categories":  s.deps.BlockTypes.Categories(),
	})
}

// handleActiveVariation reports which variation a block with the given
// attributes (JSON in the attributes query value) is an instance of.
func (s *Server) handleActiveVariation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "namespace") + "/" + chi.URLParam(r, "name")
	if _, ok := s.deps.BlockTypes.Get(name); !ok {
		jsonError(w, "unknown block type: "+name, http.StatusNotFound)
		return
	}

	attrs := map[string]any{}
	if raw := r.URL.Query().Get("attributes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			jsonError(w, "attributes must be a JSON object", http.StatusBadRequest)
			return
		}
	}

	v, ok := s.deps.BlockTypes.ActiveVariation(name, attrs)
	if !ok {
		jsonError(w, "no active variation", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleDefaultVariation instantiates the default variation of a block type
// offered in a scope (the scope query value, "inserter" when empty).
func (s *Server) handleDefaultVariation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "namespace") + "/" + chi.URLParam(r, "name")
	if _, ok := s.deps.BlockTypes.Get(name); !ok {
		jsonError(w, "unknown block type: "+name, http.StatusNotFound)
		return
	}
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = "inserter"
	}

	v, ok := s.deps.BlockTypes.DefaultVariation(name, scope)
	if !ok {
		jsonError(w, "no default variation in scope "+scope, http.StatusNotFound)
		return
	}
	b, err := s.deps.BlockTypes.CreateVariation(name, v)
	if err != nil {
		s.log.Warn("create variation", "block", name, "variation", v.Name, "error", err)
		jsonError(w, "variation cannot be instantiated: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"variation": v,
		"block":     b,
		"markup":    block.Serialize([]block.Block{b}),
	})
}
