package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/blockbook/internal/block"
	"github.com/dgallion1/blockbook/internal/importer"
	"github.com/dgallion1/blockbook/internal/render"
	"github.com/dgallion1/blockbook/internal/templates"
)

// handleImport converts an uploaded document into blocks. With save_as set
// the markup is also stored as a custom template under that slug.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !importer.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	// Read file data.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	imp, err := importer.ForFile(filename, importer.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	blocks, err := imp.Import(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("import failed", "filename", filename, "error", err)
		jsonError(w, "import failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if blocks == nil {
		blocks = []block.Block{}
	}

	markup := block.Serialize(blocks)
	rendered, err := render.HTML(blocks)
	if err != nil {
		s.log.Error("render import", "filename", filename, "error", err)
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}

	count := 0
	block.Walk(blocks, func(block.Block, int) bool {
		count++
		return true
	})

	resp := map[string]any{
		"filename":    filename,
		"blocks":      blocks,
		"block_count": count,
		"markup":      markup,
		"html":        rendered,
	}

	if slug := r.FormValue("save_as"); slug != "" {
		if s.deps.Store == nil {
			jsonError(w, "template store not configured", http.StatusNotImplemented)
			return
		}
		title := r.FormValue("title")
		if title == "" {
			title = strings.TrimSuffix(filename, filepath.Ext(filename))
		}
		t := templates.Template{Slug: slug, Theme: s.deps.Store.Theme(), Title: title, Content: markup, Source: "custom"}
		if err := s.deps.Store.Put(r.Context(), t); err != nil {
			s.log.Error("save imported template", "slug", slug, "error", err)
			jsonError(w, "failed to save template", http.StatusInternalServerError)
			return
		}
		resp["template"] = t
	}

	s.log.Info("imported document", "filename", filename, "blocks", count)
	writeJSON(w, http.StatusOK, resp)
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
