package blocktype

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed core/*.yaml
var coreFS embed.FS

// Core returns a registry holding the bundled core block types.
func Core() (*Registry, error) {
	r := NewRegistry()
	if err := LoadFS(r, coreFS, "core"); err != nil {
		return nil, fmt.Errorf("load core blocks: %w", err)
	}
	if err := r.AddVariations("core/cover", CoverVariations()...); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadDir registers every definition found under dir.
func LoadDir(r *Registry, dir string) error {
	return LoadFS(r, os.DirFS(dir), ".")
}

// LoadFS walks root and registers block definitions from .json (block.json
// layout) and .yaml/.yml files. A file named categories.* holds a list of
// categories instead of a block type.
func LoadFS(r *Registry, fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := path.Ext(p)
		var decode func([]byte, any) error
		switch ext {
		case ".json":
			decode = json.Unmarshal
		case ".yaml", ".yml":
			decode = yaml.Unmarshal
		default:
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}

		if strings.TrimSuffix(path.Base(p), ext) == "categories" {
			var cats []Category
			if err := decode(data, &cats); err != nil {
				return fmt.Errorf("decode %s: %w", p, err)
			}
			for _, c := range cats {
				r.RegisterCategory(c)
			}
			return nil
		}

		var t Type
		if err := decode(data, &t); err != nil {
			return fmt.Errorf("decode %s: %w", p, err)
		}
		if err := r.Register(t); err != nil {
			return fmt.Errorf("register %s: %w", p, err)
		}
		return nil
	})
}
