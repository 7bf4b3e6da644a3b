package templates

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ThemeDir serves the templates/*.html files of a block theme directory.
// Files are read on every lookup so edits show up without a restart.
type ThemeDir struct {
	fsys  fs.FS
	theme string
}

// NewThemeDir opens the theme rooted at dir. The theme name is the base name
// of dir.
func NewThemeDir(dir string) *ThemeDir {
	return &ThemeDir{fsys: os.DirFS(dir), theme: filepath.Base(dir)}
}

// NewThemeFS serves templates from an arbitrary filesystem.
func NewThemeFS(fsys fs.FS, theme string) *ThemeDir {
	return &ThemeDir{fsys: fsys, theme: theme}
}

// IsBlockTheme reports whether the theme at dir ships an index template,
// which is what marks a theme as block-based.
func IsBlockTheme(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "templates", "index.html"))
	return err == nil && !info.IsDir()
}

func (d *ThemeDir) TemplatesBySlug(_ context.Context, slugs ...string) ([]Template, error) {
	var out []Template
	for _, slug := range slugs {
		if slug == "" || strings.ContainsAny(slug, `/\`) || strings.Contains(slug, "..") {
			continue
		}
		data, err := fs.ReadFile(d.fsys, "templates/"+slug+".html")
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", slug, err)
		}
		out = append(out, Template{
			Slug:    slug,
			Theme:   d.theme,
			Content: string(data),
			Source:  "theme",
		})
	}
	return out, nil
}

func (d *ThemeDir) Slugs(_ context.Context) ([]string, error) {
	matches, err := fs.Glob(d.fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSuffix(filepath.Base(m), ".html"))
	}
	sort.Strings(out)
	return out, nil
}
