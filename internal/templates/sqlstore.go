package templates

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLStore keeps user-customised templates in SQLite. Customisations are
// what the site editor saves; they shadow the theme's files when chained in
// front of a ThemeDir. A store reads and writes the rows of one theme only,
// so customisations made under another theme stay dormant.
type SQLStore struct {
	db    *sql.DB
	theme string
}

// OpenSQLStore opens or creates the database at path and ensures the schema.
// theme scopes every read and write.
func OpenSQLStore(path, theme string) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS templates (
		slug TEXT NOT NULL,
		theme TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (unixepoch()),
		PRIMARY KEY (theme, slug)
	);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create templates table: %w", err)
	}
	return &SQLStore{db: db, theme: theme}, nil
}

// Theme is the theme the store's customisations belong to.
func (s *SQLStore) Theme() string {
	return s.theme
}

// Put saves a customised template for the store's theme, replacing any
// earlier version. t.Theme is ignored.
func (s *SQLStore) Put(ctx context.Context, t Template) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (slug, theme, title, content) VALUES (?, ?, ?, ?)
		ON CONFLICT (theme, slug) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			updated_at = unixepoch()`,
		t.Slug, s.theme, t.Title, t.Content)
	if err != nil {
		return fmt.Errorf("put template %s: %w", t.Slug, err)
	}
	return nil
}

// Delete removes a customisation so the theme file applies again.
func (s *SQLStore) Delete(ctx context.Context, slug string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE theme = ? AND slug = ?`, s.theme, slug); err != nil {
		return fmt.Errorf("delete template %s: %w", slug, err)
	}
	return nil
}

func (s *SQLStore) TemplatesBySlug(ctx context.Context, slugs ...string) ([]Template, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(slugs)+1)
	args = append(args, s.theme)
	for _, slug := range slugs {
		args = append(args, slug)
	}
	query := `SELECT slug, theme, title, content FROM templates
		WHERE theme = ? AND slug IN (?` + strings.Repeat(",?", len(slugs)-1) + `)`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	bySlug := make(map[string]Template, len(slugs))
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.Slug, &t.Theme, &t.Title, &t.Content); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.Source = "custom"
		bySlug[t.Slug] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}

	var out []Template
	for _, slug := range slugs {
		if t, ok := bySlug[slug]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *SQLStore) Slugs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug FROM templates WHERE theme = ? ORDER BY slug`, s.theme)
	if err != nil {
		return nil, fmt.Errorf("query slugs: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan slug: %w", err)
		}
		out = append(out, slug)
	}
	return out, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
