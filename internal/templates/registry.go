package templates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
)

// ErrNotFound is returned when no registry holds a requested slug.
var ErrNotFound = errors.New("template not found")

// Template is a block template selected by slug.
type Template struct {
	Slug    string `json:"slug"`
	Theme   string `json:"theme,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Source  string `json:"source"` // "theme", "custom" or "remote"
}

// Registry looks up templates by slug. Lookups for slugs a registry does not
// hold are not errors; the slug is simply missing from the result.
type Registry interface {
	TemplatesBySlug(ctx context.Context, slugs ...string) ([]Template, error)
	Slugs(ctx context.Context) ([]string, error)
}

// Get returns the single template for slug or ErrNotFound.
func Get(ctx context.Context, r Registry, slug string) (Template, error) {
	found, err := r.TemplatesBySlug(ctx, slug)
	if err != nil {
		return Template{}, err
	}
	if len(found) == 0 {
		return Template{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return found[0], nil
}

// Memory is a thread-safe in-memory registry.
type Memory struct {
	mu        sync.RWMutex
	templates map[string]Template
}

func NewMemory(templates ...Template) *Memory {
	m := &Memory{templates: make(map[string]Template)}
	for _, t := range templates {
		m.templates[t.Slug] = t
	}
	return m
}

// Put stores or replaces a template.
func (m *Memory) Put(t Template) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.Slug] = t
}

func (m *Memory) TemplatesBySlug(_ context.Context, slugs ...string) ([]Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Template
	for _, slug := range slugs {
		if t, ok := m.templates[slug]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) Slugs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.templates))
	for slug := range m.templates {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out, nil
}

// Chain consults registries in order; for each slug the first registry that
// holds it wins. Put customised stores before theme files. A registry that
// fails is logged and skipped so the others still answer; the chain only
// fails when every registry did.
type Chain struct {
	registries []Registry
	log        *slog.Logger
}

func NewChain(log *slog.Logger, registries ...Registry) *Chain {
	if log == nil {
		log = slog.Default()
	}
	return &Chain{registries: registries, log: log}
}

// Add appends r with the lowest priority so far.
func (c *Chain) Add(r Registry) {
	c.registries = append(c.registries, r)
}

// Len is the number of registries in the chain.
func (c *Chain) Len() int {
	return len(c.registries)
}

func (c *Chain) TemplatesBySlug(ctx context.Context, slugs ...string) ([]Template, error) {
	found := make(map[string]Template, len(slugs))
	var errs []error
	for i, r := range c.registries {
		var missing []string
		for _, slug := range slugs {
			if _, ok := found[slug]; !ok {
				missing = append(missing, slug)
			}
		}
		if len(missing) == 0 {
			break
		}
		ts, err := r.TemplatesBySlug(ctx, missing...)
		if err != nil {
			c.log.Warn("template registry lookup failed", "registry", i, "slugs", missing, "error", err)
			errs = append(errs, err)
			continue
		}
		for _, t := range ts {
			if _, ok := found[t.Slug]; !ok {
				found[t.Slug] = t
			}
		}
	}
	if len(errs) > 0 && len(errs) == len(c.registries) {
		return nil, fmt.Errorf("chain lookup: %w", errors.Join(errs...))
	}

	var out []Template
	for _, slug := range slugs {
		if t, ok := found[slug]; ok {
			out = append(out, t)
			delete(found, slug)
		}
	}
	return out, nil
}

func (c *Chain) Slugs(ctx context.Context) ([]string, error) {
	var out []string
	var errs []error
	for i, r := range c.registries {
		slugs, err := r.Slugs(ctx)
		if err != nil {
			c.log.Warn("template registry listing failed", "registry", i, "error", err)
			errs = append(errs, err)
			continue
		}
		out = append(out, slugs...)
	}
	if len(errs) > 0 && len(errs) == len(c.registries) {
		return nil, fmt.Errorf("chain slugs: %w", errors.Join(errs...))
	}
	sort.Strings(out)
	return slices.Compact(out), nil
}
