package settings

import (
	"context"
	"log/slog"

	"github.com/dgallion1/blockbook/internal/block"
	"github.com/dgallion1/blockbook/internal/templates"
)

const (
	// PostContentAttributesKey is the settings key holding the attributes of
	// the template's post content block.
	PostContentAttributesKey = "postContentAttributes"

	// PostContentBlock marks the editable content region of a template.
	PostContentBlock = "core/post-content"

	// PostContentStepName is the name of the terminal pipeline step.
	PostContentStepName = "post-content-attributes"
)

// Resolver finds the post content block of the template that will render a
// post and reports its attributes.
type Resolver struct {
	Templates    templates.Registry
	IsBlockTheme bool
	Log          *slog.Logger
}

// TemplateSlug picks the template for c: the explicitly assigned slug if any,
// otherwise "single" for posts and "page" for pages when the registry has
// them, falling back to "singular". Other post types get no slug. Without a
// registry nothing is available, so posts and pages get "singular".
func (r *Resolver) TemplateSlug(ctx context.Context, c Context) string {
	if c.TemplateSlug != "" {
		return c.TemplateSlug
	}

	postSlug, pageSlug := "singular", "singular"
	var found []templates.Template
	if r.Templates != nil {
		var err error
		found, err = r.Templates.TemplatesBySlug(ctx, "single", "page")
		if err != nil {
			r.log().Debug("template lookup failed", "error", err)
		}
	}
	for _, t := range found {
		switch t.Slug {
		case "single":
			postSlug = "single"
		case "page":
			pageSlug = "page"
		}
	}

	switch c.PostType {
	case "post":
		return postSlug
	case "page":
		return pageSlug
	}
	return ""
}

// PostContentAttributes returns the attributes of the first post content
// block in the template for c. Every failure (classic theme, missing
// template, unparsable markup, no post content block, empty attributes)
// yields ok == false.
func (r *Resolver) PostContentAttributes(ctx context.Context, c Context) (map[string]any, bool) {
	if !r.IsBlockTheme || r.Templates == nil {
		return nil, false
	}

	slug := r.TemplateSlug(ctx, c)
	if slug == "" {
		return nil, false
	}

	tmpl, err := templates.Get(ctx, r.Templates, slug)
	if err != nil {
		r.log().Debug("no template for post", "slug", slug, "error", err)
		return nil, false
	}

	blocks, err := block.Parse(tmpl.Content)
	if err != nil {
		r.log().Debug("template markup unreadable", "slug", slug, "error", err)
		return nil, false
	}

	pc, ok := block.FindFirst(blocks, PostContentBlock)
	if !ok || len(pc.Attrs) == 0 {
		return nil, false
	}
	return block.CloneAttrs(pc.Attrs), true
}

// Step adapts the resolver to a pipeline step. Settings pass through
// unchanged unless attributes were found.
func (r *Resolver) Step() Step {
	return Step{
		Name: PostContentStepName,
		Apply: func(ctx context.Context, c Context, s Settings) Settings {
			if attrs, ok := r.PostContentAttributes(ctx, c); ok {
				s[PostContentAttributesKey] = attrs
			}
			return s
		},
	}
}

func (r *Resolver) log() *slog.Logger {
	if r.Log == nil {
		return slog.Default()
	}
	return r.Log
}
