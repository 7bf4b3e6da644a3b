package settings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/dgallion1/blockbook/internal/templates"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

const singleMarkup = `<!-- wp:template-part {"slug":"header"} /-->
<!-- wp:group {"tagName":"main"} --><main class="wp-block-group"><!-- wp:post-title /-->
<!-- wp:post-content {"layout":{"type":"constrained"},"align":"full"} /--></main><!-- /wp:group -->`

func newResolver(ts ...templates.Template) *Resolver {
	return &Resolver{
		Templates:    templates.NewMemory(ts...),
		IsBlockTheme: true,
		Log:          quietLog,
	}
}

func TestTemplateSlug(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		ctx       Context
		want      string
	}{
		{"explicit slug wins", []string{"single"}, Context{PostType: "post", TemplateSlug: "wide"}, "wide"},
		{"post uses single", []string{"single", "page"}, Context{PostType: "post"}, "single"},
		{"post falls back to singular", []string{"page"}, Context{PostType: "post"}, "singular"},
		{"page uses page", []string{"single", "page"}, Context{PostType: "page"}, "page"},
		{"page falls back to singular", []string{"single"}, Context{PostType: "page"}, "singular"},
		{"other post type", []string{"single", "page"}, Context{PostType: "product"}, ""},
	}
	for _, tt := range tests {
		var ts []templates.Template
		for _, slug := range tt.available {
			ts = append(ts, templates.Template{Slug: slug})
		}
		r := newResolver(ts...)
		if got := r.TemplateSlug(context.Background(), tt.ctx); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestPostContentAttributes_Found(t *testing.T) {
	r := newResolver(templates.Template{Slug: "single", Content: singleMarkup})

	got, ok := r.PostContentAttributes(context.Background(), Context{PostType: "post"})
	if !ok {
		t.Fatal("expected attributes")
	}
	want := map[string]any{
		"layout": map[string]any{"type": "constrained"},
		"align":  "full",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPostContentAttributes_Absent(t *testing.T) {
	tests := []struct {
		name     string
		resolver *Resolver
		ctx      Context
	}{
		{
			name:     "classic theme",
			resolver: &Resolver{Templates: templates.NewMemory(templates.Template{Slug: "single", Content: singleMarkup}), Log: quietLog},
			ctx:      Context{PostType: "post"},
		},
		{
			name:     "template missing",
			resolver: newResolver(templates.Template{Slug: "page", Content: singleMarkup}),
			ctx:      Context{PostType: "post", TemplateSlug: "custom"},
		},
		{
			name:     "no placeholder",
			resolver: newResolver(templates.Template{Slug: "single", Content: `<!-- wp:post-title /-->`}),
			ctx:      Context{PostType: "post"},
		},
		{
			name:     "placeholder without attributes",
			resolver: newResolver(templates.Template{Slug: "single", Content: `<!-- wp:post-content /-->`}),
			ctx:      Context{PostType: "post"},
		},
		{
			name:     "empty template",
			resolver: newResolver(templates.Template{Slug: "single"}),
			ctx:      Context{PostType: "post"},
		},
		{
			name:     "malformed attributes",
			resolver: newResolver(templates.Template{Slug: "single", Content: `<!-- wp:post-content {"align": } /-->`}),
			ctx:      Context{PostType: "post"},
		},
	}
	for _, tt := range tests {
		if got, ok := tt.resolver.PostContentAttributes(context.Background(), tt.ctx); ok {
			t.Errorf("%s: expected no attributes, got %v", tt.name, got)
		}
	}
}

func TestPostContentAttributes_UnbalancedMarkup(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"stray closer", `<!-- /wp:group --><!-- wp:post-content {"align":"full"} /-->`},
		{"mismatched closer", `<!-- wp:group --><div><!-- wp:post-content {"align":"full"} /--></div><!-- /wp:columns -->`},
	}
	for _, tt := range tests {
		r := newResolver(templates.Template{Slug: "single", Content: tt.markup})
		got, ok := r.PostContentAttributes(context.Background(), Context{PostType: "post"})
		if !ok || got["align"] != "full" {
			t.Errorf("%s: expected align full, got %v (ok=%v)", tt.name, got, ok)
		}
	}
}

type failingRegistry struct{}

func (failingRegistry) TemplatesBySlug(context.Context, ...string) ([]templates.Template, error) {
	return nil, errors.New("remote unavailable")
}

func (failingRegistry) Slugs(context.Context) ([]string, error) {
	return nil, errors.New("remote unavailable")
}

func TestPostContentAttributes_FailingRegistryInChain(t *testing.T) {
	theme := templates.NewMemory(templates.Template{Slug: "single", Content: singleMarkup})
	r := &Resolver{
		Templates:    templates.NewChain(quietLog, theme, failingRegistry{}),
		IsBlockTheme: true,
		Log:          quietLog,
	}
	ctx := Context{PostType: "post"}

	if slug := r.TemplateSlug(context.Background(), ctx); slug != "single" {
		t.Errorf("expected single, got %q", slug)
	}
	got, ok := r.PostContentAttributes(context.Background(), ctx)
	if !ok || got["align"] != "full" {
		t.Errorf("expected attributes from the theme template, got %v (ok=%v)", got, ok)
	}
}

func TestTemplateSlug_NoRegistry(t *testing.T) {
	r := &Resolver{IsBlockTheme: true, Log: quietLog}
	if got := r.TemplateSlug(context.Background(), Context{PostType: "post"}); got != "singular" {
		t.Errorf("expected singular, got %q", got)
	}
	if got := r.TemplateSlug(context.Background(), Context{PostType: "page", TemplateSlug: "wide"}); got != "wide" {
		t.Errorf("expected explicit slug, got %q", got)
	}
	if _, ok := r.PostContentAttributes(context.Background(), Context{PostType: "post"}); ok {
		t.Error("expected no attributes without a registry")
	}
}

func TestPostContentAttributes_FirstInPreOrder(t *testing.T) {
	markup := `<!-- wp:post-content {"which":"shallow"} /-->
<!-- wp:group --><div><!-- wp:post-content {"which":"deep"} /--></div><!-- /wp:group -->`
	r := newResolver(templates.Template{Slug: "single", Content: markup})

	got, ok := r.PostContentAttributes(context.Background(), Context{PostType: "post"})
	if !ok || got["which"] != "shallow" {
		t.Errorf("expected shallow match, got %v (ok=%v)", got, ok)
	}
}

func TestPostContentAttributes_Idempotent(t *testing.T) {
	r := newResolver(templates.Template{Slug: "single", Content: singleMarkup})
	ctx := Context{PostType: "post"}

	first, _ := r.PostContentAttributes(context.Background(), ctx)
	first["align"] = "mutated"
	second, _ := r.PostContentAttributes(context.Background(), ctx)
	if second["align"] != "full" {
		t.Errorf("expected a fresh result on every call, got %v", second["align"])
	}
}

func TestPipeline_TerminalStepRunsLast(t *testing.T) {
	r := newResolver(templates.Template{Slug: "single", Content: singleMarkup})
	p := NewPipeline(r.Step())
	p.Use(
		Set("theme-defaults", PostContentAttributesKey, "overwritten?"),
		Set("preview", "isPreviewMode", false),
	)

	want := []string{"theme-defaults", "preview", PostContentStepName}
	if got := p.Steps(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected steps %v, got %v", want, got)
	}

	in := Settings{"styles": []any{"body{}"}}
	out := p.Run(context.Background(), Context{PostType: "post"}, in)

	attrs, ok := out[PostContentAttributesKey].(map[string]any)
	if !ok || attrs["align"] != "full" {
		t.Errorf("expected resolver attributes to win, got %v", out[PostContentAttributesKey])
	}
	if _, ok := in[PostContentAttributesKey]; ok {
		t.Error("expected input settings to be left untouched")
	}
	if len(in) != 1 {
		t.Errorf("expected input to keep 1 key, got %d", len(in))
	}
}

func TestPipeline_PassThroughWhenAbsent(t *testing.T) {
	r := newResolver()
	p := NewPipeline(r.Step())

	in := Settings{"a": "b"}
	out := p.Run(context.Background(), Context{PostType: "post"}, in)
	if !reflect.DeepEqual(out, in) {
		t.Errorf("expected unchanged settings, got %v", out)
	}
}
