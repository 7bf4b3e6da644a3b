package settings

import (
	"context"

	"github.com/dgallion1/blockbook/internal/block"
)

// Settings is the editor configuration passed through the filter pipeline.
type Settings map[string]any

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	if s == nil {
		return Settings{}
	}
	return block.CloneAttrs(s)
}

// Context identifies what the editor is rendering.
type Context struct {
	PostID       int64  `json:"post_id"`
	PostType     string `json:"post_type"`
	TemplateSlug string `json:"template_slug,omitempty"`
}

// Step is one named transformation of the settings.
type Step struct {
	Name  string
	Apply func(ctx context.Context, c Context, s Settings) Settings
}

// Pipeline runs steps in registration order and then its terminal step, so
// the terminal step's keys cannot be overwritten by anything registered later.
type Pipeline struct {
	steps    []Step
	terminal Step
}

func NewPipeline(terminal Step) *Pipeline {
	return &Pipeline{terminal: terminal}
}

// Use appends steps that run before the terminal step.
func (p *Pipeline) Use(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Steps lists step names in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, 0, len(p.steps)+1)
	for _, s := range p.steps {
		names = append(names, s.Name)
	}
	return append(names, p.terminal.Name)
}

// Run applies every step to a copy of in. The caller's map is never modified.
func (p *Pipeline) Run(ctx context.Context, c Context, in Settings) Settings {
	s := in.Clone()
	for _, step := range p.steps {
		if out := step.Apply(ctx, c, s); out != nil {
			s = out
		}
	}
	if p.terminal.Apply != nil {
		if out := p.terminal.Apply(ctx, c, s); out != nil {
			s = out
		}
	}
	return s
}

// Set returns a step that assigns a fixed value to key.
func Set(name, key string, value any) Step {
	return Step{
		Name: name,
		Apply: func(_ context.Context, _ Context, s Settings) Settings {
			s[key] = value
			return s
		},
	}
}
