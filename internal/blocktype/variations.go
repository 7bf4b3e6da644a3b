package blocktype

import (
	"reflect"
	"slices"

	"github.com/dgallion1/blockbook/internal/block"
)

// Variation is a preset of attributes offered as its own entry in inserters
// and transforms.
type Variation struct {
	Name        string         `json:"name" yaml:"name"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string         `json:"icon,omitempty" yaml:"icon,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	InnerBlocks []Example      `json:"innerBlocks,omitempty" yaml:"innerBlocks,omitempty"`
	IsDefault   bool           `json:"isDefault,omitempty" yaml:"isDefault,omitempty"`
	Scope       []string       `json:"scope,omitempty" yaml:"scope,omitempty"`

	// ActiveAttributes names attributes that must equal the variation's own
	// values for it to count as active.
	ActiveAttributes []string `json:"isActive,omitempty" yaml:"isActive,omitempty"`

	// IsActive overrides ActiveAttributes when set.
	IsActive func(attrs map[string]any) bool `json:"-" yaml:"-"`
}

// Matches reports whether a block with attrs is an instance of v.
func (v Variation) Matches(attrs map[string]any) bool {
	if v.IsActive != nil {
		return v.IsActive(attrs)
	}
	if len(v.ActiveAttributes) == 0 {
		return false
	}
	for _, key := range v.ActiveAttributes {
		if !reflect.DeepEqual(attrs[key], v.Attributes[key]) {
			return false
		}
	}
	return true
}

// InScope reports whether v is offered in scope. Variations without a scope
// appear in the block and inserter scopes.
func (v Variation) InScope(scope string) bool {
	if len(v.Scope) == 0 {
		return scope == "block" || scope == "inserter"
	}
	return slices.Contains(v.Scope, scope)
}

// ActiveVariation returns the first variation of name matching attrs.
func (r *Registry) ActiveVariation(name string, attrs map[string]any) (Variation, bool) {
	t, ok := r.Get(name)
	if !ok {
		return Variation{}, false
	}
	for _, v := range t.Variations {
		if v.Matches(attrs) {
			return v, true
		}
	}
	return Variation{}, false
}

// DefaultVariation returns the default variation of name offered in scope.
func (r *Registry) DefaultVariation(name, scope string) (Variation, bool) {
	t, ok := r.Get(name)
	if !ok {
		return Variation{}, false
	}
	for _, v := range t.Variations {
		if v.IsDefault && v.InScope(scope) {
			return v, true
		}
	}
	return Variation{}, false
}

// CreateVariation instantiates a block from a variation of name.
func (r *Registry) CreateVariation(name string, v Variation) (block.Block, error) {
	return r.FromExample(name, Example{Attributes: v.Attributes, InnerBlocks: v.InnerBlocks})
}

// CoverVariations returns the core cover block variations.
func CoverVariations() []Variation {
	return []Variation{
		{
			Name:        "cover",
			Title:       "Cover",
			Description: "Add an image or video with a text overlay.",
			Icon:        "cover",
			Attributes:  map[string]any{"layout": map[string]any{"type": "constrained"}},
			IsDefault:   true,
			Scope:       []string{"block", "inserter", "transform"},
			IsActive:    hasConstrainedLayout,
		},
	}
}

// hasConstrainedLayout treats a missing layout or layout type as constrained.
func hasConstrainedLayout(attrs map[string]any) bool {
	layout, ok := attrs["layout"].(map[string]any)
	if !ok {
		return true
	}
	t, present := layout["type"]
	if !present || t == nil || t == "" || t == false {
		return true
	}
	return t == "constrained"
}
