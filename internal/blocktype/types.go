package blocktype

// Type is a registered kind of block, as declared in block.json.
type Type struct {
	Name        string               `json:"name" yaml:"name"`
	Title       string               `json:"title" yaml:"title"`
	Category    string               `json:"category" yaml:"category"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string               `json:"icon,omitempty" yaml:"icon,omitempty"`
	Parent      []string             `json:"parent,omitempty" yaml:"parent,omitempty"`
	Attributes  map[string]Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Supports    Supports             `json:"supports,omitempty" yaml:"supports,omitempty"`
	Example     *Example             `json:"example,omitempty" yaml:"example,omitempty"`
	Variations  []Variation          `json:"variations,omitempty" yaml:"variations,omitempty"`
}

// Attribute is the schema of one block attribute.
type Attribute struct {
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Default any    `json:"default,omitempty" yaml:"default,omitempty"`
}

// Supports holds the block's feature flags.
type Supports map[string]any

// Inserter reports whether the block may be offered in inserters. Only an
// explicit false hides it.
func (s Supports) Inserter() bool {
	v, ok := s["inserter"]
	if !ok {
		return true
	}
	b, isBool := v.(bool)
	return !isBool || b
}

// Example describes a preview instance of a block. Inner examples name their
// own block type.
type Example struct {
	Name          string         `json:"name,omitempty" yaml:"name,omitempty"`
	Attributes    map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	InnerBlocks   []Example      `json:"innerBlocks,omitempty" yaml:"innerBlocks,omitempty"`
	ViewportWidth int            `json:"viewportWidth,omitempty" yaml:"viewportWidth,omitempty"`
}

// Category groups block types in inserters and the style book.
type Category struct {
	Slug  string `json:"slug" yaml:"slug"`
	Title string `json:"title" yaml:"title"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// DefaultCategories are the core categories in inserter order.
func DefaultCategories() []Category {
	return []Category{
		{Slug: "text", Title: "Text"},
		{Slug: "media", Title: "Media"},
		{Slug: "design", Title: "Design"},
		{Slug: "widgets", Title: "Widgets"},
		{Slug: "theme", Title: "Theme"},
		{Slug: "embed", Title: "Embeds"},
		{Slug: "reusable", Title: "Reusable blocks"},
	}
}
