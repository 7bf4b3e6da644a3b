package stylebook

import (
	"log/slog"

	"github.com/dgallion1/blockbook/internal/block"
	"github.com/dgallion1/blockbook/internal/blocktype"
)

const (
	// HeadingBlock always gets the built-in multi-level example.
	HeadingBlock = "core/heading"
	headingText  = "Code Is Poetry"
)

// Example is one titled, categorised group of preview blocks.
type Example struct {
	Name     string        `json:"name"`
	Title    string        `json:"title"`
	Category string        `json:"category"`
	Blocks   []block.Block `json:"blocks"`
}

// Tab is a style book tab, one per category with at least one example.
type Tab struct {
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title" yaml:"title"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Source supplies block types and realises their examples.
type Source interface {
	Types() []blocktype.Type
	FromExample(name string, ex blocktype.Example) (block.Block, error)
}

// BuildCatalog lists the style book examples: the heading example first, then
// every type that declares an example and is not hidden from the inserter,
// in registry order. Any registered heading example is ignored so all heading
// levels are shown. Examples that fail to instantiate are logged and left out.
func BuildCatalog(src Source, log *slog.Logger) []Example {
	out := []Example{headingExample()}
	seen := map[string]bool{HeadingBlock: true}

	for _, t := range src.Types() {
		if seen[t.Name] || t.Example == nil || !t.Supports.Inserter() {
			continue
		}
		b, err := src.FromExample(t.Name, *t.Example)
		if err != nil {
			if log != nil {
				log.Warn("skipping style book example", "block", t.Name, "error", err)
			}
			continue
		}
		seen[t.Name] = true
		out = append(out, Example{
			Name:     t.Name,
			Title:    t.Title,
			Category: t.Category,
			Blocks:   []block.Block{b},
		})
	}
	return out
}

func headingExample() Example {
	blocks := make([]block.Block, 0, 5)
	for level := 1; level <= 5; level++ {
		blocks = append(blocks, block.New(HeadingBlock, map[string]any{
			"content": headingText,
			"level":   level,
		}))
	}
	return Example{
		Name:     HeadingBlock,
		Title:    "Headings",
		Category: "text",
		Blocks:   blocks,
	}
}

// Tabs returns a tab for each category that has an example, in category
// order.
func Tabs(examples []Example, categories []blocktype.Category) []Tab {
	used := make(map[string]bool, len(examples))
	for _, ex := range examples {
		used[ex.Category] = true
	}
	var tabs []Tab
	for _, c := range categories {
		if !used[c.Slug] {
			continue
		}
		used[c.Slug] = false
		tabs = append(tabs, Tab{Name: c.Slug, Title: c.Title, Icon: c.Icon})
	}
	return tabs
}

// ExamplesIn filters examples to one category.
func ExamplesIn(examples []Example, category string) []Example {
	var out []Example
	for _, ex := range examples {
		if ex.Category == category {
			out = append(out, ex)
		}
	}
	return out
}

// Find returns the example named name.
func Find(examples []Example, name string) (Example, bool) {
	for _, ex := range examples {
		if ex.Name == name {
			return ex, true
		}
	}
	return Example{}, false
}
