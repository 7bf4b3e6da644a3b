package block

import "strings"

// DefaultNamespace is prepended to block names written without a namespace.
const DefaultNamespace = "core"

// Block is a node in a parsed content tree.
type Block struct {
	Name        string         `json:"blockName"`
	Attrs       map[string]any `json:"attrs"`
	InnerBlocks []Block        `json:"innerBlocks"`
	InnerHTML   string         `json:"innerHTML"`

	// InnerContent holds the HTML segments surrounding InnerBlocks as they
	// appeared in the source: segment i precedes inner block i. Blocks built
	// with New leave it nil.
	InnerContent []string `json:"-"`
}

// New instantiates a block of the given kind. Attributes are deep-copied so
// the caller's map can be reused.
func New(name string, attrs map[string]any, inner ...Block) Block {
	return Block{
		Name:        NormalizeName(name),
		Attrs:       CloneAttrs(attrs),
		InnerBlocks: inner,
	}
}

// NormalizeName adds the core namespace to a bare block name.
func NormalizeName(name string) string {
	if name == "" || strings.Contains(name, "/") {
		return name
	}
	return DefaultNamespace + "/" + name
}

// IsFreeform reports whether b holds raw HTML outside any block delimiter.
func (b Block) IsFreeform() bool {
	return b.Name == ""
}

// Clone returns a deep copy of b.
func (b Block) Clone() Block {
	out := Block{
		Name:      b.Name,
		Attrs:     CloneAttrs(b.Attrs),
		InnerHTML: b.InnerHTML,
	}
	if b.InnerBlocks != nil {
		out.InnerBlocks = make([]Block, len(b.InnerBlocks))
		for i, inner := range b.InnerBlocks {
			out.InnerBlocks[i] = inner.Clone()
		}
	}
	if b.InnerContent != nil {
		out.InnerContent = append([]string(nil), b.InnerContent...)
	}
	return out
}

// CloneAttrs deep-copies a JSON-compatible attribute map. A nil map stays nil.
func CloneAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneAttrs(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// FindFirst returns the first block named name in a pre-order walk of blocks.
// A block is checked before its inner blocks, and an earlier sibling's subtree
// is searched before any later sibling.
func FindFirst(blocks []Block, name string) (Block, bool) {
	for _, b := range blocks {
		if b.Name == name {
			return b, true
		}
		if len(b.InnerBlocks) > 0 {
			if found, ok := FindFirst(b.InnerBlocks, name); ok {
				return found, true
			}
		}
	}
	return Block{}, false
}

// Walk calls fn for every block in pre-order. Returning false from fn skips
// that block's inner blocks.
func Walk(blocks []Block, fn func(b Block, depth int) bool) {
	walk(blocks, 0, fn)
}

func walk(blocks []Block, depth int, fn func(Block, int) bool) {
	for _, b := range blocks {
		if fn(b, depth) && len(b.InnerBlocks) > 0 {
			walk(b.InnerBlocks, depth+1, fn)
		}
	}
}
