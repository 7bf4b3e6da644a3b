package blocktype

import (
	"errors"
	"fmt"
	"math"

	"github.com/dgallion1/blockbook/internal/block"
)

// ErrMalformedExample reports an example payload that cannot be turned into
// blocks.
var ErrMalformedExample = errors.New("malformed block example")

// Instantiate creates a block of a registered type. Declared attributes are
// type-checked and missing ones take their defaults; undeclared attributes
// pass through untouched.
func (r *Registry) Instantiate(name string, attrs map[string]any, inner ...block.Block) (block.Block, error) {
	t, ok := r.Get(name)
	if !ok {
		return block.Block{}, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}

	out := block.CloneAttrs(attrs)
	if out == nil {
		out = map[string]any{}
	}
	for key, schema := range t.Attributes {
		v, present := out[key]
		if !present {
			if schema.Default != nil {
				out[key] = block.CloneAttrs(map[string]any{key: schema.Default})[key]
			}
			continue
		}
		if !matchesType(v, schema.Type) {
			return block.Block{}, fmt.Errorf("attribute %q of %s: want %s, got %T", key, t.Name, schema.Type, v)
		}
	}
	return block.New(t.Name, out, inner...), nil
}

// FromExample builds the preview block for a type from its example,
// instantiating inner examples recursively.
func (r *Registry) FromExample(name string, ex Example) (block.Block, error) {
	inner := make([]block.Block, 0, len(ex.InnerBlocks))
	for i, ie := range ex.InnerBlocks {
		if ie.Name == "" {
			return block.Block{}, fmt.Errorf("%w: %s inner block %d has no name", ErrMalformedExample, name, i)
		}
		b, err := r.FromExample(ie.Name, ie)
		if err != nil {
			return block.Block{}, err
		}
		inner = append(inner, b)
	}

	b, err := r.Instantiate(name, ex.Attributes, inner...)
	if err != nil {
		return block.Block{}, fmt.Errorf("%w: %s: %w", ErrMalformedExample, name, err)
	}
	return b, nil
}

func matchesType(v any, typ string) bool {
	switch typ {
	case "":
		return true
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "number":
		switch v.(type) {
		case float64, float32, int, int64, int32, uint, uint64:
			return true
		}
		return false
	case "integer":
		switch n := v.(type) {
		case int, int64, int32, uint, uint64:
			return true
		case float64:
			return n == math.Trunc(n)
		}
		return false
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	case "null":
		return v == nil
	}
	// Unknown schema types are not ours to reject.
	return true
}
