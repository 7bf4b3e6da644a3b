package blocktype

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dgallion1/blockbook/internal/block"
)

var (
	ErrUnknownType = errors.New("unknown block type")
	ErrDuplicate   = errors.New("block type already registered")
	ErrInvalid     = errors.New("invalid block type")
)

// Registry holds block types in registration order along with the category
// list. It is safe for concurrent use; readers get copies.
type Registry struct {
	mu         sync.RWMutex
	types      []Type
	index      map[string]int
	categories []Category
}

// NewRegistry returns an empty registry seeded with the default categories.
func NewRegistry() *Registry {
	return &Registry{
		index:      make(map[string]int),
		categories: DefaultCategories(),
	}
}

// Register adds t. Bare names get the core namespace.
func (r *Registry) Register(t Type) error {
	if t.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalid)
	}
	t.Name = block.NormalizeName(t.Name)
	if t.Title == "" {
		t.Title = t.Name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, t.Name)
	}
	r.index[t.Name] = len(r.types)
	r.types = append(r.types, t)
	return nil
}

// Unregister removes a block type, keeping the order of the rest.
func (r *Registry) Unregister(name string) bool {
	name = block.NormalizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[name]
	if !ok {
		return false
	}
	r.types = slices.Delete(r.types, i, i+1)
	delete(r.index, name)
	for j := i; j < len(r.types); j++ {
		r.index[r.types[j].Name] = j
	}
	return true
}

// AddVariations attaches variations to a registered type.
func (r *Registry) AddVariations(name string, vs ...Variation) error {
	name = block.NormalizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	r.types[i].Variations = append(r.types[i].Variations, vs...)
	return nil
}

func (r *Registry) Get(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[block.NormalizeName(name)]
	if !ok {
		return Type{}, false
	}
	return r.types[i], true
}

// Types returns every registered type in registration order.
func (r *Registry) Types() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.types)
}

// RegisterCategory appends c, or replaces the category with the same slug in
// place.
func (r *Registry) RegisterCategory(c Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.categories {
		if r.categories[i].Slug == c.Slug {
			r.categories[i] = c
			return
		}
	}
	r.categories = append(r.categories, c)
}

func (r *Registry) Categories() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.categories)
}
