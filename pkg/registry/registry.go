// Package registry maps area content types to their default state.
//
// The layout engine never looks up content types through globals. It is
// handed a [Registry] and asks it for the default state whenever a split or
// an insertion creates a brand-new Area.
package registry

import (
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/karmyc/pkg/errors"
)

// Registry resolves the default content state for an area type.
type Registry interface {
	// DefaultState returns a fresh default state for the given type.
	// The boolean is false when the type is unknown.
	DefaultState(areaType string) (map[string]any, bool)
}

// MapRegistry is an in-memory Registry. It is safe for concurrent use.
type MapRegistry struct {
	mu       sync.RWMutex
	defaults map[string]map[string]any
}

// NewMapRegistry creates an empty registry.
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{defaults: make(map[string]map[string]any)}
}

// Register associates a default state with an area type. Registering the same
// type twice replaces the previous default.
func (r *MapRegistry) Register(areaType string, state map[string]any) error {
	if err := errors.ValidateAreaType(areaType); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults[areaType] = maps.Clone(state)
	return nil
}

// DefaultState returns a copy of the registered default, so callers may
// mutate the result freely.
func (r *MapRegistry) DefaultState(areaType string) (map[string]any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.defaults[areaType]
	if !ok {
		return nil, false
	}
	out := maps.Clone(state)
	if out == nil {
		out = map[string]any{}
	}
	return out, true
}

// Types returns the registered types in sorted order.
func (r *MapRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.defaults))
}

// Empty is a Registry that knows no types.
type Empty struct{}

// DefaultState always reports an unknown type.
func (Empty) DefaultState(string) (map[string]any, bool) { return nil, false }

// Builtin returns a registry pre-populated with the area types the CLI and
// server ship with.
func Builtin() *MapRegistry {
	r := NewMapRegistry()
	_ = r.Register("empty", nil)
	_ = r.Register("text", map[string]any{"text": ""})
	_ = r.Register("palette", map[string]any{"filter": ""})
	_ = r.Register("tree", map[string]any{"expanded": []any{}})
	_ = r.Register("properties", map[string]any{"selection": ""})
	_ = r.Register("preview", map[string]any{"zoom": 1.0})
	return r
}

var (
	_ Registry = (*MapRegistry)(nil)
	_ Registry = Empty{}
)
