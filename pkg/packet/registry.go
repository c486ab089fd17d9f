package packet

import (
	"cmp"
	"maps"
	"slices"
)

// DecodeFunc parses raw bytes into a value of one format.
type DecodeFunc[V any] func(raw []byte) (V, error)

// Registry is an immutable map from type code to decoder. It is built once
// and is safe for unlimited concurrent lookups.
type Registry[K cmp.Ordered, V any] struct {
	decoders map[K]DecodeFunc[V]
}

// NewRegistry copies entries; later changes to the map are not observed.
func NewRegistry[K cmp.Ordered, V any](entries map[K]DecodeFunc[V]) *Registry[K, V] {
	return &Registry[K, V]{decoders: maps.Clone(entries)}
}

func (r *Registry[K, V]) Lookup(code K) (DecodeFunc[V], bool) {
	fn, ok := r.decoders[code]
	return fn, ok
}

// Codes returns the registered codes in ascending order.
func (r *Registry[K, V]) Codes() []K {
	return slices.Sorted(maps.Keys(r.decoders))
}

func (r *Registry[K, V]) Len() int { return len(r.decoders) }

// Fallback returns v when err is nil and illegal(err) otherwise. Factories
// use it to turn a structural decode error into an Illegal variant.
func Fallback[V any](v V, err error, illegal func(error) V) V {
	if err != nil {
		return illegal(err)
	}
	return v
}
