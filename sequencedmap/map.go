// Package sequencedmap provides a map that preserves insertion order of its
// elements. Document-derived collections (schema registries, object
// properties, path items) use it so iteration order, and therefore generated
// output, is deterministic for a deterministic input document.
package sequencedmap

import (
	"fmt"
	"iter"

	"gopkg.in/yaml.v3"
)

// Map is a map that maintains the order keys were first inserted in.
// The zero value is not usable; construct with New.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// New creates a new empty Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		values: make(map[K]V),
	}
}

// Len returns the number of elements in the map.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Set sets the value for the given key. Updating an existing key keeps its
// original position.
func (m *Map[K, V]) Set(key K, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for the given key, and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	v, ok := m.values[key]
	return v, ok
}

// GetOrZero returns the value for the given key, or the zero value when
// absent.
func (m *Map[K, V]) GetOrZero(key K) V {
	v, _ := m.Get(key)
	return v
}

// Has reports whether the key is present.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// All returns an iterator over key/value pairs in insertion order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Keys returns an iterator over keys in insertion order.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Values returns an iterator over values in insertion order.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(m.values[k]) {
				return
			}
		}
	}
}

// UnmarshalYAML decodes a YAML mapping node preserving key order.
func (m *Map[K, V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping node, got %v", node.Kind)
	}

	if m.values == nil {
		m.values = make(map[K]V)
	}

	for i := 0; i < len(node.Content); i += 2 {
		var key K
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}

		var value V
		if err := node.Content[i+1].Decode(&value); err != nil {
			return err
		}

		m.Set(key, value)
	}

	return nil
}
