package jsonschema

import (
	"fmt"
	"iter"

	"gopkg.in/yaml.v3"

	"github.com/effectgen/effectgen/sequencedmap"
)

// Registry is the lookup table of named reusable schemas, keyed by name and
// ordered as declared in the document. Built once per compilation run and
// read-only afterwards.
type Registry struct {
	entries *sequencedmap.Map[string, Node]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: sequencedmap.New[string, Node]()}
}

// BuildRegistry parses the components.schemas mapping node into a registry.
// A nil or zero node yields an empty registry so documents without
// components work unconditionally.
func BuildRegistry(node *yaml.Node) (*Registry, error) {
	r := NewRegistry()

	node = deref(node)
	if node == nil || node.IsZero() {
		return r, nil
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = deref(node.Content[0])
	}

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected components.schemas to be a mapping, got %s", node.Tag)
	}

	for i := 0; i < len(node.Content); i += 2 {
		name := node.Content[i].Value
		schema, err := Parse(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema %q: %w", name, err)
		}
		r.entries.Set(name, schema)
	}

	return r, nil
}

// Add registers a schema under the given name.
func (r *Registry) Add(name string, node Node) {
	r.entries.Set(name, node)
}

// Get returns the schema registered under name.
func (r *Registry) Get(name string) (Node, bool) {
	return r.entries.Get(name)
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	return r.entries.Len()
}

// All iterates the registry in declaration order.
func (r *Registry) All() iter.Seq2[string, Node] {
	return r.entries.All()
}
