package jsonschema

import (
	"fmt"
	"strings"

	"github.com/effectgen/effectgen/sequencedmap"
)

// componentRefPrefix is the only reference shape this compiler resolves.
// External and remote references are out of scope.
const componentRefPrefix = "#/components/schemas/"

// ResolutionError is returned for a dangling or malformed $ref.
type ResolutionError struct {
	Ref     string
	Message string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve reference %q: %s", e.Ref, e.Message)
}

// RefName extracts the schema name from a component reference string.
func RefName(ref string) (string, error) {
	name, ok := strings.CutPrefix(ref, componentRefPrefix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", &ResolutionError{Ref: ref, Message: "expected a reference of the form " + componentRefPrefix + "<name>"}
	}
	return name, nil
}

// Resolver follows reference chains through a registry, producing
// reference-free trees and recording which object properties sit on a
// reference cycle. The circular-property information lives in a side table
// keyed by object identity so parsed nodes stay immutable; it is the only
// channel by which cycle information reaches the code generator.
type Resolver struct {
	registry *Registry
	circular map[*Object]map[string]bool
}

// NewResolver creates a resolver over the given registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{
		registry: registry,
		circular: make(map[*Object]map[string]bool),
	}
}

// ResolveAll resolves every registry entry in declaration order, populating
// the circular-property side table for the whole document.
func (r *Resolver) ResolveAll() error {
	for name := range r.registry.All() {
		if _, err := r.ResolveEntry(name); err != nil {
			return err
		}
	}
	return nil
}

// ResolveEntry resolves the named registry entry. The entry's own name seeds
// the visited set so self-references short-circuit immediately.
func (r *Resolver) ResolveEntry(name string) (Node, error) {
	node, ok := r.registry.Get(name)
	if !ok {
		return nil, &ResolutionError{Ref: componentRefPrefix + name, Message: "schema not found in registry"}
	}

	resolved, _, err := r.resolve(node, map[string]bool{name: true})
	return resolved, err
}

// Resolve resolves an arbitrary schema node (an operation parameter or body
// schema) against the registry.
func (r *Resolver) Resolve(node Node) (Node, error) {
	resolved, _, err := r.resolve(node, map[string]bool{})
	return resolved, err
}

// IsCircular reports whether the named property of obj was short-circuited
// during resolution because it references an ancestor on the resolution path.
func (r *Resolver) IsCircular(obj *Object, property string) bool {
	return r.circular[obj][property]
}

// CircularProperties returns the set of circular property names recorded for
// obj, or nil when none were.
func (r *Resolver) CircularProperties(obj *Object) map[string]bool {
	return r.circular[obj]
}

// resolve returns a resolved copy of node. The boolean reports whether the
// subtree contains a reference that was short-circuited due to a cycle; it
// propagates upward until the nearest enclosing object property consumes it.
// visited is the set of names on the current resolution path; entries are
// removed on the way back up so sibling reuse of a schema is not treated as
// circular.
func (r *Resolver) resolve(node Node, visited map[string]bool) (Node, bool, error) {
	switch n := node.(type) {
	case *Reference:
		name, err := RefName(n.Ref)
		if err != nil {
			return nil, false, err
		}

		target, ok := r.registry.Get(name)
		if !ok {
			return nil, false, &ResolutionError{Ref: n.Ref, Message: "schema not found in registry"}
		}

		if visited[name] {
			// Cycle back to an ancestor: return the reference untouched and
			// let the owning property record it.
			return n, true, nil
		}

		visited[name] = true
		defer delete(visited, name)

		resolved, _, err := r.resolve(target, visited)
		return resolved, false, err

	case *Object:
		out := &Object{
			Annotations:       n.Annotations,
			Properties:        sequencedmap.New[string, *Property](),
			AdditionalAllowed: n.AdditionalAllowed,
		}

		for name, prop := range n.Properties.All() {
			resolved, cyclic, err := r.resolve(prop.Schema, visited)
			if err != nil {
				return nil, false, err
			}
			if cyclic {
				r.markCircular(n, name)
			}
			out.Properties.Set(name, &Property{Schema: resolved, Required: prop.Required})
		}

		if n.AdditionalSchema != nil {
			resolved, _, err := r.resolve(n.AdditionalSchema, visited)
			if err != nil {
				return nil, false, err
			}
			out.AdditionalSchema = resolved
		}

		return out, false, nil

	case *Array:
		if n.Items == nil {
			return n, false, nil
		}

		items, cyclic, err := r.resolve(n.Items, visited)
		if err != nil {
			return nil, false, err
		}

		out := *n
		out.Items = items
		return &out, cyclic, nil

	case *Combinator:
		out := &Combinator{Annotations: n.Annotations, Kind: n.Kind, Members: make([]Node, 0, len(n.Members))}
		anyCyclic := false

		for _, member := range n.Members {
			resolved, cyclic, err := r.resolve(member, visited)
			if err != nil {
				return nil, false, err
			}
			anyCyclic = anyCyclic || cyclic
			out.Members = append(out.Members, resolved)
		}

		return out, anyCyclic, nil

	case *Nullable:
		if n.Inner == nil {
			return n, false, nil
		}

		inner, cyclic, err := r.resolve(n.Inner, visited)
		if err != nil {
			return nil, false, err
		}

		return &Nullable{Annotations: n.Annotations, Inner: inner}, cyclic, nil

	default:
		// Primitives and enums carry no references.
		return node, false, nil
	}
}

func (r *Resolver) markCircular(obj *Object, property string) {
	props, ok := r.circular[obj]
	if !ok {
		props = make(map[string]bool)
		r.circular[obj] = props
	}
	props[property] = true
}
