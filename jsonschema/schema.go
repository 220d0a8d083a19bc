// Package jsonschema models the JSON-Schema-shaped nodes found in an OpenAPI
// 3.1 document and provides the reference resolver and declaration sorter the
// code generator is built on.
//
// Nodes are parsed once from the document and never mutated afterwards.
// Derived information (resolved trees, circular-property annotations) is
// produced as new values or side tables, keeping the parsed tree immutable.
package jsonschema

import (
	"github.com/effectgen/effectgen/errors"
	"github.com/effectgen/effectgen/sequencedmap"
)

// ErrParse is returned when a schema node cannot be decoded from the
// document tree.
const ErrParse = errors.Error("failed to parse schema")

// Node is a schema node. Concrete variants are Primitive, Array, Object,
// Reference, Combinator, Enum and Nullable.
type Node interface {
	node()

	GetAnnotations() Annotations
}

// Annotations carries the human-readable metadata every schema variant may
// declare.
type Annotations struct {
	Description string
	Deprecated  bool
}

func (Annotations) node() {}

// GetAnnotations returns the node's annotations.
func (a Annotations) GetAnnotations() Annotations { return a }

// PrimitiveKind is the JSON Schema type keyword of a primitive node. It is
// kept verbatim from the document; unrecognized kinds surface as generation
// errors when compiled, not as parse errors.
type PrimitiveKind string

const (
	KindString  PrimitiveKind = "string"
	KindNumber  PrimitiveKind = "number"
	KindInteger PrimitiveKind = "integer"
	KindBoolean PrimitiveKind = "boolean"
)

// Primitive is a string, number, integer or boolean schema together with its
// format and constraint keywords.
type Primitive struct {
	Annotations

	Kind   PrimitiveKind
	Format string

	// String constraints.
	MinLength *int64
	MaxLength *int64
	Pattern   string

	// Numeric constraints. ExclusiveMinimum/ExclusiveMaximum hold the JSON
	// Schema 2020-12 numeric form; ExclusiveMinFlag/ExclusiveMaxFlag the
	// draft-4 boolean form paired with Minimum/Maximum.
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	ExclusiveMinFlag bool
	ExclusiveMaxFlag bool
	MultipleOf       *float64
}

// Array is an array schema. Items may be nil when the document omitted the
// items keyword; compilation rejects that.
type Array struct {
	Annotations

	Items       Node
	MinItems    *int64
	MaxItems    *int64
	UniqueItems bool
}

// Property is a single object property.
type Property struct {
	Schema   Node
	Required bool
}

// Object is an object schema with ordered properties.
type Object struct {
	Annotations

	Properties *sequencedmap.Map[string, *Property]

	// AdditionalSchema is set when additionalProperties carried a schema;
	// AdditionalAllowed is set when it carried a boolean.
	AdditionalSchema  Node
	AdditionalAllowed *bool
}

// Reference is an unresolved $ref. Ref holds the raw reference string; only
// the #/components/schemas/<name> shape resolves.
type Reference struct {
	Annotations

	Ref string
}

// CombinatorKind distinguishes the three schema combinators.
type CombinatorKind string

const (
	CombinatorAllOf CombinatorKind = "allOf"
	CombinatorOneOf CombinatorKind = "oneOf"
	CombinatorAnyOf CombinatorKind = "anyOf"
)

// Combinator is an allOf, oneOf or anyOf schema.
type Combinator struct {
	Annotations

	Kind    CombinatorKind
	Members []Node
}

// Enum is an enum or const schema. Values preserve document order; Const is
// set when the node came from a const keyword rather than an enum list.
type Enum struct {
	Annotations

	Values []any
	Const  bool
}

// Nullable wraps a schema that also admits null, normalized from either a
// nullable flag or a type array containing "null".
type Nullable struct {
	Annotations

	Inner Node
}
