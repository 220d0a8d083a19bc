package jsonschema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/effectgen/effectgen/sequencedmap"
)

// rawSchema is the on-the-wire shape of a schema node. Child schemas stay as
// yaml nodes so parsing can recurse while preserving document order. The node
// fields must be value typed: the yaml decoder only captures raw nodes into
// yaml.Node fields, not *yaml.Node ones. Absence is an IsZero node.
type rawSchema struct {
	Ref    string    `yaml:"$ref"`
	Type   yaml.Node `yaml:"type"`
	Format string    `yaml:"format"`

	Nullable bool        `yaml:"nullable"`
	Enum     []yaml.Node `yaml:"enum"`
	Const    yaml.Node   `yaml:"const"`

	AllOf []yaml.Node `yaml:"allOf"`
	OneOf []yaml.Node `yaml:"oneOf"`
	AnyOf []yaml.Node `yaml:"anyOf"`

	Items       yaml.Node `yaml:"items"`
	MinItems    *int64    `yaml:"minItems"`
	MaxItems    *int64    `yaml:"maxItems"`
	UniqueItems bool      `yaml:"uniqueItems"`

	Properties           yaml.Node `yaml:"properties"`
	Required             []string  `yaml:"required"`
	AdditionalProperties yaml.Node `yaml:"additionalProperties"`

	MinLength *int64 `yaml:"minLength"`
	MaxLength *int64 `yaml:"maxLength"`
	Pattern   string `yaml:"pattern"`

	Minimum          *float64  `yaml:"minimum"`
	Maximum          *float64  `yaml:"maximum"`
	ExclusiveMinimum yaml.Node `yaml:"exclusiveMinimum"`
	ExclusiveMaximum yaml.Node `yaml:"exclusiveMaximum"`
	MultipleOf       *float64  `yaml:"multipleOf"`

	Description string `yaml:"description"`
	Deprecated  bool   `yaml:"deprecated"`
}

// present converts a value-typed node field back to the pointer form the
// parse helpers expect, with nil meaning the key was absent.
func present(n *yaml.Node) *yaml.Node {
	if n.IsZero() {
		return nil
	}
	return n
}

// Parse builds a schema Node from a yaml node. Parsing is permissive:
// structural problems that only matter for code generation (an array without
// items, an unknown type keyword) are carried through and rejected by the
// generator, matching where the failure belongs.
func Parse(node *yaml.Node) (Node, error) {
	node = deref(node)
	if node == nil {
		return nil, fmt.Errorf("schema node is nil")
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = deref(node.Content[0])
	}

	// JSON Schema boolean form: true admits anything, false admits nothing.
	if node.Kind == yaml.ScalarNode && node.Tag == "!!bool" {
		allowed := node.Value == "true"
		return &Object{
			Properties:        sequencedmap.New[string, *Property](),
			AdditionalAllowed: &allowed,
		}, nil
	}

	var raw rawSchema
	if err := node.Decode(&raw); err != nil {
		return nil, ErrParse.Wrap(err)
	}

	ann := Annotations{Description: raw.Description, Deprecated: raw.Deprecated}

	if raw.Ref != "" {
		return &Reference{Annotations: ann, Ref: raw.Ref}, nil
	}

	kinds, nullable, err := typeList(present(&raw.Type))
	if err != nil {
		return nil, err
	}
	nullable = nullable || raw.Nullable

	inner, err := parseVariant(&raw, kinds, ann, nullable)
	if err != nil {
		return nil, err
	}

	if nullable {
		// The annotation moves to the wrapper so it attaches once, on the
		// outermost compiled expression.
		clearAnnotations(inner)
		return &Nullable{Annotations: ann, Inner: inner}, nil
	}

	return inner, nil
}

func parseVariant(raw *rawSchema, kinds []PrimitiveKind, ann Annotations, nullable bool) (Node, error) {
	switch {
	case raw.AllOf != nil:
		return parseCombinator(CombinatorAllOf, raw.AllOf, ann)
	case raw.OneOf != nil:
		return parseCombinator(CombinatorOneOf, raw.OneOf, ann)
	case raw.AnyOf != nil:
		return parseCombinator(CombinatorAnyOf, raw.AnyOf, ann)
	case !raw.Const.IsZero():
		var value any
		if err := raw.Const.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to decode const value: %w", err)
		}
		return &Enum{Annotations: ann, Values: []any{value}, Const: true}, nil
	case raw.Enum != nil:
		values := make([]any, 0, len(raw.Enum))
		for i := range raw.Enum {
			var value any
			if err := raw.Enum[i].Decode(&value); err != nil {
				return nil, fmt.Errorf("failed to decode enum value: %w", err)
			}
			values = append(values, value)
		}
		return &Enum{Annotations: ann, Values: values}, nil
	}

	switch len(kinds) {
	case 0:
		// No type keyword: infer object/array shape from companion keywords.
		switch {
		case !raw.Properties.IsZero() || !raw.AdditionalProperties.IsZero() || len(raw.Required) > 0:
			return parseObject(raw, ann)
		case !raw.Items.IsZero() || raw.MinItems != nil || raw.MaxItems != nil:
			return parseArray(raw, ann)
		case nullable:
			// type: "null" on its own.
			return nil, nil
		default:
			return parseObject(raw, ann)
		}
	case 1:
		return parseTyped(raw, kinds[0], ann)
	default:
		// type: [a, b, ...] becomes a oneOf over the individual forms.
		members := make([]Node, 0, len(kinds))
		for _, kind := range kinds {
			member, err := parseTyped(raw, kind, Annotations{})
			if err != nil {
				return nil, err
			}
			members = append(members, member)
		}
		return &Combinator{Annotations: ann, Kind: CombinatorOneOf, Members: members}, nil
	}
}

func parseTyped(raw *rawSchema, kind PrimitiveKind, ann Annotations) (Node, error) {
	switch kind {
	case "object":
		return parseObject(raw, ann)
	case "array":
		return parseArray(raw, ann)
	default:
		p := &Primitive{
			Annotations: ann,
			Kind:        kind,
			Format:      raw.Format,
			MinLength:   raw.MinLength,
			MaxLength:   raw.MaxLength,
			Pattern:     raw.Pattern,
			Minimum:     raw.Minimum,
			Maximum:     raw.Maximum,
			MultipleOf:  raw.MultipleOf,
		}

		var err error
		if p.ExclusiveMinimum, p.ExclusiveMinFlag, err = exclusiveBound(present(&raw.ExclusiveMinimum), "exclusiveMinimum"); err != nil {
			return nil, err
		}
		if p.ExclusiveMaximum, p.ExclusiveMaxFlag, err = exclusiveBound(present(&raw.ExclusiveMaximum), "exclusiveMaximum"); err != nil {
			return nil, err
		}

		return p, nil
	}
}

func parseObject(raw *rawSchema, ann Annotations) (Node, error) {
	obj := &Object{
		Annotations: ann,
		Properties:  sequencedmap.New[string, *Property](),
	}

	required := make(map[string]bool, len(raw.Required))
	for _, name := range raw.Required {
		required[name] = true
	}

	if props := deref(present(&raw.Properties)); props != nil {
		if props.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("expected properties to be a mapping, got %s", props.Tag)
		}
		for i := 0; i < len(props.Content); i += 2 {
			name := props.Content[i].Value
			schema, err := Parse(props.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property %q: %w", name, err)
			}
			obj.Properties.Set(name, &Property{Schema: schema, Required: required[name]})
		}
	}

	if ap := deref(present(&raw.AdditionalProperties)); ap != nil {
		if ap.Kind == yaml.ScalarNode && ap.Tag == "!!bool" {
			allowed := ap.Value == "true"
			obj.AdditionalAllowed = &allowed
		} else {
			schema, err := Parse(ap)
			if err != nil {
				return nil, fmt.Errorf("failed to parse additionalProperties: %w", err)
			}
			obj.AdditionalSchema = schema
		}
	}

	return obj, nil
}

func parseArray(raw *rawSchema, ann Annotations) (Node, error) {
	arr := &Array{
		Annotations: ann,
		MinItems:    raw.MinItems,
		MaxItems:    raw.MaxItems,
		UniqueItems: raw.UniqueItems,
	}

	if !raw.Items.IsZero() {
		items, err := Parse(&raw.Items)
		if err != nil {
			return nil, fmt.Errorf("failed to parse array items: %w", err)
		}
		arr.Items = items
	}

	return arr, nil
}

func parseCombinator(kind CombinatorKind, members []yaml.Node, ann Annotations) (Node, error) {
	nodes := make([]Node, 0, len(members))
	for i := range members {
		member, err := Parse(&members[i])
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s member %d: %w", kind, i, err)
		}
		nodes = append(nodes, member)
	}
	return &Combinator{Annotations: ann, Kind: kind, Members: nodes}, nil
}

// typeList normalizes the type keyword, which may be a scalar or an array.
// "null" entries are stripped and reported separately.
func typeList(node *yaml.Node) ([]PrimitiveKind, bool, error) {
	node = deref(node)
	if node == nil {
		return nil, false, nil
	}

	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "null" {
			return nil, true, nil
		}
		return []PrimitiveKind{PrimitiveKind(node.Value)}, false, nil
	case yaml.SequenceNode:
		var kinds []PrimitiveKind
		nullable := false
		for _, entry := range node.Content {
			entry = deref(entry)
			if entry.Value == "null" {
				nullable = true
				continue
			}
			kinds = append(kinds, PrimitiveKind(entry.Value))
		}
		return kinds, nullable, nil
	default:
		return nil, false, fmt.Errorf("expected type to be a string or array, got %s", node.Tag)
	}
}

// exclusiveBound decodes the bool-or-number forms of exclusiveMinimum and
// exclusiveMaximum.
func exclusiveBound(node *yaml.Node, keyword string) (*float64, bool, error) {
	node = deref(node)
	if node == nil {
		return nil, false, nil
	}

	if node.Tag == "!!bool" {
		return nil, node.Value == "true", nil
	}

	var value float64
	if err := node.Decode(&value); err != nil {
		return nil, false, fmt.Errorf("failed to decode %s: %w", keyword, err)
	}
	return &value, false, nil
}

func clearAnnotations(node Node) {
	switch n := node.(type) {
	case *Primitive:
		n.Annotations = Annotations{}
	case *Array:
		n.Annotations = Annotations{}
	case *Object:
		n.Annotations = Annotations{}
	case *Reference:
		n.Annotations = Annotations{}
	case *Combinator:
		n.Annotations = Annotations{}
	case *Enum:
		n.Annotations = Annotations{}
	case *Nullable:
		n.Annotations = Annotations{}
	}
}

func deref(node *yaml.Node) *yaml.Node {
	if node != nil && node.Kind == yaml.AliasNode {
		return node.Alias
	}
	return node
}
