// Package codegen compiles parsed OpenAPI documents into Effect HttpApi
// TypeScript source: one schema declaration per registry entry, one endpoint
// per operation, one group per tag, and a single api value tying them
// together.
package codegen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/effectgen/effectgen/jsonschema"
)

// GenerationError reports a schema node that cannot be translated: an array
// without items, an unsupported primitive type, an empty combinator list.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	return "failed to generate schema: " + e.Message
}

func generationErrorf(format string, args ...any) error {
	return &GenerationError{Message: fmt.Sprintf(format, args...)}
}

// compileMode selects between the body translation rules and the
// string-coercing variant used for query/header/cookie/path parameters.
type compileMode int

const (
	modeBody compileMode = iota
	modeParameter
)

// CompileSchema translates a schema node into an Effect Schema expression
// using the request/response body rules. The first error aborts the compile;
// there is no partial output.
func (g *Generator) CompileSchema(ctx context.Context, node jsonschema.Node) (string, error) {
	return g.compile(ctx, node, modeBody)
}

// CompileParameterSchema translates a schema node for a string-transported
// parameter location: integer, number and boolean primitives compile to
// parse-from-string expressions. Arrays, objects and enums use the general
// rules.
func (g *Generator) CompileParameterSchema(ctx context.Context, node jsonschema.Node) (string, error) {
	return g.compile(ctx, node, modeParameter)
}

func (g *Generator) compile(ctx context.Context, node jsonschema.Node, mode compileMode) (string, error) {
	expr, err := g.compileBare(ctx, node, mode)
	if err != nil {
		return "", err
	}

	return annotate(expr, node.GetAnnotations()), nil
}

func (g *Generator) compileBare(ctx context.Context, node jsonschema.Node, mode compileMode) (string, error) {
	switch n := node.(type) {
	case *jsonschema.Reference:
		name, err := jsonschema.RefName(n.Ref)
		if err != nil {
			return "", err
		}
		return SchemaIdentifier(ctx, name), nil

	case *jsonschema.Combinator:
		return g.compileCombinator(ctx, n)

	case *jsonschema.Enum:
		return compileEnum(n)

	case *jsonschema.Nullable:
		if n.Inner == nil {
			return "S.Null", nil
		}
		inner, err := g.compile(ctx, n.Inner, mode)
		if err != nil {
			return "", err
		}
		return "S.Union(" + inner + ", S.Null)", nil

	case *jsonschema.Primitive:
		return compilePrimitive(n, mode)

	case *jsonschema.Array:
		return g.compileArray(ctx, n)

	case *jsonschema.Object:
		return g.compileObject(ctx, n)

	default:
		return "", generationErrorf("unsupported schema node %T", node)
	}
}

func (g *Generator) compileCombinator(ctx context.Context, n *jsonschema.Combinator) (string, error) {
	if len(n.Members) == 0 {
		return "", generationErrorf("%s must declare at least one member", n.Kind)
	}

	members := make([]string, 0, len(n.Members))
	for _, member := range n.Members {
		expr, err := g.compile(ctx, member, modeBody)
		if err != nil {
			return "", err
		}
		members = append(members, expr)
	}

	switch n.Kind {
	case jsonschema.CombinatorAllOf:
		// Left fold: extend the first member with each subsequent one. A
		// single member passes through unchanged.
		expr := members[0]
		for _, member := range members[1:] {
			expr = "S.extend(" + expr + ", " + member + ")"
		}
		return expr, nil
	default:
		// oneOf and anyOf compile identically to a union of alternatives.
		return "S.Union(" + strings.Join(members, ", ") + ")", nil
	}
}

func compileEnum(n *jsonschema.Enum) (string, error) {
	if len(n.Values) == 0 {
		return "", generationErrorf("enum must declare at least one value")
	}

	if n.Const {
		return "S.Literal(" + literal(n.Values[0]) + ")", nil
	}

	literals := make([]string, 0, len(n.Values))
	for _, value := range n.Values {
		literals = append(literals, "S.Literal("+literal(value)+")")
	}

	// An enum stays a union even with a single value; only const collapses.
	return "S.Union(" + strings.Join(literals, ", ") + ")", nil
}

const emailPattern = `/^[^\s@]+@[^\s@]+\.[^\s@]+$/`

func compilePrimitive(n *jsonschema.Primitive, mode compileMode) (string, error) {
	switch n.Kind {
	case jsonschema.KindString:
		base := "S.String"
		var calls []string

		switch n.Format {
		case "uuid":
			base = "S.UUID"
		case "date-time":
			base = "S.DateTimeUtc"
		case "date":
			base = "S.Date"
		case "uri", "url":
			base = "S.URL"
		case "email":
			calls = append(calls, "S.pattern("+emailPattern+")")
		}

		if n.MinLength != nil {
			calls = append(calls, fmt.Sprintf("S.minLength(%d)", *n.MinLength))
		}
		if n.MaxLength != nil {
			calls = append(calls, fmt.Sprintf("S.maxLength(%d)", *n.MaxLength))
		}
		if n.Pattern != "" {
			calls = append(calls, "S.pattern(new RegExp("+quoteString(n.Pattern)+"))")
		}

		return pipe(base, calls), nil

	case jsonschema.KindNumber, jsonschema.KindInteger:
		base := "S.Number"
		var calls []string

		if mode == modeParameter {
			base = "S.NumberFromString"
			if n.Kind == jsonschema.KindInteger {
				calls = append(calls, "S.int()")
			}
		} else if n.Kind == jsonschema.KindInteger {
			base = "S.Int"
		}

		// Numeric exclusive forms win over minimum/maximum paired with the
		// boolean flags.
		switch {
		case n.ExclusiveMinimum != nil:
			calls = append(calls, "S.greaterThan("+formatNumber(*n.ExclusiveMinimum)+")")
		case n.Minimum != nil && n.ExclusiveMinFlag:
			calls = append(calls, "S.greaterThan("+formatNumber(*n.Minimum)+")")
		case n.Minimum != nil:
			calls = append(calls, "S.greaterThanOrEqualTo("+formatNumber(*n.Minimum)+")")
		}

		switch {
		case n.ExclusiveMaximum != nil:
			calls = append(calls, "S.lessThan("+formatNumber(*n.ExclusiveMaximum)+")")
		case n.Maximum != nil && n.ExclusiveMaxFlag:
			calls = append(calls, "S.lessThan("+formatNumber(*n.Maximum)+")")
		case n.Maximum != nil:
			calls = append(calls, "S.lessThanOrEqualTo("+formatNumber(*n.Maximum)+")")
		}

		if n.MultipleOf != nil {
			calls = append(calls, "S.multipleOf("+formatNumber(*n.MultipleOf)+")")
		}

		return pipe(base, calls), nil

	case jsonschema.KindBoolean:
		if mode == modeParameter {
			return "S.BooleanFromString", nil
		}
		return "S.Boolean", nil

	default:
		return "", generationErrorf("unsupported primitive type %q", string(n.Kind))
	}
}

func (g *Generator) compileArray(ctx context.Context, n *jsonschema.Array) (string, error) {
	if n.Items == nil {
		return "", generationErrorf("array schema must declare items")
	}

	items, err := g.compile(ctx, n.Items, modeBody)
	if err != nil {
		return "", err
	}

	expr := "S.Array(" + items + ")"
	var calls []string

	if n.MinItems != nil {
		calls = append(calls, fmt.Sprintf("S.minItems(%d)", *n.MinItems))
	}
	if n.MaxItems != nil {
		calls = append(calls, fmt.Sprintf("S.maxItems(%d)", *n.MaxItems))
	}
	if n.UniqueItems {
		calls = append(calls, "S.filter((items) => new Set(items).size === items.length)")
	}

	return pipe(expr, calls), nil
}

func (g *Generator) compileObject(ctx context.Context, n *jsonschema.Object) (string, error) {
	entries := make([]string, 0, n.Properties.Len())

	for name, prop := range n.Properties.All() {
		expr, err := g.compile(ctx, prop.Schema, modeBody)
		if err != nil {
			return "", err
		}

		// A circular property defers evaluation of its reference so the
		// declaration does not expand (or self-reference) infinitely.
		if g.resolver != nil && g.resolver.IsCircular(n, name) {
			expr = "S.suspend(() => " + expr + ")"
		}

		if !prop.Required {
			expr = "S.optional(" + expr + ")"
		}

		entries = append(entries, propertyKey(name)+": "+expr)
	}

	expr := "S.Struct({})"
	if len(entries) > 0 {
		expr = "S.Struct({ " + strings.Join(entries, ", ") + " })"
	}

	switch {
	case n.AdditionalSchema != nil:
		value, err := g.compile(ctx, n.AdditionalSchema, modeBody)
		if err != nil {
			return "", err
		}
		return "S.extend(" + expr + ", S.Record({ key: S.String, value: " + value + " }))", nil
	case n.AdditionalAllowed != nil && *n.AdditionalAllowed:
		return "S.extend(" + expr + ", S.Record({ key: S.String, value: S.Unknown }))", nil
	default:
		return expr, nil
	}
}

func pipe(base string, calls []string) string {
	if len(calls) == 0 {
		return base
	}
	return base + ".pipe(" + strings.Join(calls, ", ") + ")"
}

// annotate attaches a node's description as a trailing annotation, escaped so
// the expression stays valid wherever it is embedded.
func annotate(expr string, ann jsonschema.Annotations) string {
	if ann.Description == "" {
		return expr
	}
	return expr + `.annotations({ description: "` + escapeDescription(ann.Description) + `" })`
}

var descriptionEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"`", "\\`",
	`$`, `\$`,
	"\n", `\n`,
	"\t", `\t`,
)

func escapeDescription(s string) string {
	return descriptionEscaper.Replace(s)
}

// literal renders an enum/const value as a TypeScript literal.
func literal(value any) string {
	out, err := json.Marshal(value)
	if err != nil {
		return "null"
	}
	return string(out)
}

// quoteString renders a JS double-quoted string literal.
func quoteString(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(out)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
