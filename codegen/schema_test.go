package codegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/effectgen/effectgen/jsonschema"
)

func parseSchema(t *testing.T, src string) jsonschema.Node {
	t.Helper()

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &node))

	parsed, err := jsonschema.Parse(&node)
	require.NoError(t, err)
	return parsed
}

func compileSchema(t *testing.T, src string) string {
	t.Helper()

	expr, err := New(nil).CompileSchema(context.Background(), parseSchema(t, src))
	require.NoError(t, err)
	return expr
}

func TestCompileSchema_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name:     "plain string",
			src:      `type: string`,
			expected: `S.String`,
		},
		{
			name:     "uuid format",
			src:      "type: string\nformat: uuid",
			expected: `S.UUID`,
		},
		{
			name:     "date-time format",
			src:      "type: string\nformat: date-time",
			expected: `S.DateTimeUtc`,
		},
		{
			name:     "date format",
			src:      "type: string\nformat: date",
			expected: `S.Date`,
		},
		{
			name:     "uri format",
			src:      "type: string\nformat: uri",
			expected: `S.URL`,
		},
		{
			name:     "url format",
			src:      "type: string\nformat: url",
			expected: `S.URL`,
		},
		{
			name:     "email format uses a pattern",
			src:      "type: string\nformat: email",
			expected: `S.String.pipe(S.pattern(/^[^\s@]+@[^\s@]+\.[^\s@]+$/))`,
		},
		{
			name:     "unrecognized format falls back to string",
			src:      "type: string\nformat: hostname",
			expected: `S.String`,
		},
		{
			name:     "string constraints in fixed order",
			src:      "type: string\nmaxLength: 10\nminLength: 2\npattern: \"^[a-z]+$\"",
			expected: `S.String.pipe(S.minLength(2), S.maxLength(10), S.pattern(new RegExp("^[a-z]+$")))`,
		},
		{
			name:     "number",
			src:      `type: number`,
			expected: `S.Number`,
		},
		{
			name:     "integer uses a whole number base",
			src:      `type: integer`,
			expected: `S.Int`,
		},
		{
			name:     "boolean",
			src:      `type: boolean`,
			expected: `S.Boolean`,
		},
		{
			name:     "inclusive bounds",
			src:      "type: integer\nminimum: 0\nmaximum: 100",
			expected: `S.Int.pipe(S.greaterThanOrEqualTo(0), S.lessThanOrEqualTo(100))`,
		},
		{
			name:     "numeric exclusive form wins over minimum",
			src:      "type: number\nminimum: 0\nexclusiveMinimum: 1",
			expected: `S.Number.pipe(S.greaterThan(1))`,
		},
		{
			name:     "boolean exclusive flag",
			src:      "type: number\nminimum: 0\nexclusiveMinimum: true\nmaximum: 10\nexclusiveMaximum: true",
			expected: `S.Number.pipe(S.greaterThan(0), S.lessThan(10))`,
		},
		{
			name:     "multipleOf last",
			src:      "type: number\nminimum: 0\nmultipleOf: 0.5",
			expected: `S.Number.pipe(S.greaterThanOrEqualTo(0), S.multipleOf(0.5))`,
		},
		{
			name:     "array",
			src:      "type: array\nitems:\n  type: string",
			expected: `S.Array(S.String)`,
		},
		{
			name:     "array constraints and uniqueness filter",
			src:      "type: array\nitems:\n  type: integer\nminItems: 1\nmaxItems: 5\nuniqueItems: true",
			expected: `S.Array(S.Int).pipe(S.minItems(1), S.maxItems(5), S.filter((items) => new Set(items).size === items.length))`,
		},
		{
			name:     "enum is a union of literals in input order",
			src:      "type: string\nenum: [a, b]",
			expected: `S.Union(S.Literal("a"), S.Literal("b"))`,
		},
		{
			name:     "single enum value keeps the union form",
			src:      "type: string\nenum: [only]",
			expected: `S.Union(S.Literal("only"))`,
		},
		{
			name:     "const collapses to one literal",
			src:      `const: 42`,
			expected: `S.Literal(42)`,
		},
		{
			name:     "nullable",
			src:      "type: string\nnullable: true",
			expected: `S.Union(S.String, S.Null)`,
		},
		{
			name:     "reference compiles to a schema identifier",
			src:      `$ref: "#/components/schemas/user-profile"`,
			expected: `UserProfileSchema`,
		},
		{
			name:     "allOf folds into extend",
			src:      "allOf:\n  - type: object\n    properties:\n      id:\n        type: string\n    required: [id]\n  - type: object\n    properties:\n      name:\n        type: string\n    required: [name]",
			expected: `S.extend(S.Struct({ id: S.String }), S.Struct({ name: S.String }))`,
		},
		{
			name:     "single allOf member passes through",
			src:      "allOf:\n  - type: string",
			expected: `S.String`,
		},
		{
			name:     "oneOf",
			src:      "oneOf:\n  - type: string\n  - type: integer",
			expected: `S.Union(S.String, S.Int)`,
		},
		{
			name:     "object with optional property",
			src:      "type: object\nproperties:\n  id:\n    type: string\n  name:\n    type: string\nrequired: [id]",
			expected: `S.Struct({ id: S.String, name: S.optional(S.String) })`,
		},
		{
			name:     "empty object",
			src:      `type: object`,
			expected: `S.Struct({})`,
		},
		{
			name:     "additionalProperties schema extends a record",
			src:      "type: object\nproperties:\n  id:\n    type: string\nrequired: [id]\nadditionalProperties:\n  type: integer",
			expected: `S.extend(S.Struct({ id: S.String }), S.Record({ key: S.String, value: S.Int }))`,
		},
		{
			name:     "additionalProperties true uses unknown values",
			src:      "type: object\nadditionalProperties: true",
			expected: `S.extend(S.Struct({}), S.Record({ key: S.String, value: S.Unknown }))`,
		},
		{
			name:     "description attaches as a trailing annotation",
			src:      "type: string\ndescription: the user id",
			expected: `S.String.annotations({ description: "the user id" })`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, compileSchema(t, tt.src))
		})
	}
}

// oneOf and anyOf deliberately compile to the same union construct even
// though their JSON Schema semantics differ. This test pins the
// simplification; change it only if stricter anyOf semantics are required.
func TestCompileSchema_OneOfAnyOfIdentical(t *testing.T) {
	t.Parallel()

	oneOf := compileSchema(t, "oneOf:\n  - type: string\n  - type: integer")
	anyOf := compileSchema(t, "anyOf:\n  - type: string\n  - type: integer")

	assert.Equal(t, oneOf, anyOf)
}

func TestCompileSchema_DescriptionEscaping(t *testing.T) {
	t.Parallel()

	expr := compileSchema(t, "type: string\ndescription: \"say \\\"hi\\\" to `$user`\\nbye\"")

	expected := "S.String.annotations({ description: \"say \\\"hi\\\" to \\`\\$user\\`\\nbye\" })"
	assert.Equal(t, expected, expr)
}

func TestCompileSchema_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		contains []string
	}{
		{
			name:     "array without items",
			src:      `type: array`,
			contains: []string{"array", "items"},
		},
		{
			name:     "unsupported primitive type",
			src:      `type: file`,
			contains: []string{"file"},
		},
		{
			name:     "empty allOf",
			src:      `allOf: []`,
			contains: []string{"allOf"},
		},
		{
			name:     "empty oneOf",
			src:      `oneOf: []`,
			contains: []string{"oneOf"},
		},
		{
			name:     "empty anyOf",
			src:      `anyOf: []`,
			contains: []string{"anyOf"},
		},
		{
			name:     "empty enum",
			src:      `enum: []`,
			contains: []string{"enum"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(nil).CompileSchema(context.Background(), parseSchema(t, tt.src))
			require.Error(t, err)

			var genErr *GenerationError
			require.ErrorAs(t, err, &genErr)
			for _, fragment := range tt.contains {
				assert.Contains(t, err.Error(), fragment)
			}
		})
	}
}

func TestCompileParameterSchema_StringCoercion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name:     "integer parses from string",
			src:      `type: integer`,
			expected: `S.NumberFromString.pipe(S.int())`,
		},
		{
			name:     "number parses from string",
			src:      `type: number`,
			expected: `S.NumberFromString`,
		},
		{
			name:     "boolean parses from string",
			src:      `type: boolean`,
			expected: `S.BooleanFromString`,
		},
		{
			name:     "string unchanged",
			src:      `type: string`,
			expected: `S.String`,
		},
		{
			name:     "integer constraints chain after coercion",
			src:      "type: integer\nminimum: 1",
			expected: `S.NumberFromString.pipe(S.int(), S.greaterThanOrEqualTo(1))`,
		},
		{
			name:     "enum uses the general rules",
			src:      "type: string\nenum: [asc, desc]",
			expected: `S.Union(S.Literal("asc"), S.Literal("desc"))`,
		},
		{
			name:     "array items use the general rules",
			src:      "type: array\nitems:\n  type: integer",
			expected: `S.Array(S.Int)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			expr, err := New(nil).CompileParameterSchema(context.Background(), parseSchema(t, tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, expr)
		})
	}
}
