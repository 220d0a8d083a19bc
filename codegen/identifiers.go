package codegen

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/effectgen/effectgen/validation"
)

var (
	segmentSplit = regexp.MustCompile(`[^A-Za-z0-9]+`)
	identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// titleCaser builds a fresh caser per call site. cases.Caser carries
// transform state and is not safe for concurrent use, and schema
// compilation runs batches in parallel. NoLower keeps interior capitals
// intact so "userID" titles to "UserID", not "Userid".
func titleCaser() cases.Caser {
	return cases.Title(language.English, cases.NoLower)
}

// PascalCase sanitizes name into a PascalCase identifier, warning when the
// result differs from the input.
func PascalCase(ctx context.Context, name string) string {
	segments := splitSegments(name)
	caser := titleCaser()

	var b strings.Builder
	for _, segment := range segments {
		b.WriteString(caser.String(segment))
	}

	return finishIdentifier(ctx, name, b.String())
}

// CamelCase sanitizes name into a camelCase identifier, warning when the
// result differs from the input.
func CamelCase(ctx context.Context, name string) string {
	segments := splitSegments(name)
	caser := titleCaser()

	var b strings.Builder
	for i, segment := range segments {
		if i == 0 {
			b.WriteString(lowerFirst(segment))
			continue
		}
		b.WriteString(caser.String(segment))
	}

	return finishIdentifier(ctx, name, b.String())
}

// SchemaIdentifier is the binding name of a compiled named schema.
func SchemaIdentifier(ctx context.Context, name string) string {
	return PascalCase(ctx, name) + "Schema"
}

// OperationIdentifier is the binding name of an endpoint. Operation ids bind
// verbatim; only an id that is not a valid identifier is sanitized.
func OperationIdentifier(ctx context.Context, id string) string {
	return keepOrCamel(ctx, id)
}

func keepOrCamel(ctx context.Context, name string) string {
	if identPattern.MatchString(name) {
		return name
	}
	return CamelCase(ctx, name)
}

// GroupIdentifier is the binding name of a tag group.
func GroupIdentifier(ctx context.Context, tag string) string {
	return CamelCase(ctx, tag) + "Group"
}

// ParamIdentifier is the binding name of a path parameter declaration. The
// operation id is embedded so declarations cannot collide across endpoints in
// the same group; both parts bind verbatim when already valid.
func ParamIdentifier(ctx context.Context, operationID, param string) string {
	return keepOrCamel(ctx, operationID) + "_" + keepOrCamel(ctx, param) + "Param"
}

// propertyKey renders a TypeScript object key, quoting names that are not
// valid bare identifiers (header names, for instance).
func propertyKey(name string) string {
	if identPattern.MatchString(name) {
		return name
	}
	return quoteString(name)
}

func splitSegments(name string) []string {
	var segments []string
	for _, segment := range segmentSplit.Split(name, -1) {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

func finishIdentifier(ctx context.Context, original, sanitized string) string {
	if sanitized == "" {
		sanitized = "_"
	} else if unicode.IsDigit(rune(sanitized[0])) {
		sanitized = "_" + sanitized
	}

	if sanitized != original {
		validation.AddWarning(ctx, validation.RuleSanitizedIdentifier,
			"identifier %q sanitized to %q", original, sanitized)
	}

	return sanitized
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
