package openapi

import (
	"context"
	"strconv"
	"strings"

	"github.com/effectgen/effectgen/jsonschema"
	"github.com/effectgen/effectgen/sequencedmap"
	"github.com/effectgen/effectgen/validation"
)

const jsonContentType = "application/json"

// ParsedOperation is one path × method combination, with parameters
// partitioned by transport location and bodies/responses reduced to their
// JSON schemas.
type ParsedOperation struct {
	ID     string
	Method string
	Path   string

	PathParams   []*Parameter
	QueryParams  []*Parameter
	HeaderParams []*Parameter
	CookieParams []*Parameter

	Body      *Body
	Responses []StatusResponse

	Tags        []string
	Summary     string
	Description string
	Deprecated  bool

	Security []SecurityRequirement
}

// Body is a request body reduced to its JSON schema.
type Body struct {
	Schema   jsonschema.Node
	Required bool
}

// StatusResponse pairs a numeric status code with its JSON schema. Schema is
// nil for responses that declare no content.
type StatusResponse struct {
	Status int
	Schema jsonschema.Node
}

// Operations extracts every operation in the document, walking paths in
// declaration order and methods in canonical order. Non-fatal anomalies
// (non-JSON content, wildcard status codes, unknown parameter locations) are
// reported as warnings on the context and skipped.
func (d *Document) Operations(ctx context.Context) []*ParsedOperation {
	var out []*ParsedOperation

	for path, item := range d.Paths.All() {
		if item == nil {
			continue
		}
		for _, mo := range item.operations() {
			out = append(out, d.parseOperation(ctx, path, item, mo.method, mo.op))
		}
	}

	return out
}

func (d *Document) parseOperation(ctx context.Context, path string, item *PathItem, method string, op *Operation) *ParsedOperation {
	parsed := &ParsedOperation{
		ID:          op.OperationID,
		Method:      method,
		Path:        path,
		Tags:        op.Tags,
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
	}

	for _, param := range mergeParameters(item.Parameters, op.Parameters) {
		switch param.In {
		case "path":
			parsed.PathParams = append(parsed.PathParams, param)
		case "query":
			parsed.QueryParams = append(parsed.QueryParams, param)
		case "header":
			parsed.HeaderParams = append(parsed.HeaderParams, param)
		case "cookie":
			parsed.CookieParams = append(parsed.CookieParams, param)
		default:
			validation.AddWarning(ctx, validation.RuleSkippedParameter,
				"parameter %q of operation %q has unknown location %q, skipping", param.Name, parsed.ID, param.In)
		}
	}

	if op.RequestBody != nil {
		if mt := jsonContent(ctx, op.RequestBody.Content, "request body of operation "+parsed.ID); mt != nil && mt.Schema != nil {
			parsed.Body = &Body{Schema: mt.Schema.Node, Required: op.RequestBody.Required}
		}
	}

	for code, response := range op.Responses.All() {
		if response == nil {
			continue
		}

		status, err := strconv.Atoi(code)
		if err != nil {
			validation.AddWarning(ctx, validation.RuleSkippedStatusCode,
				"response %q of operation %q is not a numeric status code, skipping", code, parsed.ID)
			continue
		}

		if response.Content.Len() == 0 {
			parsed.Responses = append(parsed.Responses, StatusResponse{Status: status})
			continue
		}

		mt := jsonContent(ctx, response.Content, "response "+code+" of operation "+parsed.ID)
		if mt == nil {
			continue
		}

		sr := StatusResponse{Status: status}
		if mt.Schema != nil {
			sr.Schema = mt.Schema.Node
		}
		parsed.Responses = append(parsed.Responses, sr)
	}

	// Operation-level security replaces the document default outright; the
	// two are never merged.
	parsed.Security = d.Security
	if op.Security != nil {
		parsed.Security = *op.Security
	}

	return parsed
}

// mergeParameters layers operation-level parameters over path-item-level
// ones. An operation parameter overrides an inherited one sharing its
// (name, location) pair.
func mergeParameters(inherited, own []*Parameter) []*Parameter {
	merged := make([]*Parameter, len(inherited))
	copy(merged, inherited)

	for _, param := range own {
		replaced := false
		for i, existing := range merged {
			if existing.Name == param.Name && existing.In == param.In {
				merged[i] = param
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, param)
		}
	}

	return merged
}

// jsonContent returns the application/json media type entry of a content
// map, or nil when none is declared. Every other content entry is warned
// about and ignored.
func jsonContent(ctx context.Context, content *sequencedmap.Map[string, *MediaType], where string) *MediaType {
	var found *MediaType

	for mediaType, mt := range content.All() {
		if mediaType == jsonContentType || strings.HasPrefix(mediaType, jsonContentType+";") {
			if found == nil {
				found = mt
			}
			continue
		}

		validation.AddWarning(ctx, validation.RuleSkippedContentType,
			"%s declares unsupported content type %q, skipping", where, mediaType)
	}

	return found
}
