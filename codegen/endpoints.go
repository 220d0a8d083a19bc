package codegen

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/effectgen/effectgen/openapi"
	"github.com/effectgen/effectgen/validation"
)

// Endpoint is one compiled operation: its binding name, the endpoint
// expression, and the path parameter declarations it relies on.
type Endpoint struct {
	Name string
	Expr string

	Params []ParamDecl

	Summary     string
	Description string
	Deprecated  bool
	Security    []openapi.SecurityRequirement
}

// ParamDecl is a shared path parameter declaration, bound at group level so
// endpoints can reference it.
type ParamDecl struct {
	Name string
	Expr string
}

var pathTemplateVar = regexp.MustCompile(`\{([^}]+)\}`)

// tsMethods maps HTTP methods to HttpApiEndpoint constructors.
var tsMethods = map[string]string{
	"get":     "get",
	"put":     "put",
	"post":    "post",
	"delete":  "del",
	"options": "options",
	"head":    "head",
	"patch":   "patch",
	"trace":   "trace",
}

func (g *Generator) endpoint(ctx context.Context, op *openapi.ParsedOperation) (*Endpoint, error) {
	ep := &Endpoint{
		Name:        OperationIdentifier(ctx, op.ID),
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
		Security:    op.Security,
	}

	path := pathTemplateVar.ReplaceAllStringFunc(op.Path, func(match string) string {
		return ":" + CamelCase(ctx, match[1:len(match)-1])
	})

	lines := []string{fmt.Sprintf("HttpApiEndpoint.%s(%q, %q)", tsMethods[op.Method], op.ID, path)}

	if len(op.PathParams) > 0 {
		entries := make([]string, 0, len(op.PathParams))
		for _, param := range op.PathParams {
			decl := ParamDecl{Name: ParamIdentifier(ctx, op.ID, param.Name)}

			expr, err := g.parameterExpr(ctx, param)
			if err != nil {
				return nil, err
			}
			decl.Expr = expr

			ep.Params = append(ep.Params, decl)
			entries = append(entries, CamelCase(ctx, param.Name)+": "+decl.Name)
		}
		lines = append(lines, ".setPath(S.Struct({ "+strings.Join(entries, ", ")+" }))")
	}

	if len(op.QueryParams) > 0 {
		entries, err := g.parameterStruct(ctx, op.QueryParams)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ".setUrlParams(S.Struct({ "+entries+" }))")
	}

	if len(op.HeaderParams) > 0 {
		entries, err := g.parameterStruct(ctx, op.HeaderParams)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ".setHeaders(S.Struct({ "+entries+" }))")
	}

	for _, param := range op.CookieParams {
		validation.AddWarning(ctx, validation.RuleSkippedParameter,
			"cookie parameter %q of operation %q is not representable on an endpoint, skipping", param.Name, op.ID)
	}

	if op.Body != nil {
		expr, err := g.CompileSchema(ctx, op.Body.Schema)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ".setPayload("+expr+")")
	}

	for _, response := range op.Responses {
		expr := "S.Void"
		if response.Schema != nil {
			compiled, err := g.CompileSchema(ctx, response.Schema)
			if err != nil {
				return nil, err
			}
			expr = compiled
		}

		switch {
		case response.Status == 200:
			lines = append(lines, ".addSuccess("+expr+")")
		case response.Status >= 200 && response.Status < 300:
			lines = append(lines, fmt.Sprintf(".addSuccess(%s, { status: %d })", expr, response.Status))
		default:
			lines = append(lines, fmt.Sprintf(".addError(%s, { status: %d })", expr, response.Status))
		}
	}

	ep.Expr = strings.Join(lines, "\n  ")
	return ep, nil
}

// parameterExpr compiles a parameter's schema with the string-coercing rules.
// A parameter without a schema transports as a plain string.
func (g *Generator) parameterExpr(ctx context.Context, param *openapi.Parameter) (string, error) {
	if param.Schema == nil || param.Schema.Node == nil {
		return "S.String", nil
	}
	return g.CompileParameterSchema(ctx, param.Schema.Node)
}

// parameterStruct renders the entries of a query or header struct. Keys keep
// their wire names; optional parameters wrap in S.optional.
func (g *Generator) parameterStruct(ctx context.Context, params []*openapi.Parameter) (string, error) {
	entries := make([]string, 0, len(params))

	for _, param := range params {
		expr, err := g.parameterExpr(ctx, param)
		if err != nil {
			return "", err
		}
		if !param.Required {
			expr = "S.optional(" + expr + ")"
		}
		entries = append(entries, propertyKey(param.Name)+": "+expr)
	}

	return strings.Join(entries, ", "), nil
}
