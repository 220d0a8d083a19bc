package codegen

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/effectgen/effectgen/jsonschema"
	"github.com/effectgen/effectgen/openapi"
)

// Generator compiles one validated document. All state is built fresh per
// Generate call; nothing persists across runs.
type Generator struct {
	doc     *openapi.Document
	apiName string

	registry *jsonschema.Registry
	resolver *jsonschema.Resolver
}

// Option configures a Generator.
type Option func(*Generator)

// WithAPIName overrides the api value's name, which otherwise comes from
// info.title.
func WithAPIName(name string) Option {
	return func(g *Generator) {
		g.apiName = name
	}
}

// New creates a generator for the given document.
func New(doc *openapi.Document, opts ...Option) *Generator {
	g := &Generator{doc: doc}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SchemaDecl is one named schema declaration in emit order.
type SchemaDecl struct {
	Name       string
	Ident      string
	Expr       string
	Deprecated bool
}

// Generate runs the whole pipeline: validate, build the registry, resolve
// references, compile schema declarations in dependency order, extract and
// compile operations, and render the output file. The first error aborts the
// run; warnings accumulate on the context.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	if err := g.doc.Validate(); err != nil {
		return "", err
	}
	if err := g.doc.ValidateSecurity(); err != nil {
		return "", err
	}

	registry, err := g.doc.Registry()
	if err != nil {
		return "", err
	}
	g.registry = registry

	g.resolver = jsonschema.NewResolver(registry)
	if err := g.resolver.ResolveAll(); err != nil {
		return "", err
	}

	decls, err := g.compileRegistry(ctx)
	if err != nil {
		return "", err
	}

	groups, err := g.Groups(ctx, g.doc.Operations(ctx))
	if err != nil {
		return "", err
	}

	apiName := g.apiName
	if apiName == "" {
		apiName = g.doc.Info.Title
	}

	return render(apiName, decls, groups), nil
}

// compileRegistry compiles every registry entry. Entries within a dependency
// batch have no ordering constraints between them, so each batch compiles
// concurrently; emit order still follows the topological sort, keeping the
// output deterministic.
func (g *Generator) compileRegistry(ctx context.Context) ([]SchemaDecl, error) {
	compiled := make(map[string]string, g.registry.Len())
	var mu sync.Mutex

	for _, batch := range g.registry.SortedBatches() {
		eg, egCtx := errgroup.WithContext(ctx)

		for _, entry := range batch {
			eg.Go(func() error {
				expr, err := g.CompileSchema(egCtx, entry.Schema)
				if err != nil {
					return fmt.Errorf("failed to compile schema %q: %w", entry.Name, err)
				}

				mu.Lock()
				compiled[entry.Name] = expr
				mu.Unlock()
				return nil
			})
		}

		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	sorted := g.registry.Sorted()
	decls := make([]SchemaDecl, 0, len(sorted))
	for _, entry := range sorted {
		decls = append(decls, SchemaDecl{
			Name:       entry.Name,
			Ident:      SchemaIdentifier(ctx, entry.Name),
			Expr:       compiled[entry.Name],
			Deprecated: entry.Schema.GetAnnotations().Deprecated,
		})
	}

	return decls, nil
}
