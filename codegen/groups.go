package codegen

import (
	"context"
	"slices"

	"github.com/effectgen/effectgen/openapi"
	"github.com/effectgen/effectgen/sequencedmap"
)

// defaultTag collects operations that declare no tags.
const defaultTag = "default"

// Group is a tag's worth of endpoints together with the deduplicated path
// parameter declarations they share.
type Group struct {
	Tag  string
	Name string

	Endpoints []*Endpoint
	Params    []ParamDecl
}

// Groups partitions operations by their first tag, preserving the order tags
// are first encountered in. Path parameter declarations are deduplicated per
// group by their derived variable name.
func (g *Generator) Groups(ctx context.Context, ops []*openapi.ParsedOperation) ([]*Group, error) {
	groups := sequencedmap.New[string, *Group]()

	for _, op := range ops {
		tag := defaultTag
		if len(op.Tags) > 0 {
			tag = op.Tags[0]
		}

		group, ok := groups.Get(tag)
		if !ok {
			group = &Group{Tag: tag, Name: GroupIdentifier(ctx, tag)}
			groups.Set(tag, group)
		}

		ep, err := g.endpoint(ctx, op)
		if err != nil {
			return nil, err
		}
		group.Endpoints = append(group.Endpoints, ep)

		for _, decl := range ep.Params {
			if !slices.ContainsFunc(group.Params, func(existing ParamDecl) bool { return existing.Name == decl.Name }) {
				group.Params = append(group.Params, decl)
			}
		}
	}

	return slices.Collect(groups.Values()), nil
}
