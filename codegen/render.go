package codegen

import (
	"fmt"
	"sort"
	"strings"
)

const fileHeader = `// Code generated by effectgen. DO NOT EDIT.
/* eslint-disable */

import { HttpApi, HttpApiEndpoint, HttpApiGroup } from "@effect/platform"
import * as S from "effect/Schema"
`

// render assembles the output file: schema declarations in dependency order,
// then per-group parameter declarations, endpoints and the group value, and
// finally the api value.
func render(apiName string, decls []SchemaDecl, groups []*Group) string {
	var b strings.Builder
	b.WriteString(fileHeader)

	for _, decl := range decls {
		b.WriteString("\n")
		if decl.Deprecated {
			b.WriteString("/** @deprecated */\n")
		}
		fmt.Fprintf(&b, "export const %s = %s\n", decl.Ident, decl.Expr)
	}

	for _, group := range groups {
		for _, param := range group.Params {
			fmt.Fprintf(&b, "\nexport const %s = %s\n", param.Name, param.Expr)
		}

		for _, ep := range group.Endpoints {
			b.WriteString("\n")
			writeEndpointComment(&b, ep)
			fmt.Fprintf(&b, "export const %s = %s\n", ep.Name, ep.Expr)
		}

		lines := []string{fmt.Sprintf("HttpApiGroup.make(%q)", group.Tag)}
		for _, ep := range group.Endpoints {
			lines = append(lines, ".add("+ep.Name+")")
		}
		fmt.Fprintf(&b, "\nexport const %s = %s\n", group.Name, strings.Join(lines, "\n  "))
	}

	lines := []string{fmt.Sprintf("HttpApi.make(%q)", apiName)}
	for _, group := range groups {
		lines = append(lines, ".add("+group.Name+")")
	}
	fmt.Fprintf(&b, "\nexport const api = %s\n", strings.Join(lines, "\n  "))

	return b.String()
}

func writeEndpointComment(b *strings.Builder, ep *Endpoint) {
	var lines []string

	if ep.Summary != "" {
		lines = append(lines, ep.Summary)
	} else if ep.Description != "" {
		lines = append(lines, ep.Description)
	}

	for _, req := range ep.Security {
		names := make([]string, 0, len(req))
		for name := range req {
			names = append(names, name)
		}
		sort.Strings(names)
		lines = append(lines, "security: "+strings.Join(names, ", "))
	}

	if ep.Deprecated {
		lines = append(lines, "@deprecated")
	}

	if len(lines) == 0 {
		return
	}

	if len(lines) == 1 {
		fmt.Fprintf(b, "/** %s */\n", lines[0])
		return
	}

	b.WriteString("/**\n")
	for _, line := range lines {
		fmt.Fprintf(b, " * %s\n", line)
	}
	b.WriteString(" */\n")
}
