// Package openapi holds the document model consumed by the compiler: the
// minimal OpenAPI 3.1 shape, its structural validator, and the operation
// extractor that turns path items into compiler-ready operations.
//
// The package receives already-deserialized bytes; it never touches the
// filesystem.
package openapi

import (
	"gopkg.in/yaml.v3"

	"github.com/effectgen/effectgen/errors"
	"github.com/effectgen/effectgen/jsonschema"
	"github.com/effectgen/effectgen/sequencedmap"
)

// ErrDecode is returned when the input bytes are not a decodable YAML or
// JSON document.
const ErrDecode = errors.Error("failed to decode document")

// Document is the decoded OpenAPI document. Collections that influence
// generated output keep document order.
type Document struct {
	OpenAPI    string                                      `yaml:"openapi"`
	Info       Info                                        `yaml:"info"`
	Servers    []Server                                    `yaml:"servers"`
	Paths      *sequencedmap.Map[string, *PathItem]        `yaml:"paths"`
	Components *Components                                 `yaml:"components"`
	Security   []SecurityRequirement                       `yaml:"security"`
	Tags       []Tag                                       `yaml:"tags"`

	// raw is the generic decoded tree used for structural validation.
	raw any
}

type Info struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

type Server struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

type Tag struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Components struct {
	// Schemas stays a raw yaml node; jsonschema.BuildRegistry parses it so
	// registry construction owns the ordering and error reporting. Value
	// typed because the yaml decoder only captures raw nodes into yaml.Node
	// fields, not *yaml.Node ones.
	Schemas         yaml.Node                                     `yaml:"schemas"`
	SecuritySchemes *sequencedmap.Map[string, *SecurityScheme]    `yaml:"securitySchemes"`
}

type PathItem struct {
	Summary     string       `yaml:"summary"`
	Description string       `yaml:"description"`
	Parameters  []*Parameter `yaml:"parameters"`

	Get     *Operation `yaml:"get"`
	Put     *Operation `yaml:"put"`
	Post    *Operation `yaml:"post"`
	Delete  *Operation `yaml:"delete"`
	Options *Operation `yaml:"options"`
	Head    *Operation `yaml:"head"`
	Patch   *Operation `yaml:"patch"`
	Trace   *Operation `yaml:"trace"`
}

// Operation is the raw operation object as it appears in the document.
// Operation extraction turns it into a ParsedOperation.
type Operation struct {
	OperationID string       `yaml:"operationId"`
	Summary     string       `yaml:"summary"`
	Description string       `yaml:"description"`
	Tags        []string     `yaml:"tags"`
	Deprecated  bool         `yaml:"deprecated"`
	Parameters  []*Parameter `yaml:"parameters"`
	RequestBody *RequestBody `yaml:"requestBody"`
	Responses   *sequencedmap.Map[string, *Response] `yaml:"responses"`

	// Security is a pointer so an explicit empty list (disabling the
	// document default) is distinguishable from absence.
	Security *[]SecurityRequirement `yaml:"security"`
}

type Parameter struct {
	Name        string  `yaml:"name"`
	In          string  `yaml:"in"`
	Required    bool    `yaml:"required"`
	Description string  `yaml:"description"`
	Deprecated  bool    `yaml:"deprecated"`
	Schema      *Schema `yaml:"schema"`
}

type RequestBody struct {
	Description string                                 `yaml:"description"`
	Required    bool                                   `yaml:"required"`
	Content     *sequencedmap.Map[string, *MediaType]  `yaml:"content"`
}

type Response struct {
	Description string                                 `yaml:"description"`
	Content     *sequencedmap.Map[string, *MediaType]  `yaml:"content"`
}

type MediaType struct {
	Schema *Schema `yaml:"schema"`
}

// SecurityRequirement maps a security scheme name to its required scopes.
type SecurityRequirement map[string][]string

// Schema wraps a parsed schema node so document decoding and schema parsing
// share one pass over the yaml tree.
type Schema struct {
	Node jsonschema.Node
}

func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := jsonschema.Parse(node)
	if err != nil {
		return err
	}
	s.Node = parsed
	return nil
}

// Unmarshal decodes an OpenAPI document from YAML or JSON bytes. Decoding is
// shape-tolerant; Validate enforces the required structure.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, ErrDecode.Wrap(err)
	}
	doc.raw = raw

	return &doc, nil
}

// Registry builds the named-schema registry from components.schemas.
func (d *Document) Registry() (*jsonschema.Registry, error) {
	if d.Components == nil {
		return jsonschema.NewRegistry(), nil
	}
	return jsonschema.BuildRegistry(&d.Components.Schemas)
}
