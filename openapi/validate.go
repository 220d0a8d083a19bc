package openapi

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	_ "embed"

	"github.com/goccy/go-json"
	jsValidator "github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed document.schema.json
var documentSchemaJSON string

// DocumentValidationError reports a document that does not have the minimal
// required shape, or that declares duplicate operation identifiers.
type DocumentValidationError struct {
	Message string
}

func (e *DocumentValidationError) Error() string {
	return "invalid document: " + e.Message
}

var (
	docValidatorOnce sync.Once
	docValidator     *jsValidator.Schema
)

func documentValidator() *jsValidator.Schema {
	docValidatorOnce.Do(func() {
		schema, err := jsValidator.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
		if err != nil {
			panic(err)
		}

		c := jsValidator.NewCompiler()
		if err := c.AddResource("document.schema.json", schema); err != nil {
			panic(err)
		}
		docValidator = c.MustCompile("document.schema.json")
	})

	return docValidator
}

// Validate confirms the document has the minimal required shape: a 3.1
// version, info.title, info.version, a paths object (possibly empty), and a
// unique operationId on every operation.
func (d *Document) Validate() error {
	// The structural pre-check runs over the generic decoded tree, so it only
	// applies to documents that came through Unmarshal.
	if d.raw != nil {
		buf, err := json.Marshal(d.raw)
		if err != nil {
			return &DocumentValidationError{Message: fmt.Sprintf("document is not JSON-compatible: %s", err)}
		}

		instance, err := jsValidator.UnmarshalJSON(bytes.NewReader(buf))
		if err != nil {
			return &DocumentValidationError{Message: fmt.Sprintf("document is not JSON-compatible: %s", err)}
		}

		if err := documentValidator().Validate(instance); err != nil {
			return &DocumentValidationError{Message: err.Error()}
		}
	}

	if !strings.HasPrefix(d.OpenAPI, "3.1") {
		return &DocumentValidationError{Message: fmt.Sprintf("unsupported openapi version %q: only 3.1.x documents are supported", d.OpenAPI)}
	}

	// Programmatically built documents bypass the structural pre-check, so
	// the paths requirement needs an explicit guard.
	if d.Paths == nil {
		return &DocumentValidationError{Message: "document must declare a paths object (it may be empty)"}
	}

	seen := make(map[string]string)
	for path, item := range d.Paths.All() {
		if item == nil {
			continue
		}
		for _, mo := range item.operations() {
			location := strings.ToUpper(mo.method) + " " + path

			if mo.op.OperationID == "" {
				return &DocumentValidationError{Message: fmt.Sprintf("operation %s is missing an operationId", location)}
			}

			if prev, ok := seen[mo.op.OperationID]; ok {
				return &DocumentValidationError{Message: fmt.Sprintf("duplicate operationId %q declared by %s and %s", mo.op.OperationID, prev, location)}
			}
			seen[mo.op.OperationID] = location
		}
	}

	return nil
}

type methodOperation struct {
	method string
	op     *Operation
}

// operations returns the path item's operations in the canonical method
// order, keeping extraction deterministic.
func (p *PathItem) operations() []methodOperation {
	candidates := []methodOperation{
		{"get", p.Get},
		{"put", p.Put},
		{"post", p.Post},
		{"delete", p.Delete},
		{"options", p.Options},
		{"head", p.Head},
		{"patch", p.Patch},
		{"trace", p.Trace},
	}

	ops := make([]methodOperation, 0, len(candidates))
	for _, c := range candidates {
		if c.op != nil {
			ops = append(ops, c)
		}
	}

	return ops
}
