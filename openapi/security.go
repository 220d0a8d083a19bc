package openapi

import (
	"fmt"
	"strings"
)

// SecurityScheme is a components.securitySchemes entry.
type SecurityScheme struct {
	Type             string `yaml:"type"`
	Description      string `yaml:"description"`
	Scheme           string `yaml:"scheme"`
	BearerFormat     string `yaml:"bearerFormat"`
	Name             string `yaml:"name"`
	In               string `yaml:"in"`
	OpenIDConnectURL string `yaml:"openIdConnectUrl"`
}

// SecurityParseError reports a malformed security scheme definition or a
// requirement naming an undeclared scheme.
type SecurityParseError struct {
	Scheme  string
	Message string
}

func (e *SecurityParseError) Error() string {
	return fmt.Sprintf("invalid security scheme %q: %s", e.Scheme, e.Message)
}

// ValidateSecurity checks every declared security scheme and every security
// requirement, document-level and operation-level alike.
func (d *Document) ValidateSecurity() error {
	schemes := map[string]bool{}

	if d.Components != nil {
		for name, scheme := range d.Components.SecuritySchemes.All() {
			if err := validateScheme(name, scheme); err != nil {
				return err
			}
			schemes[name] = true
		}
	}

	if err := validateRequirements(d.Security, schemes, "document"); err != nil {
		return err
	}

	for path, item := range d.Paths.All() {
		if item == nil {
			continue
		}
		for _, mo := range item.operations() {
			if mo.op.Security == nil {
				continue
			}
			where := strings.ToUpper(mo.method) + " " + path
			if err := validateRequirements(*mo.op.Security, schemes, where); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateScheme(name string, scheme *SecurityScheme) error {
	if scheme == nil {
		return &SecurityParseError{Scheme: name, Message: "scheme definition is empty"}
	}

	switch scheme.Type {
	case "apiKey":
		if scheme.Name == "" {
			return &SecurityParseError{Scheme: name, Message: "apiKey scheme requires a name"}
		}
		switch scheme.In {
		case "query", "header", "cookie":
		default:
			return &SecurityParseError{Scheme: name, Message: fmt.Sprintf("apiKey scheme has invalid location %q", scheme.In)}
		}
	case "http":
		if scheme.Scheme == "" {
			return &SecurityParseError{Scheme: name, Message: "http scheme requires a scheme keyword"}
		}
	case "oauth2", "mutualTLS":
	case "openIdConnect":
		if scheme.OpenIDConnectURL == "" {
			return &SecurityParseError{Scheme: name, Message: "openIdConnect scheme requires openIdConnectUrl"}
		}
	case "":
		return &SecurityParseError{Scheme: name, Message: "scheme is missing a type"}
	default:
		return &SecurityParseError{Scheme: name, Message: fmt.Sprintf("unknown scheme type %q", scheme.Type)}
	}

	return nil
}

func validateRequirements(reqs []SecurityRequirement, schemes map[string]bool, where string) error {
	for _, req := range reqs {
		for name := range req {
			if !schemes[name] {
				return &SecurityParseError{Scheme: name, Message: fmt.Sprintf("security requirement on %s references an undeclared scheme", where)}
			}
		}
	}
	return nil
}
