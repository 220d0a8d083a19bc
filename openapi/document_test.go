package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/effectgen/effectgen/jsonschema"
)

func TestUnmarshal_ComponentsSchemas_CarriesRawMapping(t *testing.T) {
	t.Parallel()

	doc := unmarshalDocument(t, `
openapi: 3.1.0
info:
  title: Test API
  version: 1.0.0
paths: {}
components:
  schemas:
    User:
      type: object
      properties:
        id:
          type: string
    Role:
      type: string
      enum: [admin, member]
`)

	require.NotNil(t, doc.Components)
	assert.Equal(t, yaml.MappingNode, doc.Components.Schemas.Kind)

	registry, err := doc.Registry()
	require.NoError(t, err)
	require.Equal(t, 2, registry.Len())

	user, ok := registry.Get("User")
	require.True(t, ok)
	assert.IsType(t, &jsonschema.Object{}, user)

	role, ok := registry.Get("Role")
	require.True(t, ok)
	assert.IsType(t, &jsonschema.Enum{}, role)
}

func TestUnmarshal_ParameterSchema_Decoded(t *testing.T) {
	t.Parallel()

	doc := unmarshalDocument(t, `
openapi: 3.1.0
info:
  title: Test API
  version: 1.0.0
paths:
  /items/{itemId}:
    get:
      operationId: getItem
      parameters:
        - name: itemId
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
`)

	item := doc.Paths.GetOrZero("/items/{itemId}")
	require.NotNil(t, item)
	require.NotNil(t, item.Get)
	require.Len(t, item.Get.Parameters, 1)

	schema := item.Get.Parameters[0].Schema
	require.NotNil(t, schema)

	p, ok := schema.Node.(*jsonschema.Primitive)
	require.True(t, ok)
	assert.Equal(t, jsonschema.KindString, p.Kind)
}

func TestDocument_Registry_NoComponents(t *testing.T) {
	t.Parallel()

	doc := unmarshalDocument(t, `
openapi: 3.1.0
info:
  title: Test API
  version: 1.0.0
paths: {}
`)

	registry, err := doc.Registry()
	require.NoError(t, err)
	assert.Equal(t, 0, registry.Len())
}

func TestDocument_Registry_ComponentsWithoutSchemas(t *testing.T) {
	t.Parallel()

	doc := unmarshalDocument(t, `
openapi: 3.1.0
info:
  title: Test API
  version: 1.0.0
paths: {}
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
`)

	registry, err := doc.Registry()
	require.NoError(t, err)
	assert.Equal(t, 0, registry.Len())
}
