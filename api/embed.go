// Package api embeds the OpenAPI document served at /openapi.json.
package api

import _ "embed"

// OpenAPISpec is the YAML source of the HTTP API description.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
