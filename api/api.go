// Package api carries the OpenAPI description of the HTTP surface.
package api

import _ "embed"

// Spec is the raw OpenAPI document served at /openapi.yaml.
//
//go:embed openapi.yaml
var Spec []byte
