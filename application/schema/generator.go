// Package schema generates the JSON schemas published in module manifests
// for typed handlers.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go value using
// invopop/jsonschema. Struct definitions are expanded inline. A nil value has
// no schema.
func GenerateSchema(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(v)

	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
