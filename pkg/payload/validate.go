// Package payload checks sample messages against a converted JSON Schema.
package payload

import (
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// Validate decodes message as JSON and checks it against schema. Object
// members that are null are treated as absent, matching how optional Avro
// fields are converted.
func Validate(schema *jsonschema.Schema, message []byte) error {
	var value any
	if err := json.Unmarshal(message, &value); err != nil {
		return fmt.Errorf("message is not valid JSON: %w", err)
	}
	return ValidateValue(schema, value)
}

// ValidateValue checks an already decoded JSON value
func ValidateValue(schema *jsonschema.Schema, value any) error {
	if schema == nil {
		return errors.New("schema is required")
	}
	s, err := toOpenAPI(schema)
	if err != nil {
		return err
	}
	if err := s.VisitJSON(pruneNulls(value), openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("message does not match schema: %w", err)
	}
	return nil
}

func toOpenAPI(schema *jsonschema.Schema) (*openapi3.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	var s openapi3.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return &s, nil
}

func pruneNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if val == nil {
				continue
			}
			out[k] = pruneNulls(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = pruneNulls(val)
		}
		return out
	}
	return v
}
