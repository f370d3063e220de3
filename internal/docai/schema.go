package docai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ResponseSchema returns a JSON-Schema (draft 2020-12 subset) describing the
// shape of a process response, as a generic map. It is deliberately loose about
// entity payloads: unknown entity types and extra keys are expected, only the
// structural skeleton is enforced.
func ResponseSchema() map[string]any {
	entity := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":        map[string]any{"type": "string"},
			"mentionText": map[string]any{"type": "string"},
			"normalizedValue": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{"type": "string"},
					"dateValue": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"year":  map[string]any{"type": "integer"},
							"month": map[string]any{"type": "integer"},
							"day":   map[string]any{"type": "integer"},
						},
					},
					"moneyValue": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"currencyCode": map[string]any{"type": "string"},
							"units":        map[string]any{"type": "string"},
							"nanos":        map[string]any{"type": "integer"},
						},
					},
				},
			},
			"properties": map[string]any{
				"type":  "array",
				"items": map[string]any{"$ref": "#/$defs/entity"},
			},
		},
	}

	return map[string]any{
		"$defs": map[string]any{"entity": entity},
		"type":  "object",
		"properties": map[string]any{
			"document": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{"type": "string"},
					"entities": map[string]any{
						"type":  "array",
						"items": map[string]any{"$ref": "#/$defs/entity"},
					},
				},
			},
		},
	}
}

// ValidateResponseShape validates raw response bytes against ResponseSchema.
func ValidateResponseShape(data []byte) error {
	return validateAgainstSchema(ResponseSchema(), data)
}

// validateAgainstSchema validates data against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
