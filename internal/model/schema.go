package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// forestSchema describes the random-forest export: a list of trees in
// array form, one node per entry, leaves marked by feature == -1.
func forestSchema() map[string]any {
	node := map[string]any{
		"type":     "object",
		"required": []string{"feature", "threshold", "left", "right", "value"},
		"properties": map[string]any{
			"feature":   map[string]any{"type": "integer", "minimum": -1},
			"threshold": map[string]any{"type": "number"},
			"left":      map[string]any{"type": "integer", "minimum": -1},
			"right":     map[string]any{"type": "integer", "minimum": -1},
			"value": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "number", "minimum": 0},
			},
		},
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"feature_names", "n_classes", "trees"},
		"properties": map[string]any{
			"feature_names": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string", "minLength": 1},
			},
			"n_classes": map[string]any{"type": "integer", "minimum": 1},
			"classes": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer", "minimum": 0},
			},
			"trees": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []string{"nodes"},
					"properties": map[string]any{
						"nodes": map[string]any{"type": "array", "minItems": 1, "items": node},
					},
				},
			},
		},
	}
}

// encoderSchema describes a fitted label encoder: the class labels in
// encoded order.
func encoderSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"classes"},
		"properties": map[string]any{
			"classes": map[string]any{
				"type":        "array",
				"minItems":    1,
				"uniqueItems": true,
				"items":       map[string]any{"type": "string"},
			},
		},
	}
}

// validateAgainstSchema validates data against schemaMap.
func validateAgainstSchema(name string, schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
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
