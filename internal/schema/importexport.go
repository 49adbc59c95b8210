package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fieldlens/fieldlens/constants"
	"github.com/fieldlens/fieldlens/internal/common"
	"github.com/fieldlens/fieldlens/internal/entity"
)

// ExportSchema returns one schema as a standalone pretty-printed JSON
// document, the same shape the user-schema file uses.
func (s *Store) ExportSchema(id uuid.UUID) ([]byte, error) {
	sc, err := s.Schema(id)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", common.ErrSaveFailed, err)
	}
	return data, nil
}

// ImportSchema validates and registers a schema document. Imports always
// become user schemas: the built-in flag is stripped and a fresh id assigned.
func (s *Store) ImportSchema(data []byte) (*entity.InvoiceSchema, error) {
	if err := validateSchemaJSON(data); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSchema, err)
	}

	var sc entity.InvoiceSchema
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", common.ErrInvalidSchema, err)
	}
	sc.IsBuiltIn = false
	return s.CreateSchema(&sc)
}

// buildSchemaJSONSchema returns the JSON-Schema (draft 2020-12 subset) an
// imported schema document must satisfy, as a generic map.
func buildSchemaJSONSchema() map[string]any {
	fieldTypes := make([]any, 0, len(constants.AllFieldTypes()))
	for _, ft := range constants.AllFieldTypes() {
		fieldTypes = append(fieldTypes, string(ft))
	}

	regionProps := map[string]any{
		"x":      map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"y":      map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"width":  map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"height": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}
	mappingProps := map[string]any{
		"field_type":         map[string]any{"type": "string", "enum": fieldTypes},
		"pattern":            map[string]any{"type": "string"},
		"label_hint":         map[string]any{"type": "string"},
		"region":             map[string]any{"type": "object", "properties": regionProps},
		"confidence":         map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"confirmation_count": map[string]any{"type": "integer", "minimum": 0},
		"correction_count":   map[string]any{"type": "integer", "minimum": 0},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":                map[string]any{"type": "string"},
			"name":              map[string]any{"type": "string", "minLength": 1},
			"vendor_identifier": map[string]any{"type": "string"},
			"description":       map[string]any{"type": "string"},
			"field_mappings": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": mappingProps,
					"required":   []any{"field_type", "confidence"},
				},
			},
			"version":            map[string]any{"type": "integer", "minimum": 0},
			"is_built_in":        map[string]any{"type": "boolean"},
			"usage_count":        map[string]any{"type": "integer", "minimum": 0},
			"average_confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"created_at":         map[string]any{"type": "string"},
			"updated_at":         map[string]any{"type": "string"},
		},
		"required": []any{"name", "field_mappings"},
	}
}

// validateSchemaJSON checks an incoming document against the import schema.
func validateSchemaJSON(data []byte) error {
	b, err := json.Marshal(buildSchemaJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
