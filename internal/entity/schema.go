package entity

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/fieldlens/fieldlens/constants"
)

// FieldMapping is one extraction rule within a schema: how to locate and
// score a single field type on a page.
type FieldMapping struct {
	FieldType         constants.FieldType `json:"field_type"`
	Pattern           string              `json:"pattern,omitempty"`
	LabelHint         string              `json:"label_hint,omitempty"`
	Region            *NormalizedRegion   `json:"region,omitempty"`
	Confidence        float64             `json:"confidence"`
	ConfirmationCount int                 `json:"confirmation_count"`
	CorrectionCount   int                 `json:"correction_count"`
}

// EffectiveConfidence blends the base confidence with the confirm/correct
// history using a Laplace-smoothed ratio, clamped to [0, 1].
func (m FieldMapping) EffectiveConfidence() float64 {
	c := m.Confidence * float64(1+m.ConfirmationCount) /
		float64(1+m.ConfirmationCount+m.CorrectionCount)
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// InvoiceSchema is a named, versioned set of field mappings, optionally tied
// to a vendor identifier for auto-selection.
type InvoiceSchema struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"`
	VendorIdentifier  string         `json:"vendor_identifier,omitempty"`
	Description       string         `json:"description,omitempty"`
	FieldMappings     []FieldMapping `json:"field_mappings"`
	Version           int            `json:"version"`
	IsBuiltIn         bool           `json:"is_built_in"`
	UsageCount        int64          `json:"usage_count"`
	AverageConfidence float64        `json:"average_confidence"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// MappingFor returns the mapping for the given field type, if present.
func (s *InvoiceSchema) MappingFor(ft constants.FieldType) (FieldMapping, bool) {
	for _, m := range s.FieldMappings {
		if m.FieldType == ft {
			return m, true
		}
	}
	return FieldMapping{}, false
}

// Validate checks the schema's structural invariants: a non-empty name,
// at most one mapping per field type, known field types, confidences in
// [0,1] and compilable patterns.
func (s *InvoiceSchema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema name is empty")
	}
	seen := make(map[constants.FieldType]struct{}, len(s.FieldMappings))
	for _, m := range s.FieldMappings {
		if !m.FieldType.Valid() {
			return fmt.Errorf("unknown field type %q", m.FieldType)
		}
		if _, dup := seen[m.FieldType]; dup {
			return fmt.Errorf("duplicate mapping for field type %q", m.FieldType)
		}
		seen[m.FieldType] = struct{}{}
		if m.Confidence < 0 || m.Confidence > 1 {
			return fmt.Errorf("mapping %q: confidence %v out of [0,1]", m.FieldType, m.Confidence)
		}
		if m.Pattern != "" {
			if _, err := regexp.Compile(m.Pattern); err != nil {
				return fmt.Errorf("mapping %q: invalid pattern: %w", m.FieldType, err)
			}
		}
	}
	return nil
}

// Clone returns a deep copy. The store hands out clones so callers can never
// mutate its serialized state.
func (s *InvoiceSchema) Clone() *InvoiceSchema {
	dup := *s
	dup.FieldMappings = make([]FieldMapping, len(s.FieldMappings))
	for i, m := range s.FieldMappings {
		cm := m
		if m.Region != nil {
			region := *m.Region
			cm.Region = &region
		}
		dup.FieldMappings[i] = cm
	}
	return &dup
}
