package entity

import (
	"github.com/google/uuid"

	"github.com/fieldlens/fieldlens/constants"
)

// TextObservation is one recognized text fragment from the OCR collaborator.
type TextObservation struct {
	Text        string           `json:"text"`
	Confidence  float64          `json:"confidence"`
	BoundingBox NormalizedRegion `json:"bounding_box"`
}

// FieldClassificationResult is one candidate match produced by a field
// classifier. Page is the zero-based page index the observation came from;
// classifiers that cannot attribute a page set it to -1 and the extraction
// service falls back to coordinate matching.
type FieldClassificationResult struct {
	FieldType   constants.FieldType `json:"field_type"`
	Text        string              `json:"text"`
	Confidence  float64             `json:"confidence"`
	BoundingBox NormalizedRegion    `json:"bounding_box"`
	Page        int                 `json:"page"`
}

// ExtractedFieldValue is the winning, normalized candidate for one field type.
type ExtractedFieldValue struct {
	FieldType  constants.FieldType `json:"field_type"`
	Value      string              `json:"value"`
	Confidence float64             `json:"confidence"`
	PageIndex  int                 `json:"page_index"`
}

// SchemaExtractionResult is the outcome of running one schema over one
// document: at most one value per field type plus missing-field warnings.
type SchemaExtractionResult struct {
	SchemaID          uuid.UUID             `json:"schema_id"`
	SchemaName        string                `json:"schema_name"`
	Fields            []ExtractedFieldValue `json:"fields"`
	OverallConfidence float64               `json:"overall_confidence"`
	Warnings          []string              `json:"warnings,omitempty"`
}

// Field returns the extracted value for the given field type, if present.
func (r *SchemaExtractionResult) Field(ft constants.FieldType) (ExtractedFieldValue, bool) {
	for _, f := range r.Fields {
		if f.FieldType == ft {
			return f, true
		}
	}
	return ExtractedFieldValue{}, false
}
