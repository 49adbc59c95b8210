package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldlens/fieldlens/constants"
)

// FieldCorrection is an immutable log record of one user edit to an
// extracted value. Created once, never mutated; evicted oldest-first once
// the rolling log exceeds its cap.
type FieldCorrection struct {
	ID                     uuid.UUID           `json:"id"`
	SchemaID               *uuid.UUID          `json:"schema_id,omitempty"`
	FieldType              constants.FieldType `json:"field_type"`
	OriginalValue          string              `json:"original_value"`
	CorrectedValue         string              `json:"corrected_value"`
	BoundingBox            *NormalizedRegion   `json:"bounding_box,omitempty"`
	OriginalConfidence     float64             `json:"original_confidence"`
	WasCompleteReplacement bool                `json:"was_complete_replacement"`
	Timestamp              time.Time           `json:"timestamp"`
	DocumentID             *string             `json:"document_id,omitempty"`
}

// FieldCorrectionStats is derived per field type on demand, never stored.
type FieldCorrectionStats struct {
	FieldType                     constants.FieldType `json:"field_type"`
	TotalExtractions              int                 `json:"total_extractions"`
	CorrectionsCount              int                 `json:"corrections_count"`
	MinorCorrectionsCount         int                 `json:"minor_corrections_count"`
	AverageOriginalConfidence     float64             `json:"average_original_confidence"`
	AccuracyRate                  float64             `json:"accuracy_rate"`
	SuggestedConfidenceAdjustment float64             `json:"suggested_confidence_adjustment"`
}
