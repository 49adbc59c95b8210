package extract

import (
	"context"

	"github.com/fieldlens/fieldlens/internal/entity"
)

// Page is one document page's worth of recognized text.
type Page struct {
	Index        int
	Observations []entity.TextObservation
}

// TextRecognizer is the OCR collaborator: document -> per-page observations.
type TextRecognizer interface {
	Recognize(ctx context.Context, documentPath string) ([]Page, error)
}

// FieldClassifier matches recognized text against a schema's field mappings.
// Implementations set Page on each result when they can attribute one;
// -1 leaves attribution to the caller.
type FieldClassifier interface {
	Classify(ctx context.Context, pages []Page, schema *entity.InvoiceSchema) ([]entity.FieldClassificationResult, error)
}

// SpanKind is the type of entity a recognizer span refers to.
type SpanKind string

const (
	SpanOrganization SpanKind = "organization"
	SpanDate         SpanKind = "date"
	SpanOther        SpanKind = "other"
)

// EntitySpan is one named-entity occurrence in a text blob.
type EntitySpan struct {
	Text       string
	Kind       SpanKind
	Confidence float64
}

// EntityRecognizer is the named-entity collaborator used for organization
// and date detection over free text.
type EntityRecognizer interface {
	RecognizeEntities(ctx context.Context, text string) ([]EntitySpan, error)
}
