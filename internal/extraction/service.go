// Package extraction orchestrates OCR, field classification and per-field
// aggregation into one schema-extraction result.
package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/fieldlens/fieldlens/constants"
	"github.com/fieldlens/fieldlens/internal/amount"
	"github.com/fieldlens/fieldlens/internal/common"
	"github.com/fieldlens/fieldlens/internal/dateparse"
	"github.com/fieldlens/fieldlens/internal/entity"
	"github.com/fieldlens/fieldlens/internal/extract"
	"github.com/fieldlens/fieldlens/internal/schema"
)

// pageAttributionTolerance bounds the coordinate comparison used when a
// classifier result carries no page index.
const pageAttributionTolerance = 1e-6

// Service runs one extraction per invocation:
// resolve schema -> OCR -> classify -> aggregate -> record usage.
type Service struct {
	store      *schema.Store
	recognizer extract.TextRecognizer
	classifier extract.FieldClassifier
	amounts    *amount.Extractor
	logger     *slog.Logger
}

func NewService(store *schema.Store, recognizer extract.TextRecognizer, classifier extract.FieldClassifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if classifier == nil {
		classifier = extract.NewRuleClassifier(logger)
	}
	return &Service{
		store:      store,
		recognizer: recognizer,
		classifier: classifier,
		amounts:    amount.NewExtractor(logger),
		logger:     logger,
	}
}

// Request identifies the schema and document for one extraction. Either the
// document carries a schema id, or an explicit schema is supplied.
type Request struct {
	Document *entity.Document
	Schema   *entity.InvoiceSchema
}

// Extract runs the full pipeline for one document. Extractions for different
// documents may run fully in parallel; only the final usage recording is
// serialized by the store.
func (s *Service) Extract(ctx context.Context, req Request) (*entity.SchemaExtractionResult, error) {
	sc, path, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	log := s.logger
	if rid := common.RequestIDFromContext(ctx); rid != "" {
		log = log.With("request_id", rid)
	}
	log.Info("extraction.start",
		"stage", constants.StageOCR, "schema_id", sc.ID, "document", path)

	pages, err := s.recognizer.Recognize(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrOCRFailed, err)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	log.Debug("extraction.classify", "stage", constants.StageClassify, "pages", len(pages))
	results, err := s.classifier.Classify(ctx, pages, sc)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if len(results) == 0 {
		log.Warn("extraction.empty", "stage", constants.StageFailed, "schema_id", sc.ID)
		return nil, common.ErrNoFieldsExtracted
	}

	result := s.aggregate(sc, pages, results)

	stage := constants.StageSuccess
	if len(result.Warnings) > 0 {
		stage = constants.StageWarning
	}
	log.Info("extraction.done",
		"stage", stage,
		"schema_id", sc.ID,
		"fields", len(result.Fields),
		"overall_confidence", result.OverallConfidence,
		"warnings", len(result.Warnings),
	)

	if err := s.store.RecordUsage(sc.ID, result.OverallConfidence); err != nil {
		return nil, fmt.Errorf("record usage: %w", err)
	}
	return result, nil
}

// resolve picks the schema and document path for the request.
func (s *Service) resolve(req Request) (*entity.InvoiceSchema, string, error) {
	if req.Document == nil || req.Document.Path == "" {
		return nil, "", common.ErrNoDocumentPath
	}
	if req.Schema != nil {
		return req.Schema, req.Document.Path, nil
	}
	if req.Document.SchemaID == nil {
		return nil, "", common.ErrNoSchemaAssigned
	}
	sc, err := s.store.Schema(*req.Document.SchemaID)
	if err != nil {
		return nil, "", err
	}
	return sc, req.Document.Path, nil
}

// aggregate keeps the maximum-confidence candidate per field type, resolves
// page attribution, normalizes values and collects missing-field warnings.
func (s *Service) aggregate(sc *entity.InvoiceSchema, pages []extract.Page, results []entity.FieldClassificationResult) *entity.SchemaExtractionResult {
	best := make(map[constants.FieldType]entity.FieldClassificationResult)
	for _, r := range results {
		if prev, ok := best[r.FieldType]; !ok || r.Confidence > prev.Confidence {
			best[r.FieldType] = r
		}
	}

	out := &entity.SchemaExtractionResult{
		SchemaID:   sc.ID,
		SchemaName: sc.Name,
	}

	var sum float64
	for _, ft := range constants.AllFieldTypes() {
		r, ok := best[ft]
		if !ok {
			continue
		}
		page := r.Page
		if page < 0 {
			page = attributePage(pages, r.BoundingBox)
		}
		out.Fields = append(out.Fields, entity.ExtractedFieldValue{
			FieldType:  ft,
			Value:      s.normalize(ft, r.Text),
			Confidence: r.Confidence,
			PageIndex:  page,
		})
		sum += r.Confidence
	}
	if len(out.Fields) > 0 {
		out.OverallConfidence = sum / float64(len(out.Fields))
	}

	for _, ft := range constants.RequiredFieldTypes() {
		if _, ok := best[ft]; !ok {
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("Required field '%s' not found.", ft.DisplayName()))
		}
	}
	return out
}

// attributePage is the legacy fallback: walk the flattened observations in
// cumulative page order and match bounding boxes. Misattributes when two
// pages hold observations at identical normalized coordinates, which is why
// classifiers are expected to set Page directly.
func attributePage(pages []extract.Page, box entity.NormalizedRegion) int {
	for _, page := range pages {
		for _, obs := range page.Observations {
			if obs.BoundingBox.ApproxEqual(box, pageAttributionTolerance) {
				return page.Index
			}
		}
	}
	return 0
}

// normalize maps a raw candidate to the canonical value string per field
// kind: decimals for amounts, ISO dates, upper-case ISO 4217 for currency.
func (s *Service) normalize(ft constants.FieldType, raw string) string {
	trimmed := strings.TrimSpace(raw)
	switch ft {
	case constants.FieldSubtotal, constants.FieldTax, constants.FieldTotal,
		constants.FieldLineItemUnitPrice, constants.FieldLineItemTotal:
		if v, ok := normalizeAmount(s.amounts, trimmed); ok {
			return v
		}
	case constants.FieldInvoiceDate, constants.FieldDueDate:
		if d, ok := dateparse.Parse(trimmed); ok {
			return d.Format("2006-01-02")
		}
	case constants.FieldCurrency:
		if code, ok := currencyCode(trimmed); ok {
			return code
		}
	}
	return trimmed
}

func normalizeAmount(x *amount.Extractor, raw string) (string, bool) {
	// candidates may arrive with or without a currency tag
	if extracted := x.Extract(raw); len(extracted) > 0 {
		return formatAmount(extracted[0].Value), true
	}
	if v, ok := amount.ParseValue(raw); ok {
		return formatAmount(v), true
	}
	return "", false
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
}

func currencyCode(raw string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if code, ok := currencySymbols[upper]; ok {
		return code, true
	}
	switch upper {
	case "USD", "EUR", "GBP", "CHF":
		return upper, true
	}
	return "", false
}
