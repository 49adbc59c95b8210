package extract

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fieldlens/fieldlens/internal/amount"
	"github.com/fieldlens/fieldlens/internal/common"
	"github.com/fieldlens/fieldlens/internal/dateparse"
)

// Confidence bases: each extracted candidate adds 0.3 on top.
const (
	orgConfidenceBase    = 0.4
	dateConfidenceBase   = 0.5
	amountConfidenceBase = 0.5
	perCandidateBoost    = 0.3
)

// Date window relative to now within which detected dates are plausible.
const (
	dateWindowPastYears   = 5
	dateWindowFutureYears = 10
)

// EntityExtractionResult aggregates the candidates found in one text blob.
type EntityExtractionResult struct {
	Organizations       []string
	PrimaryOrganization string
	OrgConfidence       float64

	Dates          []time.Time
	PrimaryDate    *time.Time
	DateConfidence float64

	Amounts          []amount.Amount
	PrimaryAmount    *amount.Amount
	AmountConfidence float64
}

// EntityExtractor runs organization, date and amount extraction concurrently
// over one text blob and ranks the primary candidate per category.
type EntityExtractor struct {
	recognizer EntityRecognizer
	amounts    *amount.Extractor
	logger     *slog.Logger
	now        func() time.Time
}

func NewEntityExtractor(recognizer EntityRecognizer, amounts *amount.Extractor, logger *slog.Logger) *EntityExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if recognizer == nil {
		recognizer = NewHeuristicRecognizer()
	}
	if amounts == nil {
		amounts = amount.NewExtractor(logger)
	}
	return &EntityExtractor{
		recognizer: recognizer,
		amounts:    amounts,
		logger:     logger,
		now:        time.Now,
	}
}

// Extract runs the three extraction categories in parallel. The categories
// share no mutable state, so only the final assembly is synchronized.
func (x *EntityExtractor) Extract(ctx context.Context, text string) (*EntityExtractionResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.ErrEmptyText
	}

	var (
		wg      sync.WaitGroup
		spans   []EntitySpan
		nerErr  error
		amounts []amount.Amount
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		spans, nerErr = x.recognizer.RecognizeEntities(ctx, text)
	}()
	go func() {
		defer wg.Done()
		amounts = x.amounts.Extract(text)
	}()
	wg.Wait()

	if nerErr != nil {
		x.logger.Warn("entities.recognizer_failed", "error", nerErr)
		spans = nil
	}

	result := &EntityExtractionResult{Amounts: amounts}
	result.Organizations = collectOrganizations(spans)
	result.Dates = x.collectDates(spans, text)

	if len(result.Organizations) == 0 && len(result.Dates) == 0 && len(result.Amounts) == 0 {
		return nil, common.ErrNoEntitiesFound
	}

	if len(result.Organizations) > 0 {
		result.PrimaryOrganization = result.Organizations[0]
		result.OrgConfidence = categoryConfidence(len(result.Organizations), orgConfidenceBase)
	}
	if len(result.Dates) > 0 {
		d := x.primaryDate(result.Dates)
		result.PrimaryDate = &d
		result.DateConfidence = categoryConfidence(len(result.Dates), dateConfidenceBase)
	}
	if primary, ok := x.amounts.Primary(amounts); ok {
		result.PrimaryAmount = &primary
		result.AmountConfidence = categoryConfidence(len(amounts), amountConfidenceBase)
	}

	x.logger.Debug("entities.extracted",
		"organizations", len(result.Organizations),
		"dates", len(result.Dates),
		"amounts", len(result.Amounts),
	)
	return result, nil
}

// collectOrganizations filters spans to organizations and deduplicates them
// case-insensitively, preserving first-seen order.
func collectOrganizations(spans []EntitySpan) []string {
	seen := make(map[string]struct{})
	var orgs []string
	for _, s := range spans {
		if s.Kind != SpanOrganization {
			continue
		}
		name := strings.TrimSpace(s.Text)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		orgs = append(orgs, name)
	}
	return orgs
}

// collectDates parses date spans and keeps those within the plausibility
// window of [-5, +10] years from now, sorted ascending.
func (x *EntityExtractor) collectDates(spans []EntitySpan, text string) []time.Time {
	now := x.now()
	lower := now.AddDate(-dateWindowPastYears, 0, 0)
	upper := now.AddDate(dateWindowFutureYears, 0, 0)

	candidates := make(map[time.Time]struct{})
	for _, s := range spans {
		if s.Kind != SpanDate {
			continue
		}
		if d, ok := dateparse.Parse(s.Text); ok {
			candidates[d] = struct{}{}
		}
	}
	// recognizers without date support still yield dates via the detectors
	if len(candidates) == 0 {
		for _, re := range dateparse.DetectionPatterns() {
			for _, m := range re.FindAllString(text, -1) {
				if d, ok := dateparse.Parse(m); ok {
					candidates[d] = struct{}{}
				}
			}
		}
	}

	var dates []time.Time
	for d := range candidates {
		if d.Before(lower) || d.After(upper) {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// primaryDate picks the earliest date strictly after now; if every date is
// in the past, the latest one found. Dates must be sorted ascending.
func (x *EntityExtractor) primaryDate(dates []time.Time) time.Time {
	now := x.now()
	for _, d := range dates {
		if d.After(now) {
			return d
		}
	}
	return dates[len(dates)-1]
}

func categoryConfidence(count int, base float64) float64 {
	c := base + perCandidateBoost*float64(count)
	if c > 1 {
		return 1
	}
	return c
}
