package schema

import (
	"strings"

	"github.com/fieldlens/fieldlens/internal/entity"
)

// Scoring weights for best-match selection over free text.
const (
	vendorMatchWeight   = 10.0
	usageCountWeight    = 0.1
	avgConfidenceWeight = 2.0
)

// FindBestMatch scores every schema against the document text and returns
// the winner, or ok=false when no schema clears the threshold.
//
//	score = 10 x vendor-identifier hit
//	      + sum of effectiveConfidence over label-hint hits
//	      + 0.1 x usageCount
//	      + 2 x averageConfidence
func (s *Store) FindBestMatch(text string) (*entity.InvoiceSchema, float64, bool) {
	haystack := strings.ToLower(text)
	if strings.TrimSpace(haystack) == "" {
		return nil, 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var best *entity.InvoiceSchema
	var bestScore float64
	for _, sc := range s.schemas {
		score := scoreSchema(sc, haystack)
		if best == nil || score > bestScore {
			best = sc
			bestScore = score
		}
	}
	if best == nil || bestScore <= s.matchMin {
		return nil, bestScore, false
	}

	s.logger.Debug("schemas.best_match", "schema_id", best.ID, "score", bestScore)
	return best.Clone(), bestScore, true
}

func scoreSchema(sc *entity.InvoiceSchema, haystack string) float64 {
	var score float64
	if sc.VendorIdentifier != "" &&
		strings.Contains(haystack, strings.ToLower(sc.VendorIdentifier)) {
		score += vendorMatchWeight
	}
	for _, m := range sc.FieldMappings {
		if m.LabelHint == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(m.LabelHint)) {
			score += m.EffectiveConfidence()
		}
	}
	score += usageCountWeight * float64(sc.UsageCount)
	score += avgConfidenceWeight * sc.AverageConfidence
	return score
}
