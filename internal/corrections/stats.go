package corrections

import (
	"github.com/fieldlens/fieldlens/constants"
	"github.com/fieldlens/fieldlens/internal/entity"
)

// suggestedAdjustment scaling and bounds.
const (
	adjustmentScale = 0.2
	adjustmentBound = 0.1
)

// Stats derives the per-field accuracy statistics from the current log and
// confirmation tallies.
func (s *Service) Stats(fieldType constants.FieldType) entity.FieldCorrectionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked(fieldType)
}

// AllStats returns statistics for every field type that has at least one
// recorded extraction.
func (s *Service) AllStats() []entity.FieldCorrectionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.FieldCorrectionStats
	for _, ft := range constants.AllFieldTypes() {
		st := s.statsLocked(ft)
		if st.TotalExtractions > 0 {
			out = append(out, st)
		}
	}
	return out
}

func (s *Service) statsLocked(fieldType constants.FieldType) entity.FieldCorrectionStats {
	st := entity.FieldCorrectionStats{FieldType: fieldType}

	var confidenceSum float64
	for _, c := range s.entries {
		if c.FieldType != fieldType {
			continue
		}
		st.CorrectionsCount++
		confidenceSum += c.OriginalConfidence
		if IsMinorCorrection(c.OriginalValue, c.CorrectedValue) {
			st.MinorCorrectionsCount++
		}
	}

	st.TotalExtractions = st.CorrectionsCount + s.confirmations[fieldType]
	if st.CorrectionsCount > 0 {
		st.AverageOriginalConfidence = confidenceSum / float64(st.CorrectionsCount)
	}
	if st.TotalExtractions > 0 {
		st.AccuracyRate = 1 - float64(st.CorrectionsCount)/float64(st.TotalExtractions)
		st.SuggestedConfidenceAdjustment = clamp(
			(st.AccuracyRate-0.5)*adjustmentScale, -adjustmentBound, adjustmentBound)
	}
	return st
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
