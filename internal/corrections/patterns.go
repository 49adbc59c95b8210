package corrections

import (
	"sort"

	"github.com/fieldlens/fieldlens/constants"
)

// CorrectionPattern is one recurring original -> corrected value pair.
type CorrectionPattern struct {
	OriginalValue  string `json:"original_value"`
	CorrectedValue string `json:"corrected_value"`
	Count          int    `json:"count"`
}

// CommonCorrectionPatterns groups the log's corrections for one field type by
// (original, corrected) pair and returns the most frequent first. A limit of
// 0 returns all patterns.
func (s *Service) CommonCorrectionPatterns(fieldType constants.FieldType, limit int) []CorrectionPattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	type pair struct{ original, corrected string }
	counts := make(map[pair]int)
	for _, c := range s.entries {
		if c.FieldType != fieldType {
			continue
		}
		counts[pair{c.OriginalValue, c.CorrectedValue}]++
	}

	out := make([]CorrectionPattern, 0, len(counts))
	for p, n := range counts {
		out = append(out, CorrectionPattern{
			OriginalValue:  p.original,
			CorrectedValue: p.corrected,
			Count:          n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].OriginalValue != out[j].OriginalValue {
			return out[i].OriginalValue < out[j].OriginalValue
		}
		return out[i].CorrectedValue < out[j].CorrectedValue
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
