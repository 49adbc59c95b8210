package corrections

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fieldlens/fieldlens/internal/entity"
)

// TrainingPair is one corrected value exported for external retraining:
// the field label and the text a human says is right.
type TrainingPair struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ExportTrainingPairs flattens the corrected values into label/text pairs.
func (s *Service) ExportTrainingPairs() []TrainingPair {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TrainingPair, 0, len(s.entries))
	for _, c := range s.entries {
		if c.CorrectedValue == "" {
			continue
		}
		out = append(out, TrainingPair{
			Label: string(c.FieldType),
			Text:  c.CorrectedValue,
		})
	}
	return out
}

// ExportTrainingXLSX returns an XLSX workbook (as bytes) with one sheet of
// training pairs and one sheet of per-field accuracy statistics.
func (s *Service) ExportTrainingXLSX() ([]byte, error) {
	pairs := s.ExportTrainingPairs()
	stats := s.AllStats()

	f := excelize.NewFile()
	const pairsSheet = "Training Pairs"
	if index, _ := f.GetSheetIndex(pairsSheet); index == -1 {
		if _, err := f.NewSheet(pairsSheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(pairsSheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range []string{"Label", "Text"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(pairsSheet, cell, h)
	}
	for row, p := range pairs {
		_ = f.SetCellValue(pairsSheet, fmt.Sprintf("A%d", row+2), p.Label)
		_ = f.SetCellValue(pairsSheet, fmt.Sprintf("B%d", row+2), p.Text)
	}

	const statsSheet = "Field Accuracy"
	if _, err := f.NewSheet(statsSheet); err != nil {
		return nil, err
	}
	statsHeaders := []string{
		"Field Type",
		"Total Extractions",
		"Corrections",
		"Minor Corrections",
		"Avg Original Confidence",
		"Accuracy Rate",
		"Suggested Adjustment",
	}
	for i, h := range statsHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(statsSheet, cell, h)
	}
	for row, st := range stats {
		writeStatsRow(f, statsSheet, row+2, st)
	}

	// drop the default sheet excelize creates
	if name := f.GetSheetName(0); name != pairsSheet && name != statsSheet {
		_ = f.DeleteSheet(name)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeStatsRow(f *excelize.File, sheet string, row int, st entity.FieldCorrectionStats) {
	values := []any{
		string(st.FieldType),
		st.TotalExtractions,
		st.CorrectionsCount,
		st.MinorCorrectionsCount,
		st.AverageOriginalConfidence,
		st.AccuracyRate,
		st.SuggestedConfidenceAdjustment,
	}
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}
