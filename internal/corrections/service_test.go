package corrections

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/fieldlens/fieldlens/constants"
	"github.com/fieldlens/fieldlens/internal/common"
	"github.com/fieldlens/fieldlens/internal/entity"
)

type fakeNotifier struct {
	calls []notifyCall
	err   error
}

type notifyCall struct {
	schemaID  uuid.UUID
	fieldType constants.FieldType
	confirmed bool
}

func (f *fakeNotifier) UpdateFieldConfidence(schemaID uuid.UUID, fieldType constants.FieldType, confirmed bool) error {
	f.calls = append(f.calls, notifyCall{schemaID, fieldType, confirmed})
	return f.err
}

func newTestService(t *testing.T, max int, notifier SchemaNotifier) *Service {
	t.Helper()
	s, err := NewService(common.CorrectionsConfig{
		FilePath:       filepath.Join(t.TempDir(), "corrections.json"),
		MaxCorrections: max,
	}, notifier, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func correction(ft constants.FieldType, original, corrected string, confidence float64) entity.FieldCorrection {
	return entity.FieldCorrection{
		FieldType:          ft,
		OriginalValue:      original,
		CorrectedValue:     corrected,
		OriginalConfidence: confidence,
	}
}

func TestRecordCorrection_AppendsAndPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrections.json")
	cfg := common.CorrectionsConfig{FilePath: path, MaxCorrections: 100}

	s1, err := NewService(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.RecordCorrection(correction(constants.FieldTotal, "42.1O", "42.10", 0.8)); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var onDisk []entity.FieldCorrection
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("log is not a correction array: %v", err)
	}
	if len(onDisk) != 1 || onDisk[0].ID == uuid.Nil || onDisk[0].Timestamp.IsZero() {
		t.Fatalf("on disk = %+v", onDisk)
	}

	s2, err := NewService(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s2.Count() != 1 {
		t.Errorf("reloaded count = %d, want 1", s2.Count())
	}
}

func TestRecordCorrection_RollingCap(t *testing.T) {
	const max = 20
	s := newTestService(t, max, nil)

	for i := 0; i < max+7; i++ {
		c := correction(constants.FieldTotal, fmt.Sprintf("v%d", i), "fixed", 0.5)
		if err := s.RecordCorrection(c); err != nil {
			t.Fatal(err)
		}
	}

	entries := s.Corrections()
	if len(entries) != max {
		t.Fatalf("count = %d, want exactly %d", len(entries), max)
	}
	// the survivors are the most recently inserted
	if entries[0].OriginalValue != "v7" {
		t.Errorf("oldest survivor = %q, want v7", entries[0].OriginalValue)
	}
	if entries[max-1].OriginalValue != fmt.Sprintf("v%d", max+6) {
		t.Errorf("newest = %q", entries[max-1].OriginalValue)
	}
}

func TestRecordCorrection_NotifiesBestEffort(t *testing.T) {
	schemaID := uuid.New()

	t.Run("notifies with confirmed=false", func(t *testing.T) {
		n := &fakeNotifier{}
		s := newTestService(t, 100, n)
		c := correction(constants.FieldTotal, "1", "2", 0.5)
		c.SchemaID = &schemaID
		if err := s.RecordCorrection(c); err != nil {
			t.Fatal(err)
		}
		if len(n.calls) != 1 || n.calls[0].confirmed || n.calls[0].schemaID != schemaID {
			t.Errorf("calls = %+v", n.calls)
		}
	})

	t.Run("notifier failure does not fail the write", func(t *testing.T) {
		n := &fakeNotifier{err: errors.New("built-in schema")}
		s := newTestService(t, 100, n)
		c := correction(constants.FieldTotal, "1", "2", 0.5)
		c.SchemaID = &schemaID
		if err := s.RecordCorrection(c); err != nil {
			t.Fatalf("correction write failed: %v", err)
		}
		if s.Count() != 1 {
			t.Errorf("count = %d, want 1", s.Count())
		}
	})
}

func TestRecordConfirmation(t *testing.T) {
	schemaID := uuid.New()
	n := &fakeNotifier{}
	s := newTestService(t, 100, n)

	if err := s.RecordConfirmation(&schemaID, constants.FieldVendor); err != nil {
		t.Fatal(err)
	}
	if len(n.calls) != 1 || !n.calls[0].confirmed {
		t.Errorf("calls = %+v, want one confirmed call", n.calls)
	}
	if err := s.RecordConfirmation(nil, "bogus"); err == nil {
		t.Error("unknown field type accepted")
	}
}

func TestEditDistanceAndMinor(t *testing.T) {
	tests := []struct {
		original  string
		corrected string
		distance  int
		minor     bool
	}{
		{"", "", 0, true},
		{"42.1O", "42.10", 1, true},
		{"Acme Corp", "Acme Corp.", 1, true},
		{"wrong", "completely different", 18, false},
	}
	for _, tt := range tests {
		if d := EditDistance(tt.original, tt.corrected); d != tt.distance {
			t.Errorf("EditDistance(%q, %q) = %d, want %d", tt.original, tt.corrected, d, tt.distance)
		}
		if m := IsMinorCorrection(tt.original, tt.corrected); m != tt.minor {
			t.Errorf("IsMinorCorrection(%q, %q) = %v, want %v", tt.original, tt.corrected, m, tt.minor)
		}
	}
}

func TestStats(t *testing.T) {
	s := newTestService(t, 100, nil)

	// 2 corrections, 8 confirmations -> accuracy 0.8
	if err := s.RecordCorrection(correction(constants.FieldTotal, "10.00", "10.01", 0.6)); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordCorrection(correction(constants.FieldTotal, "wrong", "completely different", 0.8)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		if err := s.RecordConfirmation(nil, constants.FieldTotal); err != nil {
			t.Fatal(err)
		}
	}

	st := s.Stats(constants.FieldTotal)
	if st.TotalExtractions != 10 || st.CorrectionsCount != 2 {
		t.Fatalf("stats = %+v", st)
	}
	if st.MinorCorrectionsCount != 1 {
		t.Errorf("minor = %d, want 1", st.MinorCorrectionsCount)
	}
	if math.Abs(st.AverageOriginalConfidence-0.7) > 1e-9 {
		t.Errorf("avg original confidence = %v, want 0.7", st.AverageOriginalConfidence)
	}
	if math.Abs(st.AccuracyRate-0.8) > 1e-9 {
		t.Errorf("accuracy = %v, want 0.8", st.AccuracyRate)
	}
	// (0.8 - 0.5) x 0.2 = 0.06
	if math.Abs(st.SuggestedConfidenceAdjustment-0.06) > 1e-9 {
		t.Errorf("adjustment = %v, want 0.06", st.SuggestedConfidenceAdjustment)
	}
}

func TestStats_AdjustmentClamped(t *testing.T) {
	s := newTestService(t, 100, nil)
	// all corrected: accuracy 0 -> raw adjustment -0.1 exactly at the bound;
	// all confirmed: accuracy 1 -> raw 0.1 at the bound
	for i := 0; i < 5; i++ {
		if err := s.RecordCorrection(correction(constants.FieldTax, "a", "b", 0.5)); err != nil {
			t.Fatal(err)
		}
		if err := s.RecordConfirmation(nil, constants.FieldVendor); err != nil {
			t.Fatal(err)
		}
	}
	if a := s.Stats(constants.FieldTax).SuggestedConfidenceAdjustment; a < -0.1 || a > -0.0999 {
		t.Errorf("tax adjustment = %v, want -0.1", a)
	}
	if a := s.Stats(constants.FieldVendor).SuggestedConfidenceAdjustment; a > 0.1 || a < 0.0999 {
		t.Errorf("vendor adjustment = %v, want 0.1", a)
	}
}

func TestCommonCorrectionPatterns(t *testing.T) {
	s := newTestService(t, 100, nil)
	for i := 0; i < 3; i++ {
		if err := s.RecordCorrection(correction(constants.FieldVendor, "Amazn", "Amazon", 0.5)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.RecordCorrection(correction(constants.FieldVendor, "Amazon LLC", "Amazon.com LLC", 0.5)); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordCorrection(correction(constants.FieldTotal, "1.00", "2.00", 0.5)); err != nil {
		t.Fatal(err)
	}

	patterns := s.CommonCorrectionPatterns(constants.FieldVendor, 0)
	if len(patterns) != 2 {
		t.Fatalf("patterns = %+v, want 2", patterns)
	}
	if patterns[0].OriginalValue != "Amazn" || patterns[0].Count != 3 {
		t.Errorf("top pattern = %+v", patterns[0])
	}
	if limited := s.CommonCorrectionPatterns(constants.FieldVendor, 1); len(limited) != 1 {
		t.Errorf("limit ignored: %+v", limited)
	}
}

func TestExportTraining(t *testing.T) {
	s := newTestService(t, 100, nil)
	if err := s.RecordCorrection(correction(constants.FieldVendor, "Amazn", "Amazon", 0.5)); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordCorrection(correction(constants.FieldTotal, "42.1O", "42.10", 0.8)); err != nil {
		t.Fatal(err)
	}

	pairs := s.ExportTrainingPairs()
	if len(pairs) != 2 {
		t.Fatalf("pairs = %+v", pairs)
	}
	if pairs[0].Label != "vendor" || pairs[0].Text != "Amazon" {
		t.Errorf("pairs[0] = %+v", pairs[0])
	}

	data, err := s.ExportTrainingXLSX()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("empty workbook")
	}
}
