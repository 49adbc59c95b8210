// Package corrections keeps the append-only log of user corrections and
// confirmations, and derives the accuracy feedback that tunes schema
// confidence.
package corrections

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/agext/levenshtein"
	"github.com/google/uuid"

	"github.com/fieldlens/fieldlens/constants"
	"github.com/fieldlens/fieldlens/internal/common"
	"github.com/fieldlens/fieldlens/internal/entity"
)

// minorCorrectionRatio is the edit-distance ratio below which a correction
// counts as minor.
const minorCorrectionRatio = 0.3

// SchemaNotifier receives confirm/correct feedback for a schema's field
// mapping. The schema store implements it.
type SchemaNotifier interface {
	UpdateFieldConfidence(schemaID uuid.UUID, fieldType constants.FieldType, confirmed bool) error
}

// Service owns the rolling correction log. Every read and write is
// serialized behind one mutex; the log is persisted on every successful
// append and capped at cfg.MaxCorrections entries, oldest evicted first.
type Service struct {
	mu            sync.Mutex
	entries       []entity.FieldCorrection
	confirmations map[constants.FieldType]int
	path          string
	max           int
	notifier      SchemaNotifier
	logger        *slog.Logger
	now           func() time.Time
}

func NewService(cfg common.CorrectionsConfig, notifier SchemaNotifier, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	max := cfg.MaxCorrections
	if max <= 0 {
		max = 10000
	}
	s := &Service{
		confirmations: make(map[constants.FieldType]int),
		path:          cfg.FilePath,
		max:           max,
		notifier:      notifier,
		logger:        logger,
		now:           time.Now,
	}

	entries, err := loadCorrections(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrLoadFailed, err)
	}
	if len(entries) > max {
		entries = entries[len(entries)-max:]
	}
	s.entries = entries

	logger.Info("corrections.loaded", "count", len(entries), "path", cfg.FilePath)
	return s, nil
}

// RecordCorrection appends one immutable correction record and persists the
// log. The schema-confidence update is deliberately best-effort: its failure
// never fails the correction write.
func (s *Service) RecordCorrection(c entity.FieldCorrection) error {
	if !c.FieldType.Valid() {
		return fmt.Errorf("unknown field type %q", c.FieldType)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = s.now().UTC()
	}

	s.mu.Lock()
	s.entries = append(s.entries, c)
	if excess := len(s.entries) - s.max; excess > 0 {
		s.entries = append([]entity.FieldCorrection(nil), s.entries[excess:]...)
	}
	err := s.saveLocked()
	if err != nil {
		// drop the append so memory and disk stay consistent
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if s.notifier != nil && c.SchemaID != nil {
		if nerr := s.notifier.UpdateFieldConfidence(*c.SchemaID, c.FieldType, false); nerr != nil {
			s.logger.Warn("corrections.notify_failed",
				"schema_id", *c.SchemaID, "field_type", c.FieldType, "error", nerr)
		}
	}
	return nil
}

// RecordConfirmation records that a user accepted an extracted value
// unchanged and notifies the schema store.
func (s *Service) RecordConfirmation(schemaID *uuid.UUID, fieldType constants.FieldType) error {
	if !fieldType.Valid() {
		return fmt.Errorf("unknown field type %q", fieldType)
	}

	s.mu.Lock()
	s.confirmations[fieldType]++
	s.mu.Unlock()

	if s.notifier != nil && schemaID != nil {
		if nerr := s.notifier.UpdateFieldConfidence(*schemaID, fieldType, true); nerr != nil {
			s.logger.Warn("corrections.notify_failed",
				"schema_id", *schemaID, "field_type", fieldType, "error", nerr)
		}
	}
	return nil
}

// Corrections returns a copy of the log, oldest first.
func (s *Service) Corrections() []entity.FieldCorrection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.FieldCorrection, len(s.entries))
	copy(out, s.entries)
	return out
}

// Count returns the current log length.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// EditDistance is the Levenshtein distance between two values.
func EditDistance(original, corrected string) int {
	return levenshtein.Distance(original, corrected, nil)
}

// IsMinorCorrection reports whether the edit is small relative to the longer
// of the two values. Two empty values count as minor.
func IsMinorCorrection(original, corrected string) bool {
	longest := len(original)
	if len(corrected) > longest {
		longest = len(corrected)
	}
	if longest == 0 {
		return true
	}
	return float64(EditDistance(original, corrected))/float64(longest) < minorCorrectionRatio
}
