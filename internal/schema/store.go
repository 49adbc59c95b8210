// Package schema holds the durable registry of built-in and user schemas.
package schema

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldlens/fieldlens/constants"
	"github.com/fieldlens/fieldlens/internal/common"
	"github.com/fieldlens/fieldlens/internal/entity"
)

// Store keeps every schema in memory keyed by id, merging the seeded
// built-in set with the user set loaded from disk. All reads and writes are
// serialized behind one mutex so usage counters, rolling averages and file
// writes never race.
type Store struct {
	mu       sync.Mutex
	schemas  map[uuid.UUID]*entity.InvoiceSchema
	path     string
	matchMin float64
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore loads user schemas from cfg.FilePath (a missing file is an empty
// set) and merges the built-ins. A user schema can never shadow a built-in id.
func NewStore(cfg common.SchemasConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		schemas:  make(map[uuid.UUID]*entity.InvoiceSchema),
		path:     cfg.FilePath,
		matchMin: cfg.MatchThreshold,
		logger:   logger,
		now:      time.Now,
	}
	if s.matchMin <= 0 {
		s.matchMin = 5.0
	}

	for _, b := range builtInSchemas() {
		s.schemas[b.ID] = b
	}

	loaded, err := loadSchemas(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrLoadFailed, err)
	}
	for _, u := range loaded {
		if existing, ok := s.schemas[u.ID]; ok && existing.IsBuiltIn {
			logger.Warn("schemas.skipping_builtin_shadow", "schema_id", u.ID, "name", u.Name)
			continue
		}
		u.IsBuiltIn = false
		s.schemas[u.ID] = u
	}

	logger.Info("schemas.loaded",
		"built_in", len(builtInSchemas()), "user", len(loaded), "path", cfg.FilePath)
	return s, nil
}

// AllSchemas returns every schema, built-ins first, then user schemas, each
// group sorted by name.
func (s *Store) AllSchemas() []*entity.InvoiceSchema {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.cloneAllLocked()
	sort.Slice(all, func(i, j int) bool {
		if all[i].IsBuiltIn != all[j].IsBuiltIn {
			return all[i].IsBuiltIn
		}
		return all[i].Name < all[j].Name
	})
	return all
}

// BuiltInSchemas returns the seeded schemas, sorted by name.
func (s *Store) BuiltInSchemas() []*entity.InvoiceSchema {
	return s.filtered(func(sc *entity.InvoiceSchema) bool { return sc.IsBuiltIn })
}

// UserSchemas returns the user-owned schemas, sorted by name.
func (s *Store) UserSchemas() []*entity.InvoiceSchema {
	return s.filtered(func(sc *entity.InvoiceSchema) bool { return !sc.IsBuiltIn })
}

func (s *Store) filtered(keep func(*entity.InvoiceSchema) bool) []*entity.InvoiceSchema {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.InvoiceSchema
	for _, sc := range s.schemas {
		if keep(sc) {
			out = append(out, sc.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Schema returns the schema with the given id.
func (s *Store) Schema(id uuid.UUID) (*entity.InvoiceSchema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schemas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrSchemaNotFound, id)
	}
	return sc.Clone(), nil
}

// SchemasMatching returns schemas whose vendor identifier contains the given
// vendor string or vice versa (case-insensitive), most used first.
func (s *Store) SchemasMatching(vendor string) []*entity.InvoiceSchema {
	needle := strings.ToLower(strings.TrimSpace(vendor))
	if needle == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.InvoiceSchema
	for _, sc := range s.schemas {
		ident := strings.ToLower(sc.VendorIdentifier)
		if ident == "" {
			continue
		}
		if strings.Contains(ident, needle) || strings.Contains(needle, ident) {
			out = append(out, sc.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UsageCount > out[j].UsageCount })
	return out
}

// CreateSchema validates and registers a new user schema, assigning an id and
// timestamps, and persists the user set.
func (s *Store) CreateSchema(sc *entity.InvoiceSchema) (*entity.InvoiceSchema, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSchema, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := sc.Clone()
	stored.ID = uuid.New()
	stored.IsBuiltIn = false
	stored.Version = 1
	stored.UsageCount = 0
	stored.AverageConfidence = 0
	stored.CreatedAt = s.now().UTC()
	stored.UpdatedAt = stored.CreatedAt

	s.schemas[stored.ID] = stored
	if err := s.saveLocked(); err != nil {
		delete(s.schemas, stored.ID)
		return nil, err
	}
	s.logger.Info("schemas.created", "schema_id", stored.ID, "name", stored.Name)
	return stored.Clone(), nil
}

// UpdateSchema replaces a user schema's definition, bumping its version.
// Built-in schemas are immutable.
func (s *Store) UpdateSchema(sc *entity.InvoiceSchema) (*entity.InvoiceSchema, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSchema, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.schemas[sc.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrSchemaNotFound, sc.ID)
	}
	if existing.IsBuiltIn {
		return nil, fmt.Errorf("%w: %s", common.ErrCannotModifyBuiltIn, sc.ID)
	}

	updated := sc.Clone()
	updated.IsBuiltIn = false
	updated.Version = existing.Version + 1
	updated.UsageCount = existing.UsageCount
	updated.AverageConfidence = existing.AverageConfidence
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now().UTC()

	s.schemas[sc.ID] = updated
	if err := s.saveLocked(); err != nil {
		s.schemas[sc.ID] = existing
		return nil, err
	}
	s.logger.Info("schemas.updated", "schema_id", updated.ID, "version", updated.Version)
	return updated.Clone(), nil
}

// DeleteSchema removes a user schema. Built-in schemas cannot be deleted.
func (s *Store) DeleteSchema(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.schemas[id]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrSchemaNotFound, id)
	}
	if existing.IsBuiltIn {
		return fmt.Errorf("%w: %s", common.ErrCannotModifyBuiltIn, id)
	}

	delete(s.schemas, id)
	if err := s.saveLocked(); err != nil {
		s.schemas[id] = existing
		return err
	}
	s.logger.Info("schemas.deleted", "schema_id", id)
	return nil
}

// DuplicateSchema copies any schema (built-in included) into a fresh,
// user-owned schema with a new id and zeroed statistics.
func (s *Store) DuplicateSchema(id uuid.UUID, name string) (*entity.InvoiceSchema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.schemas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrSchemaNotFound, id)
	}

	dup := source.Clone()
	dup.ID = uuid.New()
	dup.IsBuiltIn = false
	dup.Version = 1
	dup.UsageCount = 0
	dup.AverageConfidence = 0
	dup.CreatedAt = s.now().UTC()
	dup.UpdatedAt = dup.CreatedAt
	if name != "" {
		dup.Name = name
	} else {
		dup.Name = source.Name + " (copy)"
	}

	s.schemas[dup.ID] = dup
	if err := s.saveLocked(); err != nil {
		delete(s.schemas, dup.ID)
		return nil, err
	}
	s.logger.Info("schemas.duplicated", "source_id", id, "schema_id", dup.ID)
	return dup.Clone(), nil
}

// RecordUsage increments usage and folds the run's overall confidence into
// the rolling average. Built-ins record in memory only; user schemas persist.
func (s *Store) RecordUsage(id uuid.UUID, overallConfidence float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.schemas[id]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrSchemaNotFound, id)
	}

	sc.UsageCount++
	n := float64(sc.UsageCount)
	sc.AverageConfidence = (sc.AverageConfidence*(n-1) + overallConfidence) / n
	sc.UpdatedAt = s.now().UTC()

	if !sc.IsBuiltIn {
		if err := s.saveLocked(); err != nil {
			return err
		}
	}
	return nil
}

// UpdateFieldConfidence bumps the confirmation or correction counter on the
// mapping for the given field type. Built-ins are immutable.
func (s *Store) UpdateFieldConfidence(schemaID uuid.UUID, fieldType constants.FieldType, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.schemas[schemaID]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrSchemaNotFound, schemaID)
	}
	if sc.IsBuiltIn {
		return fmt.Errorf("%w: %s", common.ErrCannotModifyBuiltIn, schemaID)
	}

	for i := range sc.FieldMappings {
		if sc.FieldMappings[i].FieldType != fieldType {
			continue
		}
		if confirmed {
			sc.FieldMappings[i].ConfirmationCount++
		} else {
			sc.FieldMappings[i].CorrectionCount++
		}
		sc.UpdatedAt = s.now().UTC()
		return s.saveLocked()
	}
	return fmt.Errorf("%w: no mapping for field type %q", common.ErrInvalidSchema, fieldType)
}

func (s *Store) cloneAllLocked() []*entity.InvoiceSchema {
	out := make([]*entity.InvoiceSchema, 0, len(s.schemas))
	for _, sc := range s.schemas {
		out = append(out, sc.Clone())
	}
	return out
}
