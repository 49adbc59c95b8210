package schema

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/fieldlens/fieldlens/constants"
	"github.com/fieldlens/fieldlens/internal/common"
	"github.com/fieldlens/fieldlens/internal/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(common.SchemasConfig{
		FilePath:       filepath.Join(t.TempDir(), "schemas.json"),
		MatchThreshold: 5.0,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func userSchema(name, vendor string) *entity.InvoiceSchema {
	return &entity.InvoiceSchema{
		Name:             name,
		VendorIdentifier: vendor,
		FieldMappings: []entity.FieldMapping{
			{FieldType: constants.FieldVendor, LabelHint: "from", Confidence: 0.6},
			{FieldType: constants.FieldTotal, LabelHint: "total", Confidence: 0.8},
		},
	}
}

func TestNewStore_SeedsBuiltIns(t *testing.T) {
	s := newTestStore(t)
	builtins := s.BuiltInSchemas()
	if len(builtins) != 3 {
		t.Fatalf("built-ins = %d, want 3", len(builtins))
	}
	if _, err := s.Schema(AmazonSchemaID); err != nil {
		t.Errorf("Amazon built-in missing: %v", err)
	}
	if len(s.UserSchemas()) != 0 {
		t.Errorf("fresh store has user schemas")
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateSchema(userSchema("Acme", "acme"))
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == uuid.Nil || created.IsBuiltIn || created.Version != 1 {
		t.Fatalf("created = %+v", created)
	}

	created.Description = "updated"
	updated, err := s.UpdateSchema(created)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Version != 2 || updated.Description != "updated" {
		t.Errorf("updated = %+v, want version 2", updated)
	}

	if err := s.DeleteSchema(created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Schema(created.ID); !errors.Is(err, common.ErrSchemaNotFound) {
		t.Errorf("err = %v, want ErrSchemaNotFound", err)
	}
}

func TestCreateSchema_RejectsDuplicateMapping(t *testing.T) {
	s := newTestStore(t)
	sc := userSchema("Dup", "")
	sc.FieldMappings = append(sc.FieldMappings, entity.FieldMapping{
		FieldType: constants.FieldTotal, Confidence: 0.5,
	})
	if _, err := s.CreateSchema(sc); !errors.Is(err, common.ErrInvalidSchema) {
		t.Errorf("err = %v, want ErrInvalidSchema for duplicate field type", err)
	}
}

func TestBuiltInImmutability(t *testing.T) {
	s := newTestStore(t)
	before, err := s.Schema(AmazonSchemaID)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("update fails", func(t *testing.T) {
		mutated := before.Clone()
		mutated.Name = "hacked"
		if _, err := s.UpdateSchema(mutated); !errors.Is(err, common.ErrCannotModifyBuiltIn) {
			t.Errorf("err = %v, want ErrCannotModifyBuiltIn", err)
		}
	})
	t.Run("delete fails", func(t *testing.T) {
		if err := s.DeleteSchema(AmazonSchemaID); !errors.Is(err, common.ErrCannotModifyBuiltIn) {
			t.Errorf("err = %v, want ErrCannotModifyBuiltIn", err)
		}
	})
	t.Run("field confidence fails", func(t *testing.T) {
		err := s.UpdateFieldConfidence(AmazonSchemaID, constants.FieldTotal, true)
		if !errors.Is(err, common.ErrCannotModifyBuiltIn) {
			t.Errorf("err = %v, want ErrCannotModifyBuiltIn", err)
		}
	})

	after, err := s.Schema(AmazonSchemaID)
	if err != nil {
		t.Fatal(err)
	}
	if after.Name != before.Name || after.Version != before.Version {
		t.Errorf("built-in changed: before %+v after %+v", before, after)
	}
	for i := range after.FieldMappings {
		if after.FieldMappings[i].ConfirmationCount != before.FieldMappings[i].ConfirmationCount {
			t.Errorf("built-in mapping counters changed")
		}
	}
}

func TestDuplicateSchema_AlwaysUserOwned(t *testing.T) {
	s := newTestStore(t)
	dup, err := s.DuplicateSchema(AmazonSchemaID, "")
	if err != nil {
		t.Fatal(err)
	}
	if dup.IsBuiltIn {
		t.Error("duplicate is built-in")
	}
	if dup.ID == AmazonSchemaID {
		t.Error("duplicate kept the source id")
	}
	if dup.UsageCount != 0 || dup.AverageConfidence != 0 {
		t.Errorf("duplicate stats not zeroed: %+v", dup)
	}
	if dup.Name != "Amazon Order (copy)" {
		t.Errorf("name = %q", dup.Name)
	}
	// and it may now be mutated
	if err := s.UpdateFieldConfidence(dup.ID, constants.FieldTotal, true); err != nil {
		t.Errorf("duplicate should be mutable: %v", err)
	}
}

func TestRecordUsage_RollingAverage(t *testing.T) {
	s := newTestStore(t)
	created, err := s.CreateSchema(userSchema("Roll", ""))
	if err != nil {
		t.Fatal(err)
	}

	samples := []float64{0.5, 0.7, 0.9, 0.3}
	var sum float64
	for _, c := range samples {
		if err := s.RecordUsage(created.ID, c); err != nil {
			t.Fatal(err)
		}
		sum += c
	}

	got, err := s.Schema(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.UsageCount != int64(len(samples)) {
		t.Errorf("usage count = %d, want %d", got.UsageCount, len(samples))
	}
	want := sum / float64(len(samples))
	if math.Abs(got.AverageConfidence-want) > 1e-9 {
		t.Errorf("average confidence = %v, want %v", got.AverageConfidence, want)
	}
}

func TestUpdateFieldConfidence_Counters(t *testing.T) {
	s := newTestStore(t)
	created, err := s.CreateSchema(userSchema("Counters", ""))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateFieldConfidence(created.ID, constants.FieldTotal, true); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateFieldConfidence(created.ID, constants.FieldTotal, false); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateFieldConfidence(created.ID, constants.FieldTax, true); !errors.Is(err, common.ErrInvalidSchema) {
		t.Errorf("err = %v, want ErrInvalidSchema for unmapped field", err)
	}

	got, _ := s.Schema(created.ID)
	m, ok := got.MappingFor(constants.FieldTotal)
	if !ok {
		t.Fatal("mapping missing")
	}
	if m.ConfirmationCount != 1 || m.CorrectionCount != 1 {
		t.Errorf("counters = %d/%d, want 1/1", m.ConfirmationCount, m.CorrectionCount)
	}
}

func TestPersistence_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schemas.json")
	cfg := common.SchemasConfig{FilePath: path, MatchThreshold: 5.0}

	s1, err := NewStore(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	created, err := s1.CreateSchema(userSchema("Persisted", "persist co"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.RecordUsage(created.ID, 0.8); err != nil {
		t.Fatal(err)
	}

	// the file is a pretty-printed JSON array of user schemas only
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var onDisk []entity.InvoiceSchema
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("file is not a schema array: %v", err)
	}
	if len(onDisk) != 1 {
		t.Fatalf("on disk = %d schemas, want 1 (built-ins never persisted)", len(onDisk))
	}

	s2, err := NewStore(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	reloaded, err := s2.Schema(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Name != "Persisted" || reloaded.UsageCount != 1 {
		t.Errorf("reloaded = %+v", reloaded)
	}
	if math.Abs(reloaded.AverageConfidence-0.8) > 1e-9 {
		t.Errorf("average confidence = %v, want 0.8", reloaded.AverageConfidence)
	}
}

func TestSchemasMatching(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateSchema(userSchema("Acme EU", "acme gmbh"))
	if _, err := s.CreateSchema(userSchema("Globex", "globex")); err != nil {
		t.Fatal(err)
	}
	_ = s.RecordUsage(a.ID, 0.9)

	got := s.SchemasMatching("acme")
	if len(got) != 1 || got[0].Name != "Acme EU" {
		t.Fatalf("matching = %+v", got)
	}
	// reverse containment: stored identifier inside the query
	got = s.SchemasMatching("invoice from acme gmbh berlin")
	if len(got) != 1 {
		t.Fatalf("reverse matching = %+v", got)
	}
}

func TestExportImport(t *testing.T) {
	s := newTestStore(t)
	data, err := s.ExportSchema(AmazonSchemaID)
	if err != nil {
		t.Fatal(err)
	}

	imported, err := s.ImportSchema(data)
	if err != nil {
		t.Fatal(err)
	}
	if imported.IsBuiltIn {
		t.Error("import kept the built-in flag")
	}
	if imported.ID == AmazonSchemaID {
		t.Error("import kept the source id")
	}
	if len(imported.FieldMappings) != 5 {
		t.Errorf("mappings = %d, want 5", len(imported.FieldMappings))
	}

	t.Run("invalid document rejected", func(t *testing.T) {
		if _, err := s.ImportSchema([]byte(`{"field_mappings": []}`)); !errors.Is(err, common.ErrInvalidSchema) {
			t.Errorf("err = %v, want ErrInvalidSchema", err)
		}
		if _, err := s.ImportSchema([]byte(`not json`)); !errors.Is(err, common.ErrInvalidSchema) {
			t.Errorf("err = %v, want ErrInvalidSchema", err)
		}
	})
}
