package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fieldlens/fieldlens/internal/common"
	"github.com/fieldlens/fieldlens/internal/entity"
)

// loadSchemas reads the user-schema file. A missing file is an empty set.
func loadSchemas(path string) ([]*entity.InvoiceSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var schemas []*entity.InvoiceSchema
	if err := json.Unmarshal(data, &schemas); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return schemas, nil
}

// saveLocked persists the user schemas as a pretty-printed, name-sorted JSON
// array written atomically (temp file then rename). Callers hold s.mu.
func (s *Store) saveLocked() error {
	var users []*entity.InvoiceSchema
	for _, sc := range s.schemas {
		if !sc.IsBuiltIn {
			users = append(users, sc)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID.String() < users[j].ID.String()
	})
	if users == nil {
		users = []*entity.InvoiceSchema{}
	}

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", common.ErrSaveFailed, err)
	}
	if err := atomicWrite(s.path, data); err != nil {
		return fmt.Errorf("%w: %v", common.ErrSaveFailed, err)
	}
	return nil
}

// atomicWrite writes data to a sibling temp file and renames it over path so
// readers never observe a partial file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
