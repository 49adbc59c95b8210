package corrections

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fieldlens/fieldlens/internal/common"
	"github.com/fieldlens/fieldlens/internal/entity"
)

// loadCorrections reads the correction log. A missing file is an empty log.
func loadCorrections(path string) ([]entity.FieldCorrection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []entity.FieldCorrection
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return entries, nil
}

// saveLocked persists the log as a pretty-printed JSON array, written
// atomically (temp file then rename). Callers hold s.mu.
func (s *Service) saveLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", common.ErrSaveFailed, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", common.ErrSaveFailed, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrSaveFailed, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", common.ErrSaveFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", common.ErrSaveFailed, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", common.ErrSaveFailed, err)
	}
	return nil
}
