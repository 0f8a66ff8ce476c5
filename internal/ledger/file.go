package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the snapshot as a JSON document. Writes go to a
// temporary file that is renamed over the target so a crash never leaves a
// truncated ledger behind.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path. The parent directory is
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger file %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return Snapshot{}, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode ledger file %s: %w", s.path, err)
	}
	return snap.clone(), nil
}

func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	data, err := json.MarshalIndent(snap.clone(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	return nil
}
