package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Local writes upload bytes under BaseDir. Paths are relative,
// type-partitioned (e.g. standard/2026-standard-...jpg).
type Local struct {
	BaseDir string
}

func (Local) Name() string { return "local" }

func (Local) Configured() bool { return true }

func (l Local) Save(_ context.Context, path string, data []byte) error {
	full := filepath.Join(l.BaseDir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

// Delete tolerates already-missing files; removing bytes twice is a
// no-op on the storage side.
func (l Local) Delete(_ context.Context, path string) error {
	err := os.Remove(filepath.Join(l.BaseDir, path))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
