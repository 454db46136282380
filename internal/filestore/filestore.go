// Package filestore implements the write-temp-then-rename atomic file
// primitive that every other package uses for persistence, generalized from
// the session manager's Save() routine in the teacher repo.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirMode  = 0o700
	fileMode = 0o600
)

// MkdirAll creates dir and all missing parents with restrictive mode 0o700.
func MkdirAll(dir string) error {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("filestore: mkdir %s: %w", dir, err)
	}
	return nil
}

// WriteFile atomically replaces dir/name with data: it writes to a sibling
// temp file with mode 0o600 and renames over the destination. The temp file
// is unlinked best-effort on any error.
func WriteFile(dir, name string, data []byte) error {
	if err := MkdirAll(dir); err != nil {
		return err
	}
	tmpPath := filepath.Join(dir, "."+name+".tmp")
	destPath := filepath.Join(dir, name)

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return fmt.Errorf("filestore: create temp for %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("filestore: write temp for %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("filestore: sync temp for %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("filestore: close temp for %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("filestore: rename temp for %s: %w", name, err)
	}
	return nil
}

// ReadFile reads dir/name. Callers distinguish "missing" from other errors
// with os.IsNotExist.
func ReadFile(dir, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(dir, name))
}

// Exists reports whether dir/name is present.
func Exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
