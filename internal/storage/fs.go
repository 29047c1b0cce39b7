package storage

import (
	"fmt"
	"os"
)

// FS stores documents as regular files.
type FS struct{}

func (FS) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Write replaces the file at path using temp + atomic rename, so a reader
// opening the path mid-write sees either the old or the new document.
func (FS) Write(path string, data []byte) error {
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file for %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp → %s: %w", path, err)
	}

	return nil
}
