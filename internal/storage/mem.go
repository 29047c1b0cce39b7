package storage

import (
	"fmt"
	"io/fs"
	"sync"
)

// Mem is an in-memory backend for tests and embedding. It honors the same
// contract as FS: absent paths read as fs.ErrNotExist, writes replace the
// whole document.
type Mem struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailWrites makes every Write fail, for exercising persist-failure
	// paths in tests.
	FailWrites bool
}

func NewMem() *Mem {
	return &Mem{files: make(map[string][]byte)}
}

func (m *Mem) Read(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Mem) Write(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return fmt.Errorf("%s: %w", path, fs.ErrPermission)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.files[path] = stored
	return nil
}
