package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func TestFSWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	content := []byte(`{"users": []}`)

	assert.NilError(t, FS{}.Write(path, content))

	got, err := FS{}.Read(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, content)
}

func TestFSWriteLeavesNoTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	assert.NilError(t, FS{}.Write(path, []byte("{}")))

	_, err := os.Stat(path + ".tmp")
	assert.Assert(t, errors.Is(err, fs.ErrNotExist))
}

func TestFSWriteReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	assert.NilError(t, FS{}.Write(path, []byte("old")))
	assert.NilError(t, FS{}.Write(path, []byte("new")))

	got, err := FS{}.Read(path)
	assert.NilError(t, err)
	assert.Equal(t, string(got), "new")
}

func TestFSReadMissing(t *testing.T) {
	_, err := FS{}.Read(filepath.Join(t.TempDir(), "nope.json"))
	assert.Assert(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemContract(t *testing.T) {
	m := NewMem()

	_, err := m.Read("absent")
	assert.Assert(t, errors.Is(err, fs.ErrNotExist))

	assert.NilError(t, m.Write("doc", []byte("v1")))
	got, err := m.Read("doc")
	assert.NilError(t, err)
	assert.Equal(t, string(got), "v1")

	// Mutating the returned slice must not touch the stored copy.
	got[0] = 'X'
	again, err := m.Read("doc")
	assert.NilError(t, err)
	assert.Equal(t, string(again), "v1")
}

func TestMemFailWrites(t *testing.T) {
	m := NewMem()
	m.FailWrites = true
	err := m.Write("doc", []byte("v1"))
	assert.Assert(t, errors.Is(err, fs.ErrPermission))
}
