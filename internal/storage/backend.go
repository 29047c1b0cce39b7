// Package storage provides the byte-oriented backends a store persists
// through. The contract is deliberately narrow: read the full content of a
// path or report it absent, and replace the full content of a path. No
// append, seek, or partial I/O.
package storage

// Backend reads and replaces whole documents keyed by a path string.
//
// Read must return an error satisfying errors.Is(err, fs.ErrNotExist) when
// nothing exists at path. Write must replace the content so that a
// concurrent reader never observes a torn document.
type Backend interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
}
