// Package store implements the flat-file record store: an in-memory map of
// named tables, each an insertion-ordered list of schema-less records,
// persisted wholesale as a single serialized document.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/flatdb/flatdb/internal/codec"
	"github.com/flatdb/flatdb/internal/record"
	"github.com/flatdb/flatdb/internal/storage"
)

// ErrMalformedDocument reports a document that exists but cannot be parsed.
// Unlike an absent document (which opens as an empty database), a malformed
// one fails construction.
var ErrMalformedDocument = errors.New("malformed database document")

// Store owns the in-memory database and mediates all access to it.
//
// The table map is the single source of truth between loads and saves:
// mutations are in-memory only until Persist is called, and external
// changes to the persisted document are not detected. A single RWMutex
// makes one-process multi-goroutine use safe; there is no cross-process
// locking.
type Store struct {
	path    string
	codec   codec.Codec
	backend storage.Backend
	logger  *slog.Logger

	mu     sync.RWMutex
	tables map[string][]record.Record
}

// Option configures a Store at construction.
type Option func(*Store)

// WithCodec selects the document format. Default: codec.JSON.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithBackend selects the storage backend. Default: storage.FS.
func WithBackend(b storage.Backend) Option {
	return func(s *Store) { s.backend = b }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open constructs a store backed by the document at path.
//
// A path that cannot be read (most commonly: does not exist yet) opens as
// an empty database. A document that reads but fails to parse is a
// construction error wrapping ErrMalformedDocument; that asymmetry is part
// of the contract.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:    path,
		codec:   codec.JSON{},
		backend: storage.FS{},
		logger:  slog.Default(),
		tables:  make(map[string][]record.Record),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := s.backend.Read(path)
	if err != nil {
		// Absent or unreadable: start empty. Persistence is opt-in, so
		// this is the normal first-run path, not a failure.
		s.logger.Debug("starting with empty database",
			slog.String("path", path),
			slog.Any("reason", err),
		)
		return s, nil
	}

	tables, err := s.codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDocument, path, err)
	}

	// Fold decoder-native values (e.g. YAML ints) into the value domain so
	// queries compare consistently against loaded and inserted records.
	for name, recs := range tables {
		for i, r := range recs {
			nr, nerr := r.Normalized()
			if nerr != nil {
				return nil, fmt.Errorf("%w: %s: table %q record %d: %v", ErrMalformedDocument, path, name, i+1, nerr)
			}
			recs[i] = nr
		}
		s.tables[name] = recs
	}

	s.logger.Info("database loaded",
		slog.String("path", path),
		slog.String("format", s.codec.Name()),
		slog.Int("table_count", len(s.tables)),
	)
	return s, nil
}

// Path returns the backing document path.
func (s *Store) Path() string {
	return s.path
}

// Persist serializes the entire database and replaces the document at the
// store's path. A serialization or write failure propagates to the caller;
// there is no retry and no partial-write cleanup.
func (s *Store) Persist() error {
	s.mu.RLock()
	data, err := s.codec.Marshal(s.tables)
	tableCount := len(s.tables)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to serialize database: %w", err)
	}

	if err := s.backend.Write(s.path, data); err != nil {
		return fmt.Errorf("failed to persist database: %w", err)
	}

	s.logger.Info("database persisted",
		slog.String("path", s.path),
		slog.Int("table_count", tableCount),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// Insert appends rec to the named table, creating the table on first use.
// The record is normalized into the value domain but otherwise accepted
// as-is: no schema, no deduplication, no required fields. The change is
// in-memory only until Persist.
func (s *Store) Insert(table string, rec record.Record) error {
	nr, err := rec.Normalized()
	if err != nil {
		return fmt.Errorf("insert into %q: %w", table, err)
	}

	s.mu.Lock()
	s.tables[table] = append(s.tables[table], nr)
	count := len(s.tables[table])
	s.mu.Unlock()

	s.logger.Debug("record inserted",
		slog.String("table", table),
		slog.Int("record_count", count),
	)
	return nil
}

// Query returns the records of table matching q, in insertion order. A nil
// or empty query matches every record; an unknown table yields an empty
// result, not an error.
//
// The returned records are the live stored maps: mutating one mutates the
// store. Callers needing isolation should Clone each record.
func (s *Store) Query(table string, q record.Query) ([]record.Record, error) {
	nq, err := q.Normalized()
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", table, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	recs, ok := s.tables[table]
	if !ok {
		return nil, nil
	}

	out := make([]record.Record, 0, len(recs))
	for _, r := range recs {
		if r.Matches(nq) {
			out = append(out, r)
		}
	}
	return out, nil
}

// UpdateWhere merges updates into every record of table matching q: new
// keys are added, existing keys overwritten, other keys untouched. It
// reports whether at least one record matched. An unknown table reports
// false, not an error.
func (s *Store) UpdateWhere(table string, q record.Query, updates record.Record) (bool, error) {
	nq, err := q.Normalized()
	if err != nil {
		return false, fmt.Errorf("update %q: %w", table, err)
	}
	nu, err := updates.Normalized()
	if err != nil {
		return false, fmt.Errorf("update %q: %w", table, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, ok := s.tables[table]
	if !ok {
		return false, nil
	}

	updated := 0
	for _, r := range recs {
		if r.Matches(nq) {
			r.Merge(nu)
			updated++
		}
	}
	if updated > 0 {
		s.logger.Debug("records updated",
			slog.String("table", table),
			slog.Int("matched", updated),
		)
	}
	return updated > 0, nil
}

// DeleteWhere removes every record of table matching q, preserving the
// relative order of the rest. It reports whether the table shrank. An
// unknown table reports false, not an error.
//
// Caution: an empty (or nil) query matches every record, so
// DeleteWhere(table, nil) empties the whole table. That is intentional and
// not guarded against.
func (s *Store) DeleteWhere(table string, q record.Query) (bool, error) {
	nq, err := q.Normalized()
	if err != nil {
		return false, fmt.Errorf("delete from %q: %w", table, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, ok := s.tables[table]
	if !ok {
		return false, nil
	}

	kept := make([]record.Record, 0, len(recs))
	for _, r := range recs {
		if !r.Matches(nq) {
			kept = append(kept, r)
		}
	}
	removed := len(recs) - len(kept)
	// The table name stays in the map even when emptied.
	s.tables[table] = kept

	if removed > 0 {
		s.logger.Debug("records deleted",
			slog.String("table", table),
			slog.Int("removed", removed),
			slog.Int("remaining", len(kept)),
		)
	}
	return removed > 0, nil
}

// Tables returns the table names in sorted order.
func (s *Store) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tableNames()
}

// Len returns the number of records currently in table; 0 for an unknown
// table.
func (s *Store) Len(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

// tableNames returns sorted names. Callers must hold at least a read lock.
func (s *Store) tableNames() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
