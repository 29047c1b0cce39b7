package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/flatdb/flatdb/internal/record"
)

// Report writes a human-readable rendering of one table (table != "") or
// of every table to w: table name, 1-based record index, record contents.
// Pure observer; the output is a debugging convenience, not part of the
// data model, and nothing downstream parses it.
func (s *Store) Report(w io.Writer, table string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if table == "" {
		for _, name := range s.tableNames() {
			fmt.Fprintf(w, "\nTable '%s':\n", name)
			recs := s.tables[name]
			if len(recs) == 0 {
				fmt.Fprintln(w, "  (empty)")
				continue
			}
			for i, r := range recs {
				fmt.Fprintf(w, "  Record %d: %s\n", i+1, renderRecord(r))
			}
		}
		return
	}

	recs, ok := s.tables[table]
	if !ok {
		fmt.Fprintf(w, "Table '%s' does not exist.\n", table)
		return
	}
	if len(recs) == 0 {
		fmt.Fprintf(w, "Table '%s' is empty.\n", table)
		return
	}

	fmt.Fprintf(w, "Table '%s':\n", table)
	for i, r := range recs {
		fmt.Fprintf(w, "Record %d: %s\n", i+1, renderRecord(r))
	}
}

// renderRecord renders a record as compact JSON. json.Marshal sorts map
// keys, so the output is deterministic.
func renderRecord(r record.Record) string {
	data, err := json.Marshal(r)
	if err != nil {
		// Records are normalized on the way in, so this should not happen.
		return fmt.Sprintf("%v", map[string]any(r))
	}
	return string(data)
}
