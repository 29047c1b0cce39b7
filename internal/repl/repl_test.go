package repl

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/flatdb/flatdb/internal/record"
	"github.com/flatdb/flatdb/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "data.json"),
		store.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return s
}

// run feeds script lines to the shell and returns the combined output.
func run(t *testing.T, s *store.Store, script ...string) string {
	t.Helper()
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	var out strings.Builder
	err := Start(s, in, &out, slog.New(slog.DiscardHandler))
	assert.NilError(t, err)
	return out.String()
}

func TestSessionCRUD(t *testing.T) {
	s := newTestStore(t)
	out := run(t, s,
		`insert users {"id": 1, "name": "Ann"}`,
		`insert users {"id": 2, "name": "Bob"}`,
		`query users {"id": 2}`,
		`update users {"id": 2} {"name": "Bobby"}`,
		`delete users {"id": 1}`,
		"exit",
	)

	assert.Assert(t, strings.Contains(out, "Inserted into 'users' (1 records)."))
	assert.Assert(t, strings.Contains(out, `Record 1: {"id":2,"name":"Bob"}`))
	assert.Assert(t, strings.Contains(out, "Updated."))
	assert.Assert(t, strings.Contains(out, "Deleted."))

	recs, err := s.Query("users", nil)
	assert.NilError(t, err)
	assert.Equal(t, len(recs), 1)
	assert.DeepEqual(t, recs[0], record.Record{"id": float64(2), "name": "Bobby"})
}

func TestQueryWithoutFilterListsAll(t *testing.T) {
	s := newTestStore(t)
	out := run(t, s,
		`insert users {"id": 1}`,
		`insert users {"id": 2}`,
		"query users",
	)
	assert.Assert(t, strings.Contains(out, `Record 1: {"id":1}`))
	assert.Assert(t, strings.Contains(out, `Record 2: {"id":2}`))
}

func TestTablesAndShow(t *testing.T) {
	s := newTestStore(t)
	out := run(t, s,
		`insert users {"id": 1}`,
		"tables",
		"show users",
		"show ghosts",
	)
	assert.Assert(t, strings.Contains(out, "TABLE"))
	assert.Assert(t, strings.Contains(out, "users"))
	assert.Assert(t, strings.Contains(out, "Table 'users':"))
	assert.Assert(t, strings.Contains(out, "Table 'ghosts' does not exist."))
}

func TestErrorsDoNotEndSession(t *testing.T) {
	s := newTestStore(t)
	out := run(t, s,
		"bogus command",
		"insert",
		`insert users {"id": 1} trailing`,
		`insert users {"id": 1}`,
	)
	assert.Assert(t, strings.Contains(out, "unknown command"))
	assert.Assert(t, strings.Contains(out, "missing table name"))
	assert.Assert(t, strings.Contains(out, "trailing"))
	// The session survived the bad lines.
	assert.Equal(t, s.Len("users"), 1)
}

func TestExitPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := store.Open(path, store.WithLogger(slog.New(slog.DiscardHandler)))
	assert.NilError(t, err)

	run(t, s, `insert users {"id": 1}`, "exit")

	reopened, err := store.Open(path, store.WithLogger(slog.New(slog.DiscardHandler)))
	assert.NilError(t, err)
	assert.Equal(t, reopened.Len("users"), 1)
}

func TestDecodeArgsTwoObjects(t *testing.T) {
	var q, u record.Record
	err := decodeArgs(`{"id": 1} {"name": "x"}`, &q, &u)
	assert.NilError(t, err)
	assert.DeepEqual(t, q, record.Record{"id": float64(1)})
	assert.DeepEqual(t, u, record.Record{"name": "x"})

	err = decodeArgs(`{"id": 1}`, &q, &u)
	assert.ErrorContains(t, err, "argument 2")
}
