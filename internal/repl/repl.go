// Package repl implements the interactive shell over a record store.
package repl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/flatdb/flatdb/internal/record"
	"github.com/flatdb/flatdb/internal/store"
)

const helpText = `Commands:
  insert <table> <record-json>          append a record
  query <table> [query-json]            list records, optionally filtered
  update <table> <query-json> <updates-json>
                                        merge updates into matching records
  delete <table> <query-json>           remove matching records
                                        (an empty query {} removes them ALL)
  show [table]                          render one table or all tables
  tables                                list tables with record counts
  save                                  persist the database to disk
  help                                  show this help
  exit                                  save and quit (also: quit, \q)`

// Start runs the shell until in is exhausted or the user exits. The store
// is persisted on exit.
func Start(s *store.Store, in io.Reader, out io.Writer, logger *slog.Logger) error {
	// Tag every log line of this shell session.
	logger = logger.With(slog.String("session", uuid.New().String()))
	logger.Info("repl session started", slog.String("path", s.Path()))

	scanner := bufio.NewScanner(in)
	fmt.Fprintf(out, "flatdb — %s\n", s.Path())
	fmt.Fprintln(out, "Type 'help' for commands, 'exit' to quit.")

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == `\q` {
			break
		}

		if err := execute(s, out, line); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}

	if err := s.Persist(); err != nil {
		logger.Error("failed to save database on exit", slog.Any("error", err))
		return err
	}
	logger.Info("repl session ended")
	return scanner.Err()
}

func execute(s *store.Store, out io.Writer, line string) error {
	cmd, rest := splitCommand(line)

	switch cmd {
	case "help":
		fmt.Fprintln(out, helpText)
		return nil

	case "tables":
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TABLE\tRECORDS")
		for _, name := range s.Tables() {
			fmt.Fprintf(tw, "%s\t%d\n", name, s.Len(name))
		}
		return tw.Flush()

	case "show":
		s.Report(out, strings.TrimSpace(rest))
		return nil

	case "save":
		if err := s.Persist(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Saved.")
		return nil

	case "insert":
		table, args, err := tableAndArgs(rest)
		if err != nil {
			return err
		}
		var rec record.Record
		if err := decodeArgs(args, &rec); err != nil {
			return err
		}
		if err := s.Insert(table, rec); err != nil {
			return err
		}
		fmt.Fprintf(out, "Inserted into '%s' (%d records).\n", table, s.Len(table))
		return nil

	case "query":
		table, args, err := tableAndArgs(rest)
		if err != nil {
			return err
		}
		var q record.Query
		if strings.TrimSpace(args) != "" {
			if err := decodeArgs(args, (*record.Record)(&q)); err != nil {
				return err
			}
		}
		recs, err := s.Query(table, q)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Fprintln(out, "No records.")
			return nil
		}
		for i, r := range recs {
			data, err := json.Marshal(r)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Record %d: %s\n", i+1, data)
		}
		return nil

	case "update":
		table, args, err := tableAndArgs(rest)
		if err != nil {
			return err
		}
		var q, updates record.Record
		if err := decodeArgs(args, &q, &updates); err != nil {
			return err
		}
		updated, err := s.UpdateWhere(table, record.Query(q), updates)
		if err != nil {
			return err
		}
		if updated {
			fmt.Fprintln(out, "Updated.")
		} else {
			fmt.Fprintln(out, "No records matched.")
		}
		return nil

	case "delete":
		table, args, err := tableAndArgs(rest)
		if err != nil {
			return err
		}
		var q record.Record
		if err := decodeArgs(args, &q); err != nil {
			return err
		}
		removed, err := s.DeleteWhere(table, record.Query(q))
		if err != nil {
			return err
		}
		if removed {
			fmt.Fprintln(out, "Deleted.")
		} else {
			fmt.Fprintln(out, "No records matched.")
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
}

// splitCommand splits a line into the command word and the remainder.
func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// tableAndArgs splits "users {...}" into the table name and the JSON tail.
func tableAndArgs(rest string) (string, string, error) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", "", fmt.Errorf("missing table name")
	}
	parts := strings.SplitN(rest, " ", 2)
	if len(parts) == 1 {
		return parts[0], "", nil
	}
	return parts[0], parts[1], nil
}

// decodeArgs decodes consecutive JSON objects from args into dsts, so a
// single line can carry both a query and an updates document.
func decodeArgs(args string, dsts ...*record.Record) error {
	dec := json.NewDecoder(strings.NewReader(args))
	for i, dst := range dsts {
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("argument %d: expected a JSON object: %w", i+1, err)
		}
	}
	if dec.More() {
		return fmt.Errorf("unexpected trailing input")
	}
	return nil
}
