package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flatdb/flatdb/internal/codec"
	"github.com/flatdb/flatdb/internal/record"
	"github.com/flatdb/flatdb/internal/repl"
	"github.com/flatdb/flatdb/internal/store"
)

var (
	// Global flags
	dbPath  string
	format  string
	verbose bool
)

func newRootCommand() *cobra.Command {
	var closeLogs func()

	rootCmd := &cobra.Command{
		Use:   "flatdb",
		Short: "flatdb - flat-file record store",
		Long: `flatdb stores named tables of schema-less records in a single
serialized document. Records are matched by exact field equality; the whole
database is held in memory and rewritten on save.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			closeLogs = setupLogging(verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeLogs != nil {
				closeLogs()
			}
		},
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "data.json", "database document path")
	rootCmd.PersistentFlags().StringVar(&format, "format", "json", "document format (json|yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newInsertCommand())
	rootCmd.AddCommand(newQueryCommand())
	rootCmd.AddCommand(newUpdateCommand())
	rootCmd.AddCommand(newDeleteCommand())
	rootCmd.AddCommand(newShowCommand())
	rootCmd.AddCommand(newTablesCommand())
	rootCmd.AddCommand(newReplCommand())

	return rootCmd
}

// openStore opens the configured document with the configured codec.
func openStore() (*store.Store, error) {
	c, err := codec.ByName(format)
	if err != nil {
		return nil, err
	}
	return store.Open(dbPath, store.WithCodec(c))
}

// parseObject decodes a single JSON object argument.
func parseObject(arg string) (record.Record, error) {
	var rec record.Record
	if err := json.Unmarshal([]byte(arg), &rec); err != nil {
		return nil, fmt.Errorf("expected a JSON object, got %q: %w", arg, err)
	}
	return rec, nil
}

func newInsertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <table> <record-json>",
		Short: "Append a record to a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := parseObject(args[1])
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			if err := s.Insert(args[0], rec); err != nil {
				return err
			}
			return s.Persist()
		},
	}
}

func newQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <table> [query-json]",
		Short: "List records, optionally filtered by exact match",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var q record.Query
			if len(args) == 2 {
				rec, err := parseObject(args[1])
				if err != nil {
					return err
				}
				q = record.Query(rec)
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			recs, err := s.Query(args[0], q)
			if err != nil {
				return err
			}
			for _, r := range recs {
				line, err := json.Marshal(r)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(line))
			}
			return nil
		},
	}
}

func newUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update <table> <query-json> <updates-json>",
		Short: "Merge updates into every matching record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseObject(args[1])
			if err != nil {
				return err
			}
			updates, err := parseObject(args[2])
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			updated, err := s.UpdateWhere(args[0], record.Query(q), updates)
			if err != nil {
				return err
			}
			if !updated {
				fmt.Fprintln(cmd.OutOrStdout(), "No records matched.")
				return nil
			}
			return s.Persist()
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <query-json>",
		Short: "Remove every matching record",
		Long: strings.TrimSpace(`
Remove every record of a table matching the query.

The query is required and is matched by exact field equality. An empty
query {} matches every record and therefore deletes the table's entire
contents. There is no guard against that; pass {} only on purpose.`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseObject(args[1])
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			removed, err := s.DeleteWhere(args[0], record.Query(q))
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "No records matched.")
				return nil
			}
			return s.Persist()
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [table]",
		Short: "Render one table or all tables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			table := ""
			if len(args) == 1 {
				table = args[0]
			}
			s.Report(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables with record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			for _, name := range s.Tables() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", name, s.Len(name))
			}
			return nil
		},
	}
}

func newReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			return repl.Start(s, os.Stdin, os.Stdout, slog.Default())
		},
	}
}
