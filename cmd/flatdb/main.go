// Command flatdb is a thin command-line wrapper around the record store.
// Every subcommand loads the document, runs one operation, and (for
// mutations) persists the result.
package main

import (
	"log/slog"
	"os"

	"github.com/flatdb/flatdb/internal/logging"
)

func main() {
	rootCmd := newRootCommand()

	// Flags are parsed by Execute, so set up logging lazily from the
	// persistent pre-run instead of here.
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// setupLogging installs the global logger once flags are known.
func setupLogging(verbose bool) func() {
	logger, closeFn := logging.Setup(verbose)
	slog.SetDefault(logger)
	return closeFn
}
