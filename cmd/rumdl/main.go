// Package main is the entry point for the rumdl CLI.
package main

import (
	"errors"
	"os"

	"github.com/rumdl/rumdl/internal/cli"
	"github.com/rumdl/rumdl/internal/logging"

	// Import rules package to register built-in rules via init().
	_ "github.com/rumdl/rumdl/pkg/lint/rules"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Build and execute the root command.
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.Execute(); err != nil {
		// Don't log ErrLintIssuesFound - it's just a signal for exit code 1.
		if errors.Is(err, cli.ErrLintIssuesFound) {
			return 1
		}
		logger := logging.Default()
		logger.Error("command failed", logging.FieldError, err)
		// Configuration, I/O, and usage failures.
		return 2
	}

	return 0
}
