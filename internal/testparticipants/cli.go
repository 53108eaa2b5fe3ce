package testparticipants

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/santa/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging initializes the logger, teeing to logFile when one is given.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, file)
		closer = file
	}

	if err := logger.InitWithWriter(w); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closer, nil
}

// ShowHelp prints usage information for the fixture tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Santa Participant Fixture Tool
==============================

Generates a roster of fake participants, saves it as a dated CSV artifact,
and checks that it reloads intact and can be assigned.

Usage:
  go run ./cmd/test-participants [options]

Options:
  -count int
        Number of participants to generate (default 12)
  -domain string
        Email domain (default "example.com")
  -dir string
        Directory for the artifact (default ".")
  -suffix string
        Artifact name suffix (default "_fixture")
  -tricky
        Include names with commas, quotes and non-ASCII text
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  go run ./cmd/test-participants -count 30 -tricky
  santa dispatch --file 12-24-2026_fixture.csv --dry-run
`)
}
