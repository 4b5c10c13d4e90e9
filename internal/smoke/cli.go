// Package smoke drives a running examscore service with random feature sets
// and checks every prediction it returns.
package smoke

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/examscore/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to stdout and, when logFile is set, to that file too.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return closer, nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Examscore Smoke Tool
====================

Posts random student feature sets to a running examscore service and verifies
every prediction: score range, rounding, delta, tier and message.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -requests int
        Number of valid feature sets to predict (default 1000)
  -invalid int
        Number of out-of-range feature sets expected to be rejected (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Write every request and response to this JSON file
  -log string
        Also write log output to this file
  -verbose
        Log every prediction
  -help
        Show this help message

Examples:
  # Smoke test a local service
  go run ./cmd/smoke

  # Heavier run against another address
  go run ./cmd/smoke -requests 20000 -workers 16 -url http://localhost:8080
`)
}
