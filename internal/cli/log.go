// Package cli implements the fsdcheck command-line interface.
//
// # Commands
//
// The main commands are:
//   - check: Evaluate a dependency graph against the policy and report violations
//   - render: Draw the (collapsed) graph as DOT, SVG, HTML, PDF or PNG
//   - browse: Explore violations interactively
//   - serve: Run the HTTP API
//   - init: Write a starter policy file
//   - cache: Manage the report and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs pipeline, cache and HTTP events.
//
// # Exit status
//
// check returns a POLICY_FAILURE error when error-severity violations exist;
// main maps it to exit status 1, configuration and input errors to 2.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
