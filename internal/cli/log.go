// Package cli implements the masonry command-line interface.
//
// The CLI reads tile manifests (JSON or YAML), lays them out with the
// masonry engine and writes the result as a layout file or rendered
// artifacts. It is built using cobra and logs via charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - layout: Compute a layout and write it as JSON or YAML
//   - render: Generate SVG, PNG, JSON or text output
//   - preview: Show a live layout in the terminal that follows resizes
//   - serve: Run the HTTP API
//   - cache: Manage the layout and artifact cache
//
// # Configuration
//
// Defaults come from $XDG_CONFIG_HOME/masonry/config.toml (or --config).
// Manifest values override the file, and flags override both.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Placed 42 tiles (3ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
