// Package cli carries the logging, progress and terminal helpers shared
// by the kicad2fec commands and the conversion pipeline.
//
// Loggers are passed through context.Context so pipeline stages can log
// without threading a logger argument through every call.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger creates a logger with timestamp formatting. The logger
// writes to w and filters messages at the specified level. Timestamps
// are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// Progress tracks the start time of an operation and logs completion
// with the elapsed duration. Safe for sequential use by a single
// goroutine.
type Progress struct {
	logger *log.Logger
	start  time.Time
}

// NewProgress creates a progress tracker that captures the current time
// as start.
func NewProgress(l *log.Logger) *Progress {
	return &Progress{logger: l, start: time.Now()}
}

// Done logs msg along with the elapsed time since the tracker was
// created, rounded to the nearest millisecond.
func (p *Progress) Done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package. Using a
// distinct type prevents collisions with other packages.
type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a new context with the given logger attached.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// LoggerFromContext retrieves the logger from ctx. If no logger is
// attached it returns log.Default(), so callers always have a valid
// logger even if context setup fails.
func LoggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// Stage runs one pipeline stage with a progress spinner and logs the
// elapsed time when it finishes. The spinner is skipped entirely at
// debug level, where it would interleave with the log output.
func Stage(ctx context.Context, name string, fn func() error) error {
	logger := LoggerFromContext(ctx)
	progress := NewProgress(logger)

	var spinner *Spinner
	if logger.GetLevel() > log.DebugLevel {
		spinner = NewSpinnerWithContext(ctx, name)
		spinner.Start()
	}

	err := fn()

	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	progress.Done(name)
	return nil
}
