// Package logging builds the structured logger shared by every build step.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w. Debug records are only emitted
// when verbose is set. Timestamps are dropped since output is read by
// people following a build, not collected.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns log, or a discarding logger when log is nil
func OrDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return Discard()
	}

	return log
}
