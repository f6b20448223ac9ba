// Package logger builds the structured loggers used by every host.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a leveled logger writing to w. Unknown levels fall back to info.
func New(w io.Writer, level, prefix string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	})
	if err != nil {
		l.Warn("unknown log level, using info", "level", level)
	}
	return l
}

// Stderr creates a logger on os.Stderr.
func Stderr(level, prefix string) *log.Logger {
	return New(os.Stderr, level, prefix)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
