// Package mlog centralizes logging backend setup, following the pattern
// valhallacoin-vhcwallet uses for decred/slog: one shared Backend writing
// to a configured output, with a Logger handed out per subsystem so log
// lines carry a short subsystem tag.
package mlog

import (
	"io"
	"os"

	"github.com/decred/slog"
)

var backend = slog.NewBackend(os.Stdout)

// SetOutput redirects the shared backend's output, e.g. to a log file
// opened by cmd/methaloxd.
func SetOutput(w io.Writer) {
	backend = slog.NewBackend(w)
}

// Logger returns a subsystem-tagged logger at the given level. Valid
// levels are slog's: Trace, Debug, Info, Warn, Error, Critical, Off.
func Logger(subsystem string, level slog.Level) slog.Logger {
	log := backend.Logger(subsystem)
	log.SetLevel(level)
	return log
}

// LevelFromString maps a config string to a slog.Level, defaulting to
// Info on an unrecognized value.
func LevelFromString(s string) slog.Level {
	lvl, ok := slog.LevelFromString(s)
	if !ok {
		return slog.LevelInfo
	}
	return lvl
}
