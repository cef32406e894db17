// Package log configures the console's process-wide structured logger.
// Output goes to stderr so stdout stays clean for command results: the
// project tables, exported JSON and the event feed.
package log

import (
	"log/slog"
	"os"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Setup installs the default logger at the named level. The level names are
// the ones the config layer validates; anything else falls back to info.
func Setup(logLevel string) {
	level, ok := levels[logLevel]
	if !ok {
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule scopes a logger to one subsystem of the console (api, sse,
// editor, ...), so interleaved stream and saver output stays attributable.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
