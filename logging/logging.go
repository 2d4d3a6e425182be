// Package logging wires up the process-wide structured logger the CLI
// runner builds and hands to simcontext.New. The reporter's operational
// logs go through zerolog instead, not through this logger. The simulation core takes a *slog.Logger directly (see simcontext.New)
// rather than reading a package global, so tests never have to fight
// global logger state.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds a JSON slog.Logger at the given level ("debug", "info",
// "warn", "error") and installs it as the process default, mirroring the
// level-string-to-slog.Level switch the rest of this codebase's ambient
// stack uses.
func Setup(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// Text builds a human-readable text-handler logger for interactive CLI
// use (the `simrunner run --pretty` path), as opposed to the JSON
// handler Setup installs for production/service use.
func Text(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
