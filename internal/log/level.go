package log

import (
	"log/slog"
	"strings"
)

// ParseLevel converts a string to a slog.Level.
// Valid values: "debug", "info", "warn", "error" (case insensitive).
// Returns slog.LevelInfo if the string is not recognized.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
