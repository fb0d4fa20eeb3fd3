package domain

import (
	"context"
	"io"
)

// ConfigProvider defines operations for reading and writing settings.
type ConfigProvider interface {
	// Get returns the value for a setting, falling back to its declared default.
	Get(key string) (string, bool)

	// GetAll returns every known setting with its effective value.
	GetAll() (map[string]string, error)

	// Set sets a setting and persists it.
	Set(key, value string) error

	// Unset removes a setting from the settings file.
	Unset(key string) error
}

// SettingsProvider contributes setting declarations to the settings schema.
type SettingsProvider interface {
	Settings() []Setting
}

// Logger defines logging operations.
type Logger interface {
	// Debug logs a debug message.
	Debug(format string, args ...any)

	// Info logs an info message.
	Info(format string, args ...any)

	// Warn logs a warning message.
	Warn(format string, args ...any)

	// Error logs an error message.
	Error(format string, args ...any)

	// Close closes the logger.
	Close() error
}

// OutputWriter defines output operations.
type OutputWriter interface {
	io.Writer

	// Printf formats and prints to the output.
	Printf(format string, args ...any) (int, error)

	// Println prints a line to the output.
	Println(args ...any) (int, error)

	// Pager displays content through a pager if appropriate.
	Pager(content string)
}

// Styler defines text styling operations.
type Styler interface {
	// Enabled returns true if styling is enabled.
	Enabled() bool

	// Success styles text as success.
	Success(text string) string

	// Warning styles text as warning.
	Warning(text string) string

	// Error styles text as error.
	Error(text string) string

	// Info styles text as info.
	Info(text string) string

	// Muted styles text as muted.
	Muted(text string) string

	// Header styles text as header.
	Header(text string) string
}

// Environment is an isolated, named runtime a command handler may require.
type Environment interface {
	// Name returns the environment name, e.g. "docs".
	Name() string

	// Activate makes the environment active for the current process,
	// creating it first when needed.
	Activate(ctx context.Context) error
}

// EnvironmentProvider resolves environment names to environments.
type EnvironmentProvider interface {
	Environment(name string) (Environment, error)
}
