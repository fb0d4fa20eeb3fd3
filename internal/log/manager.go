// Package log sets up mach's logging: a terminal sink with elapsed-time
// prefixes, an optional JSON-per-line file sink and an optional systemd
// journal sink, fanned out from one slog.Logger.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"

	"github.com/footprint-tools/mach/internal/domain"
)

// Options configures a Manager.
type Options struct {
	Terminal io.Writer  // defaults to os.Stderr
	Level    slog.Level // terminal level, raised to debug by Verbose
	Verbose  bool

	LogFile  string // JSON-per-line sink, always at debug level
	Interval bool
	NoTimes  bool
	Journal  bool

	Start time.Time
	Now   func() time.Time
}

// Manager owns the configured sinks and the logger fanning out to them.
type Manager struct {
	logger *slog.Logger
	level  *slog.LevelVar
	start  time.Time

	mu      sync.Mutex
	closers []io.Closer
}

// NewManager builds the logger described by opts.
func NewManager(opts Options) (*Manager, error) {
	terminal := opts.Terminal
	if terminal == nil {
		terminal = os.Stderr
	}

	level := new(slog.LevelVar)
	level.Set(opts.Level)
	if opts.Verbose {
		level.Set(slog.LevelDebug)
	}

	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}

	m := &Manager{level: level, start: start}

	terminalHandler := NewTerminalHandler(terminal, TerminalOptions{
		Level:    level,
		Start:    start,
		Interval: opts.Interval,
		NoTimes:  opts.NoTimes,
		Now:      opts.Now,
	})
	handlers := []slog.Handler{terminalHandler}

	if opts.LogFile != "" {
		f, err := openLogFile(opts.LogFile)
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, f)
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	if opts.Journal {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			Level:        level,
			ReplaceGroup: journalKey,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				a.Key = journalKey(a.Key)
				return a
			},
		})
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, fmt.Sprintf("journal logging unavailable: %v", err), 0)
			_ = terminalHandler.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journalHandler)
		}
	}

	m.logger = slog.New(slogmulti.Fanout(handlers...))
	return m, nil
}

// journalKey maps an attribute key to the journal's field alphabet.
func journalKey(key string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(key))
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Logger returns the underlying slog logger.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Start returns the time elapsed prefixes are measured from.
func (m *Manager) Start() time.Time {
	return m.start
}

// SetLevel changes the terminal level.
func (m *Manager) SetLevel(level slog.Level) {
	m.level.Set(level)
}

// Log emits a structured event. format may reference params as {key};
// the terminal shows the formatted message, structured sinks get the
// action and params as attributes.
func (m *Manager) Log(level slog.Level, action string, params map[string]any, format string) {
	if m == nil {
		return
	}
	msg := FormatMessage(format, params)
	attrs := []slog.Attr{slog.String("action", action)}
	if len(params) > 0 {
		attrs = append(attrs, slog.Any("params", params))
	}
	m.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func (m *Manager) logf(level slog.Level, format string, args ...any) {
	if m == nil {
		return
	}
	m.logger.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

// Debug writes a debug message.
func (m *Manager) Debug(format string, args ...any) { m.logf(slog.LevelDebug, format, args...) }

// Info writes an informational message.
func (m *Manager) Info(format string, args ...any) { m.logf(slog.LevelInfo, format, args...) }

// Warn writes a warning.
func (m *Manager) Warn(format string, args ...any) { m.logf(slog.LevelWarn, format, args...) }

// Error writes an error.
func (m *Manager) Error(format string, args ...any) { m.logf(slog.LevelError, format, args...) }

// Close closes file sinks.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

// NopLogger is a logger that discards all messages.
// Useful for testing or when logging is disabled.
type NopLogger struct{}

func (NopLogger) Debug(_ string, _ ...any) {}
func (NopLogger) Info(_ string, _ ...any)  {}
func (NopLogger) Warn(_ string, _ ...any)  {}
func (NopLogger) Error(_ string, _ ...any) {}
func (NopLogger) Close() error             { return nil }

// Verify Manager implements domain.Logger
var _ domain.Logger = (*Manager)(nil)
var _ domain.Logger = NopLogger{}
