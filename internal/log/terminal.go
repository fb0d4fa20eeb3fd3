package log

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// TerminalHandler writes human-readable lines prefixed with elapsed time.
// Record attributes are not rendered; the message is expected to already
// carry the formatted parameters.
type TerminalHandler struct {
	state *terminalState
	level slog.Leveler
}

type terminalState struct {
	mu       sync.Mutex
	out      io.Writer
	start    time.Time
	last     time.Time
	interval bool
	noTimes  bool
	now      func() time.Time
}

// TerminalOptions configures a TerminalHandler.
type TerminalOptions struct {
	Level    slog.Leveler
	Start    time.Time
	Interval bool // prefix with time since the previous line instead of since start
	NoTimes  bool // omit the prefix entirely
	Now      func() time.Time
}

// NewTerminalHandler creates a handler writing to out.
func NewTerminalHandler(out io.Writer, opts TerminalOptions) *TerminalHandler {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	start := opts.Start
	if start.IsZero() {
		start = now()
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	return &TerminalHandler{
		state: &terminalState{
			out:      out,
			start:    start,
			last:     start,
			interval: opts.Interval,
			noTimes:  opts.NoTimes,
			now:      now,
		},
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *TerminalHandler) Handle(_ context.Context, record slog.Record) error {
	s := h.state
	s.mu.Lock()
	defer s.mu.Unlock()

	line := record.Message
	if !s.noTimes {
		now := s.now()
		since := s.start
		if s.interval {
			since = s.last
		}
		s.last = now
		line = FormatElapsed(now.Sub(since)) + " " + line
	}

	_, err := io.WriteString(s.out, line+"\n")
	return err
}

// WithAttrs implements slog.Handler.
func (h *TerminalHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler.
func (h *TerminalHandler) WithGroup(_ string) slog.Handler {
	return h
}

var _ slog.Handler = (*TerminalHandler)(nil)
