package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"loud", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestFormatMessage(t *testing.T) {
	params := map[string]any{"name": "build", "n": 3}

	require.Equal(t, "plain", FormatMessage("plain", params))
	require.Equal(t, "ran build 3 times", FormatMessage("ran {name} {n} times", params))
	require.Equal(t, "keep {missing}", FormatMessage("keep {missing}", params))
	require.Equal(t, "{literal}", FormatMessage("{{literal}}", params))
	require.Equal(t, "open {name", FormatMessage("open {name", params))
}

func TestFormatElapsed(t *testing.T) {
	require.Equal(t, " 0:00.00", FormatElapsed(0))
	require.Equal(t, " 0:01.50", FormatElapsed(1500*time.Millisecond))
	require.Equal(t, " 1:02.25", FormatElapsed(62250*time.Millisecond))
	require.Equal(t, "12:00.00", FormatElapsed(12*time.Minute))
	require.Equal(t, " 0:00.00", FormatElapsed(-time.Second))
}

func TestManager_TerminalElapsed(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	var buf bytes.Buffer

	m, err := NewManager(Options{Terminal: &buf, Start: clock.t, Now: clock.now})
	require.NoError(t, err)

	clock.advance(2 * time.Second)
	m.Info("first")
	clock.advance(3 * time.Second)
	m.Info("second %d", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, []string{" 0:02.00 first", " 0:05.00 second 2"}, lines)
}

func TestManager_TerminalInterval(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	var buf bytes.Buffer

	m, err := NewManager(Options{Terminal: &buf, Start: clock.t, Now: clock.now, Interval: true})
	require.NoError(t, err)

	clock.advance(2 * time.Second)
	m.Info("first")
	clock.advance(3 * time.Second)
	m.Info("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, []string{" 0:02.00 first", " 0:03.00 second"}, lines)
}

func TestManager_NoTimes(t *testing.T) {
	var buf bytes.Buffer

	m, err := NewManager(Options{Terminal: &buf, NoTimes: true})
	require.NoError(t, err)

	m.Warn("careful")
	require.Equal(t, "careful\n", buf.String())
}

func TestManager_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	m, err := NewManager(Options{Terminal: &buf, NoTimes: true})
	require.NoError(t, err)

	m.Debug("hidden")
	m.Info("shown")
	require.Equal(t, "shown\n", buf.String())

	buf.Reset()
	m.SetLevel(slog.LevelDebug)
	m.Debug("now visible")
	require.Equal(t, "now visible\n", buf.String())
}

func TestManager_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer

	m, err := NewManager(Options{Terminal: &buf, NoTimes: true, Verbose: true, Level: slog.LevelError})
	require.NoError(t, err)

	m.Debug("debug line")
	require.Equal(t, "debug line\n", buf.String())
}

func TestManager_LogStructured(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "mach.json")

	m, err := NewManager(Options{Terminal: &buf, NoTimes: true, LogFile: path})
	require.NoError(t, err)

	m.Log(slog.LevelInfo, "commands.dispatch", map[string]any{"command": "build"}, "Running {command}")
	m.Debug("only in file")
	require.NoError(t, m.Close())

	require.Equal(t, "Running build\n", buf.String())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.Len(t, records, 2)
	require.Equal(t, "Running build", records[0]["msg"])
	require.Equal(t, "commands.dispatch", records[0]["action"])
	require.Equal(t, map[string]any{"command": "build"}, records[0]["params"])
	require.Equal(t, "only in file", records[1]["msg"])
	require.Equal(t, "DEBUG", records[1]["level"])
}

func TestManager_NilSafe(t *testing.T) {
	var m *Manager
	m.Info("nothing")
	m.Log(slog.LevelInfo, "x", nil, "y")
	require.NoError(t, m.Close())
}

func TestJournalKey(t *testing.T) {
	require.Equal(t, "ACTION", journalKey("action"))
	require.Equal(t, "PARAMS_COMMAND", journalKey("params.command"))
}

func TestNopLogger(t *testing.T) {
	var l NopLogger
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
	require.NoError(t, l.Close())
}
