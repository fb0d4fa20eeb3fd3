// Package ui provides terminal output helpers: a writer that pages long
// output and prompts that fall back to their defaults when mach runs
// non-interactively.
//
// The pager runs whatever command ui.pager or $PAGER names, the way git
// and man do.
package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"

	"github.com/footprint-tools/mach/internal/domain"
)

// Writer implements domain.OutputWriter.
type Writer struct {
	out           io.Writer
	pagerDisabled bool
	configGetter  func(string) (string, bool)
	envGetter     func(string) string
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithPagerDisabled disables the pager.
func WithPagerDisabled() WriterOption {
	return func(w *Writer) {
		w.pagerDisabled = true
	}
}

// WithConfigGetter sets where the ui.pager setting is read from.
func WithConfigGetter(fn func(string) (string, bool)) WriterOption {
	return func(w *Writer) {
		w.configGetter = fn
	}
}

// WithEnvGetter sets the environment variable getter function.
func WithEnvGetter(fn func(string) string) WriterOption {
	return func(w *Writer) {
		w.envGetter = fn
	}
}

// NewWriter creates a Writer writing to out.
func NewWriter(out io.Writer, opts ...WriterOption) *Writer {
	w := &Writer{
		out:       out,
		envGetter: os.Getenv,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (n int, err error) {
	return w.out.Write(p)
}

// Printf formats and prints to the output.
func (w *Writer) Printf(format string, args ...any) (int, error) {
	return fmt.Fprintf(w.out, format, args...)
}

// Println prints a line to the output.
func (w *Writer) Println(args ...any) (int, error) {
	return fmt.Fprintln(w.out, args...)
}

// PagerCommand returns the pager to use, or "" to print directly.
//
// Precedence:
//  1. pager disabled, or output not a terminal → direct output
//  2. ui.pager setting
//  3. $MACH_PAGER, then $PAGER
//  4. "less -FRSX"
//
// A pager of "cat" means direct output.
func (w *Writer) PagerCommand() string {
	if w.pagerDisabled || !IsTerminal(w.out) {
		return ""
	}

	cmd := "less -FRSX"
	if w.configGetter != nil {
		if v, ok := w.configGetter("ui.pager"); ok && strings.TrimSpace(v) != "" {
			cmd = v
		}
	} else if w.envGetter != nil {
		for _, key := range []string{"MACH_PAGER", "PAGER"} {
			if v := w.envGetter(key); v != "" {
				cmd = v
				break
			}
		}
	}

	if strings.TrimSpace(cmd) == "cat" {
		return ""
	}
	return cmd
}

// Pager displays content through a pager if appropriate.
func (w *Writer) Pager(content string) {
	pagerCmd := w.PagerCommand()
	parts := strings.Fields(pagerCmd)
	if len(parts) == 0 {
		fmt.Fprint(w.out, content)
		return
	}

	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = w.out
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprint(w.out, content)
	}
}

// IsTerminal reports whether v is an *os.File attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Verify Writer implements domain.OutputWriter
var _ domain.OutputWriter = (*Writer)(nil)
