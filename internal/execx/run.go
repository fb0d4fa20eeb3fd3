package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// TraceEnv echoes every command to stderr before it runs when set to "1".
const TraceEnv = "MACH_TRACE_EXEC"

// Result is the outcome of a child process.
type Result struct {
	Code int
	Err  error
}

// OK reports whether the process exited with status 0.
func (r Result) OK() bool {
	return r.Code == 0 && r.Err == nil
}

// Command describes a child process. Nil streams inherit the parent's.
type Command struct {
	Name   string
	Args   []string
	Dir    string
	Env    []string // appended to os.Environ
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner runs commands; execution environments take one so tests can stub it.
type Runner func(ctx context.Context, c Command) Result

// Run runs c and waits for it to finish.
func Run(ctx context.Context, c Command) Result {
	cmd := build(ctx, c)
	cmd.Stdin = pick(c.Stdin, io.Reader(os.Stdin))
	cmd.Stdout = pick(c.Stdout, io.Writer(os.Stdout))
	cmd.Stderr = pick(c.Stderr, io.Writer(os.Stderr))
	err := cmd.Run()
	return Result{Code: exitCode(ctx, err), Err: err}
}

// Capture runs c and returns its stdout. Stderr is still streamed.
func Capture(ctx context.Context, c Command) (string, Result) {
	cmd := build(ctx, c)
	var out bytes.Buffer
	cmd.Stdin = c.Stdin
	cmd.Stdout = &out
	cmd.Stderr = pick(c.Stderr, io.Writer(os.Stderr))
	err := cmd.Run()
	return out.String(), Result{Code: exitCode(ctx, err), Err: err}
}

func build(ctx context.Context, c Command) *exec.Cmd {
	if os.Getenv(TraceEnv) == "1" {
		fmt.Fprintf(os.Stderr, "+ %s\n", c)
	}
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

func pick[T any](v, fallback T) T {
	if any(v) == nil {
		return fallback
	}
	return v
}

func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	switch {
	case errors.As(err, &ee) && ee.ExitCode() >= 0:
		return ee.ExitCode()
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return 124
	default:
		return 1
	}
}
