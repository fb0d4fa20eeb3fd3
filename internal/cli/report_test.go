package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/mach/internal/dispatchers"
	"github.com/footprint-tools/mach/internal/store"
	"github.com/footprint-tools/mach/internal/testutil"
	"github.com/footprint-tools/mach/internal/usage"
)

func newReporter(t *testing.T) (*Reporter, *bytes.Buffer, *store.Store) {
	t.Helper()
	var stderr bytes.Buffer
	s := store.NewWithDB(testutil.NewTestDB(t))
	return &Reporter{Stderr: &stderr, Sink: s}, &stderr, s
}

func reportCount(t *testing.T, s *store.Store) int {
	t.Helper()
	n, err := s.Count()
	require.NoError(t, err)
	return n
}

func TestReport_Nil(t *testing.T) {
	rp, stderr, _ := newReporter(t)
	require.Equal(t, 0, rp.Report(nil, nil))
	require.Empty(t, stderr.String())
}

func TestReport_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{name: "no command", err: usage.NoCommand(), want: []string{"no command given"}},
		{name: "one suggestion", err: usage.UnknownCommand("run", "fo", "foo"), want: []string{"'fo' is not a mach command", "Did you mean 'foo'?"}},
		{name: "several suggestions", err: usage.UnknownCommand("run", "bui", "build", "buildsymbols"), want: []string{"Did you mean one of these?\n    build\n    buildsymbols\n"}},
		{name: "unrecognized", err: usage.UnrecognizedArguments("settings get", []string{"--bogus"}), want: []string{"unrecognized arguments for settings get: --bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp, stderr, s := newReporter(t)

			require.Equal(t, 1, rp.Report(tt.err, []string{"x"}))
			for _, w := range tt.want {
				require.Contains(t, stderr.String(), w)
			}
			require.Equal(t, 0, reportCount(t, s))
		})
	}
}

func TestReport_FailedCommandKeepsCode(t *testing.T) {
	rp, stderr, s := newReporter(t)

	require.Equal(t, 7, rp.Report(dispatchers.NewFailedCommand(7, "build failed"), nil))
	require.Contains(t, stderr.String(), "build failed")
	require.Equal(t, 0, reportCount(t, s))
}

func TestReport_UserErrorNotStored(t *testing.T) {
	rp, stderr, s := newReporter(t)

	err := dispatchers.NewUserError("no such file: %s", "moz.build")
	require.Equal(t, 1, rp.Report(err, []string{"build"}))

	out := stderr.String()
	require.Contains(t, out, "Error: no such file: moz.build")
	require.Contains(t, out, "Raised at:")
	require.Contains(t, out, "TestReport_UserErrorNotStored")
	require.NotContains(t, out, "mach itself")
	require.Equal(t, 0, reportCount(t, s))
}

func TestReport_HandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		kind     dispatchers.HandlerKind
		template string
		stored   store.Kind
	}{
		{name: "handler", kind: dispatchers.KindHandler, template: "implementation of the invoked mach command", stored: store.KindHandler},
		{name: "module", kind: dispatchers.KindModule, template: "code that was called by the mach command", stored: store.KindModule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp, stderr, s := newReporter(t)
			err := &dispatchers.HandlerError{
				Command: "build",
				Source:  "/src/build.go",
				Kind:    tt.kind,
				Err:     errors.New("nil map"),
				Stack:   "goroutine 1 [running]:",
			}

			require.Equal(t, 1, rp.Report(err, []string{"build", "-j4"}))

			out := stderr.String()
			require.Contains(t, out, "Error running mach:\n\n    mach build -j4\n")
			require.Contains(t, out, tt.template)
			require.Contains(t, out, "nil map\n")
			require.Contains(t, out, "goroutine 1 [running]:")

			reports, lerr := s.List(store.ReportFilter{})
			require.NoError(t, lerr)
			require.Len(t, reports, 1)
			r := reports[0]
			require.Equal(t, tt.stored, r.Kind)
			require.Equal(t, "build", r.Command)
			require.Equal(t, "/src/build.go", r.Source)
			require.Equal(t, []string{"build", "-j4"}, r.Argv)
			require.Contains(t, out, fmt.Sprintf("Error report id: %s (see 'mach reports show %s')", r.ID, r.ID[:8]))
		})
	}
}

func TestReport_FrameworkBug(t *testing.T) {
	rp, stderr, s := newReporter(t)

	err := &dispatchers.FrameworkError{Message: "loading provider for \"doc\"", Err: errors.New("boom")}
	require.Equal(t, 1, rp.Report(err, []string{"doc"}))
	require.Contains(t, stderr.String(), "The error occurred in mach itself.")

	reports, lerr := s.List(store.ReportFilter{})
	require.NoError(t, lerr)
	require.Len(t, reports, 1)
	require.Equal(t, store.KindFramework, reports[0].Kind)
}

func TestReport_FrameworkPanicKeepsStack(t *testing.T) {
	rp, stderr, _ := newReporter(t)

	rp.Report(&frameworkPanic{value: "index out of range", stack: "main.go:10"}, nil)
	require.Contains(t, stderr.String(), "panic: index out of range\n\nmain.go:10\n")
}

func TestReport_Interrupted(t *testing.T) {
	rp, stderr, s := newReporter(t)

	err := fmt.Errorf("waiting for build: %w", context.Canceled)
	require.Equal(t, 1, rp.Report(err, nil))
	require.Contains(t, stderr.String(), "mach interrupted by signal")
	require.Equal(t, 0, reportCount(t, s))
}

func TestReport_WithoutSink(t *testing.T) {
	var stderr bytes.Buffer
	rp := &Reporter{Stderr: &stderr}

	rp.Report(errors.New("boom"), nil)
	require.Contains(t, stderr.String(), "boom")
	require.NotContains(t, stderr.String(), "Error report id")
}

func TestTrimStack(t *testing.T) {
	stack := "main.handler\n\t/src/a.go:1\n" +
		"github.com/footprint-tools/mach/internal/dispatchers.(*Registry).callHandler\n\t/src/d.go:2\n" +
		"runtime.goexit\n\t/go/asm.s:3\n" +
		"main.one\n\t/src/b.go:4\n" +
		"main.two\n\t/src/b.go:5\n"

	require.Equal(t, "main.handler\n\t/src/a.go:1\nmain.one\n\t/src/b.go:4\n", trimStack(stack, 2))
}
