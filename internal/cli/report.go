package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/footprint-tools/mach/internal/dispatchers"
	"github.com/footprint-tools/mach/internal/store"
	"github.com/footprint-tools/mach/internal/ui/style"
	"github.com/footprint-tools/mach/internal/usage"
)

const handlerTemplate = `The error occurred in the implementation of the invoked mach command.

This should never happen and is likely a bug in the implementation of
that command.
`

const moduleTemplate = `The error occurred in code that was called by the mach command. This is
either a bug in the called code itself or in the way that mach is
calling it.
`

const frameworkTemplate = `The error occurred in mach itself. This is likely a bug in mach or a
fundamental problem with a loaded command provider.

You should consider filing a bug for this issue.
`

// maxUserFrames bounds the stack printed for a UserError.
const maxUserFrames = 5

// ReportSink stores error reports and returns their id.
type ReportSink interface {
	Insert(r store.Report) (string, error)
}

// Reporter prints a failed invocation and maps it to an exit code.
type Reporter struct {
	Stderr io.Writer
	// Sink is nil when reports are not stored.
	Sink ReportSink
}

// frameworkPanic is a panic recovered outside any command handler.
type frameworkPanic struct {
	value any
	stack string
}

func (p *frameworkPanic) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

// Report prints err for the invocation argv and returns the exit code.
func (rp *Reporter) Report(err error, argv []string) int {
	if err == nil {
		return 0
	}

	var (
		uerr    *usage.Error
		failed  *dispatchers.FailedCommandError
		user    *dispatchers.UserError
		handler *dispatchers.HandlerError
	)
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(rp.Stderr, "mach interrupted by signal or user action. Stopping.")
		return 1

	case errors.As(err, &uerr):
		rp.usage(uerr)
		return uerr.GetExitCode()

	case errors.As(err, &failed):
		if failed.Message != "" {
			fmt.Fprintln(rp.Stderr, style.Error(failed.Message))
		}
		if failed.ExitCode <= 0 {
			return 1
		}
		return failed.ExitCode

	case errors.As(err, &user):
		fmt.Fprintf(rp.Stderr, "%s %s\n", style.Error("Error:"), user.Error())
		if stack := trimStack(user.Stack(), maxUserFrames); stack != "" {
			fmt.Fprintf(rp.Stderr, "\n%s\n%s", style.Muted("Raised at:"), stack)
		}
		return 1

	case errors.As(err, &handler):
		kind, template := store.KindHandler, handlerTemplate
		if handler.Kind == dispatchers.KindModule {
			kind, template = store.KindModule, moduleTemplate
		}
		rp.bug(template, store.Report{
			Command: handler.Command,
			Kind:    kind,
			Message: handler.Err.Error(),
			Stack:   handler.Stack,
			Source:  handler.Source,
			Argv:    argv,
		})
		return 1

	default:
		r := store.Report{Kind: store.KindFramework, Message: err.Error(), Argv: argv}
		var p *frameworkPanic
		if errors.As(err, &p) {
			r.Stack = p.stack
		}
		rp.bug(frameworkTemplate, r)
		return 1
	}
}

func (rp *Reporter) usage(e *usage.Error) {
	fmt.Fprintln(rp.Stderr, e.Message)
	switch len(e.Suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(rp.Stderr, "\nDid you mean '%s'?\n", e.Suggestions[0])
	default:
		fmt.Fprintln(rp.Stderr, "\nDid you mean one of these?")
		for _, s := range e.Suggestions {
			fmt.Fprintf(rp.Stderr, "    %s\n", s)
		}
	}
}

func (rp *Reporter) bug(template string, r store.Report) {
	var b strings.Builder
	b.WriteString(style.Error("Error running mach:"))
	b.WriteString("\n\n")
	if len(r.Argv) > 0 {
		fmt.Fprintf(&b, "    mach %s\n\n", strings.Join(r.Argv, " "))
	}
	b.WriteString(template)
	b.WriteString("\n")
	b.WriteString(r.Message)
	b.WriteString("\n")
	if r.Stack != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(r.Stack, "\n"))
		b.WriteString("\n")
	}

	if rp.Sink != nil {
		if id, err := rp.Sink.Insert(r); err == nil {
			fmt.Fprintf(&b, "\nError report id: %s (see 'mach reports show %s')\n", id, shortID(id))
		}
	}
	io.WriteString(rp.Stderr, b.String())
}

// trimStack keeps at most max frames of a UserError stack, dropping the
// dispatcher and runtime frames below the handler.
func trimStack(stack string, max int) string {
	lines := strings.Split(strings.TrimRight(stack, "\n"), "\n")
	var b strings.Builder
	kept := 0
	for i := 0; i+1 < len(lines) && kept < max; i += 2 {
		fn := lines[i]
		if strings.HasPrefix(fn, "runtime.") || strings.Contains(fn, "/internal/dispatchers.") {
			continue
		}
		b.WriteString(fn)
		b.WriteString("\n")
		b.WriteString(lines[i+1])
		b.WriteString("\n")
		kept++
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
