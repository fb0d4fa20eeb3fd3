package dispatchers

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrInvalidResult is returned when a handler result is not an integer.
var ErrInvalidResult = errors.New("handler returned a non-integer result")

// ConfigurationError reports a malformed registration. It is raised while
// command providers register themselves, before any command runs.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// FrameworkError reports a failure inside mach itself rather than in a command.
type FrameworkError struct {
	Message string
	Err     error
}

func (e *FrameworkError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *FrameworkError) Unwrap() error {
	return e.Err
}

// FailedCommandError is returned by a handler to exit with a specific code
// and message without being treated as a bug.
type FailedCommandError struct {
	Message  string
	ExitCode int
}

// NewFailedCommand creates a FailedCommandError. A zero code becomes 1.
func NewFailedCommand(code int, format string, args ...any) *FailedCommandError {
	if code == 0 {
		code = 1
	}
	return &FailedCommandError{Message: fmt.Sprintf(format, args...), ExitCode: code}
}

func (e *FailedCommandError) Error() string {
	return e.Message
}

// UserError is returned by a handler when the user's input or environment
// is at fault. It is printed with a trimmed stack and never stored as a report.
type UserError struct {
	Message string
	Err     error
	stack   []uintptr
}

// NewUserError creates a UserError capturing the caller's stack.
func NewUserError(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...), stack: callers()}
}

// WrapUserError marks err as the user's fault.
func WrapUserError(err error, format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...), Err: err, stack: callers()}
}

// callers skips runtime.Callers and the constructor frames.
func callers() []uintptr {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	return pcs[:n]
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Stack renders the captured frames, one "function\n\tfile:line" pair per frame.
func (e *UserError) Stack() string {
	if len(e.stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// HandlerKind classifies where a handler failure originated.
type HandlerKind int

const (
	// KindHandler means the failure is in the command's own source file.
	KindHandler HandlerKind = iota
	// KindModule means the failure came from code the command called into.
	KindModule
)

func (k HandlerKind) String() string {
	if k == KindModule {
		return "module"
	}
	return "handler"
}

// HandlerError wraps a failure raised from inside a command handler with the
// command that was running and where the failure originated.
type HandlerError struct {
	Command  string
	Source   string // file the handler is defined in
	Kind     HandlerKind
	Err      error
	Stack    string
	Panicked bool
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
