package usage

import "strings"

// ErrorKind represents the type of usage error.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrNoCommand
	ErrUnknownCommand
	ErrUnrecognizedArguments
	ErrInvalidFlag
	ErrMissingArgument
	ErrInvalidSettingKey
	ErrInvalidSettingValue
)

// Exit codes:
//
//	Exit 1: every resolution failure. mach reserves other non-zero codes
//	for commands that request them explicitly.
var exitCodes = map[ErrorKind]int{
	ErrUnknown:               1,
	ErrNoCommand:             1,
	ErrUnknownCommand:        1,
	ErrUnrecognizedArguments: 1,
	ErrInvalidFlag:           1,
	ErrMissingArgument:       1,
	ErrInvalidSettingKey:     1,
	ErrInvalidSettingValue:   1,
}

// Error represents a user-facing usage error with semantic type information.
type Error struct {
	Kind    ErrorKind
	Message string

	// Verb is the intent of the invocation ("run", "get help for").
	Verb string
	// Command is the command the error refers to, including the subcommand.
	Command string
	// Suggestions holds close matches for an unknown command.
	Suggestions []string
	// Arguments holds the rejected arguments.
	Arguments []string

	ExitCode int // computed from Kind if zero
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// GetExitCode returns the appropriate exit code for this error.
// If ExitCode is explicitly set, it is returned; otherwise, the code is derived from Kind.
func (e *Error) GetExitCode() int {
	if e.ExitCode != 0 {
		return e.ExitCode
	}
	if code, ok := exitCodes[e.Kind]; ok {
		return code
	}
	return 1
}

// Is reports whether target is a usage error of the same kind, so callers can
// match with errors.Is(err, &usage.Error{Kind: usage.ErrUnknownCommand}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func quoteAll(items []string) string {
	return strings.Join(items, " ")
}

// Verify Error implements the error interface.
var _ error = (*Error)(nil)
