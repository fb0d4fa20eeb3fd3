package usage

import "fmt"

// MissingArgument is returned when a required argument is not provided.
func MissingArgument(command, arg string) *Error {
	return &Error{
		Kind:    ErrMissingArgument,
		Message: fmt.Sprintf("mach: %s: missing required argument '%s'", command, arg),
		Command: command,
	}
}
