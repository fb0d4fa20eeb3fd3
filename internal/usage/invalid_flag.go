package usage

import "fmt"

// InvalidFlag is returned when a flag value cannot be parsed.
func InvalidFlag(command, detail string) *Error {
	return &Error{
		Kind:    ErrInvalidFlag,
		Message: fmt.Sprintf("mach: invalid flag for %s: %s", command, detail),
		Command: command,
	}
}
