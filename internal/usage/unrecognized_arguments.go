package usage

import "fmt"

// UnrecognizedArguments is returned when a command is given arguments its
// parser does not accept.
func UnrecognizedArguments(command string, args []string) *Error {
	return &Error{
		Kind:      ErrUnrecognizedArguments,
		Message:   fmt.Sprintf("mach: unrecognized arguments for %s: %s", command, quoteAll(args)),
		Command:   command,
		Arguments: args,
	}
}
