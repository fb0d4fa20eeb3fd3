package usage

import "fmt"

// UnknownCommand is returned when the requested command is not registered.
// verb describes what the user tried to do with it, e.g. "run".
func UnknownCommand(verb, command string, suggestions ...string) *Error {
	return &Error{
		Kind:        ErrUnknownCommand,
		Message:     fmt.Sprintf("mach: '%s' is not a mach command. See 'mach help'.", command),
		Verb:        verb,
		Command:     command,
		Suggestions: suggestions,
	}
}
