package usage

// NoCommand is returned when mach is invoked without a command.
func NoCommand() *Error {
	return &Error{
		Kind:    ErrNoCommand,
		Message: "mach: no command given. See 'mach help'.",
	}
}
