package usage

import "fmt"

// InvalidSettingKey is returned when a setting is not declared by any
// settings provider.
func InvalidSettingKey(key string) *Error {
	return &Error{
		Kind:    ErrInvalidSettingKey,
		Message: fmt.Sprintf("mach: '%s' is not a known setting. See 'mach settings list'.", key),
	}
}

// InvalidSettingValue is returned when a settings file line cannot be parsed.
func InvalidSettingValue(path string, line int, text string) *Error {
	return &Error{
		Kind:    ErrInvalidSettingValue,
		Message: fmt.Sprintf("mach: %s:%d: expected key=value, got %q", path, line, text),
	}
}
