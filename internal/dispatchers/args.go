package dispatchers

import (
	"fmt"
	"sort"
	"strconv"
)

// ArgType is the value type of an Argument.
type ArgType int

const (
	ArgString ArgType = iota
	ArgBool
	ArgInt
	// ArgStrings is a repeatable flag, or a positional taking every remaining token.
	ArgStrings
	// ArgRemainder is a positional that takes every remaining token, flags included.
	ArgRemainder
)

// Argument declares one command-line parameter.
type Argument struct {
	Name       string // long flag name, or positional name
	Short      string // single-letter shorthand for flags
	Positional bool
	Type       ArgType
	Default    any
	Help       string
	Metavar    string
	Required   bool
	Group      string   // help section, see Builder.ArgumentGroup
	Choices    []string // allowed values for ArgString
}

// Flag declares a string flag.
func Flag(name, short, def, help string) Argument {
	return Argument{Name: name, Short: short, Type: ArgString, Default: def, Help: help}
}

// BoolFlag declares a boolean flag.
func BoolFlag(name, short, help string) Argument {
	return Argument{Name: name, Short: short, Type: ArgBool, Default: false, Help: help}
}

// IntFlag declares an integer flag.
func IntFlag(name, short string, def int, help string) Argument {
	return Argument{Name: name, Short: short, Type: ArgInt, Default: def, Help: help}
}

// Positional declares a required positional argument.
func Positional(name, help string) Argument {
	return Argument{Name: name, Positional: true, Type: ArgString, Required: true, Help: help}
}

// OptionalPositional declares a positional argument that may be omitted.
func OptionalPositional(name, def, help string) Argument {
	return Argument{Name: name, Positional: true, Type: ArgString, Default: def, Help: help}
}

// Remainder declares a positional that collects every remaining token.
func Remainder(name, help string) Argument {
	return Argument{Name: name, Positional: true, Type: ArgRemainder, Help: help}
}

func (a Argument) metavar() string {
	if a.Metavar != "" {
		return a.Metavar
	}
	if a.Positional {
		return a.Name
	}
	switch a.Type {
	case ArgInt:
		return "int"
	case ArgBool:
		return ""
	default:
		return "value"
	}
}

// Args holds the parsed values of a command invocation.
type Args struct {
	values  map[string]any
	changed map[string]bool
	help    bool
}

// NewArgs creates Args from a value map, as used by nested dispatch
// and tests.
func NewArgs(values map[string]any) *Args {
	a := &Args{values: make(map[string]any, len(values)), changed: map[string]bool{}}
	for k, v := range values {
		a.values[k] = v
		a.changed[k] = true
	}
	return a
}

func (a *Args) set(name string, value any, changed bool) {
	a.values[name] = value
	if changed {
		a.changed[name] = true
	}
}

// Help reports whether -h/--help was given.
func (a *Args) Help() bool {
	return a != nil && a.help
}

// Value returns the raw value for name.
func (a *Args) Value(name string) (any, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.values[name]
	return v, ok
}

// Changed reports whether name was given on the command line or passed explicitly.
func (a *Args) Changed(name string) bool {
	return a != nil && a.changed[name]
}

// String returns name as a string; non-string values are formatted.
func (a *Args) String(name string) string {
	v, ok := a.Value(name)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool returns name as a boolean.
func (a *Args) Bool(name string) bool {
	v, ok := a.Value(name)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	default:
		return false
	}
}

// Int returns name as an int.
func (a *Args) Int(name string) int {
	v, ok := a.Value(name)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case string:
		parsed, _ := strconv.Atoi(n)
		return parsed
	default:
		return 0
	}
}

// Strings returns name as a string slice.
func (a *Args) Strings(name string) []string {
	v, ok := a.Value(name)
	if !ok || v == nil {
		return nil
	}
	switch s := v.(type) {
	case []string:
		return s
	case string:
		return []string{s}
	default:
		return nil
	}
}

// Names returns the names of all values in lexical order.
func (a *Args) Names() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.values))
	for k := range a.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the values.
func (a *Args) Map() map[string]any {
	out := make(map[string]any)
	if a == nil {
		return out
	}
	for k, v := range a.values {
		out[k] = v
	}
	return out
}
