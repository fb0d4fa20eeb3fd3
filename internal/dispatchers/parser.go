package dispatchers

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/pflag"

	"github.com/footprint-tools/mach/internal/usage"
)

// ParserFactory builds a command's parser on first use.
type ParserFactory func() (*Parser, error)

// Parser parses a command's arguments. Tokens that match no declared flag
// are returned to the caller rather than rejected, so a caller can decide
// whether leftovers are an error.
type Parser struct {
	name string
	args []Argument

	mu       sync.Mutex
	defaults map[string]any
}

// NewParser validates args and creates a parser for the command name.
func NewParser(name string, args []Argument) (*Parser, error) {
	seen := map[string]bool{"help": true}
	shorts := map[string]bool{}
	sawGreedy := false

	for _, a := range args {
		if a.Name == "" {
			return nil, configErrorf("%s: argument without a name", name)
		}
		if seen[a.Name] {
			return nil, configErrorf("%s: argument %q declared twice", name, a.Name)
		}
		seen[a.Name] = true

		if a.Positional {
			if sawGreedy {
				return nil, configErrorf("%s: positional %q follows a positional that takes every remaining token", name, a.Name)
			}
			if a.Type == ArgRemainder || a.Type == ArgStrings {
				sawGreedy = true
			}
			continue
		}

		if a.Type == ArgRemainder {
			return nil, configErrorf("%s: flag %q cannot collect the remainder", name, a.Name)
		}
		if len(a.Short) > 1 {
			return nil, configErrorf("%s: shorthand %q for %q must be a single letter", name, a.Short, a.Name)
		}
		if a.Short != "" {
			if shorts[a.Short] {
				return nil, configErrorf("%s: shorthand -%s declared twice", name, a.Short)
			}
			shorts[a.Short] = true
		}
	}

	p := &Parser{name: name, args: slices.Clone(args), defaults: map[string]any{}}
	for _, a := range args {
		if a.Default != nil {
			p.defaults[a.Name] = a.Default
		}
	}
	return p, nil
}

// Name returns the command name used in error messages.
func (p *Parser) Name() string {
	return p.name
}

// Arguments returns the declared arguments in declaration order.
func (p *Parser) Arguments() []Argument {
	return slices.Clone(p.args)
}

// Defaults returns a copy of the current defaults.
func (p *Parser) Defaults() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]any, len(p.defaults))
	for k, v := range p.defaults {
		out[k] = v
	}
	return out
}

// Parse parses argv. It returns the parsed values and the tokens no
// declared argument consumed.
func (p *Parser) Parse(argv []string) (*Args, []string, error) {
	return p.ParseWithDefaults(argv, nil)
}

// ParseWithDefaults parses argv with overrides replacing the declared
// defaults for the duration of the call. Overrides naming no declared
// argument are passed through as values. The stored defaults are restored
// before returning.
func (p *Parser) ParseWithDefaults(argv []string, overrides map[string]any) (*Args, []string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	saved := p.defaults
	merged := make(map[string]any, len(saved)+len(overrides))
	for k, v := range saved {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	p.defaults = merged
	defer func() { p.defaults = saved }()

	args, extra, err := p.parseLocked(argv)
	if err != nil {
		return nil, nil, err
	}
	for k, v := range overrides {
		if !p.declared(k) {
			args.set(k, v, true)
		}
	}
	return args, extra, nil
}

func (p *Parser) declared(name string) bool {
	for _, a := range p.args {
		if a.Name == name {
			return true
		}
	}
	return false
}

func (p *Parser) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(p.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	hasShortH := false
	for _, a := range p.args {
		if a.Positional {
			continue
		}
		if a.Short == "h" {
			hasShortH = true
		}
		def := p.defaults[a.Name]
		switch a.Type {
		case ArgBool:
			b, _ := def.(bool)
			fs.BoolP(a.Name, a.Short, b, a.Help)
		case ArgInt:
			n, _ := toInt(def)
			fs.IntP(a.Name, a.Short, n, a.Help)
		case ArgStrings:
			s, _ := def.([]string)
			fs.StringArrayP(a.Name, a.Short, s, a.Help)
		default:
			fs.StringP(a.Name, a.Short, toString(def), a.Help)
		}
	}

	if hasShortH {
		fs.Bool("help", false, "show this help")
	} else {
		fs.BoolP("help", "h", false, "show this help")
	}
	return fs
}

func (p *Parser) positionals() []Argument {
	var out []Argument
	for _, a := range p.args {
		if a.Positional {
			out = append(out, a)
		}
	}
	return out
}

// split separates argv into tokens for the flag set, positional tokens
// and tokens matching nothing.
func (p *Parser) split(fs *pflag.FlagSet, argv []string) (known, positional, extra []string) {
	slots := p.positionals()
	remainderAt := -1
	for i, a := range slots {
		if a.Type == ArgRemainder {
			remainderAt = i
		}
	}

	for i := 0; i < len(argv); i++ {
		tok := argv[i]

		if remainderAt >= 0 && len(positional) >= remainderAt && !strings.HasPrefix(tok, "-") {
			positional = append(positional, argv[i:]...)
			return known, positional, extra
		}

		switch {
		case tok == "--":
			positional = append(positional, argv[i+1:]...)
			return known, positional, extra

		case strings.HasPrefix(tok, "--"):
			name, _, hasValue := strings.Cut(tok[2:], "=")
			flag := fs.Lookup(name)
			if flag == nil {
				extra = append(extra, tok)
				continue
			}
			known = append(known, tok)
			if !hasValue && flag.NoOptDefVal == "" && i+1 < len(argv) {
				i++
				known = append(known, argv[i])
			}

		case strings.HasPrefix(tok, "-") && len(tok) > 1 && !isNumber(tok):
			flag := fs.ShorthandLookup(tok[1:2])
			if flag == nil {
				extra = append(extra, tok)
				continue
			}
			known = append(known, tok)
			if len(tok) == 2 && flag.NoOptDefVal == "" && i+1 < len(argv) {
				i++
				known = append(known, argv[i])
			}

		default:
			positional = append(positional, tok)
		}
	}
	return known, positional, extra
}

func (p *Parser) parseLocked(argv []string) (*Args, []string, error) {
	fs := p.flagSet()
	known, positional, extra := p.split(fs, argv)

	if err := fs.Parse(known); err != nil {
		return nil, nil, usage.InvalidFlag(p.name, err.Error())
	}

	args := NewArgs(nil)
	args.help, _ = fs.GetBool("help")

	for _, a := range p.args {
		if a.Positional {
			continue
		}
		var (
			value any
			err   error
		)
		switch a.Type {
		case ArgBool:
			value, err = fs.GetBool(a.Name)
		case ArgInt:
			value, err = fs.GetInt(a.Name)
		case ArgStrings:
			value, err = fs.GetStringArray(a.Name)
		default:
			var s string
			s, err = fs.GetString(a.Name)
			if err == nil && fs.Changed(a.Name) && len(a.Choices) > 0 && !slices.Contains(a.Choices, s) {
				return nil, nil, usage.InvalidFlag(p.name, fmt.Sprintf("invalid value %q for --%s (choose from %s)", s, a.Name, strings.Join(a.Choices, ", ")))
			}
			value = s
		}
		if err != nil {
			return nil, nil, usage.InvalidFlag(p.name, err.Error())
		}
		args.set(a.Name, value, fs.Changed(a.Name))
	}

	rest := positional
	for _, a := range p.positionals() {
		switch {
		case a.Type == ArgRemainder || a.Type == ArgStrings:
			if len(rest) == 0 && a.Required && !args.help {
				return nil, nil, usage.MissingArgument(p.name, a.Name)
			}
			value := slices.Clone(rest)
			if len(rest) == 0 {
				value, _ = p.defaults[a.Name].([]string)
			}
			args.set(a.Name, value, len(rest) > 0)
			rest = nil

		case len(rest) > 0:
			if len(a.Choices) > 0 && !slices.Contains(a.Choices, rest[0]) {
				return nil, nil, usage.InvalidFlag(p.name, fmt.Sprintf("invalid choice %q for %s (choose from %s)", rest[0], a.Name, strings.Join(a.Choices, ", ")))
			}
			args.set(a.Name, rest[0], true)
			rest = rest[1:]

		case a.Required && !args.help:
			return nil, nil, usage.MissingArgument(p.name, a.Name)

		default:
			args.set(a.Name, toString(p.defaults[a.Name]), false)
		}
	}

	extra = append(extra, rest...)
	return args, extra, nil
}

func isNumber(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}
