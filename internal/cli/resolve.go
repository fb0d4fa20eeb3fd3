package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/footprint-tools/mach/internal/dispatchers"
	"github.com/footprint-tools/mach/internal/usage"
)

// Namespace is a resolved invocation.
type Namespace struct {
	// Descriptor is the command to run, or whose help to show. It is nil
	// for the top-level help.
	Descriptor *dispatchers.CommandDescriptor
	Args       *dispatchers.Args
	// Argv holds the command tokens after global flags and aliases.
	Argv []string

	Help        bool
	HelpVerbose bool
}

// Resolve maps argv, starting at the command name, to a command and its
// parsed arguments.
func Resolve(ctx context.Context, r *dispatchers.Registry, argv []string) (*Namespace, error) {
	if len(argv) == 0 {
		return nil, usage.NoCommand()
	}
	if argv[0] == "help" {
		return resolveHelp(ctx, r, argv)
	}

	name := argv[0]
	d, err := lookup(ctx, r, name)
	if err != nil {
		return nil, err
	}
	if d == nil {
		matches, err := suggest(r, name)
		if err != nil {
			return nil, err
		}
		return nil, usage.UnknownCommand("run", name, matches...)
	}

	rest := argv[1:]
	if len(d.Subcommands) > 0 && len(rest) > 0 {
		if sub, ok := r.LookupSubcommand(name, rest[0]); ok {
			d, rest = sub, rest[1:]
		} else if !strings.HasPrefix(rest[0], "-") && !hasPositionals(d) {
			return nil, usage.UnknownCommand("run", name+" "+rest[0], r.SuggestSubcommand(name, rest[0])...)
		}
	}

	parser, err := d.Parser()
	if err != nil {
		return nil, &dispatchers.FrameworkError{Message: fmt.Sprintf("building parser for %s", d.FullName()), Err: err}
	}
	args, extra, err := parser.Parse(rest)
	if err != nil {
		return nil, err
	}

	ns := &Namespace{Descriptor: d, Args: args, Argv: argv}
	if args.Help() {
		ns.Help = true
		return ns, nil
	}
	if len(extra) > 0 {
		return nil, usage.UnrecognizedArguments(d.FullName(), extra)
	}
	return ns, nil
}

func resolveHelp(ctx context.Context, r *dispatchers.Registry, argv []string) (*Namespace, error) {
	ns := &Namespace{Argv: argv, Help: true}

	var targets []string
	for _, tok := range argv[1:] {
		switch tok {
		case "-v", "--verbose":
			ns.HelpVerbose = true
		default:
			targets = append(targets, tok)
		}
	}
	if len(targets) == 0 {
		return ns, nil
	}

	name := targets[0]
	d, err := lookup(ctx, r, name)
	if err != nil {
		return nil, err
	}
	if d == nil {
		matches, err := suggest(r, name)
		if err != nil {
			return nil, err
		}
		return nil, usage.UnknownCommand("get help for", name, matches...)
	}
	if len(targets) > 1 {
		sub, ok := r.LookupSubcommand(name, targets[1])
		if !ok {
			return nil, usage.UnknownCommand("get help for", name+" "+targets[1], r.SuggestSubcommand(name, targets[1])...)
		}
		d = sub
	}
	ns.Descriptor = d
	return ns, nil
}

// lookup returns the command name, loading its provider when needed. A
// missing command is (nil, nil).
func lookup(ctx context.Context, r *dispatchers.Registry, name string) (*dispatchers.CommandDescriptor, error) {
	if d, ok := r.Lookup(name); ok {
		return d, nil
	}
	loader := r.Loader()
	if loader == nil {
		return nil, nil
	}
	if err := loader.Load(ctx, r, name); err != nil && !errors.Is(err, dispatchers.ErrModuleNotFound) {
		return nil, &dispatchers.FrameworkError{Message: fmt.Sprintf("loading provider for %q", name), Err: err}
	}
	d, _ := r.Lookup(name)
	return d, nil
}

// suggest loads every provider first so lazy commands are candidates too.
func suggest(r *dispatchers.Registry, name string) ([]string, error) {
	if table, ok := r.Loader().(*dispatchers.ProviderTable); ok {
		if err := table.LoadAll(r); err != nil {
			return nil, &dispatchers.FrameworkError{Message: "loading command providers", Err: err}
		}
	}
	return r.Suggest(name), nil
}

func hasPositionals(d *dispatchers.CommandDescriptor) bool {
	for _, a := range d.Arguments {
		if a.Positional {
			return true
		}
	}
	return false
}
