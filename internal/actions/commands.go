package actions

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/footprint-tools/mach/internal/dispatchers"
	"github.com/footprint-tools/mach/internal/ui/style"
)

func machCommandsCommand() *dispatchers.Builder {
	return dispatchers.Command(dispatchers.CommandSpec{
		Name:        "mach-commands",
		Category:    "misc",
		Description: "List all mach commands.",
	}).
		Argument(dispatchers.Flag("prefix", "", "", "only list commands starting with this prefix")).
		Handler(func(_ context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
			return nil, listCommands(inst.Stdout(), inst.Registry().Commands(), args.String("prefix"))
		})
}

func listCommands(w io.Writer, names []string, prefix string) error {
	for _, name := range names {
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func machDebugCommandsCommand() *dispatchers.Builder {
	return dispatchers.Command(dispatchers.CommandSpec{
		Name:        "mach-debug-commands",
		Category:    "misc",
		Description: "Show info about available mach commands.",
	}).
		Argument(dispatchers.OptionalPositional("match", "", "only show commands whose name contains this")).
		Handler(func(_ context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
			return nil, debugCommands(inst.Stdout(), inst.Registry(), args.String("match"))
		})
}

func debugCommands(w io.Writer, r *dispatchers.Registry, match string) error {
	var b strings.Builder
	for _, name := range r.Commands() {
		if match != "" && !strings.Contains(name, match) {
			continue
		}
		d, ok := r.Lookup(name)
		if !ok {
			continue
		}

		b.WriteString(style.Header(name))
		b.WriteString("\n")
		fmt.Fprintf(&b, "\tCategory: %s\n", d.Category)
		fmt.Fprintf(&b, "\tDescription: %s\n", firstLine(d.Description))
		fmt.Fprintf(&b, "\tSource: %s\n", d.Source)
		if len(d.Conditions) > 0 {
			names := make([]string, 0, len(d.Conditions))
			for _, c := range d.Conditions {
				names = append(names, c.Name)
			}
			fmt.Fprintf(&b, "\tConditions: %s\n", strings.Join(names, ", "))
		}
		if d.Virtualenv != "" {
			fmt.Fprintf(&b, "\tEnvironment: %s\n", d.Virtualenv)
		}
		if subs := d.OrderedSubcommands(); len(subs) > 0 {
			names := make([]string, 0, len(subs))
			for _, s := range subs {
				names = append(names, s.Subcommand)
			}
			fmt.Fprintf(&b, "\tSubcommands: %s\n", strings.Join(names, ", "))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
