package dispatchers

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/footprint-tools/mach/internal/ui/style"
)

// Available reports whether every condition of d holds in ec.
func (r *Registry) Available(ec *ExecutionContext, d *CommandDescriptor) bool {
	return len(newInstance(r, ec, d).failedConditions()) == 0
}

// WriteCommandList writes the top-level help: every category by priority
// with its commands. Commands whose conditions fail are left out unless
// verbose is set, in which case they are marked.
func (r *Registry) WriteCommandList(w io.Writer, ec *ExecutionContext, prefix string, verbose bool) error {
	var out bytes.Buffer

	fmt.Fprintf(&out, "usage: %s [global flags] <command> [command flags]\n\n", prefix)

	for _, cat := range r.Categories() {
		var lines []string
		for _, d := range r.CommandsInCategory(cat.Name) {
			available := r.Available(ec, d)
			if !available && !verbose {
				continue
			}
			desc := firstLine(d.Description)
			if !available {
				desc += " " + style.Muted("(unavailable in this context)")
			}
			lines = append(lines, fmt.Sprintf("   %s  %s", style.Info(fmt.Sprintf("%-20s", d.Name)), desc))
		}
		if len(lines) == 0 {
			continue
		}

		out.WriteString(style.Header(cat.Title))
		out.WriteString("\n")
		if cat.Description != "" {
			fmt.Fprintf(&out, "   %s\n", style.Muted(cat.Description))
		}
		for _, line := range lines {
			out.WriteString(line)
			out.WriteString("\n")
		}
		out.WriteString("\n")
	}

	fmt.Fprintf(&out, "See '%s help <command>' for more information on a specific command.\n", prefix)

	_, err := w.Write(out.Bytes())
	return err
}

// WriteCommandHelp writes the help of a single command or subcommand.
func WriteCommandHelp(w io.Writer, d *CommandDescriptor, prefix string) error {
	parser, err := d.Parser()
	if err != nil {
		return err
	}
	args := parser.Arguments()

	var out bytes.Buffer

	out.WriteString("usage: ")
	out.WriteString(style.Info(prefix + " " + d.FullName()))
	if len(d.Subcommands) > 0 {
		out.WriteString(" " + style.Muted("<subcommand>"))
	}
	if hasFlags(args) {
		out.WriteString(" " + style.Muted("[flags]"))
	}
	for _, a := range args {
		if a.Positional {
			out.WriteString(" " + style.Muted(positionalUsage(a)))
		}
	}
	out.WriteString("\n\n")

	if d.Description != "" {
		out.WriteString(strings.TrimSpace(d.Description))
		out.WriteString("\n\n")
	}

	if subs := d.OrderedSubcommands(); len(subs) > 0 {
		out.WriteString(style.Header("Subcommands"))
		out.WriteString("\n")
		for _, s := range subs {
			fmt.Fprintf(&out, "   %s  %s\n", style.Info(fmt.Sprintf("%-16s", s.Subcommand)), firstLine(s.Description))
		}
		out.WriteString("\n")
	}

	var positionals []Argument
	for _, a := range args {
		if a.Positional {
			positionals = append(positionals, a)
		}
	}
	if len(positionals) > 0 {
		out.WriteString(style.Header("Arguments"))
		out.WriteString("\n")
		for _, a := range positionals {
			fmt.Fprintf(&out, "   %s  %s\n", style.Info(fmt.Sprintf("%-24s", a.Name)), a.Help)
		}
		out.WriteString("\n")
	}

	for _, group := range flagGroups(d.ArgumentGroups, args) {
		out.WriteString(style.Header(group.title))
		out.WriteString("\n")
		for _, a := range group.args {
			fmt.Fprintf(&out, "   %s  %s\n", style.Info(fmt.Sprintf("%-24s", flagUsage(a))), flagHelp(a))
		}
		out.WriteString("\n")
	}

	_, err = w.Write(out.Bytes())
	return err
}

type flagGroup struct {
	title string
	args  []Argument
}

// flagGroups sections flags by declared group, in declaration order, with
// ungrouped flags first under "Flags".
func flagGroups(groups []string, args []Argument) []flagGroup {
	byGroup := map[string][]Argument{}
	for _, a := range args {
		if a.Positional {
			continue
		}
		group := a.Group
		if group != "" && !slices.Contains(groups, group) {
			group = ""
		}
		byGroup[group] = append(byGroup[group], a)
	}
	byGroup[""] = append(byGroup[""], Argument{Name: "help", Short: "h", Type: ArgBool, Help: "show this help"})

	out := []flagGroup{{title: "Flags", args: byGroup[""]}}
	for _, g := range groups {
		if len(byGroup[g]) > 0 {
			out = append(out, flagGroup{title: g, args: byGroup[g]})
		}
	}
	return out
}

func hasFlags(args []Argument) bool {
	for _, a := range args {
		if !a.Positional {
			return true
		}
	}
	return false
}

func positionalUsage(a Argument) string {
	name := a.metavar()
	switch {
	case a.Type == ArgRemainder || a.Type == ArgStrings:
		name += "..."
		if !a.Required {
			return "[" + name + "]"
		}
		return name
	case a.Required:
		return "<" + name + ">"
	default:
		return "[" + name + "]"
	}
}

func flagUsage(a Argument) string {
	s := "--" + a.Name
	if a.Short != "" {
		s = "-" + a.Short + ", " + s
	}
	if mv := a.metavar(); mv != "" {
		s += " " + mv
	}
	return s
}

func flagHelp(a Argument) string {
	help := a.Help
	if len(a.Choices) > 0 {
		help += " (" + strings.Join(a.Choices, ", ") + ")"
	}
	switch def := a.Default.(type) {
	case string:
		if def != "" {
			help += fmt.Sprintf(" [default: %s]", def)
		}
	case int:
		if def != 0 {
			help += fmt.Sprintf(" [default: %d]", def)
		}
	}
	return strings.TrimSpace(help)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
