package completions

import (
	"fmt"
	"strings"
)

// GenerateFish returns a fish completion script.
func GenerateFish(program string, commands []CommandInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s fish completion script\n", program)
	fmt.Fprintf(&b, "complete -c %s -f\n\n", program)

	if root := FindCommand(commands, []string{program}); root != nil {
		for _, f := range root.Flags {
			b.WriteString(fishFlag(program, "__fish_use_subcommand", f))
		}
	}

	for _, c := range children(commands, []string{program}) {
		fmt.Fprintf(&b, "complete -c %s -n '__fish_use_subcommand' -a '%s'", program, singleQuote(c.Name))
		if c.Summary != "" {
			fmt.Fprintf(&b, " -d '%s'", singleQuote(c.Summary))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, c := range children(commands, []string{program}) {
		cond := "__fish_seen_subcommand_from " + c.Name
		for _, s := range children(commands, c.Path) {
			fmt.Fprintf(&b, "complete -c %s -n '%s' -a '%s'", program, cond, singleQuote(s.Name))
			if s.Summary != "" {
				fmt.Fprintf(&b, " -d '%s'", singleQuote(s.Summary))
			}
			b.WriteString("\n")
		}
		for _, f := range c.Flags {
			b.WriteString(fishFlag(program, cond, f))
		}
	}
	return b.String()
}

func fishFlag(program, cond string, f FlagInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "complete -c %s -n '%s' -l %s", program, cond, f.Long)
	if f.Short != "" {
		fmt.Fprintf(&b, " -s %s", f.Short)
	}
	if f.HasValue {
		b.WriteString(" -r")
		if len(f.Choices) > 0 {
			fmt.Fprintf(&b, " -a '%s'", singleQuote(strings.Join(f.Choices, " ")))
		}
	}
	if f.Description != "" {
		fmt.Fprintf(&b, " -d '%s'", singleQuote(f.Description))
	}
	b.WriteString("\n")
	return b.String()
}
