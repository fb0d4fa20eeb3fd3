package completions

import (
	"fmt"
	"strings"
)

// GenerateZsh returns a zsh completion script.
func GenerateZsh(program string, commands []CommandInfo) string {
	fn := funcName(program)
	var b strings.Builder

	fmt.Fprintf(&b, "#compdef %s\n\n", program)

	fmt.Fprintf(&b, "%s_commands() {\n", fn)
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range children(commands, []string{program}) {
		fmt.Fprintf(&b, "        '%s'\n", zshItem(c.Name, c.Summary))
	}
	b.WriteString("    )\n")
	b.WriteString("    _describe 'command' commands\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "%s() {\n", fn)
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	fmt.Fprintf(&b, "        %s_commands\n", fn)
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range children(commands, []string{program}) {
		subs := children(commands, c.Path)
		if len(subs) == 0 && len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		if len(subs) > 0 {
			b.WriteString("            local -a subcommands\n")
			b.WriteString("            subcommands=(\n")
			for _, s := range subs {
				fmt.Fprintf(&b, "                '%s'\n", zshItem(s.Name, s.Summary))
			}
			b.WriteString("            )\n")
			b.WriteString("            _describe 'subcommand' subcommands\n")
		}
		if len(c.Flags) > 0 {
			b.WriteString("            _arguments")
			for _, f := range c.Flags {
				fmt.Fprintf(&b, " \\\n                '%s'", zshFlag(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "compdef %s %s\n", fn, program)
	return b.String()
}

func zshItem(name, summary string) string {
	name = strings.ReplaceAll(name, ":", `\:`)
	if summary == "" {
		return singleQuote(name)
	}
	return singleQuote(name + ":" + summary)
}

func zshFlag(f FlagInfo) string {
	desc := strings.NewReplacer("[", `\[`, "]", `\]`).Replace(f.Description)
	spec := "--" + f.Long + "[" + desc + "]"
	if f.HasValue {
		spec += ":value:"
		if len(f.Choices) > 0 {
			spec += "(" + strings.Join(f.Choices, " ") + ")"
		}
	}
	return singleQuote(spec)
}
