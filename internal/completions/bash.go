package completions

import (
	"fmt"
	"strings"
)

// GenerateBash returns a bash completion script.
func GenerateBash(program string, commands []CommandInfo) string {
	fn := funcName(program) + "_completions"
	var b strings.Builder

	fmt.Fprintf(&b, "# %s bash completion script\n", program)
	fmt.Fprintf(&b, "%s() {\n", fn)
	b.WriteString("    local cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    local cmd=\"${COMP_WORDS[1]}\"\n\n")

	root := FindCommand(commands, []string{program})
	var top []string
	if root != nil {
		top = append(top, root.Subcommands...)
		top = append(top, bashFlags(root.Flags)...)
	}
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(top, " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range children(commands, []string{program}) {
		words := append([]string{}, c.Subcommands...)
		words = append(words, bashFlags(c.Flags)...)
		if len(words) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(words, " "))
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "complete -F %s %s\n", fn, program)
	return b.String()
}

func bashFlags(flags []FlagInfo) []string {
	var out []string
	for _, f := range flags {
		out = append(out, "--"+f.Long)
		if f.Short != "" {
			out = append(out, "-"+f.Short)
		}
	}
	return out
}
