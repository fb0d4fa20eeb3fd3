package completions

import (
	"slices"

	"github.com/footprint-tools/mach/internal/dispatchers"
)

// CommandInfo is one completable command.
type CommandInfo struct {
	Name        string
	Path        []string // full path from the program, e.g. ["mach", "settings", "get"]
	Summary     string
	Subcommands []string
	Flags       []FlagInfo
}

// FlagInfo is one completable flag.
type FlagInfo struct {
	Long        string
	Short       string
	Description string
	HasValue    bool
	Choices     []string
}

// FlagsFromArguments converts declared arguments to completable flags,
// skipping positionals.
func FlagsFromArguments(args []dispatchers.Argument) []FlagInfo {
	var flags []FlagInfo
	for _, a := range args {
		if a.Positional {
			continue
		}
		flags = append(flags, FlagInfo{
			Long:        a.Name,
			Short:       a.Short,
			Description: a.Help,
			HasValue:    a.Type != dispatchers.ArgBool,
			Choices:     a.Choices,
		})
	}
	return append(flags, FlagInfo{Long: "help", Short: "h", Description: "show this help"})
}

// ExtractCommands lists the program entry followed by every registered
// command and subcommand. globals are the program's own flags.
func ExtractCommands(r *dispatchers.Registry, program string, globals []FlagInfo) []CommandInfo {
	names := r.Commands()
	root := CommandInfo{
		Name:        program,
		Path:        []string{program},
		Subcommands: append(slices.Clone(names), "help"),
		Flags:       globals,
	}
	commands := []CommandInfo{root}

	for _, name := range names {
		d, ok := r.Lookup(name)
		if !ok {
			continue
		}
		var subs []string
		for _, s := range d.OrderedSubcommands() {
			subs = append(subs, s.Subcommand)
		}
		commands = append(commands, CommandInfo{
			Name:        name,
			Path:        []string{program, name},
			Summary:     summary(d.Description),
			Subcommands: subs,
			Flags:       FlagsFromArguments(d.Arguments),
		})
		for _, s := range d.OrderedSubcommands() {
			commands = append(commands, CommandInfo{
				Name:    s.Subcommand,
				Path:    []string{program, name, s.Subcommand},
				Summary: summary(s.Description),
				Flags:   FlagsFromArguments(s.Arguments),
			})
		}
	}

	commands = append(commands, CommandInfo{
		Name:        "help",
		Path:        []string{program, "help"},
		Summary:     "Show help for a command",
		Subcommands: names,
	})
	return commands
}

// FindCommand finds a command by its path.
func FindCommand(commands []CommandInfo, path []string) *CommandInfo {
	for i := range commands {
		if slices.Equal(commands[i].Path, path) {
			return &commands[i]
		}
	}
	return nil
}

// children returns the commands one level below path.
func children(commands []CommandInfo, path []string) []CommandInfo {
	var out []CommandInfo
	for _, c := range commands {
		if len(c.Path) == len(path)+1 && slices.Equal(c.Path[:len(path)], path) {
			out = append(out, c)
		}
	}
	return out
}

func summary(description string) string {
	for i, r := range description {
		if r == '\n' {
			return description[:i]
		}
	}
	return description
}
