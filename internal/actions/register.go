package actions

import "github.com/footprint-tools/mach/internal/dispatchers"

// Commands lists the top-level commands Register adds.
var Commands = []string{
	"environment",
	"mach-commands",
	"mach-completion",
	"mach-debug-commands",
	"mach-version",
	"reports",
}

// Provider returns a provider registering the built-in commands.
func Provider(deps Deps) dispatchers.Provider {
	return func(r *dispatchers.Registry) error {
		return Register(r, deps)
	}
}

// Register adds the built-in commands to r. Their categories must be declared.
func Register(r *dispatchers.Registry, deps Deps) error {
	deps = deps.withDefaults()

	builders := []*dispatchers.Builder{
		machCommandsCommand(),
		machDebugCommandsCommand(),
		completionCommand(deps),
		environmentCommand(),
		versionCommand(deps),
	}
	builders = append(builders, reportsCommands(deps)...)

	for _, b := range builders {
		if _, err := b.Register(r); err != nil {
			return err
		}
	}
	return nil
}
