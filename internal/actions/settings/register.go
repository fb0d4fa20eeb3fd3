package settings

import (
	"context"

	"github.com/footprint-tools/mach/internal/dispatchers"
)

// Provider returns a provider registering the settings command.
func Provider(deps Deps) dispatchers.Provider {
	return func(r *dispatchers.Registry) error {
		return Register(r, deps)
	}
}

// Register adds "settings" and its subcommands to r.
func Register(r *dispatchers.Registry, deps Deps) error {
	builders := []*dispatchers.Builder{
		dispatchers.Command(dispatchers.CommandSpec{
			Name:        "settings",
			Category:    "devenv",
			Description: "Show or edit mach settings.\n\nSettings live in the machrc file of the state directory.",
			Order:       dispatchers.OrderDeclaration,
		}).
			Argument(dispatchers.BoolFlag("all", "a", "include hidden settings")).
			Handler(func(_ context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
				return nil, list(inst.Stdout(), args.Bool("all"), deps)
			}),

		dispatchers.Subcommand(dispatchers.SubcommandSpec{
			Command:     "settings",
			Name:        "list",
			Description: "List settings with their effective values.",
		}).
			Argument(dispatchers.BoolFlag("all", "a", "include hidden settings")).
			Handler(func(_ context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
				return nil, list(inst.Stdout(), args.Bool("all"), deps)
			}),

		dispatchers.Subcommand(dispatchers.SubcommandSpec{
			Command:     "settings",
			Name:        "get",
			Description: "Print the value of a setting.",
		}).
			Argument(dispatchers.Positional("key", "setting name")).
			Handler(func(_ context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
				return nil, get(inst.Stdout(), args.String("key"), deps)
			}),

		dispatchers.Subcommand(dispatchers.SubcommandSpec{
			Command:     "settings",
			Name:        "set",
			Description: "Persist a setting.",
		}).
			Argument(
				dispatchers.Positional("key", "setting name"),
				dispatchers.OptionalPositional("value", "", "new value (asked for when omitted)"),
			).
			Handler(func(_ context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
				key, value := args.String("key"), args.String("value")
				if !args.Changed("value") {
					var err error
					if value, err = promptValue(inst, key, deps); err != nil {
						return nil, err
					}
				}
				return nil, set(inst.Stdout(), key, value, deps)
			}),

		dispatchers.Subcommand(dispatchers.SubcommandSpec{
			Command:     "settings",
			Name:        "unset",
			Description: "Remove a setting, restoring its default.",
		}).
			Argument(dispatchers.Positional("key", "setting name")).
			Handler(func(_ context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
				return nil, unset(inst.Stdout(), args.String("key"), deps)
			}),
	}

	for _, b := range builders {
		if _, err := b.Register(r); err != nil {
			return err
		}
	}
	return nil
}
