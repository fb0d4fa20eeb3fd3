package actions

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/footprint-tools/mach/internal/dispatchers"
)

func versionCommand(deps Deps) *dispatchers.Builder {
	return dispatchers.Command(dispatchers.CommandSpec{
		Name:        "mach-version",
		Category:    "misc",
		Description: "Print the mach version.",
	}).
		Handler(func(_ context.Context, inst *dispatchers.Instance, _ *dispatchers.Args) (any, error) {
			return nil, showVersion(inst.Stdout(), deps)
		})
}

func showVersion(w io.Writer, deps Deps) error {
	_, err := fmt.Fprintf(w, "%s version %s\n", deps.Program, deps.Version())
	return err
}

// buildVersion returns the main module version recorded by the Go toolchain.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}
