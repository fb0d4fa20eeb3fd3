package actions

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/footprint-tools/mach/internal/completions"
	"github.com/footprint-tools/mach/internal/dispatchers"
)

func completionCommand(deps Deps) *dispatchers.Builder {
	shell := dispatchers.OptionalPositional("shell", "", "bash, zsh or fish (default: $SHELL)")
	shell.Choices = completions.Shells

	return dispatchers.Command(dispatchers.CommandSpec{
		Name:        "mach-completion",
		Category:    "misc",
		Description: "Print a shell completion script.\n\nLoad it from your shell's rc file, for example:\n\n    eval \"$(mach mach-completion bash)\"",
	}).
		Argument(shell, dispatchers.BoolFlag("install", "", "write the script where the shell picks it up")).
		Handler(func(_ context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
			if args.Bool("install") {
				return nil, installCompletion(inst.Stdout(), inst.Registry(), args.String("shell"), deps, os.Getenv)
			}
			return nil, printCompletion(inst.Stdout(), inst.Registry(), args.String("shell"), deps, os.Getenv)
		})
}

func printCompletion(w io.Writer, r *dispatchers.Registry, name string, deps Deps, getenv func(string) string) error {
	shell, err := pickShell(name, deps, getenv)
	if err != nil {
		return err
	}
	commands, err := completionCommands(r, deps)
	if err != nil {
		return err
	}
	return completions.Print(w, shell, deps.Program, commands)
}

// installCompletion writes the script into the shell's completion
// directory. Shells without one get the line to add to their rc file.
func installCompletion(w io.Writer, r *dispatchers.Registry, name string, deps Deps, getenv func(string) string) error {
	shell, err := pickShell(name, deps, getenv)
	if err != nil {
		return err
	}

	target := completions.AutoInstallPath(shell, getenv("HOME"), deps.Program)
	if target == "" {
		_, err := fmt.Fprintf(w, "Add this line to %s:\n\n    %s\n", completions.RcFile(shell), completions.SourceInstructions(shell, deps.Program))
		return err
	}

	commands, err := completionCommands(r, deps)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := completions.Print(&buf, shell, deps.Program, commands); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return dispatchers.WrapUserError(err, "cannot install completions")
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return dispatchers.WrapUserError(err, "cannot install completions")
	}
	_, err = fmt.Fprintf(w, "Installed %s completions to %s\n", shell, target)
	return err
}

func pickShell(name string, deps Deps, getenv func(string) string) (completions.Shell, error) {
	var shell completions.Shell
	if name == "" {
		shell = completions.RunningShell(getenv)
		if shell == "" {
			return "", dispatchers.NewUserError("could not detect your shell; run %s mach-completion <bash|zsh|fish>", deps.Program)
		}
		return shell, nil
	}
	shell, err := completions.ParseShell(name)
	if err != nil {
		return "", dispatchers.WrapUserError(err, "cannot generate completions")
	}
	return shell, nil
}

func completionCommands(r *dispatchers.Registry, deps Deps) ([]completions.CommandInfo, error) {
	// Completions cover every command, including those not loaded yet.
	if table, ok := r.Loader().(*dispatchers.ProviderTable); ok {
		if err := table.LoadAll(r); err != nil {
			return nil, err
		}
	}
	return completions.ExtractCommands(r, deps.Program, deps.GlobalFlags), nil
}
