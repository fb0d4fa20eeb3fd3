// Package cli is mach's front-end: it parses global flags, expands
// aliases, resolves the requested command and maps failures to exit codes.
package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"runtime/debug"

	"github.com/footprint-tools/mach/internal/app"
	"github.com/footprint-tools/mach/internal/config"
	"github.com/footprint-tools/mach/internal/dispatchers"
	"github.com/footprint-tools/mach/internal/execx"
	"github.com/footprint-tools/mach/internal/log"
	"github.com/footprint-tools/mach/internal/paths"
	"github.com/footprint-tools/mach/internal/ui"
	"github.com/footprint-tools/mach/internal/ui/style"
)

// Env is the process environment Main runs in.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	Cwd        string
	StateDir   string // defaults to $MACH_STATE_DIR or ~/.mach
	ProgramDir string

	Runner execx.Runner
	// Setup registers additional command providers.
	Setup func(r *dispatchers.Registry) error
	// Interactive overrides terminal detection when set.
	Interactive *bool
}

func (e Env) withDefaults() Env {
	if e.Stdin == nil {
		e.Stdin = os.Stdin
	}
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = os.Stderr
	}
	if e.Getenv == nil {
		e.Getenv = os.Getenv
	}
	if e.Cwd == "" {
		e.Cwd, _ = os.Getwd()
	}
	if e.StateDir == "" {
		e.StateDir = paths.StateDirFrom(e.Getenv)
	}
	if e.ProgramDir == "" {
		e.ProgramDir = paths.ProgramDir()
	}
	return e
}

// Main runs mach with argv, excluding the program name, and returns the
// process exit code.
func Main(ctx context.Context, argv []string, env Env) (code int) {
	env = env.withDefaults()
	reporter := &Reporter{Stderr: env.Stderr}

	defer func() {
		if v := recover(); v != nil {
			code = reporter.Report(&frameworkPanic{value: v, stack: string(debug.Stack())}, argv)
		}
	}()

	globals, rest, err := ParseGlobals(argv)
	if err != nil {
		return reporter.Report(err, argv)
	}

	settings, err := config.Load(paths.SettingsFilePath(env.StateDir))
	if err != nil {
		return reporter.Report(err, argv)
	}
	if globals.SettingsFile != "" {
		if err := settings.LoadOverlay(globals.SettingsFile); err != nil {
			return reporter.Report(err, argv)
		}
	}

	style.Init(style.ColorEnabled(settings.String("ui.color"), ui.IsTerminal(env.Stdout)))

	logger, err := log.NewManager(log.Options{
		Terminal: env.Stderr,
		Level:    log.ParseLevel(settings.String("log.level")),
		Verbose:  globals.Verbose,
		LogFile:  globals.LogFile,
		Interval: globals.LogInterval,
		NoTimes:  globals.LogNoTimes || env.Getenv("MACH_NO_TIMES") != "" || env.Getenv("CI") != "",
		Journal:  settings.Bool("log.journal"),
	})
	if err != nil {
		return reporter.Report(err, argv)
	}

	topsrcdir := paths.FindTopSrcDir(env.Cwd, env.Getenv)
	a, err := app.New(app.Options{
		StateDir:    env.StateDir,
		TopSrcDir:   topsrcdir,
		ProgramDir:  env.ProgramDir,
		Settings:    settings,
		Logger:      logger,
		Stdout:      env.Stdout,
		Getenv:      env.Getenv,
		Runner:      env.Runner,
		GlobalFlags: GlobalFlagInfo(),
		Setup:       env.Setup,
	})
	if err != nil {
		_ = logger.Close()
		return reporter.Report(err, argv)
	}
	defer a.Close()
	if a.Reports != nil {
		reporter.Sink = a.Reports
	}

	if err := settings.Validate(); err != nil {
		logger.Warn("%v", err)
	}

	if globals.Help {
		rest = append([]string{"help"}, rest...)
	}
	rest = ExpandAlias(rest, settings.Aliases())

	interactive := !globals.NoInteractive && ui.IsTerminal(env.Stdin) && ui.IsTerminal(env.Stderr)
	if env.Interactive != nil {
		interactive = *env.Interactive && !globals.NoInteractive
	}
	ec := a.ExecutionContext(env.Cwd, env.Stdin, env.Stdout, env.Stderr, interactive)

	ns, err := Resolve(ctx, a.Registry, rest)
	if err != nil {
		return reporter.Report(err, argv)
	}

	if ns.Help {
		if err := writeHelp(a, ec, ns, settings.String("runprefix")); err != nil {
			return reporter.Report(err, argv)
		}
		return 0
	}

	code, err = a.Registry.RunCommandHandler(ctx, ns.Descriptor, ec, dispatchers.RunOptions{
		Debug:   globals.DebugCommand,
		Profile: globals.ProfileCommand,
	}, ns.Args)
	if err == nil && errors.Is(ctx.Err(), context.Canceled) {
		// The handler ignored the interrupt and returned normally.
		err = ctx.Err()
	}
	if err != nil {
		return reporter.Report(err, argv)
	}
	return code
}

func writeHelp(a *app.Application, ec *dispatchers.ExecutionContext, ns *Namespace, prefix string) error {
	var buf bytes.Buffer
	if ns.Descriptor != nil {
		if err := dispatchers.WriteCommandHelp(&buf, ns.Descriptor, prefix); err != nil {
			return err
		}
	} else {
		if err := a.Providers.LoadAll(a.Registry); err != nil {
			return err
		}
		if err := a.Registry.WriteCommandList(&buf, ec, prefix, ns.HelpVerbose); err != nil {
			return err
		}
		buf.WriteString("\n")
		WriteGlobalUsage(&buf)
	}
	a.Output.Pager(buf.String())
	return nil
}
