package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/footprint-tools/mach/internal/actions"
	"github.com/footprint-tools/mach/internal/actions/settings"
	"github.com/footprint-tools/mach/internal/completions"
	"github.com/footprint-tools/mach/internal/config"
	"github.com/footprint-tools/mach/internal/dispatchers"
	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/execx"
	"github.com/footprint-tools/mach/internal/format"
	"github.com/footprint-tools/mach/internal/log"
	"github.com/footprint-tools/mach/internal/paths"
	"github.com/footprint-tools/mach/internal/providers/python"
	"github.com/footprint-tools/mach/internal/store"
	"github.com/footprint-tools/mach/internal/ui"
	"github.com/footprint-tools/mach/internal/ui/style"
	"github.com/footprint-tools/mach/internal/venv"
)

// Options configures the application factory.
type Options struct {
	StateDir   string
	TopSrcDir  string
	ProgramDir string

	Settings *config.Settings
	Logger   *log.Manager

	Stdout io.Writer
	Getenv func(string) string
	Runner execx.Runner

	GlobalFlags []completions.FlagInfo
	PagerOff    bool

	// Setup registers additional command providers after the built-ins.
	Setup func(r *dispatchers.Registry) error
}

// Application is every long-lived collaborator of one mach run.
type Application struct {
	Registry     *dispatchers.Registry
	Providers    *dispatchers.ProviderTable
	Settings     *config.Settings
	Logger       *log.Manager
	Reports      *store.Store // nil when reports are disabled or unavailable
	Environments *venv.Manager
	Output       *ui.Writer
	Styler       domain.Styler

	stateDir   string
	topSrcDir  string
	programDir string
}

// New creates an Application with all dependencies wired up.
func New(opts Options) (*Application, error) {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	a := &Application{
		Settings:   opts.Settings,
		Logger:     opts.Logger,
		stateDir:   opts.StateDir,
		topSrcDir:  opts.TopSrcDir,
		programDir: opts.ProgramDir,
	}

	if opts.Settings.Bool("reports.enabled") {
		reports, err := store.New(paths.ReportsDBPath(opts.StateDir))
		if err != nil {
			// Reports are best effort; mach stays usable without them.
			opts.Logger.Warn("error reports disabled: %v", err)
		} else {
			a.Reports = reports
		}
	}

	a.Environments = venv.NewManager(venv.Options{
		Root:      paths.EnvironmentsDir(opts.StateDir),
		TopSrcDir: opts.TopSrcDir,
		Python:    opts.Settings.String("environment.python"),
		Logger:    opts.Logger,
		Runner:    opts.Runner,
		Getenv:    opts.Getenv,
	})

	writerOpts := []ui.WriterOption{
		ui.WithConfigGetter(opts.Settings.Get),
		ui.WithEnvGetter(opts.Getenv),
	}
	if opts.PagerOff {
		writerOpts = append(writerOpts, ui.WithPagerDisabled())
	}
	a.Output = ui.NewWriter(opts.Stdout, writerOpts...)

	if style.Enabled() {
		a.Styler = style.NewStyler()
	} else {
		a.Styler = style.NopStyler{}
	}

	r := dispatchers.NewRegistry()
	r.SetLogger(opts.Logger)
	RegisterCategories(r)
	a.Registry = r

	deps := actions.DefaultDeps()
	deps.GlobalFlags = opts.GlobalFlags
	deps.Times = format.NewTimes(opts.Settings.String)
	if a.Reports != nil {
		deps.Reports = a.Reports
	}
	if err := actions.Register(r, deps); err != nil {
		a.Close()
		return nil, err
	}
	if err := settings.Register(r, settings.Deps{Store: opts.Settings}); err != nil {
		a.Close()
		return nil, err
	}

	a.Providers = dispatchers.NewProviderTable()
	a.Providers.Add("python", python.Provider(python.Deps{
		Runner:      opts.Runner,
		Interpreter: opts.Settings.String("environment.python"),
	}), python.Commands...)
	r.SetLoader(a.Providers)

	if opts.Setup != nil {
		if err := opts.Setup(r); err != nil {
			a.Close()
			return nil, err
		}
	}

	opts.Settings.DeclareProviders(r.SettingsProviders()...)
	return a, nil
}

// ExecutionContext returns the context commands of this run execute in.
func (a *Application) ExecutionContext(cwd string, stdin io.Reader, stdout, stderr io.Writer, interactive bool) *dispatchers.ExecutionContext {
	return &dispatchers.ExecutionContext{
		Cwd:          cwd,
		TopSrcDir:    a.topSrcDir,
		StateDir:     a.stateDir,
		ProgramDir:   a.programDir,
		Settings:     a.Settings,
		Logger:       a.Logger,
		Registry:     a.Registry,
		Environments: a.Environments,
		Stdin:        stdin,
		Stdout:       stdout,
		Stderr:       stderr,
		Interactive:  interactive,

		PrepareInstance:  a.prepare,
		FinalizeInstance: a.finalize,
	}
}

func (a *Application) prepare(_ *dispatchers.ExecutionContext, d *dispatchers.CommandDescriptor, args *dispatchers.Args) {
	a.Logger.Log(slog.LevelDebug, "command_started", map[string]any{
		"command": d.FullName(),
		"args":    args.Map(),
	}, "Running {command}")
}

func (a *Application) finalize(info dispatchers.FinalizeInfo) {
	params := map[string]any{
		"command":  info.Descriptor.FullName(),
		"code":     info.Code,
		"duration": info.Duration().Seconds(),
		"depth":    info.Depth,
	}
	if info.Err != nil {
		params["error"] = info.Err.Error()
	}
	a.Logger.Log(slog.LevelDebug, "command_finished", params, "{command} finished with code {code} in {duration}s")
}

// Close releases the report store and the log sinks.
func (a *Application) Close() error {
	if a.Reports != nil {
		_ = a.Reports.Close()
		a.Reports = nil
	}
	if a.Logger != nil {
		return a.Logger.Close()
	}
	return nil
}
