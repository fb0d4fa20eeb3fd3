package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/mach/internal/config"
	"github.com/footprint-tools/mach/internal/dispatchers"
	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/execx"
	"github.com/footprint-tools/mach/internal/log"
	"github.com/footprint-tools/mach/internal/paths"
)

func newTestApp(t *testing.T, settingsFile string, setup func(*dispatchers.Registry) error) (*Application, *bytes.Buffer) {
	t.Helper()
	stateDir := t.TempDir()
	path := paths.SettingsFilePath(stateDir)
	if settingsFile != "" {
		require.NoError(t, os.WriteFile(path, []byte(settingsFile), 0o600))
	}
	s, err := config.Load(path)
	require.NoError(t, err)

	var logs bytes.Buffer
	logger, err := log.NewManager(log.Options{Terminal: &logs, Verbose: true, NoTimes: true})
	require.NoError(t, err)

	a, err := New(Options{
		StateDir:  stateDir,
		TopSrcDir: "/src/tree",
		Settings:  s,
		Logger:    logger,
		Stdout:    &bytes.Buffer{},
		Getenv:    func(string) string { return "" },
		Runner:    func(context.Context, execx.Command) execx.Result { return execx.Result{} },
		PagerOff:  true,
		Setup:     setup,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, &logs
}

func TestNew_RegistersBuiltins(t *testing.T) {
	a, _ := newTestApp(t, "", nil)

	for _, name := range []string{"environment", "mach-commands", "mach-completion", "reports", "settings"} {
		_, ok := a.Registry.Lookup(name)
		require.True(t, ok, name)
	}

	// Python commands load on first use.
	_, ok := a.Registry.Lookup("python")
	require.False(t, ok)
	require.Equal(t, []string{"doc", "python"}, a.Providers.Commands())
}

func TestNew_CategoriesByPriority(t *testing.T) {
	a, _ := newTestApp(t, "", nil)

	var names []string
	for _, c := range a.Registry.Categories() {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{"build", "post-build", "testing", "ci", "devenv", "misc"}, names)
}

func TestNew_OpensReportStore(t *testing.T) {
	a, _ := newTestApp(t, "", nil)

	require.NotNil(t, a.Reports)
	require.FileExists(t, paths.ReportsDBPath(a.stateDir))
}

func TestNew_ReportsDisabled(t *testing.T) {
	a, _ := newTestApp(t, "reports.enabled=false\n", nil)

	require.Nil(t, a.Reports)
	_, err := a.Registry.DispatchByName(context.Background(), "reports", a.ExecutionContext("/", nil, &bytes.Buffer{}, &bytes.Buffer{}, false), nil, "list", nil)
	var ue *dispatchers.UserError
	require.ErrorAs(t, err, &ue)
}

type extraSettings struct{}

func (extraSettings) Settings() []domain.Setting {
	return []domain.Setting{{Name: "build.jobs", Default: "8", Section: "Build"}}
}

func TestNew_SetupHookAndSettingsProviders(t *testing.T) {
	a, _ := newTestApp(t, "", func(r *dispatchers.Registry) error {
		r.RegisterSettingsProvider(extraSettings{})
		_, err := dispatchers.Command(dispatchers.CommandSpec{Name: "build", Category: "build", Description: "Build the tree."}).
			Handler(func(context.Context, *dispatchers.Instance, *dispatchers.Args) (any, error) { return 0, nil }).
			Register(r)
		return err
	})

	_, ok := a.Registry.Lookup("build")
	require.True(t, ok)
	require.Equal(t, "8", a.Settings.String("build.jobs"))
}

func TestExecutionContext_HooksLogLifecycle(t *testing.T) {
	a, logs := newTestApp(t, "", nil)
	var stdout bytes.Buffer
	ec := a.ExecutionContext("/src/tree", nil, &stdout, &bytes.Buffer{}, false)

	require.Equal(t, "/src/tree", ec.TopSrcDir)
	require.Equal(t, a.Environments, ec.Environments)

	code, err := a.Registry.DispatchByName(context.Background(), "mach-commands", ec, []string{"--prefix", "sett"}, "", nil)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "settings\n", stdout.String())

	out := logs.String()
	require.Contains(t, out, "Running mach-commands")
	require.Contains(t, out, "mach-commands finished with code 0")
}

func TestPythonProviderLoadsLazily(t *testing.T) {
	a, _ := newTestApp(t, "", nil)

	err := a.Providers.Load(context.Background(), a.Registry, "python")
	require.NoError(t, err)

	d, ok := a.Registry.Lookup("doc")
	require.True(t, ok)
	require.Equal(t, "docs", d.Virtualenv)
}

func TestClose_Idempotent(t *testing.T) {
	a, _ := newTestApp(t, "", nil)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	require.Nil(t, a.Reports)
}

func TestEnvironmentsRoot(t *testing.T) {
	a, _ := newTestApp(t, "", nil)
	require.Equal(t, filepath.Join(a.stateDir, "_virtualenvs"), a.Environments.Root())
}
