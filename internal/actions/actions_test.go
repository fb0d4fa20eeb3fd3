package actions

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/footprint-tools/mach/internal/dispatchers"
	"github.com/footprint-tools/mach/internal/store"
)

type fakeReports struct {
	reports []store.Report
	filter  store.ReportFilter
	cleared bool
}

func (f *fakeReports) List(filter store.ReportFilter) ([]store.Report, error) {
	f.filter = filter
	return f.reports, nil
}

func (f *fakeReports) Get(id string) (store.Report, error) {
	for _, r := range f.reports {
		if strings.HasPrefix(r.ID, id) {
			return r, nil
		}
	}
	return store.Report{}, store.ErrReportNotFound
}

func (f *fakeReports) Clear() (int64, error) {
	f.cleared = true
	n := int64(len(f.reports))
	f.reports = nil
	return n, nil
}

type fixedAnswer bool

func (a fixedAnswer) Confirm(string, bool) (bool, error) { return bool(a), nil }

type settingsStub map[string]string

func (s settingsStub) Get(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}
func (s settingsStub) GetAll() (map[string]string, error) { return s, nil }
func (s settingsStub) Set(key, value string) error        { s[key] = value; return nil }
func (s settingsStub) Unset(key string) error             { delete(s, key); return nil }
func (s settingsStub) Path() string                       { return "/state/machrc" }

type testEnv struct {
	registry *dispatchers.Registry
	ctx      *dispatchers.ExecutionContext
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

func newTestEnv(t *testing.T, deps Deps) *testEnv {
	t.Helper()
	r := dispatchers.NewRegistry()
	r.RegisterCategory("devenv", "Development Environment", "", 20)
	r.RegisterCategory("misc", "Potpourri", "", 10)
	require.NoError(t, Register(r, deps))

	var stdout, stderr bytes.Buffer
	return &testEnv{
		registry: r,
		ctx: &dispatchers.ExecutionContext{
			Cwd:      "/src/tree/sub",
			StateDir: "/state",
			Stdout:   &stdout,
			Stderr:   &stderr,
			Registry: r,
		},
		stdout: &stdout,
		stderr: &stderr,
	}
}

func (e *testEnv) run(t *testing.T, name, sub string, argv ...string) (int, error) {
	t.Helper()
	return e.registry.DispatchByName(context.Background(), name, e.ctx, argv, sub, nil)
}

func TestRegister_AllCommands(t *testing.T) {
	env := newTestEnv(t, Deps{})
	require.Equal(t, Commands, env.registry.Commands())

	reports, ok := env.registry.Lookup("reports")
	require.True(t, ok)
	var subs []string
	for _, s := range reports.OrderedSubcommands() {
		subs = append(subs, s.Subcommand)
	}
	require.Equal(t, []string{"list", "show", "clear"}, subs)
}

func TestMachCommands_Prefix(t *testing.T) {
	env := newTestEnv(t, Deps{})

	code, err := env.run(t, "mach-commands", "", "--prefix", "mach-")
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "mach-commands\nmach-completion\nmach-debug-commands\n", env.stdout.String())
}

func TestMachDebugCommands(t *testing.T) {
	env := newTestEnv(t, Deps{})

	_, err := env.run(t, "mach-debug-commands", "", "reports")
	require.NoError(t, err)

	out := env.stdout.String()
	require.Contains(t, out, "reports\n")
	require.Contains(t, out, "\tCategory: devenv\n")
	require.Contains(t, out, "\tDescription: Inspect stored error reports.\n")
	require.Contains(t, out, "\tSubcommands: list, show, clear\n")
	require.Contains(t, out, "reports.go")
	require.NotContains(t, out, "environment")
}

func TestCompletion_ExplicitShell(t *testing.T) {
	env := newTestEnv(t, Deps{Program: "mach"})

	_, err := env.run(t, "mach-completion", "", "bash")
	require.NoError(t, err)
	require.Contains(t, env.stdout.String(), "complete -F _mach mach")
	require.Contains(t, env.stdout.String(), "reports")
}

func TestCompletion_RejectsUnknownShell(t *testing.T) {
	env := newTestEnv(t, Deps{})

	_, err := env.run(t, "mach-completion", "", "tcsh")
	require.Error(t, err)
}

func TestCompletion_UndetectedShell(t *testing.T) {
	env := newTestEnv(t, Deps{})
	err := printCompletion(env.stdout, env.registry, "", Deps{Program: "mach"}, func(string) string { return "" })
	var ue *dispatchers.UserError
	require.ErrorAs(t, err, &ue)
	require.Contains(t, ue.Message, "could not detect your shell")
}

func TestInstallCompletion_Fish(t *testing.T) {
	env := newTestEnv(t, Deps{})
	home := t.TempDir()
	getenv := func(key string) string {
		if key == "HOME" {
			return home
		}
		return ""
	}

	require.NoError(t, installCompletion(env.stdout, env.registry, "fish", Deps{Program: "mach"}, getenv))

	target := filepath.Join(home, ".config", "fish", "completions", "mach.fish")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Contains(t, string(data), "complete -c mach")
	require.Equal(t, "Installed fish completions to "+target+"\n", env.stdout.String())
}

func TestInstallCompletion_ZshPrintsRcLine(t *testing.T) {
	env := newTestEnv(t, Deps{})
	getenv := func(key string) string {
		if key == "HOME" {
			return "/home/dev"
		}
		return ""
	}

	require.NoError(t, installCompletion(env.stdout, env.registry, "zsh", Deps{Program: "mach"}, getenv))
	require.Equal(t, "Add this line to ~/.zshrc:\n\n    eval \"$(mach mach-completion zsh)\"\n", env.stdout.String())
}

func TestEnvironment_Text(t *testing.T) {
	env := newTestEnv(t, Deps{})
	env.ctx.TopSrcDir = "/src/tree"
	env.ctx.Settings = settingsStub{"ui.color": "never"}

	_, err := env.run(t, "environment", "", "--settings")
	require.NoError(t, err)

	out := env.stdout.String()
	require.Contains(t, out, "cwd: /src/tree/sub\n")
	require.Contains(t, out, "topsrcdir: /src/tree\n")
	require.Contains(t, out, "state dir: /state\n")
	require.Contains(t, out, "settings file: /state/machrc\n")
	require.Contains(t, out, "  ui.color=never\n")
}

func TestEnvironment_OutsideTree(t *testing.T) {
	env := newTestEnv(t, Deps{})

	_, err := env.run(t, "environment", "")
	require.NoError(t, err)
	require.Contains(t, env.stdout.String(), "topsrcdir: (not in a source tree)\n")
}

func TestEnvironment_YAML(t *testing.T) {
	env := newTestEnv(t, Deps{})
	env.ctx.TopSrcDir = "/src/tree"

	_, err := env.run(t, "environment", "", "--format", "yaml")
	require.NoError(t, err)

	var info EnvironmentInfo
	require.NoError(t, yaml.Unmarshal(env.stdout.Bytes(), &info))
	require.Equal(t, "/src/tree", info.TopSrcDir)
	require.Equal(t, "/state", info.StateDir)
}

func TestEnvironment_RejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t, Deps{})

	_, err := env.run(t, "environment", "", "--format", "xml")
	require.Error(t, err)
}

func sampleReports() *fakeReports {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeReports{reports: []store.Report{
		{ID: "0123456789abcdef", Command: "build", Kind: store.KindHandler, Message: "boom\nsecond line", Stack: "goroutine 1", Argv: []string{"build", "-j4"}, CreatedAt: at},
		{ID: "fedcba9876543210", Command: "test", Kind: store.KindModule, Message: "bad", CreatedAt: at.Add(-time.Hour)},
	}}
}

func TestReports_Unavailable(t *testing.T) {
	env := newTestEnv(t, Deps{})

	_, err := env.run(t, "reports", "list")
	var ue *dispatchers.UserError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "error reports are unavailable", ue.Message)
}

func TestReports_List(t *testing.T) {
	reports := sampleReports()
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, Deps{Reports: reports, Now: func() time.Time { return now }})

	_, err := env.run(t, "reports", "list", "-n", "5", "--command", "build", "--since", "24h")
	require.NoError(t, err)

	require.Equal(t, 5, reports.filter.Limit)
	require.Equal(t, "build", reports.filter.Command)
	require.NotNil(t, reports.filter.Since)
	require.Equal(t, now.Add(-24*time.Hour), *reports.filter.Since)

	lines := strings.Split(strings.TrimSpace(env.stdout.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "01234567  "))
	require.True(t, strings.HasSuffix(lines[0], "build  boom"))
}

func TestReports_ParentLists(t *testing.T) {
	reports := sampleReports()
	env := newTestEnv(t, Deps{Reports: reports})

	_, err := env.run(t, "reports", "")
	require.NoError(t, err)
	require.Equal(t, 20, reports.filter.Limit)
	require.Contains(t, env.stdout.String(), "fedcba98")
}

func TestReports_ListEmpty(t *testing.T) {
	env := newTestEnv(t, Deps{Reports: &fakeReports{}})

	_, err := env.run(t, "reports", "list")
	require.NoError(t, err)
	require.Equal(t, "No error reports.\n", env.stdout.String())
}

func TestReports_InvalidSince(t *testing.T) {
	env := newTestEnv(t, Deps{Reports: &fakeReports{}})

	_, err := env.run(t, "reports", "list", "--since", "yesterday")
	var ue *dispatchers.UserError
	require.ErrorAs(t, err, &ue)
}

func TestReports_Show(t *testing.T) {
	env := newTestEnv(t, Deps{Reports: sampleReports()})

	_, err := env.run(t, "reports", "show", "0123")
	require.NoError(t, err)

	out := env.stdout.String()
	require.Contains(t, out, "Report 0123456789abcdef\n")
	require.Contains(t, out, "Kind:    handler\n")
	require.Contains(t, out, "Argv:    build -j4\n")
	require.Contains(t, out, "boom\nsecond line\n")
	require.Contains(t, out, "goroutine 1\n")
}

func TestReports_ShowUnknown(t *testing.T) {
	env := newTestEnv(t, Deps{Reports: sampleReports()})

	_, err := env.run(t, "reports", "show", "zzz")
	var ue *dispatchers.UserError
	require.ErrorAs(t, err, &ue)
	require.Contains(t, ue.Message, `"zzz"`)
}

func TestReports_ClearConfirm(t *testing.T) {
	tests := []struct {
		name    string
		answer  bool
		argv    []string
		code    int
		cleared bool
	}{
		{name: "yes flag skips prompt", answer: false, argv: []string{"--yes"}, code: 0, cleared: true},
		{name: "confirmed", answer: true, code: 0, cleared: true},
		{name: "declined", answer: false, code: 1, cleared: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := sampleReports()
			deps := Deps{
				Reports: reports,
				Prompt: func(bool, io.Reader, io.Writer) Confirmer {
					return fixedAnswer(tt.answer)
				},
			}
			env := newTestEnv(t, deps)

			code, err := env.run(t, "reports", "clear", tt.argv...)
			require.NoError(t, err)
			require.Equal(t, tt.code, code)
			require.Equal(t, tt.cleared, reports.cleared)
			if tt.cleared {
				require.Contains(t, env.stdout.String(), "Deleted 2 report(s).")
			}
		})
	}
}
