package completions

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/mach/internal/dispatchers"
)

func noop(context.Context, *dispatchers.Instance, *dispatchers.Args) (any, error) { return 0, nil }

func buildTestCommands(t *testing.T) []CommandInfo {
	t.Helper()
	r := dispatchers.NewRegistry()
	r.RegisterCategory("devenv", "Development Environment", "", 50)

	format := dispatchers.Flag("format", "f", "text", "Output format")
	format.Choices = []string{"text", "json"}

	dispatchers.Command(dispatchers.CommandSpec{Name: "settings", Category: "devenv", Description: "Manage settings\nLonger text."}).
		Handler(noop).MustRegister(r)
	dispatchers.Subcommand(dispatchers.SubcommandSpec{Command: "settings", Name: "get", Description: "Get a setting"}).
		Argument(dispatchers.Positional("key", ""), format).
		Handler(noop).MustRegister(r)
	dispatchers.Subcommand(dispatchers.SubcommandSpec{Command: "settings", Name: "set", Description: "Set a setting"}).
		Handler(noop).MustRegister(r)
	dispatchers.Command(dispatchers.CommandSpec{Name: "build", Category: "devenv", Description: "Build the tree"}).
		Argument(dispatchers.BoolFlag("verbose", "v", "Print more output"), dispatchers.IntFlag("jobs", "j", 0, "Parallel jobs")).
		Handler(noop).MustRegister(r)

	globals := []FlagInfo{{Long: "log-file", Short: "l", Description: "Log to a file", HasValue: true}}
	return ExtractCommands(r, "mach", globals)
}

func TestExtractCommands(t *testing.T) {
	commands := buildTestCommands(t)

	root := FindCommand(commands, []string{"mach"})
	require.NotNil(t, root)
	require.Equal(t, []string{"build", "settings", "help"}, root.Subcommands)
	require.Len(t, root.Flags, 1)

	settings := FindCommand(commands, []string{"mach", "settings"})
	require.NotNil(t, settings)
	require.Equal(t, "Manage settings", settings.Summary)
	require.Equal(t, []string{"get", "set"}, settings.Subcommands)

	get := FindCommand(commands, []string{"mach", "settings", "get"})
	require.NotNil(t, get)
	require.Equal(t, "Get a setting", get.Summary)
	require.Len(t, get.Flags, 2)
	require.Equal(t, "format", get.Flags[0].Long)
	require.True(t, get.Flags[0].HasValue)
	require.Equal(t, []string{"text", "json"}, get.Flags[0].Choices)
	require.Equal(t, "help", get.Flags[1].Long)

	build := FindCommand(commands, []string{"mach", "build"})
	require.NotNil(t, build)
	require.False(t, build.Flags[0].HasValue)
	require.True(t, build.Flags[1].HasValue)

	help := FindCommand(commands, []string{"mach", "help"})
	require.NotNil(t, help)
	require.Equal(t, []string{"build", "settings"}, help.Subcommands)
}

func TestFindCommand_NotFound(t *testing.T) {
	commands := []CommandInfo{{Name: "mach", Path: []string{"mach"}}}
	require.Nil(t, FindCommand(commands, []string{"mach", "nonexistent"}))
}

func TestParseShell(t *testing.T) {
	s, err := ParseShell(" ZSH ")
	require.NoError(t, err)
	require.Equal(t, ShellZsh, s)

	_, err = ParseShell("tcsh")
	require.ErrorContains(t, err, "unsupported shell")
}

func TestRunningShell(t *testing.T) {
	env := map[string]string{"SHELL": "/usr/local/bin/fish"}
	require.Equal(t, ShellFish, RunningShell(func(k string) string { return env[k] }))

	env["SHELL"] = "/bin/ksh"
	require.Equal(t, Shell(""), RunningShell(func(k string) string { return env[k] }))
}

func TestPrint(t *testing.T) {
	commands := buildTestCommands(t)
	var buf bytes.Buffer

	require.NoError(t, Print(&buf, ShellBash, "mach", commands))
	require.Contains(t, buf.String(), "complete -F _mach_completions mach")

	require.Error(t, Print(&buf, Shell("csh"), "mach", commands))
}

func TestSourceInstructions(t *testing.T) {
	require.Equal(t, `eval "$(mach mach-completion zsh)"`, SourceInstructions(ShellZsh, "mach"))
	require.Equal(t, `mach mach-completion fish | source`, SourceInstructions(ShellFish, "mach"))
	require.Equal(t, "~/.zshrc", RcFile(ShellZsh))
	require.Equal(t, "/home/u/.config/fish/completions/mach.fish", AutoInstallPath(ShellFish, "/home/u", "mach"))
	require.Empty(t, AutoInstallPath(ShellZsh, "/home/u", "mach"))
	require.Empty(t, AutoInstallPath(ShellFish, "", "mach"))
}
