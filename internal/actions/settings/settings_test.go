package settings

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/mach/internal/config"
	"github.com/footprint-tools/mach/internal/dispatchers"
	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/usage"
)

type harness struct {
	registry *dispatchers.Registry
	settings *config.Settings
	path     string
	stdout   *bytes.Buffer
}

func newHarness(t *testing.T, content string) *harness {
	t.Helper()
	path := filepath.Join(t.TempDir(), "machrc")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	s, err := config.Load(path)
	require.NoError(t, err)
	s.Declare(domain.FrameworkSettings...)
	s.Declare(domain.Setting{Name: "build.secret", Default: "x", Hidden: true, Section: "Build"})

	r := dispatchers.NewRegistry()
	r.RegisterCategory("devenv", "Development Environment", "", 20)
	require.NoError(t, Register(r, Deps{Store: s}))

	return &harness{registry: r, settings: s, path: path, stdout: &bytes.Buffer{}}
}

func (h *harness) run(sub string, argv ...string) error {
	ec := &dispatchers.ExecutionContext{Stdout: h.stdout, Stderr: &bytes.Buffer{}, Settings: h.settings}
	_, err := h.registry.DispatchByName(context.Background(), "settings", ec, argv, sub, nil)
	return err
}

func TestSubcommands_DeclarationOrder(t *testing.T) {
	h := newHarness(t, "")
	d, ok := h.registry.Lookup("settings")
	require.True(t, ok)

	var names []string
	for _, s := range d.OrderedSubcommands() {
		names = append(names, s.Subcommand)
	}
	require.Equal(t, []string{"list", "get", "set", "unset"}, names)
}

func TestList_SchemaOrderAndSections(t *testing.T) {
	h := newHarness(t, "ui.color=never\nalias.b=build\n")

	require.NoError(t, h.run("list"))

	out := h.stdout.String()
	require.True(t, strings.HasPrefix(out, "[General]\nrunprefix=mach  # Command prefix"))
	require.Contains(t, out, "ui.color=never  # Color output")
	require.Less(t, strings.Index(out, "ui.color="), strings.Index(out, "log.level="))
	require.Contains(t, out, "[Aliases]\nalias.b=build\n")
	require.NotContains(t, out, "build.secret")
}

func TestList_AllIncludesHidden(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run("", "--all"))
	require.Contains(t, h.stdout.String(), "[Build]\nbuild.secret=x\n")
}

func TestGet(t *testing.T) {
	h := newHarness(t, "log.level=debug\nalias.t=test --verbose\n")

	require.NoError(t, h.run("get", "log.level"))
	require.NoError(t, h.run("get", "reports.enabled"))
	require.NoError(t, h.run("get", "alias.t"))
	require.Equal(t, "debug\ntrue\ntest --verbose\n", h.stdout.String())
}

func TestGet_UnknownKey(t *testing.T) {
	h := newHarness(t, "")

	err := h.run("get", "nope")
	require.ErrorIs(t, err, &usage.Error{Kind: usage.ErrInvalidSettingKey})
}

func TestGet_UnsetAlias(t *testing.T) {
	h := newHarness(t, "")

	err := h.run("get", "alias.missing")
	require.ErrorIs(t, err, &usage.Error{Kind: usage.ErrInvalidSettingKey})
}

func TestSetAndUnset_Persist(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run("set", "ui.pager", "more"))
	require.Equal(t, "set ui.pager=more\n", h.stdout.String())

	data, err := os.ReadFile(h.path)
	require.NoError(t, err)
	require.Contains(t, string(data), "ui.pager=more")

	reloaded, err := config.Load(h.path)
	require.NoError(t, err)
	v, _ := reloaded.Get("ui.pager")
	require.Equal(t, "more", v)

	h.stdout.Reset()
	require.NoError(t, h.run("unset", "ui.pager"))
	require.Equal(t, "unset ui.pager\n", h.stdout.String())
	require.Equal(t, "less -FRSX", h.settings.String("ui.pager"))
}

func TestSet_RejectsUnknownKey(t *testing.T) {
	h := newHarness(t, "")

	err := h.run("set", "bogus.key", "1")
	require.ErrorIs(t, err, &usage.Error{Kind: usage.ErrInvalidSettingKey})

	_, statErr := os.Stat(h.path)
	require.True(t, os.IsNotExist(statErr))
}

func TestSet_MissingValue(t *testing.T) {
	h := newHarness(t, "")

	err := h.run("set", "ui.pager")
	require.ErrorIs(t, err, &usage.Error{Kind: usage.ErrMissingArgument})
}

type fakeAsker struct {
	answer   string
	question string
	def      string
}

func (f *fakeAsker) Ask(question, def string) (string, error) {
	f.question, f.def = question, def
	return f.answer, nil
}

func TestSet_AsksForMissingValue(t *testing.T) {
	asker := &fakeAsker{answer: "most"}
	h := newHarness(t, "ui.pager=more\n")
	r := dispatchers.NewRegistry()
	r.RegisterCategory("devenv", "Development Environment", "", 20)
	require.NoError(t, Register(r, Deps{
		Store:  h.settings,
		Prompt: func(bool, io.Reader, io.Writer) Asker { return asker },
	}))

	ec := &dispatchers.ExecutionContext{Stdout: h.stdout, Stderr: &bytes.Buffer{}, Settings: h.settings, Interactive: true}
	_, err := r.DispatchByName(context.Background(), "settings", ec, []string{"ui.pager"}, "set", nil)
	require.NoError(t, err)

	require.Equal(t, "Value for ui.pager?", asker.question)
	require.Equal(t, "more", asker.def)
	require.Equal(t, "set ui.pager=most\n", h.stdout.String())
	require.Equal(t, "most", h.settings.String("ui.pager"))
}

func TestUnset_UnknownKey(t *testing.T) {
	h := newHarness(t, "")

	err := h.run("unset", "bogus")
	require.ErrorIs(t, err, &usage.Error{Kind: usage.ErrInvalidSettingKey})
}
