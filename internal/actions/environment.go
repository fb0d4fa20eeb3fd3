package actions

import (
	"context"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/footprint-tools/mach/internal/dispatchers"
)

// EnvironmentInfo is what the environment command reports.
type EnvironmentInfo struct {
	Cwd          string            `yaml:"cwd"`
	TopSrcDir    string            `yaml:"topsrcdir,omitempty"`
	StateDir     string            `yaml:"state_dir"`
	ProgramDir   string            `yaml:"program_dir,omitempty"`
	SettingsFile string            `yaml:"settings_file,omitempty"`
	Environments string            `yaml:"environments,omitempty"`
	Settings     map[string]string `yaml:"settings,omitempty"`
}

func environmentCommand() *dispatchers.Builder {
	format := dispatchers.Flag("format", "", "text", "output format")
	format.Choices = []string{"text", "yaml"}

	return dispatchers.Command(dispatchers.CommandSpec{
		Name:        "environment",
		Category:    "devenv",
		Description: "Show info about the mach environment.",
	}).
		Argument(format, dispatchers.BoolFlag("settings", "", "include effective settings")).
		Handler(func(_ context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
			info, err := collectEnvironment(inst.Context(), args.Bool("settings"))
			if err != nil {
				return nil, err
			}
			if args.String("format") == "yaml" {
				return nil, writeEnvironmentYAML(inst.Stdout(), info)
			}
			return nil, writeEnvironmentText(inst.Stdout(), info)
		})
}

func collectEnvironment(ec *dispatchers.ExecutionContext, withSettings bool) (EnvironmentInfo, error) {
	info := EnvironmentInfo{
		Cwd:        ec.Cwd,
		TopSrcDir:  ec.TopSrcDir,
		StateDir:   ec.StateDir,
		ProgramDir: ec.ProgramDir,
	}
	if p, ok := ec.Settings.(interface{ Path() string }); ok {
		info.SettingsFile = p.Path()
	}
	if p, ok := ec.Environments.(interface{ Root() string }); ok {
		info.Environments = p.Root()
	}
	if withSettings && ec.Settings != nil {
		all, err := ec.Settings.GetAll()
		if err != nil {
			return info, fmt.Errorf("reading settings: %w", err)
		}
		info.Settings = all
	}
	return info, nil
}

func writeEnvironmentYAML(w io.Writer, info EnvironmentInfo) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(info); err != nil {
		return err
	}
	return enc.Close()
}

func writeEnvironmentText(w io.Writer, info EnvironmentInfo) error {
	topsrcdir := info.TopSrcDir
	if topsrcdir == "" {
		topsrcdir = "(not in a source tree)"
	}

	rows := [][2]string{
		{"cwd", info.Cwd},
		{"topsrcdir", topsrcdir},
		{"state dir", info.StateDir},
	}
	if info.ProgramDir != "" {
		rows = append(rows, [2]string{"program dir", info.ProgramDir})
	}
	if info.SettingsFile != "" {
		rows = append(rows, [2]string{"settings file", info.SettingsFile})
	}
	if info.Environments != "" {
		rows = append(rows, [2]string{"environments", info.Environments})
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s: %s\n", row[0], row[1]); err != nil {
			return err
		}
	}

	if len(info.Settings) > 0 {
		fmt.Fprintln(w, "\nsettings:")
		keys := make([]string, 0, len(info.Settings))
		for k := range info.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s=%s\n", k, info.Settings[k])
		}
	}
	return nil
}
