package cli

import (
	"io"

	"github.com/spf13/pflag"

	"github.com/footprint-tools/mach/internal/completions"
	"github.com/footprint-tools/mach/internal/usage"
)

// Globals are the flags accepted before the command name.
type Globals struct {
	Verbose        bool
	LogFile        string
	LogInterval    bool
	LogNoTimes     bool
	NoInteractive  bool
	DebugCommand   bool
	ProfileCommand bool
	SettingsFile   string
	Help           bool
}

func globalFlagSet(g *Globals) *pflag.FlagSet {
	fs := pflag.NewFlagSet("mach", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)
	fs.SortFlags = false

	fs.BoolVarP(&g.Verbose, "verbose", "v", false, "print verbose output")
	fs.StringVarP(&g.LogFile, "log-file", "l", "", "write structured log records to this file")
	fs.BoolVar(&g.LogInterval, "log-interval", false, "prefix log lines with time since the previous line")
	fs.BoolVar(&g.LogNoTimes, "log-no-times", false, "do not prefix log lines with times")
	fs.BoolVar(&g.NoInteractive, "no-interactive", false, "never wait for user input")
	fs.BoolVar(&g.DebugCommand, "debug-command", false, "wait for a debugger before running the command")
	fs.BoolVar(&g.ProfileCommand, "profile-command", false, "write a CPU profile of the command")
	fs.StringVar(&g.SettingsFile, "settings-file", "", "load additional settings from this file")
	fs.BoolVarP(&g.Help, "help", "h", false, "show this help")
	return fs
}

// ParseGlobals parses the leading global flags of argv and returns the
// remaining tokens, starting at the command name.
func ParseGlobals(argv []string) (Globals, []string, error) {
	var g Globals
	fs := globalFlagSet(&g)
	if err := fs.Parse(argv); err != nil {
		return g, nil, usage.InvalidFlag("mach", err.Error())
	}
	return g, fs.Args(), nil
}

// GlobalFlagInfo describes the global flags for shell completion.
func GlobalFlagInfo() []completions.FlagInfo {
	var flags []completions.FlagInfo
	globalFlagSet(&Globals{}).VisitAll(func(f *pflag.Flag) {
		flags = append(flags, completions.FlagInfo{
			Long:        f.Name,
			Short:       f.Shorthand,
			Description: f.Usage,
			HasValue:    f.Value.Type() != "bool",
		})
	})
	return flags
}

// WriteGlobalUsage prints the global flags section of the top-level help.
func WriteGlobalUsage(w io.Writer) {
	io.WriteString(w, "Global Arguments:\n")
	io.WriteString(w, globalFlagSet(&Globals{}).FlagUsagesWrapped(100))
}
