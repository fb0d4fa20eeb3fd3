package domain

import (
	"sort"
	"strings"
)

// Setting declares one configuration key with its metadata.
type Setting struct {
	Name        string
	Default     string
	Description string
	Section     string // Section for grouping in `mach settings list`
	Hidden      bool   // Hidden keys are not shown in settings list
}

// AliasPrefix marks keys that define command aliases, e.g. "alias.b=build".
// Alias keys are accepted without a declaration.
const AliasPrefix = "alias."

// FrameworkSettings are the settings mach itself understands.
// Order determines display order in `mach settings list`.
var FrameworkSettings = []Setting{
	{
		Name:        "runprefix",
		Default:     "mach",
		Description: "Command prefix shown in help and suggestions",
		Section:     "General",
	},
	{
		Name:        "ui.color",
		Default:     "auto",
		Description: "Color output: auto, always, never",
		Section:     "Display",
	},
	{
		Name:        "ui.pager",
		Default:     "less -FRSX",
		Description: "Pager command for long output",
		Section:     "Display",
	},
	{
		Name:        "ui.date",
		Default:     "yyyy-mm-dd",
		Description: "Date format: yyyy-mm-dd, mm/dd/yyyy, dd/mm/yyyy or a Go layout",
		Section:     "Display",
	},
	{
		Name:        "ui.time",
		Default:     "24h",
		Description: "Clock format: 24h or 12h",
		Section:     "Display",
	},
	{
		Name:        "log.level",
		Default:     "info",
		Description: "Terminal log level: debug, info, warn, error",
		Section:     "Logging",
	},
	{
		Name:        "log.journal",
		Default:     "false",
		Description: "Also send log records to the systemd journal (true/false)",
		Section:     "Logging",
	},
	{
		Name:        "environment.python",
		Default:     "python3",
		Description: "Interpreter used to create execution environments",
		Section:     "Environments",
	},
	{
		Name:        "reports.enabled",
		Default:     "true",
		Description: "Store error reports for command failures (true/false)",
		Section:     "Reports",
	},
}

// IsAliasKey reports whether key defines an alias.
func IsAliasKey(key string) bool {
	return strings.HasPrefix(key, AliasPrefix) && len(key) > len(AliasPrefix)
}

// SettingsBySection returns visible settings grouped by section, with the
// section names in first-seen order.
func SettingsBySection(settings []Setting) ([]string, map[string][]Setting) {
	var sections []string
	grouped := make(map[string][]Setting)
	for _, s := range settings {
		if s.Hidden {
			continue
		}
		section := s.Section
		if section == "" {
			section = "Other"
		}
		if _, seen := grouped[section]; !seen {
			sections = append(sections, section)
		}
		grouped[section] = append(grouped[section], s)
	}
	return sections, grouped
}

// SortedNames returns the names of settings in lexical order.
func SortedNames(settings []Setting) []string {
	names := make([]string, 0, len(settings))
	for _, s := range settings {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}
