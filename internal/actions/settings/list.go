package settings

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/ui/style"
)

func list(w io.Writer, all bool, deps Deps) error {
	values, err := deps.Store.GetAll()
	if err != nil {
		return err
	}

	schema := deps.Store.Schema()
	if all {
		shown := make([]domain.Setting, len(schema))
		for i, s := range schema {
			s.Hidden = false
			shown[i] = s
		}
		schema = shown
	}

	var b strings.Builder
	sections, grouped := domain.SettingsBySection(schema)
	for i, section := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", style.Header("["+section+"]"))
		for _, s := range grouped[section] {
			fmt.Fprintf(&b, "%s=%s", s.Name, values[s.Name])
			if s.Description != "" {
				fmt.Fprintf(&b, "  %s", style.Muted("# "+s.Description))
			}
			b.WriteString("\n")
		}
	}

	aliases := deps.Store.Aliases()
	if len(aliases) > 0 {
		if len(sections) > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", style.Header("[Aliases]"))
		names := make([]string, 0, len(aliases))
		for name := range aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "%s%s=%s\n", domain.AliasPrefix, name, aliases[name])
		}
	}

	_, err = io.WriteString(w, b.String())
	return err
}
