package cli

import "strings"

// ExpandAlias replaces argv[0] with its alias.<name> expansion. Aliases
// expand once; an alias naming another alias is not expanded again.
func ExpandAlias(argv []string, aliases map[string]string) []string {
	if len(argv) == 0 {
		return argv
	}
	expansion, ok := aliases[argv[0]]
	if !ok {
		return argv
	}
	fields := strings.Fields(expansion)
	if len(fields) == 0 {
		return argv
	}
	out := make([]string, 0, len(fields)+len(argv)-1)
	out = append(out, fields...)
	return append(out, argv[1:]...)
}
