package config

import "strings"

// lineKey returns the key of a key=value line, or "" for anything else.
func lineKey(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return ""
	}
	k, _, found := strings.Cut(trimmed, "=")
	if !found {
		return ""
	}
	return strings.TrimSpace(k)
}

// Set replaces the value of key in lines, keeping any inline comment, or
// appends a new line. It reports whether an existing line was updated.
func Set(lines []string, key, value string) ([]string, bool) {
	value = quoteValue(value)

	for i, line := range lines {
		if lineKey(line) != key {
			continue
		}

		_, old, _ := strings.Cut(line, "=")
		if idx := strings.Index(old, " #"); idx >= 0 {
			lines[i] = key + "=" + value + " " + strings.TrimSpace(old[idx:])
		} else {
			lines[i] = key + "=" + value
		}
		return lines, true
	}

	return append(lines, key+"="+value), false
}

// Unset drops every line assigning key. It reports whether anything was removed.
func Unset(lines []string, key string) ([]string, bool) {
	out := make([]string, 0, len(lines))
	removed := false

	for _, line := range lines {
		if lineKey(line) == key {
			removed = true
			continue
		}
		out = append(out, line)
	}

	return out, removed
}
