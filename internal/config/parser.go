package config

import (
	"fmt"
	"strings"
)

// ParseError reports a line that is not a key=value pair.
type ParseError struct {
	Line int // 1-based
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: expected key=value, got %q", e.Line, e.Text)
}

// Parse reads key=value lines. Blank lines and lines starting with '#' are
// skipped, a " #" sequence starts an inline comment, surrounding double quotes
// are removed from values and a later key overrides an earlier one.
func Parse(lines []string) (map[string]string, error) {
	out := make(map[string]string)

	for i, line := range lines {
		if i == 0 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}

		key, value, ok, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: line}
		}
		if !ok {
			continue
		}
		out[key] = value
	}

	return out, nil
}

// parseLine returns ok=false for blank and comment lines.
func parseLine(line string) (key, value string, ok bool, err error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false, nil
	}

	k, v, found := strings.Cut(trimmed, "=")
	if !found {
		return "", "", false, fmt.Errorf("missing '='")
	}

	key = strings.TrimSpace(k)
	if key == "" {
		return "", "", false, fmt.Errorf("empty key")
	}

	return key, cleanValue(v), true, nil
}

func cleanValue(v string) string {
	if idx := strings.Index(v, " #"); idx >= 0 {
		v = v[:idx]
	}
	v = strings.TrimSpace(v)
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = v[1 : len(v)-1]
	}
	return v
}

// quoteValue quotes values containing spaces so they survive a round trip.
func quoteValue(v string) string {
	if strings.ContainsAny(v, " \t") {
		return `"` + v + `"`
	}
	return v
}
