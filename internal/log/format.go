package log

import (
	"fmt"
	"strings"
	"time"
)

// FormatMessage fills {key} placeholders in format from params.
// Unknown placeholders are left as they are; "{{" and "}}" produce literal braces.
func FormatMessage(format string, params map[string]any) string {
	if !strings.ContainsAny(format, "{}") {
		return format
	}

	var out strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case c == '{' && i+1 < len(format) && format[i+1] == '{':
			out.WriteByte('{')
			i++
		case c == '}' && i+1 < len(format) && format[i+1] == '}':
			out.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(format[i:], '}')
			if end < 0 {
				out.WriteString(format[i:])
				return out.String()
			}
			key := format[i+1 : i+end]
			if v, ok := params[key]; ok {
				fmt.Fprint(&out, v)
			} else {
				out.WriteString(format[i : i+end+1])
			}
			i += end
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

// FormatElapsed renders d as minutes and seconds, e.g. " 1:02.35".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := (d % time.Minute).Seconds()
	return fmt.Sprintf("%2d:%05.2f", minutes, seconds)
}
