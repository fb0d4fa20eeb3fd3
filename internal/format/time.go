// Package format renders timestamps the way the ui.date and ui.time
// settings ask for.
package format

import (
	"strings"
	"time"
)

// Times formats timestamps with user-selected layouts.
type Times struct {
	date string
	time string
}

// NewTimes reads the ui.date and ui.time settings through get. Unknown or
// empty values fall back to ISO dates and a 24h clock.
func NewTimes(get func(key string) string) Times {
	if get == nil {
		get = func(string) string { return "" }
	}
	return Times{date: dateLayout(get("ui.date")), time: timeLayout(get("ui.time"))}
}

// Date formats only the date, e.g. "2024-01-23" or "23/01/2024".
func (f Times) Date(t time.Time) string {
	return t.Format(f.layouts().date)
}

// Time formats the time of day with seconds, e.g. "15:04:05" or "3:04:05 PM".
func (f Times) Time(t time.Time) string {
	return t.Format(f.layouts().time)
}

// Full formats date and time.
func (f Times) Full(t time.Time) string {
	return f.Date(t) + " " + f.Time(t)
}

func (f Times) layouts() Times {
	if f.date == "" {
		f.date = dateLayout("")
	}
	if f.time == "" {
		f.time = timeLayout("")
	}
	return f
}

func dateLayout(setting string) string {
	switch strings.TrimSpace(setting) {
	case "", "yyyy-mm-dd":
		return "2006-01-02"
	case "mm/dd/yyyy":
		return "01/02/2006"
	case "dd/mm/yyyy":
		return "02/01/2006"
	default:
		// Anything else is taken as a Go reference layout, e.g. "Jan 02".
		return setting
	}
}

func timeLayout(setting string) string {
	if strings.TrimSpace(setting) == "12h" {
		return "3:04:05 PM"
	}
	return "15:04:05"
}
