package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func settings(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestTimes(t *testing.T) {
	at := time.Date(2024, 1, 23, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name   string
		values map[string]string
		want   string
	}{
		{name: "defaults", values: nil, want: "2024-01-23 15:04:05"},
		{name: "us date", values: map[string]string{"ui.date": "mm/dd/yyyy"}, want: "01/23/2024 15:04:05"},
		{name: "eu date 12h", values: map[string]string{"ui.date": "dd/mm/yyyy", "ui.time": "12h"}, want: "23/01/2024 3:04:05 PM"},
		{name: "custom layout", values: map[string]string{"ui.date": "Jan 02"}, want: "Jan 23 15:04:05"},
		{name: "unknown time falls back", values: map[string]string{"ui.time": "36h"}, want: "2024-01-23 15:04:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NewTimes(settings(tt.values)).Full(at))
		})
	}
}

func TestTimes_ZeroValue(t *testing.T) {
	at := time.Date(2024, 1, 23, 9, 0, 0, 0, time.UTC)

	var f Times
	require.Equal(t, "2024-01-23", f.Date(at))
	require.Equal(t, "09:00:00", f.Time(at))
}

func TestNewTimes_NilGetter(t *testing.T) {
	at := time.Date(2024, 1, 23, 9, 0, 0, 0, time.UTC)
	require.Equal(t, "2024-01-23 09:00:00", NewTimes(nil).Full(at))
}
