package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	tests := []struct {
		name        string
		lines       []string
		key, value  string
		want        []string
		wantUpdated bool
	}{
		{
			name:  "append to empty",
			key:   "ui.color",
			value: "never",
			want:  []string{"ui.color=never"},
		},
		{
			name:        "replace existing",
			lines:       []string{"# header", "ui.color=auto", "log.level=info"},
			key:         "ui.color",
			value:       "always",
			want:        []string{"# header", "ui.color=always", "log.level=info"},
			wantUpdated: true,
		},
		{
			name:        "keep inline comment",
			lines:       []string{"log.level=info # noisy otherwise"},
			key:         "log.level",
			value:       "warn",
			want:        []string{"log.level=warn # noisy otherwise"},
			wantUpdated: true,
		},
		{
			name:  "quote value with spaces",
			key:   "ui.pager",
			value: "less -R",
			want:  []string{`ui.pager="less -R"`},
		},
		{
			name:  "commented key is not matched",
			lines: []string{"# ui.color=never"},
			key:   "ui.color",
			value: "always",
			want:  []string{"# ui.color=never", "ui.color=always"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, updated := Set(tt.lines, tt.key, tt.value)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.wantUpdated, updated)
		})
	}
}

func TestUnset(t *testing.T) {
	lines := []string{"# header", "alias.b=build", "ui.color=never", "alias.b=other"}

	got, removed := Unset(lines, "alias.b")
	require.True(t, removed)
	require.Equal(t, []string{"# header", "ui.color=never"}, got)

	got, removed = Unset(got, "missing")
	require.False(t, removed)
	require.Equal(t, []string{"# header", "ui.color=never"}, got)
}

func TestSetParseRoundTrip(t *testing.T) {
	lines, _ := Set(nil, "ui.pager", "less -FRSX")
	values, err := Parse(lines)
	require.NoError(t, err)
	require.Equal(t, "less -FRSX", values["ui.pager"])
}
