package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAliasKey(t *testing.T) {
	require.True(t, IsAliasKey("alias.b"))
	require.False(t, IsAliasKey("alias."))
	require.False(t, IsAliasKey("ui.color"))
}

func TestSettingsBySection_SkipsHidden(t *testing.T) {
	settings := []Setting{
		{Name: "a", Section: "One"},
		{Name: "b", Section: "Two"},
		{Name: "c", Section: "One", Hidden: true},
		{Name: "d"},
	}

	sections, grouped := SettingsBySection(settings)

	require.Equal(t, []string{"One", "Two", "Other"}, sections)
	require.Len(t, grouped["One"], 1)
	require.Equal(t, "d", grouped["Other"][0].Name)
}

func TestFrameworkSettings_UniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range FrameworkSettings {
		require.False(t, seen[s.Name], "duplicate setting %s", s.Name)
		seen[s.Name] = true
	}
}
