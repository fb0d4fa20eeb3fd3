package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var styleFuncs = []struct {
	name string
	fn   func(string) string
}{
	{"Success", Success},
	{"Warning", Warning},
	{"Error", Error},
	{"Info", Info},
	{"Header", Header},
	{"Muted", Muted},
}

func TestDisabledReturnsPlainText(t *testing.T) {
	InitWithPalette(false, DarkPalette)
	t.Cleanup(func() { InitWithPalette(false, DarkPalette) })

	for _, tt := range styleFuncs {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.fn("test message")
			require.Equal(t, "test message", out)
			require.NotContains(t, out, "\x1b[")
		})
	}
}

func TestEnabledReturnsStyledText(t *testing.T) {
	InitWithPalette(true, DarkPalette)
	t.Cleanup(func() { InitWithPalette(false, DarkPalette) })

	for _, tt := range styleFuncs {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.fn("test message")
			require.Contains(t, out, "test message")
			require.True(t, strings.Contains(out, "\x1b["), "expected ANSI codes in %q", out)
		})
	}
}

func TestEmptyStringHandling(t *testing.T) {
	InitWithPalette(true, LightPalette)
	t.Cleanup(func() { InitWithPalette(false, DarkPalette) })

	for _, tt := range styleFuncs {
		require.Equal(t, "", tt.fn(""), tt.name)
	}
}

func TestEnabledReturnsCorrectState(t *testing.T) {
	InitWithPalette(true, DarkPalette)
	require.True(t, Enabled())

	InitWithPalette(false, DarkPalette)
	require.False(t, Enabled())
}

func TestColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("MACH_NO_COLOR", "")

	require.True(t, ColorEnabled("always", false))
	require.False(t, ColorEnabled("never", true))
	require.True(t, ColorEnabled("auto", true))
	require.False(t, ColorEnabled("auto", false))
	require.True(t, ColorEnabled("", true))

	t.Setenv("NO_COLOR", "1")
	require.False(t, ColorEnabled("auto", true))
	require.True(t, ColorEnabled("always", false))
}

func TestNopStyler(t *testing.T) {
	var s NopStyler
	require.False(t, s.Enabled())
	require.Equal(t, "x", s.Header("x"))
}
