// Package style provides semantic terminal styling using lipgloss.
//
// This package is the only place where lipgloss is imported. All styling
// is semantic (Success, Warning, Error, etc.) rather than visual (RedBold, etc.).
//
// When disabled, all helpers return the input string unchanged with no ANSI codes.
package style

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette holds the color of each semantic style.
// Values are ANSI color numbers (0-255) or "bold".
type Palette struct {
	Success string
	Warning string
	Error   string
	Info    string
	Muted   string
	Header  string
}

// Dark backgrounds get bright colors, light backgrounds dark ones.
var (
	DarkPalette = Palette{
		Success: "10",
		Warning: "11",
		Error:   "9",
		Info:    "14",
		Muted:   "245",
		Header:  "bold",
	}
	LightPalette = Palette{
		Success: "28",
		Warning: "130",
		Error:   "124",
		Info:    "25",
		Muted:   "242",
		Header:  "bold",
	}
)

var (
	mu      sync.RWMutex
	enabled bool

	successStyle lipgloss.Style
	warningStyle lipgloss.Style
	errorStyle   lipgloss.Style
	infoStyle    lipgloss.Style
	headerStyle  lipgloss.Style
	mutedStyle   lipgloss.Style
)

// ColorEnabled decides whether to style output from the ui.color setting
// ("auto", "always", "never") and whether stdout is a terminal.
// NO_COLOR and MACH_NO_COLOR disable color unless mode is "always".
func ColorEnabled(mode string, isTTY bool) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("MACH_NO_COLOR") != "" {
		return false
	}
	return isTTY
}

// Init enables or disables styling. The palette follows the terminal's
// background.
func Init(enable bool) {
	palette := LightPalette
	if enable && termenv.HasDarkBackground() {
		palette = DarkPalette
	}
	InitWithPalette(enable, palette)
}

// InitWithPalette enables or disables styling with an explicit palette.
func InitWithPalette(enable bool, p Palette) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	if !enable {
		return
	}

	lipgloss.SetColorProfile(termenv.ANSI256)

	successStyle = makeStyle(p.Success)
	warningStyle = makeStyle(p.Warning)
	errorStyle = makeStyle(p.Error)
	infoStyle = makeStyle(p.Info)
	mutedStyle = makeStyle(p.Muted)
	headerStyle = makeStyle(p.Header)
}

func makeStyle(value string) lipgloss.Style {
	if value == "bold" {
		return lipgloss.NewStyle().Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(value))
}

// Enabled returns whether styling is currently enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

func render(s *lipgloss.Style, text string) string {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled || text == "" {
		return text
	}
	return s.Render(text)
}

// Success styles text as a success message.
func Success(text string) string { return render(&successStyle, text) }

// Warning styles text as a warning.
func Warning(text string) string { return render(&warningStyle, text) }

// Error styles text as an error.
func Error(text string) string { return render(&errorStyle, text) }

// Info styles text as informational, used for command names.
func Info(text string) string { return render(&infoStyle, text) }

// Header styles section headers.
func Header(text string) string { return render(&headerStyle, text) }

// Muted styles secondary text.
func Muted(text string) string { return render(&mutedStyle, text) }
