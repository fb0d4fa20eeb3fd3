package completions

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Shell is a supported completion target.
type Shell string

const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// Shells lists the supported shells.
var Shells = []string{string(ShellBash), string(ShellZsh), string(ShellFish)}

// ParseShell validates a shell name.
func ParseShell(name string) (Shell, error) {
	switch s := Shell(strings.ToLower(strings.TrimSpace(name))); s {
	case ShellBash, ShellZsh, ShellFish:
		return s, nil
	default:
		return "", fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", name)
	}
}

// RunningShell guesses the user's shell from $SHELL. It returns "" when
// the shell is unknown.
func RunningShell(getenv func(string) string) Shell {
	s, err := ParseShell(filepath.Base(getenv("SHELL")))
	if err != nil {
		return ""
	}
	return s
}

// Generate returns the completion script for shell.
func Generate(shell Shell, program string, commands []CommandInfo) (string, error) {
	switch shell {
	case ShellBash:
		return GenerateBash(program, commands), nil
	case ShellZsh:
		return GenerateZsh(program, commands), nil
	case ShellFish:
		return GenerateFish(program, commands), nil
	default:
		return "", fmt.Errorf("unsupported shell: %s", shell)
	}
}

// funcName turns a program name into a shell identifier.
func funcName(program string) string {
	var b strings.Builder
	b.WriteByte('_')
	for _, r := range program {
		if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// singleQuote escapes s for use inside single quotes.
func singleQuote(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}
