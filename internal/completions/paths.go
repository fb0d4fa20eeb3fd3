package completions

import (
	"fmt"
	"os"
	"path/filepath"
)

// bashCompletionScripts are where distributions install bash-completion.
var bashCompletionScripts = []string{
	"/usr/share/bash-completion/bash_completion",
	"/etc/bash_completion",
	"/opt/homebrew/etc/profile.d/bash_completion.sh",
	"/usr/local/etc/profile.d/bash_completion.sh",
}

// SourceInstructions returns the line that loads completions for shell.
func SourceInstructions(shell Shell, bin string) string {
	switch shell {
	case ShellBash, ShellZsh:
		return fmt.Sprintf(`eval "$(%s mach-completion %s)"`, bin, shell)
	case ShellFish:
		return fmt.Sprintf(`%s mach-completion fish | source`, bin)
	default:
		return ""
	}
}

// RcFile returns the rc file path for the given shell.
func RcFile(shell Shell) string {
	switch shell {
	case ShellBash:
		return "~/.bashrc"
	case ShellZsh:
		return "~/.zshrc"
	case ShellFish:
		return "~/.config/fish/config.fish"
	default:
		return ""
	}
}

// IsBashCompletionInstalled reports whether the bash-completion package is present.
func IsBashCompletionInstalled() bool {
	for _, p := range bashCompletionScripts {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// AutoInstallPath returns where a script for program is picked up without
// editing an rc file, or "" when shell has no such directory.
func AutoInstallPath(shell Shell, home, program string) string {
	if home == "" {
		return ""
	}
	switch shell {
	case ShellFish:
		return filepath.Join(home, ".config", "fish", "completions", program+".fish")
	case ShellBash:
		if IsBashCompletionInstalled() {
			return filepath.Join(home, ".local", "share", "bash-completion", "completions", program)
		}
		return ""
	default:
		return ""
	}
}
