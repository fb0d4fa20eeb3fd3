package completions

import (
	"fmt"
	"io"
)

// Print writes the completion script for shell to w.
func Print(w io.Writer, shell Shell, program string, commands []CommandInfo) error {
	script, err := Generate(shell, program, commands)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, script)
	return err
}
