package settings

import (
	"io"

	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/ui"
)

// Store is the settings collaborator of the settings commands.
// *config.Settings implements it.
type Store interface {
	domain.ConfigProvider
	Schema() []domain.Setting
	Declared(key string) (domain.Setting, bool)
	Aliases() map[string]string
}

// Asker reads a line of text from the user.
type Asker interface {
	Ask(question, def string) (string, error)
}

// Deps are the collaborators of the settings commands.
type Deps struct {
	Store  Store
	Prompt func(interactive bool, in io.Reader, out io.Writer) Asker
}

func (d Deps) asker(interactive bool, in io.Reader, out io.Writer) Asker {
	if d.Prompt != nil {
		return d.Prompt(interactive, in, out)
	}
	return ui.Prompter{Interactive: interactive, In: in, Out: out}
}
