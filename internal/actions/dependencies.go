package actions

import (
	"io"
	"time"

	"github.com/footprint-tools/mach/internal/completions"
	"github.com/footprint-tools/mach/internal/format"
	"github.com/footprint-tools/mach/internal/store"
	"github.com/footprint-tools/mach/internal/ui"
)

// ReportStore is the part of the error report store the reports command uses.
type ReportStore interface {
	List(filter store.ReportFilter) ([]store.Report, error)
	Get(id string) (store.Report, error)
	Clear() (int64, error)
}

// Confirmer asks yes/no questions.
type Confirmer interface {
	Confirm(question string, def bool) (bool, error)
}

// Deps are the collaborators of the built-in commands.
type Deps struct {
	// Program is the name shown in generated scripts, usually "mach".
	Program     string
	GlobalFlags []completions.FlagInfo
	// Reports is nil when the report database could not be opened.
	Reports ReportStore
	Prompt  func(interactive bool, in io.Reader, out io.Writer) Confirmer
	Now     func() time.Time
	Version func() string
	// Times formats report timestamps.
	Times format.Times
}

// DefaultDeps returns Deps wired to the terminal.
func DefaultDeps() Deps {
	return Deps{
		Program: "mach",
		Prompt: func(interactive bool, in io.Reader, out io.Writer) Confirmer {
			return ui.Prompter{Interactive: interactive, In: in, Out: out}
		},
		Now:     time.Now,
		Version: buildVersion,
	}
}

func (d Deps) withDefaults() Deps {
	def := DefaultDeps()
	if d.Program == "" {
		d.Program = def.Program
	}
	if d.Prompt == nil {
		d.Prompt = def.Prompt
	}
	if d.Now == nil {
		d.Now = def.Now
	}
	if d.Version == nil {
		d.Version = def.Version
	}
	return d
}
