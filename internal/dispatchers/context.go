package dispatchers

import (
	"io"
	"os"
	"time"

	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/log"
)

// PrepareFunc runs before a command instance is constructed.
type PrepareFunc func(ec *ExecutionContext, d *CommandDescriptor, args *Args)

// FinalizeFunc runs after a handler returns.
type FinalizeFunc func(info FinalizeInfo)

// FinalizeInfo describes a finished handler call.
type FinalizeInfo struct {
	Context    *ExecutionContext
	Descriptor *CommandDescriptor
	Instance   *Instance
	Success    bool
	Code       int
	Err        error
	Start      time.Time
	End        time.Time
	Depth      int
	Args       *Args
}

// Duration returns the handler's wall time.
func (f FinalizeInfo) Duration() time.Duration {
	return f.End.Sub(f.Start)
}

// ExecutionContext carries what a command needs from the surrounding
// application.
type ExecutionContext struct {
	Cwd        string
	TopSrcDir  string
	StateDir   string
	ProgramDir string

	Settings     domain.ConfigProvider
	Logger       *log.Manager
	Registry     *Registry
	Environments domain.EnvironmentProvider

	// Handler is the descriptor currently running, set just before invocation.
	Handler *CommandDescriptor

	Stdout      io.Writer
	Stderr      io.Writer
	Stdin       io.Reader
	Interactive bool

	PrepareInstance  PrepareFunc
	FinalizeInstance FinalizeFunc
}

func (ec *ExecutionContext) stdout() io.Writer {
	if ec == nil || ec.Stdout == nil {
		return os.Stdout
	}
	return ec.Stdout
}

func (ec *ExecutionContext) stderr() io.Writer {
	if ec == nil || ec.Stderr == nil {
		return os.Stderr
	}
	return ec.Stderr
}

func (ec *ExecutionContext) stdin() io.Reader {
	if ec == nil || ec.Stdin == nil {
		return os.Stdin
	}
	return ec.Stdin
}
