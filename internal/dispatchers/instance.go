package dispatchers

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/footprint-tools/mach/internal/domain"
)

// Instance is a command bound to an execution context for one invocation.
type Instance struct {
	registry   *Registry
	ctx        *ExecutionContext
	descriptor *CommandDescriptor

	// Virtualenv is the execution environment this command requires, if any.
	Virtualenv string

	env       domain.Environment
	activated bool
}

func newInstance(r *Registry, ec *ExecutionContext, d *CommandDescriptor) *Instance {
	return &Instance{registry: r, ctx: ec, descriptor: d, Virtualenv: d.Virtualenv}
}

// Context returns the execution context.
func (i *Instance) Context() *ExecutionContext { return i.ctx }

// Descriptor returns the command being run.
func (i *Instance) Descriptor() *CommandDescriptor { return i.descriptor }

// Registry returns the registry the command was dispatched from.
func (i *Instance) Registry() *Registry { return i.registry }

// Settings returns the settings collaborator, which may be nil.
func (i *Instance) Settings() domain.ConfigProvider {
	if i.ctx == nil {
		return nil
	}
	return i.ctx.Settings
}

// Setting returns a setting value or "".
func (i *Instance) Setting(key string) string {
	s := i.Settings()
	if s == nil {
		return ""
	}
	v, _ := s.Get(key)
	return v
}

// Stdout returns the writer for command output.
func (i *Instance) Stdout() io.Writer { return i.ctx.stdout() }

// Stderr returns the writer for diagnostics.
func (i *Instance) Stderr() io.Writer { return i.ctx.stderr() }

// Stdin returns the reader for user input.
func (i *Instance) Stdin() io.Reader { return i.ctx.stdin() }

// Interactive reports whether prompts may wait for the user.
func (i *Instance) Interactive() bool {
	return i.ctx != nil && i.ctx.Interactive
}

// Log emits a structured event through the log manager.
func (i *Instance) Log(level slog.Level, action string, params map[string]any, format string) {
	if i.ctx == nil || i.ctx.Logger == nil {
		return
	}
	i.ctx.Logger.Log(level, action, params, format)
}

// Environment returns the bound execution environment, or nil.
func (i *Instance) Environment() domain.Environment {
	return i.env
}

func (i *Instance) bindEnvironment(env domain.Environment) {
	i.env = env
	i.activated = true
}

// ActivateEnvironment resolves and activates the environment named by
// Virtualenv. It does nothing after the first successful call.
func (i *Instance) ActivateEnvironment(ctx context.Context) error {
	if i.activated || i.Virtualenv == "" {
		return nil
	}
	if i.ctx == nil || i.ctx.Environments == nil {
		return fmt.Errorf("no environment provider configured for %q", i.Virtualenv)
	}

	env, err := i.ctx.Environments.Environment(i.Virtualenv)
	if err != nil {
		return err
	}
	if err := env.Activate(ctx); err != nil {
		return err
	}
	i.bindEnvironment(env)
	return nil
}

// Dispatch runs another command by name from inside a handler.
func (i *Instance) Dispatch(ctx context.Context, name, subcommand string, argv []string, defaults map[string]any) (int, error) {
	return i.registry.DispatchByName(ctx, name, i.ctx, argv, subcommand, defaults)
}

func (i *Instance) failedConditions() []Condition {
	var failed []Condition
	for _, c := range i.descriptor.Conditions {
		if c.Check == nil || !c.Check(i) {
			failed = append(failed, c)
		}
	}
	return failed
}
