package dispatchers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"io"
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/usage"
)

// RunOptions adjust a single handler invocation.
type RunOptions struct {
	// Environment is bound to the instance instead of activating Virtualenv.
	Environment domain.Environment
	Debug       bool
	Debugger    Debugger // defaults to WaitForDebugger
	Profile     bool
	ProfileDir  string // defaults to the context's ProgramDir
}

// RunCommandHandler runs d with args. A nil error with code 1 means the
// command's conditions were not met.
func (r *Registry) RunCommandHandler(ctx context.Context, d *CommandDescriptor, ec *ExecutionContext, opts RunOptions, args *Args) (int, error) {
	if ec == nil {
		ec = &ExecutionContext{}
	}
	if args == nil {
		args = NewArgs(nil)
	}

	if ec.PrepareInstance != nil {
		ec.PrepareInstance(ec, d, args)
	}

	inst := newInstance(r, ec, d)

	if failed := inst.failedConditions(); len(failed) > 0 {
		writeInvalidContext(ec.stderr(), d, failed)
		return 1, nil
	}

	depth := int(r.depth.Add(1))
	defer r.depth.Add(-1)

	if d.Virtualenv != "" {
		if opts.Environment != nil {
			inst.bindEnvironment(opts.Environment)
		} else if err := inst.ActivateEnvironment(ctx); err != nil {
			return 1, WrapUserError(err, "could not activate environment %q for %s", d.Virtualenv, d.FullName())
		}
	}

	previous := ec.Handler
	ec.Handler = d
	defer func() { ec.Handler = previous }()

	call := func() (any, error) { return r.callHandler(ctx, inst, d, args) }
	if opts.Debug {
		debugger := opts.Debugger
		if debugger == nil {
			debugger = WaitForDebugger
		}
		inner := call
		call = func() (any, error) { return debugger(inst, inner) }
	}
	if opts.Profile {
		dir := opts.ProfileDir
		if dir == "" {
			dir = ec.ProgramDir
		}
		inner := call
		call = func() (any, error) { return profileCall(ec.stderr(), dir, d.FullName(), inner) }
	}

	start := time.Now()
	result, err := call()
	end := time.Now()

	code := 1
	if err == nil {
		var cerr error
		code, cerr = CoerceResult(result)
		if cerr != nil {
			err = &HandlerError{Command: d.FullName(), Source: d.Source, Kind: KindHandler, Err: cerr}
			code = 1
		}
	}

	if !opts.Debug && ec.FinalizeInstance != nil {
		ec.FinalizeInstance(FinalizeInfo{
			Context:    ec,
			Descriptor: d,
			Instance:   inst,
			Success:    err == nil && code == 0,
			Code:       code,
			Err:        err,
			Start:      start,
			End:        end,
			Depth:      depth,
			Args:       args,
		})
	}

	return code, err
}

// CoerceResult converts a handler result to an exit code. nil, false and
// zero become 0, true becomes 1, integers keep their value. Anything else,
// including an integer outside the int range, is ErrInvalidResult.
func CoerceResult(result any) (int, error) {
	if result == nil {
		return 0, nil
	}
	v := reflect.ValueOf(result)
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if n < math.MinInt || n > math.MaxInt {
			return 0, fmt.Errorf("%w: %d overflows int", ErrInvalidResult, n)
		}
		return int(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := v.Uint()
		if n > math.MaxInt {
			return 0, fmt.Errorf("%w: %d overflows int", ErrInvalidResult, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrInvalidResult, result)
	}
}

// callHandler is the single point where handler code runs. Panics and
// returned errors leave it tagged with the command that raised them.
func (r *Registry) callHandler(ctx context.Context, inst *Instance, d *CommandDescriptor, args *Args) (result any, err error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if e, ok := v.(error); ok && passThrough(e) {
			result, err = nil, e
			return
		}
		frames := panicFrames()
		err = &HandlerError{
			Command:  d.FullName(),
			Source:   d.Source,
			Kind:     classifyFrames(frames, d.Source),
			Err:      panicError(v),
			Stack:    string(debug.Stack()),
			Panicked: true,
		}
		result = nil
	}()

	result, err = d.Handler(ctx, inst, args)
	if err != nil && !passThrough(err) {
		kind := KindHandler
		if errors.Unwrap(err) != nil {
			kind = KindModule
		}
		err = &HandlerError{Command: d.FullName(), Source: d.Source, Kind: kind, Err: err}
	}
	return result, err
}

// passThrough reports errors a handler raises on purpose, which keep their
// identity through nested dispatch.
func passThrough(err error) bool {
	var (
		failed  *FailedCommandError
		user    *UserError
		handler *HandlerError
		uerr    *usage.Error
	)
	return errors.As(err, &failed) ||
		errors.As(err, &user) ||
		errors.As(err, &handler) ||
		errors.As(err, &uerr) ||
		errors.Is(err, context.Canceled)
}

func panicError(v any) error {
	if e, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", e)
	}
	return fmt.Errorf("panic: %v", v)
}

// panicFrames returns the non-runtime frames between the panic and callHandler.
func panicFrames() []runtime.Frame {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var out []runtime.Frame
	inPanic := false
	for {
		frame, more := frames.Next()
		switch {
		case frame.Function == "runtime.gopanic":
			inPanic = true
		case strings.HasSuffix(frame.Function, ".(*Registry).callHandler"):
			return out
		case inPanic && !strings.HasPrefix(frame.Function, "runtime."):
			out = append(out, frame)
		}
		if !more {
			return out
		}
	}
}

// classifyFrames returns KindHandler when every frame is in source.
func classifyFrames(frames []runtime.Frame, source string) HandlerKind {
	for _, f := range frames {
		if f.File != source {
			return KindModule
		}
	}
	return KindHandler
}

func writeInvalidContext(w io.Writer, d *CommandDescriptor, failed []Condition) {
	fmt.Fprintf(w, "Command %s cannot be run in this context.\n", d.FullName())
	fmt.Fprintln(w, "The following conditions failed:")
	fmt.Fprintln(w)
	for _, c := range failed {
		if c.Doc != "" {
			fmt.Fprintf(w, "    %s: %s\n", c.Name, c.Doc)
		} else {
			fmt.Fprintf(w, "    %s\n", c.Name)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This is an invalid command context.")
}

// DispatchByName looks name up, loading its provider when needed, parses
// argv with defaults in place of the declared defaults, then runs the
// command. A subcommand that does not exist is a programming error and panics.
func (r *Registry) DispatchByName(ctx context.Context, name string, ec *ExecutionContext, argv []string, subcommand string, defaults map[string]any) (int, error) {
	d, ok := r.Lookup(name)
	if !ok {
		if loader := r.Loader(); loader != nil {
			if err := loader.Load(ctx, r, name); err != nil && !errors.Is(err, ErrModuleNotFound) {
				return 1, &FrameworkError{Message: fmt.Sprintf("loading provider for %q", name), Err: err}
			}
			d, ok = r.Lookup(name)
		}
	}
	if !ok {
		return 1, &FrameworkError{Message: fmt.Sprintf("no command named %q is registered", name)}
	}

	if subcommand != "" {
		sub, ok := r.LookupSubcommand(name, subcommand)
		if !ok {
			panic(fmt.Sprintf("dispatchers: command %q has no subcommand %q", name, subcommand))
		}
		d = sub
	}

	parser, err := d.Parser()
	if err != nil {
		return 1, &FrameworkError{Message: fmt.Sprintf("building parser for %s", d.FullName()), Err: err}
	}

	args, extra, err := parser.ParseWithDefaults(argv, defaults)
	if err != nil {
		return 1, err
	}
	if len(extra) > 0 {
		return 1, usage.UnrecognizedArguments(d.FullName(), extra)
	}

	return r.RunCommandHandler(ctx, d, ec, RunOptions{}, args)
}
