// Package python provides commands that run inside the Python execution
// environments described by sites/<name>.yaml manifests.
package python

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/footprint-tools/mach/internal/dispatchers"
	"github.com/footprint-tools/mach/internal/execx"
)

// Commands lists the top-level commands Register adds.
var Commands = []string{"doc", "python"}

// Deps are the collaborators of the python commands.
type Deps struct {
	Runner execx.Runner
	// Interpreter is used when the bound environment does not name one.
	Interpreter string
}

func (d Deps) withDefaults() Deps {
	if d.Runner == nil {
		d.Runner = execx.Run
	}
	if d.Interpreter == "" {
		d.Interpreter = "python3"
	}
	return d
}

// InSourceTree is met when mach runs inside a source checkout.
var InSourceTree = dispatchers.Condition{
	Name: "in_source_tree",
	Doc:  "Must be run from inside a source tree (a directory containing .machroot).",
	Check: func(inst *dispatchers.Instance) bool {
		return inst.Context() != nil && inst.Context().TopSrcDir != ""
	},
}

// Provider returns a provider registering the python commands.
func Provider(deps Deps) dispatchers.Provider {
	return func(r *dispatchers.Registry) error {
		return Register(r, deps)
	}
}

// Register adds the python commands to r.
func Register(r *dispatchers.Registry, deps Deps) error {
	deps = deps.withDefaults()

	builders := []*dispatchers.Builder{
		dispatchers.Command(dispatchers.CommandSpec{
			Name:        "python",
			Category:    "devenv",
			Description: "Run Python in the common mach environment.\n\nPass interpreter flags after --, e.g. mach python -- -c 'print(1)'.",
			Virtualenv:  "common",
		}).
			Argument(dispatchers.Remainder("args", "arguments passed to the interpreter")).
			Handler(func(ctx context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
				return runPython(ctx, inst, args.Strings("args"), deps)
			}),

		dispatchers.Command(dispatchers.CommandSpec{
			Name:        "doc",
			Category:    "devenv",
			Description: "Generate the documentation with Sphinx.",
			Conditions:  []dispatchers.Condition{InSourceTree},
			Virtualenv:  "docs",
		}).
			Argument(
				docFormat(),
				dispatchers.Flag("outdir", "o", "", "output directory (default: <topsrcdir>/docs-out/<format>)"),
				dispatchers.IntFlag("jobs", "j", 0, "parallel jobs, 0 lets Sphinx decide"),
			).
			Handler(func(ctx context.Context, inst *dispatchers.Instance, args *dispatchers.Args) (any, error) {
				return buildDocs(ctx, inst, docOptions{
					format: args.String("format"),
					outdir: args.String("outdir"),
					jobs:   args.Int("jobs"),
				}, deps)
			}),
	}

	for _, b := range builders {
		if _, err := b.Register(r); err != nil {
			return err
		}
	}
	return nil
}

func docFormat() dispatchers.Argument {
	a := dispatchers.Flag("format", "f", "html", "Sphinx builder")
	a.Choices = []string{"html", "dirhtml", "linkcheck"}
	return a
}

// interpreter returns the Python of the bound environment.
func interpreter(inst *dispatchers.Instance, deps Deps) string {
	if env, ok := inst.Environment().(interface{ Python() string }); ok {
		return env.Python()
	}
	return deps.Interpreter
}

func runPython(ctx context.Context, inst *dispatchers.Instance, argv []string, deps Deps) (int, error) {
	return run(ctx, inst, execx.Command{Name: interpreter(inst, deps), Args: argv}, deps)
}

type docOptions struct {
	format string
	outdir string
	jobs   int
}

func buildDocs(ctx context.Context, inst *dispatchers.Instance, opts docOptions, deps Deps) (int, error) {
	topsrcdir := inst.Context().TopSrcDir
	outdir := opts.outdir
	if outdir == "" {
		outdir = filepath.Join(topsrcdir, "docs-out", opts.format)
	}

	argv := []string{"-m", "sphinx", "-b", opts.format}
	if opts.jobs > 0 {
		argv = append(argv, "-j", strconv.Itoa(opts.jobs))
	} else {
		argv = append(argv, "-j", "auto")
	}
	argv = append(argv, filepath.Join(topsrcdir, "docs"), outdir)

	code, err := run(ctx, inst, execx.Command{Name: interpreter(inst, deps), Args: argv, Dir: topsrcdir}, deps)
	if err != nil {
		return code, err
	}
	if code != 0 {
		return code, dispatchers.NewFailedCommand(code, "documentation build failed")
	}
	inst.Log(slog.LevelInfo, "doc_built", map[string]any{"outdir": outdir, "format": opts.format}, "Documentation written to {outdir}")
	return 0, nil
}

// run starts c with the instance's streams. A non-zero exit is returned
// as the command's result; failing to start is a user error.
func run(ctx context.Context, inst *dispatchers.Instance, c execx.Command, deps Deps) (int, error) {
	if c.Dir == "" {
		c.Dir = inst.Context().Cwd
	}
	c.Stdin = inst.Stdin()
	c.Stdout = inst.Stdout()
	c.Stderr = inst.Stderr()

	res := deps.Runner(ctx, c)
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return 1, ctx.Err()
	case res.Err != nil && isStartFailure(res.Err):
		return 1, dispatchers.WrapUserError(res.Err, "cannot run %s", c.Name)
	}
	return res.Code, nil
}

func isStartFailure(err error) bool {
	var ee *exec.ExitError
	return !errors.As(err, &ee)
}
