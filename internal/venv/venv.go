package venv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/execx"
	"github.com/footprint-tools/mach/internal/log"
)

// markerFile records the manifest digest an environment was built from.
const markerFile = ".mach-site"

// Options configure a Manager.
type Options struct {
	// Root holds one directory per environment.
	Root string
	// TopSrcDir is where sites/<name>.yaml manifests are looked up.
	TopSrcDir string
	// Python is the default interpreter, "python3" when empty.
	Python string
	Logger domain.Logger
	Runner execx.Runner
	Setenv func(key, value string) error
	Getenv func(key string) string
}

// Manager resolves environment names to environments rooted under one
// directory. It implements domain.EnvironmentProvider.
type Manager struct {
	opts Options

	mu   sync.Mutex
	envs map[string]*Environment
}

// NewManager creates a Manager.
func NewManager(opts Options) *Manager {
	if opts.Python == "" {
		opts.Python = "python3"
	}
	if opts.Logger == nil {
		opts.Logger = log.NopLogger{}
	}
	if opts.Runner == nil {
		opts.Runner = execx.Run
	}
	if opts.Setenv == nil {
		opts.Setenv = os.Setenv
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	return &Manager{opts: opts, envs: map[string]*Environment{}}
}

// Root returns the directory holding the environments.
func (m *Manager) Root() string { return m.opts.Root }

// Environment returns the environment for name. The manifest is read on
// every call for a name not seen before.
func (m *Manager) Environment(name string) (domain.Environment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if env, ok := m.envs[name]; ok {
		return env, nil
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid environment name %q", name)
	}

	manifest, err := LoadManifest(m.opts.TopSrcDir, name)
	if err != nil {
		return nil, err
	}

	env := &Environment{
		manager:  m,
		name:     name,
		root:     filepath.Join(m.opts.Root, name),
		manifest: manifest,
	}
	m.envs[name] = env
	return env, nil
}

// Environment is one isolated Python environment.
type Environment struct {
	manager  *Manager
	name     string
	root     string
	manifest Manifest

	mu     sync.Mutex
	active bool
}

// Name returns the environment name.
func (e *Environment) Name() string { return e.name }

// Root returns the environment directory.
func (e *Environment) Root() string { return e.root }

// Manifest returns the parsed site manifest.
func (e *Environment) Manifest() Manifest { return e.manifest }

// BinDir returns the directory holding the environment's executables.
func (e *Environment) BinDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.root, "Scripts")
	}
	return filepath.Join(e.root, "bin")
}

// Python returns the environment's interpreter.
func (e *Environment) Python() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.BinDir(), "python.exe")
	}
	return filepath.Join(e.BinDir(), "python")
}

// UpToDate reports whether the environment exists and was built from the
// current manifest.
func (e *Environment) UpToDate() bool {
	data, err := os.ReadFile(filepath.Join(e.root, markerFile))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == e.manifest.Digest()
}

// Ensure creates or rebuilds the environment when it is missing or stale.
func (e *Environment) Ensure(ctx context.Context) error {
	if e.UpToDate() {
		return nil
	}

	opts := e.manager.opts
	opts.Logger.Info("venv: building environment %s in %s", e.name, e.root)

	if err := os.RemoveAll(e.root); err != nil {
		return fmt.Errorf("remove stale environment: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(e.root), 0700); err != nil {
		return fmt.Errorf("create environments dir: %w", err)
	}

	python := e.manifest.Python
	if python == "" {
		python = opts.Python
	}
	if err := e.run(ctx, execx.Command{Name: python, Args: []string{"-m", "venv", e.root}}); err != nil {
		return err
	}

	if len(e.manifest.Requirements) > 0 {
		args := append([]string{"-m", "pip", "install", "--quiet"}, e.manifest.Requirements...)
		if err := e.run(ctx, execx.Command{Name: e.Python(), Args: args}); err != nil {
			return err
		}
	}

	marker := filepath.Join(e.root, markerFile)
	if err := os.WriteFile(marker, []byte(e.manifest.Digest()+"\n"), 0600); err != nil {
		return fmt.Errorf("write %s: %w", markerFile, err)
	}
	return nil
}

func (e *Environment) run(ctx context.Context, c execx.Command) error {
	res := e.manager.opts.Runner(ctx, c)
	if res.OK() {
		return nil
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	if res.Err == nil {
		return fmt.Errorf("%s: exit status %d", c, res.Code)
	}
	return fmt.Errorf("%s: exit status %d: %w", c, res.Code, res.Err)
}

// Activate builds the environment when needed, then exports it into the
// process environment. Activating twice is a no-op.
func (e *Environment) Activate(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return nil
	}
	if err := e.Ensure(ctx); err != nil {
		return err
	}

	opts := e.manager.opts
	path := e.BinDir()
	if current := opts.Getenv("PATH"); current != "" {
		path += string(os.PathListSeparator) + current
	}

	vars := map[string]string{"PATH": path, "VIRTUAL_ENV": e.root}
	for k, v := range e.manifest.Env {
		vars[k] = v
	}
	for k, v := range vars {
		if err := opts.Setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}

	opts.Logger.Debug("venv: activated %s", e.name)
	e.active = true
	return nil
}

var _ domain.EnvironmentProvider = (*Manager)(nil)
var _ domain.Environment = (*Environment)(nil)
