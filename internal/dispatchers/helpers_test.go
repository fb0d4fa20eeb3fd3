package dispatchers

import (
	"bytes"
	"context"

	"github.com/footprint-tools/mach/internal/domain"
)

func okHandler(_ context.Context, _ *Instance, _ *Args) (any, error) {
	return 0, nil
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.RegisterCategory("testing", "Testing", "Run tests", 60)
	r.RegisterCategory("misc", "Potpourri", "", DefaultCategoryPriority)
	return r
}

func newTestContext() (*ExecutionContext, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &ExecutionContext{Stdout: &stdout, Stderr: &stderr}, &stdout, &stderr
}

type fakeEnv struct {
	name      string
	activated int
	err       error
}

func (e *fakeEnv) Name() string { return e.name }

func (e *fakeEnv) Activate(context.Context) error {
	e.activated++
	return e.err
}

type fakeEnvProvider struct {
	envs map[string]*fakeEnv
}

func (p *fakeEnvProvider) Environment(name string) (domain.Environment, error) {
	env, ok := p.envs[name]
	if !ok {
		env = &fakeEnv{name: name}
		if p.envs == nil {
			p.envs = map[string]*fakeEnv{}
		}
		p.envs[name] = env
	}
	return env, nil
}

type settingsA struct{}

func (settingsA) Settings() []domain.Setting { return []domain.Setting{{Name: "a.one"}} }

type settingsB struct{ n int }

func (settingsB) Settings() []domain.Setting { return []domain.Setting{{Name: "b.one"}} }
