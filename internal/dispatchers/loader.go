package dispatchers

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrModuleNotFound is returned by a Loader that has nothing registering a name.
var ErrModuleNotFound = errors.New("no command provider registers this command")

// Loader loads the provider that registers a command on demand.
type Loader interface {
	Load(ctx context.Context, r *Registry, name string) error
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, r *Registry, name string) error

func (f LoaderFunc) Load(ctx context.Context, r *Registry, name string) error {
	return f(ctx, r, name)
}

// Provider registers a group of commands.
type Provider func(r *Registry) error

// ProviderTable is a Loader mapping command names to the providers that
// register them. Each provider runs at most once.
type ProviderTable struct {
	mu        sync.Mutex
	providers map[string]Provider
	loaded    map[string]bool
	names     map[string]string // command name -> provider key
}

// NewProviderTable creates an empty table.
func NewProviderTable() *ProviderTable {
	return &ProviderTable{
		providers: make(map[string]Provider),
		loaded:    make(map[string]bool),
		names:     make(map[string]string),
	}
}

// Add registers provider under key as the source of commands.
func (t *ProviderTable) Add(key string, provider Provider, commands ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.providers[key] = provider
	for _, c := range commands {
		t.names[c] = key
	}
}

// Commands returns the command names the table can load.
func (t *ProviderTable) Commands() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.names))
	for name := range t.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Load runs the provider for name.
func (t *ProviderTable) Load(_ context.Context, r *Registry, name string) error {
	t.mu.Lock()
	key, ok := t.names[name]
	if !ok || t.loaded[key] {
		t.mu.Unlock()
		return ErrModuleNotFound
	}
	t.loaded[key] = true
	provider := t.providers[key]
	t.mu.Unlock()

	return provider(r)
}

// LoadAll runs every provider not yet loaded, for listings that need every command.
func (t *ProviderTable) LoadAll(r *Registry) error {
	t.mu.Lock()
	var pending []Provider
	keys := make([]string, 0, len(t.providers))
	for key := range t.providers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !t.loaded[key] {
			t.loaded[key] = true
			pending = append(pending, t.providers[key])
		}
	}
	t.mu.Unlock()

	var errs []error
	for _, p := range pending {
		if err := p(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
