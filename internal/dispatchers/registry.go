package dispatchers

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/log"
)

// Registry is the table of known commands and categories. It is populated
// while command providers register and read during dispatch.
type Registry struct {
	mu         sync.RWMutex
	handlers   map[string]*CommandDescriptor
	byCategory map[string]map[string]struct{}
	categories map[string]Category

	providers     map[reflect.Type]domain.SettingsProvider
	providerOrder []reflect.Type

	requireConditions bool
	sequence          int
	loader            Loader
	logger            domain.Logger

	depth atomic.Int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers:   make(map[string]*CommandDescriptor),
		byCategory: make(map[string]map[string]struct{}),
		categories: make(map[string]Category),
		providers:  make(map[reflect.Type]domain.SettingsProvider),
		logger:     log.NopLogger{},
	}
}

// SetRequireConditions controls whether top-level commands without
// conditions are skipped at registration.
func (r *Registry) SetRequireConditions(require bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireConditions = require
}

// RequireConditions reports the current policy.
func (r *Registry) RequireConditions() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.requireConditions
}

// SetLoader sets the collaborator used to load command providers on demand.
func (r *Registry) SetLoader(l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loader = l
}

// Loader returns the configured loader, or nil.
func (r *Registry) Loader() Loader {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loader
}

// SetLogger sets where registration warnings go.
func (r *Registry) SetLogger(l domain.Logger) {
	if l == nil {
		l = log.NopLogger{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// RegisterCategory declares a category. Redeclaring replaces the metadata
// and keeps the command set.
func (r *Registry) RegisterCategory(name, title, description string, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[name] = Category{Name: name, Title: title, Description: description, Priority: priority}
	if _, ok := r.byCategory[name]; !ok {
		r.byCategory[name] = make(map[string]struct{})
	}
}

// RegisterCommandHandler adds a top-level command. A command with the same
// name replaces the earlier one.
func (r *Registry) RegisterCommandHandler(d *CommandDescriptor) error {
	if d.Category == "" {
		return configErrorf("command %q has no category", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[d.Category]; !ok {
		return configErrorf("command %q uses undeclared category %q", d.Name, d.Category)
	}

	if prev, ok := r.handlers[d.Name]; ok && prev != d {
		delete(r.byCategory[prev.Category], prev.Name)
		r.logger.Warn("command %q registered again; the definition from %s replaces %s", d.Name, d.Source, prev.Source)
	}

	if d.Subcommands == nil {
		d.Subcommands = make(map[string]*CommandDescriptor)
	}
	r.handlers[d.Name] = d
	r.byCategory[d.Category][d.Name] = struct{}{}
	return nil
}

// RegisterSubcommandHandler attaches d to its parent d.Name.
func (r *Registry) RegisterSubcommandHandler(d *CommandDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.handlers[d.Name]
	if !ok {
		return configErrorf("subcommand %q declared for unknown command %q", d.Subcommand, d.Name)
	}
	if _, exists := parent.Subcommands[d.Subcommand]; exists {
		return configErrorf("subcommand %q of %q is already registered", d.Subcommand, d.Name)
	}

	r.sequence++
	d.Sequence = r.sequence
	if d.Category == "" {
		d.Category = parent.Category
	}
	parent.Subcommands[d.Subcommand] = d
	return nil
}

// Register validates d and registers it as a command or subcommand. It
// returns false when the command was skipped because it has no conditions
// and conditions are required.
func (r *Registry) Register(d *CommandDescriptor) (bool, error) {
	if d.Handler == nil {
		return false, configErrorf("command %q has no handler", d.FullName())
	}
	if err := validateConditions(d); err != nil {
		return false, err
	}

	if d.IsSubcommand() {
		return true, r.RegisterSubcommandHandler(d)
	}

	if r.RequireConditions() && len(d.Conditions) == 0 {
		return false, nil
	}
	return true, r.RegisterCommandHandler(d)
}

func validateConditions(d *CommandDescriptor) error {
	for i, c := range d.Conditions {
		if c.Check == nil {
			name := c.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return configErrorf("condition %s of command %q is not callable: %T", name, d.FullName(), c.Check)
		}
		if d.Conditions[i].Name == "" {
			d.Conditions[i].Name = funcName(c.Check)
		}
	}
	return nil
}

func funcName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "condition"
	}
	return f.Name()
}

// RegisterSettingsProvider adds a provider of settings declarations.
// Registering a provider of the same type twice has no effect.
func (r *Registry) RegisterSettingsProvider(p domain.SettingsProvider) {
	t := reflect.TypeOf(p)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[t]; ok {
		return
	}
	r.providers[t] = p
	r.providerOrder = append(r.providerOrder, t)
}

// SettingsProviders returns the providers in registration order.
func (r *Registry) SettingsProviders() []domain.SettingsProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.SettingsProvider, 0, len(r.providerOrder))
	for _, t := range r.providerOrder {
		out = append(out, r.providers[t])
	}
	return out
}

// Lookup returns the top-level command name.
func (r *Registry) Lookup(name string) (*CommandDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.handlers[name]
	return d, ok
}

// LookupSubcommand returns the subcommand sub of name.
func (r *Registry) LookupSubcommand(name, sub string) (*CommandDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	parent, ok := r.handlers[name]
	if !ok {
		return nil, false
	}
	d, ok := parent.Subcommands[sub]
	return d, ok
}

// Commands returns every top-level command name in lexical order.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Categories returns the categories by descending priority, then name.
func (r *Registry) Categories() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cats := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		cats = append(cats, c)
	}
	sortCategories(cats)
	return cats
}

// Category returns the metadata of a declared category.
func (r *Registry) Category(name string) (Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[name]
	return c, ok
}

// CommandsInCategory returns the commands of a category sorted by name.
func (r *Registry) CommandsInCategory(category string) []*CommandDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := r.byCategory[category]
	out := make([]*CommandDescriptor, 0, len(names))
	for name := range names {
		out = append(out, r.handlers[name])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Depth returns the number of handler calls currently in progress.
func (r *Registry) Depth() int {
	return int(r.depth.Load())
}
