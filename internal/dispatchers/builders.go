package dispatchers

import (
	"reflect"
	"runtime"
	"slices"
)

// CommandSpec describes a top-level command.
type CommandSpec struct {
	Name        string
	Category    string
	Description string
	Conditions  []Condition
	Virtualenv  string
	Order       OrderPolicy
}

// SubcommandSpec describes a subcommand of Command.
type SubcommandSpec struct {
	Command     string
	Name        string
	Description string
	Conditions  []Condition
	Virtualenv  string
}

// Builder accumulates a descriptor and registers it.
type Builder struct {
	d *CommandDescriptor
}

// Command starts a top-level command.
func Command(spec CommandSpec) *Builder {
	return &Builder{d: &CommandDescriptor{
		Name:        spec.Name,
		Category:    spec.Category,
		Description: spec.Description,
		Conditions:  slices.Clone(spec.Conditions),
		Virtualenv:  spec.Virtualenv,
		Order:       spec.Order,
	}}
}

// Subcommand starts a subcommand.
func Subcommand(spec SubcommandSpec) *Builder {
	return &Builder{d: &CommandDescriptor{
		Name:        spec.Command,
		Subcommand:  spec.Name,
		Description: spec.Description,
		Conditions:  slices.Clone(spec.Conditions),
		Virtualenv:  spec.Virtualenv,
	}}
}

// Argument appends an argument declaration.
func (b *Builder) Argument(args ...Argument) *Builder {
	b.d.Arguments = append(b.d.Arguments, args...)
	return b
}

// ArgumentGroup declares a help section; arguments reference it by Group.
func (b *Builder) ArgumentGroup(name string) *Builder {
	b.d.ArgumentGroups = append(b.d.ArgumentGroups, name)
	return b
}

// Condition appends a usability condition.
func (b *Builder) Condition(conds ...Condition) *Builder {
	b.d.Conditions = append(b.d.Conditions, conds...)
	return b
}

// Use fills fields still unset from template.
func (b *Builder) Use(template *CommandDescriptor) *Builder {
	b.d.Merge(template)
	return b
}

// Handler sets the function run by the command and records its source file.
func (b *Builder) Handler(fn HandlerFunc) *Builder {
	b.d.Handler = fn
	b.d.Source = sourceFile(fn)
	return b
}

// Parser sets a prebuilt parser.
func (b *Builder) Parser(p *Parser) *Builder {
	b.d.SetParser(func() (*Parser, error) { return p, nil })
	return b
}

// ParserFunc sets a parser factory, run on first use.
func (b *Builder) ParserFunc(factory ParserFactory) *Builder {
	b.d.SetParser(factory)
	return b
}

// Descriptor returns the descriptor built so far.
func (b *Builder) Descriptor() *CommandDescriptor {
	return b.d
}

// Register registers the descriptor with r. The descriptor is nil when
// registration was skipped because conditions are required.
func (b *Builder) Register(r *Registry) (*CommandDescriptor, error) {
	registered, err := r.Register(b.d)
	if err != nil || !registered {
		return nil, err
	}
	return b.d, nil
}

// MustRegister is Register for command providers, which treat a
// registration failure as a programming error.
func (b *Builder) MustRegister(r *Registry) *CommandDescriptor {
	d, err := b.Register(r)
	if err != nil {
		panic(err)
	}
	return d
}

func sourceFile(fn HandlerFunc) string {
	if fn == nil {
		return ""
	}
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return ""
	}
	file, _ := f.FileLine(f.Entry())
	return file
}
