package dispatchers

import (
	"context"
	"slices"
	"sort"
	"sync"
)

// HandlerFunc runs a command. The result is coerced to an exit code with
// CoerceResult.
type HandlerFunc func(ctx context.Context, inst *Instance, args *Args) (any, error)

// Condition gates whether a command is usable in the current context.
type Condition struct {
	Name  string
	Doc   string
	Check func(inst *Instance) bool
}

// OrderPolicy controls how sibling subcommands are listed.
type OrderPolicy int

const (
	OrderSorted OrderPolicy = iota
	OrderDeclaration
)

// CommandDescriptor is the declarative metadata of one command or subcommand.
type CommandDescriptor struct {
	Name        string
	Subcommand  string
	Category    string
	Description string

	Conditions     []Condition
	Arguments      []Argument
	ArgumentGroups []string

	Virtualenv string
	Order      OrderPolicy
	Handler    HandlerFunc

	// Subcommands is keyed by subcommand name; set on top-level commands only.
	Subcommands map[string]*CommandDescriptor
	Sequence    int
	Source      string

	parserFactory ParserFactory
	parser        lazyParser
}

type lazyParser struct {
	once   sync.Once
	parser *Parser
	err    error
}

// FullName returns "name" or "name sub".
func (d *CommandDescriptor) FullName() string {
	if d.Subcommand == "" {
		return d.Name
	}
	return d.Name + " " + d.Subcommand
}

// IsSubcommand reports whether d is attached to a parent command.
func (d *CommandDescriptor) IsSubcommand() bool {
	return d.Subcommand != ""
}

// SetParser sets the parser factory. It has no effect once Parser has been called.
func (d *CommandDescriptor) SetParser(factory ParserFactory) {
	d.parserFactory = factory
}

// Parser returns the command's parser, building it on first use. Without a
// factory the parser is built from Arguments.
func (d *CommandDescriptor) Parser() (*Parser, error) {
	lp := &d.parser
	lp.once.Do(func() {
		if d.parserFactory != nil {
			lp.parser, lp.err = d.parserFactory()
			return
		}
		lp.parser, lp.err = NewParser(d.FullName(), d.Arguments)
	})
	return lp.parser, lp.err
}

// Merge fills every zero-valued field of d from other and never
// overwrites a field that is already set.
func (d *CommandDescriptor) Merge(other *CommandDescriptor) {
	if other == nil {
		return
	}
	if d.Name == "" {
		d.Name = other.Name
	}
	if d.Subcommand == "" {
		d.Subcommand = other.Subcommand
	}
	if d.Category == "" {
		d.Category = other.Category
	}
	if d.Description == "" {
		d.Description = other.Description
	}
	if len(d.Conditions) == 0 {
		d.Conditions = slices.Clone(other.Conditions)
	}
	if len(d.Arguments) == 0 {
		d.Arguments = slices.Clone(other.Arguments)
	}
	if len(d.ArgumentGroups) == 0 {
		d.ArgumentGroups = slices.Clone(other.ArgumentGroups)
	}
	if d.Virtualenv == "" {
		d.Virtualenv = other.Virtualenv
	}
	if d.Order == OrderSorted {
		d.Order = other.Order
	}
	if d.Handler == nil {
		d.Handler = other.Handler
		if d.Source == "" {
			d.Source = other.Source
		}
	}
	if d.parserFactory == nil {
		d.parserFactory = other.parserFactory
	}
}

// OrderedSubcommands lists subcommands by the parent's OrderPolicy.
func (d *CommandDescriptor) OrderedSubcommands() []*CommandDescriptor {
	subs := make([]*CommandDescriptor, 0, len(d.Subcommands))
	for _, s := range d.Subcommands {
		subs = append(subs, s)
	}
	if d.Order == OrderDeclaration {
		sort.Slice(subs, func(i, j int) bool { return subs[i].Sequence < subs[j].Sequence })
	} else {
		sort.Slice(subs, func(i, j int) bool { return subs[i].Subcommand < subs[j].Subcommand })
	}
	return subs
}
