// Package command implements prefix-based command dispatch.
//
// An Executor owns a set of commands keyed by case-folded name and resolves a
// typed token to the unique command it is a case-insensitive prefix of.
// Composite commands own a private Executor for their subcommands.
package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/girs-server/girsd/internal/prefix"
)

// Command is an invokable unit. Exec receives the arguments following the
// command's own name and returns zero or more result lines.
type Command interface {
	Name() string
	Description() string
	Exec(ctx context.Context, args []string) ([]string, error)
}

// HandlerFunc is the body of a leaf command.
type HandlerFunc func(ctx context.Context, args []string) ([]string, error)

// Func is a leaf command backed by a HandlerFunc.
type Func struct {
	name        string
	description string
	handler     HandlerFunc
}

// NewFunc creates a leaf command.
func NewFunc(name, description string, handler HandlerFunc) *Func {
	return &Func{
		name:        name,
		description: description,
		handler:     handler,
	}
}

func (f *Func) Name() string        { return f.name }
func (f *Func) Description() string { return f.description }

func (f *Func) Exec(ctx context.Context, args []string) ([]string, error) {
	return f.handler(ctx, args)
}

// WithSubcommands is a composite command that forwards its first argument to
// a private executor.
type WithSubcommands struct {
	name        string
	description string
	executor    *Executor
}

// NewWithSubcommands creates a composite command from its subcommands. A
// duplicate subcommand name panics.
func NewWithSubcommands(name, description string, subcommands ...Command) *WithSubcommands {
	executor := NewExecutor()
	for _, sub := range subcommands {
		executor.Register(sub)
	}
	return &WithSubcommands{
		name:        name,
		description: description,
		executor:    executor,
	}
}

func (c *WithSubcommands) Name() string        { return c.name }
func (c *WithSubcommands) Description() string { return c.description }

// Subcommands returns the private executor.
func (c *WithSubcommands) Subcommands() *Executor {
	return c.executor
}

func (c *WithSubcommands) Exec(ctx context.Context, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, newSubcommandMissingError(c.name)
	}
	return c.executor.Dispatch(ctx, args)
}

// Executor maps case-folded command names to commands.
type Executor struct {
	commands map[string]Command
}

// NewExecutor creates an empty executor.
func NewExecutor() *Executor {
	return &Executor{
		commands: make(map[string]Command),
	}
}

// Register adds cmd under its folded name. Registering a name twice is a
// wiring defect and panics.
func (e *Executor) Register(cmd Command) {
	key := strings.ToLower(cmd.Name())
	if _, exists := e.commands[key]; exists {
		panic(fmt.Sprintf("command: duplicate command %q", cmd.Name()))
	}
	e.commands[key] = cmd
}

// Get returns the command registered under exactly name, ignoring case.
func (e *Executor) Get(name string) (Command, bool) {
	cmd, exists := e.commands[strings.ToLower(name)]
	return cmd, exists
}

// Resolve finds the command typed is a prefix of. An exact name does not
// win over longer names sharing it as a prefix: "list" is ambiguous when
// both "list" and "listall" are registered.
func (e *Executor) Resolve(typed string) (Command, error) {
	matches := prefix.Match(e.Names(), typed, false)
	switch len(matches) {
	case 0:
		return nil, newNoSuchCommandError(typed)
	case 1:
		return e.commands[matches[0]], nil
	default:
		return nil, newAmbiguousCommandError(typed, matches)
	}
}

// Dispatch resolves tokens[0] and invokes the command with the remaining
// tokens. Errors from the command are returned unchanged.
func (e *Executor) Dispatch(ctx context.Context, tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyCommandLine
	}
	cmd, err := e.Resolve(tokens[0])
	if err != nil {
		return nil, err
	}
	return cmd.Exec(ctx, tokens[1:])
}

// Names returns the folded names of all registered commands, sorted.
func (e *Executor) Names() []string {
	names := make([]string, 0, len(e.commands))
	for name := range e.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered commands.
func (e *Executor) Len() int {
	return len(e.commands)
}
