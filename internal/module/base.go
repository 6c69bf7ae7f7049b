package module

import (
	"context"
	"fmt"
	"strings"

	"github.com/girs-server/girsd/internal/command"
	"github.com/girs-server/girsd/internal/param"
)

// ListSeparator names the parameter used to join multi-line results.
const ListSeparator = "listSeparator"

// License is printed by the license command.
const License = "girsd is free software, licensed under the GNU General Public License version 3 or later."

// Host is the engine as seen by the base module.
type Host interface {
	Version() string
	ModuleNames() []string
	Commands() *command.Executor
	Quit()
}

// NewBase creates the base module: version, license, modules, help and
// quit, plus the list separator parameter.
func NewBase(host Host) *Static {
	commands := []command.Command{
		command.NewFunc("version", "print the server version", func(ctx context.Context, args []string) ([]string, error) {
			if err := expectArgs("version", "version", args, 0, 0); err != nil {
				return nil, err
			}
			return []string{host.Version()}, nil
		}),
		command.NewFunc("license", "print the license", func(ctx context.Context, args []string) ([]string, error) {
			return []string{License}, nil
		}),
		command.NewFunc("modules", "list the loaded modules", func(ctx context.Context, args []string) ([]string, error) {
			return host.ModuleNames(), nil
		}),
		command.NewFunc("help", "list commands, or describe one: help [command [subcommand ...]]", func(ctx context.Context, args []string) ([]string, error) {
			return help(host.Commands(), args)
		}),
		command.NewFunc("quit", "end the session", func(ctx context.Context, args []string) ([]string, error) {
			host.Quit()
			return nil, nil
		}),
	}
	params := []*param.Parameter{
		param.NewString(ListSeparator, "separator between the lines of a multi-line result", " "),
	}
	return New("base", commands, params)
}

// help walks args through nested executors with the usual prefix rules.
func help(root *command.Executor, args []string) ([]string, error) {
	if len(args) == 0 {
		return root.Names(), nil
	}
	executor := root
	var path []string
	var cmd command.Command
	for _, arg := range args {
		if executor == nil {
			return nil, command.ArgumentCountError(strings.Join(path, " "), "no subcommands")
		}
		c, err := executor.Resolve(arg)
		if err != nil {
			return nil, err
		}
		cmd = c
		path = append(path, strings.ToLower(c.Name()))
		executor = nil
		if composite, ok := c.(*command.WithSubcommands); ok {
			executor = composite.Subcommands()
		}
	}
	line := fmt.Sprintf("%s: %s", strings.Join(path, " "), cmd.Description())
	if executor != nil {
		line += fmt.Sprintf(" [%s]", strings.Join(executor.Names(), " "))
	}
	return []string{line}, nil
}
