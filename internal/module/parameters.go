package module

import (
	"context"
	"fmt"

	"github.com/girs-server/girsd/internal/command"
	"github.com/girs-server/girsd/internal/param"
)

// NewParameters creates the parameter introspection module operating on
// registry.
func NewParameters(registry *param.Registry) *Static {
	list := command.NewFunc("list", "list all parameters as name=value", func(ctx context.Context, args []string) ([]string, error) {
		if err := expectArgs("parameter list", "parameter list", args, 0, 0); err != nil {
			return nil, err
		}
		var lines []string
		for _, p := range registry.All() {
			lines = append(lines, fmt.Sprintf("%s=%s", p.Name(), p))
		}
		return lines, nil
	})
	get := command.NewFunc("get", "print a parameter value: get <name>", func(ctx context.Context, args []string) ([]string, error) {
		if err := expectArgs("parameter get", "parameter get <name>", args, 1, 1); err != nil {
			return nil, err
		}
		p, err := registry.Resolve(args[0])
		if err != nil {
			return nil, err
		}
		return []string{p.String()}, nil
	})
	set := command.NewFunc("set", "change a parameter: set <name> <value>", func(ctx context.Context, args []string) ([]string, error) {
		if err := expectArgs("parameter set", "parameter set <name> <value>", args, 2, 2); err != nil {
			return nil, err
		}
		_, err := registry.Set(args[0], args[1])
		return nil, err
	})
	describe := command.NewFunc("describe", "print a parameter's kind and documentation: describe <name>", func(ctx context.Context, args []string) ([]string, error) {
		if err := expectArgs("parameter describe", "parameter describe <name>", args, 1, 1); err != nil {
			return nil, err
		}
		p, err := registry.Resolve(args[0])
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("%s (%s): %s", p.Name(), p.Kind(), p.Doc())}, nil
	})

	return New("parameters", []command.Command{
		command.NewWithSubcommands("parameter", "inspect and change parameters", list, get, set, describe),
	}, nil)
}
