package module

import (
	"context"

	"github.com/girs-server/girsd/internal/command"
	"github.com/girs-server/girsd/internal/hardware"
	"github.com/girs-server/girsd/internal/irsignal"
	"github.com/girs-server/girsd/internal/param"
	"github.com/girs-server/girsd/internal/remote"
)

// NotFound is printed by a reverse lookup that matches no remote command.
const NotFound = "not found"

// Remotes is the named-remotes module. Sending honours the transmitter
// parameter of the session it is bound to.
type Remotes struct {
	*Static
	params *param.Registry
}

// Bind implements Binder.
func (m *Remotes) Bind(params *param.Registry) {
	m.params = params
}

// transmitter returns the configured transmitter, empty when unbound or
// when no transmit module declares it.
func (m *Remotes) transmitter() string {
	if m.params == nil {
		return ""
	}
	p, err := m.params.Get(TransmitTransmitter)
	if err != nil {
		return ""
	}
	return p.StringValue()
}

// NewRemotes creates the named-remotes module backed by db.
func NewRemotes(db *remote.Database, devices *hardware.Set, renderer irsignal.Renderer) *Remotes {
	if db == nil {
		db = remote.NewDatabase()
	}
	m := &Remotes{}

	list := command.NewFunc("list", "list the known remotes", func(ctx context.Context, args []string) ([]string, error) {
		return db.RemoteNames(), nil
	})
	commands := command.NewFunc("commands", "list the commands of a remote: commands <remote>", func(ctx context.Context, args []string) ([]string, error) {
		if err := expectArgs("remote commands", "remote commands <remote>", args, 1, 1); err != nil {
			return nil, err
		}
		r, err := db.Remote(args[0])
		if err != nil {
			return nil, err
		}
		return r.CommandNames(), nil
	})
	send := command.NewFunc("send", "send a remote command: send <remote> <command> [count]", func(ctx context.Context, args []string) ([]string, error) {
		if err := expectArgs("remote send", "remote send <remote> <command> [count]", args, 2, 3); err != nil {
			return nil, err
		}
		count := 1
		if len(args) == 3 {
			n, err := parseCount("remote send", args[2])
			if err != nil {
				return nil, err
			}
			count = n
		}
		_, cmd, err := db.Command(args[0], args[1])
		if err != nil {
			return nil, err
		}
		if renderer == nil {
			return nil, &irsignal.ProtocolError{Code: irsignal.ErrUnknownProtocol, Protocol: cmd.Protocol}
		}
		sig, err := renderer.Render(cmd.Protocol, cmd.Parameters)
		if err != nil {
			return nil, err
		}
		tx, err := deviceAs[hardware.Transmitter](devices, "transmit")
		if err != nil {
			return nil, err
		}
		return nil, tx.Send(ctx, sig, count, m.transmitter())
	})
	lookup := command.NewFunc("lookup", "identify a signal: lookup <protocol> [param=value ...]", func(ctx context.Context, args []string) ([]string, error) {
		if err := expectArgs("remote lookup", "remote lookup <protocol> [param=value ...]", args, 1, -1); err != nil {
			return nil, err
		}
		params, err := parseAssignments("remote lookup", args[1:])
		if err != nil {
			return nil, err
		}
		m, ok := db.Lookup(remote.NewKey(args[0], params))
		if !ok {
			return []string{NotFound}, nil
		}
		return []string{m.Remote, m.Command}, nil
	})

	m.Static = New("remotes", []command.Command{
		command.NewWithSubcommands("remote", "named remotes", list, commands, send, lookup),
	}, nil)
	return m
}

// NewRenderer creates the module listing the renderable protocols.
func NewRenderer(renderer irsignal.Renderer) *Static {
	protocols := command.NewFunc("protocols", "list the renderable protocols", func(ctx context.Context, args []string) ([]string, error) {
		if renderer == nil {
			return nil, nil
		}
		return renderer.Protocols(), nil
	})
	return New("renderer", []command.Command{protocols}, nil)
}
