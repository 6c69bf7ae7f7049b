package module

import (
	"context"

	"github.com/girs-server/girsd/internal/command"
	"github.com/girs-server/girsd/internal/hardware"
	"github.com/girs-server/girsd/internal/irsignal"
	"github.com/girs-server/girsd/internal/param"
)

// Transmit parameter names.
const (
	TransmitCount       = "transmitCount"
	TransmitTransmitter = "transmitter"
)

// NewTransmit creates the module sending raw and rendered signals through
// the current device.
func NewTransmit(devices *hardware.Set, renderer irsignal.Renderer) *Static {
	count := param.NewInt(TransmitCount, "number of times a signal is sent", 1)
	transmitter := param.NewString(TransmitTransmitter, "transmitter used for sending, empty for the device default", "")

	send := func(ctx context.Context, name string, sig *irsignal.Signal) error {
		n := count.IntValue()
		if n < 1 {
			return command.InvalidArgumentError(name, count.String())
		}
		tx, err := deviceAs[hardware.Transmitter](devices, "transmit")
		if err != nil {
			return err
		}
		return tx.Send(ctx, sig, int(n), transmitter.StringValue())
	}

	raw := command.NewFunc("raw", "send a raw signal: raw <frequency> <durations...>", func(ctx context.Context, args []string) ([]string, error) {
		if err := expectArgs("transmit raw", "transmit raw <frequency> <durations...>", args, 2, -1); err != nil {
			return nil, err
		}
		sig, err := irsignal.ParseRaw(args[0], args[1:])
		if err != nil {
			return nil, err
		}
		return nil, send(ctx, "transmit raw", sig)
	})
	protocol := command.NewFunc("protocol", "render and send a signal: protocol <name> [param=value ...]", func(ctx context.Context, args []string) ([]string, error) {
		if err := expectArgs("transmit protocol", "transmit protocol <name> [param=value ...]", args, 1, -1); err != nil {
			return nil, err
		}
		if renderer == nil {
			return nil, &irsignal.ProtocolError{Code: irsignal.ErrUnknownProtocol, Protocol: args[0]}
		}
		params, err := parseAssignments("transmit protocol", args[1:])
		if err != nil {
			return nil, err
		}
		sig, err := renderer.Render(args[0], params)
		if err != nil {
			return nil, err
		}
		return nil, send(ctx, "transmit protocol", sig)
	})
	stop := command.NewFunc("stop", "abort an ongoing transmission", func(ctx context.Context, args []string) ([]string, error) {
		s, err := deviceAs[hardware.Stopper](devices, "stop")
		if err != nil {
			return nil, err
		}
		return nil, s.Stop(ctx, transmitter.StringValue())
	})

	return New("transmit",
		[]command.Command{command.NewWithSubcommands("transmit", "send infrared signals", raw, protocol, stop)},
		[]*param.Parameter{count, transmitter})
}
