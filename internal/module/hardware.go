package module

import (
	"context"

	"github.com/girs-server/girsd/internal/command"
	"github.com/girs-server/girsd/internal/hardware"
)

// NewHardware creates the module that manages the configured devices.
func NewHardware(devices *hardware.Set) *Static {
	list := command.NewFunc("list", "list configured devices", func(ctx context.Context, args []string) ([]string, error) {
		if devices == nil {
			return nil, hardware.ErrNoHardware
		}
		return devices.Names(), nil
	})
	selectCmd := command.NewFunc("select", "make a device current: select <name>", func(ctx context.Context, args []string) ([]string, error) {
		if err := expectArgs("hardware select", "hardware select <name>", args, 1, 1); err != nil {
			return nil, err
		}
		if devices == nil {
			return nil, hardware.ErrNoHardware
		}
		_, err := devices.Select(args[0])
		return nil, err
	})
	open := command.NewFunc("open", "open the current device", func(ctx context.Context, args []string) ([]string, error) {
		_, hw, err := currentDevice(devices)
		if err != nil {
			return nil, err
		}
		return nil, hw.Open(ctx)
	})
	closeCmd := command.NewFunc("close", "close the current device", func(ctx context.Context, args []string) ([]string, error) {
		_, hw, err := currentDevice(devices)
		if err != nil {
			return nil, err
		}
		return nil, hw.Close()
	})
	status := command.NewFunc("status", "print the current device and whether it is open", func(ctx context.Context, args []string) ([]string, error) {
		name, hw, err := currentDevice(devices)
		if err != nil {
			return nil, err
		}
		state := "closed"
		if hw.IsValid() {
			state = "open"
		}
		return []string{name, state}, nil
	})
	version := command.NewFunc("version", "print the current device version", func(ctx context.Context, args []string) ([]string, error) {
		_, hw, err := currentDevice(devices)
		if err != nil {
			return nil, err
		}
		v, err := hw.Version()
		if err != nil {
			return nil, err
		}
		return []string{v}, nil
	})
	transmitters := command.NewFunc("transmitters", "list the transmitters of the current device", func(ctx context.Context, args []string) ([]string, error) {
		lister, err := deviceAs[hardware.TransmitterLister](devices, "transmitters")
		if err != nil {
			return nil, err
		}
		return lister.Transmitters()
	})

	return New("hardware", []command.Command{
		command.NewWithSubcommands("hardware", "manage infrared hardware",
			list, selectCmd, open, closeCmd, status, version, transmitters),
	}, nil)
}
