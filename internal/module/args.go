package module

import (
	"strconv"
	"strings"

	"github.com/girs-server/girsd/internal/command"
	"github.com/girs-server/girsd/internal/hardware"
)

func expectArgs(name, usage string, args []string, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return command.ArgumentCountError(name, usage)
	}
	return nil
}

// parseAssignments reads name=value arguments into a parameter map. Values
// accept decimal, 0x hex and 0 octal notation.
func parseAssignments(name string, args []string) (map[string]int64, error) {
	params := make(map[string]int64, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, command.InvalidArgumentError(name, arg)
		}
		v, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return nil, command.InvalidArgumentError(name, arg)
		}
		params[key] = v
	}
	return params, nil
}

func parseCount(name, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, command.InvalidArgumentError(name, arg)
	}
	return n, nil
}

// currentDevice returns the selected device; a nil set means the server was
// started without hardware.
func currentDevice(devices *hardware.Set) (string, hardware.Hardware, error) {
	if devices == nil {
		return "", nil, hardware.ErrNoHardware
	}
	return devices.Current()
}

// deviceAs returns the selected device as capability T.
func deviceAs[T any](devices *hardware.Set, capability string) (T, error) {
	var zero T
	_, hw, err := currentDevice(devices)
	if err != nil {
		return zero, err
	}
	return hardware.As[T](hw, capability)
}
