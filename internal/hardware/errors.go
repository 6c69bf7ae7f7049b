package hardware

import (
	"errors"
	"fmt"
)

// Device errors. Drivers wrap their own failures in Error so callers can
// test the code with errors.Is.
var (
	ErrIncompatibleHardware = errors.New("incompatible hardware")
	ErrNotOpen              = errors.New("hardware not open")
	ErrNoHardware           = errors.New("no hardware configured")
	ErrNoSuchHardware       = errors.New("no such hardware")
	ErrAmbiguousHardware    = errors.New("ambiguous hardware")
	ErrUnknownType          = errors.New("unknown hardware type")
	ErrTimeout              = errors.New("timeout")
	ErrIO                   = errors.New("hardware i/o error")
)

// Error carries the device operation that failed and the driver error.
type Error struct {
	Code   error
	Device string
	Op     string
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Code.Error()
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Device != "" {
		msg += fmt.Sprintf(" (device %s)", e.Device)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Code
}
