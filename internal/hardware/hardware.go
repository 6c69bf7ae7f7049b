// Package hardware defines the contract between commands and infrared
// transceiver devices, and the registry that builds devices from
// configuration.
package hardware

import (
	"context"
	"time"

	"github.com/girs-server/girsd/internal/irsignal"
)

// Hardware is the lifecycle every device supports. Capabilities are
// separate interfaces checked with As.
type Hardware interface {
	// Open prepares the device. Opening an open device is a no-op.
	Open(ctx context.Context) error

	// Close releases the device. Closing a closed device is a no-op.
	Close() error

	// IsValid reports whether the device is open and usable.
	IsValid() bool

	// Version returns the device firmware or driver version.
	Version() (string, error)
}

// Transmitter sends signals.
type Transmitter interface {
	// Send transmits sig count times on the named transmitter; an empty
	// name selects the device default.
	Send(ctx context.Context, sig *irsignal.Signal, count int, transmitter string) error
}

// Stopper aborts an ongoing transmission.
type Stopper interface {
	Stop(ctx context.Context, transmitter string) error
}

// TransmitterLister enumerates transmitter sub-ports.
type TransmitterLister interface {
	Transmitters() ([]string, error)
}

// CaptureOptions bounds a capture. The device enforces the timeouts.
type CaptureOptions struct {
	BeginTimeout  time.Duration
	EndingTimeout time.Duration
	MaxLength     int
}

// Capturer records a signal with its modulation frequency.
type Capturer interface {
	Capture(ctx context.Context, opts CaptureOptions) (*irsignal.Signal, error)
}

// ReceiveOptions bounds a demodulated receive.
type ReceiveOptions struct {
	BeginTimeout  time.Duration
	EndingTimeout time.Duration
}

// Receiver records a demodulated signal.
type Receiver interface {
	Receive(ctx context.Context, opts ReceiveOptions) (*irsignal.Signal, error)
}

// As returns hw as capability T, or an IncompatibleHardware error naming
// the missing capability.
func As[T any](hw Hardware, capability string) (T, error) {
	c, ok := hw.(T)
	if !ok {
		var zero T
		return zero, &Error{Code: ErrIncompatibleHardware, Op: capability}
	}
	return c, nil
}
