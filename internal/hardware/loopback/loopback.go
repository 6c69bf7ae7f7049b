// Package loopback provides an in-memory transceiver: every transmitted
// signal becomes the next captured or received one. It backs tests and
// hardware-less installations.
package loopback

import (
	"context"
	"fmt"
	"sync"

	"github.com/girs-server/girsd/internal/hardware"
	"github.com/girs-server/girsd/internal/irsignal"
)

// Type is the hardware type tag used in configuration.
const Type = "loopback"

// Version reported by every loopback device.
const Version = "loopback 1.0"

// Sent records one transmission.
type Sent struct {
	Signal      *irsignal.Signal
	Count       int
	Transmitter string
}

// Device is a loopback transceiver.
type Device struct {
	name         string
	transmitters []string

	mu        sync.Mutex
	open      bool
	pending   *irsignal.Signal
	sent      []Sent
	stops     int
	simulated error
}

// New creates a closed device. The transmitter names default to "default".
func New(name string, transmitters ...string) *Device {
	if len(transmitters) == 0 {
		transmitters = []string{"default"}
	}
	return &Device{name: name, transmitters: transmitters}
}

// Factory builds a loopback device; args name its transmitters.
func Factory(args []string) (hardware.Hardware, error) {
	return New(Type, args...), nil
}

// Register adds the loopback factory to r.
func Register(r *hardware.Registry) {
	r.Register(Type, Factory)
}

func (d *Device) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.simulated != nil {
		return d.simulated
	}
	d.open = true
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return nil
}

func (d *Device) IsValid() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Device) Version() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("version"); err != nil {
		return "", err
	}
	return Version, nil
}

func (d *Device) Transmitters() ([]string, error) {
	return append([]string(nil), d.transmitters...), nil
}

func (d *Device) Send(ctx context.Context, sig *irsignal.Signal, count int, transmitter string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("send"); err != nil {
		return err
	}
	if count < 1 {
		return &hardware.Error{Code: hardware.ErrIO, Device: d.name, Op: "send", Cause: fmt.Errorf("invalid count %d", count)}
	}
	if transmitter != "" && !d.hasTransmitter(transmitter) {
		return &hardware.Error{Code: hardware.ErrIO, Device: d.name, Op: "send", Cause: fmt.Errorf("no transmitter %q", transmitter)}
	}
	d.sent = append(d.sent, Sent{Signal: sig, Count: count, Transmitter: transmitter})
	d.pending = sig
	return nil
}

func (d *Device) Stop(ctx context.Context, transmitter string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready("stop"); err != nil {
		return err
	}
	d.stops++
	return nil
}

// Capture returns the last transmitted signal, or ErrTimeout when nothing
// was sent since the previous capture.
func (d *Device) Capture(ctx context.Context, opts hardware.CaptureOptions) (*irsignal.Signal, error) {
	sig, err := d.take(ctx, "capture")
	if err != nil {
		return nil, err
	}
	if opts.MaxLength > 0 && len(sig.Intro)+len(sig.Repeat)+len(sig.Ending) > opts.MaxLength {
		return nil, &hardware.Error{Code: hardware.ErrIO, Device: d.name, Op: "capture", Cause: fmt.Errorf("signal longer than %d", opts.MaxLength)}
	}
	return sig, nil
}

// Receive behaves like Capture but drops the modulation frequency.
func (d *Device) Receive(ctx context.Context, opts hardware.ReceiveOptions) (*irsignal.Signal, error) {
	sig, err := d.take(ctx, "receive")
	if err != nil {
		return nil, err
	}
	return &irsignal.Signal{Intro: sig.Intro, Repeat: sig.Repeat, Ending: sig.Ending}, nil
}

// Inject queues sig for the next capture or receive.
func (d *Device) Inject(sig *irsignal.Signal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = sig
}

// Sent returns the recorded transmissions.
func (d *Device) Sent() []Sent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Sent(nil), d.sent...)
}

// Stops returns how many times Stop succeeded.
func (d *Device) Stops() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stops
}

// SetErrorSimulation makes every later operation fail with err; nil
// restores normal behavior.
func (d *Device) SetErrorSimulation(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.simulated = err
}

func (d *Device) take(ctx context.Context, op string) (*irsignal.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready(op); err != nil {
		return nil, err
	}
	if d.pending == nil {
		return nil, &hardware.Error{Code: hardware.ErrTimeout, Device: d.name, Op: op}
	}
	sig := d.pending
	d.pending = nil
	return sig, nil
}

// ready must be called with mu held.
func (d *Device) ready(op string) error {
	if d.simulated != nil {
		return &hardware.Error{Code: hardware.ErrIO, Device: d.name, Op: op, Cause: d.simulated}
	}
	if !d.open {
		return &hardware.Error{Code: hardware.ErrNotOpen, Device: d.name, Op: op}
	}
	return nil
}

func (d *Device) hasTransmitter(name string) bool {
	for _, t := range d.transmitters {
		if t == name {
			return true
		}
	}
	return false
}
