package module

import (
	"context"
	"time"

	"github.com/girs-server/girsd/internal/command"
	"github.com/girs-server/girsd/internal/hardware"
	"github.com/girs-server/girsd/internal/irsignal"
	"github.com/girs-server/girsd/internal/param"
	"github.com/girs-server/girsd/internal/remote"
)

// Capture and receive parameter names.
const (
	CaptureBeginTimeout  = "captureBeginTimeout"
	CaptureEndingTimeout = "captureEndingTimeout"
	CaptureMaxLength     = "captureMaxLength"
	ReceiveEndingTimeout = "receiveEndingTimeout"
	ReceiveDecode        = "receiveDecode"
)

func millis(p *param.Parameter) time.Duration {
	return time.Duration(p.IntValue()) * time.Millisecond
}

// NewCapture creates the module recording modulated signals.
func NewCapture(devices *hardware.Set) *Static {
	begin := param.NewInt(CaptureBeginTimeout, "milliseconds to wait for a signal to start", 5000)
	ending := param.NewInt(CaptureEndingTimeout, "milliseconds of silence that end a signal", 300)
	maxLength := param.NewInt(CaptureMaxLength, "maximum number of durations captured", 400)

	capture := command.NewFunc("capture", "record a signal with its modulation frequency", func(ctx context.Context, args []string) ([]string, error) {
		if err := expectArgs("capture", "capture", args, 0, 0); err != nil {
			return nil, err
		}
		c, err := deviceAs[hardware.Capturer](devices, "capture")
		if err != nil {
			return nil, err
		}
		sig, err := c.Capture(ctx, hardware.CaptureOptions{
			BeginTimeout:  millis(begin),
			EndingTimeout: millis(ending),
			MaxLength:     int(maxLength.IntValue()),
		})
		if err != nil {
			return nil, err
		}
		return []string{sig.String()}, nil
	})

	return New("capture", []command.Command{capture}, []*param.Parameter{begin, ending, maxLength})
}

// NewReceive creates the module recording demodulated signals. With
// decoding on, a received signal is decoded and identified against
// remotes.
func NewReceive(devices *hardware.Set, decoder irsignal.Decoder, remotes *remote.Database) *Static {
	ending := param.NewInt(ReceiveEndingTimeout, "milliseconds of silence that end a received signal", 100)
	decode := param.NewBool(ReceiveDecode, "decode received signals and look them up in the remotes", true)

	receive := command.NewFunc("receive", "receive a signal and identify it", func(ctx context.Context, args []string) ([]string, error) {
		if err := expectArgs("receive", "receive", args, 0, 0); err != nil {
			return nil, err
		}
		r, err := deviceAs[hardware.Receiver](devices, "receive")
		if err != nil {
			return nil, err
		}
		sig, err := r.Receive(ctx, hardware.ReceiveOptions{EndingTimeout: millis(ending)})
		if err != nil {
			return nil, err
		}
		if !decode.BoolValue() || decoder == nil {
			return []string{sig.String()}, nil
		}
		return identify(sig, decoder, remotes), nil
	})

	return New("receive", []command.Command{receive}, []*param.Parameter{ending, decode})
}

// identify returns the remote and command a signal belongs to, else its
// decode, else the raw signal.
func identify(sig *irsignal.Signal, decoder irsignal.Decoder, remotes *remote.Database) []string {
	d, err := decoder.Decode(sig)
	if err != nil || d == nil {
		return []string{sig.String()}
	}
	if remotes != nil {
		if m, ok := remotes.Lookup(remote.NewKey(d.Protocol, d.Parameters)); ok {
			return []string{m.Remote, m.Command}
		}
	}
	return []string{d.String()}
}
