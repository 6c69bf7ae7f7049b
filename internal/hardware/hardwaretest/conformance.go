// Package hardwaretest provides a device-agnostic conformance suite for
// hardware drivers.
package hardwaretest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/girs-server/girsd/internal/hardware"
	"github.com/girs-server/girsd/internal/irsignal"
)

// Result is the outcome of one conformance check.
type Result struct {
	Name     string
	Passed   bool
	Error    string
	Duration time.Duration
}

// Report collects the results of one run.
type Report struct {
	Device   string
	Results  []Result
	Passed   int
	Failed   int
	Duration time.Duration
}

func (r *Report) add(name string, start time.Time, err error) {
	res := Result{Name: name, Passed: err == nil, Duration: time.Since(start)}
	if err != nil {
		res.Error = err.Error()
		r.Failed++
	} else {
		r.Passed++
	}
	r.Results = append(r.Results, res)
}

// Sample is the signal transmitted by the suite.
var Sample = &irsignal.Signal{Frequency: 38000, Intro: []int{9024, -4512, 564, -1692, 564, -39756}}

// RunConformance checks the Hardware lifecycle and every capability the
// device implements. newDevice must return a fresh, closed device.
func RunConformance(t *testing.T, name string, newDevice func() hardware.Hardware) *Report {
	t.Helper()
	start := time.Now()
	report := &Report{Device: name}

	checks := []struct {
		name string
		run  func(hardware.Hardware) error
	}{
		{"Lifecycle", checkLifecycle},
		{"Idempotent", checkIdempotent},
		{"ClosedRejects", checkClosedRejects},
		{"Cancelled", checkCancelled},
		{"Transmit", checkTransmit},
		{"Transmitters", checkTransmitters},
	}
	for _, c := range checks {
		begin := time.Now()
		hw := newDevice()
		err := c.run(hw)
		_ = hw.Close()
		report.add(c.name, begin, err)
	}

	report.Duration = time.Since(start)
	logReport(t, report)
	if report.Failed > 0 {
		t.Fatalf("Hardware conformance failed: %d/%d checks passed", report.Passed, len(report.Results))
	}
	return report
}

func checkLifecycle(hw hardware.Hardware) error {
	if hw.IsValid() {
		return errors.New("new device reports valid before Open")
	}
	if err := hw.Open(context.Background()); err != nil {
		return fmt.Errorf("Open failed: %w", err)
	}
	if !hw.IsValid() {
		return errors.New("device not valid after Open")
	}
	if v, err := hw.Version(); err != nil || v == "" {
		return fmt.Errorf("Version returned %q, %v", v, err)
	}
	if err := hw.Close(); err != nil {
		return fmt.Errorf("Close failed: %w", err)
	}
	if hw.IsValid() {
		return errors.New("device still valid after Close")
	}
	return nil
}

func checkIdempotent(hw hardware.Hardware) error {
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := hw.Open(ctx); err != nil {
			return fmt.Errorf("Open #%d failed: %w", i+1, err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := hw.Close(); err != nil {
			return fmt.Errorf("Close #%d failed: %w", i+1, err)
		}
	}
	return nil
}

func checkClosedRejects(hw hardware.Hardware) error {
	ctx := context.Background()
	if tx, ok := hw.(hardware.Transmitter); ok {
		if err := tx.Send(ctx, Sample, 1, ""); !errors.Is(err, hardware.ErrNotOpen) {
			return fmt.Errorf("Send on closed device: expected ErrNotOpen, got %v", err)
		}
	}
	if c, ok := hw.(hardware.Capturer); ok {
		if _, err := c.Capture(ctx, hardware.CaptureOptions{BeginTimeout: time.Millisecond}); !errors.Is(err, hardware.ErrNotOpen) {
			return fmt.Errorf("Capture on closed device: expected ErrNotOpen, got %v", err)
		}
	}
	if r, ok := hw.(hardware.Receiver); ok {
		if _, err := r.Receive(ctx, hardware.ReceiveOptions{BeginTimeout: time.Millisecond}); !errors.Is(err, hardware.ErrNotOpen) {
			return fmt.Errorf("Receive on closed device: expected ErrNotOpen, got %v", err)
		}
	}
	return nil
}

func checkCancelled(hw hardware.Hardware) error {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := hw.Open(ctx); !errors.Is(err, context.Canceled) {
		return fmt.Errorf("Open with cancelled context: expected context.Canceled, got %v", err)
	}
	return nil
}

func checkTransmit(hw hardware.Hardware) error {
	tx, ok := hw.(hardware.Transmitter)
	if !ok {
		return nil
	}
	if err := hw.Open(context.Background()); err != nil {
		return fmt.Errorf("Open failed: %w", err)
	}
	if err := tx.Send(context.Background(), Sample, 1, ""); err != nil {
		return fmt.Errorf("Send failed: %w", err)
	}
	if s, ok := hw.(hardware.Stopper); ok {
		if err := s.Stop(context.Background(), ""); err != nil {
			return fmt.Errorf("Stop failed: %w", err)
		}
	}
	return nil
}

func checkTransmitters(hw hardware.Hardware) error {
	l, ok := hw.(hardware.TransmitterLister)
	if !ok {
		return nil
	}
	names, err := l.Transmitters()
	if err != nil {
		return fmt.Errorf("Transmitters failed: %w", err)
	}
	if len(names) == 0 {
		return errors.New("Transmitters returned no names")
	}
	return nil
}

func logReport(t *testing.T, report *Report) {
	t.Logf("%s", strings.Repeat("=", 72))
	t.Logf("HARDWARE CONFORMANCE: %s", report.Device)
	t.Logf("Passed: %d  Failed: %d  Duration: %v", report.Passed, report.Failed, report.Duration)
	t.Logf("%s", strings.Repeat("-", 72))
	for _, r := range report.Results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		t.Logf("%-20s %-6s %-12v %s", r.Name, status, r.Duration, r.Error)
	}
}
