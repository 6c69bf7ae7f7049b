// Package irsignal defines the infrared signal type exchanged between the
// command modules, the protocol renderers and the hardware drivers.
//
// Durations are in microseconds and alternate flash and gap, starting with a
// flash. A signal has an intro sequence sent once, a repeat sequence sent for
// every additional repetition and an optional ending sequence.
package irsignal

import (
	"fmt"
	"strconv"
	"strings"
)

// Signal is a modulated infrared signal.
type Signal struct {
	Frequency int
	Intro     []int
	Repeat    []int
	Ending    []int
}

// Sequence returns the durations sent for count transmissions. A signal
// without a repeat part sends its intro count times.
func (s *Signal) Sequence(count int) []int {
	if count < 1 {
		count = 1
	}
	var seq []int
	if len(s.Intro) == 0 {
		for i := 0; i < count; i++ {
			seq = append(seq, s.Repeat...)
		}
		return append(seq, s.Ending...)
	}
	seq = append(seq, s.Intro...)
	for i := 1; i < count; i++ {
		if len(s.Repeat) > 0 {
			seq = append(seq, s.Repeat...)
		} else {
			seq = append(seq, s.Intro...)
		}
	}
	return append(seq, s.Ending...)
}

// String renders the signal in the raw text form accepted by ParseRaw,
// with the repeat and ending parts in brackets.
func (s *Signal) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "f=%d", s.Frequency)
	writeDurations(&b, s.Intro)
	if len(s.Repeat) > 0 {
		b.WriteString(" [")
		writeDurations(&b, s.Repeat)
		b.WriteString(" ]")
	}
	if len(s.Ending) > 0 {
		b.WriteString(" [")
		writeDurations(&b, s.Ending)
		b.WriteString(" ]")
	}
	return b.String()
}

func writeDurations(b *strings.Builder, durations []int) {
	for i, d := range durations {
		if i%2 == 0 {
			fmt.Fprintf(b, " +%d", d)
		} else {
			fmt.Fprintf(b, " -%d", d)
		}
	}
}

// ParseRaw builds a one-shot signal from a frequency in Hz and a list of
// durations. Durations may carry a leading + or - sign; their count must
// be even.
func ParseRaw(frequency string, durations []string) (*Signal, error) {
	freq, err := strconv.Atoi(strings.TrimPrefix(frequency, "f="))
	if err != nil || freq < 0 {
		return nil, fmt.Errorf("invalid frequency '%s'", frequency)
	}
	if len(durations) == 0 || len(durations)%2 != 0 {
		return nil, fmt.Errorf("expected an even, non-zero number of durations, got %d", len(durations))
	}

	intro := make([]int, 0, len(durations))
	for _, text := range durations {
		d, err := strconv.Atoi(strings.TrimLeft(text, "+-"))
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid duration '%s'", text)
		}
		intro = append(intro, d)
	}
	return &Signal{Frequency: freq, Intro: intro}, nil
}
