package irsignal

// NEC1 timing: {38.4k,564}<1,-1|1,-3>(16,-8,D:8,S:8,F:8,~F:8,1,^108m,(16,-4,1,^108m)*)
const (
	nec1Frequency = 38400
	nec1Unit      = 564
	nec1Frame     = 108000
)

// NEC1 renders and decodes the NEC1 protocol. Parameters: D and F (0..255),
// optional S (0..255, default 255-D).
type NEC1 struct{}

func (NEC1) Name() string { return "nec1" }

func (NEC1) Render(params map[string]int64) (*Signal, error) {
	d, err := requireByte("nec1", params, "D")
	if err != nil {
		return nil, err
	}
	f, err := requireByte("nec1", params, "F")
	if err != nil {
		return nil, err
	}
	s := 255 - d
	if _, ok := params["S"]; ok {
		if s, err = requireByte("nec1", params, "S"); err != nil {
			return nil, err
		}
	}

	intro := []int{16 * nec1Unit, 8 * nec1Unit}
	for _, b := range []int64{d, s, f, 255 - f} {
		for i := 0; i < 8; i++ {
			if b&(1<<i) != 0 {
				intro = append(intro, nec1Unit, 3*nec1Unit)
			} else {
				intro = append(intro, nec1Unit, nec1Unit)
			}
		}
	}
	intro = append(intro, nec1Unit)
	intro = append(intro, nec1Frame-sum(intro))

	repeat := []int{16 * nec1Unit, 4 * nec1Unit, nec1Unit}
	repeat = append(repeat, nec1Frame-sum(repeat))

	return &Signal{Frequency: nec1Frequency, Intro: intro, Repeat: repeat}, nil
}

func (NEC1) Decode(sig *Signal) (map[string]int64, bool) {
	durations := sig.Intro
	if len(durations) == 0 {
		durations = sig.Repeat
	}
	// lead-in pair, 32 bit pairs and the stop flash
	if len(durations) < 67 {
		return nil, false
	}
	if !near(durations[0], 16*nec1Unit) || !near(durations[1], 8*nec1Unit) {
		return nil, false
	}

	var fields [4]int64
	for bit := 0; bit < 32; bit++ {
		flash, gap := durations[2+2*bit], durations[3+2*bit]
		if !near(flash, nec1Unit) {
			return nil, false
		}
		switch {
		case near(gap, nec1Unit):
		case near(gap, 3*nec1Unit):
			fields[bit/8] |= 1 << (bit % 8)
		default:
			return nil, false
		}
	}
	if fields[2]^fields[3] != 0xFF {
		return nil, false
	}

	params := map[string]int64{"D": fields[0], "F": fields[2]}
	if fields[1] != 255-fields[0] {
		params["S"] = fields[1]
	}
	return params, true
}

func requireByte(protocol string, params map[string]int64, name string) (int64, error) {
	v, ok := params[name]
	if !ok {
		return 0, &ProtocolError{Code: ErrMissingParameter, Protocol: protocol, Parameter: name}
	}
	if v < 0 || v > 255 {
		return 0, &ProtocolError{Code: ErrParameterDomain, Protocol: protocol, Parameter: name}
	}
	return v, nil
}

func sum(durations []int) int {
	total := 0
	for _, d := range durations {
		total += d
	}
	return total
}

// near accepts a measured duration within 35% of the expected one.
func near(measured, expected int) bool {
	diff := measured - expected
	if diff < 0 {
		diff = -diff
	}
	return diff*100 <= expected*35
}
