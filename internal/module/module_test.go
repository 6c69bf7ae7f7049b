package module

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/girs-server/girsd/internal/command"
	"github.com/girs-server/girsd/internal/hardware"
	"github.com/girs-server/girsd/internal/hardware/loopback"
	"github.com/girs-server/girsd/internal/irsignal"
	"github.com/girs-server/girsd/internal/param"
	"github.com/girs-server/girsd/internal/remote"
)

// fixture wires modules into one executor and registry the way the
// engine builder does.
type fixture struct {
	root    *command.Executor
	params  *param.Registry
	device  *loopback.Device
	devices *hardware.Set
	quit    bool
}

func (f *fixture) Version() string             { return "girsd test" }
func (f *fixture) ModuleNames() []string       { return []string{"base"} }
func (f *fixture) Commands() *command.Executor { return f.root }
func (f *fixture) Quit()                       { f.quit = true }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		root:    command.NewExecutor(),
		params:  param.NewRegistry(),
		device:  loopback.New("ir", "front", "back"),
		devices: hardware.NewSet(),
	}
	f.devices.Add("ir", f.device)

	tv := remote.NewRemote("TV")
	tv.Add(&remote.Command{Name: "power", Protocol: "nec1", Parameters: map[string]int64{"D": 1, "F": 2}})
	tv.Add(&remote.Command{Name: "mute", Protocol: "nec1", Parameters: map[string]int64{"D": 1, "F": 9}})
	db := remote.NewDatabase(&remote.Set{Remotes: []*remote.Remote{tv}})
	protocols := irsignal.Default()

	var binders []Binder
	for _, m := range []Module{
		NewBase(f),
		NewParameters(f.params),
		NewHardware(f.devices),
		NewTransmit(f.devices, protocols),
		NewCapture(f.devices),
		NewReceive(f.devices, protocols, db),
		NewRemotes(db, f.devices, protocols),
		NewRenderer(protocols),
	} {
		for _, cmd := range m.Commands() {
			f.root.Register(cmd)
		}
		f.params.AddAll(m.Parameters())
		if b, ok := m.(Binder); ok {
			binders = append(binders, b)
		}
	}
	for _, b := range binders {
		b.Bind(f.params)
	}
	return f
}

func (f *fixture) exec(t *testing.T, line string) ([]string, error) {
	t.Helper()
	return f.root.Dispatch(context.Background(), strings.Fields(line))
}

func (f *fixture) mustExec(t *testing.T, line string) []string {
	t.Helper()
	out, err := f.exec(t, line)
	if err != nil {
		t.Fatalf("%s: unexpected error %v", line, err)
	}
	return out
}

func TestTable(t *testing.T) {
	table := NewTable()
	table.Add(New("b", nil, nil))
	table.Add(New("a", nil, nil))
	replacement := New("b", nil, []*param.Parameter{param.NewInt("x", "", 1)})
	table.Add(replacement)

	if table.Len() != 2 {
		t.Errorf("Expected 2 modules, got %d", table.Len())
	}
	if m, ok := table.Get("b"); !ok || m != Module(replacement) {
		t.Error("Expected later module to replace earlier one")
	}
	if names := table.Names(); names[0] != "a" || names[1] != "b" {
		t.Errorf("Expected sorted names, got %v", names)
	}
}

func TestBaseCommands(t *testing.T) {
	f := newFixture(t)

	if out := f.mustExec(t, "vers"); out[0] != "girsd test" {
		t.Errorf("Expected version, got %v", out)
	}
	if out := f.mustExec(t, "lic"); out[0] != License {
		t.Errorf("Expected license text, got %v", out)
	}
	if out := f.mustExec(t, "quit"); len(out) != 0 || !f.quit {
		t.Errorf("Expected quit to be requested silently, got %v", out)
	}
	if _, err := f.exec(t, "version now"); !errors.Is(err, command.ErrArgumentCount) {
		t.Errorf("Expected argument count error, got %v", err)
	}
	if f.params.String(ListSeparator) != " " {
		t.Errorf("Expected default separator, got %q", f.params.String(ListSeparator))
	}
}

func TestHelp(t *testing.T) {
	f := newFixture(t)

	out := f.mustExec(t, "help")
	if len(out) != f.root.Len() {
		t.Errorf("Expected %d command names, got %v", f.root.Len(), out)
	}

	out = f.mustExec(t, "help param s")
	if out[0] != "parameter set: change a parameter: set <name> <value>" {
		t.Errorf("Unexpected help line %q", out[0])
	}

	out = f.mustExec(t, "help remote")
	if !strings.HasSuffix(out[0], "[commands list lookup send]") {
		t.Errorf("Expected subcommand list, got %q", out[0])
	}

	if _, err := f.exec(t, "help zap"); !errors.Is(err, command.ErrNoSuchCommand) {
		t.Errorf("Expected no such command, got %v", err)
	}
	if _, err := f.exec(t, "help version extra"); !errors.Is(err, command.ErrArgumentCount) {
		t.Errorf("Expected argument count error for leaf, got %v", err)
	}
}

func TestParameterCommands(t *testing.T) {
	f := newFixture(t)

	f.mustExec(t, "parameter set transmitC 42")
	if out := f.mustExec(t, "parameter get transmitCount"); out[0] != "42" {
		t.Errorf("Expected 42, got %v", out)
	}

	tests := []struct {
		line string
		want error
	}{
		{"parameter set transmitCount abc", param.ErrParse},
		{"parameter get nothing", param.ErrNoSuchParameter},
		{"parameter get capture", param.ErrAmbiguousParameter},
		{"parameter", command.ErrSubcommandMissing},
		{"parameter set transmitCount", command.ErrArgumentCount},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if _, err := f.exec(t, tt.line); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	out := f.mustExec(t, "parameter describe receiveD")
	if out[0] != "receiveDecode (bool): decode received signals and look them up in the remotes" {
		t.Errorf("Unexpected description %q", out[0])
	}

	list := f.mustExec(t, "parameter list")
	if len(list) != len(f.params.Names()) || list[0] != "captureBeginTimeout=5000" {
		t.Errorf("Unexpected list %v", list)
	}
}

func TestHardwareCommands(t *testing.T) {
	f := newFixture(t)

	if out := f.mustExec(t, "hardware status"); out[0] != "ir" || out[1] != "closed" {
		t.Errorf("Expected closed device, got %v", out)
	}
	if _, err := f.exec(t, "hardware version"); !errors.Is(err, hardware.ErrNotOpen) {
		t.Errorf("Expected not open, got %v", err)
	}
	f.mustExec(t, "hardware open")
	if out := f.mustExec(t, "hardware status"); out[1] != "open" {
		t.Errorf("Expected open device, got %v", out)
	}
	if out := f.mustExec(t, "hardware version"); out[0] != loopback.Version {
		t.Errorf("Expected loopback version, got %v", out)
	}
	if out := f.mustExec(t, "hardware transmitters"); len(out) != 2 || out[0] != "front" {
		t.Errorf("Expected transmitters, got %v", out)
	}
	if _, err := f.exec(t, "hardware select attic"); !errors.Is(err, hardware.ErrNoSuchHardware) {
		t.Errorf("Expected no such hardware, got %v", err)
	}
	f.mustExec(t, "hardware close")
	if f.device.IsValid() {
		t.Error("Expected device closed")
	}
}

func TestNoHardware(t *testing.T) {
	m := NewHardware(nil)
	out, err := m.Commands()[0].Exec(context.Background(), []string{"status"})
	if !errors.Is(err, hardware.ErrNoHardware) {
		t.Errorf("Expected no hardware, got %v %v", out, err)
	}

	c := NewCapture(nil)
	if _, err := c.Commands()[0].Exec(context.Background(), nil); err == nil || err.Error() != "no hardware configured" {
		t.Errorf("Expected no hardware configured, got %v", err)
	}
}

func TestTransmit(t *testing.T) {
	f := newFixture(t)
	f.mustExec(t, "hardware open")

	f.mustExec(t, "parameter set transmitCount 2")
	f.mustExec(t, "parameter set transmitter back")
	f.mustExec(t, "transmit protocol nec1 D=0x01 F=2")
	sent := f.device.Sent()
	if len(sent) != 1 || sent[0].Count != 2 || sent[0].Transmitter != "back" {
		t.Fatalf("Unexpected transmissions %+v", sent)
	}
	if sent[0].Signal.Frequency != 38400 {
		t.Errorf("Expected rendered nec1 signal, got %v", sent[0].Signal)
	}

	f.mustExec(t, "transmit raw 38000 +100 -200 300 -400")
	if out := f.mustExec(t, "capture"); out[0] != "f=38000 +100 -200 +300 -400" {
		t.Errorf("Expected captured raw signal, got %v", out)
	}

	f.mustExec(t, "transmit stop")
	if f.device.Stops() != 1 {
		t.Errorf("Expected one stop, got %d", f.device.Stops())
	}

	tests := []struct {
		line string
		want error
	}{
		{"transmit protocol rc5 D=1 F=2", irsignal.ErrUnknownProtocol},
		{"transmit protocol nec1 D=1", irsignal.ErrMissingParameter},
		{"transmit protocol nec1 D=one F=2", command.ErrInvalidArgument},
		{"transmit raw 38000", command.ErrArgumentCount},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if _, err := f.exec(t, tt.line); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	f.mustExec(t, "parameter set transmitCount 0")
	if _, err := f.exec(t, "transmit raw 38000 1 2"); !errors.Is(err, command.ErrInvalidArgument) {
		t.Errorf("Expected invalid count, got %v", err)
	}
}

func TestReceiveIdentifies(t *testing.T) {
	f := newFixture(t)
	f.mustExec(t, "hardware open")
	nec1 := irsignal.NEC1{}

	sig, _ := nec1.Render(map[string]int64{"D": 1, "F": 2})
	f.device.Inject(sig)
	if out := f.mustExec(t, "receive"); len(out) != 2 || out[0] != "TV" || out[1] != "power" {
		t.Errorf("Expected [TV power] like remote lookup, got %v", out)
	}
	if lookup := f.mustExec(t, "remote lookup nec1 D=1 F=2"); len(lookup) != 2 || lookup[0] != "TV" || lookup[1] != "power" {
		t.Errorf("Expected lookup to agree with receive, got %v", lookup)
	}

	sig, _ = nec1.Render(map[string]int64{"D": 7, "F": 8})
	f.device.Inject(sig)
	if out := f.mustExec(t, "receive"); out[0] != "nec1 D=7 F=8" {
		t.Errorf("Expected decode, got %v", out)
	}

	f.device.Inject(&irsignal.Signal{Intro: []int{100, 200}})
	if out := f.mustExec(t, "receive"); out[0] != "f=0 +100 -200" {
		t.Errorf("Expected raw signal, got %v", out)
	}

	f.mustExec(t, "parameter set receiveDecode off")
	sig, _ = nec1.Render(map[string]int64{"D": 1, "F": 2})
	f.device.Inject(sig)
	if out := f.mustExec(t, "receive"); !strings.HasPrefix(out[0], "f=0 +9024 -4512") {
		t.Errorf("Expected undecoded signal, got %v", out)
	}

	if _, err := f.exec(t, "receive"); !errors.Is(err, hardware.ErrTimeout) {
		t.Errorf("Expected timeout, got %v", err)
	}
}

func TestRemoteCommands(t *testing.T) {
	f := newFixture(t)
	f.mustExec(t, "hardware open")

	if out := f.mustExec(t, "remote list"); len(out) != 1 || out[0] != "TV" {
		t.Errorf("Expected [TV], got %v", out)
	}
	if out := f.mustExec(t, "remote commands tv"); len(out) != 2 || out[0] != "mute" {
		t.Errorf("Expected [mute power], got %v", out)
	}

	f.mustExec(t, "remote send tv pow 3")
	sent := f.device.Sent()
	if len(sent) != 1 || sent[0].Count != 3 {
		t.Fatalf("Unexpected transmissions %+v", sent)
	}

	f.mustExec(t, "parameter set transmitter back")
	f.mustExec(t, "remote send tv power")
	sent = f.device.Sent()
	if len(sent) != 2 || sent[1].Transmitter != "back" || sent[1].Count != 1 {
		t.Errorf("Expected power on the back transmitter, got %+v", sent)
	}

	if out := f.mustExec(t, "remote lookup NEC1 D=1 F=9"); out[0] != "TV" || out[1] != "mute" {
		t.Errorf("Expected TV mute, got %v", out)
	}
	if out := f.mustExec(t, "remote lookup nec1 D=1 F=3"); out[0] != NotFound {
		t.Errorf("Expected not found, got %v", out)
	}

	if _, err := f.exec(t, "remote send radio power"); !errors.Is(err, remote.ErrNoSuchRemote) {
		t.Errorf("Expected no such remote, got %v", err)
	}
	if _, err := f.exec(t, "remote send tv eject"); !errors.Is(err, remote.ErrNoSuchCommand) {
		t.Errorf("Expected no such command, got %v", err)
	}
	if _, err := f.exec(t, "remote send tv power zero"); !errors.Is(err, command.ErrInvalidArgument) {
		t.Errorf("Expected invalid count, got %v", err)
	}
}

func TestRendererModule(t *testing.T) {
	f := newFixture(t)
	if out := f.mustExec(t, "protocols"); len(out) != 1 || out[0] != "nec1" {
		t.Errorf("Expected [nec1], got %v", out)
	}
}
