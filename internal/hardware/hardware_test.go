package hardware_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/girs-server/girsd/internal/hardware"
	"github.com/girs-server/girsd/internal/hardware/loopback"
)

type versionOnly struct{ open bool }

func (v *versionOnly) Open(context.Context) error {
	v.open = true
	return nil
}

func (v *versionOnly) Close() error {
	v.open = false
	return nil
}

func (v *versionOnly) IsValid() bool { return v.open }

func (v *versionOnly) Version() (string, error) { return "v0", nil }

func TestRegistry(t *testing.T) {
	r := hardware.NewRegistry()
	loopback.Register(r)

	hw, err := r.New("LoopBack", []string{"a", "b"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	lister, err := hardware.As[hardware.TransmitterLister](hw, "transmitters")
	if err != nil {
		t.Fatalf("Expected lister capability, got %v", err)
	}
	names, _ := lister.Transmitters()
	if len(names) != 2 || names[0] != "a" {
		t.Errorf("Expected transmitters [a b], got %v", names)
	}

	if _, err := r.New("girs", nil); !errors.Is(err, hardware.ErrUnknownType) {
		t.Errorf("Expected unknown type, got %v", err)
	}
	if types := r.Types(); len(types) != 1 || types[0] != "loopback" {
		t.Errorf("Expected [loopback], got %v", types)
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := hardware.NewRegistry()
	loopback.Register(r)
	defer func() {
		if recover() == nil {
			t.Error("Expected duplicate registration to panic")
		}
	}()
	loopback.Register(r)
}

func TestAsIncompatible(t *testing.T) {
	_, err := hardware.As[hardware.Capturer](&versionOnly{}, "capture")
	if !errors.Is(err, hardware.ErrIncompatibleHardware) {
		t.Errorf("Expected incompatible hardware, got %v", err)
	}
	if err.Error() != "incompatible hardware: capture" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestSet(t *testing.T) {
	s := hardware.NewSet()
	if _, _, err := s.Current(); !errors.Is(err, hardware.ErrNoHardware) {
		t.Errorf("Expected no hardware, got %v", err)
	}

	s.Add("living", loopback.New("living"))
	s.Add("bedroom", loopback.New("bedroom"))
	s.Add("bed", &versionOnly{})

	name, _, err := s.Current()
	if err != nil || name != "living" {
		t.Errorf("Expected first device current, got %q, %v", name, err)
	}

	if name, err := s.Select("bed"); err != nil || name != "bed" {
		t.Errorf("Expected exact name to win, got %q, %v", name, err)
	}
	if name, err := s.Select("bedr"); err != nil || name != "bedroom" {
		t.Errorf("Expected bedroom, got %q, %v", name, err)
	}
	if _, err := s.Select("kitchen"); !errors.Is(err, hardware.ErrNoSuchHardware) {
		t.Errorf("Expected no such hardware, got %v", err)
	}
	_, err = s.Select("b")
	if !errors.Is(err, hardware.ErrAmbiguousHardware) || errors.Is(err, hardware.ErrNoSuchHardware) {
		t.Errorf("Expected ambiguous hardware, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "[bed bedroom]") {
		t.Errorf("Expected candidates in message, got %v", err)
	}
	if name, _, _ := s.Current(); name != "bedroom" {
		t.Errorf("Expected failed select to keep bedroom, got %q", name)
	}

	if err := s.OpenAll(context.Background()); err != nil {
		t.Fatalf("OpenAll failed: %v", err)
	}
	_, hw, _ := s.Current()
	if !hw.IsValid() {
		t.Error("Expected current device open")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if hw.IsValid() {
		t.Error("Expected device closed")
	}

	names := s.Names()
	if len(names) != 3 || names[0] != "bed" || names[2] != "living" {
		t.Errorf("Expected sorted names, got %v", names)
	}
}
