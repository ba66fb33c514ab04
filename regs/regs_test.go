package regs

import "testing"

func TestModeValidity(t *testing.T) {
	valid := []Mode{ModeUser, ModeFIQ, ModeIRQ, ModeSupervisor, ModeAbort, ModeUndefined, ModeSystem}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("Mode(%#x).IsValid() = false; want true", uint32(m))
		}
	}
	if Mode(0x07).IsValid() {
		t.Error("Mode(0x07).IsValid() = true; want false")
	}
}

func TestPSRModeRoundTrip(t *testing.T) {
	var p PSR
	p.SetN(true)
	p.SetMode(ModeIRQ)
	if p.Mode() != ModeIRQ {
		t.Errorf("Mode() = %#x; want IRQ", uint32(p.Mode()))
	}
	if !p.N() {
		t.Error("N flag lost after SetMode")
	}
}

func TestPSRThumbAndIRQBits(t *testing.T) {
	var p PSR
	p.SetThumb(true)
	p.SetIRQDisabled(true)
	if !p.Thumb() || !p.IRQDisabled() {
		t.Fatalf("expected Thumb and IRQDisabled set, got %#x", uint32(p))
	}
	p.SetThumb(false)
	if p.Thumb() {
		t.Error("Thumb bit still set after SetThumb(false)")
	}
	if !p.IRQDisabled() {
		t.Error("clearing Thumb bit should not clear I bit")
	}
}

func TestSetNZ(t *testing.T) {
	var p PSR
	p.SetNZ(0)
	if !p.Z() || p.N() {
		t.Errorf("SetNZ(0): Z=%v N=%v; want Z=true N=false", p.Z(), p.N())
	}
	p.SetNZ(0x80000000)
	if p.Z() || !p.N() {
		t.Errorf("SetNZ(0x80000000): Z=%v N=%v; want Z=false N=true", p.Z(), p.N())
	}
}
