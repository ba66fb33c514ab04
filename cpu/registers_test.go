package cpu

import (
	"testing"

	"github.com/tholstrup/gbacore/regs"
)

func TestRegistersResetState(t *testing.T) {
	var r Registers
	r.Reset(0x08000000)

	if got, want := r.PC(), uint32(0x08000000+8); got != want {
		t.Errorf("PC() after reset = %#x; want %#x", got, want)
	}
	if r.CPSR().Mode() != regs.ModeSystem {
		t.Errorf("mode after reset = %#x; want System", uint32(r.CPSR().Mode()))
	}
	if r.Thumb() {
		t.Error("reset should enter ARM state, not Thumb")
	}
	if got := r.Get(13); got != 0x03007F00 {
		t.Errorf("r13 after reset = %#x; want 0x03007F00", got)
	}
}

func TestPCPipelineRoundTrip(t *testing.T) {
	var r Registers
	r.Reset(0)

	r.SetPC(0x1000)
	if got := r.NextFetchAddress(); got != 0x1000 {
		t.Errorf("NextFetchAddress() = %#x; want 0x1000", got)
	}
	if got := r.PC(); got != 0x1008 {
		t.Errorf("PC() in ARM state = %#x; want 0x1008", got)
	}

	r.cpsr.SetThumb(true)
	r.SetPC(0x2000)
	if got := r.NextFetchAddress(); got != 0x2000 {
		t.Errorf("NextFetchAddress() in Thumb = %#x; want 0x2000", got)
	}
	if got := r.PC(); got != 0x2004 {
		t.Errorf("PC() in Thumb state = %#x; want 0x2004", got)
	}
}

func TestAdvancePCStepSize(t *testing.T) {
	var r Registers
	r.Reset(0)
	before := r.PC()
	r.AdvancePC()
	if r.PC()-before != 4 {
		t.Errorf("ARM AdvancePC step = %d; want 4", r.PC()-before)
	}

	r.cpsr.SetThumb(true)
	before = r.PC()
	r.AdvancePC()
	if r.PC()-before != 2 {
		t.Errorf("Thumb AdvancePC step = %d; want 2", r.PC()-before)
	}
}

func TestBankIsolationAcrossModeSwitch(t *testing.T) {
	var r Registers
	r.Reset(0)

	r.Set(13, 0x03007F00)
	r.Set(14, 0x11111111)

	r.SetMode(regs.ModeIRQ)
	r.Set(13, 0x03007FA0)
	r.Set(14, 0x22222222)

	r.SetMode(regs.ModeFIQ)
	r.Set(8, 0xAAAAAAAA)
	r.Set(13, 0x03007FE0)
	r.Set(14, 0x33333333)

	r.SetMode(regs.ModeSystem)
	if got := r.Get(13); got != 0x03007F00 {
		t.Errorf("System r13 clobbered: got %#x", got)
	}
	if got := r.Get(14); got != 0x11111111 {
		t.Errorf("System r14 clobbered: got %#x", got)
	}
	if got := r.Get(8); got != 0 {
		t.Errorf("System r8 should be untouched by FIQ bank, got %#x", got)
	}

	r.SetMode(regs.ModeIRQ)
	if got := r.Get(13); got != 0x03007FA0 {
		t.Errorf("IRQ r13 = %#x; want 0x03007FA0", got)
	}
	if got := r.Get(14); got != 0x22222222 {
		t.Errorf("IRQ r14 = %#x; want 0x22222222", got)
	}

	r.SetMode(regs.ModeFIQ)
	if got := r.Get(8); got != 0xAAAAAAAA {
		t.Errorf("FIQ r8 = %#x; want 0xAAAAAAAA", got)
	}
	if got := r.Get(13); got != 0x03007FE0 {
		t.Errorf("FIQ r13 = %#x; want 0x03007FE0", got)
	}
}

func TestSPSRSaveRestoreOnException(t *testing.T) {
	var r Registers
	r.Reset(0)
	r.cpsr.SetN(true)
	r.cpsr.SetZ(true)

	old := r.EnterException(regs.ModeIRQ)
	if old.Mode() != regs.ModeSystem {
		t.Errorf("EnterException returned mode %#x; want System", uint32(old.Mode()))
	}
	if !r.CPSR().IRQDisabled() {
		t.Error("EnterException should set CPSR.I")
	}
	if r.SPSR() != old {
		t.Errorf("SPSR_irq = %#x; want saved CPSR %#x", uint32(r.SPSR()), uint32(old))
	}

	r.SetCPSR(r.SPSR())
	if r.CPSR().Mode() != regs.ModeSystem {
		t.Errorf("mode after restore = %#x; want System", uint32(r.CPSR().Mode()))
	}
	if !r.CPSR().N() || !r.CPSR().Z() {
		t.Error("flags lost across exception entry/return")
	}
}

func TestSPSRNoopInUserMode(t *testing.T) {
	var r Registers
	r.Reset(0)
	r.SetMode(regs.ModeUser)
	before := r.SPSR()
	r.SetSPSR(0xFFFFFFFF)
	if r.SPSR() != before {
		t.Error("SetSPSR should be a no-op in User mode")
	}
}
