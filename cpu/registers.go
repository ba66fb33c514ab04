package cpu

import "github.com/tholstrup/gbacore/regs"

// bank indexes the per-mode register banks. Every mode except FIQ only
// banks r13 (SP) and r14 (LR); FIQ additionally banks r8-r12.
type bank int

const (
	bankUser bank = iota // also System
	bankFIQ
	bankSupervisor
	bankAbort
	bankIRQ
	bankUndefined
	bankCount
)

func bankFor(m regs.Mode) bank {
	switch m {
	case regs.ModeFIQ:
		return bankFIQ
	case regs.ModeSupervisor:
		return bankSupervisor
	case regs.ModeAbort:
		return bankAbort
	case regs.ModeIRQ:
		return bankIRQ
	case regs.ModeUndefined:
		return bankUndefined
	default: // User, System
		return bankUser
	}
}

// Registers holds the ARM7TDMI's visible register file plus every banked
// shadow register and status register.
//
// r[15] is always stored pipeline-adjusted: PC() returns instr_address+8
// in ARM state or instr_address+4 in Thumb state. Centralizing the
// convention here is what spec.md's Design Notes ask for, instead of
// scattering "-4"/"-8" arithmetic at every use site.
type Registers struct {
	r [16]uint32

	fiqR8_12 [5]uint32 // banked r8-r12, FIQ only
	usrR8_12 [5]uint32 // shared r8-r12 for every other mode

	bankedSP [bankCount]uint32
	bankedLR [bankCount]uint32

	spsr [bankCount]regs.PSR // spsr[bankUser] is unused (no SPSR in User/System)

	cpsr regs.PSR
}

// Reset sets the register file to its documented power-on state (§3).
// PC is pre-baked with the ARM pipeline offset per DESIGN.md's resolution
// of the reset Open Question.
func (r *Registers) Reset(entryPoint uint32) {
	*r = Registers{}
	r.cpsr.SetMode(regs.ModeSystem)
	r.r[13] = 0x03007F00
	r.r[15] = entryPoint + 8
	for b := range r.bankedSP {
		r.bankedSP[b] = r.r[13]
	}
}

// CPSR returns the current program status register.
func (r *Registers) CPSR() regs.PSR { return r.cpsr }

// Thumb reports whether the CPU is currently in Thumb state.
func (r *Registers) Thumb() bool { return r.cpsr.Thumb() }

// pipelineOffset returns 8 in ARM state, 4 in Thumb state.
func (r *Registers) pipelineOffset() uint32 {
	if r.Thumb() {
		return 4
	}
	return 8
}

// PC returns r15 as observed from within an instruction: the address of
// the currently executing instruction plus the pipeline offset.
func (r *Registers) PC() uint32 { return r.r[15] }

// SetPC writes r15, re-baking the current pipeline offset. Used whenever
// an instruction changes control flow (branch, data-processing writing
// r15, LDM/LDR loading r15, exception entry/return).
func (r *Registers) SetPC(addr uint32) {
	if r.Thumb() {
		r.r[15] = addr&^1 + 4
	} else {
		r.r[15] = addr&^3 + 8
	}
}

// NextFetchAddress returns the address cpu.Step should fetch from: the
// pipeline-adjusted PC minus the pipeline offset.
func (r *Registers) NextFetchAddress() uint32 {
	return r.r[15] - r.pipelineOffset()
}

// AdvancePC moves r15 on by one instruction width (4 in ARM, 2 in Thumb).
// Step calls it after an instruction has executed without branching.
func (r *Registers) AdvancePC() {
	if r.Thumb() {
		r.r[15] += 2
	} else {
		r.r[15] += 4
	}
}

// Get reads general register n (0-15) as currently banked.
func (r *Registers) Get(n uint32) uint32 { return r.r[n&0xF] }

// Set writes general register n (0-15). Writing r15 does NOT re-bake the
// pipeline offset; callers that intend a branch must use SetPC instead.
func (r *Registers) Set(n uint32, value uint32) { r.r[n&0xF] = value }

// SetMode switches CPSR's mode field, swapping in the new mode's banked
// r13/r14 (and r8-r12 for FIQ) and saving the outgoing mode's bank.
func (r *Registers) SetMode(newMode regs.Mode) {
	oldBank := bankFor(r.cpsr.Mode())
	newBank := bankFor(newMode)

	r.bankedSP[oldBank] = r.r[13]
	r.bankedLR[oldBank] = r.r[14]
	if oldBank == bankFIQ {
		copy(r.fiqR8_12[:], r.r[8:13])
	} else {
		copy(r.usrR8_12[:], r.r[8:13])
	}

	r.cpsr.SetMode(newMode)

	r.r[13] = r.bankedSP[newBank]
	r.r[14] = r.bankedLR[newBank]
	if newBank == bankFIQ {
		copy(r.r[8:13], r.fiqR8_12[:])
	} else {
		copy(r.r[8:13], r.usrR8_12[:])
	}
}

// SetCPSR replaces the full CPSR, including the mode field (performing the
// same bank swap as SetMode when the mode changes). Used by MSR and
// exception return.
func (r *Registers) SetCPSR(value regs.PSR) {
	if value.Mode() != r.cpsr.Mode() {
		r.SetMode(value.Mode())
	}
	// Preserve the freshly-banked GPRs; only the flag/control bits and mode
	// (already applied) come from value.
	mode := r.cpsr.Mode()
	r.cpsr = value
	r.cpsr.SetMode(mode)
}

// SPSR returns the saved PSR for the current mode. Returns the CPSR itself
// in User/System mode, where there is no SPSR (callers should not rely on
// writing it in that case).
func (r *Registers) SPSR() regs.PSR {
	b := bankFor(r.cpsr.Mode())
	if b == bankUser {
		return r.cpsr
	}
	return r.spsr[b]
}

// SetSPSR writes the saved PSR for the current mode.
func (r *Registers) SetSPSR(value regs.PSR) {
	b := bankFor(r.cpsr.Mode())
	if b == bankUser {
		return
	}
	r.spsr[b] = value
}

// EnterException switches to newMode, disables IRQ, saves CPSR to the new
// mode's SPSR, and returns the old CPSR (for callers that also need to
// clear Thumb or otherwise adjust state).
func (r *Registers) EnterException(newMode regs.Mode) regs.PSR {
	old := r.cpsr
	r.SetMode(newMode)
	r.SetSPSR(old)
	r.cpsr.SetIRQDisabled(true)
	return old
}
