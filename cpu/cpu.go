// Package cpu implements the ARM7TDMI interpreter: dual ARM/Thumb decoding
// and execution, the barrel shifter, banked registers/CPSR/SPSR, and the
// HLE BIOS SWI table described in spec.md §4.4.
package cpu

import "github.com/tholstrup/gbacore/regs"

// Memory is the subset of the bus the CPU needs: byte/halfword/word
// accesses. Kept as a narrow interface (rather than importing bus
// directly) so bus -> cpu stays a one-way dependency, the same pattern
// the teacher uses for its serial port collaborator.
type Memory interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
}

// CPU is the ARM7TDMI interpreter's full state (§3: "CPU state").
type CPU struct {
	regs       Registers
	mem        Memory
	cycles     uint64
	halted     bool
	lastPC     uint32 // for diagnostics / disassembly overlay
	trace      *Trace
	branched   bool   // set by branchTo; tells Step not to also AdvancePC
	entryPoint uint32 // ROM entry point, for SoftReset and PC self-correction
}

// New creates a CPU wired to mem, not yet reset.
func New(mem Memory) *CPU {
	return &CPU{mem: mem}
}

// Reset re-initializes register state and jumps to entryPoint, preserving
// the wired Memory (ROM is not touched here; that's the bus's job).
func (c *CPU) Reset(entryPoint uint32) {
	c.regs.Reset(entryPoint)
	c.cycles = 0
	c.halted = false
	c.entryPoint = entryPoint
}

// EntryPoint returns the ROM entry address CPU.Reset was last called with.
func (c *CPU) EntryPoint() uint32 { return c.entryPoint }

// Halted reports whether the CPU is in a HLE Halt/Stop/IntrWait state.
func (c *CPU) Halted() bool { return c.halted }

// Cycles returns the total elapsed cycle count since reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Registers exposes the register file for the bus (KEYINPUT reads don't
// need this, but debug tooling and save-state do).
func (c *CPU) Registers() *Registers { return &c.regs }

// SetTrace attaches a ring-buffer instruction trace (see cpu/trace.go);
// nil disables tracing. Nothing in this repository attaches one.
func (c *CPU) SetTrace(t *Trace) { c.trace = t }

// Step executes exactly one instruction (or, if halted, burns one idle
// cycle) and returns its approximate cycle cost per spec.md §4.4.
//
// r15 is left untouched until after the instruction has executed: every
// exec function that reads "PC" through Registers.PC sees the pipeline-
// adjusted address of the instruction currently executing, matching §3's
// invariant. Only once execution completes (and only if nothing branched)
// does Step advance r15 to prepare the next fetch; a taken branch/BL/BX/
// exception entry sets r15 itself via branchTo, which suppresses that
// trailing advance.
func (c *CPU) Step() int {
	if c.halted {
		return 1
	}

	fetchAddr := c.regs.NextFetchAddress()
	c.lastPC = fetchAddr
	c.branched = false

	var cost int
	if c.regs.Thumb() {
		opcode := c.mem.Read16(fetchAddr)
		cost = c.executeThumb(opcode, fetchAddr)
	} else {
		opcode := c.mem.Read32(fetchAddr)
		cost = c.executeARM(opcode)
	}

	if !c.branched {
		c.regs.AdvancePC()
	}

	if c.trace != nil {
		c.trace.Record(fetchAddr, cost)
	}

	c.cycles += uint64(cost)
	return cost
}

// branchTo overwrites r15 (re-baking the pipeline offset) and marks this
// Step as having branched, so Step doesn't also advance past it.
func (c *CPU) branchTo(target uint32) {
	c.regs.SetPC(target)
	c.branched = true
}

// ReleaseHalt clears the halted flag once an interrupt is pending,
// regardless of CPSR.I (real hardware releases HALT on IE&IF!=0 even with
// IME/CPSR.I masking actual entry; §5: "the halt is cleared by IRQ entry"
// is the common case, this covers the IME-masked edge case too).
func (c *CPU) ReleaseHalt(pending bool) {
	if c.halted && pending {
		c.halted = false
	}
}

// TryEnterIRQ performs IRQ entry (§4.2) if the CPU itself isn't masking
// interrupts (CPSR.I). The caller (the root frame loop) is responsible for
// only calling this when the interrupt controller's Pending() is true;
// that keeps "IE & IF & IME" logic solely in the interrupt package.
func (c *CPU) TryEnterIRQ() bool {
	if c.regs.CPSR().IRQDisabled() {
		return false
	}

	thumb := c.regs.Thumb()

	// LR_irq = PC_observed - (thumb ? 0 : 4), so that a handler returning
	// with "SUBS PC, LR, #4" (executed in ARM state) lands back on the
	// correct next instruction regardless of which state was interrupted.
	// See DESIGN.md's resolution of the source's unconditional-PC+4 bug.
	// The BIOS array holds no handler at 0x18 (bus.New fills it with 0xFF),
	// so no game IRQ handler is called from there.
	lr := c.regs.PC()
	if !thumb {
		lr -= 4
	}

	c.regs.EnterException(regs.ModeIRQ)
	c.regs.cpsr.SetThumb(false)
	c.regs.Set(14, lr)
	c.regs.SetPC(0x18)
	c.halted = false
	return true
}

// conditionPassed evaluates the 4-bit ARM condition field against CPSR.
func conditionPassed(cond uint32, cpsr regs.PSR) bool {
	n, z, c, v := cpsr.N(), cpsr.Z(), cpsr.C(), cpsr.V()
	switch cond {
	case 0x0:
		return z
	case 0x1:
		return !z
	case 0x2:
		return c
	case 0x3:
		return !c
	case 0x4:
		return n
	case 0x5:
		return !n
	case 0x6:
		return v
	case 0x7:
		return !v
	case 0x8:
		return c && !z
	case 0x9:
		return !c || z
	case 0xA:
		return n == v
	case 0xB:
		return n != v
	case 0xC:
		return !z && n == v
	case 0xD:
		return z || n != v
	case 0xE:
		return true
	default: // 0xF NV
		return false
	}
}
