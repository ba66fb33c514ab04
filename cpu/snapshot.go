package cpu

import "github.com/tholstrup/gbacore/regs"

// Snapshot is the full, serializable CPU state, used by the savestate
// package (§6's "cpu: full_state" save-state field).
type Snapshot struct {
	R          [16]uint32
	FIQBank    [5]uint32
	UserBank   [5]uint32
	BankedSP   [bankCount]uint32
	BankedLR   [bankCount]uint32
	SPSR       [bankCount]uint32
	CPSR       uint32
	Cycles     uint64
	Halted     bool
	EntryPoint uint32
}

// Snapshot captures the CPU's complete state.
func (c *CPU) Snapshot() Snapshot {
	var s Snapshot
	s.R = c.regs.r
	s.FIQBank = c.regs.fiqR8_12
	s.UserBank = c.regs.usrR8_12
	s.BankedSP = c.regs.bankedSP
	s.BankedLR = c.regs.bankedLR
	for i, v := range c.regs.spsr {
		s.SPSR[i] = uint32(v)
	}
	s.CPSR = uint32(c.regs.cpsr)
	s.Cycles = c.cycles
	s.Halted = c.halted
	s.EntryPoint = c.entryPoint
	return s
}

// Restore replaces the CPU's state with a previously captured Snapshot.
func (c *CPU) Restore(s Snapshot) {
	c.regs.r = s.R
	c.regs.fiqR8_12 = s.FIQBank
	c.regs.usrR8_12 = s.UserBank
	c.regs.bankedSP = s.BankedSP
	c.regs.bankedLR = s.BankedLR
	for i, v := range s.SPSR {
		c.regs.spsr[i] = regs.PSR(v)
	}
	c.regs.cpsr = regs.PSR(s.CPSR)
	c.cycles = s.Cycles
	c.halted = s.Halted
	c.entryPoint = s.EntryPoint
}
