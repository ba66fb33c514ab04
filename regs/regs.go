// Package regs provides typed register wrappers for the CPU, generalizing
// the Game Boy teacher's 8/16-bit Register types to the ARM7TDMI's 32-bit
// general-purpose registers and its CPSR/SPSR status words.
package regs

// Mode is the 5-bit CPSR mode field.
type Mode uint32

const (
	ModeUser       Mode = 0x10
	ModeFIQ        Mode = 0x11
	ModeIRQ        Mode = 0x12
	ModeSupervisor Mode = 0x13
	ModeAbort      Mode = 0x17
	ModeUndefined  Mode = 0x1B
	ModeSystem     Mode = 0x1F
)

// IsValid reports whether m is one of the seven defined ARM7TDMI modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeUser, ModeFIQ, ModeIRQ, ModeSupervisor, ModeAbort, ModeUndefined, ModeSystem:
		return true
	}
	return false
}

// IsPrivileged reports whether m runs with full register-bank access
// (everything except User mode).
func (m Mode) IsPrivileged() bool {
	return m != ModeUser
}

// PSR flag and field bit positions within CPSR/SPSR.
const (
	FlagV uint32 = 1 << 28
	FlagC uint32 = 1 << 29
	FlagZ uint32 = 1 << 30
	FlagN uint32 = 1 << 31

	FlagT uint32 = 1 << 5
	FlagI uint32 = 1 << 7
	FlagF uint32 = 1 << 6

	modeMask uint32 = 0x1F
)

// PSR is a 32-bit program status register (CPSR or SPSR).
type PSR uint32

// Mode returns the 5-bit mode field.
func (p PSR) Mode() Mode { return Mode(uint32(p) & modeMask) }

// SetMode replaces the mode field, leaving flags untouched.
func (p *PSR) SetMode(m Mode) {
	*p = PSR((uint32(*p) &^ modeMask) | uint32(m))
}

// Thumb reports the T bit.
func (p PSR) Thumb() bool { return uint32(p)&FlagT != 0 }

// SetThumb writes the T bit.
func (p *PSR) SetThumb(on bool) {
	if on {
		*p |= PSR(FlagT)
	} else {
		*p &^= PSR(FlagT)
	}
}

// IRQDisabled reports the I bit.
func (p PSR) IRQDisabled() bool { return uint32(p)&FlagI != 0 }

// SetIRQDisabled writes the I bit.
func (p *PSR) SetIRQDisabled(on bool) {
	if on {
		*p |= PSR(FlagI)
	} else {
		*p &^= PSR(FlagI)
	}
}

// N/Z/C/V accessors for the condition flags.
func (p PSR) N() bool { return uint32(p)&FlagN != 0 }
func (p PSR) Z() bool { return uint32(p)&FlagZ != 0 }
func (p PSR) C() bool { return uint32(p)&FlagC != 0 }
func (p PSR) V() bool { return uint32(p)&FlagV != 0 }

func (p *PSR) SetN(on bool) { p.setFlag(FlagN, on) }
func (p *PSR) SetZ(on bool) { p.setFlag(FlagZ, on) }
func (p *PSR) SetC(on bool) { p.setFlag(FlagC, on) }
func (p *PSR) SetV(on bool) { p.setFlag(FlagV, on) }

func (p *PSR) setFlag(mask uint32, on bool) {
	if on {
		*p |= PSR(mask)
	} else {
		*p &^= PSR(mask)
	}
}

// SetNZ sets N and Z from a 32-bit result, the common case for logical and
// data-processing instructions.
func (p *PSR) SetNZ(result uint32) {
	p.SetN(result&0x80000000 != 0)
	p.SetZ(result == 0)
}
