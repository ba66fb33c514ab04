package cpu

import (
	"github.com/tholstrup/gbacore/addr"
	"github.com/tholstrup/gbacore/regs"
)

// executeARM decodes and executes a single 32-bit ARM instruction, per the
// encoding groups enumerated in spec.md §4.4. Decoding is a cascade of bit
// tests rather than a dense table (the "huge switch" alternative the
// spec's Design Notes call out) — this mirrors the teacher's preference
// for readable control flow over lookup tables.
func (c *CPU) executeARM(opcode uint32) int {
	cond := opcode >> 28
	if !conditionPassed(cond, c.regs.CPSR()) {
		return 1
	}

	switch {
	case opcode&0x0FFFFFF0 == 0x012FFF10:
		return c.armBX(opcode)
	case opcode&0x0F000000 == 0x0F000000:
		return c.armSWI(opcode)
	case opcode&0x0E000000 == 0x0A000000:
		return c.armBranch(opcode)
	case opcode&0x0E000000 == 0x08000000:
		return c.armBlockTransfer(opcode)
	case opcode&0x0FC000F0 == 0x00000090:
		return c.armMultiply(opcode)
	case opcode&0x0FB00FF0 == 0x01000090:
		return c.armSwap(opcode)
	case opcode&0x0E000090 == 0x00000090 && opcode&0x00000060 != 0:
		return c.armHalfwordTransfer(opcode)
	case opcode&0x0FBF0FFF == 0x010F0000:
		return c.armMRS(opcode)
	case opcode&0x0FB0FFF0 == 0x0120F000 || opcode&0x0FB0F000 == 0x0320F000:
		return c.armMSR(opcode)
	case opcode&0x0C000000 == 0x00000000:
		return c.armDataProcessing(opcode)
	case opcode&0x0E000000 == 0x06000000 && opcode&0x10 != 0:
		// Undefined instruction space (bits 27-25 = 011, bit4 = 1): a
		// strict subset of the single-data-transfer mask below, so it
		// must be tested first or armSingleTransfer would swallow it.
		c.HandleUndefinedEntry(addr.ROMBase, addr.ROMBase+addr.ROMMax)
		return 1
	case opcode&0x0C000000 == 0x04000000:
		return c.armSingleTransfer(opcode)
	case opcode&0x0C000000 == 0x0C000000:
		// Coprocessor data transfer / data op / register transfer: the GBA
		// has no coprocessor, so these are no-ops.
		return 1
	}
	c.HandleUndefinedEntry(addr.ROMBase, addr.ROMBase+addr.ROMMax)
	return 1
}

// shiftOperand2 resolves a data-processing instruction's second operand
// (immediate rotate or register shift) and its shifter carry-out.
func (c *CPU) shiftOperand2(opcode uint32) (uint32, bool) {
	cpsr := c.regs.CPSR()
	if opcode&0x02000000 != 0 {
		imm := opcode & 0xFF
		rot := (opcode >> 8) & 0xF * 2
		if rot == 0 {
			return imm, cpsr.C()
		}
		return shiftRORFn(imm, rot, cpsr.C())
	}

	rm := c.regs.Get(opcode & 0xF)
	st := shiftType((opcode >> 5) & 0x3)

	if opcode&0x10 != 0 {
		if opcode&0xF == 15 {
			rm += 4 // register-specified shift reads Rm==PC as PC+12
		}
		rs := c.regs.Get((opcode >> 8) & 0xF)
		amount := rs & 0xFF
		if amount == 0 {
			return rm, cpsr.C()
		}
		if amount >= 32 {
			switch st {
			case shiftLSL:
				if amount == 32 {
					return 0, rm&1 != 0
				}
				return 0, false
			case shiftLSR:
				if amount == 32 {
					return 0, rm&0x80000000 != 0
				}
				return 0, false
			case shiftASR:
				if rm&0x80000000 != 0 {
					return 0xFFFFFFFF, true
				}
				return 0, false
			default: // ROR
				amount &= 31
				if amount == 0 {
					return rm, rm&0x80000000 != 0
				}
			}
		}
		return barrelShift(st, rm, amount, false, cpsr.C())
	}

	amount := (opcode >> 7) & 0x1F
	return barrelShift(st, rm, amount, true, cpsr.C())
}

func (c *CPU) armDataProcessing(opcode uint32) int {
	op := (opcode >> 21) & 0xF
	sBit := opcode&0x00100000 != 0
	rn := (opcode >> 16) & 0xF
	rd := (opcode >> 12) & 0xF

	op2, shiftCarry := c.shiftOperand2(opcode)
	a := c.regs.Get(rn)

	var result uint32
	var carry, overflow bool
	writesResult := true

	switch op {
	case 0x0: // AND
		result = a & op2
		carry = shiftCarry
	case 0x1: // EOR
		result = a ^ op2
		carry = shiftCarry
	case 0x2: // SUB
		result = a - op2
		carry = a >= op2
		overflow = subOverflow(a, op2, result)
	case 0x3: // RSB
		result = op2 - a
		carry = op2 >= a
		overflow = subOverflow(op2, a, result)
	case 0x4: // ADD
		result = a + op2
		carry = result < a
		overflow = addOverflow(a, op2, result)
	case 0x5: // ADC
		cin := boolToU32(c.regs.CPSR().C())
		result = a + op2 + cin
		carry = uint64(a)+uint64(op2)+uint64(cin) > 0xFFFFFFFF
		overflow = addOverflow(a, op2+cin, result)
	case 0x6: // SBC
		cin := boolToU32(c.regs.CPSR().C())
		borrow := uint64(a) - uint64(op2) - uint64(1-cin)
		result = uint32(borrow)
		carry = uint64(a) >= uint64(op2)+uint64(1-cin)
		overflow = subOverflow(a, op2, result)
	case 0x7: // RSC
		cin := boolToU32(c.regs.CPSR().C())
		borrow := uint64(op2) - uint64(a) - uint64(1-cin)
		result = uint32(borrow)
		carry = uint64(op2) >= uint64(a)+uint64(1-cin)
		overflow = subOverflow(op2, a, result)
	case 0x8: // TST
		result = a & op2
		carry = shiftCarry
		writesResult = false
	case 0x9: // TEQ
		result = a ^ op2
		carry = shiftCarry
		writesResult = false
	case 0xA: // CMP
		result = a - op2
		carry = a >= op2
		overflow = subOverflow(a, op2, result)
		writesResult = false
	case 0xB: // CMN
		result = a + op2
		carry = result < a
		overflow = addOverflow(a, op2, result)
		writesResult = false
	case 0xC: // ORR
		result = a | op2
		carry = shiftCarry
	case 0xD: // MOV
		result = op2
		carry = shiftCarry
	case 0xE: // BIC
		result = a &^ op2
		carry = shiftCarry
	default: // MVN
		result = ^op2
		carry = shiftCarry
	}

	if writesResult {
		if rd == 15 {
			if sBit {
				c.regs.SetCPSR(c.regs.SPSR())
				c.branchTo(result)
			} else {
				c.regs.cpsr.SetThumb(result&1 != 0)
				c.branchTo(result)
			}
			return 3
		}
		c.regs.Set(rd, result)
	}

	if sBit && rd != 15 {
		c.regs.cpsr.SetNZ(result)
		c.regs.cpsr.SetC(carry)
		if op == 0x2 || op == 0x3 || op == 0x4 || op == 0x5 || op == 0x6 || op == 0x7 || op == 0xA || op == 0xB {
			c.regs.cpsr.SetV(overflow)
		}
	}
	return 1
}

func addOverflow(a, b, result uint32) bool {
	return (a^result)&(b^result)&0x80000000 != 0
}

func subOverflow(a, b, result uint32) bool {
	return (a^b)&(a^result)&0x80000000 != 0
}

func (c *CPU) armMRS(opcode uint32) int {
	rd := (opcode >> 12) & 0xF
	usesSPSR := opcode&0x00400000 != 0
	if usesSPSR {
		c.regs.Set(rd, uint32(c.regs.SPSR()))
	} else {
		c.regs.Set(rd, uint32(c.regs.CPSR()))
	}
	return 1
}

// msrFieldMask expands MSR's 4-bit field-select (bits 16-19 of the
// opcode: c/x/s/f) into the corresponding byte-lane write mask, per
// spec.md §4.4's "4-bit field mask" requirement (the status/extension
// lanes are unused on the ARM7TDMI but still gated correctly).
func msrFieldMask(opcode uint32) uint32 {
	fields := (opcode >> 16) & 0xF
	var mask uint32
	if fields&0x1 != 0 {
		mask |= 0x000000FF // control
	}
	if fields&0x2 != 0 {
		mask |= 0x0000FF00 // extension
	}
	if fields&0x4 != 0 {
		mask |= 0x00FF0000 // status
	}
	if fields&0x8 != 0 {
		mask |= 0xFF000000 // flags
	}
	return mask
}

func (c *CPU) armMSR(opcode uint32) int {
	usesSPSR := opcode&0x00400000 != 0
	var value uint32
	if opcode&0x02000000 != 0 {
		imm := opcode & 0xFF
		rot := (opcode >> 8) & 0xF * 2
		value, _ = shiftRORFn(imm, rot, false)
	} else {
		value = c.regs.Get(opcode & 0xF)
	}

	mask := msrFieldMask(opcode)

	if usesSPSR {
		cur := uint32(c.regs.SPSR())
		c.regs.SetSPSR(regs.PSR((cur &^ mask) | (value & mask)))
		return 1
	}

	cur := uint32(c.regs.CPSR())
	next := regs.PSR((cur &^ mask) | (value & mask))
	// Writing the control byte can corrupt the mode field with an
	// encoding ARM7TDMI never defines; §7 wants that snapped to System
	// rather than left to decode as an undefined mode downstream.
	if mask&0xFF != 0 && !next.Mode().IsValid() {
		next.SetMode(regs.ModeSystem)
	}
	c.regs.SetCPSR(next)
	return 1
}

func (c *CPU) armMultiply(opcode uint32) int {
	accumulate := opcode&0x00200000 != 0
	sBit := opcode&0x00100000 != 0
	rd := (opcode >> 16) & 0xF
	rn := (opcode >> 12) & 0xF
	rs := (opcode >> 8) & 0xF
	rm := opcode & 0xF

	result := c.regs.Get(rm) * c.regs.Get(rs)
	if accumulate {
		result += c.regs.Get(rn)
	}
	c.regs.Set(rd, result)
	if sBit {
		c.regs.cpsr.SetNZ(result)
	}
	return 2
}

func (c *CPU) armSwap(opcode uint32) int {
	byteSwap := opcode&0x00400000 != 0
	rn := (opcode >> 16) & 0xF
	rd := (opcode >> 12) & 0xF
	rm := opcode & 0xF

	addr := c.regs.Get(rn)
	if byteSwap {
		old := c.mem.Read8(addr)
		c.mem.Write8(addr, uint8(c.regs.Get(rm)))
		c.regs.Set(rd, uint32(old))
	} else {
		old := c.mem.Read32(addr)
		c.mem.Write32(addr, c.regs.Get(rm))
		c.regs.Set(rd, old)
	}
	return 3
}

func (c *CPU) armSingleTransfer(opcode uint32) int {
	preIndex := opcode&0x01000000 != 0
	up := opcode&0x00800000 != 0
	byteAccess := opcode&0x00400000 != 0
	writeback := opcode&0x00200000 != 0
	load := opcode&0x00100000 != 0
	rn := (opcode >> 16) & 0xF
	rd := (opcode >> 12) & 0xF

	var offset uint32
	if opcode&0x02000000 != 0 {
		// Register offset: Rm shifted by an immediate amount (single data
		// transfer never takes a register-specified shift amount here,
		// unlike data processing's operand2 — bit4 distinguishes this
		// encoding from halfword/signed transfer).
		rm := c.regs.Get(opcode & 0xF)
		st := shiftType((opcode >> 5) & 0x3)
		amount := (opcode >> 7) & 0x1F
		offset, _ = barrelShift(st, rm, amount, true, c.regs.CPSR().C())
	} else {
		offset = opcode & 0xFFF
	}

	base := c.regs.Get(rn)
	addr := base
	if preIndex {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	if load {
		var value uint32
		if byteAccess {
			value = uint32(c.mem.Read8(addr))
		} else {
			value = c.mem.Read32(addr)
		}
		if rd == 15 {
			c.branchTo(value)
		} else {
			c.regs.Set(rd, value)
		}
	} else {
		value := c.regs.Get(rd)
		if rd == 15 {
			value += 4 // STR PC stores PC+12; Get(15) is already PC (instr+8)
		}
		if byteAccess {
			c.mem.Write8(addr, uint8(value))
		} else {
			c.mem.Write32(addr, value)
		}
	}

	if !preIndex {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
		c.regs.Set(rn, addr)
	} else if writeback {
		c.regs.Set(rn, addr)
	}
	return 3
}

func (c *CPU) armHalfwordTransfer(opcode uint32) int {
	preIndex := opcode&0x01000000 != 0
	up := opcode&0x00800000 != 0
	immediate := opcode&0x00400000 != 0
	writeback := opcode&0x00200000 != 0
	load := opcode&0x00100000 != 0
	rn := (opcode >> 16) & 0xF
	rd := (opcode >> 12) & 0xF
	sh := (opcode >> 5) & 0x3

	var offset uint32
	if immediate {
		offset = (opcode>>4)&0xF0 | opcode&0xF
	} else {
		offset = c.regs.Get(opcode & 0xF)
	}

	base := c.regs.Get(rn)
	addr := base
	if preIndex {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	if load {
		var value uint32
		switch sh {
		case 0x1: // unsigned halfword
			value = uint32(c.mem.Read16(addr))
		case 0x2: // signed byte
			value = uint32(int32(int8(c.mem.Read8(addr))))
		default: // 0x3 signed halfword
			value = uint32(int32(int16(c.mem.Read16(addr))))
		}
		c.regs.Set(rd, value)
	} else {
		c.mem.Write16(addr, uint16(c.regs.Get(rd)))
	}

	if !preIndex {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
		c.regs.Set(rn, addr)
	} else if writeback {
		c.regs.Set(rn, addr)
	}
	return 3
}

func (c *CPU) armBlockTransfer(opcode uint32) int {
	preIndex := opcode&0x01000000 != 0
	up := opcode&0x00800000 != 0
	sBit := opcode&0x00400000 != 0
	writeback := opcode&0x00200000 != 0
	load := opcode&0x00100000 != 0
	rn := (opcode >> 16) & 0xF
	list := opcode & 0xFFFF

	count := 0
	for i := 0; i < 16; i++ {
		if list&(1<<uint(i)) != 0 {
			count++
		}
	}
	if count == 0 {
		count = 16 // empty-list edge case, still costs a full transfer
	}

	// Registers always transfer in ascending register-number order with
	// the lowest-numbered register at the lowest touched address; for a
	// descending (up=false) transfer that means walking the register list
	// highest-to-lowest while the address counts down.
	order := make([]int, 0, 16)
	for i := 0; i < 16; i++ {
		if list&(1<<uint(i)) != 0 {
			order = append(order, i)
		}
	}
	if !up {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	cur := c.regs.Get(rn)
	transferAt := func() uint32 {
		if preIndex {
			if up {
				cur += 4
			} else {
				cur -= 4
			}
			return cur
		}
		addr := cur
		if up {
			cur += 4
		} else {
			cur -= 4
		}
		return addr
	}

	for _, reg := range order {
		a := transferAt()
		if load {
			value := c.mem.Read32(a)
			if reg == 15 {
				if sBit {
					c.regs.SetCPSR(c.regs.SPSR())
				}
				c.branchTo(value)
			} else {
				c.regs.Set(uint32(reg), value)
			}
		} else {
			value := c.regs.Get(uint32(reg))
			if reg == 15 {
				value += 4
			}
			c.mem.Write32(a, value)
		}
	}

	if writeback {
		c.regs.Set(rn, cur)
	}
	return count + 2
}

func (c *CPU) armBranch(opcode uint32) int {
	link := opcode&0x01000000 != 0
	offset := int32(opcode&0x00FFFFFF) << 8 >> 6 // sign-extend 24-bit, *4

	if link {
		c.regs.Set(14, c.regs.PC()-4)
	}
	target := uint32(int32(c.regs.PC()) + offset)
	c.branchTo(target)
	return 3
}

func (c *CPU) armBX(opcode uint32) int {
	rm := opcode & 0xF
	target := c.regs.Get(rm)
	c.regs.cpsr.SetThumb(target&1 != 0)
	c.branchTo(target)
	return 3
}

func (c *CPU) armSWI(opcode uint32) int {
	comment := opcode & 0x00FFFFFF
	if handled := c.dispatchSWI(uint8(comment>>16), comment); handled {
		return 3
	}

	lr := c.regs.PC() - 4
	c.regs.EnterException(regs.ModeSupervisor)
	c.regs.cpsr.SetThumb(false)
	c.regs.Set(14, lr)
	c.branchTo(0x08)
	return 3
}
