package cpu

import "github.com/tholstrup/gbacore/regs"

// executeThumb decodes and executes one 16-bit Thumb instruction across the
// 19 format classes from spec.md §4.4. The two-halfword BL/BLX is handled
// by fusing on decode of the first half: when bits 15:11 == 0b11110 we
// immediately fetch and execute the second halfword ourselves rather than
// tracking a "BL pending" intermediate (both are spec-legal; this one
// keeps CPU.Step's contract of "one call, one logical instruction").
func (c *CPU) executeThumb(opcode uint16, fetchAddr uint32) int {
	switch {
	case opcode&0xF800 == 0x1800:
		return c.thumbAddSub(opcode)
	case opcode&0xE000 == 0x0000:
		return c.thumbShift(opcode)
	case opcode&0xE000 == 0x2000:
		return c.thumbImmediateOp(opcode)
	case opcode&0xFC00 == 0x4000:
		return c.thumbALU(opcode)
	case opcode&0xFC00 == 0x4400:
		return c.thumbHiRegBX(opcode)
	case opcode&0xF800 == 0x4800:
		return c.thumbPCRelLoad(opcode)
	case opcode&0xF000 == 0x5000 && opcode&0x0200 == 0:
		return c.thumbLoadStoreReg(opcode)
	case opcode&0xF000 == 0x5000 && opcode&0x0200 != 0:
		return c.thumbLoadStoreSignExt(opcode)
	case opcode&0xE000 == 0x6000:
		return c.thumbLoadStoreImm(opcode)
	case opcode&0xF000 == 0x8000:
		return c.thumbLoadStoreHalf(opcode)
	case opcode&0xF000 == 0x9000:
		return c.thumbSPRelLoadStore(opcode)
	case opcode&0xF000 == 0xA000:
		return c.thumbLoadAddress(opcode)
	case opcode&0xFF00 == 0xB000:
		return c.thumbAddOffsetSP(opcode)
	case opcode&0xF600 == 0xB400:
		return c.thumbPushPop(opcode)
	case opcode&0xF000 == 0xC000:
		return c.thumbLDMSTM(opcode)
	case opcode&0xFF00 == 0xDF00:
		return c.thumbSWI(opcode)
	case opcode&0xF000 == 0xD000:
		return c.thumbCondBranch(opcode)
	case opcode&0xF800 == 0xE000:
		return c.thumbUncondBranch(opcode)
	case opcode&0xF800 == 0xF000:
		return c.thumbBLHigh(opcode, fetchAddr)
	case opcode&0xF800 == 0xF800:
		return c.thumbBLLow(opcode, false)
	}
	return 1
}

func (c *CPU) thumbShift(opcode uint16) int {
	op := shiftType((opcode >> 11) & 0x3)
	amount := uint32((opcode >> 6) & 0x1F)
	rs := uint32((opcode >> 3) & 0x7)
	rd := uint32(opcode & 0x7)

	value := c.regs.Get(rs)
	result, carry := barrelShift(op, value, amount, true, c.regs.CPSR().C())
	c.regs.Set(rd, result)
	c.regs.cpsr.SetNZ(result)
	c.regs.cpsr.SetC(carry)
	return 1
}

func (c *CPU) thumbAddSub(opcode uint16) int {
	immediate := opcode&0x0400 != 0
	subtract := opcode&0x0200 != 0
	rnOrImm := uint32((opcode >> 6) & 0x7)
	rs := uint32((opcode >> 3) & 0x7)
	rd := uint32(opcode & 0x7)

	a := c.regs.Get(rs)
	var b uint32
	if immediate {
		b = rnOrImm
	} else {
		b = c.regs.Get(rnOrImm)
	}

	var result uint32
	var carry, overflow bool
	if subtract {
		result = a - b
		carry = a >= b
		overflow = subOverflow(a, b, result)
	} else {
		result = a + b
		carry = result < a
		overflow = addOverflow(a, b, result)
	}
	c.regs.Set(rd, result)
	c.regs.cpsr.SetNZ(result)
	c.regs.cpsr.SetC(carry)
	c.regs.cpsr.SetV(overflow)
	return 1
}

func (c *CPU) thumbImmediateOp(opcode uint16) int {
	op := (opcode >> 11) & 0x3
	rd := uint32((opcode >> 8) & 0x7)
	imm := uint32(opcode & 0xFF)

	a := c.regs.Get(rd)
	switch op {
	case 0x0: // MOV
		c.regs.Set(rd, imm)
		c.regs.cpsr.SetNZ(imm)
	case 0x1: // CMP
		result := a - imm
		c.regs.cpsr.SetNZ(result)
		c.regs.cpsr.SetC(a >= imm)
		c.regs.cpsr.SetV(subOverflow(a, imm, result))
	case 0x2: // ADD
		result := a + imm
		c.regs.Set(rd, result)
		c.regs.cpsr.SetNZ(result)
		c.regs.cpsr.SetC(result < a)
		c.regs.cpsr.SetV(addOverflow(a, imm, result))
	default: // SUB
		result := a - imm
		c.regs.Set(rd, result)
		c.regs.cpsr.SetNZ(result)
		c.regs.cpsr.SetC(a >= imm)
		c.regs.cpsr.SetV(subOverflow(a, imm, result))
	}
	return 1
}

func (c *CPU) thumbALU(opcode uint16) int {
	op := (opcode >> 6) & 0xF
	rs := uint32((opcode >> 3) & 0x7)
	rd := uint32(opcode & 0x7)

	a := c.regs.Get(rd)
	b := c.regs.Get(rs)
	cpsr := c.regs.CPSR()

	var result uint32
	writesResult := true
	setCV := false
	var carry, overflow bool

	switch op {
	case 0x0: // AND
		result = a & b
	case 0x1: // EOR
		result = a ^ b
	case 0x2: // LSL
		result, carry = shiftLSLFn(a, b&0xFF, cpsr.C())
		c.regs.cpsr.SetC(carry)
	case 0x3: // LSR
		amt := b & 0xFF
		if amt == 0 {
			result, carry = a, cpsr.C()
		} else {
			result, carry = shiftLSRFn(a, amt, cpsr.C())
		}
		c.regs.cpsr.SetC(carry)
	case 0x4: // ASR
		amt := b & 0xFF
		if amt == 0 {
			result, carry = a, cpsr.C()
		} else {
			result, carry = shiftASRFn(a, amt, cpsr.C())
		}
		c.regs.cpsr.SetC(carry)
	case 0x5: // ADC
		cin := boolToU32(cpsr.C())
		result = a + b + cin
		carry = uint64(a)+uint64(b)+uint64(cin) > 0xFFFFFFFF
		overflow = addOverflow(a, b+cin, result)
		setCV = true
	case 0x6: // SBC
		cin := boolToU32(cpsr.C())
		result = uint32(uint64(a) - uint64(b) - uint64(1-cin))
		carry = uint64(a) >= uint64(b)+uint64(1-cin)
		overflow = subOverflow(a, b, result)
		setCV = true
	case 0x7: // ROR
		amt := b & 0xFF
		if amt == 0 {
			result, carry = a, cpsr.C()
		} else {
			result, carry = shiftRORFn(a, amt, cpsr.C())
		}
		c.regs.cpsr.SetC(carry)
	case 0x8: // TST
		result = a & b
		writesResult = false
	case 0x9: // NEG
		result = 0 - b
		carry = 0 >= b
		overflow = subOverflow(0, b, result)
		setCV = true
	case 0xA: // CMP
		result = a - b
		carry = a >= b
		overflow = subOverflow(a, b, result)
		setCV = true
		writesResult = false
	case 0xB: // CMN
		result = a + b
		carry = result < a
		overflow = addOverflow(a, b, result)
		setCV = true
		writesResult = false
	case 0xC: // ORR
		result = a | b
	case 0xD: // MUL
		result = a * b
	case 0xE: // BIC
		result = a &^ b
	default: // MVN
		result = ^b
	}

	if writesResult {
		c.regs.Set(rd, result)
	}
	c.regs.cpsr.SetNZ(result)
	if setCV {
		c.regs.cpsr.SetC(carry)
		c.regs.cpsr.SetV(overflow)
	}
	return 1
}

func (c *CPU) thumbHiRegBX(opcode uint16) int {
	op := (opcode >> 8) & 0x3
	h1 := opcode&0x80 != 0
	h2 := opcode&0x40 != 0
	rs := uint32((opcode>>3)&0x7) + boolToReg(h2)
	rd := uint32(opcode&0x7) + boolToReg(h1)

	a := c.regs.Get(rd)
	b := c.regs.Get(rs)
	if rs == 15 {
		b = c.regs.PC()
	}

	switch op {
	case 0x0: // ADD
		result := a + b
		if rd == 15 {
			c.branchTo(result)
		} else {
			c.regs.Set(rd, result)
		}
	case 0x1: // CMP
		result := a - b
		c.regs.cpsr.SetNZ(result)
		c.regs.cpsr.SetC(a >= b)
		c.regs.cpsr.SetV(subOverflow(a, b, result))
	case 0x2: // MOV
		if rd == 15 {
			c.branchTo(b)
		} else {
			c.regs.Set(rd, b)
		}
	default: // BX/BLX
		c.regs.cpsr.SetThumb(b&1 != 0)
		c.branchTo(b)
	}
	return 3
}

func boolToReg(b bool) uint32 {
	if b {
		return 8
	}
	return 0
}

func (c *CPU) thumbPCRelLoad(opcode uint16) int {
	rd := uint32((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) * 4
	base := c.regs.PC() &^ 3
	c.regs.Set(rd, c.mem.Read32(base+imm))
	return 3
}

func (c *CPU) thumbLoadStoreReg(opcode uint16) int {
	load := opcode&0x0800 != 0
	byteAccess := opcode&0x0400 != 0
	ro := uint32((opcode >> 6) & 0x7)
	rb := uint32((opcode >> 3) & 0x7)
	rd := uint32(opcode & 0x7)

	addr := c.regs.Get(rb) + c.regs.Get(ro)
	if load {
		if byteAccess {
			c.regs.Set(rd, uint32(c.mem.Read8(addr)))
		} else {
			c.regs.Set(rd, c.mem.Read32(addr))
		}
	} else {
		if byteAccess {
			c.mem.Write8(addr, uint8(c.regs.Get(rd)))
		} else {
			c.mem.Write32(addr, c.regs.Get(rd))
		}
	}
	return 3
}

func (c *CPU) thumbLoadStoreSignExt(opcode uint16) int {
	hFlag := opcode&0x0800 != 0
	signExt := opcode&0x0400 != 0
	ro := uint32((opcode >> 6) & 0x7)
	rb := uint32((opcode >> 3) & 0x7)
	rd := uint32(opcode & 0x7)

	addr := c.regs.Get(rb) + c.regs.Get(ro)
	switch {
	case !signExt && !hFlag: // STRH
		c.mem.Write16(addr, uint16(c.regs.Get(rd)))
	case !signExt && hFlag: // LDRH
		c.regs.Set(rd, uint32(c.mem.Read16(addr)))
	case signExt && !hFlag: // LDSB
		c.regs.Set(rd, uint32(int32(int8(c.mem.Read8(addr)))))
	default: // LDSH
		c.regs.Set(rd, uint32(int32(int16(c.mem.Read16(addr)))))
	}
	return 3
}

func (c *CPU) thumbLoadStoreImm(opcode uint16) int {
	byteAccess := opcode&0x1000 != 0
	load := opcode&0x0800 != 0
	imm := uint32((opcode >> 6) & 0x1F)
	rb := uint32((opcode >> 3) & 0x7)
	rd := uint32(opcode & 0x7)

	if !byteAccess {
		imm *= 4
	}
	addr := c.regs.Get(rb) + imm

	if load {
		if byteAccess {
			c.regs.Set(rd, uint32(c.mem.Read8(addr)))
		} else {
			c.regs.Set(rd, c.mem.Read32(addr))
		}
	} else {
		if byteAccess {
			c.mem.Write8(addr, uint8(c.regs.Get(rd)))
		} else {
			c.mem.Write32(addr, c.regs.Get(rd))
		}
	}
	return 3
}

func (c *CPU) thumbLoadStoreHalf(opcode uint16) int {
	load := opcode&0x0800 != 0
	imm := uint32((opcode>>6)&0x1F) * 2
	rb := uint32((opcode >> 3) & 0x7)
	rd := uint32(opcode & 0x7)

	addr := c.regs.Get(rb) + imm
	if load {
		c.regs.Set(rd, uint32(c.mem.Read16(addr)))
	} else {
		c.mem.Write16(addr, uint16(c.regs.Get(rd)))
	}
	return 3
}

func (c *CPU) thumbSPRelLoadStore(opcode uint16) int {
	load := opcode&0x0800 != 0
	rd := uint32((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) * 4

	addr := c.regs.Get(13) + imm
	if load {
		c.regs.Set(rd, c.mem.Read32(addr))
	} else {
		c.mem.Write32(addr, c.regs.Get(rd))
	}
	return 3
}

func (c *CPU) thumbLoadAddress(opcode uint16) int {
	useSP := opcode&0x0800 != 0
	rd := uint32((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) * 4

	var base uint32
	if useSP {
		base = c.regs.Get(13)
	} else {
		base = c.regs.PC() &^ 3
	}
	c.regs.Set(rd, base+imm)
	return 1
}

func (c *CPU) thumbAddOffsetSP(opcode uint16) int {
	negative := opcode&0x80 != 0
	imm := uint32(opcode&0x7F) * 4
	sp := c.regs.Get(13)
	if negative {
		c.regs.Set(13, sp-imm)
	} else {
		c.regs.Set(13, sp+imm)
	}
	return 1
}

func (c *CPU) thumbPushPop(opcode uint16) int {
	pop := opcode&0x0800 != 0
	storeLR := opcode&0x0100 != 0
	list := opcode & 0xFF

	count := 0
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) != 0 {
			count++
		}
	}
	if storeLR {
		count++
	}

	sp := c.regs.Get(13)
	if pop {
		addr := sp
		for i := 0; i < 8; i++ {
			if list&(1<<uint(i)) != 0 {
				c.regs.Set(uint32(i), c.mem.Read32(addr))
				addr += 4
			}
		}
		if storeLR {
			pc := c.mem.Read32(addr)
			c.branchTo(pc)
			addr += 4
		}
		c.regs.Set(13, addr)
	} else {
		addr := sp - uint32(count)*4
		c.regs.Set(13, addr)
		for i := 0; i < 8; i++ {
			if list&(1<<uint(i)) != 0 {
				c.mem.Write32(addr, c.regs.Get(uint32(i)))
				addr += 4
			}
		}
		if storeLR {
			c.mem.Write32(addr, c.regs.Get(14))
		}
	}
	return count + 2
}

func (c *CPU) thumbLDMSTM(opcode uint16) int {
	load := opcode&0x0800 != 0
	rb := uint32((opcode >> 8) & 0x7)
	list := opcode & 0xFF

	addr := c.regs.Get(rb)
	count := 0
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) != 0 {
			count++
			if load {
				c.regs.Set(uint32(i), c.mem.Read32(addr))
			} else {
				c.mem.Write32(addr, c.regs.Get(uint32(i)))
			}
			addr += 4
		}
	}
	c.regs.Set(rb, addr)
	if count == 0 {
		count = 8
	}
	return count + 2
}

func (c *CPU) thumbCondBranch(opcode uint16) int {
	cond := uint32((opcode >> 8) & 0xF)
	if !conditionPassed(cond, c.regs.CPSR()) {
		return 1
	}
	offset := int32(int8(opcode&0xFF)) * 2
	c.branchTo(uint32(int32(c.regs.PC()) + offset))
	return 3
}

func (c *CPU) thumbSWI(opcode uint16) int {
	comment := uint32(opcode & 0xFF)
	if c.dispatchSWI(uint8(comment), comment) {
		return 3
	}
	lr := c.regs.PC() - 2
	c.regs.EnterException(regs.ModeSupervisor)
	c.regs.cpsr.SetThumb(false)
	c.regs.Set(14, lr)
	c.branchTo(0x08)
	return 3
}

func (c *CPU) thumbUncondBranch(opcode uint16) int {
	offset := signExtend11(opcode) * 2
	c.branchTo(uint32(int32(c.regs.PC()) + offset))
	return 3
}

func signExtend11(v uint16) int32 {
	return int32(uint32(v&0x7FF)<<21) >> 21
}

// thumbBLHigh handles the first halfword of BL/BLX (bits 15:11 == 0b11110):
// LR := PC + (sign-extended offset-high << 12), where PC is the address of
// this halfword plus the Thumb pipeline offset. The second halfword is
// fetched directly from fetchAddr+2 and executed immediately, so the pair
// behaves as one logical instruction from CPU.Step's point of view; r15
// itself is untouched until branchTo fires, so fetchAddr is threaded
// through explicitly rather than re-derived from Registers.
func (c *CPU) thumbBLHigh(opcode uint16, fetchAddr uint32) int {
	offsetHigh := int32(uint32(opcode&0x7FF)<<21) >> 9 // sign-extend 11 bits, <<12
	pcDuringHigh := fetchAddr + 4
	lrAfterHigh := uint32(int32(pcDuringHigh) + offsetHigh)

	secondAddr := fetchAddr + 2
	second := c.mem.Read16(secondAddr)
	pairReturnAddr := fetchAddr + 4 // address of the instruction after the pair

	switch {
	case second&0xF800 == 0xF800: // BL low
		return 3 + c.finishBL(lrAfterHigh, second, pairReturnAddr, false)
	case second&0xF800 == 0xE800: // BLX low
		return 3 + c.finishBL(lrAfterHigh, second, pairReturnAddr, true)
	default:
		// Malformed pair (no second BL halfword follows): commit LR from
		// the high part only and fall through to whatever follows.
		c.regs.Set(14, lrAfterHigh)
		return 3
	}
}

// finishBL completes a BL (blx=false) or BLX (blx=true) given the partial
// LR from the first halfword and the second halfword's low-offset bits.
func (c *CPU) finishBL(lrAfterHigh uint32, second uint16, returnAddr uint32, blx bool) int {
	offsetLow := uint32(second&0x7FF) << 1
	target := lrAfterHigh + offsetLow
	c.regs.Set(14, returnAddr|1)
	if blx {
		c.regs.cpsr.SetThumb(false)
		target &^= 3
	}
	c.branchTo(target)
	return 3
}

// thumbBLLow handles a lone second-halfword BL/BLX opcode encountered
// without a preceding high halfword (e.g. control flow lands mid-pair);
// it completes the branch using whatever LR the last high halfword left
// behind, which is the best effort spec.md's self-correction philosophy
// calls for rather than faulting.
func (c *CPU) thumbBLLow(opcode uint16, blx bool) int {
	offsetLow := uint32(opcode&0x7FF) << 1
	lr := c.regs.Get(14)
	target := lr + offsetLow
	returnAddr := c.regs.PC() - 2
	c.regs.Set(14, returnAddr|1)
	if blx {
		c.regs.cpsr.SetThumb(false)
		target &^= 3
	}
	c.branchTo(target)
	return 3
}
