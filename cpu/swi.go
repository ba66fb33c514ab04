package cpu

import "github.com/tholstrup/gbacore/regs"

// dispatchSWI implements the HLE BIOS call table (§4.4's "HLE SWI
// subset"), adapted from the original implementation's bios.c vector
// table — a feature the distilled spec keeps but the original source
// implements as native C rather than interpreted ARM, which is exactly
// what "HLE" means here. Returns true if the comment byte was recognized;
// an unhandled SWI falls through to armSWI/thumbSWI's real exception
// entry to 0x08, where the BIOS array holds MOVS pc, lr, so the call
// returns without effect.
func (c *CPU) dispatchSWI(fn uint8, comment uint32) bool {
	switch fn {
	case 0x00:
		c.swiSoftReset()
	case 0x01:
		// RegisterRamReset: no VRAM/palette/OAM owner reachable from the
		// CPU package; the bus-level reset path covers this instead.
	case 0x02, 0x03:
		c.halted = true
	case 0x04, 0x05:
		c.halted = true
	case 0x06:
		c.swiDiv()
	case 0x08:
		c.swiSqrt()
	case 0x0B:
		c.swiCpuSet()
	case 0x0C:
		c.swiCpuFastSet()
	case 0x0D:
		c.regs.Set(0, 0xBAAE187F)
	case 0x11, 0x12:
		c.swiDecompress(fn == 0x12)
	case 0x14, 0x15:
		c.swiRLE(fn == 0x15)
	default:
		return false
	}
	return true
}

// swiSoftReset reinitializes the register file to its power-on state and
// jumps back to the ROM entry point, per the SWI 0x00 contract.
func (c *CPU) swiSoftReset() {
	c.regs.Reset(c.entryPoint)
	c.branchTo(c.entryPoint)
}

// swiDiv implements truncating signed division: quotient -> r0, remainder
// -> r1, abs(quotient) -> r3. Division by zero yields zeroes rather than
// trapping, matching the guest-visible invariant in spec.md §8.
func (c *CPU) swiDiv() {
	n := int32(c.regs.Get(0))
	d := int32(c.regs.Get(1))
	if d == 0 {
		c.regs.Set(0, 0)
		c.regs.Set(1, 0)
		c.regs.Set(3, 0)
		return
	}
	q := n / d
	r := n % d
	abs := q
	if abs < 0 {
		abs = -abs
	}
	c.regs.Set(0, uint32(q))
	c.regs.Set(1, uint32(r))
	c.regs.Set(3, uint32(abs))
}

// swiSqrt computes the truncated integer square root of r0 into r0.
func (c *CPU) swiSqrt() {
	n := c.regs.Get(0)
	if n == 0 {
		c.regs.Set(0, 0)
		return
	}
	var x uint32 = n
	var y uint32 = x/2 + x&1 // ceil(x/2) without overflowing at 0xFFFFFFFF
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	c.regs.Set(0, x)
}

// cpuSetControl decodes the CpuSet/CpuFastSet control word in r2: bits
// 0-20 are the transfer count, bit 24 selects fixed (no source advance)
// vs copy, bit 26 selects 32-bit vs 16-bit transfers.
func cpuSetControl(ctrl uint32) (count int, fixedSource bool, wordSize bool) {
	return int(ctrl & 0x1FFFFF), ctrl&(1<<24) != 0, ctrl&(1<<26) != 0
}

// swiCpuSet implements SWI 0x0B: memcpy/memset between arbitrary
// addresses with a 16- or 32-bit element size and an optional
// fixed-source (fill) mode.
func (c *CPU) swiCpuSet() {
	src := c.regs.Get(0)
	dst := c.regs.Get(1)
	count, fixed, word32 := cpuSetControl(c.regs.Get(2))

	for i := 0; i < count; i++ {
		if word32 {
			c.mem.Write32(dst, c.mem.Read32(src))
			dst += 4
		} else {
			c.mem.Write16(dst, c.mem.Read16(src))
			dst += 2
		}
		if !fixed {
			if word32 {
				src += 4
			} else {
				src += 2
			}
		}
	}
}

// swiCpuFastSet implements SWI 0x0C: always 32-bit, count expressed in
// units of 8 words (rounded up), fixed-source fill supported.
func (c *CPU) swiCpuFastSet() {
	src := c.regs.Get(0)
	dst := c.regs.Get(1)
	count, fixed, _ := cpuSetControl(c.regs.Get(2))
	count = (count + 7) &^ 7

	for i := 0; i < count; i++ {
		c.mem.Write32(dst, c.mem.Read32(src))
		dst += 4
		if !fixed {
			src += 4
		}
	}
}

// swiDecompress implements LZ77UnCompWram/Vram (SWI 0x11/0x12): standard
// GBA LZ77 with the 4-byte header (type<<4|raw_type in bits 0-7,
// decompressed size in bits 8-31).
func (c *CPU) swiDecompress(vram bool) {
	src := c.regs.Get(0)
	dst := c.regs.Get(1)

	header := c.mem.Read32(src)
	size := int(header >> 8)
	src += 4

	written := 0
	for written < size {
		flags := c.mem.Read8(src)
		src++
		for bit := 7; bit >= 0 && written < size; bit-- {
			if flags&(1<<uint(bit)) == 0 {
				c.mem.Write8(dst, c.mem.Read8(src))
				src++
				dst++
				written++
				continue
			}
			b0 := c.mem.Read8(src)
			b1 := c.mem.Read8(src + 1)
			src += 2
			length := int(b0>>4) + 3
			distance := int(uint16(b0&0xF)<<8|uint16(b1)) + 1
			for n := 0; n < length && written < size; n++ {
				v := c.mem.Read8(dst - uint32(distance))
				c.mem.Write8(dst, v)
				dst++
				written++
			}
		}
	}
}

// swiRLE implements RLUnCompWram/Vram (SWI 0x14/0x15): standard GBA
// run-length encoding with the same 4-byte header convention as LZ77.
func (c *CPU) swiRLE(vram bool) {
	src := c.regs.Get(0)
	dst := c.regs.Get(1)

	header := c.mem.Read32(src)
	size := int(header >> 8)
	src += 4

	written := 0
	for written < size {
		flag := c.mem.Read8(src)
		src++
		compressed := flag&0x80 != 0
		length := int(flag&0x7F) + 1
		if compressed {
			length += 2 // compressed block length is encoded as len-3
			b := c.mem.Read8(src)
			src++
			for n := 0; n < length && written < size; n++ {
				c.mem.Write8(dst, b)
				dst++
				written++
			}
		} else {
			for n := 0; n < length && written < size; n++ {
				c.mem.Write8(dst, c.mem.Read8(src))
				src++
				dst++
				written++
			}
		}
	}
}

// HandleUndefinedEntry implements the HLE surrogate for BIOS vectors
// 0x04/0x08/0x0C (undefined instruction / prefetch abort / data abort):
// if LR already points into ROM the handler trusts the game's own
// exception vector and returns there; otherwise it self-corrects back to
// the ROM entry point, per spec.md §8's guest-visible behavior.
func (c *CPU) HandleUndefinedEntry(romBase, romEnd uint32) {
	lr := c.regs.Get(14)
	if lr >= romBase && lr < romEnd {
		c.regs.SetCPSR(c.regs.SPSR())
		c.branchTo(lr)
		return
	}
	c.regs.SetCPSR(regs.PSR(uint32(c.regs.CPSR())))
	c.regs.cpsr.SetMode(regs.ModeSystem)
	c.branchTo(c.entryPoint)
}
