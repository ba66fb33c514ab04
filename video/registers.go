package video

import "github.com/tholstrup/gbacore/addr"

// regCount covers MMIO offsets 0x000-0x05E (DISPCNT..BLDY), the block the
// Bus forwards to the PPU wholesale (everything below 0x060 except
// DISPSTAT/VCOUNT, which the interrupt controller owns, per §3/§4.1).
const regCount = 0x060 / 2

// PPU holds every BG/window/blend register plus the affine internal
// reference points, and renders complete frames on demand (§4.5).
type PPU struct {
	regs [regCount]uint16

	// Internal affine reference points, advanced by PB/PD per scanline and
	// reloaded from BG2X/Y or BG3X/Y at VBlank (§4.5).
	refX [2]int32
	refY [2]int32

	forcedWhite bool // not written anywhere; forcedBlank reads DISPCNT bit 7 directly
}

func (p *PPU) regIndex(offset uint32) int { return int(offset / 2) }

// ReadReg/WriteReg implement the bus.PPURegs contract: plain register
// storage, since all the dynamic behavior (affine stepping, compositing)
// happens inside RenderFrame rather than at access time.
func (p *PPU) ReadReg(offset uint32) uint16 {
	return p.regs[p.regIndex(offset)]
}

func (p *PPU) WriteReg(offset uint32, value uint16) {
	p.regs[p.regIndex(offset)] = value
}

func (p *PPU) reg(offset uint32) uint16 { return p.regs[p.regIndex(offset)] }

// ExportRegs/ImportRegs copy the PPU's register block to/from a raw byte
// slice of at least regCount*2 bytes, used only by the savestate package
// to fold this component's otherwise-separate register cache into the
// single literal mmio[1KB] blob §6 documents.
func (p *PPU) ExportRegs(dst []byte) {
	for i, v := range p.regs {
		dst[i*2] = byte(v)
		dst[i*2+1] = byte(v >> 8)
	}
}

func (p *PPU) ImportRegs(src []byte) {
	for i := range p.regs {
		p.regs[i] = uint16(src[i*2]) | uint16(src[i*2+1])<<8
	}
}

// DISPCNT accessors.
func (p *PPU) dispcnt() uint16      { return p.reg(addr.DISPCNT) }
func (p *PPU) bgMode() int          { return int(p.dispcnt() & 0x7) }
func (p *PPU) frameSelect() int     { return int((p.dispcnt() >> 4) & 1) }
func (p *PPU) objMapping1D() bool   { return p.dispcnt()&(1<<6) != 0 }
func (p *PPU) forcedBlank() bool    { return p.dispcnt()&(1<<7) != 0 }
func (p *PPU) bgEnabled(n int) bool { return p.dispcnt()&(1<<(8+uint(n))) != 0 }
func (p *PPU) objEnabled() bool     { return p.dispcnt()&(1<<12) != 0 }
func (p *PPU) winEnabled(n int) bool {
	return p.dispcnt()&(1<<(13+uint(n))) != 0
}
func (p *PPU) winObjEnabled() bool { return p.dispcnt()&(1<<15) != 0 }
func (p *PPU) windowsActive() bool {
	return p.winEnabled(0) || p.winEnabled(1) || p.winObjEnabled()
}

// BG control register accessors, per text/affine BG layout (§4.5).
func (p *PPU) bgcnt(n int) uint16 {
	return p.reg(addr.BG0CNT + uint32(n)*2)
}
func bgPriority(cnt uint16) int  { return int(cnt & 0x3) }
func bgCharBase(cnt uint16) uint32 { return uint32((cnt>>2)&0x3) * 0x4000 }
func bgMosaic(cnt uint16) bool   { return cnt&(1<<6) != 0 }
func bg8bpp(cnt uint16) bool     { return cnt&(1<<7) != 0 }
func bgScreenBase(cnt uint16) uint32 { return uint32((cnt>>8)&0x1F) * 0x800 }
func bgWrap(cnt uint16) bool     { return cnt&(1<<13) != 0 }
func bgScreenSize(cnt uint16) uint32 { return uint32((cnt >> 14) & 0x3) }

func (p *PPU) bgHOFS(n int) int { return int(p.reg(addr.BG0HOFS+uint32(n)*4) & 0x1FF) }
func (p *PPU) bgVOFS(n int) int { return int(p.reg(addr.BG0VOFS+uint32(n)*4) & 0x1FF) }

// affine params for BG2 (idx 0) or BG3 (idx 1).
func (p *PPU) affineParams(idx int) (pa, pb, pc, pd int32) {
	base := addr.BG2PA
	if idx == 1 {
		base = addr.BG3PA
	}
	pa = fixed16(p.reg(base))
	pb = fixed16(p.reg(base + 2))
	pc = fixed16(p.reg(base + 4))
	pd = fixed16(p.reg(base + 6))
	return
}

func (p *PPU) affineRef(idx int) (x, y int32) {
	base := addr.BG2X
	if idx == 1 {
		base = addr.BG3X
	}
	lo := p.reg(base)
	hi := p.reg(base + 2)
	x = signExtend28(uint32(lo) | uint32(hi)<<16)
	base = addr.BG2Y
	if idx == 1 {
		base = addr.BG3Y
	}
	lo = p.reg(base)
	hi = p.reg(base + 2)
	y = signExtend28(uint32(lo) | uint32(hi)<<16)
	return
}

// fixed16 sign-extends a 16-bit 8.8 fixed-point shift/rotation parameter.
func fixed16(v uint16) int32 { return int32(int16(v)) }

// signExtend28 sign-extends a 28-bit 19.8 fixed-point reference point.
func signExtend28(v uint32) int32 {
	v &= 0x0FFFFFFF
	if v&0x08000000 != 0 {
		v |= 0xF0000000
	}
	return int32(v)
}

// window registers.
func (p *PPU) winH(n int) (left, right int) {
	v := p.reg(addr.WIN0H + uint32(n)*2)
	return int(v >> 8), int(v & 0xFF)
}
func (p *PPU) winV(n int) (top, bottom int) {
	v := p.reg(addr.WIN0V + uint32(n)*2)
	return int(v >> 8), int(v & 0xFF)
}
func (p *PPU) winIn() uint16  { return p.reg(addr.WININ) }
func (p *PPU) winOut() uint16 { return p.reg(addr.WINOUT) }

// blend registers.
func (p *PPU) bldcnt() uint16   { return p.reg(addr.BLDCNT) }
func (p *PPU) bldalpha() uint16 { return p.reg(addr.BLDALPHA) }
func (p *PPU) bldy() uint16     { return p.reg(addr.BLDY) }

// ResetAffine reloads the internal reference points from BG2X/Y and
// BG3X/Y, called once at VBlank per §4.5 ("reset at VBlank from the
// configured registers").
func (p *PPU) ResetAffine() {
	for i := 0; i < 2; i++ {
		p.refX[i], p.refY[i] = p.affineRef(i)
	}
}
