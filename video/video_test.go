package video

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tholstrup/gbacore/addr"
)

// fakeMem backs the PPU's MemoryView with plain byte slices sized like the
// real regions.
type fakeMem struct {
	vram [0x18000]byte
	pal  [0x400]byte
	oam  [0x400]byte
}

func (m *fakeMem) VRAM() []byte    { return m.vram[:] }
func (m *fakeMem) Palette() []byte { return m.pal[:] }
func (m *fakeMem) OAM() []byte     { return m.oam[:] }

func setPalette(pal []byte, index int, color uint16) {
	pal[index*2] = uint8(color)
	pal[index*2+1] = uint8(color >> 8)
}

func TestMode3DirectBitmapPixel(t *testing.T) {
	mem := &fakeMem{}
	const x, y = 10, 20
	const want uint16 = 0x1234 & 0x7FFF
	off := (y*Width + x) * 2
	mem.vram[off] = uint8(want)
	mem.vram[off+1] = uint8(want >> 8)

	var p PPU
	p.WriteReg(addr.DISPCNT, 3)

	fb := p.RenderFrame(mem)
	assert.Equal(t, want, fb.At(x, y))
}

func TestForcedBlankProducesWhiteFrame(t *testing.T) {
	mem := &fakeMem{}
	var p PPU
	p.WriteReg(addr.DISPCNT, 1<<7)

	fb := p.RenderFrame(mem)
	assert.Equal(t, White, fb.At(0, 0))
	assert.Equal(t, White, fb.At(Width-1, Height-1))
}

func TestMode2AffineBGWithMaxBrightnessUpYieldsWhite(t *testing.T) {
	mem := &fakeMem{}

	// One affine BG2 tile map entry pointing at tile 1, whose every pixel
	// is palette index 5 (an arbitrary non-zero, opaque color).
	const screenBase = 0x800
	const tileIndex = 1
	mem.vram[screenBase] = tileIndex
	tileAddr := tileIndex * 64
	for i := 0; i < 64; i++ {
		mem.vram[tileAddr+i] = 5
	}
	setPalette(mem.pal[:], 5, 0x0000) // pure black, maximally far from white

	var p PPU
	p.WriteReg(addr.DISPCNT, 2|(1<<10)) // mode 2, BG2 enabled
	p.WriteReg(addr.BG2CNT, 1<<8)       // screen base block 1 == 0x800
	p.WriteReg(addr.BG2PA, 0x0100)      // 1.0 in 8.8 fixed point
	p.WriteReg(addr.BG2PD, 0x0100)
	p.WriteReg(addr.BLDCNT, (1<<2)|(2<<6)) // BG2 is 1st target, mode 2 = brightness increase
	p.WriteReg(addr.BLDY, 16)              // EVY = 16/16, full brightness increase

	fb := p.RenderFrame(mem)
	assert.Equal(t, White, fb.At(0, 0), "max EVY brightness-increase of any opaque color must reach white")
}

func TestBackdropShowsThroughWhenNoLayerOpaque(t *testing.T) {
	mem := &fakeMem{}
	setPalette(mem.pal[:], 0, 0x2108) // arbitrary backdrop color

	var p PPU
	p.WriteReg(addr.DISPCNT, 0) // mode 0, no BGs enabled

	fb := p.RenderFrame(mem)
	assert.Equal(t, uint16(0x2108), fb.At(0, 0))
}
