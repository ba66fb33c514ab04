package video

// renderBitmapFrame implements DISPCNT modes 3/4/5 (§4.5): direct 16bpp
// framebuffers (3, 5) and paletted 8bpp with double buffering (4).
func (p *PPU) renderBitmapFrame(fb *FrameBuffer, mem MemoryView) {
	vram := mem.VRAM()
	pal := mem.Palette()

	switch p.bgMode() {
	case 3:
		for y := 0; y < Height; y++ {
			for x := 0; x < Width; x++ {
				off := uint32((y*Width + x) * 2)
				fb.Set(x, y, readVRAM16(vram, off))
			}
		}
	case 4:
		frameOffset := uint32(0)
		if p.frameSelect() == 1 {
			frameOffset = 0xA000
		}
		for y := 0; y < Height; y++ {
			for x := 0; x < Width; x++ {
				off := frameOffset + uint32(y*Width+x)
				var idx int
				if int(off) < len(vram) {
					idx = int(vram[off])
				}
				fb.Set(x, y, paletteColor(pal, idx))
			}
		}
	case 5:
		const smallW, smallH = 160, 128
		frameOffset := uint32(0)
		if p.frameSelect() == 1 {
			frameOffset = 0xA000
		}
		for y := 0; y < Height; y++ {
			for x := 0; x < Width; x++ {
				if x >= smallW || y >= smallH {
					fb.Set(x, y, 0)
					continue
				}
				off := frameOffset + uint32((y*smallW+x)*2)
				fb.Set(x, y, readVRAM16(vram, off))
			}
		}
	}
}
