package video

// objShapeSize maps (shape, size) attr bits to (width, height) in pixels,
// per §4.5's "Size derived from (shape, size) lookup."
var objShapeSize = [4][4][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},   // square
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},   // horizontal
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},   // vertical
	{{0, 0}, {0, 0}, {0, 0}, {0, 0}},         // reserved
}

const objBaseAddr = 0x10000 // sprite tiles live at VRAM+0x10000, per §4.5

// renderSprites walks all 128 OAM entries back-to-front (index 127 down
// to 0, so lower index wins ties) and rasterizes visible, in-range
// sprites for scanline y into obj, per §4.5.
func (p *PPU) renderSprites(obj *[Width]pixelSample, y int, mem MemoryView) {
	if !p.objEnabled() {
		return
	}
	oam := mem.OAM()
	vram := mem.VRAM()
	pal := mem.Palette()

	for i := 127; i >= 0; i-- {
		base := i * 8
		if base+6 > len(oam) {
			continue
		}
		attr0 := uint16(oam[base]) | uint16(oam[base+1])<<8
		attr1 := uint16(oam[base+2]) | uint16(oam[base+3])<<8
		attr2 := uint16(oam[base+4]) | uint16(oam[base+5])<<8

		objMode := (attr0 >> 8) & 0x3
		if objMode == 2 { // disabled
			continue
		}
		shape := (attr0 >> 14) & 0x3
		size := (attr1 >> 14) & 0x3
		dims := objShapeSize[shape][size]
		w, h := dims[0], dims[1]
		if w == 0 || h == 0 {
			continue
		}

		yPos := int(attr0 & 0xFF)
		if yPos >= 160 {
			yPos -= 256
		}
		rowInSprite := y - yPos
		if rowInSprite < 0 || rowInSprite >= h {
			continue
		}

		xPos := int(attr1 & 0x1FF)
		if xPos >= 240 {
			xPos -= 512
		}

		hFlip := attr1&(1<<12) != 0
		vFlip := attr1&(1<<13) != 0
		eightBpp := attr0&(1<<13) != 0
		priority := int((attr2 >> 10) & 0x3)
		tileIndex := int(attr2 & 0x3FF)
		palBank := int((attr2 >> 12) & 0xF)

		row := rowInSprite
		if vFlip {
			row = h - 1 - row
		}

		tilesWide := w / 8
		rowTile := row / 8
		rowInTile := row % 8

		for col := 0; col < w; col++ {
			px := xPos + col
			if px < 0 || px >= Width {
				continue
			}

			c := col
			if hFlip {
				c = w - 1 - c
			}
			colTile := c / 8
			colInTile := c % 8

			var tileOffset int
			if p.objMapping1D() {
				if eightBpp {
					tileOffset = (rowTile*tilesWide + colTile) * 2
				} else {
					tileOffset = rowTile*tilesWide + colTile
				}
			} else {
				stride := 32
				if eightBpp {
					tileOffset = rowTile*stride + colTile*2
				} else {
					tileOffset = rowTile*stride + colTile
				}
			}
			effTile := tileIndex + tileOffset

			var colorIndex int
			if eightBpp {
				addr := objBaseAddr + effTile*64 + rowInTile*8 + colInTile
				if addr < len(vram) {
					colorIndex = int(vram[addr])
				}
			} else {
				addr := objBaseAddr + effTile*32 + rowInTile*4 + colInTile/2
				if addr < len(vram) {
					b := vram[addr]
					if colInTile%2 == 0 {
						colorIndex = int(b & 0xF)
					} else {
						colorIndex = int(b >> 4)
					}
				}
				if colorIndex != 0 {
					colorIndex += palBank * 16
				}
			}
			if colorIndex == 0 {
				continue
			}

			obj[px] = pixelSample{
				color:    paletteColor(pal, 256+colorIndex),
				priority: priority,
				opaque:   true,
			}
		}
	}
}
