package video

// layer identifies a composited candidate's source for tie-breaking and
// blend-target classification (§4.5 step 2/3).
type layer int

const (
	layerBG0 layer = iota
	layerBG1
	layerBG2
	layerBG3
	layerOBJ
	layerBackdrop
)

type candidate struct {
	sample pixelSample
	layer  layer
}

// RenderFrame samples the current register/VRAM/palette/OAM state and
// produces a complete 240x160 frame, per §4.5/§2: "After line 227 the PPU
// renders the full frame from the sampled VRAM/palette/OAM state." Affine
// internal reference points are reloaded at the start (matching the
// VBlank reset) and stepped once per rendered scanline.
func (p *PPU) RenderFrame(mem MemoryView) *FrameBuffer {
	fb := &FrameBuffer{}

	if p.forcedBlank() {
		for i := range fb.pixels {
			fb.pixels[i] = White
		}
		return fb
	}

	p.ResetAffine()

	switch p.bgMode() {
	case 3, 4, 5:
		p.renderBitmapFrame(fb, mem)
	default:
		for y := 0; y < Height; y++ {
			p.renderTiledScanline(fb, y, mem)
			p.advanceAffine()
		}
	}
	return fb
}

// renderTiledScanline composes one scanline for BG modes 0-2, per §4.5's
// four-step compose algorithm.
func (p *PPU) renderTiledScanline(fb *FrameBuffer, y int, mem MemoryView) {
	var bg [4]*[Width]pixelSample
	var buffers [4][Width]pixelSample

	mode := p.bgMode()
	for n := 0; n < 4; n++ {
		if !p.bgEnabled(n) {
			continue
		}
		switch mode {
		case 0:
			p.renderTextBG(&buffers[n], n, y, mem)
			bg[n] = &buffers[n]
		case 1:
			if n < 2 {
				p.renderTextBG(&buffers[n], n, y, mem)
				bg[n] = &buffers[n]
			} else if n == 2 {
				p.renderAffineBG(&buffers[n], n, 0, mem)
				bg[n] = &buffers[n]
			}
		case 2:
			if n == 2 {
				p.renderAffineBG(&buffers[n], n, 0, mem)
				bg[n] = &buffers[n]
			} else if n == 3 {
				p.renderAffineBG(&buffers[n], n, 1, mem)
				bg[n] = &buffers[n]
			}
		}
	}

	var obj [Width]pixelSample
	p.renderSprites(&obj, y, mem)

	backdrop := paletteColor(mem.Palette(), 0)

	for x := 0; x < Width; x++ {
		candidates := make([]candidate, 0, 5)
		for n := 0; n < 4; n++ {
			if bg[n] != nil && bg[n][x].opaque {
				candidates = append(candidates, candidate{bg[n][x], layer(n)})
			}
		}
		if obj[x].opaque {
			candidates = append(candidates, candidate{obj[x], layerOBJ})
		}
		fb.Set(x, y, p.composePixel(candidates, backdrop))
	}
}

// composePixel sorts candidates by (priority ascending, OBJ-over-BG,
// lower-BG-index-wins) and applies the configured blend effect to the top
// one or two, per §4.5 steps 2-4.
func (p *PPU) composePixel(candidates []candidate, backdrop uint16) uint16 {
	if len(candidates) == 0 {
		return backdrop
	}
	sortCandidates(candidates)

	top := candidates[0]
	bldcnt := p.bldcnt()
	mode := (bldcnt >> 6) & 0x3

	switch mode {
	case 1:
		if len(candidates) >= 2 && isTarget(bldcnt, top.layer, true) && isTarget(bldcnt, candidates[1].layer, false) {
			return alphaBlend(top.sample.color, candidates[1].sample.color, p.bldalpha())
		}
	case 2:
		if isTarget(bldcnt, top.layer, true) {
			return brightnessUp(top.sample.color, p.bldy())
		}
	case 3:
		if isTarget(bldcnt, top.layer, true) {
			return brightnessDown(top.sample.color, p.bldy())
		}
	}
	return top.sample.color
}

// sortCandidates orders by ascending priority; within equal priority, OBJ
// beats BG, and among BGs the lower index wins (§4.5 step 2).
func sortCandidates(c []candidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && less(c[j], c[j-1]); j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}

func less(a, b candidate) bool {
	if a.sample.priority != b.sample.priority {
		return a.sample.priority < b.sample.priority
	}
	// Equal priority: OBJ over BG, else lower BG index wins.
	aObj, bObj := a.layer == layerOBJ, b.layer == layerOBJ
	if aObj != bObj {
		return aObj
	}
	return a.layer < b.layer
}

// isTarget reports whether layer l is configured as a 1st-target (first)
// or 2nd-target (second) in BLDCNT's bit layout: bits 0-5 = 1st-target
// BG0-3/OBJ/BD, bits 8-13 = 2nd-target.
func isTarget(bldcnt uint16, l layer, first bool) bool {
	shift := uint(l)
	if !first {
		shift += 8
	}
	return bldcnt&(1<<shift) != 0
}

func channel(v uint16, shift uint) int { return int((v >> shift) & 0x1F) }

func clamp31(v int) uint16 {
	if v > 31 {
		v = 31
	}
	if v < 0 {
		v = 0
	}
	return uint16(v)
}

// alphaBlend implements BLDCNT mode 1: EVA/EVB-weighted blend of the top
// two candidates, coefficients clamped to 16 (§4.5 step 3).
func alphaBlend(top, second uint16, bldalpha uint16) uint16 {
	eva := int(bldalpha & 0x1F)
	evb := int((bldalpha >> 8) & 0x1F)
	if eva > 16 {
		eva = 16
	}
	if evb > 16 {
		evb = 16
	}
	blend := func(shift uint) uint16 {
		a, b := channel(top, shift), channel(second, shift)
		return clamp31((a*eva + b*evb) / 16)
	}
	return blend(0) | blend(5)<<5 | blend(10)<<10
}

// brightnessUp/Down implement BLDCNT modes 2/3: move each channel toward
// white/black by EVY/16 (§4.5 step 3).
func brightnessUp(c uint16, bldy uint16) uint16 {
	evy := int(bldy & 0x1F)
	if evy > 16 {
		evy = 16
	}
	blend := func(shift uint) uint16 {
		v := channel(c, shift)
		return clamp31(v + (31-v)*evy/16)
	}
	return blend(0) | blend(5)<<5 | blend(10)<<10
}

func brightnessDown(c uint16, bldy uint16) uint16 {
	evy := int(bldy & 0x1F)
	if evy > 16 {
		evy = 16
	}
	blend := func(shift uint) uint16 {
		v := channel(c, shift)
		return clamp31(v - v*evy/16)
	}
	return blend(0) | blend(5)<<5 | blend(10)<<10
}
