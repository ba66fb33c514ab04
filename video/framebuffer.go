// Package video implements the GBA's scanline-accurate pixel pipeline
// (§4.5): per-scanline BG/sprite rendering and priority/blend composition,
// generalized from the teacher's single-BG-plus-sprites GB PPU
// (jeebie/video/gpu.go) to the GBA's 4-BG/affine/bitmap/blend model (no GB
// equivalent for compositing — that part is new code in the same
// imperative scanline-buffer style as drawScanline).
package video

const (
	Width  = 240
	Height = 160
)

// FrameBuffer is one published 240x160 frame, stored as packed 16-bit
// colors. The internal color model is BGR555 (§4.5); At returns the stored
// BGR555 value, and RGB565 converts a color for backends that want that
// wire format, so the choice stays a presentation detail.
type FrameBuffer struct {
	pixels [Width * Height]uint16 // BGR555, one conversion away from display
}

// Set writes pixel (x,y) in BGR555.
func (f *FrameBuffer) Set(x, y int, bgr555 uint16) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	f.pixels[y*Width+x] = bgr555
}

// At returns pixel (x,y) in BGR555 (the raw internal format).
func (f *FrameBuffer) At(x, y int) uint16 {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return 0
	}
	return f.pixels[y*Width+x]
}

// RGB565 converts a BGR555 color to RGB565 for presentation backends that
// want the more common 16-bit wire format, replicating green's top bit
// into its extra sixth-bit LSB.
func RGB565(bgr555 uint16) uint16 {
	r := uint16(bgr555) & 0x1F
	g := (uint16(bgr555) >> 5) & 0x1F
	b := (uint16(bgr555) >> 10) & 0x1F
	g6 := g<<1 | g>>4
	return r<<11 | g6<<5 | b
}

// White is the BGR555 encoding of pure white (§8's mode-2/EVY=16 test).
const White uint16 = 0x7FFF
