// Package debug extracts structured, display-ready state from a running
// Emulator for the terminal front end's debug overlay (§10), adapted from
// jeebie/debug's CPUState/OAMData/CompleteDebugData shape — generalized
// from the GB's 8-bit register file to the ARM7TDMI's 16 GPRs/CPSR, and
// from OBP0/OBP1 2-color sprites to the GBA's 128-entry OAM with
// shape/size/palette-bank attributes.
package debug

import "fmt"

// CPUState mirrors the ARM7TDMI's visible register file for display.
type CPUState struct {
	R      [16]uint32
	CPSR   uint32
	Thumb  bool
	IME    bool
	Halted bool
	Cycles uint64
}

// FormatRegister renders register index i as "rN: 0xXXXXXXXX".
func (s *CPUState) FormatRegister(i int) string {
	return fmt.Sprintf("r%-2d: 0x%08X", i, s.R[i])
}

// SpriteInfo is one OAM entry's decoded attributes.
type SpriteInfo struct {
	Index     int
	X, Y      int
	Width     int
	Height    int
	TileIndex int
	Priority  int
	HFlip     bool
	VFlip     bool
	EightBpp  bool
	Disabled  bool
}

// OAMData is every sprite's decoded attributes plus the scanline context
// they were extracted for.
type OAMData struct {
	Sprites     []SpriteInfo
	CurrentLine int
}

// objShapeSize mirrors video's internal shape/size lookup (duplicated
// here rather than imported, since the decode is three lines and pulling
// in the video package's unexported table isn't worth the coupling).
var objShapeSize = [4][4][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},
	{{0, 0}, {0, 0}, {0, 0}, {0, 0}},
}

// ExtractOAMData decodes all 128 OAM entries from raw OAM bytes.
func ExtractOAMData(oam []byte, currentLine int) *OAMData {
	data := &OAMData{CurrentLine: currentLine}
	for i := 0; i < 128; i++ {
		base := i * 8
		if base+6 > len(oam) {
			break
		}
		attr0 := uint16(oam[base]) | uint16(oam[base+1])<<8
		attr1 := uint16(oam[base+2]) | uint16(oam[base+3])<<8
		attr2 := uint16(oam[base+4]) | uint16(oam[base+5])<<8

		objMode := (attr0 >> 8) & 0x3
		shape := (attr0 >> 14) & 0x3
		size := (attr1 >> 14) & 0x3
		dims := objShapeSize[shape][size]

		yPos := int(attr0 & 0xFF)
		xPos := int(attr1 & 0x1FF)

		data.Sprites = append(data.Sprites, SpriteInfo{
			Index:     i,
			X:         xPos,
			Y:         yPos,
			Width:     dims[0],
			Height:    dims[1],
			TileIndex: int(attr2 & 0x3FF),
			Priority:  int((attr2 >> 10) & 0x3),
			HFlip:     attr1&(1<<12) != 0,
			VFlip:     attr1&(1<<13) != 0,
			EightBpp:  attr0&(1<<13) != 0,
			Disabled:  objMode == 2,
		})
	}
	return data
}

// CompleteDebugData bundles every debug-overlay section the terminal
// front end draws in a single pass.
type CompleteDebugData struct {
	CPU *CPUState
	OAM *OAMData
	IE  uint16
	IF  uint16
	IME uint16
}

// Source is the narrow view of an Emulator this package extracts debug
// data from, kept as an interface (rather than importing gba) so gba's
// import of this package for its terminal overlay hook doesn't cycle.
type Source interface {
	OAM() []byte
	CurrentLine() int
	IE() uint16
	IF() uint16
	IME() uint16
	CPUState() CPUState
}

// Snapshot gathers a CompleteDebugData from e for one overlay redraw.
func Snapshot(e Source) *CompleteDebugData {
	cpu := e.CPUState()
	return &CompleteDebugData{
		CPU: &cpu,
		OAM: ExtractOAMData(e.OAM(), e.CurrentLine()),
		IE:  e.IE(),
		IF:  e.IF(),
		IME: e.IME(),
	}
}
