package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOAMDataDecodesShapeAndPosition(t *testing.T) {
	oam := make([]byte, 128*8)

	// Sprite 0: attr0 = Y=50, square shape; attr1 = X=30, size=1 (16x16),
	// H-flip; attr2 = tile 0x10, priority 2.
	oam[0] = 50
	oam[1] = 0x00
	oam[2] = 30
	oam[3] = 0x50
	oam[4] = 0x10
	oam[5] = 0x08

	data := ExtractOAMData(oam, 55)

	assert.Len(t, data.Sprites, 128)
	assert.Equal(t, 55, data.CurrentLine)

	s0 := data.Sprites[0]
	assert.Equal(t, 0, s0.Index)
	assert.Equal(t, 50, s0.Y)
	assert.Equal(t, 30, s0.X)
	assert.Equal(t, 16, s0.Width)
	assert.Equal(t, 16, s0.Height)
	assert.Equal(t, 0x10, s0.TileIndex)
	assert.Equal(t, 2, s0.Priority)
	assert.True(t, s0.HFlip)
}

func TestExtractOAMDataDisabledWhenObjModeHidden(t *testing.T) {
	oam := make([]byte, 128*8)
	oam[0] = 0
	oam[1] = 0x02 // attr0 high byte, bits 0-1 = objMode = 2 (hidden)

	data := ExtractOAMData(oam, 0)

	assert.True(t, data.Sprites[0].Disabled)
}
