package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tholstrup/gbacore/addr"
)

func TestEWRAMMirroring(t *testing.T) {
	b := New()
	b.Write8(addr.EWRAMBase, 0x42)
	assert.Equal(t, uint8(0x42), b.Read8(addr.EWRAMBase+addr.EWRAMSize))
}

func TestIWRAMRegionMirrorsAt0x01(t *testing.T) {
	b := New()
	b.Write8(addr.IWRAMBase, 0x7E)
	assert.Equal(t, uint8(0x7E), b.Read8(0x01000000))
}

func TestOpenBusReadReturnsFF(t *testing.T) {
	b := New()
	assert.Equal(t, uint8(0xFF), b.Read8(0x10000000))
}

func TestMisaligned32BitReadRotates(t *testing.T) {
	b := New()
	b.Write8(addr.EWRAMBase, 0x11)
	b.Write8(addr.EWRAMBase+1, 0x22)
	b.Write8(addr.EWRAMBase+2, 0x33)
	b.Write8(addr.EWRAMBase+3, 0x44)

	word := b.Read32(addr.EWRAMBase)
	assert.Equal(t, uint32(0x44332211), word)

	rotated := b.Read32(addr.EWRAMBase + 1)
	assert.Equal(t, uint32(0x11443322), rotated)
}

func TestWrite16AlignsDown(t *testing.T) {
	b := New()
	b.Write16(addr.EWRAMBase+1, 0xBEEF)
	assert.Equal(t, uint8(0xEF), b.Read8(addr.EWRAMBase))
	assert.Equal(t, uint8(0xBE), b.Read8(addr.EWRAMBase+1))
}

func TestKeyInputIsActiveLow(t *testing.T) {
	b := New()
	assert.Equal(t, uint16(0x03FF), b.KeyInput())

	aMask := uint16(1) << uint(addr.ButtonA)
	b.SetButtons(aMask)
	assert.Equal(t, uint16(0x03FF)&^aMask, b.KeyInput())
}
