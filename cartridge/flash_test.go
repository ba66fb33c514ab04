package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func unlock(f *Flash) {
	f.Write8(0x5555, 0xAA)
	f.Write8(0x2AAA, 0x55)
}

func TestIdentificationSequence(t *testing.T) {
	f := NewFlash()

	unlock(f)
	f.Write8(0x5555, 0x90)

	assert.Equal(t, byte(manufacturerID), f.Read8(0))
	assert.Equal(t, byte(deviceID), f.Read8(1))

	unlock(f)
	f.Write8(0x5555, 0xF0)

	assert.Equal(t, byte(0xFF), f.Read8(0), "exiting ID mode should expose plain backing data again")
}

func TestByteProgramOnlyClearsBits(t *testing.T) {
	f := NewFlash()
	f.data[0x100] = 0xFF

	unlock(f)
	f.Write8(0x5555, 0xA0) // byte-program command
	f.Write8(0x100, 0x3C)

	assert.Equal(t, byte(0x3C), f.Read8(0x100))

	// Programming again with a mask that would try to set bits must not
	// un-clear already-cleared bits (flash can only clear, never set).
	unlock(f)
	f.Write8(0x5555, 0xA0)
	f.Write8(0x100, 0xFF)

	assert.Equal(t, byte(0x3C), f.Read8(0x100))
}

func TestChipEraseRestoresAllFF(t *testing.T) {
	f := NewFlash()
	f.data[0x10] = 0x00
	f.data[0x1000] = 0x00

	unlock(f)
	f.Write8(0x5555, 0x80) // erase-prefix
	unlock(f)
	f.Write8(0x5555, 0x10) // chip erase

	assert.Equal(t, byte(0xFF), f.Read8(0x10))
	assert.Equal(t, byte(0xFF), f.Read8(0x1000))
}

func TestSectorEraseOnlyClearsTargetSector(t *testing.T) {
	f := NewFlash()
	f.data[0x5000] = 0x00 // inside the sector containing the command address 0x5555
	f.data[0x6000] = 0x00 // a neighboring sector, must survive

	unlock(f)
	f.Write8(0x5555, 0x80) // erase-prefix
	unlock(f)
	f.Write8(0x5555, 0x30) // sector erase

	assert.Equal(t, byte(0xFF), f.Read8(0x5000))
	assert.Equal(t, byte(0x00), f.Read8(0x6000), "erase must not spill into neighboring sectors")
}
