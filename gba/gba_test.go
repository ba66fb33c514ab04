package gba

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testROM() []byte {
	return make([]byte, 0x200) // zeroed header + zeroed code, all condition-failing NOPs
}

func TestStepProducesOneFrameAndAdvancesVCOUNT(t *testing.T) {
	emu, err := New(testROM())
	require.NoError(t, err)

	assert.Equal(t, uint64(0), emu.FrameCount())

	emu.Step(0)

	assert.Equal(t, uint64(1), emu.FrameCount())
	assert.NotNil(t, emu.Screen())
	assert.Equal(t, uint16(scanlinesPerFrame-1), emu.ic.VCOUNT(), "VCOUNT ends the frame on its last scanline")
}

func TestResetPreservesROMButReinitializesState(t *testing.T) {
	rom := testROM()
	rom[0x1FC] = 0xA5 // marker byte; the word 0x000000A5 still fails its EQ condition
	emu, err := New(rom)
	require.NoError(t, err)

	emu.Step(0)
	emu.Step(0)
	require.Equal(t, uint64(2), emu.FrameCount())

	emu.Reset()

	assert.Equal(t, uint64(0), emu.FrameCount())
	assert.Equal(t, byte(0xA5), emu.ReadByte(0x080001FC), "ROM is still mapped after Reset")
}

func TestSaveStateRoundTripPreservesFrameCount(t *testing.T) {
	emu, err := New(testROM())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		emu.Step(0)
	}

	var buf bytes.Buffer
	require.NoError(t, emu.SaveState(&buf))

	fresh, err := New(testROM())
	require.NoError(t, err)
	require.NoError(t, fresh.LoadState(bytes.NewReader(buf.Bytes())))

	assert.Equal(t, emu.FrameCount(), fresh.FrameCount())
}

func TestLoadStateRejectsBadMagic(t *testing.T) {
	emu, err := New(testROM())
	require.NoError(t, err)

	err = emu.LoadState(bytes.NewReader([]byte{1, 2, 3, 4}))
	assert.Error(t, err)
}

func TestButtonMaskReachesKeyInput(t *testing.T) {
	emu, err := New(testROM())
	require.NoError(t, err)

	emu.Step(1) // ButtonA bit

	assert.Zero(t, emu.bus.KeyInput()&1, "pressed button should read as 0 (active-low)")
}
