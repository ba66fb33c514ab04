package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tholstrup/gbacore/addr"
)

func TestAcknowledgeClearsOnlyRequestedBits(t *testing.T) {
	var c Controller
	c.Raise(addr.IntVBlank)
	c.Raise(addr.IntTimer0)

	c.Acknowledge(uint16(addr.IntVBlank))

	assert.Equal(t, uint16(addr.IntTimer0), c.IF())
}

func TestPendingRequiresIMEAndMask(t *testing.T) {
	var c Controller
	c.Raise(addr.IntVBlank)
	c.SetIE(uint16(addr.IntVBlank))

	assert.False(t, c.Pending(), "IME still 0, nothing should be pending")

	c.SetIME(1)
	assert.True(t, c.Pending())
}

func TestHaltTriggerIgnoresIME(t *testing.T) {
	var c Controller
	c.Raise(addr.IntVBlank)
	c.SetIE(uint16(addr.IntVBlank))

	assert.False(t, c.Pending())
	assert.True(t, c.HaltTrigger(), "HaltTrigger must not require IME")
}

func TestTickScanlineRaisesVBlankAtLine160(t *testing.T) {
	var c Controller
	c.SetDISPSTAT(1 << 3) // VBlank IRQ enable

	c.TickScanline(160)

	assert.NotZero(t, c.DISPSTAT()&(1<<0), "VBlank status bit should be set")
	assert.Equal(t, uint16(addr.IntVBlank), c.IF())
}

func TestTickScanlineClearsVBlankAtLine0(t *testing.T) {
	var c Controller
	c.TickScanline(160)
	c.TickScanline(0)

	assert.Zero(t, c.DISPSTAT()&(1<<0))
}

func TestHBlankRaiseAndClear(t *testing.T) {
	var c Controller
	c.SetDISPSTAT(1 << 4) // HBlank IRQ enable

	c.RaiseHBlank()
	assert.NotZero(t, c.DISPSTAT()&(1<<1))
	assert.Equal(t, uint16(addr.IntHBlank), c.IF())

	c.ClearHBlank()
	assert.Zero(t, c.DISPSTAT()&(1<<1))
}

func TestSnapshotRoundTrip(t *testing.T) {
	var c Controller
	c.SetIE(0x1234)
	c.Raise(addr.IntVBlank)
	c.SetIME(1)
	c.TickScanline(42)

	snap := c.Snapshot()

	var restored Controller
	restored.Restore(snap)

	assert.Equal(t, c.IE(), restored.IE())
	assert.Equal(t, c.IF(), restored.IF())
	assert.Equal(t, c.IME(), restored.IME())
	assert.Equal(t, c.VCOUNT(), restored.VCOUNT())
}
