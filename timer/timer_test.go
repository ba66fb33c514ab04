package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tholstrup/gbacore/addr"
)

func TestWriteControlLatchesReloadOnEnableEdge(t *testing.T) {
	b := New(nil)
	b.WriteReload(0, 0xFFF0)
	b.WriteControl(0, 0x80) // enable, prescaler /1

	assert.Equal(t, uint16(0xFFF0), b.ReadCounter(0))
}

func TestTickOverflowReloadsAndRaisesIRQ(t *testing.T) {
	var raised []addr.Interrupt
	b := New(func(i addr.Interrupt) { raised = append(raised, i) })

	b.WriteReload(0, 0xFFFE)
	b.WriteControl(0, 0x80|0x40) // enable, IRQ enable, prescaler /1

	b.Tick(3) // 0xFFFE -> FFFF -> overflow -> reload to 0xFFFE, one more tick consumed

	assert.Equal(t, []addr.Interrupt{addr.IntTimer0}, raised)
	assert.Equal(t, uint16(0xFFFE+1), b.ReadCounter(0))
}

func TestCascadeChainPropagatesOnOverflow(t *testing.T) {
	b := New(nil)

	b.WriteReload(0, 0xFFFF)
	b.WriteControl(0, 0x80) // timer0 enabled, free-running, /1

	b.WriteReload(1, 0)
	b.WriteControl(1, 0x80|0x04) // timer1 enabled + cascade

	b.Tick(1) // timer0: FFFF -> 0 -> overflow, reloads to FFFF, cascades into timer1

	assert.Equal(t, uint16(0xFFFF), b.ReadCounter(0))
	assert.Equal(t, uint16(1), b.ReadCounter(1), "cascaded channel should advance by one on overflow")
}

func TestCascadedChannelIgnoredByPlainTick(t *testing.T) {
	b := New(nil)
	b.WriteControl(1, 0x80|0x04) // enabled + cascade, never ticked directly

	b.Tick(100000)

	assert.Equal(t, uint16(0), b.ReadCounter(1))
}

func TestSnapshotRoundTrip(t *testing.T) {
	b := New(nil)
	b.WriteReload(2, 0x1234)
	b.WriteControl(2, 0x81)
	b.Tick(500)

	snap := b.Snapshot()
	restored := New(nil)
	restored.Restore(snap)

	assert.Equal(t, b.ReadCounter(2), restored.ReadCounter(2))
	assert.Equal(t, b.ReadControl(2), restored.ReadControl(2))
}
