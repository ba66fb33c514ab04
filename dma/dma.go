// Package dma implements the GBA's 4 DMA channels (§4.3), grounded on
// original_source/dma.c's enable-edge snapshot and reload/repeat model;
// the teacher has no multi-channel DMA (GB only has the fixed OAM DMA
// handled directly in jeebie/memory/mem.go), so the channel/priority
// shape here is new code in the same explicit-state-struct style.
package dma

import "github.com/tholstrup/gbacore/addr"

// StartTiming is the 2-bit start-mode field (§3).
type StartTiming uint8

const (
	TimingImmediate StartTiming = iota
	TimingVBlank
	TimingHBlank
	TimingSpecial
)

// step is the 2-bit source/destination address-control field; for the
// destination, 3 means increment-with-reload ("increment, and re-snapshot
// dest on repeat").
type step uint8

const (
	stepIncrement step = iota
	stepDecrement
	stepFixed
	stepReload
)

const channelCount = 4

// Channel is one DMA channel's register + snapshot state (§3).
type Channel struct {
	src, dst uint32
	count    uint32
	control  uint16

	curSrc, curDst uint32
	curCount       uint32
	running        bool
}

func (c *Channel) enabled() bool      { return c.control&(1<<15) != 0 }
func (c *Channel) irqEnable() bool    { return c.control&(1<<14) != 0 }
func (c *Channel) repeat() bool       { return c.control&(1<<9) != 0 }
func (c *Channel) word32() bool       { return c.control&(1<<10) != 0 }
func (c *Channel) destStep() step     { return step((c.control >> 5) & 0x3) }
func (c *Channel) srcStep() step      { return step((c.control >> 7) & 0x3) }
func (c *Channel) timing(chanIndex int) StartTiming {
	return StartTiming((c.control >> 12) & 0x3)
}

// Bus is the narrow memory interface DMA transfers need.
type Bus interface {
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
}

// Controller owns the 4 DMA channels and raises their completion IRQs.
type Controller struct {
	ch   [channelCount]Channel
	bus  Bus
	irqs func(addr.Interrupt)
}

var dmaIRQs = [channelCount]addr.Interrupt{
	addr.IntDMA0, addr.IntDMA1, addr.IntDMA2, addr.IntDMA3,
}

// New creates a Controller wired to bus for transfers and raise for IRQs.
func New(bus Bus, raise func(addr.Interrupt)) *Controller {
	return &Controller{bus: bus, irqs: raise}
}

// Reset clears all 4 channels.
func (d *Controller) Reset() {
	for i := range d.ch {
		d.ch[i] = Channel{}
	}
}

// WriteSAD/WriteDAD set the full 32-bit source/dest register; the Bus
// reassembles that value from its halfword-granular MMIO writes.
func (d *Controller) WriteSAD(i int, value uint32) { d.ch[i].src = value }
func (d *Controller) WriteDAD(i int, value uint32) { d.ch[i].dst = value }

// WriteCount sets the 16-bit word-count register.
func (d *Controller) WriteCount(i int, value uint16) {
	d.ch[i].count = uint32(value)
}

// WriteControl sets the 16-bit control register. A 0->1 transition of the
// enable bit snapshots source/dest/count and, for TimingImmediate, starts
// the transfer synchronously (§4.1: "writing DMA control with the enable
// bit transitioning 0->1 snapshots ... and schedules the transfer per the
// start-mode").
func (d *Controller) WriteControl(i int, value uint16) {
	ch := &d.ch[i]
	wasEnabled := ch.enabled()
	ch.control = value

	if !wasEnabled && ch.enabled() {
		d.snapshot(i)
		if ch.timing(i) == TimingImmediate {
			d.execute(i)
		}
	}
}

// ReadControl returns channel i's control register (for read-back/debug).
func (d *Controller) ReadControl(i int) uint16 { return d.ch[i].control }

// snapshot latches source/dest/count at enable time (§8's "DMA snapshot"
// invariant: later writes to the live registers don't perturb a pending
// non-repeat transfer).
func (d *Controller) snapshot(i int) {
	ch := &d.ch[i]
	ch.curSrc = ch.src
	ch.curDst = ch.dst
	count := ch.count
	if count == 0 {
		if i == 3 {
			count = 0x10000
		} else {
			count = 0x4000
		}
	}
	ch.curCount = count
	ch.running = true
}

// TriggerVBlank/TriggerHBlank/TriggerSpecial fire all enabled, running
// channels whose start-timing matches the given event; called by the root
// frame loop at the corresponding scanline events (§5: "DMA triggers fire
// before CPU execution of that scanline").
func (d *Controller) TriggerVBlank()  { d.triggerAll(TimingVBlank) }
func (d *Controller) TriggerHBlank()  { d.triggerAll(TimingHBlank) }
func (d *Controller) TriggerSpecial() { d.triggerAll(TimingSpecial) }

func (d *Controller) triggerAll(timing StartTiming) {
	for i := range d.ch {
		ch := &d.ch[i]
		if ch.running && ch.enabled() && ch.timing(i) == timing {
			d.execute(i)
		}
	}
}

// execute performs one complete transfer of channel i's snapshotted
// source/dest/count, then clears ENABLE (unless repeat is set) and raises
// the completion IRQ if enabled, per §4.3.
func (d *Controller) execute(i int) {
	ch := &d.ch[i]
	elemSize := uint32(2)
	if ch.word32() {
		elemSize = 4
	}

	src, dst := ch.curSrc, ch.curDst
	for n := uint32(0); n < ch.curCount; n++ {
		if ch.word32() {
			d.bus.Write32(dst, d.bus.Read32(src))
		} else {
			d.bus.Write16(dst, d.bus.Read16(src))
		}
		src = stepAddr(src, ch.srcStep(), elemSize)
		dst = stepAddr(dst, ch.destStep(), elemSize)
	}
	ch.curSrc = src

	if ch.destStep() == stepReload {
		ch.curDst = ch.dst
	} else {
		ch.curDst = dst
	}

	if ch.repeat() {
		count := ch.count
		if count == 0 {
			if i == 3 {
				count = 0x10000
			} else {
				count = 0x4000
			}
		}
		ch.curCount = count
	} else {
		ch.control &^= 1 << 15
		ch.running = false
	}

	if ch.irqEnable() && d.irqs != nil {
		d.irqs(dmaIRQs[i])
	}
}

// ChannelSnapshot is one channel's serializable state. Channel itself keeps
// its fields unexported, so encoding/binary (which reaches leaf fields via
// reflection) needs this exported mirror to decode into — matching the
// approach cpu.Snapshot uses for the CPU's own private register state.
type ChannelSnapshot struct {
	Src, Dst       uint32
	Count          uint32
	Control        uint16
	CurSrc, CurDst uint32
	CurCount       uint32
	Running        bool
}

// Snapshot is the controller's full serializable state (§6's "dma" field).
type Snapshot struct {
	Channels [channelCount]ChannelSnapshot
}

func (d *Controller) Snapshot() Snapshot {
	var s Snapshot
	for i, ch := range d.ch {
		s.Channels[i] = ChannelSnapshot{
			Src: ch.src, Dst: ch.dst, Count: ch.count, Control: ch.control,
			CurSrc: ch.curSrc, CurDst: ch.curDst, CurCount: ch.curCount, Running: ch.running,
		}
	}
	return s
}

func (d *Controller) Restore(s Snapshot) {
	for i, cs := range s.Channels {
		d.ch[i] = Channel{
			src: cs.Src, dst: cs.Dst, count: cs.Count, control: cs.Control,
			curSrc: cs.CurSrc, curDst: cs.CurDst, curCount: cs.CurCount, running: cs.Running,
		}
	}
}

func stepAddr(addr uint32, s step, elemSize uint32) uint32 {
	switch s {
	case stepIncrement, stepReload:
		return addr + elemSize
	case stepDecrement:
		return addr - elemSize
	default: // stepFixed
		return addr
	}
}
