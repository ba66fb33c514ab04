// Package timer implements the GBA's 4 cascading timer channels (§4.3),
// generalized from the teacher's single DIV/TIMA/TMA/TAC accumulator
// (jeebie/memory/timer.go) to 4 independent channels that may chain their
// overflows, per original_source/timer.c's model (see DESIGN.md).
package timer

import "github.com/tholstrup/gbacore/addr"

// prescalerTable maps TAC's 2-bit prescaler-select field to a cycle divisor.
var prescalerTable = [4]uint32{1, 64, 256, 1024}

const channelCount = 4

// Channel is one timer's live state (§3: "Timer state (x4)").
type Channel struct {
	reload  uint16
	counter uint16
	control uint16 // bit7 enable, bit2 cascade, bits 0-1 prescaler select, bit6 IRQ-enable
	clock   uint32 // internal accumulator of elapsed cycles since last tick
}

func (c *Channel) enabled() bool  { return c.control&(1<<7) != 0 }
func (c *Channel) cascade() bool  { return c.control&(1<<2) != 0 }
func (c *Channel) irqEnable() bool { return c.control&(1<<6) != 0 }
func (c *Channel) prescaler() uint32 {
	return prescalerTable[c.control&0x3]
}

// Bank owns the 4 timer channels and the interrupt sink they raise into.
type Bank struct {
	ch   [channelCount]Channel
	irqs func(addr.Interrupt)
}

// New creates a Bank that raises Timer0-3 interrupts through raise.
func New(raise func(addr.Interrupt)) *Bank {
	return &Bank{irqs: raise}
}

// Reset restores all four channels to power-on-zero.
func (b *Bank) Reset() {
	for i := range b.ch {
		b.ch[i] = Channel{}
	}
}

var timerIRQs = [channelCount]addr.Interrupt{
	addr.IntTimer0, addr.IntTimer1, addr.IntTimer2, addr.IntTimer3,
}

// Tick advances every enabled, non-cascaded channel by cycles elapsed
// cycles, per §4.3: "enabled timers accumulate clock += cycles; while
// clock >= prescaler, subtract prescaler and increment counter; on
// overflow, reload, raise IRQ, and tick a cascaded next channel by one."
func (b *Bank) Tick(cycles uint32) {
	for i := range b.ch {
		ch := &b.ch[i]
		if !ch.enabled() || ch.cascade() {
			continue
		}
		b.tickChannel(i, cycles)
	}
}

// tickChannel advances channel i's accumulator, overflowing (and cascading
// into i+1) as many times as the elapsed cycles demand.
func (b *Bank) tickChannel(i int, cycles uint32) {
	ch := &b.ch[i]
	ch.clock += cycles
	presc := ch.prescaler()
	for ch.clock >= presc {
		ch.clock -= presc
		ch.counter++
		if ch.counter == 0 {
			b.overflow(i)
		}
	}
}

// overflow reloads channel i, raises its IRQ if enabled, and — if channel
// i+1 exists and is in cascade mode — ticks it by exactly one count
// (chained overflows propagate through consecutive cascade ticks, per
// original_source/timer.c's "later version" model; see DESIGN.md).
func (b *Bank) overflow(i int) {
	ch := &b.ch[i]
	ch.counter = ch.reload
	if ch.irqEnable() && b.irqs != nil {
		b.irqs(timerIRQs[i])
	}
	if i+1 < channelCount {
		next := &b.ch[i+1]
		if next.enabled() && next.cascade() {
			next.counter++
			if next.counter == 0 {
				b.overflow(i + 1)
			}
		}
	}
}

// ReadCounter returns channel i's live counter value (§4.3: "Reading the
// counter must return the live, accumulator-accurate value" — the
// accumulator above keeps counter itself always current, so this is a
// direct read).
func (b *Bank) ReadCounter(i int) uint16 { return b.ch[i].counter }

// ReadControl returns channel i's control word.
func (b *Bank) ReadControl(i int) uint16 { return b.ch[i].control }

// WriteReload sets channel i's reload register (TMxCNT_L).
func (b *Bank) WriteReload(i int, value uint16) {
	b.ch[i].reload = value
}

// WriteControl sets channel i's control register (TMxCNT_H), latching
// counter:=reload and resetting the accumulator on a 0->1 enable edge,
// per §4.3.
func (b *Bank) WriteControl(i int, value uint16) {
	ch := &b.ch[i]
	wasEnabled := ch.enabled()
	ch.control = value & 0xC7
	if !wasEnabled && ch.enabled() {
		ch.counter = ch.reload
		ch.clock = 0
	}
}

// ChannelSnapshot is one channel's serializable state. Channel itself keeps
// its fields unexported, so encoding/binary (which reaches leaf fields via
// reflection) needs this exported mirror to decode into — matching the
// approach cpu.Snapshot uses for the CPU's own private register state.
type ChannelSnapshot struct {
	Reload  uint16
	Counter uint16
	Control uint16
	Clock   uint32
}

// Snapshot is the bank's full serializable state (§6's "timers" field).
type Snapshot struct {
	Channels [channelCount]ChannelSnapshot
}

func (b *Bank) Snapshot() Snapshot {
	var s Snapshot
	for i, ch := range b.ch {
		s.Channels[i] = ChannelSnapshot{ch.reload, ch.counter, ch.control, ch.clock}
	}
	return s
}

func (b *Bank) Restore(s Snapshot) {
	for i, cs := range s.Channels {
		b.ch[i] = Channel{reload: cs.Reload, counter: cs.Counter, control: cs.Control, clock: cs.Clock}
	}
}
