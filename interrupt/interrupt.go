// Package interrupt implements the GBA's interrupt controller: IE/IF/IME,
// DISPSTAT/VCOUNT, and IRQ-pending evaluation (§4.2), grounded on the
// teacher's STAT/LY state machine in jeebie/video/gpu.go generalized to
// the GBA's richer DISPSTAT/VCOUNT pair.
package interrupt

import "github.com/tholstrup/gbacore/addr"

// DISPSTAT bit positions (§3).
const (
	dispstatVBlank      uint16 = 1 << 0
	dispstatHBlank      uint16 = 1 << 1
	dispstatVCount      uint16 = 1 << 2
	dispstatVBlankIRQ   uint16 = 1 << 3
	dispstatHBlankIRQ   uint16 = 1 << 4
	dispstatVCountIRQ   uint16 = 1 << 5
	dispstatVCountShift        = 8
)

// Controller owns IE/IF/IME and DISPSTAT/VCOUNT, per spec.md §3/§4.2.
type Controller struct {
	ie   uint16
	if_  uint16
	ime  uint16
	stat uint16
	line uint16 // VCOUNT
	prev uint16 // previous VCOUNT, for edge detection
}

// Reset restores power-on values: IE/IF/IME/DISPSTAT all zero, VCOUNT at 0.
func (c *Controller) Reset() {
	*c = Controller{}
}

// Raise sets the given IF bits, matching the Bus's "raise(flag_mask)" contract.
func (c *Controller) Raise(flags addr.Interrupt) {
	c.if_ |= uint16(flags)
}

// Acknowledge implements the IF-write "clear bits set in value" semantics
// (§4.1): writing IF never stores, it clears the acknowledged bits.
func (c *Controller) Acknowledge(value uint16) {
	c.if_ &^= value
}

// Pending reports whether an enabled, unmasked interrupt is outstanding:
// IME.0 && (IE & IF) != 0.
func (c *Controller) Pending() bool {
	return c.ime&1 != 0 && c.ie&c.if_ != 0
}

// HaltTrigger reports whether IE & IF != 0, ignoring IME — real hardware
// releases HALT on this condition even when IME/CPSR.I would still mask
// actual IRQ entry (§5).
func (c *Controller) HaltTrigger() bool {
	return c.ie&c.if_ != 0
}

// IE/IF/IME register accessors, used by the Bus's MMIO dispatch.
func (c *Controller) IE() uint16  { return c.ie }
func (c *Controller) IF() uint16  { return c.if_ }
func (c *Controller) IME() uint16 { return c.ime }

func (c *Controller) SetIE(v uint16)  { c.ie = v }
func (c *Controller) SetIME(v uint16) { c.ime = v & 1 }

// DISPSTAT returns the live flags+enables+VCount-compare register.
func (c *Controller) DISPSTAT() uint16 { return c.stat }

// SetDISPSTAT writes the enable bits and the VCount-compare value; the
// three live status bits (0-2) are read-only from the bus's point of view
// and are managed by TickScanline.
func (c *Controller) SetDISPSTAT(v uint16) {
	const writable = dispstatVBlankIRQ | dispstatHBlankIRQ | dispstatVCountIRQ | 0xFF00
	c.stat = (c.stat &^ writable) | (v & writable)
}

// VCOUNT returns the current scanline (0-227).
func (c *Controller) VCOUNT() uint16 { return c.line }

// TickScanline advances VCOUNT to line and updates the VBlank/VCount-match
// status bits and their IRQs, per §4.2's contract. The caller (the root
// frame loop) calls this once per scanline, in line order 0..227.
func (c *Controller) TickScanline(line int) {
	c.prev = c.line
	c.line = uint16(line)

	switch {
	case c.line == 160:
		c.stat |= dispstatVBlank
		if c.stat&dispstatVBlankIRQ != 0 {
			c.Raise(addr.IntVBlank)
		}
	case c.line == 0:
		c.stat &^= dispstatVBlank
	}

	compare := (c.stat >> dispstatVCountShift) & 0xFF
	if c.line == compare {
		c.stat |= dispstatVCount
		if c.stat&dispstatVCountIRQ != 0 {
			c.Raise(addr.IntVCount)
		}
	} else {
		c.stat &^= dispstatVCount
	}
}

// RaiseHBlank sets the HBlank status bit and fires its IRQ if enabled; the
// root frame loop (gba.Emulator.Step) calls this once per visible
// scanline after the visible portion has been
// consumed by the CPU, per §4.2 ("HBlank raising is driven after the CPU
// has consumed the visible portion of the scanline").
func (c *Controller) RaiseHBlank() {
	c.stat |= dispstatHBlank
	if c.stat&dispstatHBlankIRQ != 0 {
		c.Raise(addr.IntHBlank)
	}
}

// ClearHBlank clears the HBlank status bit at the start of the next scanline.
func (c *Controller) ClearHBlank() {
	c.stat &^= dispstatHBlank
}

// Snapshot is the controller's full serializable state (§6's "interrupts"
// save-state field).
type Snapshot struct {
	IE, IF, IME, Stat, Line, Prev uint16
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{c.ie, c.if_, c.ime, c.stat, c.line, c.prev}
}

func (c *Controller) Restore(s Snapshot) {
	c.ie, c.if_, c.ime, c.stat, c.line, c.prev = s.IE, s.IF, s.IME, s.Stat, s.Line, s.Prev
}
