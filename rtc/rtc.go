// Package rtc implements the bit-serial real-time-clock protocol carried
// over the cartridge GPIO pins (§3/§6), grounded almost directly on
// original_source/rtc.c — the teacher has no GB equivalent (the Game Boy's
// MBC3 RTC is a register-latch design, not a bit-serial GPIO protocol), so
// this is new code following the original's edge-detect state shape.
package rtc

// GPIO pin bit positions within the 16-bit GPIO data register (§3).
const (
	pinSCK = 1 << 0
	pinSIO = 1 << 1
	pinCS  = 1 << 2
)

// Chip is the RTC's bit-serial shift-register state machine.
type Chip struct {
	lastSCK, lastCS bool
	reading, writing bool
	bitIndex        int
	buffer          [8]byte
	command         byte

	baseTimestamp int64 // Unix time the RTC was "set" to

	// Now returns the current Unix time as supplied by the caller at
	// construction; overridable for deterministic tests. gba.New supplies
	// a clock fixed at 0, so its RTC reports zero elapsed time.
	Now func() int64
}

// New creates a Chip whose clock starts at now (a Unix timestamp) and
// advances using the nowFn callback on every read, matching rtc_update's
// continuous "elapsed = time(NULL) - base_timestamp" recomputation.
func New(now int64, nowFn func() int64) *Chip {
	return &Chip{baseTimestamp: now, Now: nowFn}
}

// Reset reinitializes the shift state (not the clock), per rtc_init's
// command-0x60 Reset behavior.
func (c *Chip) Reset() {
	c.lastSCK, c.lastCS = false, false
	c.reading, c.writing = false, false
	c.bitIndex = 0
	c.buffer = [8]byte{}
	c.command = 0
}

// elapsed returns the seconds since the RTC's base timestamp.
func (c *Chip) elapsed() int64 {
	if c.Now == nil {
		return 0
	}
	return c.Now() - c.baseTimestamp
}

// Seconds/Minutes/Hours/Days return the derived wall-clock fields, per
// rtc_update's elapsed-time decomposition.
func (c *Chip) Seconds() byte { return byte(c.elapsed() % 60) }
func (c *Chip) Minutes() byte { return byte((c.elapsed() / 60) % 60) }
func (c *Chip) Hours() byte   { return byte((c.elapsed() / 3600) % 24) }
func (c *Chip) Days() uint16  { return uint16(c.elapsed() / 86400) }

// ReadSIO returns the bit currently asserted on the SIO pin: the next
// outgoing bit from the buffer while in reading mode, 0 otherwise. The
// Bus merges this into GPIO data-register reads (§4.1).
func (c *Chip) ReadSIO() bool {
	if !c.reading || c.bitIndex >= 64 {
		return false
	}
	byteIdx, bitPos := c.bitIndex/8, c.bitIndex%8
	if byteIdx >= 8 {
		return false
	}
	return c.buffer[byteIdx]&(1<<uint(bitPos)) != 0
}

// WriteGPIO feeds one GPIO data-register write (the host's SCK/SIO/CS pin
// states), performing edge detection and the command-byte dispatch of
// rtc_gpio_write.
func (c *Chip) WriteGPIO(data uint16) {
	sck := data&pinSCK != 0
	sio := data&pinSIO != 0
	cs := data&pinCS != 0

	if cs && !c.lastCS {
		c.bitIndex = 0
		c.reading = false
		c.writing = true
		c.buffer = [8]byte{}
	}
	if !cs && c.lastCS {
		c.reading = false
		c.writing = false
	}

	if sck && !c.lastSCK && cs {
		switch {
		case c.writing && c.bitIndex < 64:
			c.shiftIn(sio)
		case c.reading && c.bitIndex < 64:
			c.bitIndex++
		}
	}

	c.lastSCK, c.lastCS = sck, cs
}

// shiftIn clocks one bit into the buffer and, once a full command byte has
// arrived, dispatches it (read-time / read-status / reset), per
// rtc_gpio_write's bit_index==8 branch.
func (c *Chip) shiftIn(sio bool) {
	byteIdx, bitPos := c.bitIndex/8, c.bitIndex%8
	if byteIdx < 8 {
		if sio {
			c.buffer[byteIdx] |= 1 << uint(bitPos)
		} else {
			c.buffer[byteIdx] &^= 1 << uint(bitPos)
		}
	}
	c.bitIndex++

	if c.bitIndex == 8 {
		c.command = c.buffer[0]
		c.dispatchCommand()
	}
}

func (c *Chip) dispatchCommand() {
	switch c.command & 0x0F {
	case 0x06: // read time/date
		c.reading, c.writing = true, false
		c.buffer = [8]byte{
			c.Seconds(), c.Minutes(), c.Hours(),
			byte(c.Days()), byte(c.Days() >> 8),
			0, // day of week
			0, // control
			0, // status
		}
		c.bitIndex = 0
	case 0x02: // read status
		c.reading, c.writing = true, false
		c.buffer[0] = 0
		c.bitIndex = 0
	case 0x00: // reset
		base, now := c.baseTimestamp, c.Now
		c.Reset()
		c.baseTimestamp, c.Now = base, now
	}
}

// Snapshot is the chip's serializable shift-register and clock-base state
// (§6's "rtc" save-state field). Now is not serialized; Restore leaves
// the caller's existing callback in place.
type Snapshot struct {
	LastSCK, LastCS   bool
	Reading, Writing  bool
	BitIndex          int32 // encoding/binary requires a fixed-size type, not platform int
	Buffer            [8]byte
	Command           byte
	BaseTimestamp     int64
}

func (c *Chip) Snapshot() Snapshot {
	return Snapshot{c.lastSCK, c.lastCS, c.reading, c.writing, int32(c.bitIndex), c.buffer, c.command, c.baseTimestamp}
}

func (c *Chip) Restore(s Snapshot) {
	c.lastSCK, c.lastCS = s.LastSCK, s.LastCS
	c.reading, c.writing = s.Reading, s.Writing
	c.bitIndex = int(s.BitIndex)
	c.buffer = s.Buffer
	c.command = s.Command
	c.baseTimestamp = s.BaseTimestamp
}
