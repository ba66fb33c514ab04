package cartridge

// Flash implements the 128 KiB Macronix MX29L1011 Flash state machine
// described in spec.md §4.1/§6: the 0xAA/0x55 unlock sequence, ID mode,
// byte-program mode, and erase-prefix. Built fresh in the teacher's
// plain-struct-with-explicit-state-field style (no GB equivalent — GB
// MBCs are bank-switch registers, not a JEDEC command state machine).
type Flash struct {
	data [flashSize]byte

	idMode     bool
	eraseArmed bool
	programArmed bool
	step       int // progress through the 0xAA@5555/0x55@2AAA unlock pair
}

const flashSize = 128 * 1024

const (
	manufacturerID = 0xC2
	deviceID       = 0x09
)

// NewFlash creates a Flash chip with every byte at the documented default
// value 0xFF (§6).
func NewFlash() *Flash {
	f := &Flash{}
	for i := range f.data {
		f.data[i] = 0xFF
	}
	return f
}

// Read8 returns the ID bytes while in ID mode (offset 0/1), otherwise the
// backing byte at offset.
func (f *Flash) Read8(offset uint32) byte {
	if f.idMode {
		switch offset {
		case 0:
			return manufacturerID
		case 1:
			return deviceID
		}
	}
	if int(offset) >= len(f.data) {
		return 0xFF
	}
	return f.data[offset]
}

// Write8 feeds one byte of the command protocol (or a data byte, if a
// program/erase command has already been armed) at the given SRAM-relative
// offset, per §4.1/§6's unlock sequence and command bytes.
func (f *Flash) Write8(offset uint32, value byte) {
	if f.programArmed {
		if int(offset) < len(f.data) {
			f.data[offset] &= value // flash program can only clear bits
		}
		f.programArmed = false
		return
	}

	if f.eraseArmed && f.step == 2 && offset == 0x5555 && (value == 0x10 || value == 0x30) {
		f.handleErase(offset, value)
		f.step = 0
		return
	}

	switch {
	case f.step == 0 && offset == 0x5555 && value == 0xAA:
		f.step = 1
		return
	case f.step == 1 && offset == 0x2AAA && value == 0x55:
		f.step = 2
		return
	case f.step == 2 && offset == 0x5555:
		f.dispatchCommand(value)
		f.step = 0
		return
	}
	f.step = 0
}

func (f *Flash) dispatchCommand(cmd byte) {
	switch cmd {
	case 0x90: // enter ID mode
		f.idMode = true
	case 0xF0: // exit ID mode / reset
		f.idMode = false
		f.eraseArmed = false
	case 0xA0: // byte-program: the next write anywhere programs that byte
		f.programArmed = true
	case 0x80: // erase-prefix: the following unlock+command selects erase scope
		f.eraseArmed = true
	}
}

// handleErase implements the second half of an erase sequence once a
// fresh unlock pair has armed it: 0x10 at 0x5555 erases the whole chip,
// 0x30 erases the 4 KiB sector containing offset.
func (f *Flash) handleErase(offset uint32, value byte) {
	if value == 0x10 {
		for i := range f.data {
			f.data[i] = 0xFF
		}
	} else {
		sectorBase := offset &^ 0xFFF
		for i := uint32(0); i < 0x1000 && int(sectorBase+i) < len(f.data); i++ {
			f.data[sectorBase+i] = 0xFF
		}
	}
	f.eraseArmed = false
}

// Bytes exposes the raw backing store, for save-state serialization.
func (f *Flash) Bytes() []byte { return f.data[:] }
