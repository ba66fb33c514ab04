package bus

import "github.com/tholstrup/gbacore/addr"

// writeGPIOByte handles one byte write to the GPIO data/direction/control
// overlay at 0x080000C4-C9 (§4.1). Writes to the data register forward
// the merged 16-bit word to the RTC; writes to direction/control are
// simply stored.
func (b *Bus) writeGPIOByte(off uint32, value uint8) {
	switch off &^ 1 {
	case addr.GPIODataAddr & 0xFFFFFF:
		b.gpioData = setByte(b.gpioData, off&1 == 1, value)
		if b.rtcChip != nil {
			b.rtcChip.WriteGPIO(b.gpioData)
		}
	case addr.GPIODirectionAddr & 0xFFFFFF:
		b.gpioDir = setByte(b.gpioDir, off&1 == 1, value)
	case addr.GPIOControlAddr & 0xFFFFFF:
		b.gpioControl = setByte(b.gpioControl, off&1 == 1, value)
	}
}

func setByte(word uint16, high bool, value uint8) uint16 {
	if high {
		return word&0x00FF | uint16(value)<<8
	}
	return word&0xFF00 | uint16(value)
}

// gpioDataByte returns one byte of the GPIO data register merged with the
// bit the RTC currently asserts on SIO (§4.1: "reads return the GPIO data
// register merged with the bit RTC currently asserts on SIO").
func (b *Bus) gpioDataByte(high bool) uint8 {
	data := b.gpioData
	if b.rtcChip != nil && b.rtcChip.ReadSIO() {
		data |= 0x02 // SIO pin bit
	}
	if high {
		return uint8(data >> 8)
	}
	return uint8(data)
}
