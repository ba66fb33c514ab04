// Package addr names the GBA's memory regions and MMIO register offsets,
// mirroring the single "table of named constants" convention the teacher
// uses for the Game Boy's much smaller register set.
package addr

// Region base addresses (§3 of the spec).
const (
	BIOSBase    uint32 = 0x00000000
	BIOSSize    uint32 = 16 * 1024
	EWRAMBase   uint32 = 0x02000000
	EWRAMSize   uint32 = 256 * 1024
	EWRAMMirror uint32 = 0x03000000
	IWRAMBase   uint32 = 0x03000000
	IWRAMSize   uint32 = 32 * 1024
	MMIOBase    uint32 = 0x04000000
	MMIOSize    uint32 = 1 * 1024
	PaletteBase uint32 = 0x05000000
	PaletteSize uint32 = 1 * 1024
	VRAMBase    uint32 = 0x06000000
	VRAMSize    uint32 = 96 * 1024
	VRAMSlot    uint32 = 128 * 1024
	OAMBase     uint32 = 0x07000000
	OAMSize     uint32 = 1 * 1024
	ROMBase     uint32 = 0x08000000
	ROMMax      uint32 = 32 * 1024 * 1024
	SRAMBase    uint32 = 0x0E000000
	SRAMSize    uint32 = 128 * 1024
)

// Cartridge GPIO/RTC overlay addresses (§4.1).
const (
	GPIODataAddr      uint32 = 0x080000C4
	GPIODirectionAddr uint32 = 0x080000C6
	GPIOControlAddr   uint32 = 0x080000C8
)

// Display/DMA/timer/interrupt MMIO register offsets from MMIOBase.
const (
	DISPCNT  uint32 = 0x000
	DISPSTAT uint32 = 0x004
	VCOUNT   uint32 = 0x006

	BG0CNT uint32 = 0x008
	BG1CNT uint32 = 0x00A
	BG2CNT uint32 = 0x00C
	BG3CNT uint32 = 0x00E

	BG0HOFS uint32 = 0x010
	BG0VOFS uint32 = 0x012
	BG1HOFS uint32 = 0x014
	BG1VOFS uint32 = 0x016
	BG2HOFS uint32 = 0x018
	BG2VOFS uint32 = 0x01A
	BG3HOFS uint32 = 0x01C
	BG3VOFS uint32 = 0x01E

	BG2PA uint32 = 0x020
	BG2PB uint32 = 0x022
	BG2PC uint32 = 0x024
	BG2PD uint32 = 0x026
	BG2X  uint32 = 0x028
	BG2Y  uint32 = 0x02C

	BG3PA uint32 = 0x030
	BG3PB uint32 = 0x032
	BG3PC uint32 = 0x034
	BG3PD uint32 = 0x036
	BG3X  uint32 = 0x038
	BG3Y  uint32 = 0x03C

	WIN0H  uint32 = 0x040
	WIN1H  uint32 = 0x042
	WIN0V  uint32 = 0x044
	WIN1V  uint32 = 0x046
	WININ  uint32 = 0x048
	WINOUT uint32 = 0x04A

	BLDCNT  uint32 = 0x050
	BLDALPHA uint32 = 0x052
	BLDY    uint32 = 0x054

	SOUNDBIAS uint32 = 0x088

	DMA0SAD uint32 = 0x0B0
	DMA0DAD uint32 = 0x0B4
	DMA0CNT uint32 = 0x0B8
	DMA1SAD uint32 = 0x0BC
	DMA1DAD uint32 = 0x0C0
	DMA1CNT uint32 = 0x0C4
	DMA2SAD uint32 = 0x0C8
	DMA2DAD uint32 = 0x0CC
	DMA2CNT uint32 = 0x0D0
	DMA3SAD uint32 = 0x0D4
	DMA3DAD uint32 = 0x0D8
	DMA3CNT uint32 = 0x0DC

	TM0CNT_L uint32 = 0x100
	TM0CNT_H uint32 = 0x102
	TM1CNT_L uint32 = 0x104
	TM1CNT_H uint32 = 0x106
	TM2CNT_L uint32 = 0x108
	TM2CNT_H uint32 = 0x10A
	TM3CNT_L uint32 = 0x10C
	TM3CNT_H uint32 = 0x10E

	KEYINPUT uint32 = 0x130

	IE      uint32 = 0x200
	IF      uint32 = 0x202
	WAITCNT uint32 = 0x204
	IME     uint32 = 0x208

	POSTFLG uint32 = 0x300
	HALTCNT uint32 = 0x301
)

// Interrupt is a bitmask identifying one of the GBA's interrupt sources,
// matching IE/IF bit layout.
type Interrupt uint16

const (
	IntVBlank  Interrupt = 1 << 0
	IntHBlank  Interrupt = 1 << 1
	IntVCount  Interrupt = 1 << 2
	IntTimer0  Interrupt = 1 << 3
	IntTimer1  Interrupt = 1 << 4
	IntTimer2  Interrupt = 1 << 5
	IntTimer3  Interrupt = 1 << 6
	IntSerial  Interrupt = 1 << 7
	IntDMA0    Interrupt = 1 << 8
	IntDMA1    Interrupt = 1 << 9
	IntDMA2    Interrupt = 1 << 10
	IntDMA3    Interrupt = 1 << 11
	IntKeypad  Interrupt = 1 << 12
	IntGamePak Interrupt = 1 << 13
)

// Button is a bit position in the 10-bit button mask (§6).
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonR
	ButtonL
)

// ButtonMaskBits is the number of meaningful low bits of the button mask.
const ButtonMaskBits = 10
