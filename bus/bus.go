// Package bus implements the GBA's address decode, region mirroring, MMIO
// dispatch, and open-bus policy (§4.1), generalized from the teacher's
// regionMap[256]memRegion high-byte-indexed dispatch table
// (jeebie/memory/mem.go) from GB's 16-bit address space to the GBA's 32-bit
// one (indexed by bits 27:24 instead of 15:8).
package bus

import (
	"log/slog"

	"github.com/tholstrup/gbacore/addr"
	"github.com/tholstrup/gbacore/cartridge"
	"github.com/tholstrup/gbacore/dma"
	"github.com/tholstrup/gbacore/interrupt"
	"github.com/tholstrup/gbacore/rtc"
	"github.com/tholstrup/gbacore/timer"
)

type region uint8

const (
	regionBIOS region = iota
	regionEWRAM
	regionIWRAM
	regionMMIO
	regionPalette
	regionVRAM
	regionOAM
	regionROM
	regionSRAM
	regionOpenBus
)

// maxWarnings bounds repeated absorbed-access log spam (§7: "Warnings are
// rate-limited to a bounded count and then suppressed").
const maxWarnings = 16

// PPURegs is the narrow view the Bus needs into the PPU's MMIO-visible
// registers. The interrupt controller, timers, DMA, Flash and RTC are
// wired in as concrete pointers (see Wire).
type PPURegs interface {
	ReadReg(offset uint32) uint16
	WriteReg(offset uint32, value uint16)
}

// Bus owns every RAM-backed region and dispatches MMIO to its sibling
// components (§3/§4.1). It is the single owner of all RAM buffers (§3:
// "Only the Bus owns RAM buffers; all other components borrow").
type Bus struct {
	bios   [addr.BIOSSize]byte
	ewram  [addr.EWRAMSize]byte
	iwram  [addr.IWRAMSize]byte
	mmio   [addr.MMIOSize]byte
	pal    [addr.PaletteSize]byte
	vram   [addr.VRAMSize]byte
	oam    [addr.OAMSize]byte
	rom    []byte
	regionMap [256]region

	ppu    PPURegs
	ic     *interrupt.Controller
	timers *timer.Bank
	dmac   *dma.Controller
	flash  *cartridge.Flash
	rtcChip *rtc.Chip

	keys uint16 // live button mask, active-high as received from Step

	gpioData, gpioDir, gpioControl uint16

	warnCount int
}

// New creates a Bus with empty RAM and no cartridge/peripherals wired yet;
// Wire must be called once the sibling components exist (the DMA
// controller is constructed after the Bus, since it transfers through it).
func New() *Bus {
	b := &Bus{}
	b.initRegionMap()
	for i := range b.bios {
		b.bios[i] = 0xFF // HLE: no real BIOS image, but reads are never 0x00 uninitialized garbage
	}
	// SWI vector: MOVS pc, lr (0xE1B0F00E), so an SWI that the CPU's HLE
	// table does not handle returns to the caller with its CPSR restored.
	b.bios[0x08], b.bios[0x09], b.bios[0x0A], b.bios[0x0B] = 0x0E, 0xF0, 0xB0, 0xE1
	return b
}

// Wire attaches the sibling components the Bus dispatches MMIO to.
func (b *Bus) Wire(ppu PPURegs, ic *interrupt.Controller, timers *timer.Bank, dmac *dma.Controller, flash *cartridge.Flash, rtcChip *rtc.Chip) {
	b.ppu, b.ic, b.timers, b.dmac, b.flash, b.rtcChip = ppu, ic, timers, dmac, flash, rtcChip
}

// LoadROM installs the cartridge image (not owned/copied by the caller
// afterward; the Bus treats it read-only).
func (b *Bus) LoadROM(rom []byte) { b.rom = rom }

func (b *Bus) initRegionMap() {
	for i := range b.regionMap {
		b.regionMap[i] = regionOpenBus
	}
	b.regionMap[0x00] = regionBIOS
	for i := 0x02; i <= 0x02; i++ {
		b.regionMap[i] = regionEWRAM
	}
	for i := 0x03; i <= 0x03; i++ {
		b.regionMap[i] = regionIWRAM
	}
	b.regionMap[0x01] = regionIWRAM // 0x01000000-0x01FFFFFF mirrors IWRAM too
	b.regionMap[0x04] = regionMMIO
	b.regionMap[0x05] = regionPalette
	b.regionMap[0x06] = regionVRAM
	b.regionMap[0x07] = regionOAM
	for i := 0x08; i <= 0x0D; i++ {
		b.regionMap[i] = regionROM
	}
	b.regionMap[0x0E] = regionSRAM
	b.regionMap[0x0F] = regionSRAM
}

func (b *Bus) regionFor(addrVal uint32) region {
	return b.regionMap[(addrVal>>24)&0xFF]
}

// Read8/Read16/Read32 implement §4.1's read contract: mirroring per §3's
// table, MMIO dispatch for the 0x04000000 block, and open-bus/unmapped
// reads returning 0xFF.
func (b *Bus) Read8(addrVal uint32) uint8 {
	switch b.regionFor(addrVal) {
	case regionBIOS:
		return b.bios[addrVal&(addr.BIOSSize-1)]
	case regionEWRAM:
		return b.ewram[addrVal&(addr.EWRAMSize-1)]
	case regionIWRAM:
		return b.iwram[addrVal&(addr.IWRAMSize-1)]
	case regionMMIO:
		return b.readMMIO8(addrVal & 0x00FFFFFF)
	case regionPalette:
		return b.pal[addrVal&(addr.PaletteSize-1)]
	case regionVRAM:
		return b.vram[vramOffset(addrVal)]
	case regionOAM:
		return b.oam[addrVal&(addr.OAMSize-1)]
	case regionROM:
		return b.readROM8(addrVal)
	case regionSRAM:
		if b.flash != nil {
			return b.flash.Read8((addrVal - addr.SRAMBase) & (addr.SRAMSize - 1))
		}
		return 0xFF
	default:
		b.warnOpenBus(addrVal, false)
		return 0xFF
	}
}

func vramOffset(addrVal uint32) uint32 {
	off := addrVal & (addr.VRAMSlot - 1)
	if off >= addr.VRAMSize {
		off -= 32 * 1024 // last 32 KiB of the 128 KiB slot re-mirrors
	}
	return off
}

func (b *Bus) readROM8(addrVal uint32) uint8 {
	off := addrVal & 0x01FFFFFF
	switch addrVal & 0xFFFFFF {
	case addr.GPIODataAddr & 0xFFFFFF, (addr.GPIODataAddr + 1) & 0xFFFFFF:
		return b.gpioDataByte(addrVal&1 == 1)
	}
	if int(off) < len(b.rom) {
		return b.rom[off]
	}
	return 0xFF
}

func (b *Bus) warnOpenBus(addrVal uint32, write bool) {
	if b.warnCount >= maxWarnings {
		return
	}
	b.warnCount++
	if write {
		slog.Warn("absorbed write to unmapped address", "addr", addrVal)
	} else {
		slog.Warn("open-bus read from unmapped address", "addr", addrVal)
	}
}

func (b *Bus) Read16(addrVal uint32) uint16 {
	addrVal &^= 1
	return uint16(b.Read8(addrVal)) | uint16(b.Read8(addrVal+1))<<8
}

func (b *Bus) Read32(addrVal uint32) uint32 {
	aligned := addrVal &^ 3
	word := uint32(b.Read8(aligned)) | uint32(b.Read8(aligned+1))<<8 |
		uint32(b.Read8(aligned+2))<<16 | uint32(b.Read8(aligned+3))<<24
	// Misaligned 32-bit reads rotate the loaded word right by (addr&3)*8
	// bits, the documented ARM7TDMI convention (§4.1).
	rot := (addrVal & 3) * 8
	if rot == 0 {
		return word
	}
	return word>>rot | word<<(32-rot)
}

func (b *Bus) Write8(addrVal uint32, value uint8) {
	switch b.regionFor(addrVal) {
	case regionBIOS:
		// read-only
	case regionEWRAM:
		b.ewram[addrVal&(addr.EWRAMSize-1)] = value
	case regionIWRAM:
		b.iwram[addrVal&(addr.IWRAMSize-1)] = value
	case regionMMIO:
		b.writeMMIO8(addrVal&0x00FFFFFF, value)
	case regionPalette:
		b.pal[addrVal&(addr.PaletteSize-1)] = value
	case regionVRAM:
		b.vram[vramOffset(addrVal)] = value
	case regionOAM:
		b.oam[addrVal&(addr.OAMSize-1)] = value
	case regionROM:
		b.writeROM8(addrVal, value)
	case regionSRAM:
		if b.flash != nil {
			b.flash.Write8((addrVal-addr.SRAMBase)&(addr.SRAMSize-1), value)
		}
	default:
		b.warnOpenBus(addrVal, true)
	}
}

func (b *Bus) writeROM8(addrVal uint32, value uint8) {
	off := addrVal & 0xFFFFFF
	switch off {
	case addr.GPIODataAddr & 0xFFFFFF, (addr.GPIODataAddr + 1) & 0xFFFFFF,
		addr.GPIODirectionAddr & 0xFFFFFF, (addr.GPIODirectionAddr + 1) & 0xFFFFFF,
		addr.GPIOControlAddr & 0xFFFFFF, (addr.GPIOControlAddr + 1) & 0xFFFFFF:
		b.writeGPIOByte(off, value)
	default:
		// Other ROM writes are silently ignored (§4.1).
	}
}

func (b *Bus) Write16(addrVal uint32, value uint16) {
	addrVal &^= 1
	b.Write8(addrVal, uint8(value))
	b.Write8(addrVal+1, uint8(value>>8))
}

func (b *Bus) Write32(addrVal uint32, value uint32) {
	addrVal &^= 3
	b.Write8(addrVal, uint8(value))
	b.Write8(addrVal+1, uint8(value>>8))
	b.Write8(addrVal+2, uint8(value>>16))
	b.Write8(addrVal+3, uint8(value>>24))
}

// KeyInput returns KEYINPUT's live value: the button mask inverted
// (active-low), per §4.1/§6.
func (b *Bus) KeyInput() uint16 {
	return (^b.keys) & 0x03FF
}

// SetButtons latches the host's button mask (active-high, bits 0-9),
// read once per frame at the documented synchronization point (§5).
func (b *Bus) SetButtons(mask uint16) {
	b.keys = mask & 0x03FF
}

// EWRAM/IWRAM/Palette/VRAM/OAM expose the raw backing arrays for
// save-state serialization and the PPU's render-time borrow (§3/§5: "All
// RAM arrays are single-owner ... and borrowed ... by the PPU during
// render"). These are non-overlapping in time with CPU mutation because
// the frame loop is single-threaded (§5).
func (b *Bus) EWRAM() []byte   { return b.ewram[:] }
func (b *Bus) IWRAM() []byte   { return b.iwram[:] }
func (b *Bus) Palette() []byte { return b.pal[:] }
func (b *Bus) VRAM() []byte    { return b.vram[:] }
func (b *Bus) OAM() []byte     { return b.oam[:] }
func (b *Bus) BIOS() []byte    { return b.bios[:] }
func (b *Bus) MMIO() []byte    { return b.mmio[:] }

// SRAM exposes the Flash chip's backing store, or nil if no Flash is
// wired (save-state then skips that region).
func (b *Bus) SRAM() []byte {
	if b.flash == nil {
		return nil
	}
	return b.flash.Bytes()
}
