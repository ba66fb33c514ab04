// Package cartridge implements ROM header parsing, the Flash/GPIO state
// machine, and SRAM backing storage described in spec.md §4.1/§6, grounded
// on jeebie/memory/cartridge.go's header-field-offset parsing pattern
// generalized to the GBA's header layout (no GB equivalent exists for
// Flash; GB cartridges are bank-switch MBCs, not JEDEC-style command state
// machines — see DESIGN.md).
package cartridge

import "log/slog"

// Header field offsets within the ROM image (§6).
const (
	titleOffset     = 0xA0
	titleLength     = 12
	gameCodeOffset  = 0xAC
	gameCodeLength  = 4
	makerCodeOffset = 0xB0
	makerCodeLength = 2
	versionOffset   = 0xBC
	checksumOffset  = 0xBD
)

// Header holds the parsed, advisory ROM header fields (§6).
type Header struct {
	Title           string
	GameCode        string
	MakerCode       string
	Version         byte
	StoredChecksum  byte
	ComputedCheck   byte
	ChecksumValid   bool
}

// ParseHeader reads the documented header fields from rom. Verification is
// advisory per §6: a mismatched checksum is reported, never refused.
func ParseHeader(rom []byte) Header {
	h := Header{}
	if len(rom) < checksumOffset+1 {
		return h
	}
	h.Title = trimNulls(rom[titleOffset : titleOffset+titleLength])
	h.GameCode = trimNulls(rom[gameCodeOffset : gameCodeOffset+gameCodeLength])
	h.MakerCode = trimNulls(rom[makerCodeOffset : makerCodeOffset+makerCodeLength])
	h.Version = rom[versionOffset]
	h.StoredChecksum = rom[checksumOffset]
	h.ComputedCheck = computeChecksum(rom)
	h.ChecksumValid = h.ComputedCheck == h.StoredChecksum
	return h
}

// computeChecksum implements §6's formula: (-sum(bytes[0xA0..=0xBC]) - 0x19) & 0xFF.
func computeChecksum(rom []byte) byte {
	var sum byte
	for i := titleOffset; i <= versionOffset; i++ {
		sum += rom[i]
	}
	return -sum - 0x19
}

func trimNulls(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

// LogResult reports an advisory checksum mismatch via slog.Warn, matching
// §7's "header-checksum mismatches are logged but not fatal".
func (h Header) LogResult() {
	if !h.ChecksumValid {
		slog.Warn("cartridge header checksum mismatch", "stored", h.StoredChecksum, "computed", h.ComputedCheck, "title", h.Title)
	}
}
