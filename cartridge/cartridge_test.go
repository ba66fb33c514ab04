package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildROM(title, gameCode, makerCode string, version byte) []byte {
	rom := make([]byte, checksumOffset+1)
	copy(rom[titleOffset:], title)
	copy(rom[gameCodeOffset:], gameCode)
	copy(rom[makerCodeOffset:], makerCode)
	rom[versionOffset] = version
	rom[checksumOffset] = computeChecksum(rom)
	return rom
}

func TestParseHeaderValidChecksum(t *testing.T) {
	rom := buildROM("TESTGAME", "ABCE", "01", 0)

	h := ParseHeader(rom)

	assert.Equal(t, "TESTGAME", h.Title)
	assert.Equal(t, "ABCE", h.GameCode)
	assert.Equal(t, "01", h.MakerCode)
	assert.True(t, h.ChecksumValid)
}

func TestParseHeaderMismatchedChecksumStillParses(t *testing.T) {
	rom := buildROM("BADGAME", "XYZE", "01", 0)
	rom[checksumOffset] ^= 0xFF

	h := ParseHeader(rom)

	assert.False(t, h.ChecksumValid)
	assert.Equal(t, "BADGAME", h.Title, "a checksum mismatch is advisory, not a refusal to parse")
}

func TestParseHeaderShortROMReturnsZeroValue(t *testing.T) {
	h := ParseHeader(make([]byte, 4))
	assert.Equal(t, Header{}, h)
}
