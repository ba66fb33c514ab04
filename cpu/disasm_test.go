package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisassembleARMBranch(t *testing.T) {
	// B +8 (forward branch), always-execute condition (0xE).
	line := disassembleARM(0x08000000, 0xEA000000)
	assert.Equal(t, 4, line.Length)
	assert.Contains(t, line.Instruction, "B")
	assert.Equal(t, uint32(0x08000008), branchTarget(0x08000000, 0xEA000000))
}

func TestDisassembleARMSoftwareInterrupt(t *testing.T) {
	line := disassembleARM(0x08000000, 0xEF000001)
	assert.Contains(t, line.Instruction, "SWI")
}

func TestDisassembleARMDataProcessing(t *testing.T) {
	// MOV r0, r1 (AL condition, opcode 0xD == MOV).
	line := disassembleARM(0x08000000, 0xE1A00001)
	assert.Contains(t, line.Instruction, "MOV")
}

func TestDisassembleThumbSoftwareInterrupt(t *testing.T) {
	line := disassembleThumb(0x08000000, 0xDF05)
	assert.Equal(t, 2, line.Length)
	assert.Contains(t, line.Instruction, "SWI")
}

func TestDisassembleRangeAdvancesByLength(t *testing.T) {
	var c CPU
	c.mem = constMem{}
	lines := c.DisassembleRange(0x08000000, 3)
	assert.Len(t, lines, 3)
	assert.Equal(t, uint32(0x08000000), lines[0].Address)
	assert.Equal(t, uint32(0x08000004), lines[1].Address)
}

// constMem is a Memory stub returning zero for every read, enough to drive
// DisassembleRange without a real bus.
type constMem struct{}

func (constMem) Read8(uint32) uint8    { return 0 }
func (constMem) Read16(uint32) uint16  { return 0 }
func (constMem) Read32(uint32) uint32  { return 0 }
func (constMem) Write8(uint32, uint8)  {}
func (constMem) Write16(uint32, uint16) {}
func (constMem) Write32(uint32, uint32) {}
