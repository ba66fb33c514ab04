package cpu

import "fmt"

// DisassemblyLine mirrors one decoded instruction for the terminal debug
// overlay, grounded on jeebie/disasm's DisassemblyLine/DisassembleAt shape
// (same Address/Instruction/Length triple), generalized from the GB's
// fixed table-driven 8-bit opcode set to ARM's computed-mnemonic 32-bit
// one and Thumb's 16-bit one.
type DisassemblyLine struct {
	Address     uint32
	Instruction string
	Length      int
}

var condNames = [16]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "", "NV",
}

var dpMnemonics = [16]string{
	"AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
	"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN",
}

// DisassembleAt decodes the single instruction at pc (ARM or Thumb,
// per the CPU's current Thumb flag) for display; it does not affect CPU
// state.
func (c *CPU) DisassembleAt(pc uint32) DisassemblyLine {
	if c.regs.Thumb() {
		return disassembleThumb(pc, c.mem.Read16(pc))
	}
	return disassembleARM(pc, c.mem.Read32(pc))
}

// DisassembleRange decodes count consecutive instructions starting at pc,
// advancing by each decoded instruction's length (2 or 4 bytes).
func (c *CPU) DisassembleRange(pc uint32, count int) []DisassemblyLine {
	lines := make([]DisassemblyLine, 0, count)
	for i := 0; i < count; i++ {
		line := c.DisassembleAt(pc)
		lines = append(lines, line)
		pc += uint32(line.Length)
	}
	return lines
}

func disassembleARM(pc uint32, opcode uint32) DisassemblyLine {
	cond := condNames[(opcode>>28)&0xF]
	suffix := cond

	var text string
	switch {
	case opcode&0x0FFFFFF0 == 0x012FFF10:
		text = fmt.Sprintf("BX%s r%d", suffix, opcode&0xF)
	case opcode&0x0F000000 == 0x0F000000:
		text = fmt.Sprintf("SWI%s #0x%06X", suffix, opcode&0x00FFFFFF)
	case opcode&0x0E000000 == 0x0A000000:
		link := ""
		if opcode&(1<<24) != 0 {
			link = "L"
		}
		text = fmt.Sprintf("B%s%s 0x%X", link, suffix, branchTarget(pc, opcode))
	case opcode&0x0E000000 == 0x08000000:
		dir := "LDM"
		if opcode&(1<<20) == 0 {
			dir = "STM"
		}
		text = fmt.Sprintf("%s%s r%d, {regs}", dir, suffix, (opcode>>16)&0xF)
	case opcode&0x0FC000F0 == 0x00000090:
		text = fmt.Sprintf("MUL%s r%d, r%d, r%d", suffix, (opcode>>16)&0xF, opcode&0xF, (opcode>>8)&0xF)
	case opcode&0x0FB00FF0 == 0x01000090:
		text = fmt.Sprintf("SWP%s r%d, r%d, [r%d]", suffix, (opcode>>12)&0xF, opcode&0xF, (opcode>>16)&0xF)
	case opcode&0x0E000090 == 0x00000090 && opcode&0x60 != 0:
		text = fmt.Sprintf("LDRH/STRH%s r%d, [r%d]", suffix, (opcode>>12)&0xF, (opcode>>16)&0xF)
	case opcode&0x0FBF0FFF == 0x010F0000:
		text = fmt.Sprintf("MRS%s r%d, CPSR", suffix, (opcode>>12)&0xF)
	case opcode&0x0FB0FFF0 == 0x0120F000 || opcode&0x0FB0F000 == 0x0320F000:
		text = fmt.Sprintf("MSR%s CPSR, ...", suffix)
	case opcode&0x0C000000 == 0x00000000:
		op := dpMnemonics[(opcode>>21)&0xF]
		text = fmt.Sprintf("%s%s r%d, r%d, ...", op, suffix, (opcode>>12)&0xF, (opcode>>16)&0xF)
	case opcode&0x0C000000 == 0x04000000:
		dir := "LDR"
		if opcode&(1<<20) == 0 {
			dir = "STR"
		}
		if opcode&(1<<22) != 0 {
			dir += "B"
		}
		text = fmt.Sprintf("%s%s r%d, [r%d, ...]", dir, suffix, (opcode>>12)&0xF, (opcode>>16)&0xF)
	default:
		text = fmt.Sprintf(".word 0x%08X", opcode)
	}

	return DisassemblyLine{Address: pc, Instruction: text, Length: 4}
}

func branchTarget(pc uint32, opcode uint32) uint32 {
	offset := int32(opcode&0x00FFFFFF) << 8 >> 6
	return uint32(int32(pc) + 8 + offset)
}

func disassembleThumb(pc uint32, opcode uint16) DisassemblyLine {
	var text string
	switch {
	case opcode&0xF800 == 0x1800:
		text = fmt.Sprintf("ADD/SUB r%d, r%d, ...", opcode&0x7, (opcode>>3)&0x7)
	case opcode&0xE000 == 0x0000:
		text = fmt.Sprintf("MOV-shift r%d, r%d, #%d", opcode&0x7, (opcode>>3)&0x7, (opcode>>6)&0x1F)
	case opcode&0xE000 == 0x2000:
		op := [4]string{"MOV", "CMP", "ADD", "SUB"}[(opcode>>11)&0x3]
		text = fmt.Sprintf("%s r%d, #%d", op, (opcode>>8)&0x7, opcode&0xFF)
	case opcode&0xFC00 == 0x4000:
		text = fmt.Sprintf("ALU r%d, r%d", opcode&0x7, (opcode>>3)&0x7)
	case opcode&0xFC00 == 0x4400:
		text = fmt.Sprintf("HI r%d, r%d", opcode&0x7|((opcode>>4)&8), (opcode>>3)&0xF)
	case opcode&0xF800 == 0x4800:
		text = fmt.Sprintf("LDR r%d, [PC, #%d]", (opcode>>8)&0x7, (opcode&0xFF)*4)
	case opcode&0xF000 == 0x5000:
		text = fmt.Sprintf("STR/LDR-reg r%d, [r%d, r%d]", opcode&0x7, (opcode>>3)&0x7, (opcode>>6)&0x7)
	case opcode&0xE000 == 0x6000:
		text = fmt.Sprintf("STR/LDR-imm r%d, [r%d, #%d]", opcode&0x7, (opcode>>3)&0x7, (opcode>>6)&0x1F)
	case opcode&0xF000 == 0x8000:
		text = fmt.Sprintf("STRH/LDRH r%d, [r%d, #%d]", opcode&0x7, (opcode>>3)&0x7, (opcode>>6)&0x1F)
	case opcode&0xF000 == 0x9000:
		text = fmt.Sprintf("STR/LDR-SP r%d, [SP, #%d]", (opcode>>8)&0x7, (opcode&0xFF)*4)
	case opcode&0xF000 == 0xA000:
		text = fmt.Sprintf("ADD r%d, %s, #%d", (opcode>>8)&0x7, map[bool]string{true: "SP", false: "PC"}[opcode&(1<<11) != 0], (opcode&0xFF)*4)
	case opcode&0xFF00 == 0xB000:
		text = fmt.Sprintf("ADD SP, #%d", opcode&0x7F)
	case opcode&0xF600 == 0xB400:
		text = "PUSH/POP {regs}"
	case opcode&0xF000 == 0xC000:
		dir := "STMIA"
		if opcode&(1<<11) != 0 {
			dir = "LDMIA"
		}
		text = fmt.Sprintf("%s r%d!, {regs}", dir, (opcode>>8)&0x7)
	case opcode&0xFF00 == 0xDF00:
		text = fmt.Sprintf("SWI #%d", opcode&0xFF)
	case opcode&0xF000 == 0xD000:
		text = fmt.Sprintf("B%s 0x%X", condNames[(opcode>>8)&0xF], thumbBranchTarget(pc, opcode))
	case opcode&0xF800 == 0xE000:
		text = fmt.Sprintf("B 0x%X", thumbUncondTarget(pc, opcode))
	case opcode&0xF000 == 0xF000:
		half := "high"
		if opcode&(1<<11) == 0 {
			half = "low"
		}
		text = fmt.Sprintf("BL-%s #%d", half, opcode&0x7FF)
	default:
		text = fmt.Sprintf(".hword 0x%04X", opcode)
	}

	return DisassemblyLine{Address: pc, Instruction: text, Length: 2}
}

func thumbBranchTarget(pc uint32, opcode uint16) uint32 {
	offset := int32(int8(opcode & 0xFF)) * 2
	return uint32(int32(pc) + 4 + offset)
}

func thumbUncondTarget(pc uint32, opcode uint16) uint32 {
	offset := (int32(opcode&0x7FF) << 21 >> 20)
	return uint32(int32(pc) + 4 + offset)
}
