package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tholstrup/gbacore/regs"
)

// msrOpcode builds an MSR CPSR_<fields>, Rm encoding: cond=AL, Rm in r0,
// fields in bits 16-19.
func msrOpcode(fields, rm uint32) uint32 {
	return 0xE120F000 | fields<<16 | rm
}

func TestArmMSRControlFieldSnapsInvalidModeToSystem(t *testing.T) {
	c := New(constMem{})
	c.Reset(0x08000000)

	c.regs.Set(0, 0x05) // mode field 0x05: not one of the 7 defined modes
	c.armMSR(msrOpcode(0x1, 0))

	assert.Equal(t, regs.ModeSystem, c.regs.CPSR().Mode())
}

func TestArmMSRFlagsOnlyLeavesModeUntouched(t *testing.T) {
	c := New(constMem{})
	c.Reset(0x08000000)

	before := c.regs.CPSR().Mode()
	c.regs.Set(0, 0xF0000000) // N,Z,C,V all set, fields byte would read as flags only
	c.armMSR(msrOpcode(0x8, 0))

	assert.Equal(t, before, c.regs.CPSR().Mode())
	assert.True(t, c.regs.CPSR().N())
	assert.True(t, c.regs.CPSR().Z())
}

func TestArmUndefinedEncodingEntersUndefinedHandler(t *testing.T) {
	c := New(constMem{})
	c.Reset(0x08000000)
	c.regs.Set(14, 0) // LR outside ROM, so the handler self-corrects to entryPoint

	c.executeARM(0xE6000010) // undefined instruction space (cond=AL, bits 27-25=011, bit4=1, bit20=0... see armMSR mask)

	assert.Equal(t, regs.ModeSystem, c.regs.CPSR().Mode())
	assert.Equal(t, c.entryPoint+8, c.regs.PC())
}
