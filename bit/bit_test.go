package bit

import "testing"

func TestCombine16(t *testing.T) {
	tests := []struct {
		high, low uint8
		expected  uint16
	}{
		{0xAB, 0xCD, 0xABCD},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
	}

	for _, tt := range tests {
		if got := Combine16(tt.high, tt.low); got != tt.expected {
			t.Errorf("Combine16(%X, %X) = %X; want %X", tt.high, tt.low, got, tt.expected)
		}
	}
}

func TestCombine32(t *testing.T) {
	got := Combine32(0xEF, 0xBE, 0xAD, 0xDE)
	want := uint32(0xDEADBEEF)
	if got != want {
		t.Errorf("Combine32 = %08X; want %08X", got, want)
	}
}

func TestIsSet(t *testing.T) {
	tests := []struct {
		value    uint32
		index    uint
		expected bool
	}{
		{0b10101010, 0, false},
		{0b10101010, 1, true},
		{0b10101010, 7, true},
		{0b10101010, 8, false},
	}

	for _, tt := range tests {
		if got := IsSet(tt.index, tt.value); got != tt.expected {
			t.Errorf("IsSet(%d, %b) = %v; want %v", tt.index, tt.value, got, tt.expected)
		}
	}
}

func TestSetClearWrite(t *testing.T) {
	v := uint32(0)
	v = Set(3, v)
	if v != 0b1000 {
		t.Fatalf("Set(3, 0) = %b; want 1000", v)
	}
	v = Clear(3, v)
	if v != 0 {
		t.Fatalf("Clear(3, 1000) = %b; want 0", v)
	}
	v = Write(2, v, true)
	if v != 0b100 {
		t.Fatalf("Write(2, 0, true) = %b; want 100", v)
	}
	v = Write(2, v, false)
	if v != 0 {
		t.Fatalf("Write(2, 100, false) = %b; want 0", v)
	}
}

func TestSignExtend(t *testing.T) {
	tests := []struct {
		value uint32
		bits  uint
		want  int32
	}{
		{0x7FF, 11, -1},
		{0x400, 11, -1024},
		{0xFF, 8, -1},
		{0x7F, 8, 127},
	}

	for _, tt := range tests {
		if got := SignExtend(tt.value, tt.bits); got != tt.want {
			t.Errorf("SignExtend(%X, %d) = %d; want %d", tt.value, tt.bits, got, tt.want)
		}
	}
}

func TestRotateRight32(t *testing.T) {
	if got := RotateRight32(0x1, 1); got != 0x80000000 {
		t.Errorf("RotateRight32(1,1) = %08X; want 80000000", got)
	}
	if got := RotateRight32(0xDEADBEEF, 0); got != 0xDEADBEEF {
		t.Errorf("RotateRight32(x,0) should be identity, got %08X", got)
	}
	if got := RotateRight32(0x12345678, 8); got != 0x78123456 {
		t.Errorf("RotateRight32(0x12345678,8) = %08X; want 78123456", got)
	}
}
