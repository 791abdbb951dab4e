package chunk

import (
	"testing"

	"wisp/internal/value"
)

func TestLineForIsMonotonicAndCorrect(t *testing.T) {
	c := New()
	c.WriteByte(byte(OpNil), 1)
	c.WriteByte(byte(OpNil), 1)
	c.WriteByte(byte(OpNil), 3) // line 2 emits no bytes
	c.WriteByte(byte(OpReturn), 3)

	want := []int{1, 1, 3, 3}
	for offset, line := range want {
		if got := c.LineFor(offset); got != line {
			t.Errorf("LineFor(%d) = %d, want %d", offset, got, line)
		}
	}

	prev := 0
	for offset := 0; offset < len(c.Code); offset++ {
		line := c.LineFor(offset)
		if line < prev {
			t.Fatalf("LineFor is not monotonic at offset %d: %d < %d", offset, line, prev)
		}
		prev = line
	}
}

func TestAddConstantReturnsIndex(t *testing.T) {
	c := New()
	i0 := c.AddConstant(value.NewNumber(1))
	i1 := c.AddConstant(value.NewNumber(2))
	if i0 != 0 || i1 != 1 {
		t.Fatalf("expected sequential 0-based indices, got %d, %d", i0, i1)
	}
}

func TestOpcodeOperandByteCounts(t *testing.T) {
	c := New()
	k := c.AddConstant(value.NewNumber(1))
	c.WriteByte(byte(OpConstant), 1)
	c.WriteByte(byte(k), 1)
	c.WriteByte(byte(OpReturn), 1)

	if len(c.Code) != 3 {
		t.Fatalf("expected OP_CONSTANT to occupy 2 bytes and OP_RETURN 1, got %d total", len(c.Code))
	}
}
