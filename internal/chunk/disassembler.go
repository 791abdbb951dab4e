package chunk

import (
	"fmt"
	"strings"

	"wisp/internal/intern"
)

// Disassemble renders the whole chunk as human-readable text, one
// instruction per line, in the teacher's disassembler format.
func (c *Chunk) Disassemble(name string, strs *intern.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		var line string
		line, offset = c.disassembleInstruction(offset, strs)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// DisassembleAt renders the single instruction at offset, for the VM's
// --trace mode. It returns only the text; the caller already knows
// offset.
func (c *Chunk) DisassembleAt(offset int, strs *intern.Table) string {
	line, _ := c.disassembleInstruction(offset, strs)
	return line
}

func (c *Chunk) disassembleInstruction(offset int, strs *intern.Table) (string, int) {
	var b strings.Builder
	fmt.Fprintf(&b, "%04d ", offset)
	if offset > 0 && c.LineFor(offset) == c.LineFor(offset-1) {
		fmt.Fprintf(&b, "   | ")
	} else {
		fmt.Fprintf(&b, "%4d ", c.LineFor(offset))
	}

	op := OpCode(c.Code[offset])
	switch op {
	case OpConstant, OpDefGlobal, OpGetGlobal, OpSetGlobal:
		return c.constantInstruction(b.String(), op, offset, strs)
	case OpGetLocal, OpSetLocal:
		return c.byteInstruction(b.String(), op, offset)
	default:
		fmt.Fprintf(&b, "%s", op)
		return b.String(), offset + 1
	}
}

func (c *Chunk) constantInstruction(prefix string, op OpCode, offset int, strs *intern.Table) (string, int) {
	idx := c.Code[offset+1]
	val := c.Constants[idx]
	return fmt.Sprintf("%s%-16s %4d '%s'", prefix, op, idx, val.Print(strs)), offset + 2
}

func (c *Chunk) byteInstruction(prefix string, op OpCode, offset int) (string, int) {
	slot := c.Code[offset+1]
	return fmt.Sprintf("%s%-16s %4d", prefix, op, slot), offset + 2
}
