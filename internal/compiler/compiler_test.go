package compiler

import (
	"testing"

	"wisp/internal/chunk"
	"wisp/internal/intern"
)

func compile(t *testing.T, src string) (*chunk.Chunk, *intern.Table) {
	t.Helper()
	strs := intern.New()
	c := New(strs)
	out, diags := c.Compile(src)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics for %q: %+v", src, diags)
	}
	return out, strs
}

func compileErr(t *testing.T, src string) []Diagnostic {
	t.Helper()
	c := New(intern.New())
	out, diags := c.Compile(src)
	if out != nil {
		t.Fatalf("expected no chunk when diagnostics are produced")
	}
	if len(diags) == 0 {
		t.Fatalf("expected diagnostics for %q, got none", src)
	}
	return diags
}

func opsOf(c *chunk.Chunk) []chunk.OpCode {
	var ops []chunk.OpCode
	i := 0
	for i < len(c.Code) {
		op := chunk.OpCode(c.Code[i])
		ops = append(ops, op)
		switch op {
		case chunk.OpConstant, chunk.OpDefGlobal, chunk.OpGetGlobal, chunk.OpSetGlobal,
			chunk.OpGetLocal, chunk.OpSetLocal:
			i += 2
		default:
			i++
		}
	}
	return ops
}

func TestExpressionStatementEmitsPop(t *testing.T) {
	c, _ := compile(t, `1 + 2;`)
	ops := opsOf(c)
	want := []chunk.OpCode{chunk.OpConstant, chunk.OpConstant, chunk.OpAdd, chunk.OpPop, chunk.OpReturn}
	if len(ops) != len(want) {
		t.Fatalf("got ops %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("op %d: got %s, want %s", i, ops[i], want[i])
		}
	}
}

func TestNotEqualEmitsEqualThenNot(t *testing.T) {
	c, _ := compile(t, `1 != 2;`)
	ops := opsOf(c)
	// CONSTANT CONSTANT EQUAL NOT POP RETURN
	if ops[2] != chunk.OpEqual || ops[3] != chunk.OpNot {
		t.Fatalf("expected EQUAL,NOT pair for !=, got %v", ops)
	}
}

func TestGreaterEqualEmitsLessThenNot(t *testing.T) {
	c, _ := compile(t, `1 >= 2;`)
	ops := opsOf(c)
	if ops[2] != chunk.OpLess || ops[3] != chunk.OpNot {
		t.Fatalf("expected LESS,NOT pair for >=, got %v", ops)
	}
}

func TestGlobalVarRoundtrips(t *testing.T) {
	c, _ := compile(t, `var a = 1; a = 2; print a;`)
	ops := opsOf(c)
	want := []chunk.OpCode{
		chunk.OpConstant, chunk.OpDefGlobal,
		chunk.OpConstant, chunk.OpSetGlobal, chunk.OpPop,
		chunk.OpGetGlobal, chunk.OpPrint,
		chunk.OpReturn,
	}
	if len(ops) != len(want) {
		t.Fatalf("got ops %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("op %d: got %s, want %s", i, ops[i], want[i])
		}
	}
}

func TestLocalVarUsesSlotOpsNotGlobalOps(t *testing.T) {
	c, _ := compile(t, `{ var a = 1; print a; }`)
	ops := opsOf(c)
	for _, op := range ops {
		if op == chunk.OpDefGlobal || op == chunk.OpGetGlobal || op == chunk.OpSetGlobal {
			t.Fatalf("local declared inside a block must not use global opcodes, got %v", ops)
		}
	}
	foundGet := false
	for _, op := range ops {
		if op == chunk.OpGetLocal {
			foundGet = true
		}
	}
	if !foundGet {
		t.Fatalf("expected OP_GET_LOCAL in %v", ops)
	}
}

func TestBlockEndEmitsPopPerLocal(t *testing.T) {
	c, _ := compile(t, `{ var a = 1; var b = 2; }`)
	ops := opsOf(c)
	popCount := 0
	for _, op := range ops {
		if op == chunk.OpPop {
			popCount++
		}
	}
	if popCount != 2 {
		t.Fatalf("expected 2 pops at scope end, got %d in %v", popCount, ops)
	}
}

func TestOwnInitializerIsCompileError(t *testing.T) {
	diags := compileErr(t, `{ var a = a; }`)
	if len(diags) != 1 {
		t.Fatalf("expected exactly one diagnostic (cascades suppressed), got %+v", diags)
	}
}

func TestDuplicateLocalInSameScopeIsError(t *testing.T) {
	compileErr(t, `{ var a = 1; var a = 2; }`)
}

func TestShadowingAcrossScopesIsAllowed(t *testing.T) {
	compile(t, `var a = 1; { var a = 2; print a; }`)
}

func TestMissingSemicolonIsSingleErrorDespiteTrailingGarbage(t *testing.T) {
	diags := compileErr(t, `print 1 print 2;`)
	if len(diags) != 1 {
		t.Fatalf("expected synchronize() to suppress the cascade, got %+v", diags)
	}
}

func TestStringConstantStripsQuotes(t *testing.T) {
	c, strs := compile(t, `"hello";`)
	if len(c.Constants) != 1 {
		t.Fatalf("expected one constant, got %d", len(c.Constants))
	}
	got := c.Constants[0].Print(strs)
	if got != "hello" {
		t.Fatalf("expected stripped string %q, got %q", "hello", got)
	}
}
