package interp

import (
	"errors"
	"testing"

	"wisp/internal/vm"
)

func TestRunPersistsGlobalsAcrossCalls(t *testing.T) {
	in := New(Options{})
	if err := in.Run(`var count = 1;`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := in.Run(`count = count + 1;`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCompileErrorFormat(t *testing.T) {
	in := New(Options{})
	err := in.Run(`var = 1;`)
	if err == nil {
		t.Fatalf("expected a compile error")
	}
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %T", err)
	}
	if got, want := err.Error(), "compile error: 1: Expect variable name."; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRuntimeErrorFormat(t *testing.T) {
	in := New(Options{})
	err := in.Run(`print nope;`)
	if err == nil {
		t.Fatalf("expected a runtime error")
	}
	var re *vm.RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected *vm.RuntimeError, got %T", err)
	}
	if got, want := err.Error(), "runtime error: 1: Undefined variable 'nope'."; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDisassembleReflectsSource(t *testing.T) {
	in := New(Options{})
	c, err := in.Compile(`print 1 + 2;`)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	out := in.Disassemble("test", c)
	if out == "" {
		t.Fatalf("expected non-empty disassembly")
	}
}
