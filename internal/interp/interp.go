// Package interp wires the scanner, compiler, and vm packages together
// into a single entry point, and defines the structured error types
// the CLI driver reports to the user.
package interp

import (
	"fmt"
	"strings"

	"wisp/internal/chunk"
	"wisp/internal/compiler"
	"wisp/internal/intern"
	"wisp/internal/vm"
)

// CompileError wraps every diagnostic the compiler accumulated while
// compiling one source unit. A source that fails to compile produces
// exactly one CompileError, carrying possibly several underlying
// diagnostics (each compiler.Diagnostic is a distinct line/message
// pair survived past panic-mode synchronization).
type CompileError struct {
	Diagnostics []compiler.Diagnostic
}

func (e *CompileError) Error() string {
	if len(e.Diagnostics) == 1 {
		d := e.Diagnostics[0]
		return fmt.Sprintf("compile error: %d: %s", d.Line, d.Message)
	}
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = fmt.Sprintf("%d: %s", d.Line, d.Message)
	}
	return fmt.Sprintf("compile error: %d errors:\n%s", len(e.Diagnostics), strings.Join(lines, "\n"))
}

// RuntimeError re-exports vm.RuntimeError so callers outside this
// package never need to import internal/vm directly.
type RuntimeError = vm.RuntimeError

// Interpreter owns the string table and global-variable state shared
// across repeated Run calls — the shape a REPL needs, where each line
// is compiled and executed independently but variables persist.
type Interpreter struct {
	strs *intern.Table
	vm   *vm.VM
	cfg  vm.Config
}

// Options configures a new Interpreter.
type Options struct {
	Trace bool
	Store vm.GlobalsStore
}

// New returns an Interpreter with fresh globals and an empty intern
// table.
func New(opts Options) *Interpreter {
	strs := intern.New()
	cfg := vm.Config{Trace: opts.Trace, Store: opts.Store}
	return &Interpreter{
		strs: strs,
		vm:   vm.New(strs, cfg),
		cfg:  cfg,
	}
}

// Compile compiles source into a chunk without executing it, for
// --disassemble and other static-inspection modes. Returns a
// *CompileError (never a bare error) on failure.
func (in *Interpreter) Compile(source string) (*chunk.Chunk, error) {
	c, diags := compiler.New(in.strs).Compile(source)
	if len(diags) > 0 {
		return nil, &CompileError{Diagnostics: diags}
	}
	return c, nil
}

// Run compiles and executes source against this Interpreter's
// persistent globals and string table. A compile failure returns
// *CompileError; an execution failure returns *vm.RuntimeError. Both
// satisfy error, so callers that only want to print the message can
// treat them uniformly.
func (in *Interpreter) Run(source string) error {
	c, err := in.Compile(source)
	if err != nil {
		return err
	}
	return in.RunChunk(c)
}

// RunChunk executes an already-compiled chunk, for callers (like the
// CLI's --disassemble/--stats modes) that need the chunk before
// deciding whether and how to run it.
func (in *Interpreter) RunChunk(c *chunk.Chunk) error {
	return in.vm.Interpret(c)
}

// Strings exposes the intern table so a CLI driver can render
// disassembly or stats without reaching into package vm directly.
func (in *Interpreter) Strings() *intern.Table {
	return in.strs
}

// Disassemble renders a chunk as text, for the --disassemble flag.
func (in *Interpreter) Disassemble(name string, c *chunk.Chunk) string {
	return c.Disassemble(name, in.strs)
}
