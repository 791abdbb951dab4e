// Package vm implements the stack-based bytecode interpreter: the
// dispatch loop that executes a compiled chunk instruction by
// instruction.
package vm

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"wisp/internal/chunk"
	"wisp/internal/intern"
	"wisp/internal/value"
)

// StackMax bounds the value stack; exceeding it is a runtime error, not
// a panic, so a misbehaving script fails cleanly under the interpreter
// rather than crashing the host process.
const StackMax = 256

// RuntimeError is a runtime fault raised while running a chunk: a type
// error, an undefined global, or stack exhaustion. Its Error() string
// follows the "runtime error: <line>: <message>" format used across
// the interpreter's diagnostics.
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %d: %s", e.Line, e.Message)
}

// GlobalsStore persists global-variable bindings across VM instances.
// The in-memory map inside VM is always the fast path; a configured
// store is consulted on a miss and written through on OP_DEF_GLOBAL /
// OP_SET_GLOBAL, so a script can pick up globals seeded by a previous
// run (see the store package for the sqlite and DynamoDB backends).
type GlobalsStore interface {
	Load(name string) (value.Value, bool, error)
	Store(name string, v value.Value) error
}

// Config controls optional VM behavior.
type Config struct {
	// Trace enables per-instruction logging of the stack and the
	// instruction about to execute, at Debug level.
	Trace bool
	// Store, if non-nil, backs global variables with persistent
	// storage in addition to the in-process map.
	Store GlobalsStore
}

// VM executes one chunk at a time. It is not safe for concurrent use —
// the language model is explicitly single-threaded, so the value stack,
// globals map, and instruction pointer are all plain unsynchronized
// fields.
type VM struct {
	chunk    *chunk.Chunk
	ip       int
	stack    [StackMax]value.Value
	stackTop int

	globals map[intern.Handle]value.Value
	strs    *intern.Table

	cfg Config
	log *logrus.Logger
}

// New returns a VM that interns/looks up identifiers and strings
// through strs. Globals persist in the returned VM across repeated
// Interpret calls, matching a REPL session's expectation that a var
// declared on one line is visible on the next.
func New(strs *intern.Table, cfg Config) *VM {
	return &VM{
		globals: make(map[intern.Handle]value.Value),
		strs:    strs,
		cfg:     cfg,
		log:     logrus.StandardLogger(),
	}
}

func (vm *VM) push(v value.Value) {
	if vm.stackTop >= StackMax {
		panic(vm.runtimeError("stack overflow"))
	}
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) runtimeError(format string, args ...interface{}) *RuntimeError {
	line := 0
	if vm.chunk != nil {
		line = vm.chunk.LineFor(vm.ip - 1)
	}
	return &RuntimeError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// Interpret runs c to completion, starting a fresh instruction pointer
// and value stack but keeping whatever globals this VM has already
// accumulated.
func (vm *VM) Interpret(c *chunk.Chunk) (err error) {
	vm.chunk = c
	vm.ip = 0
	vm.stackTop = 0

	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*RuntimeError); ok {
				err = re
				return
			}
			panic(r)
		}
	}()

	return vm.run()
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readConstant() value.Value {
	return vm.chunk.Constants[vm.readByte()]
}

func (vm *VM) run() error {
	for {
		if vm.cfg.Trace {
			vm.traceInstruction()
		}

		op := chunk.OpCode(vm.readByte())
		switch op {
		case chunk.OpConstant:
			vm.push(vm.readConstant())

		case chunk.OpNil:
			vm.push(value.NilValue)
		case chunk.OpTrue:
			vm.push(value.NewBool(true))
		case chunk.OpFalse:
			vm.push(value.NewBool(false))

		case chunk.OpPop:
			vm.pop()

		case chunk.OpDefGlobal:
			name := vm.readConstant()
			v := vm.pop()
			vm.globals[name.Str] = v
			if vm.cfg.Store != nil {
				if err := vm.cfg.Store.Store(vm.strs.Lookup(name.Str), v); err != nil {
					return vm.runtimeError("persisting global '%s': %v", vm.strs.Lookup(name.Str), err)
				}
			}

		case chunk.OpGetGlobal:
			name := vm.readConstant()
			v, ok := vm.globals[name.Str]
			if !ok && vm.cfg.Store != nil {
				stored, found, err := vm.cfg.Store.Load(vm.strs.Lookup(name.Str))
				if err != nil {
					return vm.runtimeError("loading global '%s': %v", vm.strs.Lookup(name.Str), err)
				}
				if found {
					v, ok = stored, true
					vm.globals[name.Str] = stored
				}
			}
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", vm.strs.Lookup(name.Str))
			}
			vm.push(v)

		case chunk.OpSetGlobal:
			name := vm.readConstant()
			if _, ok := vm.globals[name.Str]; !ok {
				if vm.cfg.Store == nil {
					return vm.runtimeError("Undefined variable '%s'.", vm.strs.Lookup(name.Str))
				}
				_, found, err := vm.cfg.Store.Load(vm.strs.Lookup(name.Str))
				if err != nil {
					return vm.runtimeError("loading global '%s': %v", vm.strs.Lookup(name.Str), err)
				}
				if !found {
					return vm.runtimeError("Undefined variable '%s'.", vm.strs.Lookup(name.Str))
				}
			}
			v := vm.peek(0)
			vm.globals[name.Str] = v
			if vm.cfg.Store != nil {
				if err := vm.cfg.Store.Store(vm.strs.Lookup(name.Str), v); err != nil {
					return vm.runtimeError("persisting global '%s': %v", vm.strs.Lookup(name.Str), err)
				}
			}

		case chunk.OpGetLocal:
			slot := vm.readByte()
			vm.push(vm.stack[slot])

		case chunk.OpSetLocal:
			slot := vm.readByte()
			vm.stack[slot] = vm.peek(0)

		case chunk.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.NewBool(a.Equal(b)))

		case chunk.OpGreater:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.NewBool(a > b) }); err != nil {
				return err
			}
		case chunk.OpLess:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.NewBool(a < b) }); err != nil {
				return err
			}

		case chunk.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case chunk.OpSubtract:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.NewNumber(a - b) }); err != nil {
				return err
			}
		case chunk.OpMultiply:
			if err := vm.multiply(); err != nil {
				return err
			}
		case chunk.OpDivide:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.NewNumber(a / b) }); err != nil {
				return err
			}

		case chunk.OpNot:
			vm.push(value.NewBool(vm.pop().IsFalsy()))

		case chunk.OpNegate:
			if vm.peek(0).Type != value.Number {
				return vm.runtimeError("operand must be a number")
			}
			v := vm.pop()
			vm.push(value.NewNumber(-v.Number))

		case chunk.OpPrint:
			v := vm.pop()
			fmt.Println(v.Print(vm.strs))

		case chunk.OpReturn:
			return nil

		default:
			return vm.runtimeError("unknown opcode %d", op)
		}
	}
}

// add implements OP_ADD's two overloads: numeric addition, and string
// concatenation. Both operands must share the same type; a Number and
// a String is a runtime type error, not an implicit stringification.
func (vm *VM) add() error {
	b := vm.peek(0)
	a := vm.peek(1)

	if a.Type == value.Number && b.Type == value.Number {
		vm.pop()
		vm.pop()
		vm.push(value.NewNumber(a.Number + b.Number))
		return nil
	}
	if a.Type == value.String && b.Type == value.String {
		vm.pop()
		vm.pop()
		concatenated := a.Print(vm.strs) + b.Print(vm.strs)
		vm.push(value.NewString(vm.strs.Intern(concatenated)))
		return nil
	}
	return vm.runtimeError("operands must be two numbers or two strings")
}

// multiply implements OP_MULTIPLY's string-repeat overload: string * number
// repeats the string floor(number) times, matching the rest of the
// language's permissive operator overloading on strings.
func (vm *VM) multiply() error {
	a := vm.peek(1)
	b := vm.peek(0)

	if a.Type == value.Number && b.Type == value.Number {
		vm.pop()
		vm.pop()
		vm.push(value.NewNumber(a.Number * b.Number))
		return nil
	}

	str, n, ok := stringRepeatOperands(a, b)
	if !ok {
		return vm.runtimeError("operands must be two numbers, or a string and a number")
	}
	vm.pop()
	vm.pop()
	repeated := ""
	for i := 0; i < n; i++ {
		repeated += vm.strs.Lookup(str)
	}
	vm.push(value.NewString(vm.strs.Intern(repeated)))
	return nil
}

func stringRepeatOperands(a, b value.Value) (intern.Handle, int, bool) {
	if a.Type == value.String && b.Type == value.Number {
		return a.Str, int(b.Number), true
	}
	if b.Type == value.String && a.Type == value.Number {
		return b.Str, int(a.Number), true
	}
	return 0, 0, false
}

func (vm *VM) binaryNumberOp(op func(a, b float64) value.Value) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if a.Type != value.Number || b.Type != value.Number {
		return vm.runtimeError("operands must be numbers")
	}
	vm.pop()
	vm.pop()
	vm.push(op(a.Number, b.Number))
	return nil
}

func (vm *VM) traceInstruction() {
	stackDump := make([]string, 0, vm.stackTop)
	for i := 0; i < vm.stackTop; i++ {
		stackDump = append(stackDump, vm.stack[i].Print(vm.strs))
	}
	vm.log.WithFields(logrus.Fields{
		"ip":    vm.ip,
		"stack": stackDump,
	}).Debugln(vm.chunk.DisassembleAt(vm.ip, vm.strs))
}
