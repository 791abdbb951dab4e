// Package value implements the VM's tagged value representation.
package value

import (
	"fmt"
	"strconv"

	"wisp/internal/intern"
)

// Type tags a Value's payload. The set is closed and exhaustive: every
// switch over Type in this codebase must cover all five.
type Type int

const (
	Nil Type = iota
	Bool
	Number
	String
	Object // reserved for future heap objects; unused today
)

func (t Type) String() string {
	switch t {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Value is a tagged union over the language's runtime values. Only the
// field matching Type is meaningful; the others are zero.
type Value struct {
	Type   Type
	Bool   bool
	Number float64
	Str    intern.Handle
	Obj    interface{} // reserved, always nil today
}

// NilValue is the singleton nil value.
var NilValue = Value{Type: Nil}

func NewBool(b bool) Value {
	return Value{Type: Bool, Bool: b}
}

func NewNumber(n float64) Value {
	return Value{Type: Number, Number: n}
}

func NewString(h intern.Handle) Value {
	return Value{Type: String, Str: h}
}

// IsFalsy reports the language's truthiness rule: Nil and Bool(false)
// are falsy, everything else — including the empty string — is truthy.
func (v Value) IsFalsy() bool {
	switch v.Type {
	case Nil:
		return true
	case Bool:
		return !v.Bool
	default:
		return false
	}
}

// Equal implements cross-tag-false value equality. Two values of
// different Type are never equal, even if their payloads would compare
// equal under a weaker rule (e.g. Number(0) vs Bool(false)).
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case Nil:
		return true
	case Bool:
		return v.Bool == o.Bool
	case Number:
		return v.Number == o.Number
	case String:
		return v.Str == o.Str
	case Object:
		return v.Obj == o.Obj
	default:
		return false
	}
}

// Print renders v the way OP_PRINT writes it to stdout: nil, true/false,
// a base-10 number, or a string's raw contents.
func (v Value) Print(strs *intern.Table) string {
	switch v.Type {
	case Nil:
		return "nil"
	case Bool:
		if v.Bool {
			return "true"
		}
		return "false"
	case Number:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case String:
		return strs.Lookup(v.Str)
	default:
		return fmt.Sprintf("<object %v>", v.Obj)
	}
}
