package compiler

import (
	"golang.org/x/exp/slices"

	"wisp/internal/token"
)

// declaredNotDefined marks a local whose initializer has not finished
// compiling yet: reading it is the compile-time self-reference guard.
const declaredNotDefined = -1

type local struct {
	name  token.Token
	depth int
}

// scopeTracker is an ordered stack of declared locals plus the current
// scope depth (0 = global). Locals are pushed on declaration, popped on
// scope exit; their stack positions serve as the runtime operand for
// GET_LOCAL/SET_LOCAL.
type scopeTracker struct {
	locals []local
	depth  int
}

func (s *scopeTracker) begin() {
	s.depth++
}

// end pops locals whose depth exceeds the new (post-decrement) scope
// depth and returns how many were popped, so the emitter can issue that
// many POPs.
func (s *scopeTracker) end() int {
	s.depth--
	popped := 0
	for len(s.locals) > 0 && s.locals[len(s.locals)-1].depth > s.depth {
		s.locals = s.locals[:len(s.locals)-1]
		popped++
	}
	return popped
}

func (s *scopeTracker) isGlobal() bool {
	return s.depth == 0
}

func (s *scopeTracker) addLocal(name token.Token) {
	s.locals = append(s.locals, local{name: name, depth: declaredNotDefined})
}

func (s *scopeTracker) defineLast() {
	s.locals[len(s.locals)-1].depth = s.depth
}

// currentScopeLocals returns the suffix of locals declared at the
// current scope depth (or mid-declaration, depth == declaredNotDefined).
func (s *scopeTracker) currentScopeLocals() []local {
	start := len(s.locals)
	for start > 0 {
		d := s.locals[start-1].depth
		if d != declaredNotDefined && d < s.depth {
			break
		}
		start--
	}
	return s.locals[start:]
}

// declaredInCurrentScope reports whether name is already declared at
// the current scope depth, rejecting shadowing within the same scope.
// Outer scopes are not considered: re-declaring a name that shadows an
// enclosing local is allowed.
func (s *scopeTracker) declaredInCurrentScope(name string) bool {
	return slices.ContainsFunc(s.currentScopeLocals(), func(l local) bool {
		return l.name.Lexeme == name
	})
}

// resolveResult is the outcome of looking a name up in the local stack.
type resolveResult int

const (
	resolveAbsent resolveResult = iota
	resolveOK
	resolveOwnInitializer
)

// resolve walks locals top-down looking for name. A local whose depth
// is declaredNotDefined and whose name matches is reported as a
// self-reference in its own initializer — it is NOT skipped the way a
// naive resolver would skip uninitialized bindings.
func (s *scopeTracker) resolve(name string) (slot int, result resolveResult) {
	for i := len(s.locals) - 1; i >= 0; i-- {
		l := s.locals[i]
		if l.name.Lexeme != name {
			continue
		}
		if l.depth == declaredNotDefined {
			return i, resolveOwnInitializer
		}
		return i, resolveOK
	}
	return 0, resolveAbsent
}
