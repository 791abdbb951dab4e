package compiler

import (
	"testing"

	"wisp/internal/token"
)

func tok(name string) token.Token {
	return token.Token{Kind: token.Identifier, Lexeme: name}
}

func TestScopeShadowingAcrossDepths(t *testing.T) {
	var s scopeTracker
	s.begin()
	s.addLocal(tok("x"))
	s.defineLast()

	s.begin()
	if s.declaredInCurrentScope("x") {
		t.Fatalf("shadowing in a new scope should be allowed")
	}
	s.addLocal(tok("x"))
	s.defineLast()

	if !s.declaredInCurrentScope("x") {
		t.Fatalf("expected duplicate in same scope to be detected")
	}

	slot, result := s.resolve("x")
	if result != resolveOK || slot != 1 {
		t.Fatalf("expected inner x at slot 1, got slot=%d result=%v", slot, result)
	}

	popped := s.end()
	if popped != 1 {
		t.Fatalf("expected 1 local popped at scope end, got %d", popped)
	}

	slot, result = s.resolve("x")
	if result != resolveOK || slot != 0 {
		t.Fatalf("expected outer x at slot 0 after inner scope ends, got slot=%d result=%v", slot, result)
	}
}

func TestResolveOwnInitializer(t *testing.T) {
	var s scopeTracker
	s.begin()
	s.addLocal(tok("a")) // depth left at declaredNotDefined: "var a = a;"

	_, result := s.resolve("a")
	if result != resolveOwnInitializer {
		t.Fatalf("expected resolveOwnInitializer, got %v", result)
	}
}

func TestResolveAbsentIsGlobal(t *testing.T) {
	var s scopeTracker
	_, result := s.resolve("nonexistent")
	if result != resolveAbsent {
		t.Fatalf("expected resolveAbsent for unknown name, got %v", result)
	}
}
