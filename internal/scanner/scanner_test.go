package scanner

import (
	"testing"

	"wisp/internal/token"
)

func TestNextTokenBasic(t *testing.T) {
	src := `var a = "hi " + "there"; // trailing comment
print a == nil;
1.5 1. .5`

	want := []token.Kind{
		token.Var, token.Identifier, token.Equal, token.Str, token.Plus, token.Str, token.Semicolon,
		token.Print, token.Identifier, token.EqualEqual, token.Nil, token.Semicolon,
		token.Number, token.Number, token.Dot, token.Dot, token.Number,
		token.EOF,
	}

	s := New(src)
	for i, k := range want {
		tok := s.Next()
		if tok.Kind != k {
			t.Fatalf("token %d: got %s, want %s (lexeme %q)", i, tok.Kind, k, tok.Lexeme)
		}
	}
}

func TestKeywordTrieDistinguishesPrefixes(t *testing.T) {
	s := New("this threshold for format fun function")
	want := []token.Kind{token.This, token.Identifier, token.For, token.Identifier, token.Fun, token.Identifier}
	for i, k := range want {
		tok := s.Next()
		if tok.Kind != k {
			t.Fatalf("token %d (%q): got %s, want %s", i, tok.Lexeme, tok.Kind, k)
		}
	}
}

func TestUnterminatedStringIsError(t *testing.T) {
	s := New(`"no closing quote`)
	tok := s.Next()
	if tok.Kind != token.Error {
		t.Fatalf("expected ERROR token, got %s", tok.Kind)
	}
}

func TestMultilineStringAdvancesLine(t *testing.T) {
	s := New("\"line1\nline2\" x")
	str := s.Next()
	if str.Kind != token.Str {
		t.Fatalf("expected STRING, got %s", str.Kind)
	}
	ident := s.Next()
	if ident.Line != 2 {
		t.Fatalf("expected token after multi-line string on line 2, got line %d", ident.Line)
	}
}

func TestUnknownCharacterIsError(t *testing.T) {
	s := New("@")
	tok := s.Next()
	if tok.Kind != token.Error {
		t.Fatalf("expected ERROR token for '@', got %s", tok.Kind)
	}
}
