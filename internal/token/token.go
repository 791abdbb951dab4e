// Package token defines the lexical token kinds produced by the scanner.
package token

import "fmt"

// Kind identifies a token's lexical category.
type Kind int

const (
	// Punctuation / grouping
	LeftParen Kind = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Semicolon

	// One or two character operators
	Minus
	Plus
	Slash
	Star
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals
	Identifier
	Str
	Number

	// Keywords (16 reserved words; only a subset is operational — see
	// the compiler package for which ones actually emit bytecode)
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	// Synthetic
	Error
	EOF
)

var names = [...]string{
	LeftParen: "(", RightParen: ")", LeftBrace: "{", RightBrace: "}",
	Comma: ",", Dot: ".", Semicolon: ";",
	Minus: "-", Plus: "+", Slash: "/", Star: "*",
	Bang: "!", BangEqual: "!=", Equal: "=", EqualEqual: "==",
	Greater: ">", GreaterEqual: ">=", Less: "<", LessEqual: "<=",
	Identifier: "IDENTIFIER", Str: "STRING", Number: "NUMBER",
	And: "and", Class: "class", Else: "else", False: "false",
	For: "for", Fun: "fun", If: "if", Nil: "nil", Or: "or",
	Print: "print", Return: "return", Super: "super", This: "this",
	True: "true", Var: "var", While: "while",
	Error: "ERROR", EOF: "EOF",
}

func (k Kind) String() string {
	if int(k) < len(names) && names[k] != "" {
		return names[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps reserved-word spelling to its Kind. The scanner does not
// read this map: it recognizes the same 16 words with the hand-written
// trie in scanner.identifierKind.
var Keywords = map[string]Kind{
	"and": And, "class": Class, "else": Else, "false": False,
	"for": For, "fun": Fun, "if": If, "nil": Nil, "or": Or,
	"print": Print, "return": Return, "super": Super, "this": This,
	"true": True, "var": Var, "while": While,
}

// Token is a single lexical unit: its kind, a copy of the source slice
// it spans, and the 1-based source line the scanner was on when the
// token ended (for a multi-line string, its last line). ERROR tokens
// carry a diagnostic message as their Lexeme instead of source text.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
}

func (t Token) String() string {
	return fmt.Sprintf("%d: %q <%s>", t.Line, t.Lexeme, t.Kind)
}
