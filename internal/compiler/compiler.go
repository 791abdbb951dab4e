// Package compiler implements the single-pass Pratt parser that emits
// bytecode directly into a chunk — no intermediate AST.
package compiler

import (
	"strconv"

	"wisp/internal/chunk"
	"wisp/internal/intern"
	"wisp/internal/scanner"
	"wisp/internal/token"
	"wisp/internal/value"
)

// Diagnostic is one compile-time error: a source line and a message, in
// the format the interp package's CompileError renders as
// "compile error: <line>: <message>".
type Diagnostic struct {
	Line    int
	Message string
}

// synchronizeAt is the set of token kinds that plausibly start a new
// statement; synchronize() resumes there after an error.
var synchronizeAt = map[token.Kind]bool{
	token.Class: true, token.Fun: true, token.Var: true, token.For: true,
	token.If: true, token.While: true, token.Print: true, token.Return: true,
}

// Compiler drives a Pratt parser over one source string, writing
// straight into a chunk. It is single-use: construct a new one per
// compilation.
type Compiler struct {
	strs    *intern.Table
	scan    *scanner.Scanner
	chunk   *chunk.Chunk
	current token.Token
	prev    token.Token
	panic   bool
	diags   []Diagnostic
	scope   scopeTracker
}

// New returns a Compiler that interns string and identifier constants
// into strs.
func New(strs *intern.Table) *Compiler {
	return &Compiler{strs: strs}
}

// Compile compiles source into a chunk. If any error occurred, no chunk
// is returned — only the accumulated diagnostics. Errors raised while
// the panic-mode guard is set are dropped as cascades and never appear
// in that list.
func (c *Compiler) Compile(source string) (*chunk.Chunk, []Diagnostic) {
	c.scan = scanner.New(source)
	c.chunk = chunk.New()
	c.panic = false
	c.diags = nil
	c.scope = scopeTracker{}

	c.advance()
	for !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "Expect end of expression.")
	c.emitByte(byte(chunk.OpReturn))

	if len(c.diags) > 0 {
		return nil, c.diags
	}
	return c.chunk, nil
}

// --- token stream plumbing ---

func (c *Compiler) advance() {
	c.prev = c.current
	for {
		c.current = c.scan.Next()
		if c.current.Kind != token.Error {
			break
		}
		// A scanner ERROR token is folded into the same compile-error
		// path as any other diagnostic (spec §7: syntax errors are
		// converted into compile errors at the emitter boundary).
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool {
	return c.current.Kind == k
}

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, message string) {
	if c.check(k) {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *Compiler) errorAtPrevious(message string) {
	c.errorAt(c.prev, message)
}

func (c *Compiler) errorAt(t token.Token, message string) {
	if c.panic {
		return
	}
	c.panic = true
	c.diags = append(c.diags, Diagnostic{Line: t.Line, Message: message})
}

// synchronize skips tokens until a likely statement boundary: the
// previous token is ';' or the current token starts a new statement.
func (c *Compiler) synchronize() {
	c.panic = false
	for !c.check(token.EOF) {
		if c.prev.Kind == token.Semicolon {
			return
		}
		if synchronizeAt[c.current.Kind] {
			return
		}
		c.advance()
	}
}

// --- byte emission ---

func (c *Compiler) emitByte(b byte) {
	c.chunk.WriteByte(b, c.prev.Line)
}

func (c *Compiler) emitBytes(b1, b2 byte) {
	c.emitByte(b1)
	c.emitByte(b2)
}

func (c *Compiler) makeConstant(v value.Value) byte {
	idx := c.chunk.AddConstant(v)
	return byte(idx)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitBytes(byte(chunk.OpConstant), c.makeConstant(v))
}

// internString interns s and wraps the resulting handle as a Value.
func (c *Compiler) internString(s string) value.Value {
	return value.NewString(c.strs.Intern(s))
}

// --- Pratt core ---

func (c *Compiler) parsePrecedence(level precedence) {
	c.advance()
	rule := ruleFor(c.prev.Kind)
	if rule.prefix == fnNone {
		c.errorAtPrevious("Expect expression.")
		return
	}

	canAssign := level <= precAssignment
	c.dispatch(rule.prefix, canAssign)

	for level <= ruleFor(c.current.Kind).precedence {
		c.advance()
		infix := ruleFor(c.prev.Kind).infix
		c.dispatch(infix, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.errorAtPrevious("Invalid assignment target.")
	}
}

func (c *Compiler) dispatch(fn parseFn, canAssign bool) {
	switch fn {
	case fnGrouping:
		c.grouping()
	case fnUnary:
		c.unary()
	case fnBinary:
		c.binary()
	case fnNumber:
		c.number()
	case fnLiteral:
		c.literal()
	case fnString:
		c.string()
	case fnVariable:
		c.variable(canAssign)
	}
}

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}

func (c *Compiler) grouping() {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) number() {
	n, err := strconv.ParseFloat(c.prev.Lexeme, 64)
	if err != nil {
		c.errorAtPrevious("Invalid number.")
		return
	}
	c.emitConstant(value.NewNumber(n))
}

func (c *Compiler) string() {
	lexeme := c.prev.Lexeme
	c.emitConstant(c.internString(lexeme[1 : len(lexeme)-1]))
}

func (c *Compiler) literal() {
	switch c.prev.Kind {
	case token.False:
		c.emitByte(byte(chunk.OpFalse))
	case token.Nil:
		c.emitByte(byte(chunk.OpNil))
	case token.True:
		c.emitByte(byte(chunk.OpTrue))
	}
}

func (c *Compiler) unary() {
	opKind := c.prev.Kind
	c.parsePrecedence(precUnary)

	switch opKind {
	case token.Minus:
		c.emitByte(byte(chunk.OpNegate))
	case token.Bang:
		c.emitByte(byte(chunk.OpNot))
	}
}

func (c *Compiler) binary() {
	opKind := c.prev.Kind
	rule := ruleFor(opKind)
	c.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case token.Plus:
		c.emitByte(byte(chunk.OpAdd))
	case token.Minus:
		c.emitByte(byte(chunk.OpSubtract))
	case token.Star:
		c.emitByte(byte(chunk.OpMultiply))
	case token.Slash:
		c.emitByte(byte(chunk.OpDivide))
	case token.EqualEqual:
		c.emitByte(byte(chunk.OpEqual))
	case token.BangEqual:
		c.emitBytes(byte(chunk.OpEqual), byte(chunk.OpNot))
	case token.Greater:
		c.emitByte(byte(chunk.OpGreater))
	case token.GreaterEqual:
		c.emitBytes(byte(chunk.OpLess), byte(chunk.OpNot))
	case token.Less:
		c.emitByte(byte(chunk.OpLess))
	case token.LessEqual:
		c.emitBytes(byte(chunk.OpGreater), byte(chunk.OpNot))
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.prev, canAssign)
}

// namedVariable resolves name to either a local slot or a global
// constant, then — depending on canAssign and whether '=' follows —
// emits the matching get/set opcode. The getOp/setOp/arg computed here
// are rewritten wholesale in the global branch, not merely shadowed:
// there is exactly one pair of opcodes in play, never two sets of
// stale local-branch bindings left over.
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp chunk.OpCode
	var arg byte

	if slot, result := c.scope.resolve(name.Lexeme); result != resolveAbsent {
		if result == resolveOwnInitializer {
			c.errorAtPrevious("Cannot read local variable '" + name.Lexeme + "' in its own initializer.")
		}
		getOp, setOp, arg = chunk.OpGetLocal, chunk.OpSetLocal, byte(slot)
	} else {
		idx := c.makeConstant(c.internString(name.Lexeme))
		getOp, setOp, arg = chunk.OpGetGlobal, chunk.OpSetGlobal, idx
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitBytes(byte(setOp), arg)
	} else {
		c.emitBytes(byte(getOp), arg)
	}
}

// --- statements ---

func (c *Compiler) declaration() {
	if c.match(token.Var) {
		c.varDeclaration()
	} else {
		c.statement()
	}
	if c.panic {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global, hasGlobal := c.parseVariable("Expect variable name.")

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitByte(byte(chunk.OpNil))
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")

	c.defineVariable(global, hasGlobal)
}

// parseVariable consumes the identifier, declares it as a local (if in
// a local scope), and — only at global scope — interns it as a string
// constant for DEF_GLOBAL's operand.
func (c *Compiler) parseVariable(message string) (constIdx byte, isGlobal bool) {
	c.consume(token.Identifier, message)
	name := c.prev

	if !c.scope.isGlobal() {
		c.declareLocal(name)
		return 0, false
	}
	return c.makeConstant(c.internString(name.Lexeme)), true
}

func (c *Compiler) declareLocal(name token.Token) {
	if c.scope.declaredInCurrentScope(name.Lexeme) {
		c.errorAtPrevious("Variable with name '" + name.Lexeme + "' already declared in this scope.")
	}
	c.scope.addLocal(name)
}

func (c *Compiler) defineVariable(global byte, isGlobal bool) {
	if !isGlobal {
		c.scope.defineLast()
		return
	}
	c.emitBytes(byte(chunk.OpDefGlobal), global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.LeftBrace):
		c.scope.begin()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitByte(byte(chunk.OpPrint))
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitByte(byte(chunk.OpPop))
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) endScope() {
	n := c.scope.end()
	for i := 0; i < n; i++ {
		c.emitByte(byte(chunk.OpPop))
	}
}
