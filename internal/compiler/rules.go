package compiler

import "wisp/internal/token"

// Precedence levels, ascending. Incrementing a precedence by 1 yields
// the right-binding threshold used for left-associative parsing;
// incrementing precPrimary is a compiler bug (there is no level above
// it), not a condition this code needs to handle at runtime.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

// parseFn names one of the seven prefix/infix handlers a token kind can
// dispatch to. Representing handlers as a closed enumeration (rather
// than function pointers) keeps the rule table a plain array of
// records and the dispatch a single exhaustive match.
type parseFn int

const (
	fnNone parseFn = iota
	fnGrouping
	fnUnary
	fnBinary
	fnNumber
	fnLiteral
	fnString
	fnVariable
)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// rules is indexed by token.Kind. Token kinds with no entry (beyond the
// table's length) default to the zero parseRule: no prefix, no infix,
// precNone.
var rules = [...]parseRule{
	token.LeftParen:    {fnGrouping, fnNone, precNone},
	token.Minus:        {fnUnary, fnBinary, precTerm},
	token.Plus:         {fnNone, fnBinary, precTerm},
	token.Slash:        {fnNone, fnBinary, precFactor},
	token.Star:         {fnNone, fnBinary, precFactor},
	token.Bang:         {fnUnary, fnNone, precNone},
	token.BangEqual:    {fnNone, fnBinary, precEquality},
	token.EqualEqual:   {fnNone, fnBinary, precEquality},
	token.Greater:      {fnNone, fnBinary, precComparison},
	token.GreaterEqual: {fnNone, fnBinary, precComparison},
	token.Less:         {fnNone, fnBinary, precComparison},
	token.LessEqual:    {fnNone, fnBinary, precComparison},
	token.Identifier:   {fnVariable, fnNone, precNone},
	token.Str:          {fnString, fnNone, precNone},
	token.Number:       {fnNumber, fnNone, precNone},
	token.False:        {fnLiteral, fnNone, precNone},
	token.Nil:          {fnLiteral, fnNone, precNone},
	token.True:         {fnLiteral, fnNone, precNone},
}

func ruleFor(k token.Kind) parseRule {
	if int(k) < len(rules) {
		return rules[k]
	}
	return parseRule{} // zero value: {fnNone, fnNone, precNone}
}
