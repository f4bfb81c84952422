package sqlexpr

import (
	"github.com/leapstack-labs/semgen/pkg/dialect"
	"github.com/leapstack-labs/semgen/pkg/token"
)

// maxDepth bounds parenthesis nesting in the aggregation grammar.
const maxDepth = 256

// Shape summarizes what an expression contains.
type Shape struct {
	// Aggregates counts calls to allow-listed aggregate functions anywhere
	// in the expression, including nested and windowed calls.
	Aggregates int
	// Windowed is true if an OVER clause appears anywhere.
	Windowed bool
	// Simple is true if the expression is a simple aggregation.
	Simple bool
}

// Inspect tokenizes expr once and reports its Shape.
func Inspect(expr string, d *dialect.Dialect) Shape {
	toks := Tokenize(expr)

	var s Shape
	illegal := false
	for i, tok := range toks {
		switch {
		case tok.Type == token.OVER:
			s.Windowed = true
		case tok.Type == token.ILLEGAL:
			illegal = true
		case isAggregateCall(toks, i, d):
			s.Aggregates++
		}
	}

	if s.Windowed || illegal || s.Aggregates == 0 {
		return s
	}

	p := &aggParser{toks: toks, d: d}
	s.Simple = p.parseExpr(0) && p.peek().Type == token.EOF && p.calls > 0
	return s
}

// IsSimpleAggregation reports whether expr is built only from allow-listed
// aggregate calls, numeric literals and parentheses joined by arithmetic
// operators, with no OVER clause anywhere:
//
//	expr    := unary (('+' | '-' | '*' | '/' | '%') unary)*
//	unary   := ('+' | '-')* operand
//	operand := aggcall | '(' expr ')' | NUMBER
//	aggcall := NAME '(' balanced tokens ')'
//
// At least one aggregate call is required. Anything else, including FILTER
// and WITHIN GROUP suffixes or casts, is not a simple aggregation.
func IsSimpleAggregation(expr string, d *dialect.Dialect) bool {
	return Inspect(expr, d).Simple
}

// isAggregateCall reports whether toks[i] names an aggregate being called.
func isAggregateCall(toks []token.Token, i int, d *dialect.Dialect) bool {
	tok := toks[i]
	if tok.Type != token.IDENT && !token.IsKeyword(tok.Type) {
		return false
	}
	if i > 0 && toks[i-1].Type == token.DOT {
		return false
	}
	return i+1 < len(toks) && toks[i+1].Type == token.LPAREN && d.IsAggregate(tok.Literal)
}

type aggParser struct {
	toks  []token.Token
	pos   int
	d     *dialect.Dialect
	calls int
}

func (p *aggParser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *aggParser) advance() {
	if p.toks[p.pos].Type != token.EOF {
		p.pos++
	}
}

func (p *aggParser) parseExpr(depth int) bool {
	if depth > maxDepth || !p.parseUnary(depth) {
		return false
	}
	for token.IsArithmetic(p.peek().Type) {
		p.advance()
		if !p.parseUnary(depth) {
			return false
		}
	}
	return true
}

func (p *aggParser) parseUnary(depth int) bool {
	for p.peek().Type == token.PLUS || p.peek().Type == token.MINUS {
		p.advance()
	}
	return p.parseOperand(depth)
}

func (p *aggParser) parseOperand(depth int) bool {
	switch p.peek().Type {
	case token.NUMBER:
		p.advance()
		return true
	case token.LPAREN:
		p.advance()
		if !p.parseExpr(depth + 1) {
			return false
		}
		if p.peek().Type != token.RPAREN {
			return false
		}
		p.advance()
		return true
	}

	if !isAggregateCall(p.toks, p.pos, p.d) {
		return false
	}
	p.advance() // name
	if !p.skipBalanced() {
		return false
	}
	p.calls++
	return true
}

// skipBalanced consumes a parenthesized argument list starting at '('.
func (p *aggParser) skipBalanced() bool {
	depth := 0
	for {
		switch p.peek().Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				p.advance()
				return true
			}
		case token.EOF:
			return false
		}
		p.advance()
	}
}
