package sqlexpr

import (
	"strings"

	"github.com/leapstack-labs/semgen/pkg/dialect"
	"github.com/leapstack-labs/semgen/pkg/token"
)

// Normalize upper-cases keywords and the names of known functions in expr.
// Identifiers, literals, quoted names, whitespace and comments are copied
// unchanged, so an expression without keywords is returned as is.
//
// A word directly after or before a dot is part of a qualified name and is
// never treated as a keyword. Non-reserved keywords (FIRST, RANGE, ROWS, ...)
// and dialect keywords are only upper-cased where they act as keywords, so
// columns with those names keep their spelling.
func Normalize(expr string, d *dialect.Dialect) string {
	toks := Tokenize(expr)
	window := windowSpans(toks)

	var b strings.Builder
	b.Grow(len(expr))
	last := 0
	for i, tok := range toks {
		if tok.Type == token.EOF {
			break
		}
		if !shouldUpper(toks, i, window[i], d) {
			continue
		}
		b.WriteString(expr[last:tok.Pos.Offset])
		b.WriteString(strings.ToUpper(tok.Literal))
		last = tok.End()
	}
	b.WriteString(expr[last:])
	return b.String()
}

// windowSpans marks the tokens inside the parentheses of OVER (...).
func windowSpans(toks []token.Token) []bool {
	in := make([]bool, len(toks))
	for i := 0; i+1 < len(toks); i++ {
		if toks[i].Type != token.OVER || toks[i+1].Type != token.LPAREN {
			continue
		}
		depth := 0
		for j := i + 1; j < len(toks) && toks[j].Type != token.EOF; j++ {
			switch toks[j].Type {
			case token.LPAREN:
				depth++
			case token.RPAREN:
				depth--
			}
			in[j] = true
			if depth == 0 {
				break
			}
		}
	}
	return in
}

func shouldUpper(toks []token.Token, i int, inWindow bool, d *dialect.Dialect) bool {
	tok := toks[i]
	if tok.Type != token.IDENT && !token.IsKeyword(tok.Type) {
		return false
	}
	prev := token.Token{Type: token.EOF}
	if i > 0 {
		prev = toks[i-1]
	}
	next := toks[i+1] // toks always ends with EOF
	if prev.Type == token.DOT || next.Type == token.DOT {
		return false
	}
	if next.Type == token.LPAREN && d.IsFunction(tok.Literal) {
		return true
	}
	if token.IsReserved(tok.Type) {
		return true
	}
	if token.IsKeyword(tok.Type) {
		return keywordPosition(tok.Type, prev, next, inWindow)
	}
	// Dialect keywords are operators such as ILIKE or suffixes such as
	// IGNORE NULLS; anywhere else the word is a column name.
	return d.IsKeyword(tok.Literal) && endsOperand(prev) && startsOperand(next)
}

// keywordPosition reports whether a non-reserved keyword is used as one.
func keywordPosition(t token.TokenType, prev, next token.Token, inWindow bool) bool {
	switch t {
	case token.FILTER:
		return prev.Type == token.RPAREN && next.Type == token.LPAREN
	case token.NULLS:
		return next.Type == token.FIRST || next.Type == token.LAST ||
			strings.EqualFold(prev.Literal, "ignore") || strings.EqualFold(prev.Literal, "respect")
	case token.FIRST, token.LAST:
		return prev.Type == token.NULLS
	case token.ROWS, token.RANGE, token.GROUPS:
		if !inWindow {
			return false
		}
		switch next.Type {
		case token.BETWEEN, token.UNBOUNDED, token.CURRENT, token.NUMBER:
			return true
		}
		return false
	case token.UNBOUNDED:
		return inWindow && (next.Type == token.PRECEDING || next.Type == token.FOLLOWING)
	case token.PRECEDING, token.FOLLOWING:
		return inWindow && (prev.Type == token.UNBOUNDED || prev.Type == token.NUMBER || prev.Type == token.STRING)
	case token.CURRENT:
		return inWindow && next.Type == token.ROW
	case token.ROW:
		return inWindow && prev.Type == token.CURRENT
	default:
		return false
	}
}

func endsOperand(tok token.Token) bool {
	switch tok.Type {
	case token.IDENT, token.QIDENT, token.NUMBER, token.STRING,
		token.RPAREN, token.RBRACKET, token.TRUE, token.FALSE, token.NULL, token.NOT:
		return true
	default:
		return false
	}
}

func startsOperand(tok token.Token) bool {
	switch tok.Type {
	case token.IDENT, token.QIDENT, token.NUMBER, token.STRING, token.LPAREN:
		return true
	default:
		return token.IsKeyword(tok.Type)
	}
}
