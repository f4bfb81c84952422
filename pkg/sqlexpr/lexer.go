// Package sqlexpr tokenizes SQL column expressions and answers the two
// questions the query generator needs: how an expression should be printed
// (keywords and known function names upper-cased, everything else verbatim)
// and whether it is a simple aggregation.
//
// It is deliberately not a SQL parser. Both operations work on the token
// stream with a small grammar and never fail: text the lexer cannot make sense
// of becomes ILLEGAL tokens, which are printed unchanged and make an
// expression non-aggregate.
package sqlexpr

import (
	"strings"

	"github.com/leapstack-labs/semgen/pkg/token"
)

// Lexer tokenizes an expression. Token literals are exact slices of the
// input so callers can rebuild the source byte for byte.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Tokenize returns all tokens of input, terminated by an EOF token.
func Tokenize(input string) []token.Token {
	l := NewLexer(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// atEOF distinguishes end of input from a literal NUL byte.
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	if l.atEOF() {
		return token.Token{Type: token.EOF, Pos: pos}
	}

	switch l.ch {
	case '+':
		return l.single(token.PLUS, pos)
	case '-':
		return l.single(token.MINUS, pos)
	case '*':
		return l.single(token.STAR, pos)
	case '/':
		return l.single(token.SLASH, pos)
	case '%':
		return l.single(token.PERCENT, pos)
	case '=':
		return l.single(token.EQ, pos)
	case '.':
		if isDigit(l.peekChar()) {
			return l.span(token.NUMBER, pos, l.readNumber)
		}
		return l.single(token.DOT, pos)
	case ',':
		return l.single(token.COMMA, pos)
	case '(':
		return l.single(token.LPAREN, pos)
	case ')':
		return l.single(token.RPAREN, pos)
	case '[':
		return l.single(token.LBRACKET, pos)
	case ']':
		return l.single(token.RBRACKET, pos)
	case '<':
		switch l.peekChar() {
		case '=':
			return l.double(token.LE, pos)
		case '>':
			return l.double(token.NE, pos)
		}
		return l.single(token.LT, pos)
	case '>':
		if l.peekChar() == '=' {
			return l.double(token.GE, pos)
		}
		return l.single(token.GT, pos)
	case '!':
		if l.peekChar() == '=' {
			return l.double(token.NE, pos)
		}
	case '|':
		if l.peekChar() == '|' {
			return l.double(token.DPIPE, pos)
		}
	case ':':
		if l.peekChar() == ':' {
			return l.double(token.DCOLON, pos)
		}
		return l.single(token.COLON, pos)
	case '\'':
		return l.span(token.STRING, pos, func() { l.readQuoted('\'') })
	case '"':
		return l.span(token.QIDENT, pos, func() { l.readQuoted('"') })
	case '`':
		return l.span(token.QIDENT, pos, func() { l.readQuoted('`') })
	default:
		switch {
		case isIdentStart(l.ch):
			tok := l.span(token.IDENT, pos, l.readIdentifier)
			tok.Type = token.LookupIdent(strings.ToLower(tok.Literal))
			return tok
		case isDigit(l.ch):
			return l.span(token.NUMBER, pos, l.readNumber)
		}
	}

	return l.single(token.ILLEGAL, pos)
}

// single consumes one character as a token.
func (l *Lexer) single(t token.TokenType, pos token.Position) token.Token {
	lit := l.input[l.pos:l.readPos]
	l.readChar()
	return token.Token{Type: t, Literal: lit, Pos: pos}
}

// double consumes two characters as a token.
func (l *Lexer) double(t token.TokenType, pos token.Position) token.Token {
	l.readChar()
	lit := l.input[pos.Offset:l.readPos]
	l.readChar()
	return token.Token{Type: t, Literal: lit, Pos: pos}
}

// span runs read and returns the consumed input as a token.
func (l *Lexer) span(t token.TokenType, pos token.Position, read func()) token.Token {
	read()
	return token.Token{Type: t, Literal: l.input[pos.Offset:l.pos], Pos: pos}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar() // skip '/'
			l.readChar() // skip '*'
			for !l.atEOF() {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
			continue
		}

		return
	}
}

// readQuoted consumes a quoted literal, treating a doubled quote as an
// escape. An unterminated literal runs to the end of input.
func (l *Lexer) readQuoted(quote byte) {
	l.readChar() // skip opening quote
	for !l.atEOF() {
		if l.ch == quote {
			if l.peekChar() == quote {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() {
	for isIdentStart(l.ch) || isDigit(l.ch) || l.ch == '$' {
		l.readChar()
	}
}

// readNumber reads an integer, decimal, or scientific literal.
func (l *Lexer) readNumber() {
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
}

// isIdentStart accepts ASCII letters, underscore and any non-ASCII byte so
// UTF-8 identifiers pass through intact.
func isIdentStart(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch >= 0x80
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
