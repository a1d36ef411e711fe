package parser

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Lexer converts formula source text into a sequence of tokens.
// Tokens keep their exact source spelling: string and bracket tokens
// include their delimiters, and keyword casing is preserved.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer over the given source text.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token. At the end of input it returns TokenEOF
// for all subsequent calls.
func (l *Lexer) Next() (Token, error) {
	l.skipSpace()

	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: start}, nil
	}

	c := l.input[l.pos]
	switch c {
	case '+':
		return l.symbol(TokenPlus, 1)
	case '-':
		return l.symbol(TokenMinus, 1)
	case '*':
		return l.symbol(TokenStar, 1)
	case '/':
		return l.symbol(TokenSlash, 1)
	case '(':
		return l.symbol(TokenLParen, 1)
	case ')':
		return l.symbol(TokenRParen, 1)
	case ',':
		return l.symbol(TokenComma, 1)
	case '#':
		return l.symbol(TokenHash, 1)
	case '=':
		return l.symbol(TokenEq, 1)
	case '!':
		if l.peekAt(1) == '=' {
			return l.symbol(TokenNotEq, 2)
		}
		return Token{}, &SyntaxError{Pos: start, Message: "unexpected character '!'"}
	case '<':
		if l.peekAt(1) == '=' {
			return l.symbol(TokenLte, 2)
		}
		return l.symbol(TokenLt, 1)
	case '>':
		if l.peekAt(1) == '=' {
			return l.symbol(TokenGte, 2)
		}
		return l.symbol(TokenGt, 1)
	case '"', '\'':
		return l.scanString(c)
	case '[':
		return l.scanBracket()
	}

	if c >= '0' && c <= '9' {
		return l.scanNumber(), nil
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	if r == '_' || unicode.IsLetter(r) {
		return l.scanIdent(), nil
	}

	return Token{}, &SyntaxError{Pos: start, Message: fmt.Sprintf("unexpected character %q", r)}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) symbol(tt TokenType, width int) (Token, error) {
	t := Token{Type: tt, Value: l.input[l.pos : l.pos+width], Pos: l.pos}
	l.pos += width
	return t, nil
}

// scanString reads a quoted string literal including its delimiters.
// A backslash escapes the following character; escape decoding itself is
// left to UnquoteString.
func (l *Lexer) scanString(quote byte) (Token, error) {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\\':
			l.pos += 2
		case quote:
			l.pos++
			return Token{Type: TokenString, Value: l.input[start:l.pos], Pos: start}, nil
		default:
			l.pos++
		}
	}
	return Token{}, &SyntaxError{Pos: start, Message: "unterminated string literal"}
}

// scanBracket reads a bracket-quoted identifier including its delimiters.
// A doubled closing bracket "]]" escapes a literal "]".
func (l *Lexer) scanBracket() (Token, error) {
	start := l.pos
	l.pos++ // opening bracket
	for l.pos < len(l.input) {
		if l.input[l.pos] != ']' {
			l.pos++
			continue
		}
		if l.peekAt(1) == ']' {
			l.pos += 2
			continue
		}
		l.pos++
		return Token{Type: TokenBracket, Value: l.input[start:l.pos], Pos: start}, nil
	}
	return Token{}, &SyntaxError{Pos: start, Message: "unterminated bracket identifier"}
}

// scanNumber reads an unsigned numeric literal: digits, an optional
// fraction, and an optional exponent. The sign is never part of the
// lexeme; unary minus is a sibling token attached by the parser.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	l.acceptDigits()
	if l.peekAt(0) == '.' && isDigit(l.peekAt(1)) {
		l.pos++
		l.acceptDigits()
	}
	if c := l.peekAt(0); c == 'e' || c == 'E' {
		next := l.peekAt(1)
		if isDigit(next) {
			l.pos++
			l.acceptDigits()
		} else if (next == '+' || next == '-') && isDigit(l.peekAt(2)) {
			l.pos += 2
			l.acceptDigits()
		}
	}
	return Token{Type: TokenNumber, Value: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) acceptDigits() {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// scanIdent reads a bare identifier: a letter or underscore followed by
// letters, digits, and underscores.
func (l *Lexer) scanIdent() Token {
	start := l.pos
	for l.pos < len(l.input) {
		r, width := utf8.DecodeRuneInString(l.input[l.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.pos += width
	}
	return Token{Type: TokenIdent, Value: l.input[start:l.pos], Pos: start}
}
