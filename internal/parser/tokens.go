package parser

import "fmt"

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString  // raw text, including the enclosing quotes
	TokenIdent   // bare name; keywords are recognized by the parser
	TokenBracket // raw text, including the enclosing brackets
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenEq
	TokenNotEq
	TokenLt
	TokenLte
	TokenGt
	TokenGte
	TokenLParen
	TokenRParen
	TokenComma
	TokenHash
)

// Token is a lexical unit carrying the exact source substring.
type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte offset of the token's first character
}

// SyntaxError is a structural error in the formula source. The compiler
// propagates it to callers unmodified.
type SyntaxError struct {
	Pos     int // byte offset into the source
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Message)
}
