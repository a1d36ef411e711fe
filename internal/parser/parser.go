// Package parser turns formula source text into the syntax tree defined
// by the ast package. Precedence, lowest first: OR/AND, comparisons,
// + -, * /, unary minus, primaries. Chains at one precedence level keep
// their (operator, operand) pairs in source order so the compiler can
// collapse them.
package parser

import (
	"fmt"
	"strings"

	"github.com/roach88/formulac/internal/ast"
)

// Parse converts formula source text into a syntax tree, or fails with a
// *SyntaxError describing the first structural problem.
func Parse(source string) (*ast.Expression, error) {
	p := &parser{lex: NewLexer(source)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	child, err := p.parseBoolean()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenEOF {
		return nil, p.errorf("unexpected %s after expression", describe(p.tok))
	}
	return &ast.Expression{Child: child}, nil
}

type parser struct {
	lex *Lexer
	tok Token
}

func (p *parser) advance() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Pos: p.tok.Pos, Message: fmt.Sprintf(format, args...)}
}

// keyword reports whether the current token is the given keyword,
// matched case-insensitively.
func (p *parser) keyword(kw string) bool {
	return p.tok.Type == TokenIdent && strings.EqualFold(p.tok.Value, kw)
}

func (p *parser) parseBoolean() (ast.Node, error) {
	first, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	var rest []ast.OpArg
	for p.keyword("and") || p.keyword("or") {
		op := p.tok.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		rest = append(rest, ast.OpArg{Op: op, Arg: arg})
	}

	if len(rest) == 0 {
		return first, nil
	}
	return &ast.Boolean{First: first, Rest: rest}, nil
}

func (p *parser) parseComparison() (ast.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	// Repeated comparisons nest left-associatively rather than chaining.
	for {
		var op string
		switch {
		case p.tok.Type == TokenEq, p.tok.Type == TokenNotEq,
			p.tok.Type == TokenLt, p.tok.Type == TokenLte,
			p.tok.Type == TokenGt, p.tok.Type == TokenGte:
			op = p.tok.Value
		case p.keyword("contains"):
			op = p.tok.Value
		default:
			return left, nil
		}

		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Comparison{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseAdditive() (ast.Node, error) {
	first, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	var rest []ast.OpArg
	for p.tok.Type == TokenPlus || p.tok.Type == TokenMinus {
		op := p.tok.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		rest = append(rest, ast.OpArg{Op: op, Arg: arg})
	}

	if len(rest) == 0 {
		return first, nil
	}
	return &ast.Addition{First: first, Rest: rest}, nil
}

func (p *parser) parseMultiplicative() (ast.Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	var rest []ast.OpArg
	for p.tok.Type == TokenStar || p.tok.Type == TokenSlash {
		op := p.tok.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		rest = append(rest, ast.OpArg{Op: op, Arg: arg})
	}

	if len(rest) == 0 {
		return first, nil
	}
	return &ast.Multiplication{First: first, Rest: rest}, nil
}

// parseUnary handles the one unary form in the grammar: a minus sign
// directly before a number literal. The sign stays a sibling marker on
// the literal node, never part of the lexeme.
func (p *parser) parseUnary() (ast.Node, error) {
	if p.tok.Type != TokenMinus {
		return p.parsePrimary()
	}

	pos := p.tok.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Type != TokenNumber {
		return nil, &SyntaxError{Pos: pos, Message: "unary minus must be followed by a number"}
	}
	n := &ast.NumberLiteral{Text: p.tok.Value, Negative: true}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) parsePrimary() (ast.Node, error) {
	switch p.tok.Type {
	case TokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseBoolean()
		if err != nil {
			return nil, err
		}
		if p.tok.Type != TokenRParen {
			return nil, p.errorf("expected ')', got %s", describe(p.tok))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Paren{Child: inner}, nil

	case TokenNumber:
		n := &ast.NumberLiteral{Text: p.tok.Value}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil

	case TokenString:
		n := &ast.StringLiteral{Raw: p.tok.Value}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil

	case TokenBracket:
		n := &ast.DimensionRef{Name: &ast.QuotedIdentifier{Raw: p.tok.Value}}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil

	case TokenHash:
		return p.parseMetric()

	case TokenIdent:
		name := p.tok.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Type != TokenLParen {
			return &ast.DimensionRef{Name: &ast.Identifier{Text: name}}, nil
		}
		if strings.EqualFold(name, "case") {
			return p.parseCase()
		}
		return p.parseCall(name)

	default:
		return nil, p.errorf("unexpected %s", describe(p.tok))
	}
}

func (p *parser) parseMetric() (ast.Node, error) {
	if err := p.advance(); err != nil { // consume '#'
		return nil, err
	}
	switch p.tok.Type {
	case TokenIdent:
		n := &ast.MetricRef{Name: &ast.Identifier{Text: p.tok.Value}}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil
	case TokenBracket:
		n := &ast.MetricRef{Name: &ast.QuotedIdentifier{Raw: p.tok.Value}}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, p.errorf("expected a metric name after '#', got %s", describe(p.tok))
	}
}

// parseCall parses the argument list of a function application. The
// opening parenthesis is the current token.
func (p *parser) parseCall(name string) (ast.Node, error) {
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	return &ast.Call{Name: name, Args: args}, nil
}

// parseCase parses case(cond1, r1, cond2, r2, ..., default?). Arguments
// pair up in source order; a trailing odd argument is the default.
// Condition slots are wrapped in Filter nodes.
func (p *parser) parseCase() (ast.Node, error) {
	pos := p.tok.Pos
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, &SyntaxError{Pos: pos, Message: "case requires at least one condition and result"}
	}

	var def ast.Node
	if len(args)%2 == 1 {
		def = args[len(args)-1]
		args = args[:len(args)-1]
	}

	pairs := make([]ast.CasePair, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		pairs = append(pairs, ast.CasePair{
			Cond:   &ast.Filter{Child: args[i]},
			Result: args[i+1],
		})
	}
	return &ast.Case{Pairs: pairs, Default: def}, nil
}

func (p *parser) parseArgList() ([]ast.Node, error) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	if p.tok.Type == TokenRParen {
		return nil, p.advance()
	}

	var args []ast.Node
	for {
		arg, err := p.parseBoolean()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		switch p.tok.Type {
		case TokenComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case TokenRParen:
			return args, p.advance()
		default:
			return nil, p.errorf("expected ',' or ')', got %s", describe(p.tok))
		}
	}
}

func describe(t Token) string {
	if t.Type == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Value)
}
