// Package compiler lowers formula syntax trees into canonical clause
// form. The walk is a single recursive pass: operator chains collapse
// into variadic clauses, comparisons stay binary, and every name is
// resolved against the query context as it is encountered.
package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/formulac/internal/ast"
	"github.com/roach88/formulac/internal/mbql"
	"github.com/roach88/formulac/internal/parser"
)

// Dimension is a resolved field-like reference. Its clause form is
// whatever the query context considers the canonical reference for
// that name, typically ["field", id].
type Dimension interface {
	MBQL() mbql.Expr
}

// Metric is a resolved saved-metric reference.
type Metric interface {
	MetricID() int64
}

// QueryContext resolves names written in a formula against one query's
// visible fields and metrics. Lookups happen per compilation; nothing
// is cached between calls.
type QueryContext interface {
	// ResolveDimension resolves a bare or bracketed name to a field.
	ResolveDimension(name string) (Dimension, bool)

	// ResolveMetric resolves a #-prefixed name to a saved metric.
	ResolveMetric(name string) (Metric, bool)
}

// Compiler lowers parsed formulas for one query context. The zero
// value resolves nothing; populate Query and Functions before use.
type Compiler struct {
	// Query resolves dimension and metric names. A nil Query fails
	// every reference with a resolution error.
	Query QueryContext

	// Functions maps formula function names to clause heads.
	Functions FunctionTable
}

// Compile parses and lowers source against the given query context
// using the default dialect table.
//
// Empty or blank source compiles to an empty clause without touching
// the parser. Syntax errors from the parser propagate unmodified;
// resolution failures surface as *ResolveError.
func Compile(source string, query QueryContext) (mbql.Expr, error) {
	c := &Compiler{Query: query, Functions: DefaultFunctions()}
	return c.Compile(source)
}

// Compile parses and lowers source into clause form.
func (c *Compiler) Compile(source string) (mbql.Expr, error) {
	if strings.TrimSpace(source) == "" {
		return mbql.Clause{}, nil
	}

	root, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return c.compileNode(root)
}

func (c *Compiler) compileNode(n ast.Node) (mbql.Expr, error) {
	switch n := n.(type) {
	case *ast.Expression:
		return c.compileNode(n.Child)
	case *ast.Paren:
		return c.compileNode(n.Child)
	case *ast.Filter:
		return c.compileNode(n.Child)

	case *ast.Addition:
		return c.collapse(n.First, n.Rest)
	case *ast.Multiplication:
		return c.collapse(n.First, n.Rest)
	case *ast.Boolean:
		return c.collapse(n.First, n.Rest)

	case *ast.Comparison:
		return c.compileComparison(n)
	case *ast.Call:
		return c.compileCall(n)
	case *ast.Case:
		return c.compileCase(n)
	case *ast.MetricRef:
		return c.compileMetric(n)
	case *ast.DimensionRef:
		return c.compileDimension(n)

	case *ast.NumberLiteral:
		f, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			return nil, &parser.SyntaxError{Message: fmt.Sprintf("malformed number literal %q", n.Text)}
		}
		if n.Negative {
			f = -f
		}
		return mbql.Number(f), nil

	case *ast.StringLiteral:
		s, err := parser.UnquoteString(n.Raw)
		if err != nil {
			return nil, err
		}
		return mbql.String(s), nil
	}

	return nil, fmt.Errorf("cannot compile node %T", n)
}

// collapse lowers an operator chain into variadic clause form. Each
// (operator, operand) pair either extends the running clause, when it
// is already headed by the same lower-cased operator, or starts a new
// binary clause around it. Compiling the first operand first means a
// parenthesized chain of the same operator flattens into its parent
// while chains of different operators stay nested.
func (c *Compiler) collapse(first ast.Node, rest []ast.OpArg) (mbql.Expr, error) {
	acc, err := c.compileNode(first)
	if err != nil {
		return nil, err
	}

	for _, pair := range rest {
		op := strings.ToLower(pair.Op)
		arg, err := c.compileNode(pair.Arg)
		if err != nil {
			return nil, err
		}

		if clause, ok := acc.(mbql.Clause); ok {
			if head, ok := clause.Head(); ok && head == op {
				acc = append(clause, arg)
				continue
			}
		}
		acc = mbql.NewClause(op, acc, arg)
	}
	return acc, nil
}

// compileComparison lowers one comparison. Comparisons are always
// binary: a = b = c arrives left-nested from the parser and stays
// nested here, never collapsed into a variadic clause.
func (c *Compiler) compileComparison(n *ast.Comparison) (mbql.Expr, error) {
	left, err := c.compileNode(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.compileNode(n.Right)
	if err != nil {
		return nil, err
	}
	return mbql.NewClause(strings.ToLower(n.Op), left, right), nil
}

func (c *Compiler) compileCall(n *ast.Call) (mbql.Expr, error) {
	head, ok := c.Functions.Resolve(n.Name)
	if !ok {
		return nil, NewUnknownFunctionError(n.Name)
	}

	args := make([]mbql.Expr, 0, len(n.Args))
	for _, a := range n.Args {
		arg, err := c.compileNode(a)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return mbql.NewClause(head, args...), nil
}

// compileCase lowers case(c1, r1, ..., default?) into
// ["case", [[c1 r1] ...]] with the default, when present, carried in a
// trailing options map.
func (c *Compiler) compileCase(n *ast.Case) (mbql.Expr, error) {
	pairs := make(mbql.Clause, 0, len(n.Pairs))
	for _, p := range n.Pairs {
		cond, err := c.compileNode(p.Cond)
		if err != nil {
			return nil, err
		}
		result, err := c.compileNode(p.Result)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, mbql.Clause{cond, result})
	}

	clause := mbql.NewClause("case", pairs)
	if n.Default != nil {
		def, err := c.compileNode(n.Default)
		if err != nil {
			return nil, err
		}
		clause = append(clause, mbql.Options{"default": def})
	}
	return clause, nil
}

func (c *Compiler) compileMetric(n *ast.MetricRef) (mbql.Expr, error) {
	name, err := refName(n.Name)
	if err != nil {
		return nil, err
	}
	if c.Query != nil {
		if m, ok := c.Query.ResolveMetric(name); ok {
			return mbql.NewClause("metric", mbql.Number(m.MetricID())), nil
		}
	}
	return nil, NewUnknownMetricError(name)
}

func (c *Compiler) compileDimension(n *ast.DimensionRef) (mbql.Expr, error) {
	name, err := refName(n.Name)
	if err != nil {
		return nil, err
	}
	if c.Query != nil {
		if d, ok := c.Query.ResolveDimension(name); ok {
			return d.MBQL(), nil
		}
	}
	return nil, NewUnknownFieldError(name)
}

// refName extracts the name a reference node spells, decoding bracket
// quoting when present.
func refName(n ast.Node) (string, error) {
	switch n := n.(type) {
	case *ast.Identifier:
		return n.Text, nil
	case *ast.QuotedIdentifier:
		return parser.UnquoteBracket(n.Raw)
	}
	return "", fmt.Errorf("cannot name node %T", n)
}
