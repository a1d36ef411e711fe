// Package ast defines the syntax tree produced by the formula parser.
//
// Node is a sealed interface with one implementation per grammar
// production. The marker method pattern prevents external implementations
// and enables exhaustive type switches in the compiler.
package ast

// Node is a sealed interface over syntax-tree productions.
// Only the types in this package implement it.
type Node interface {
	node() // Marker method - seals interface to this package
}

// Expression is the top-level wrapper production. It contributes no shape
// of its own; the compiler delegates straight to the child.
type Expression struct {
	Child Node
}

func (*Expression) node() {}

// Paren is a parenthesized sub-expression. Pass-through, like Expression.
type Paren struct {
	Child Node
}

func (*Paren) node() {}

// OpArg is one (operator, operand) step in a binary-operator chain.
// The operator keeps its source spelling; lower-casing happens at compile
// time.
type OpArg struct {
	Op  string
	Arg Node
}

// Addition is a chain of + and - applications at the additive precedence
// level: First, then Rest in left-to-right source order.
type Addition struct {
	First Node
	Rest  []OpArg
}

func (*Addition) node() {}

// Multiplication is a chain of * and / applications.
type Multiplication struct {
	First Node
	Rest  []OpArg
}

func (*Multiplication) node() {}

// Boolean is a chain of AND/OR applications.
type Boolean struct {
	First Node
	Rest  []OpArg
}

func (*Boolean) node() {}

// Filter wraps the boolean chain used as a case-expression condition.
type Filter struct {
	Child Node
}

func (*Filter) node() {}

// Comparison is a single binary comparison (=, !=, <, <=, >, >=, CONTAINS).
// Repeated comparisons nest left-associatively; they never chain flat.
type Comparison struct {
	Op    string
	Left  Node
	Right Node
}

func (*Comparison) node() {}

// Call is a function application with arguments in declared order.
type Call struct {
	Name string
	Args []Node
}

func (*Call) node() {}

// CasePair is one (condition, result) slot pair of a case expression.
type CasePair struct {
	Cond   Node // always a *Filter
	Result Node
}

// Case is a case(cond1, r1, cond2, r2, ..., default?) expression.
// Default is nil when the trailing default slot is absent.
type Case struct {
	Pairs   []CasePair
	Default Node
}

func (*Case) node() {}

// MetricRef references a named aggregation: #Name or #[Quoted Name].
// Name is an *Identifier or *QuotedIdentifier.
type MetricRef struct {
	Name Node
}

func (*MetricRef) node() {}

// DimensionRef references a data column: Name or [Quoted Name].
// Name is an *Identifier or *QuotedIdentifier.
type DimensionRef struct {
	Name Node
}

func (*DimensionRef) node() {}

// Identifier is a bare name leaf carrying the exact source text.
type Identifier struct {
	Text string
}

func (*Identifier) node() {}

// QuotedIdentifier is a bracket-quoted name leaf. Raw includes the
// enclosing brackets; decoding is the parser's unquote utility's job.
type QuotedIdentifier struct {
	Raw string
}

func (*QuotedIdentifier) node() {}

// StringLiteral is a quoted string leaf. Raw includes the enclosing quotes.
type StringLiteral struct {
	Raw string
}

func (*StringLiteral) node() {}

// NumberLiteral is a numeric leaf. A leading unary minus is stored as the
// Negative sign marker, not inside the lexeme.
type NumberLiteral struct {
	Text     string
	Negative bool
}

func (*NumberLiteral) node() {}
