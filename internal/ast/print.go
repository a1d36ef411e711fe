package ast

import (
	"fmt"
	"strings"
)

// Sprint renders a syntax tree as a compact s-expression, one production
// per parenthesized group. Intended for debugging and the parse command;
// the output is not a stable interchange format.
func Sprint(n Node) string {
	var b strings.Builder
	sprint(&b, n)
	return b.String()
}

func sprint(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Expression:
		b.WriteString("(expr ")
		sprint(b, v.Child)
		b.WriteString(")")
	case *Paren:
		b.WriteString("(paren ")
		sprint(b, v.Child)
		b.WriteString(")")
	case *Addition:
		sprintChain(b, "add", v.First, v.Rest)
	case *Multiplication:
		sprintChain(b, "mul", v.First, v.Rest)
	case *Boolean:
		sprintChain(b, "bool", v.First, v.Rest)
	case *Filter:
		b.WriteString("(filter ")
		sprint(b, v.Child)
		b.WriteString(")")
	case *Comparison:
		fmt.Fprintf(b, "(cmp %s ", v.Op)
		sprint(b, v.Left)
		b.WriteString(" ")
		sprint(b, v.Right)
		b.WriteString(")")
	case *Call:
		fmt.Fprintf(b, "(call %s", v.Name)
		for _, arg := range v.Args {
			b.WriteString(" ")
			sprint(b, arg)
		}
		b.WriteString(")")
	case *Case:
		b.WriteString("(case")
		for _, p := range v.Pairs {
			b.WriteString(" ")
			sprint(b, p.Cond)
			b.WriteString(" ")
			sprint(b, p.Result)
		}
		if v.Default != nil {
			b.WriteString(" default ")
			sprint(b, v.Default)
		}
		b.WriteString(")")
	case *MetricRef:
		b.WriteString("(metric ")
		sprint(b, v.Name)
		b.WriteString(")")
	case *DimensionRef:
		b.WriteString("(dimension ")
		sprint(b, v.Name)
		b.WriteString(")")
	case *Identifier:
		b.WriteString(v.Text)
	case *QuotedIdentifier:
		b.WriteString(v.Raw)
	case *StringLiteral:
		b.WriteString(v.Raw)
	case *NumberLiteral:
		if v.Negative {
			b.WriteString("-")
		}
		b.WriteString(v.Text)
	default:
		fmt.Fprintf(b, "(unknown %T)", n)
	}
}

func sprintChain(b *strings.Builder, tag string, first Node, rest []OpArg) {
	fmt.Fprintf(b, "(%s ", tag)
	sprint(b, first)
	for _, oa := range rest {
		fmt.Fprintf(b, " %s ", oa.Op)
		sprint(b, oa.Arg)
	}
	b.WriteString(")")
}
