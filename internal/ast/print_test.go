package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSprintChain(t *testing.T) {
	n := &Expression{Child: &Addition{
		First: &DimensionRef{Name: &Identifier{Text: "Subtotal"}},
		Rest: []OpArg{
			{Op: "+", Arg: &NumberLiteral{Text: "1"}},
			{Op: "-", Arg: &NumberLiteral{Text: "2", Negative: true}},
		},
	}}

	assert.Equal(t, "(expr (add (dimension Subtotal) + 1 - -2))", Sprint(n))
}

func TestSprintCase(t *testing.T) {
	n := &Case{
		Pairs: []CasePair{{
			Cond: &Filter{Child: &Comparison{
				Op:    "=",
				Left:  &DimensionRef{Name: &QuotedIdentifier{Raw: "[Status]"}},
				Right: &StringLiteral{Raw: `"promo"`},
			}},
			Result: &NumberLiteral{Text: "0.9"},
		}},
		Default: &NumberLiteral{Text: "1"},
	}

	assert.Equal(t,
		`(case (filter (cmp = (dimension [Status]) "promo")) 0.9 default 1)`,
		Sprint(n))
}
