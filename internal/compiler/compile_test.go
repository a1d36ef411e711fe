package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formulac/internal/mbql"
	"github.com/roach88/formulac/internal/parser"
)

type fakeField int64

func (f fakeField) MBQL() mbql.Expr {
	return mbql.NewClause("field", mbql.Number(f))
}

type fakeMetric int64

func (m fakeMetric) MetricID() int64 { return int64(m) }

// fakeQuery resolves names against fixed id maps.
type fakeQuery struct {
	fields  map[string]int64
	metrics map[string]int64
}

func (q *fakeQuery) ResolveDimension(name string) (Dimension, bool) {
	id, ok := q.fields[name]
	return fakeField(id), ok
}

func (q *fakeQuery) ResolveMetric(name string) (Metric, bool) {
	id, ok := q.metrics[name]
	return fakeMetric(id), ok
}

func ordersQuery() *fakeQuery {
	return &fakeQuery{
		fields: map[string]int64{
			"Subtotal": 1,
			"Tax":      2,
			"Total":    3,
			"Category": 4,
		},
		metrics: map[string]int64{
			"Revenue":     10,
			"Order Count": 11,
		},
	}
}

// canonical compiles source and returns the canonical JSON of the
// result, failing the test on any error.
func canonical(t *testing.T, source string, query QueryContext) string {
	t.Helper()
	expr, err := Compile(source, query)
	require.NoError(t, err)
	out, err := mbql.MarshalCanonical(expr)
	require.NoError(t, err)
	return string(out)
}

func TestCompileNestedArithmetic(t *testing.T) {
	got := canonical(t, "[Subtotal] + [Tax] * 0.0825", ordersQuery())
	assert.Equal(t, `["+",["field",1],["*",["field",2],0.0825]]`, got)
}

func TestCompileFlattensSameOperatorChain(t *testing.T) {
	got := canonical(t, "Subtotal + Tax + Total", ordersQuery())
	assert.Equal(t, `["+",["field",1],["field",2],["field",3]]`, got)
}

func TestCompileFlattensLeftParenthesizedChain(t *testing.T) {
	got := canonical(t, "(Subtotal + Tax) + Total", ordersQuery())
	assert.Equal(t, `["+",["field",1],["field",2],["field",3]]`, got)
}

func TestCompileKeepsRightParenthesizedChainNested(t *testing.T) {
	got := canonical(t, "Subtotal + (Tax + Total)", ordersQuery())
	assert.Equal(t, `["+",["field",1],["+",["field",2],["field",3]]]`, got)
}

func TestCompileMixedOperatorsNest(t *testing.T) {
	got := canonical(t, "Subtotal + Tax - Total", ordersQuery())
	assert.Equal(t, `["-",["+",["field",1],["field",2]],["field",3]]`, got)
}

func TestCompileDivisionChain(t *testing.T) {
	got := canonical(t, "Total / Subtotal / Tax", ordersQuery())
	assert.Equal(t, `["/",["field",3],["field",1],["field",2]]`, got)
}

func TestCompileBooleanOperatorsLowerCase(t *testing.T) {
	got := canonical(t, "Subtotal > 100 AND Tax < 10", ordersQuery())
	assert.Equal(t, `["and",[">",["field",1],100],["<",["field",2],10]]`, got)
}

func TestCompileBooleanChainFlattens(t *testing.T) {
	got := canonical(t, "Subtotal > 1 AND Tax > 2 AND Total > 3", ordersQuery())
	assert.Equal(t, `["and",[">",["field",1],1],[">",["field",2],2],[">",["field",3],3]]`, got)
}

func TestCompileContainsLowerCasesAndStaysBinary(t *testing.T) {
	got := canonical(t, `[Category] CONTAINS "Widget"`, ordersQuery())
	assert.Equal(t, `["contains",["field",4],"Widget"]`, got)
}

func TestCompileRepeatedComparisonsNestLeft(t *testing.T) {
	got := canonical(t, "Subtotal = Tax = Total", ordersQuery())
	assert.Equal(t, `["=",["=",["field",1],["field",2]],["field",3]]`, got)
}

func TestCompileNegativeNumber(t *testing.T) {
	got := canonical(t, "-5", ordersQuery())
	assert.Equal(t, `-5`, got)

	got = canonical(t, "Subtotal - -2", ordersQuery())
	assert.Equal(t, `["-",["field",1],-2]`, got)
}

func TestCompileFunctionCall(t *testing.T) {
	got := canonical(t, "coalesce(Tax, 0)", ordersQuery())
	assert.Equal(t, `["coalesce",["field",2],0]`, got)
}

func TestCompileFunctionNameIsCaseInsensitive(t *testing.T) {
	got := canonical(t, "SUM(Subtotal)", ordersQuery())
	assert.Equal(t, `["sum",["field",1]]`, got)
}

func TestCompileFunctionNameCanTranslate(t *testing.T) {
	got := canonical(t, `regexextract([Category], "W.*")`, ordersQuery())
	assert.Equal(t, `["regex-match-first",["field",4],"W.*"]`, got)
}

func TestCompileCaseWithDefault(t *testing.T) {
	got := canonical(t, `case([Category] CONTAINS "promo", 0.9, 1)`, ordersQuery())
	assert.Equal(t, `["case",[[["contains",["field",4],"promo"],0.9]],{"default":1}]`, got)
}

func TestCompileCaseWithoutDefault(t *testing.T) {
	got := canonical(t, "case(Subtotal > 100, 1, Subtotal > 10, 2)", ordersQuery())
	assert.Equal(t, `["case",[[[">",["field",1],100],1],[[">",["field",1],10],2]]]`, got)
}

func TestCompileMetricReferences(t *testing.T) {
	got := canonical(t, "#Revenue / #[Order Count]", ordersQuery())
	assert.Equal(t, `["/",["metric",10],["metric",11]]`, got)
}

func TestCompileEmptySourceIsEmptyClause(t *testing.T) {
	expr, err := Compile("   ", ordersQuery())
	require.NoError(t, err)

	clause, ok := expr.(mbql.Clause)
	require.True(t, ok)
	assert.Empty(t, clause)
}

func TestCompileResolvesAgainstGivenContext(t *testing.T) {
	other := &fakeQuery{fields: map[string]int64{"Subtotal": 99}}

	assert.Equal(t, `["field",1]`, canonical(t, "[Subtotal]", ordersQuery()))
	assert.Equal(t, `["field",99]`, canonical(t, "[Subtotal]", other))
}

func TestCompileUnknownFunction(t *testing.T) {
	_, err := Compile("foo(Subtotal)", ordersQuery())

	require.Error(t, err)
	assert.True(t, IsUnknownFunction(err))
	assert.Contains(t, err.Error(), `"foo"`)
}

func TestCompileUnknownMetric(t *testing.T) {
	_, err := Compile("#Margin", ordersQuery())

	require.Error(t, err)
	assert.True(t, IsUnknownMetric(err))
	assert.Contains(t, err.Error(), `"Margin"`)
}

func TestCompileUnknownField(t *testing.T) {
	_, err := Compile("[Discount] + 1", ordersQuery())

	require.Error(t, err)
	assert.True(t, IsUnknownField(err))
	assert.Contains(t, err.Error(), `"Discount"`)
}

func TestCompileNilQueryResolvesNothing(t *testing.T) {
	_, err := Compile("[Subtotal]", nil)
	assert.True(t, IsUnknownField(err))

	_, err = Compile("#Revenue", nil)
	assert.True(t, IsUnknownMetric(err))
}

func TestCompileSyntaxErrorPropagates(t *testing.T) {
	_, err := Compile("Subtotal +", ordersQuery())

	require.Error(t, err)
	var synErr *parser.SyntaxError
	assert.ErrorAs(t, err, &synErr)
	assert.False(t, IsUnknownField(err))
}

func TestCompileFailsFastOnFirstUnknownName(t *testing.T) {
	_, err := Compile("[Discount] + [AlsoMissing]", ordersQuery())

	require.Error(t, err)
	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Discount", re.Name)
}
