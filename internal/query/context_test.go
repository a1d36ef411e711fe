package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formulac/internal/catalog"
	"github.com/roach88/formulac/internal/compiler"
	"github.com/roach88/formulac/internal/mbql"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()

	mustField := func(table, name, baseType string) {
		_, err := c.AddField(table, name, baseType)
		require.NoError(t, err)
	}
	mustField("orders", "Subtotal", catalog.TypeNumber)
	mustField("orders", "Tax", catalog.TypeNumber)
	mustField("invoices", "Subtotal", catalog.TypeNumber)

	_, err := c.AddMetric("orders", "Revenue", "sum([Subtotal])")
	require.NoError(t, err)
	_, err = c.AddMetric("", "Order Count", "count()")
	require.NoError(t, err)

	return c
}

func TestContextResolvesFieldsPerTable(t *testing.T) {
	cat := testCatalog(t)

	expr, err := compiler.Compile("[Subtotal] + [Tax] * 0.0825", NewContext(cat, "orders"))
	require.NoError(t, err)
	out, err := mbql.MarshalCanonical(expr)
	require.NoError(t, err)
	assert.Equal(t, `["+",["field",1],["*",["field",2],0.0825]]`, string(out))
}

func TestContextsAreIndependent(t *testing.T) {
	cat := testCatalog(t)

	orders, err := compiler.Compile("[Subtotal]", NewContext(cat, "orders"))
	require.NoError(t, err)
	invoices, err := compiler.Compile("[Subtotal]", NewContext(cat, "invoices"))
	require.NoError(t, err)

	assert.NotEqual(t, orders, invoices)
}

func TestContextFieldFromOtherTableIsUnknown(t *testing.T) {
	cat := testCatalog(t)

	_, err := compiler.Compile("[Tax]", NewContext(cat, "invoices"))
	assert.True(t, compiler.IsUnknownField(err))
}

func TestContextMetricFallback(t *testing.T) {
	cat := testCatalog(t)

	expr, err := compiler.Compile("#Revenue / #[Order Count]", NewContext(cat, "orders"))
	require.NoError(t, err)
	out, err := mbql.MarshalCanonical(expr)
	require.NoError(t, err)
	assert.Equal(t, `["/",["metric",1],["metric",2]]`, string(out))

	// Revenue is orders-scoped, so invoices only sees the
	// catalog-wide metric.
	_, err = compiler.Compile("#Revenue", NewContext(cat, "invoices"))
	assert.True(t, compiler.IsUnknownMetric(err))

	_, err = compiler.Compile("#[Order Count]", NewContext(cat, "invoices"))
	assert.NoError(t, err)
}
