package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formulac/internal/mbql"
)

func TestAddFieldAssignsSequentialIDs(t *testing.T) {
	c := New()

	f1, err := c.AddField("orders", "Subtotal", TypeNumber)
	require.NoError(t, err)
	f2, err := c.AddField("orders", "Tax", TypeNumber)
	require.NoError(t, err)

	assert.Equal(t, int64(1), f1.ID)
	assert.Equal(t, int64(2), f2.ID)
}

func TestAddFieldAssignsEntityID(t *testing.T) {
	c := New()

	f, err := c.AddField("orders", "Subtotal", TypeNumber)
	require.NoError(t, err)

	parsed, err := uuid.Parse(f.EntityID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestAddFieldRejectsInvalidType(t *testing.T) {
	c := New()

	_, err := c.AddField("orders", "Subtotal", "float")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid base type")
}

func TestAddFieldRejectsDuplicate(t *testing.T) {
	c := New()

	_, err := c.AddField("orders", "Subtotal", TypeNumber)
	require.NoError(t, err)
	_, err = c.AddField("orders", "Subtotal", TypeString)
	assert.Error(t, err)
}

func TestFieldMBQL(t *testing.T) {
	c := New()
	f, err := c.AddField("orders", "Subtotal", TypeNumber)
	require.NoError(t, err)

	out, err := mbql.MarshalCanonical(f.MBQL())
	require.NoError(t, err)
	assert.Equal(t, `["field",1]`, string(out))
}

func TestFieldByNameIsTableScoped(t *testing.T) {
	c := New()
	_, err := c.AddField("orders", "Total", TypeNumber)
	require.NoError(t, err)
	_, err = c.AddField("invoices", "Total", TypeNumber)
	require.NoError(t, err)

	f := c.FieldByName("invoices", "Total")
	require.NotNil(t, f)
	assert.Equal(t, int64(2), f.ID)

	assert.Nil(t, c.FieldByName("orders", "Missing"))
}

func TestFieldByNameIsCaseSensitive(t *testing.T) {
	c := New()
	_, err := c.AddField("orders", "Subtotal", TypeNumber)
	require.NoError(t, err)

	assert.Nil(t, c.FieldByName("orders", "subtotal"))
}

func TestMetricByNameScopeAndFallback(t *testing.T) {
	c := New()
	global, err := c.AddMetric("", "Revenue", "")
	require.NoError(t, err)
	scoped, err := c.AddMetric("orders", "Revenue", "")
	require.NoError(t, err)

	got := c.MetricByName("orders", "Revenue")
	require.NotNil(t, got)
	assert.Equal(t, scoped.ID, got.ID)

	got = c.MetricByName("invoices", "Revenue")
	require.NotNil(t, got)
	assert.Equal(t, global.ID, got.ID)

	assert.Nil(t, c.MetricByName("orders", "Margin"))
}

func TestTablesInFirstSeenOrder(t *testing.T) {
	c := New()
	_, err := c.AddField("orders", "A", TypeNumber)
	require.NoError(t, err)
	_, err = c.AddField("invoices", "B", TypeNumber)
	require.NoError(t, err)
	_, err = c.AddField("orders", "C", TypeNumber)
	require.NoError(t, err)

	assert.Equal(t, []string{"orders", "invoices"}, c.Tables())
}
