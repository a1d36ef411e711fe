package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCompilesScenario(t *testing.T) {
	h := New(nil)
	s := &Scenario{
		Name:        "inline",
		Description: "inline success scenario",
		Catalog:     "testdata/catalog.yaml",
		Table:       "orders",
		Formula:     "[Subtotal] + [Tax]",
	}

	result, err := h.Run(s)
	require.NoError(t, err)
	assert.Equal(t, "inline", result.ScenarioName)
	assert.Equal(t, `["+",["field",1],["field",2]]`, string(result.Canonical))
}

func TestRunExpectedResolutionFailure(t *testing.T) {
	h := New(nil)
	s := &Scenario{
		Name:        "inline_failure",
		Description: "inline failure scenario",
		Catalog:     "testdata/catalog.yaml",
		Table:       "orders",
		Formula:     "#Margin",
		Expect:      &ExpectClause{Error: "UNKNOWN_METRIC", Name: "Margin"},
	}

	result, err := h.Run(s)
	require.NoError(t, err)
	assert.Empty(t, result.Canonical)
}

func TestRunExpectedFailureWrongName(t *testing.T) {
	h := New(nil)
	s := &Scenario{
		Name:        "wrong_name",
		Description: "expects the wrong offending name",
		Catalog:     "testdata/catalog.yaml",
		Table:       "orders",
		Formula:     "#Margin",
		Expect:      &ExpectClause{Error: "UNKNOWN_METRIC", Name: "Other"},
	}

	_, err := h.Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Other"`)
}

func TestRunExpectedFailureButCompiles(t *testing.T) {
	h := New(nil)
	s := &Scenario{
		Name:        "should_fail",
		Description: "expects an error that does not happen",
		Catalog:     "testdata/catalog.yaml",
		Table:       "orders",
		Formula:     "[Subtotal]",
		Expect:      &ExpectClause{Error: "UNKNOWN_FIELD"},
	}

	_, err := h.Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation succeeded")
}

func TestRunExpectedSyntaxFailure(t *testing.T) {
	h := New(nil)
	s := &Scenario{
		Name:        "syntax",
		Description: "expects a parse failure",
		Catalog:     "testdata/catalog.yaml",
		Table:       "orders",
		Formula:     "(1 + 2",
		Expect:      &ExpectClause{Error: "SYNTAX"},
	}

	_, err := h.Run(s)
	assert.NoError(t, err)
}

func TestRunMissingCatalog(t *testing.T) {
	h := New(nil)
	s := &Scenario{
		Name:        "no_catalog",
		Description: "points at a missing catalog",
		Catalog:     "testdata/nope.yaml",
		Table:       "orders",
		Formula:     "[Subtotal]",
	}

	_, err := h.Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading catalog")
}
