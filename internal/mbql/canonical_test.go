package mbql

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalNumbers(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5, "5"},
		{-5, "-5"},
		{0.0825, "0.0825"},
		{-0.9, "-0.9"},
		{0, "0"},
		{1000000, "1000000"},
	}

	for _, tt := range tests {
		got, err := MarshalCanonical(Number(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got), "canonical form of %v", tt.in)
	}
}

func TestCanonicalRejectsNaN(t *testing.T) {
	_, err := MarshalCanonical(Number(math.NaN()))
	require.Error(t, err)

	_, err = MarshalCanonical(Number(math.Inf(1)))
	require.Error(t, err)
}

func TestCanonicalNoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical(String("a < b & c > d"))
	require.NoError(t, err)
	assert.Equal(t, `"a < b & c > d"`, string(got))
}

func TestCanonicalNFCNormalization(t *testing.T) {
	// e followed by combining acute accent normalizes to precomposed e-acute
	got, err := MarshalCanonical(String("café"))
	require.NoError(t, err)
	assert.Equal(t, "\"caf\u00e9\"", string(got))
}

func TestCanonicalObjectKeyOrder(t *testing.T) {
	o := Options{"b": Number(2), "a": Number(1), "default": Number(3)}
	got, err := MarshalCanonical(o)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"default":3}`, string(got))
}

func TestCanonicalNestedClause(t *testing.T) {
	c := NewClause("case",
		Clause{Clause{NewClause("contains", NewClause("field", Number(3)), String("promo")), Number(0.9)}},
	)
	c = append(c, Options{"default": Number(1)})

	got, err := MarshalCanonical(c)
	require.NoError(t, err)
	assert.Equal(t,
		`["case",[[["contains",["field",3],"promo"],0.9]],{"default":1}]`,
		string(got))
}

func TestCanonicalLineSeparatorNotEscaped(t *testing.T) {
	got, err := MarshalCanonical(String("a\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(got))
}

func TestCanonicalLiteralBackslashU2028StaysEscaped(t *testing.T) {
	got, err := MarshalCanonical(String(`a\u2028b`))
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(got))
}
