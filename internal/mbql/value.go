package mbql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"
)

// Expr is a sealed interface representing MBQL expression values.
// Only Number, String, Clause, and Options implement it.
type Expr interface {
	expr() // Sealed - only these types implement it
}

// Number is a numeric literal. The formula language has a single numeric
// type, IEEE 754 double, matching the downstream engine.
type Number float64

func (Number) expr() {}

// String is a string literal or an operator/function head inside a Clause.
type String string

func (String) expr() {}

// Clause is an n-ary expression: the first element names the operator or
// function, the rest are operands. An empty Clause is the result of
// compiling empty source text.
type Clause []Expr

func (Clause) expr() {}

// Options is a keyed trailing element inside a Clause. The only producer
// today is the case expression's default value.
type Options map[string]Expr

func (Options) expr() {}

// NewClause builds a Clause from a head token and operands.
func NewClause(head string, args ...Expr) Clause {
	c := make(Clause, 0, len(args)+1)
	c = append(c, String(head))
	return append(c, args...)
}

// Head returns the clause's operator name, or false if the clause is empty
// or not headed by a string.
func (c Clause) Head() (string, bool) {
	if len(c) == 0 {
		return "", false
	}
	head, ok := c[0].(String)
	return string(head), ok
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings compares UTF-8 bytes, which produces a different order
// for strings containing supplementary-plane characters.
func (o Options) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units as required by
// RFC 8785 canonical JSON.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// MarshalJSON implements json.Marshaler for Clause.
func (c Clause) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := Marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("clause[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Options with RFC 8785 key order.
func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := Marshal(o[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Marshal serializes an Expr to JSON bytes. This is the ordinary wire
// serialization; use MarshalCanonical for hashing and golden comparison.
func Marshal(e Expr) ([]byte, error) {
	switch v := e.(type) {
	case Number:
		return json.Marshal(float64(v))
	case String:
		return json.Marshal(string(v))
	case Clause:
		return v.MarshalJSON()
	case Options:
		return v.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown Expr type: %T", e)
	}
}

// Unmarshal decodes a JSON value into an Expr. Arrays become Clauses,
// objects become Options, numbers become Numbers. JSON null and booleans
// have no IR equivalent and are rejected.
func Unmarshal(data []byte) (Expr, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromValue(raw)
}

// FromValue converts a decoded Go value (from encoding/json or yaml.v3)
// into an Expr.
func FromValue(v any) (Expr, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is not a valid expression")
	case bool:
		return nil, fmt.Errorf("booleans are not valid expression literals")
	case string:
		return String(val), nil
	case float64:
		return Number(val), nil
	case int:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", val, err)
		}
		return Number(f), nil
	case []any:
		c := make(Clause, len(val))
		for i, elem := range val {
			e, err := FromValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			c[i] = e
		}
		return c, nil
	case map[string]any:
		o := make(Options, len(val))
		for k, elem := range val {
			e, err := FromValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			o[k] = e
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}
