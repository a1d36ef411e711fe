package compiler

import "strings"

// FunctionTable maps formula-level function names, lower-cased, to the
// clause heads they compile to. Lookup is case-insensitive on the
// formula side; heads are emitted verbatim.
type FunctionTable map[string]string

// Resolve looks up a function name written in a formula and returns
// the clause head it compiles to.
func (t FunctionTable) Resolve(name string) (string, bool) {
	head, ok := t[strings.ToLower(name)]
	return head, ok
}

// DefaultFunctions returns the standard dialect table. Most functions
// keep their name as the clause head; the entries that differ follow
// the analytics layer's clause vocabulary.
func DefaultFunctions() FunctionTable {
	return FunctionTable{
		// numeric
		"abs":   "abs",
		"ceil":  "ceil",
		"exp":   "exp",
		"floor": "floor",
		"log":   "log",
		"power": "power",
		"round": "round",
		"sqrt":  "sqrt",

		// string
		"concat":       "concat",
		"length":       "length",
		"lower":        "lower",
		"ltrim":        "ltrim",
		"regexextract": "regex-match-first",
		"replace":      "replace",
		"rtrim":        "rtrim",
		"substring":    "substring",
		"trim":         "trim",
		"upper":        "upper",

		// conditional
		"between":  "between",
		"coalesce": "coalesce",
		"isempty":  "is-empty",
		"isnull":   "is-null",

		// string predicates
		"contains":   "contains",
		"endswith":   "ends-with",
		"startswith": "starts-with",

		// aggregations
		"average":         "avg",
		"count":           "count",
		"countif":         "count-where",
		"cumulativecount": "cum-count",
		"cumulativesum":   "cum-sum",
		"distinct":        "distinct",
		"max":             "max",
		"median":          "median",
		"min":             "min",
		"percentile":      "percentile",
		"share":           "share",
		"stddev":          "stddev",
		"sum":             "sum",
		"sumif":           "sum-where",
		"variance":        "var",
	}
}
