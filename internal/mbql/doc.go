// Package mbql defines the intermediate representation produced by the
// formula compiler and consumed by the downstream query engine.
//
// An MBQL expression is either a literal (Number, String) or a Clause:
// an array whose first element is the operator or function name and whose
// remaining elements are operands. Clauses nest arbitrarily:
//
//	["+", ["field", 12], ["*", ["field", 7], 0.0825]]
//
// The single heterogeneous shape in the IR is the case expression, whose
// clause may end with an Options object carrying the default value:
//
//	["case", [[cond1 result1] [cond2 result2]], {"default": 99}]
//
// The package also provides canonical JSON serialization (RFC 8785 key
// ordering, NFC-normalized strings) for golden-file comparison and
// content-addressed identity.
package mbql
