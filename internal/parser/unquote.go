package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// UnquoteString decodes a quoted string literal, including its enclosing
// single or double quotes, into its runtime value. Supported escapes:
// \\ \" \' \n \t \r \b \f and \uXXXX.
func UnquoteString(raw string) (string, error) {
	if len(raw) < 2 {
		return "", fmt.Errorf("malformed string literal: %q", raw)
	}
	quote := raw[0]
	if (quote != '"' && quote != '\'') || raw[len(raw)-1] != quote {
		return "", fmt.Errorf("malformed string literal: %q", raw)
	}

	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("dangling escape in string literal %q", raw)
		}
		switch body[i] {
		case '\\', '"', '\'':
			b.WriteByte(body[i])
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			if i+4 >= len(body) {
				return "", fmt.Errorf("truncated \\u escape in string literal %q", raw)
			}
			v, err := strconv.ParseUint(body[i+1:i+5], 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid \\u escape in string literal %q", raw)
			}
			b.WriteRune(rune(v))
			i += 4
		default:
			return "", fmt.Errorf("unsupported escape \\%c in string literal %q", body[i], raw)
		}
	}
	return b.String(), nil
}

// UnquoteBracket decodes a bracket-quoted identifier, including its
// enclosing brackets, into the identifier it names. A doubled closing
// bracket escapes a literal one: [a ]] b] names "a ] b".
func UnquoteBracket(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != '[' || raw[len(raw)-1] != ']' {
		return "", fmt.Errorf("malformed bracket identifier: %q", raw)
	}
	return strings.ReplaceAll(raw[1:len(raw)-1], "]]", "]"), nil
}
