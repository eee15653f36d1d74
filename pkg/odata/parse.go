package odata

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFilter reads back a $filter expression in the shape BuildFilter emits:
// clauses joined with "and", each either a single contains(...)/eq comparison
// or a parenthesized group of comparisons on one field. Fields are checked
// against the metadata catalog.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var f Filter
	for _, part := range splitTop(s, " and ") {
		t, err := parseTerm(part)
		if err != nil {
			return nil, err
		}
		f = append(f, t)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func parseTerm(s string) (Term, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || closingParen(s) != len(s)-1 {
		field, op, v, err := parseAtom(s)
		if err != nil {
			return Term{}, err
		}
		return Term{Field: field, Values: []any{v}, Op: op, Connector: Or}, nil
	}

	inner := s[1 : len(s)-1]
	conn := Or
	parts := splitTop(inner, " or ")
	if len(parts) == 1 {
		conn = And
		parts = splitTop(inner, " and ")
	}

	var t Term
	for i, p := range parts {
		field, op, v, err := parseAtom(strings.TrimSpace(p))
		if err != nil {
			return Term{}, err
		}
		if i == 0 {
			t = Term{Field: field, Op: op, Connector: conn}
		} else if field != t.Field || op != t.Op {
			return Term{}, fmt.Errorf("odata: group mixes %s %s with %s %s", t.Field, t.Op, field, op)
		}
		t.Values = append(t.Values, v)
	}
	return t, nil
}

func parseAtom(s string) (string, Operator, any, error) {
	if strings.HasPrefix(s, "contains(") && strings.HasSuffix(s, ")") {
		args := s[len("contains(") : len(s)-1]
		field, raw, ok := strings.Cut(args, ",")
		if !ok {
			return "", "", nil, fmt.Errorf("odata: malformed contains %q", s)
		}
		v, err := unquote(strings.TrimSpace(raw))
		if err != nil {
			return "", "", nil, err
		}
		return strings.TrimSpace(field), OpContains, v, nil
	}

	field, raw, ok := strings.Cut(s, " eq ")
	if !ok {
		return "", "", nil, fmt.Errorf("odata: unsupported expression %q", s)
	}
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "'") {
		v, err := unquote(raw)
		return strings.TrimSpace(field), OpEq, v, err
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return strings.TrimSpace(field), OpEq, n, nil
	}
	if x, err := strconv.ParseFloat(raw, 64); err == nil {
		return strings.TrimSpace(field), OpEq, x, nil
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return strings.TrimSpace(field), OpEq, b, nil
	}
	return "", "", nil, fmt.Errorf("odata: bad literal %q", raw)
}

func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", fmt.Errorf("odata: expected quoted string, got %q", s)
	}
	return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), nil
}

// splitTop splits s on sep where sep is outside parentheses and quotes.
func splitTop(s, sep string) []string {
	var parts []string
	depth, start := 0, 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth == 0 && strings.HasPrefix(s[i:], sep):
			parts = append(parts, s[start:i])
			start = i + len(sep)
			i += len(sep) - 1
		}
	}
	return append(parts, s[start:])
}

// closingParen returns the index of the parenthesis closing s[0], or -1.
func closingParen(s string) int {
	depth := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
