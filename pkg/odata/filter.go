package odata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// Term is one $filter clause: a field compared against one or more values.
// Multiple values are joined with Connector and parenthesized.
type Term struct {
	Field     string
	Values    []any
	Op        Operator
	Connector Connector
}

// Contains matches field against each value as a substring.
func Contains(field string, values ...any) Term {
	return Term{Field: field, Values: values, Op: OpContains, Connector: Or}
}

// Eq matches field against each value exactly.
func Eq(field string, values ...any) Term {
	return Term{Field: field, Values: values, Op: OpEq, Connector: Or}
}

// Where builds a term for a catalog field using the field's own operator.
// Unknown fields are reported when the filter is built.
func Where(field string, values ...any) Term {
	field = strings.ToUpper(strings.TrimSpace(field))
	op, _ := OperatorFor(field)
	return Term{Field: field, Values: values, Op: op, Connector: Or}
}

// Join returns a copy of t whose values are joined with c.
func (t Term) Join(c Connector) Term {
	t.Connector = c
	return t
}

func (t Term) validate() error {
	if !IsField(t.Field) {
		return fmt.Errorf("%w: %q (known fields: %s)", models.ErrUnknownMetadataField, t.Field, strings.Join(Fields(), ", "))
	}
	if len(t.Values) == 0 {
		return fmt.Errorf("odata: field %s has no values", t.Field)
	}
	if t.Op != OpContains && t.Op != OpEq {
		return fmt.Errorf("odata: field %s has unknown operator %q", t.Field, t.Op)
	}
	return nil
}

// String renders the term. A single value renders bare; several values render
// as a parenthesized group.
func (t Term) String() string {
	parts := make([]string, len(t.Values))
	for i, v := range t.Values {
		parts[i] = t.atom(v)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	conn := t.Connector
	if conn == "" {
		conn = Or
	}
	return "(" + strings.Join(parts, " "+string(conn)+" ") + ")"
}

func (t Term) atom(v any) string {
	if t.Op == OpContains {
		return fmt.Sprintf("contains(%s,%s)", t.Field, quote(fmt.Sprint(v)))
	}
	return fmt.Sprintf("%s eq %s", t.Field, literal(v))
}

// literal renders strings single-quoted and numbers bare.
func literal(v any) string {
	switch x := v.(type) {
	case string:
		return quote(x)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return quote(fmt.Sprint(x))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Filter is an ordered list of terms joined with "and".
type Filter []Term

// Validate checks every term against the metadata catalog.
func (f Filter) Validate() error {
	for _, t := range f {
		if err := t.validate(); err != nil {
			return err
		}
	}
	return nil
}

// String renders the filter expression.
func (f Filter) String() string {
	parts := make([]string, len(f))
	for i, t := range f {
		parts[i] = t.String()
	}
	return strings.Join(parts, " and ")
}

// BuildFilter composes a $filter value: a SERNOME substring match for the
// free-text names first, then one clause per term in order. It returns an
// empty string when there is nothing to filter on.
func BuildFilter(names []string, terms ...Term) (string, error) {
	var f Filter
	if len(names) > 0 {
		values := make([]any, len(names))
		for i, n := range names {
			values[i] = n
		}
		f = append(f, Contains(FieldName, values...))
	}
	f = append(f, terms...)
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f.String(), nil
}

// BuildSelect composes a $select value: the default fields followed by extra
// fields in order, without duplicates.
func BuildSelect(extra ...string) (string, error) {
	seen := make(map[string]bool)
	var fields []string
	for _, f := range append(append([]string{}, DefaultSelect...), extra...) {
		f = strings.ToUpper(strings.TrimSpace(f))
		if !IsField(f) {
			return "", fmt.Errorf("%w: %q", models.ErrUnknownMetadataField, f)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		fields = append(fields, f)
	}
	return strings.Join(fields, ","), nil
}

// TermFields returns the field names of terms in order.
func TermFields(terms []Term) []string {
	names := make([]string, len(terms))
	for i, t := range terms {
		names[i] = t.Field
	}
	return names
}
