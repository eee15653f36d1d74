package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// IndexName is the name of the date index in every rendered table.
const IndexName = "Date"

// ColumnKind tells numeric columns apart from text ones.
type ColumnKind int

const (
	Numeric ColumnKind = iota
	Text
)

// Column is one named column of a Table. Numeric columns fill Values and text
// columns fill Text; the other slice stays nil.
type Column struct {
	Name   string
	Kind   ColumnKind
	Values []float64
	Text   []string
}

// Cell renders row i as a string. NaN renders as an empty string.
func (c *Column) Cell(i int) string {
	if c.Kind == Text {
		return c.Text[i]
	}
	v := c.Values[i]
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *Column) value(i int) any {
	if c.Kind == Text {
		return c.Text[i]
	}
	if math.IsNaN(c.Values[i]) {
		return nil
	}
	return c.Values[i]
}

// Table is a column-oriented table indexed by date.
type Table struct {
	Index   []time.Time
	Columns []*Column
}

// NewTable creates a table over the given index with no columns.
func NewTable(index []time.Time) *Table {
	if index == nil {
		index = []time.Time{}
	}
	return &Table{Index: index}
}

// EmptyTable creates a table with no rows and the given numeric columns.
func EmptyTable(columns ...string) *Table {
	t := NewTable(nil)
	for _, name := range columns {
		t.Columns = append(t.Columns, &Column{Name: name, Kind: Numeric, Values: []float64{}})
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Index) }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the first column called name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// AddNumeric appends a numeric column. values must match the index length.
func (t *Table) AddNumeric(name string, values []float64) error {
	if len(values) != t.Len() {
		return fmt.Errorf("column %q has %d values, index has %d", name, len(values), t.Len())
	}
	t.Columns = append(t.Columns, &Column{Name: name, Kind: Numeric, Values: values})
	return nil
}

// AddText appends a text column. values must match the index length.
func (t *Table) AddText(name string, values []string) error {
	if len(values) != t.Len() {
		return fmt.Errorf("column %q has %d values, index has %d", name, len(values), t.Len())
	}
	t.Columns = append(t.Columns, &Column{Name: name, Kind: Text, Text: values})
	return nil
}

// RenameColumn renames the first column called from.
func (t *Table) RenameColumn(from, to string) error {
	c, ok := t.Column(from)
	if !ok {
		return fmt.Errorf("column %q not found", from)
	}
	c.Name = to
	return nil
}

// ToNumeric converts a text column to a numeric one in place. Cells that do
// not parse become NaN.
func (t *Table) ToNumeric(name string) error {
	c, ok := t.Column(name)
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	if c.Kind == Numeric {
		return nil
	}
	values := make([]float64, len(c.Text))
	for i, s := range c.Text {
		values[i] = ToNumeric(s)
	}
	c.Kind, c.Values, c.Text = Numeric, values, nil
	return nil
}

// SetIndex replaces the index with the parsed contents of a text column and
// removes that column from the table.
func (t *Table) SetIndex(name string, parse func(string) (time.Time, error)) error {
	pos := -1
	for i, c := range t.Columns {
		if c.Name == name {
			pos = i
			break
		}
	}
	if pos < 0 {
		return fmt.Errorf("column %q not found", name)
	}
	col := t.Columns[pos]
	if col.Kind != Text {
		return fmt.Errorf("column %q is not a text column", name)
	}
	index := make([]time.Time, len(col.Text))
	for i, s := range col.Text {
		d, err := parse(s)
		if err != nil {
			return fmt.Errorf("column %q row %d: %w", name, i, err)
		}
		index[i] = d
	}
	t.Index = index
	t.Columns = append(t.Columns[:pos], t.Columns[pos+1:]...)
	return nil
}

// SortIndex orders rows by date, keeping the relative order of equal dates.
func (t *Table) SortIndex() {
	if sort.SliceIsSorted(t.Index, func(i, j int) bool { return t.Index[i].Before(t.Index[j]) }) {
		return
	}
	perm := make([]int, t.Len())
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool { return t.Index[perm[i]].Before(t.Index[perm[j]]) })

	index := make([]time.Time, len(perm))
	for i, p := range perm {
		index[i] = t.Index[p]
	}
	t.Index = index
	for _, c := range t.Columns {
		if c.Kind == Text {
			text := make([]string, len(perm))
			for i, p := range perm {
				text[i] = c.Text[p]
			}
			c.Text = text
			continue
		}
		values := make([]float64, len(perm))
		for i, p := range perm {
			values[i] = c.Values[p]
		}
		c.Values = values
	}
}

// Lookup returns the value of a numeric column at date.
func (t *Table) Lookup(date time.Time, column string) (float64, bool) {
	c, ok := t.Column(column)
	if !ok || c.Kind != Numeric {
		return math.NaN(), false
	}
	for i, d := range t.Index {
		if d.Equal(date) {
			return c.Values[i], true
		}
	}
	return math.NaN(), false
}

// Row returns row i as a record keyed by column name plus the date index.
func (t *Table) Row(i int) Record {
	rec := Record{IndexName: t.Index[i].Format("2006-01-02")}
	for _, c := range t.Columns {
		rec[c.Name] = c.value(i)
	}
	return rec
}

// Records converts the table to row records, Date first.
func (t *Table) Records() *Records {
	out := NewRecords(append([]string{IndexName}, t.ColumnNames()...)...)
	for i := range t.Index {
		out.Append(t.Row(i))
	}
	return out
}

// MarshalJSON encodes the table as an array of row objects. NaN becomes null.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Records())
}

// MarshalYAML encodes the table the same way as MarshalJSON.
func (t *Table) MarshalYAML() (any, error) {
	return t.Records().MarshalYAML()
}

// JoinKind selects how Join aligns the indexes of its inputs.
type JoinKind string

const (
	JoinOuter JoinKind = "outer"
	JoinInner JoinKind = "inner"
)

// ParseJoinKind validates a join mode. An empty string means outer.
func ParseJoinKind(s string) (JoinKind, error) {
	switch JoinKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", JoinOuter:
		return JoinOuter, nil
	case JoinInner:
		return JoinInner, nil
	default:
		return "", fmt.Errorf("unknown join mode %q (want outer or inner)", s)
	}
}

// Join aligns tables on their date index and concatenates their columns in
// argument order. An outer join keeps every date, filling gaps with NaN or an
// empty string; an inner join keeps dates present in every table. Each input
// is expected to carry at most one row per date.
func Join(how JoinKind, tables ...*Table) *Table {
	var inputs []*Table
	for _, t := range tables {
		if t != nil {
			inputs = append(inputs, t)
		}
	}
	if len(inputs) == 0 {
		return NewTable(nil)
	}

	rowOf := make([]map[int64]int, len(inputs))
	counts := make(map[int64]int)
	dates := make(map[int64]time.Time)
	for i, t := range inputs {
		rowOf[i] = make(map[int64]int, t.Len())
		for r, d := range t.Index {
			key := d.UnixNano()
			if _, seen := rowOf[i][key]; seen {
				continue
			}
			rowOf[i][key] = r
			counts[key]++
			dates[key] = d
		}
	}

	keys := make([]int64, 0, len(dates))
	for k := range dates {
		if how == JoinInner && counts[k] != len(inputs) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	index := make([]time.Time, len(keys))
	for i, k := range keys {
		index[i] = dates[k]
	}
	out := NewTable(index)

	for i, t := range inputs {
		for _, c := range t.Columns {
			col := &Column{Name: c.Name, Kind: c.Kind}
			if c.Kind == Text {
				col.Text = make([]string, len(keys))
			} else {
				col.Values = make([]float64, len(keys))
			}
			for r, k := range keys {
				src, ok := rowOf[i][k]
				switch {
				case c.Kind == Text && ok:
					col.Text[r] = c.Text[src]
				case c.Kind == Numeric && ok:
					col.Values[r] = c.Values[src]
				case c.Kind == Numeric:
					col.Values[r] = math.NaN()
				}
			}
			out.Columns = append(out.Columns, col)
		}
	}
	return out
}

// Concat stacks tables row-wise. Columns are matched by name in order of
// first appearance; cells a table lacks are NaN or empty. Rows are then
// ordered by date, keeping the input order of equal dates.
func Concat(tables ...*Table) *Table {
	var (
		names []string
		kinds = make(map[string]ColumnKind)
		total int
	)
	for _, t := range tables {
		if t == nil {
			continue
		}
		total += t.Len()
		for _, c := range t.Columns {
			if _, ok := kinds[c.Name]; !ok {
				names = append(names, c.Name)
				kinds[c.Name] = c.Kind
			}
		}
	}

	out := NewTable(make([]time.Time, 0, total))
	cols := make(map[string]*Column, len(names))
	for _, name := range names {
		col := &Column{Name: name, Kind: kinds[name]}
		if col.Kind == Text {
			col.Text = make([]string, 0, total)
		} else {
			col.Values = make([]float64, 0, total)
		}
		cols[name] = col
		out.Columns = append(out.Columns, col)
	}

	for _, t := range tables {
		if t == nil {
			continue
		}
		out.Index = append(out.Index, t.Index...)
		for _, name := range names {
			dst := cols[name]
			src, ok := t.Column(name)
			for i := 0; i < t.Len(); i++ {
				switch {
				case dst.Kind == Text && ok:
					dst.Text = append(dst.Text, src.Cell(i))
				case dst.Kind == Text:
					dst.Text = append(dst.Text, "")
				case ok && src.Kind == Numeric:
					dst.Values = append(dst.Values, src.Values[i])
				case ok:
					dst.Values = append(dst.Values, ToNumeric(src.Text[i]))
				default:
					dst.Values = append(dst.Values, math.NaN())
				}
			}
		}
	}
	out.SortIndex()
	return out
}

// ToNumeric parses s as a float. Blank, non-numeric and placeholder cells
// ("-", "...", "X") become NaN. A decimal comma is accepted when no dot is
// present.
func ToNumeric(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
