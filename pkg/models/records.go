package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Record is one row of a non-indexed result (search hits, catalogs).
type Record map[string]any

// String renders the field as text. Missing fields render as "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Records is a table of records with a fixed column order.
type Records struct {
	Columns []string
	Rows    []Record
}

// NewRecords creates an empty result with the given columns.
func NewRecords(columns ...string) *Records {
	return &Records{Columns: columns, Rows: []Record{}}
}

// Append adds a row.
func (r *Records) Append(rec Record) {
	r.Rows = append(r.Rows, rec)
}

// Len returns the number of rows.
func (r *Records) Len() int { return len(r.Rows) }

// Project keeps only the given columns, in the given order. Missing fields
// are kept as nil.
func (r *Records) Project(columns ...string) *Records {
	out := NewRecords(columns...)
	for _, row := range r.Rows {
		rec := make(Record, len(columns))
		for _, c := range columns {
			rec[c] = row[c]
		}
		out.Append(rec)
	}
	return out
}

// Strings renders row i as text in column order.
func (r *Records) Strings(i int) []string {
	cells := make([]string, len(r.Columns))
	for j, c := range r.Columns {
		cells[j] = r.Rows[i].String(c)
	}
	return cells
}

// MarshalJSON encodes the records as an array of objects whose keys follow
// the column order.
func (r *Records) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range r.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, c := range r.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(c)
			val, err := json.Marshal(row[c])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", c, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the records as a sequence of mappings whose keys follow
// the column order.
func (r *Records) MarshalYAML() (any, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range r.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range r.Columns {
			var val yaml.Node
			if err := val.Encode(row[c]); err != nil {
				return nil, fmt.Errorf("column %q: %w", c, err)
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: c}, &val)
		}
		seq.Content = append(seq.Content, m)
	}
	return seq, nil
}

// Metadata is a key→value description of one series or aggregate.
type Metadata map[string]any

// Keys returns the keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the field as text. Missing fields render as "".
func (m Metadata) String(key string) string {
	return Record(m).String(key)
}

// Records renders the metadata as a two-column key/value table.
func (m Metadata) Records() *Records {
	out := NewRecords("key", "value")
	for _, k := range m.Keys() {
		out.Append(Record{"key": k, "value": m[k]})
	}
	return out
}
