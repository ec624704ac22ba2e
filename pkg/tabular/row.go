// Package tabular provides the schema-less row model shared by every
// reconciliation stage, along with parsing and rendering of delimited text.
// A Row is an ordered mapping from field name to a tagged value of
// {string, number, null}; field sets legitimately differ per source, so no
// fixed schema is enforced here.
package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is an ordered mapping of field name to Value. Field order is the
// order fields were first set, which preserves source column order.
type Row struct {
	fields []string
	values map[string]Value
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]Value)}
}

// Set assigns a field value, appending the field to the order on first use.
func (r *Row) Set(field string, v Value) {
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = v
}

// Get returns the field value and whether the field is present.
func (r *Row) Get(field string) (Value, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Value returns the field value, or null when the field is absent.
func (r *Row) Value(field string) Value {
	return r.values[field]
}

// Has reports whether the field is present, even if null.
func (r *Row) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Fields returns the field names in order. The returned slice is a copy.
func (r *Row) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r *Row) Len() int { return len(r.fields) }

// Clone returns a deep copy of the row. Stages that rewrite rows always
// operate on clones so caller-owned data is never mutated.
func (r *Row) Clone() *Row {
	out := &Row{
		fields: make([]string, len(r.fields)),
		values: make(map[string]Value, len(r.values)),
	}
	copy(out.fields, r.fields)
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

// CloneRows deep-copies a row list.
func CloneRows(rows []*Row) []*Row {
	if rows == nil {
		return nil
	}
	out := make([]*Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// MarshalJSON encodes the row as a JSON object preserving field order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[field].Interface())
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into a row, preserving key order.
// Scalar values map onto {string, number, null}; booleans are kept as their
// textual form since no consumer defines boolean fields. Nested objects or
// arrays are rejected.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("tabular: row must be a JSON object, got %v", tok)
	}

	r.fields = nil
	r.values = make(map[string]Value)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("tabular: invalid object key %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		switch val := valTok.(type) {
		case nil:
			r.Set(key, Null)
		case string:
			r.Set(key, String(val))
		case json.Number:
			f, err := val.Float64()
			if err != nil {
				return fmt.Errorf("tabular: field %q: %w", key, err)
			}
			r.Set(key, Number(f))
		case bool:
			r.Set(key, String(fmt.Sprintf("%t", val)))
		case json.Delim:
			return fmt.Errorf("tabular: field %q holds a nested value, want scalar", key)
		default:
			return fmt.Errorf("tabular: field %q has unsupported value %v", key, val)
		}
	}

	// Consume closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
