// Package normalize coerces raw source rows into the canonical form the
// reconciliation stages expect: quantity fields become numbers-or-null and
// identifier fields are trimmed and upper-cased. Cleaning is total,
// idempotent, and never mutates caller-owned rows.
package normalize

import (
	"strconv"
	"strings"

	"github.com/agentstation/dracve/pkg/sources"
	"github.com/agentstation/dracve/pkg/tabular"
)

// identifierFields are the text fields canonicalized by cleaning.
// No other fields are touched.
var identifierFields = map[string]bool{
	sources.FieldItemID:   true,
	sources.FieldItemName: true,
	sources.FieldOrderID:  true,
	sources.FieldReturnID: true,
}

// Clean returns a cleaned copy of the rows. Any field whose name contains
// "qty" (case-insensitive) is coerced to a number or null: empty, null and
// "NA" become null, and anything that does not parse as a number becomes
// null; quantities never retain a string value. Identifier fields present
// as strings are trimmed and upper-cased.
func Clean(rows []*tabular.Row) []*tabular.Row {
	out := make([]*tabular.Row, len(rows))
	for i, row := range rows {
		out[i] = cleanRow(row)
	}
	return out
}

func cleanRow(row *tabular.Row) *tabular.Row {
	out := row.Clone()
	for _, field := range out.Fields() {
		v := out.Value(field)
		switch {
		case isQuantityField(field):
			out.Set(field, coerceQuantity(v))
		case identifierFields[field]:
			if s, ok := v.Str(); ok {
				out.Set(field, tabular.String(strings.ToUpper(strings.TrimSpace(s))))
			}
		}
	}
	return out
}

func isQuantityField(field string) bool {
	return strings.Contains(strings.ToLower(field), "qty")
}

// coerceQuantity maps a raw quantity onto a finite number or null.
func coerceQuantity(v tabular.Value) tabular.Value {
	if v.IsNull() {
		return tabular.Null
	}
	if _, ok := v.Num(); ok {
		return v
	}
	s, _ := v.Str()
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NA") {
		return tabular.Null
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return tabular.Null
	}
	return tabular.Number(f)
}
