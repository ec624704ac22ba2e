package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dracve/pkg/tabular"
)

func row(pairs ...any) *tabular.Row {
	r := tabular.NewRow()
	for i := 0; i < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1].(tabular.Value))
	}
	return r
}

func TestCleanQuantities(t *testing.T) {
	rows := []*tabular.Row{row(
		"inventory_qty", tabular.String("100"),
		"order_qty", tabular.String("NA"),
		"shipment_qty", tabular.String("abc"),
		"returned_qty", tabular.Null,
		"QTY_ON_HAND", tabular.String("7"),
	)}

	cleaned := Clean(rows)
	require.Len(t, cleaned, 1)
	assert.Equal(t, tabular.Number(100), cleaned[0].Value("inventory_qty"))
	assert.True(t, cleaned[0].Value("order_qty").IsNull())
	assert.True(t, cleaned[0].Value("shipment_qty").IsNull())
	assert.True(t, cleaned[0].Value("returned_qty").IsNull())
	// Matching is case-insensitive on the field name.
	assert.Equal(t, tabular.Number(7), cleaned[0].Value("QTY_ON_HAND"))
}

func TestCleanQuantitiesNeverString(t *testing.T) {
	rows := []*tabular.Row{
		row("inventory_qty", tabular.String(" 42 ")),
		row("inventory_qty", tabular.String("")),
		row("inventory_qty", tabular.String("na")),
		row("inventory_qty", tabular.Number(3)),
	}
	for _, r := range Clean(rows) {
		v := r.Value("inventory_qty")
		_, isString := v.Str()
		assert.False(t, isString, "quantity retained a string value: %v", v)
	}
}

func TestCleanIdentifiers(t *testing.T) {
	rows := []*tabular.Row{row(
		"item_id", tabular.String("  a1 "),
		"item_name", tabular.String("widget"),
		"order_id", tabular.String("ord-9"),
		"notes", tabular.String("  keep me as-is "),
	)}

	cleaned := Clean(rows)
	assert.Equal(t, tabular.String("A1"), cleaned[0].Value("item_id"))
	assert.Equal(t, tabular.String("WIDGET"), cleaned[0].Value("item_name"))
	assert.Equal(t, tabular.String("ORD-9"), cleaned[0].Value("order_id"))
	// Fields outside the identifier set are untouched.
	assert.Equal(t, tabular.String("  keep me as-is "), cleaned[0].Value("notes"))
}

func TestCleanIdempotent(t *testing.T) {
	rows := []*tabular.Row{row(
		"item_id", tabular.String(" a1"),
		"inventory_qty", tabular.String("10"),
		"order_qty", tabular.String("NA"),
	)}

	once := Clean(rows)
	twice := Clean(once)
	require.Len(t, twice, 1)
	for _, field := range once[0].Fields() {
		assert.True(t, once[0].Value(field).Equal(twice[0].Value(field)), "field %s", field)
	}
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	original := row("item_id", tabular.String(" a1"), "inventory_qty", tabular.String("x"))
	Clean([]*tabular.Row{original})

	assert.Equal(t, tabular.String(" a1"), original.Value("item_id"))
	assert.Equal(t, tabular.String("x"), original.Value("inventory_qty"))
}

func TestParseDate(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want time.Time
	}{
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"03/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-02T10:30:00Z", time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)},
	} {
		parsed, ok := ParseDate(tabular.String(tc.raw))
		require.True(t, ok, "parse %q", tc.raw)
		assert.True(t, parsed.Time.Equal(tc.want), "parse %q: got %v", tc.raw, parsed.Time)
	}
}

func TestParseDateRejects(t *testing.T) {
	for _, v := range []tabular.Value{
		tabular.String("not a date"),
		tabular.String("13/45/2024"),
		tabular.Number(20240102),
		tabular.Null,
	} {
		_, ok := ParseDate(v)
		assert.False(t, ok, "value %v should not parse", v)
	}
}
