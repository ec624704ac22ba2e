package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dracve/pkg/sources"
	"github.com/agentstation/dracve/pkg/tabular"
)

func TestConsolidateRecencyWins(t *testing.T) {
	b := &sources.Bundle{
		Legacy: []*tabular.Row{
			row("item_id", "A1", "item_name", "WIDGET", "inventory_qty", 100, "last_updated", "2024-01-01"),
		},
		Spreadsheet: []*tabular.Row{
			row("item_id", "A1", "item_name", "WIDGET", "inventory_qty", 120, "last_updated", "2024-01-02"),
		},
		Supplier: []*tabular.Row{},
	}

	out := Consolidate(b)
	require.Len(t, out.Inventory, 1)
	item := out.Inventory[0]
	assert.Equal(t, tabular.String("A1"), item.Value("item_id"))
	assert.Equal(t, tabular.Number(120), item.Value("inventory_qty"))
	assert.Equal(t, tabular.String("Spreadsheet"), item.Value("_source"))
}

func TestConsolidateTieBreakBySourceOrder(t *testing.T) {
	// Same timestamp on both sides: encounter order keeps legacy.
	b := &sources.Bundle{
		Legacy: []*tabular.Row{
			row("item_id", "A1", "inventory_qty", 100, "last_updated", "2024-01-01"),
		},
		Spreadsheet: []*tabular.Row{
			row("item_id", "A1", "inventory_qty", 120, "last_updated", "2024-01-01"),
		},
		Supplier: []*tabular.Row{},
	}

	out := Consolidate(b)
	require.Len(t, out.Inventory, 1)
	assert.Equal(t, tabular.String("Legacy"), out.Inventory[0].Value("_source"))
}

func TestConsolidateSupplierFieldMapping(t *testing.T) {
	b := &sources.Bundle{
		Legacy:      []*tabular.Row{},
		Spreadsheet: []*tabular.Row{},
		Supplier: []*tabular.Row{
			row("item_id", "A1", "item_name", "WIDGET", "shipment_qty", 30, "shipment_date", "2024-02-01"),
		},
	}

	out := Consolidate(b)
	require.Len(t, out.Inventory, 1)
	item := out.Inventory[0]
	assert.Equal(t, tabular.Number(30), item.Value("inventory_qty"))
	assert.Equal(t, tabular.String("2024-02-01"), item.Value("last_updated"))
	assert.Equal(t, tabular.String("Supplier"), item.Value("_source"))
}

func TestConsolidateDropsRowsWithoutKeyOrDate(t *testing.T) {
	b := &sources.Bundle{
		Legacy: []*tabular.Row{
			row("item_id", "A1", "inventory_qty", 100), // no last_updated
			row("item_name", "ORPHAN", "inventory_qty", 5, "last_updated", "2024-01-01"), // no item_id
			row("item_id", "B2", "inventory_qty", 9, "last_updated", "not a date"),
			row("item_id", "C3", "inventory_qty", 1, "last_updated", "2024-01-03"),
		},
		Spreadsheet: []*tabular.Row{},
		Supplier:    []*tabular.Row{},
	}

	out := Consolidate(b)
	require.Len(t, out.Inventory, 1)
	assert.Equal(t, tabular.String("C3"), out.Inventory[0].Value("item_id"))
}

func TestConsolidateUniqueKeys(t *testing.T) {
	b := &sources.Bundle{
		Legacy: []*tabular.Row{
			row("item_id", "A1", "inventory_qty", 1, "last_updated", "2024-01-01"),
			row("item_id", "A1", "inventory_qty", 2, "last_updated", "2024-01-05"),
			row("order_id", "O1", "order_qty", 5, "last_updated", "2024-01-01"),
		},
		Spreadsheet: []*tabular.Row{
			row("item_id", "A1", "inventory_qty", 3, "last_updated", "2024-01-03"),
			row("order_id", "O1", "order_qty", 7, "last_updated", "2024-01-02"),
		},
		Supplier: []*tabular.Row{
			row("item_id", "A1", "shipment_qty", 4, "shipment_date", "2024-01-02"),
		},
	}

	out := Consolidate(b)
	require.Len(t, out.Inventory, 1)
	require.Len(t, out.Orders, 1)

	// Most recent A1 row wins regardless of source.
	assert.Equal(t, tabular.Number(2), out.Inventory[0].Value("inventory_qty"))
	assert.Equal(t, tabular.String("Legacy"), out.Inventory[0].Value("_source"))
	assert.Equal(t, tabular.Number(7), out.Orders[0].Value("order_qty"))
}

func TestConsolidateReturnsPassThrough(t *testing.T) {
	ret := row("return_id", "R1", "item_id", "A1", "returned_qty", 2, "return_date", "2024-01-01")
	b := &sources.Bundle{
		Legacy:           []*tabular.Row{},
		Spreadsheet:      []*tabular.Row{},
		Supplier:         []*tabular.Row{},
		ReverseLogistics: []*tabular.Row{ret},
	}

	out := Consolidate(b)
	require.Len(t, out.Returns, 1)
	assert.Equal(t, tabular.String("ReverseLogistics"), out.Returns[0].Value("_source"))
	assert.Equal(t, tabular.String("R1"), out.Returns[0].Value("return_id"))
	// Pass-through never tags the caller's rows.
	assert.False(t, ret.Has("_source"))
}

func TestApplyOverrides(t *testing.T) {
	inventory := []*tabular.Row{
		row("item_id", "A1", "inventory_qty", 100, "_source", "Legacy"),
		row("item_id", "B2", "inventory_qty", 50, "_source", "Supplier"),
	}

	qty := 75.0
	level := 20.0
	out := ApplyOverrides(inventory, map[string]Override{
		"a1": {InventoryQty: &qty, ReorderLevel: &level},
	})

	require.Len(t, out, 2)
	assert.Equal(t, tabular.Number(75), out[0].Value("inventory_qty"))
	assert.Equal(t, tabular.Number(20), out[0].Value("reorder_level"))
	assert.Equal(t, tabular.String("Manual"), out[0].Value("_source"))

	// Untouched row keeps its provenance; original rows never mutate.
	assert.Equal(t, tabular.String("Supplier"), out[1].Value("_source"))
	assert.Equal(t, tabular.Number(100), inventory[0].Value("inventory_qty"))
}
