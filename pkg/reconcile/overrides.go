package reconcile

import (
	"strings"

	"github.com/agentstation/dracve/pkg/sources"
	"github.com/agentstation/dracve/pkg/tabular"
)

// Override is a caller-supplied manual correction for one inventory item.
// Overrides overlay consolidated inventory at read time and are never
// persisted into source data.
type Override struct {
	InventoryQty *float64 `json:"inventory_qty,omitempty" yaml:"inventory_qty,omitempty"`
	ReorderLevel *float64 `json:"reorder_level,omitempty" yaml:"reorder_level,omitempty"`
}

// ApplyOverrides overlays manual overrides, keyed by item_id, on top of
// consolidated inventory. Overridden rows are retagged Manual. The input
// rows are not mutated.
func ApplyOverrides(inventory []*tabular.Row, overrides map[string]Override) []*tabular.Row {
	if len(overrides) == 0 {
		return tabular.CloneRows(inventory)
	}

	normalized := make(map[string]Override, len(overrides))
	for itemID, o := range overrides {
		normalized[strings.ToUpper(strings.TrimSpace(itemID))] = o
	}

	out := make([]*tabular.Row, len(inventory))
	for i, row := range inventory {
		clone := row.Clone()
		out[i] = clone

		key := clone.Value(sources.FieldItemID)
		if key.IsNull() {
			continue
		}
		o, ok := normalized[key.Text()]
		if !ok {
			continue
		}
		if o.InventoryQty != nil {
			clone.Set(sources.FieldInventoryQty, tabular.Number(*o.InventoryQty))
		}
		if o.ReorderLevel != nil {
			clone.Set(sources.FieldReorderLevel, tabular.Number(*o.ReorderLevel))
		}
		if o.InventoryQty != nil || o.ReorderLevel != nil {
			clone.Set(sources.FieldSource, tabular.String(sources.Manual.String()))
		}
	}
	return out
}
