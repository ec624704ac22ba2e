package reconcile

import (
	"github.com/agentstation/dracve/pkg/sources"
	"github.com/agentstation/dracve/pkg/tabular"
)

// inventoryWriteback and orderWriteback are the overlapping fields the
// original sources understand; only these are ever rewritten.
var (
	inventoryWriteback = []string{
		sources.FieldItemName,
		sources.FieldInventoryQty,
		sources.FieldLastUpdated,
	}
	orderWriteback = []string{
		sources.FieldOrderQty,
		sources.FieldLastUpdated,
	}
)

// MergeCorrections writes a corrected consolidated view back into the
// per-source rows of the two peer sources, matching corrected inventory by
// item_id and corrected orders by order_id. Supplier and reverse-logistics
// rows are ground truth and are never rewritten; rows with no matching
// corrected key are left untouched. The caller's bundle is never mutated;
// the merge operates on a deep copy.
func MergeCorrections(b *sources.Bundle, inventory, orders []*tabular.Row) *sources.Bundle {
	merged := b.Clone()

	inventoryByKey := indexByKey(inventory, sources.FieldItemID)
	ordersByKey := indexByKey(orders, sources.FieldOrderID)

	for _, rows := range [][]*tabular.Row{merged.Legacy, merged.Spreadsheet} {
		for _, row := range rows {
			if corrected, ok := lookup(inventoryByKey, row, sources.FieldItemID); ok {
				writeback(row, corrected, inventoryWriteback)
			}
			if corrected, ok := lookup(ordersByKey, row, sources.FieldOrderID); ok {
				writeback(row, corrected, orderWriteback)
			}
		}
	}
	return merged
}

// indexByKey maps key text to the first corrected row carrying that key.
func indexByKey(rows []*tabular.Row, keyField string) map[string]*tabular.Row {
	index := make(map[string]*tabular.Row, len(rows))
	for _, row := range rows {
		key := row.Value(keyField)
		if key.IsNull() {
			continue
		}
		if _, seen := index[key.Text()]; !seen {
			index[key.Text()] = row
		}
	}
	return index
}

func lookup(index map[string]*tabular.Row, row *tabular.Row, keyField string) (*tabular.Row, bool) {
	key := row.Value(keyField)
	if key.IsNull() {
		return nil, false
	}
	corrected, ok := index[key.Text()]
	return corrected, ok
}

// writeback overwrites the overlapping fields the source row understands
// with the corrected values.
func writeback(row, corrected *tabular.Row, fields []string) {
	for _, field := range fields {
		if !row.Has(field) {
			continue
		}
		if v, ok := corrected.Get(field); ok {
			row.Set(field, v)
		}
	}
}
