// Package reconcile compares and merges per-source rows into a single
// authoritative view. It detects cross-source inconsistencies between the
// two peer sources, consolidates all sources under a recency-wins policy
// with per-row provenance tagging, and writes externally supplied
// corrections back into the original per-source rows.
package reconcile

import (
	"github.com/agentstation/dracve/pkg/sources"
	"github.com/agentstation/dracve/pkg/tabular"
)

// Inconsistency is one class of detected mismatch. Details holds the joined
// rows that disagree, with the compared quantity suffixed per side.
type Inconsistency struct {
	Type    string         `json:"type"`
	Details []*tabular.Row `json:"details"`
}

// Inconsistency types produced by detection.
const (
	TypeInventoryDiscrepancy = "Inventory Quantity Discrepancy"
	TypeOrderDiscrepancy     = "Order Quantity Discrepancy"
)

// Suffixes applied to the compared quantity field in joined detail rows.
const (
	suffixLegacy      = "_legacy"
	suffixSpreadsheet = "_spreadsheet"
)

// DetectInconsistencies pairwise-compares the two peer sources. It performs
// a full-outer join on item_id comparing inventory_qty, and a second on
// order_id comparing order_qty. A pair contributes only when both sides are
// non-null and numerically different; missing-on-one-side is the disruption
// analyzer's concern, not a discrepancy. Discrepancy classes with no
// qualifying rows are omitted entirely.
func DetectInconsistencies(legacy, spreadsheet []*tabular.Row) []Inconsistency {
	var out []Inconsistency

	if details := joinMismatches(legacy, spreadsheet, sources.FieldItemID, sources.FieldInventoryQty); len(details) > 0 {
		out = append(out, Inconsistency{Type: TypeInventoryDiscrepancy, Details: details})
	}
	if details := joinMismatches(legacy, spreadsheet, sources.FieldOrderID, sources.FieldOrderQty); len(details) > 0 {
		out = append(out, Inconsistency{Type: TypeOrderDiscrepancy, Details: details})
	}
	return out
}

// joinMismatches outer-joins the two sides on keyField and returns a joined
// row per key whose qtyField differs with both sides non-null. Keys follow
// legacy encounter order, then spreadsheet-only keys, so output is
// deterministic and symmetric in content when the inputs are swapped.
func joinMismatches(legacy, spreadsheet []*tabular.Row, keyField, qtyField string) []*tabular.Row {
	legacyQty, legacyKeys := indexQuantities(legacy, keyField, qtyField)
	spreadsheetQty, spreadsheetKeys := indexQuantities(spreadsheet, keyField, qtyField)

	keys := legacyKeys
	for _, k := range spreadsheetKeys {
		if _, ok := legacyQty[k]; !ok {
			keys = append(keys, k)
		}
	}

	var details []*tabular.Row
	for _, key := range keys {
		lv, lok := legacyQty[key]
		sv, sok := spreadsheetQty[key]
		if !lok || !sok || lv.IsNull() || sv.IsNull() {
			continue
		}
		if lv.Equal(sv) {
			continue
		}
		row := tabular.NewRow()
		row.Set(keyField, tabular.String(key))
		row.Set(qtyField+suffixLegacy, lv)
		row.Set(qtyField+suffixSpreadsheet, sv)
		details = append(details, row)
	}
	return details
}

// indexQuantities maps key text to the quantity of the first row carrying
// that key, preserving key encounter order.
func indexQuantities(rows []*tabular.Row, keyField, qtyField string) (map[string]tabular.Value, []string) {
	index := make(map[string]tabular.Value)
	var order []string
	for _, row := range rows {
		key := row.Value(keyField)
		if key.IsNull() {
			continue
		}
		text := key.Text()
		if _, seen := index[text]; seen {
			continue
		}
		index[text] = row.Value(qtyField)
		order = append(order, text)
	}
	return index, order
}
