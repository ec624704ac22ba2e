package reconcile

import (
	"sort"

	"github.com/agentstation/utc"

	"github.com/agentstation/dracve/pkg/normalize"
	"github.com/agentstation/dracve/pkg/sources"
	"github.com/agentstation/dracve/pkg/tabular"
)

// Consolidated is the single authoritative view built from all sources.
// Every row carries a provenance tag under _source, and each key appears
// at most once per list.
type Consolidated struct {
	Inventory []*tabular.Row `json:"consolidatedInventory"`
	Orders    []*tabular.Row `json:"consolidatedOrders"`
	Returns   []*tabular.Row `json:"consolidatedReturns"`
}

// candidate is a projected row competing for its key.
type candidate struct {
	key     string
	row     *tabular.Row
	updated utc.Time
}

// Consolidate merges cleaned rows from all sources. Inventory rows are
// projected from legacy, spreadsheet and supplier (whose shipment_qty and
// shipment_date map onto inventory_qty and last_updated); orders come from
// legacy and spreadsheet. Rows lacking a key or a parsable last_updated are
// dropped. The combined set is sorted by last_updated descending and only
// the first row per key is kept: recency wins, ties broken by source
// encounter order (legacy, spreadsheet, supplier). The supplier-over-
// spreadsheet-over-legacy priority weighting belongs exclusively to the
// correction collaborator; recency is the only local tie-break. Returns are
// a straight pass-through tagged ReverseLogistics.
func Consolidate(b *sources.Bundle) *Consolidated {
	inventoryFields := []string{
		sources.FieldItemID,
		sources.FieldItemName,
		sources.FieldInventoryQty,
		sources.FieldLastUpdated,
	}
	supplierMapping := map[string]string{
		sources.FieldInventoryQty: sources.FieldShipmentQty,
		sources.FieldLastUpdated:  sources.FieldShipmentDate,
	}
	var inventory []candidate
	inventory = append(inventory, project(b.Legacy, sources.Legacy, sources.FieldItemID, inventoryFields, nil)...)
	inventory = append(inventory, project(b.Spreadsheet, sources.Spreadsheet, sources.FieldItemID, inventoryFields, nil)...)
	inventory = append(inventory, project(b.Supplier, sources.Supplier, sources.FieldItemID, inventoryFields, supplierMapping)...)

	orderFields := []string{
		sources.FieldOrderID,
		sources.FieldOrderQty,
		sources.FieldLastUpdated,
	}
	var orders []candidate
	orders = append(orders, project(b.Legacy, sources.Legacy, sources.FieldOrderID, orderFields, nil)...)
	orders = append(orders, project(b.Spreadsheet, sources.Spreadsheet, sources.FieldOrderID, orderFields, nil)...)

	return &Consolidated{
		Inventory: keepMostRecent(inventory),
		Orders:    keepMostRecent(orders),
		Returns:   passThroughReturns(b.ReverseLogistics),
	}
}

// project maps source rows onto the consolidated field set, tagging each
// with its provenance. mapping renames consolidated fields to the source's
// own field names. Rows without a usable key or last_updated are dropped.
func project(rows []*tabular.Row, tag sources.Tag, keyField string, fields []string, mapping map[string]string) []candidate {
	var out []candidate
	for _, row := range rows {
		projected := tabular.NewRow()
		for _, field := range fields {
			from := field
			if mapped, ok := mapping[field]; ok {
				from = mapped
			}
			projected.Set(field, row.Value(from))
		}
		key := projected.Value(keyField)
		if key.IsNull() {
			continue
		}
		updated, ok := normalize.ParseDate(projected.Value(sources.FieldLastUpdated))
		if !ok {
			continue
		}
		projected.Set(sources.FieldSource, tabular.String(tag.String()))
		out = append(out, candidate{key: key.Text(), row: projected, updated: updated})
	}
	return out
}

// keepMostRecent sorts candidates by last_updated descending (stable, so
// ties keep source encounter order) and keeps the first row per key.
func keepMostRecent(candidates []candidate) []*tabular.Row {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].updated.After(candidates[j].updated)
	})

	seen := make(map[string]bool)
	out := make([]*tabular.Row, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.key] {
			continue
		}
		seen[c.key] = true
		out = append(out, c.row)
	}
	return out
}

func passThroughReturns(rows []*tabular.Row) []*tabular.Row {
	out := make([]*tabular.Row, 0, len(rows))
	for _, row := range rows {
		tagged := row.Clone()
		tagged.Set(sources.FieldSource, tabular.String(sources.ReverseLogistics.String()))
		out = append(out, tagged)
	}
	return out
}
