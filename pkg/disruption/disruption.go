// Package disruption computes data-quality and logistics-timing statistics
// over cleaned sources: missing-field rates for inventory- and order-shaped
// rows, and supplier shipments plausibly still in transit. Disruptions are
// data, never errors.
package disruption

import (
	"math"
	"time"

	"github.com/agentstation/dracve/pkg/logging"
	"github.com/agentstation/dracve/pkg/normalize"
	"github.com/agentstation/dracve/pkg/sources"
	"github.com/agentstation/dracve/pkg/tabular"
)

// TransitWindow is how far back a shipment date may lie while the order is
// still considered in transit.
const TransitWindow = 14 * 24 * time.Hour

// FieldStats reports how many rows of a shape are missing at least one
// required field. Percentage is always in [0,100] rounded to one decimal,
// and zero when Total is zero.
type FieldStats struct {
	Count      int     `json:"count"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Analysis is the disruption report for one reconciliation run.
type Analysis struct {
	MissingInventoryData FieldStats     `json:"missingInventoryData"`
	MissingOrderData     FieldStats     `json:"missingOrderData"`
	InTransitOrders      []*tabular.Row `json:"inTransitOrders"`
}

// requiredInventoryFields and requiredOrderFields define the per-shape
// required field sets.
var (
	requiredInventoryFields = []string{
		sources.FieldItemID,
		sources.FieldInventoryQty,
		sources.FieldLastUpdated,
	}
	requiredOrderFields = []string{
		sources.FieldOrderID,
		sources.FieldOrderQty,
		sources.FieldLastUpdated,
	}
)

// Analyze builds the union of keyed rows across legacy and spreadsheet,
// counts rows missing required fields per shape, and scans supplier rows
// for shipments dated within the trailing transit window relative to now.
// Unparsable shipment dates are excluded, never treated as in transit.
func Analyze(legacy, spreadsheet, supplier []*tabular.Row, now time.Time) *Analysis {
	combined := make([]*tabular.Row, 0, len(legacy)+len(spreadsheet))
	combined = append(combined, legacy...)
	combined = append(combined, spreadsheet...)

	return &Analysis{
		MissingInventoryData: missingStats(combined, sources.FieldItemID, requiredInventoryFields),
		MissingOrderData:     missingStats(combined, sources.FieldOrderID, requiredOrderFields),
		InTransitOrders:      inTransit(supplier, now),
	}
}

// missingStats counts, among rows carrying keyField, those missing at least
// one required field.
func missingStats(rows []*tabular.Row, keyField string, required []string) FieldStats {
	var total, count int
	for _, row := range rows {
		if row.Value(keyField).IsNull() {
			continue
		}
		total++
		for _, field := range required {
			if row.Value(field).IsNull() {
				count++
				break
			}
		}
	}
	return FieldStats{
		Count:      count,
		Total:      total,
		Percentage: percentage(count, total),
	}
}

// percentage returns count/total as a percentage rounded to one decimal,
// zero when total is zero.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// inTransit returns supplier rows whose shipment_date parses and falls
// within the trailing transit window.
func inTransit(supplier []*tabular.Row, now time.Time) []*tabular.Row {
	var out []*tabular.Row
	for _, row := range supplier {
		shipped, ok := normalize.ParseDate(row.Value(sources.FieldShipmentDate))
		if !ok {
			if !row.Value(sources.FieldShipmentDate).IsNull() {
				logging.Debug().
					Str("shipment_date", row.Value(sources.FieldShipmentDate).Text()).
					Msg("Excluding shipment with unparsable date from transit check")
			}
			continue
		}
		age := now.Sub(shipped.Time)
		if age >= 0 && age <= TransitWindow {
			out = append(out, row)
		}
	}
	return out
}
