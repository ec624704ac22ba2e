// Package sources defines the independent data exports being reconciled and
// the provenance tags attached to consolidated rows.
package sources

import (
	"slices"

	"github.com/agentstation/dracve/pkg/errors"
	"github.com/agentstation/dracve/pkg/tabular"
)

// Tag identifies record provenance. It is attached to every consolidated
// row under the FieldSource field and is never present on raw source rows.
type Tag string

// String returns the string representation of a source tag.
func (t Tag) String() string {
	return string(t)
}

// Provenance tags used throughout the system.
const (
	// Legacy identifies the legacy system export.
	Legacy Tag = "Legacy"

	// Spreadsheet identifies the manually maintained spreadsheet.
	Spreadsheet Tag = "Spreadsheet"

	// Supplier identifies the supplier feed.
	Supplier Tag = "Supplier"

	// ReverseLogistics identifies the returns feed.
	ReverseLogistics Tag = "ReverseLogistics"

	// Historical identifies the historical backup export.
	Historical Tag = "Historical"

	// Manual identifies values set by a manual override.
	Manual Tag = "Manual"

	// AICorrected identifies rows whose final values were produced by the
	// correction collaborator.
	AICorrected Tag = "AI-Corrected"

	// Unknown identifies rows whose provenance could not be determined.
	Unknown Tag = "Unknown"
)

// Tags returns all defined provenance tags.
func Tags() []Tag {
	return []Tag{
		Legacy,
		Spreadsheet,
		Supplier,
		ReverseLogistics,
		Historical,
		Manual,
		AICorrected,
		Unknown,
	}
}

// IsValid returns true if the Tag is one of the defined constants.
func (t Tag) IsValid() bool {
	return slices.Contains(Tags(), t)
}

// Well-known field names understood by downstream consumers. Rows are
// otherwise schema-less.
const (
	FieldSource      = "_source"
	FieldExplanation = "_ai_explanation"

	FieldItemID       = "item_id"
	FieldItemName     = "item_name"
	FieldInventoryQty = "inventory_qty"
	FieldOrderID      = "order_id"
	FieldOrderQty     = "order_qty"
	FieldReturnID     = "return_id"
	FieldReturnedQty  = "returned_qty"
	FieldReturnDate   = "return_date"
	FieldLastUpdated  = "last_updated"
	FieldShipmentDate = "shipment_date"
	FieldShipmentQty  = "shipment_qty"
	FieldReorderLevel = "reorder_level"
)

// Bundle holds the per-source row lists for one reconciliation run.
// Legacy, Spreadsheet and Supplier are mandatory; ReverseLogistics and
// Historical are optional and may be nil.
type Bundle struct {
	Legacy           []*tabular.Row
	Spreadsheet      []*tabular.Row
	Supplier         []*tabular.Row
	ReverseLogistics []*tabular.Row
	Historical       []*tabular.Row
}

// Validate checks the mandatory-source precondition. A nil mandatory source
// is a precondition failure for the whole pipeline; an empty (parsed,
// header-only) source is acceptable.
func (b *Bundle) Validate() error {
	if b.Legacy == nil {
		return errors.NewInputError(Legacy.String(), "source not provided", errors.ErrSourceMissing)
	}
	if b.Spreadsheet == nil {
		return errors.NewInputError(Spreadsheet.String(), "source not provided", errors.ErrSourceMissing)
	}
	if b.Supplier == nil {
		return errors.NewInputError(Supplier.String(), "source not provided", errors.ErrSourceMissing)
	}
	return nil
}

// Clone deep-copies the bundle so stages can rewrite rows without
// touching caller-owned data.
func (b *Bundle) Clone() *Bundle {
	if b == nil {
		return nil
	}
	return &Bundle{
		Legacy:           tabular.CloneRows(b.Legacy),
		Spreadsheet:      tabular.CloneRows(b.Spreadsheet),
		Supplier:         tabular.CloneRows(b.Supplier),
		ReverseLogistics: tabular.CloneRows(b.ReverseLogistics),
		Historical:       tabular.CloneRows(b.Historical),
	}
}
