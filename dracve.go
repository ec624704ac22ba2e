// Package dracve reconciles supply-chain records gathered from multiple
// independent, untrusted, inconsistently formatted data exports into a
// single authoritative view of inventory and open orders, surfacing every
// place the sources disagree.
//
// A reconciliation run ingests delimited-text payloads for the legacy
// export, the manually maintained spreadsheet and the supplier feed
// (mandatory), plus optional returns and historical-backup feeds. The run
// normalizes the rows, detects cross-source inconsistencies, consolidates
// records under a recency-wins policy with provenance tagging, and computes
// data-quality and disruption statistics. An external correction
// collaborator can then produce a corrected consolidated view, which the
// engine merges back into the original per-source rows.
//
// Example usage:
//
//	engine, err := dracve.New(dracve.WithCorrector(corrector))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := engine.Reconcile(ctx, dracve.Payloads{
//	    Legacy:      legacyFile,
//	    Spreadsheet: spreadsheetFile,
//	    Supplier:    supplierFile,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, inc := range result.Inconsistencies {
//	    fmt.Printf("%s: %d rows\n", inc.Type, len(inc.Details))
//	}
//
//	// Optional collaborator round trip; prior results remain valid on failure.
//	corrected, err := engine.RequestCorrections(ctx)
package dracve

import (
	"context"
	"io"

	"github.com/agentstation/dracve/pkg/corrections"
	"github.com/agentstation/dracve/pkg/disruption"
	"github.com/agentstation/dracve/pkg/reconcile"
	"github.com/agentstation/dracve/pkg/sources"
	"github.com/agentstation/dracve/pkg/tabular"
)

// Compile-time interface check to ensure proper implementation.
var _ Engine = (*engine)(nil)

// Payloads holds the delimited-text source bodies for one run. Legacy,
// Spreadsheet and Supplier are mandatory; the others may be nil.
type Payloads struct {
	Legacy           io.Reader
	Spreadsheet      io.Reader
	Supplier         io.Reader
	ReverseLogistics io.Reader
	Historical       io.Reader
}

// Result is the outcome of one reconciliation run. All state is in-memory;
// a new run supersedes it entirely.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Sources holds the cleaned per-source rows. After a successful
	// correction round trip they carry the written-back corrected values.
	Sources *sources.Bundle

	// Inconsistencies lists every detected cross-source mismatch class.
	Inconsistencies []reconcile.Inconsistency

	// Consolidated is the locally consolidated authoritative view.
	Consolidated *reconcile.Consolidated

	// Disruption holds missing-data rates and in-transit shipments.
	Disruption *disruption.Analysis

	// Corrected is the collaborator's view, nil until a correction round
	// trip succeeds.
	Corrected *corrections.Corrected
}

// clone deep-copies the result for copy-on-read access.
func (r *Result) clone() *Result {
	if r == nil {
		return nil
	}
	out := &Result{
		RunID:   r.RunID,
		Sources: r.Sources.Clone(),
	}
	for _, inc := range r.Inconsistencies {
		out.Inconsistencies = append(out.Inconsistencies, reconcile.Inconsistency{
			Type:    inc.Type,
			Details: tabular.CloneRows(inc.Details),
		})
	}
	if r.Consolidated != nil {
		out.Consolidated = &reconcile.Consolidated{
			Inventory: tabular.CloneRows(r.Consolidated.Inventory),
			Orders:    tabular.CloneRows(r.Consolidated.Orders),
			Returns:   tabular.CloneRows(r.Consolidated.Returns),
		}
	}
	if r.Disruption != nil {
		out.Disruption = &disruption.Analysis{
			MissingInventoryData: r.Disruption.MissingInventoryData,
			MissingOrderData:     r.Disruption.MissingOrderData,
			InTransitOrders:      tabular.CloneRows(r.Disruption.InTransitOrders),
		}
	}
	if r.Corrected != nil {
		out.Corrected = cloneCorrected(r.Corrected)
	}
	return out
}

func cloneCorrected(c *corrections.Corrected) *corrections.Corrected {
	return &corrections.Corrected{
		Inventory: tabular.CloneRows(c.Inventory),
		Orders:    tabular.CloneRows(c.Orders),
		Returns:   tabular.CloneRows(c.Returns),
		Report: corrections.Report{
			FixesApplied:      append([]string(nil), c.Report.FixesApplied...),
			RootCauseAnalysis: append([]string(nil), c.Report.RootCauseAnalysis...),
			Recommendations:   append([]string(nil), c.Report.Recommendations...),
		},
	}
}

// Engine runs reconciliation sessions and holds the current in-memory
// result. Results are returned as deep copies so callers can never mutate
// engine state.
type Engine interface {
	// Reconcile ingests the payloads and builds fresh results, clearing any
	// manual overrides from the prior run. Missing mandatory sources or
	// unreadable payloads abort with an input error and no partial results.
	Reconcile(ctx context.Context, payloads Payloads) (*Result, error)

	// RequestCorrections performs the collaborator round trip over the
	// current result, merges accepted corrections back into the per-source
	// rows, and returns the corrected view. On failure the prior results
	// remain in place.
	RequestCorrections(ctx context.Context) (*corrections.Corrected, error)

	// SetOverride records a manual override for one inventory item. It is
	// applied as an overlay by Inventory and cleared by the next run.
	SetOverride(itemID string, o reconcile.Override)

	// Inventory returns the consolidated inventory with manual overrides
	// applied.
	Inventory() ([]*tabular.Row, error)

	// Result returns the current run result.
	Result() (*Result, error)
}

// New creates an Engine with the given options.
func New(opts ...Option) (Engine, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &engine{
		corrector: options.corrector,
		clock:     options.clock,
		delimiter: options.delimiter,
		logger:    options.logger,
		overrides: make(map[string]reconcile.Override),
	}, nil
}
