package dracve

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/dracve/pkg/corrections"
	"github.com/agentstation/dracve/pkg/disruption"
	"github.com/agentstation/dracve/pkg/errors"
	"github.com/agentstation/dracve/pkg/logging"
	"github.com/agentstation/dracve/pkg/normalize"
	"github.com/agentstation/dracve/pkg/reconcile"
	"github.com/agentstation/dracve/pkg/sources"
	"github.com/agentstation/dracve/pkg/tabular"
)

// engine is the default Engine implementation. Each run builds fresh
// structures from copies of inputs; the mutex only guards the handoff of
// the current result and overrides.
type engine struct {
	corrector corrections.Corrector
	clock     func() time.Time
	delimiter rune
	logger    *zerolog.Logger

	mu        sync.RWMutex
	result    *Result
	overrides map[string]reconcile.Override
}

// payload pairs a source name with its body for ingestion.
type payload struct {
	source sources.Tag
	body   io.Reader
}

// Reconcile runs the full local pipeline: read, parse, clean, detect,
// analyze, consolidate. The new result supersedes the prior one entirely
// and clears manual overrides.
func (e *engine) Reconcile(ctx context.Context, payloads Payloads) (*Result, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(logging.WithLogger(ctx, e.logger), runID)
	log := logging.Ctx(ctx)

	if err := checkMandatory(payloads); err != nil {
		return nil, err
	}

	bundle, err := e.ingest(ctx, payloads)
	if err != nil {
		return nil, err
	}

	inconsistencies := reconcile.DetectInconsistencies(bundle.Legacy, bundle.Spreadsheet)
	analysis := disruption.Analyze(bundle.Legacy, bundle.Spreadsheet, bundle.Supplier, e.clock())
	consolidated := reconcile.Consolidate(bundle)

	log.Info().
		Int("inconsistency_types", len(inconsistencies)).
		Int("inventory_rows", len(consolidated.Inventory)).
		Int("order_rows", len(consolidated.Orders)).
		Int("return_rows", len(consolidated.Returns)).
		Int("in_transit", len(analysis.InTransitOrders)).
		Msg("Reconciliation complete")

	result := &Result{
		RunID:           runID,
		Sources:         bundle,
		Inconsistencies: inconsistencies,
		Consolidated:    consolidated,
		Disruption:      analysis,
	}

	e.mu.Lock()
	e.result = result
	e.overrides = make(map[string]reconcile.Override)
	e.mu.Unlock()

	return result.clone(), nil
}

// checkMandatory enforces the mandatory-source precondition before any
// reading starts, so no partial results are produced.
func checkMandatory(payloads Payloads) error {
	for _, p := range []payload{
		{sources.Legacy, payloads.Legacy},
		{sources.Spreadsheet, payloads.Spreadsheet},
		{sources.Supplier, payloads.Supplier},
	} {
		if p.body == nil {
			return errors.NewInputError(p.source.String(), "source not provided", errors.ErrSourceMissing)
		}
	}
	return nil
}

// ingest reads all provided payloads concurrently (the reads are
// independent), then parses and cleans each into the run bundle.
func (e *engine) ingest(ctx context.Context, payloads Payloads) (*sources.Bundle, error) {
	log := logging.Ctx(ctx)

	inputs := []payload{
		{sources.Legacy, payloads.Legacy},
		{sources.Spreadsheet, payloads.Spreadsheet},
		{sources.Supplier, payloads.Supplier},
		{sources.ReverseLogistics, payloads.ReverseLogistics},
		{sources.Historical, payloads.Historical},
	}

	texts := make([]string, len(inputs))
	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, p := range inputs {
		if p.body == nil {
			continue
		}
		wg.Add(1)
		go func(i int, p payload) {
			defer wg.Done()
			data, err := io.ReadAll(p.body)
			if err != nil {
				errs[i] = errors.NewInputError(p.source.String(), "failed to read source body",
					errors.WrapIO("read", p.source.String(), err))
				return
			}
			texts[i] = string(data)
		}(i, p)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	bundle := &sources.Bundle{}
	for i, p := range inputs {
		if p.body == nil {
			continue
		}
		rows := normalize.Clean(tabular.Parse(texts[i], e.delimiter))
		log.Debug().Str("source", p.source.String()).Int("rows", len(rows)).Msg("Parsed source")
		switch p.source {
		case sources.Legacy:
			bundle.Legacy = rows
		case sources.Spreadsheet:
			bundle.Spreadsheet = rows
		case sources.Supplier:
			bundle.Supplier = rows
		case sources.ReverseLogistics:
			bundle.ReverseLogistics = rows
		case sources.Historical:
			bundle.Historical = rows
		}
	}

	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// RequestCorrections performs the collaborator round trip. State is only
// updated after a fully accepted response, so a transport failure or
// contract violation leaves the prior results in place.
func (e *engine) RequestCorrections(ctx context.Context) (*corrections.Corrected, error) {
	e.mu.RLock()
	corrector := e.corrector
	// Clone while still holding the lock: a concurrent round trip may
	// rewrite the stored sources once its corrections land.
	current := e.result.clone()
	e.mu.RUnlock()

	if corrector == nil {
		return nil, errors.ErrNoCorrector
	}
	if current == nil {
		return nil, errors.ErrNoResult
	}

	ctx = logging.WithRunID(logging.WithLogger(ctx, e.logger), current.RunID)

	req := &corrections.Request{
		Bundle:          current.Sources.Clone(),
		Inconsistencies: current.Inconsistencies,
	}
	corrected, err := corrector.Correct(ctx, req)
	if err != nil {
		logging.Ctx(ctx).Err(err).Msg("Correction round trip failed; prior results remain valid")
		return nil, err
	}

	merged := reconcile.MergeCorrections(current.Sources, corrected.Inventory, corrected.Orders)

	e.mu.Lock()
	// The run may have been superseded while the collaborator was working;
	// corrections only apply to the run they were requested for.
	if e.result != nil && e.result.RunID == current.RunID {
		e.result.Sources = merged
		e.result.Corrected = corrected
	}
	e.mu.Unlock()

	return cloneCorrected(corrected), nil
}

// SetOverride records a manual override for one inventory item.
func (e *engine) SetOverride(itemID string, o reconcile.Override) {
	e.mu.Lock()
	e.overrides[itemID] = o
	e.mu.Unlock()
}

// Inventory returns the consolidated inventory with manual overrides
// applied as a final overlay.
func (e *engine) Inventory() ([]*tabular.Row, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.result == nil {
		return nil, errors.ErrNoResult
	}
	return reconcile.ApplyOverrides(e.result.Consolidated.Inventory, e.overrides), nil
}

// Result returns a copy of the current run result.
func (e *engine) Result() (*Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.result == nil {
		return nil, errors.ErrNoResult
	}
	return e.result.clone(), nil
}
