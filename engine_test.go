package dracve

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dracve/pkg/corrections"
	"github.com/agentstation/dracve/pkg/errors"
	"github.com/agentstation/dracve/pkg/reconcile"
	"github.com/agentstation/dracve/pkg/tabular"
)

var testClock = func() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

const (
	legacyCSV = `item_id,item_name,inventory_qty,last_updated
A1,Widget,100,2024-01-01
B2,Gadget,50,2024-01-01
`
	spreadsheetCSV = `item_id,item_name,inventory_qty,last_updated
a1,widget,120,2024-01-02
`
	supplierCSV = `item_id,item_name,shipment_qty,shipment_date
C3,Sprocket,30,2024-06-10
D4,Flange,5,2024-05-01
`
)

// stubCorrector implements the collaborator contract for tests.
type stubCorrector struct {
	corrected *corrections.Corrected
	err       error
	lastReq   *corrections.Request
}

func (s *stubCorrector) Correct(_ context.Context, req *corrections.Request) (*corrections.Corrected, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.corrected, nil
}

func testPayloads() Payloads {
	return Payloads{
		Legacy:      strings.NewReader(legacyCSV),
		Spreadsheet: strings.NewReader(spreadsheetCSV),
		Supplier:    strings.NewReader(supplierCSV),
	}
}

func newTestEngine(t *testing.T, opts ...Option) Engine {
	t.Helper()
	engine, err := New(append([]Option{WithClock(testClock)}, opts...)...)
	require.NoError(t, err)
	return engine
}

func TestReconcileEndToEnd(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Reconcile(context.Background(), testPayloads())
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)

	// Legacy says 100, spreadsheet says 120: one inventory discrepancy.
	require.Len(t, result.Inconsistencies, 1)
	assert.Equal(t, reconcile.TypeInventoryDiscrepancy, result.Inconsistencies[0].Type)
	require.Len(t, result.Inconsistencies[0].Details, 1)

	// Spreadsheet wins A1 on recency; legacy keeps B2; supplier contributes
	// C3 and D4 via the shipment field mapping.
	inventory := indexByItem(result.Consolidated.Inventory)
	require.Len(t, inventory, 4)
	assert.Equal(t, tabular.Number(120), inventory["A1"].Value("inventory_qty"))
	assert.Equal(t, tabular.String("Spreadsheet"), inventory["A1"].Value("_source"))
	assert.Equal(t, tabular.String("Legacy"), inventory["B2"].Value("_source"))
	assert.Equal(t, tabular.String("Supplier"), inventory["C3"].Value("_source"))
	assert.Equal(t, tabular.Number(30), inventory["C3"].Value("inventory_qty"))

	// 2024-06-10 is 5 days before evaluation time: in transit. 2024-05-01 is not.
	require.Len(t, result.Disruption.InTransitOrders, 1)
	assert.Equal(t, tabular.String("C3"), result.Disruption.InTransitOrders[0].Value("item_id"))
}

func TestReconcileMissingMandatorySource(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Reconcile(context.Background(), Payloads{
		Legacy:      strings.NewReader(legacyCSV),
		Spreadsheet: strings.NewReader(spreadsheetCSV),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceMissing)

	// No partial results.
	_, err = engine.Result()
	assert.ErrorIs(t, err, errors.ErrNoResult)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestReconcileUnreadableSource(t *testing.T) {
	engine := newTestEngine(t)

	payloads := testPayloads()
	payloads.Supplier = failingReader{}
	_, err := engine.Reconcile(context.Background(), payloads)
	require.Error(t, err)
	assert.True(t, errors.IsInputError(err))
}

func TestRequestCorrections(t *testing.T) {
	correctedRow := tabular.NewRow()
	correctedRow.Set("item_id", tabular.String("A1"))
	correctedRow.Set("item_name", tabular.String("WIDGET"))
	correctedRow.Set("inventory_qty", tabular.Number(110))
	correctedRow.Set("last_updated", tabular.String("2024-01-03"))
	correctedRow.Set("_source", tabular.String("AI-Corrected"))

	stub := &stubCorrector{corrected: &corrections.Corrected{
		Inventory: []*tabular.Row{correctedRow},
		Report:    corrections.Report{FixesApplied: []string{"Resolved A1"}},
	}}
	engine := newTestEngine(t, WithCorrector(stub))

	_, err := engine.Reconcile(context.Background(), testPayloads())
	require.NoError(t, err)

	corrected, err := engine.RequestCorrections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Resolved A1"}, corrected.Report.FixesApplied)

	// The request carried the cleaned sources and detected inconsistencies.
	require.NotNil(t, stub.lastReq)
	assert.Len(t, stub.lastReq.Inconsistencies, 1)

	// Corrections were written back into the peer source rows but never
	// into the supplier feed.
	result, err := engine.Result()
	require.NoError(t, err)
	assert.Equal(t, tabular.Number(110), result.Sources.Legacy[0].Value("inventory_qty"))
	assert.Equal(t, tabular.Number(110), result.Sources.Spreadsheet[0].Value("inventory_qty"))
	assert.Equal(t, tabular.Number(30), result.Sources.Supplier[0].Value("shipment_qty"))
	require.NotNil(t, result.Corrected)
}

// mutatingCorrector scribbles on its request bundle before answering.
type mutatingCorrector struct{}

func (mutatingCorrector) Correct(_ context.Context, req *corrections.Request) (*corrections.Corrected, error) {
	for _, row := range req.Bundle.Legacy {
		row.Set("inventory_qty", tabular.Number(-1))
	}
	return &corrections.Corrected{}, nil
}

func TestRequestCorrectionsIsolatedFromCollaborator(t *testing.T) {
	engine := newTestEngine(t, WithCorrector(mutatingCorrector{}))
	_, err := engine.Reconcile(context.Background(), testPayloads())
	require.NoError(t, err)

	_, err = engine.RequestCorrections(context.Background())
	require.NoError(t, err)

	// The collaborator only ever sees copies; stored sources keep their
	// values apart from any corrected writeback.
	result, err := engine.Result()
	require.NoError(t, err)
	assert.Equal(t, tabular.Number(100), result.Sources.Legacy[0].Value("inventory_qty"))
}

func TestRequestCorrectionsFailureKeepsPriorResults(t *testing.T) {
	stub := &stubCorrector{err: errors.NewTransportError("gemini", "service down", nil)}
	engine := newTestEngine(t, WithCorrector(stub))

	_, err := engine.Reconcile(context.Background(), testPayloads())
	require.NoError(t, err)

	_, err = engine.RequestCorrections(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCollaboratorUnavailable(err))

	result, err := engine.Result()
	require.NoError(t, err)
	assert.Nil(t, result.Corrected)
	assert.Equal(t, tabular.Number(100), result.Sources.Legacy[0].Value("inventory_qty"))
}

func TestRequestCorrectionsWithoutCorrector(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Reconcile(context.Background(), testPayloads())
	require.NoError(t, err)

	_, err = engine.RequestCorrections(context.Background())
	assert.ErrorIs(t, err, errors.ErrNoCorrector)
}

func TestOverridesOverlayAndClear(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Reconcile(context.Background(), testPayloads())
	require.NoError(t, err)

	qty := 75.0
	engine.SetOverride("A1", reconcile.Override{InventoryQty: &qty})

	inventory, err := engine.Inventory()
	require.NoError(t, err)
	byItem := indexByItem(inventory)
	assert.Equal(t, tabular.Number(75), byItem["A1"].Value("inventory_qty"))
	assert.Equal(t, tabular.String("Manual"), byItem["A1"].Value("_source"))

	// Overrides overlay at read time; the stored result is untouched.
	result, err := engine.Result()
	require.NoError(t, err)
	assert.Equal(t, tabular.Number(120), indexByItem(result.Consolidated.Inventory)["A1"].Value("inventory_qty"))

	// A new run clears overrides.
	_, err = engine.Reconcile(context.Background(), testPayloads())
	require.NoError(t, err)
	inventory, err = engine.Inventory()
	require.NoError(t, err)
	assert.Equal(t, tabular.Number(120), indexByItem(inventory)["A1"].Value("inventory_qty"))
}

func TestResultIsCopy(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Reconcile(context.Background(), testPayloads())
	require.NoError(t, err)

	first, err := engine.Result()
	require.NoError(t, err)
	first.Consolidated.Inventory[0].Set("inventory_qty", tabular.Number(-999))

	second, err := engine.Result()
	require.NoError(t, err)
	assert.NotEqual(t, tabular.Number(-999), second.Consolidated.Inventory[0].Value("inventory_qty"))
}

func indexByItem(rows []*tabular.Row) map[string]*tabular.Row {
	out := make(map[string]*tabular.Row, len(rows))
	for _, row := range rows {
		out[row.Value("item_id").Text()] = row
	}
	return out
}
