package corrections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dracve/pkg/errors"
	"github.com/agentstation/dracve/pkg/reconcile"
	"github.com/agentstation/dracve/pkg/sources"
	"github.com/agentstation/dracve/pkg/tabular"
)

const validResponse = `{
  "consolidatedInventory": [
    {"item_id": "A1", "item_name": "WIDGET", "inventory_qty": 110, "last_updated": "2024-01-03", "_source": "AI-Corrected", "_ai_explanation": "Averaged conflicting counts"}
  ],
  "consolidatedOrders": [
    {"order_id": "O1", "order_qty": 6, "last_updated": "2024-01-03", "_source": "Spreadsheet"}
  ],
  "consolidatedReturns": [],
  "report": {
    "fixesApplied": ["Resolved A1 inventory conflict"],
    "rootCauseAnalysis": ["Legacy export lagged by one day"],
    "recommendations": ["Automate the spreadsheet export"]
  }
}`

func TestDecode(t *testing.T) {
	out, err := Decode(validResponse)
	require.NoError(t, err)

	require.Len(t, out.Inventory, 1)
	assert.Equal(t, tabular.Number(110), out.Inventory[0].Value("inventory_qty"))
	assert.Equal(t, tabular.String("AI-Corrected"), out.Inventory[0].Value("_source"))
	require.Len(t, out.Orders, 1)
	assert.Empty(t, out.Returns)
	assert.Equal(t, []string{"Resolved A1 inventory conflict"}, out.Report.FixesApplied)
}

func TestDecodeStripsMarkdownFence(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	out, err := Decode(fenced)
	require.NoError(t, err)
	require.Len(t, out.Inventory, 1)
}

func TestDecodeBareStringReport(t *testing.T) {
	out, err := Decode(`{"consolidatedInventory": [], "consolidatedOrders": [], "consolidatedReturns": [], "report": "Fixed everything"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fixed everything"}, out.Report.FixesApplied)
	assert.Empty(t, out.Report.RootCauseAnalysis)
	assert.Empty(t, out.Report.Recommendations)
}

func TestDecodeNullReport(t *testing.T) {
	out, err := Decode(`{"consolidatedInventory": [], "consolidatedOrders": [], "consolidatedReturns": [], "report": null}`)
	require.NoError(t, err)
	assert.Empty(t, out.Report.FixesApplied)
	assert.Empty(t, out.Report.RootCauseAnalysis)
	assert.Empty(t, out.Report.Recommendations)
}

func TestDecodeContractViolation(t *testing.T) {
	for _, raw := range []string{
		"not json at all",
		`["a", "list"]`,
		`{"consolidatedInventory": [{"item_id": {"nested": true}}]}`,
	} {
		_, err := Decode(raw)
		require.Error(t, err, "payload %q", raw)
		assert.True(t, errors.IsContractViolation(err), "payload %q", raw)

		var cerr *errors.ContractError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, raw, cerr.Raw)
	}
}

func TestPromptContents(t *testing.T) {
	legacy := tabular.NewRow()
	legacy.Set("item_id", tabular.String("A1"))
	legacy.Set("inventory_qty", tabular.Number(100))

	req := &Request{
		Bundle: &sources.Bundle{
			Legacy:      []*tabular.Row{legacy},
			Spreadsheet: []*tabular.Row{},
			Supplier:    []*tabular.Row{},
		},
		Inconsistencies: []reconcile.Inconsistency{
			{Type: reconcile.TypeInventoryDiscrepancy, Details: []*tabular.Row{legacy}},
		},
	}

	prompt := req.Prompt()
	assert.Contains(t, prompt, "Supplier > Spreadsheet > Legacy > Historical")
	assert.Contains(t, prompt, `"item_id": "A1"`)
	assert.Contains(t, prompt, "Inventory Quantity Discrepancy")
	assert.Contains(t, prompt, "_ai_explanation")
	assert.Contains(t, prompt, "subtract 'returned_qty' from 'inventory_qty'")
	// Optional sources absent from the bundle are marked as such.
	assert.Contains(t, prompt, "Not provided.")
}

func TestPromptNoInconsistencies(t *testing.T) {
	req := &Request{
		Bundle: &sources.Bundle{
			Legacy:      []*tabular.Row{},
			Spreadsheet: []*tabular.Row{},
			Supplier:    []*tabular.Row{},
		},
	}
	prompt := req.Prompt()
	assert.True(t, strings.Contains(prompt, "None automatically detected"))
}
