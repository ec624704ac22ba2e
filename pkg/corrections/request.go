package corrections

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentstation/dracve/pkg/tabular"
)

// Prompt renders the natural-language instruction and data payload for the
// collaborator. It fixes the source-priority order (Supplier > Spreadsheet
// > Legacy > Historical) with recency as the secondary tie-break, requires
// returns to be subtracted from inventory (negative inventory is a flagged
// signal, not an error), and requires every produced row to carry _source
// and, for non-trivial corrections, _ai_explanation.
func (r *Request) Prompt() string {
	var b strings.Builder

	b.WriteString(`You are a supply chain crisis management expert acting as the core of a data reconciliation and supply-chain visibility engine. The primary ERP/SCM system has failed. The provided datasets are fragmented exports and manual spreadsheets used to restore visibility. Perform a comprehensive audit, consolidate the data into a single source of truth, and provide a clear, actionable report.

**Input Datasets:**
`)
	fmt.Fprintf(&b, "*   **Legacy Data:** %s\n", marshalRows(r.Bundle.Legacy))
	fmt.Fprintf(&b, "*   **Spreadsheet Data:** %s\n", marshalRows(r.Bundle.Spreadsheet))
	fmt.Fprintf(&b, "*   **Supplier Data:** %s\n", marshalRows(r.Bundle.Supplier))
	fmt.Fprintf(&b, "*   **Reverse Logistics Data:** %s\n", marshalOptionalRows(r.Bundle.ReverseLogistics))
	fmt.Fprintf(&b, "*   **Historical Backup Data:** %s\n", marshalOptionalRows(r.Bundle.Historical))

	b.WriteString("\n**Potential Inconsistencies Detected:**\n")
	if len(r.Inconsistencies) == 0 {
		b.WriteString("None automatically detected. A full audit is still required.\n")
	} else {
		data, err := json.MarshalIndent(r.Inconsistencies, "", "  ")
		if err != nil {
			data = []byte("[]")
		}
		b.Write(data)
		b.WriteByte('\n')
	}

	b.WriteString(`
**Your Required Tasks:**
1.  **Audit, Clean, and Consolidate Data:** Create authoritative 'consolidatedInventory', 'consolidatedOrders', and 'consolidatedReturns' lists by applying these rules universally to all data.
    *   **Standardize Dates:** Convert all date-like fields to 'YYYY-MM-DD'.
    *   **Resolve Gaps & Conflicts:** Prioritize data sources in this order for accuracy: Supplier > Spreadsheet > Legacy > Historical.
    *   **Use Recency:** For conflicts within the same priority level, use the record with the most recent 'last_updated' date.
    *   **Handle Returns:** If reverse logistics data exists, correctly subtract 'returned_qty' from 'inventory_qty'. Negative inventory is allowed and serves as a flagged over-return signal.
    *   **Add Source Tracking:** Add a '_source' field to every row indicating its final origin ('Legacy', 'Spreadsheet', 'Supplier', 'AI-Corrected').
    *   **Add Explanations:** For any record in consolidatedInventory you significantly corrected, add a concise explanation in a new '_ai_explanation' field.

2.  **Generate a Detailed Executive Report:** Create a structured report object with three sections: 'fixesApplied', 'rootCauseAnalysis', 'recommendations'.

**Output Format:**
You MUST return a single, valid JSON object with NO markdown fences. The JSON must strictly adhere to this structure:
{
  "consolidatedInventory": [
    { "item_id": "string", "item_name": "string", "inventory_qty": "number", "last_updated": "string (YYYY-MM-DD)", "_source": "string", "_ai_explanation": "string (optional)" }
  ],
  "consolidatedOrders": [
    { "order_id": "string", "order_qty": "number", "last_updated": "string (YYYY-MM-DD)", "_source": "string" }
  ],
  "consolidatedReturns": [
    { "return_id": "string", "item_id": "string", "returned_qty": "number", "return_date": "string (YYYY-MM-DD)", "_source": "string" }
  ],
  "report": {
    "fixesApplied": ["string"],
    "rootCauseAnalysis": ["string"],
    "recommendations": ["string"]
  }
}
`)
	return b.String()
}

func marshalRows(rows []*tabular.Row) string {
	if rows == nil {
		rows = []*tabular.Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

func marshalOptionalRows(rows []*tabular.Row) string {
	if len(rows) == 0 {
		return "Not provided."
	}
	return marshalRows(rows)
}
