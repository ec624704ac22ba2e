// Package corrections defines the contract with the external correction
// collaborator: the exact request payload the engine sends and the exact
// shape of an accepted response. The collaborator is an opaque function
// from source data plus detected inconsistencies to a corrected
// consolidated view; nothing here assumes how the response is produced,
// which keeps the core testable with a stub.
package corrections

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/agentstation/dracve/pkg/errors"
	"github.com/agentstation/dracve/pkg/reconcile"
	"github.com/agentstation/dracve/pkg/sources"
	"github.com/agentstation/dracve/pkg/tabular"
)

// Corrector produces a corrected consolidated view from a request.
// Implementations live at the system boundary; a transport failure and a
// malformed response surface as distinct error types.
type Corrector interface {
	Correct(ctx context.Context, req *Request) (*Corrected, error)
}

// Request is the structured payload sent to the collaborator: the cleaned
// per-source rows as-is, plus the locally detected inconsistencies.
type Request struct {
	Bundle          *sources.Bundle
	Inconsistencies []reconcile.Inconsistency
}

// Report is the collaborator's executive report, three sequences of strings.
type Report struct {
	FixesApplied      []string `json:"fixesApplied"`
	RootCauseAnalysis []string `json:"rootCauseAnalysis"`
	Recommendations   []string `json:"recommendations"`
}

// UnmarshalJSON accepts either the structured report object or a bare
// string, which is coerced into a report whose only applied fix is that
// string. A null report stays empty rather than coercing into a blank fix.
func (r *Report) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*r = Report{}
		return nil
	}

	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		*r = Report{
			FixesApplied:      []string{bare},
			RootCauseAnalysis: []string{},
			Recommendations:   []string{},
		}
		return nil
	}

	type alias Report
	var structured alias
	if err := json.Unmarshal(data, &structured); err != nil {
		return err
	}
	*r = Report(structured)
	return nil
}

// Corrected is the accepted response shape: the three corrected lists plus
// the report. Any payload not decodable into this shape is a contract
// violation.
type Corrected struct {
	Inventory []*tabular.Row `json:"consolidatedInventory"`
	Orders    []*tabular.Row `json:"consolidatedOrders"`
	Returns   []*tabular.Row `json:"consolidatedReturns"`
	Report    Report         `json:"report"`
}

// fencePattern matches a markdown code fence around the whole payload.
// Models occasionally wrap JSON output despite instructions not to.
var fencePattern = regexp.MustCompile("(?s)```(?:json)?(.*)```")

// Decode interprets a raw collaborator response. A surrounding markdown
// fence is stripped before decoding; anything that then fails to parse as
// the Corrected shape is a contract violation carrying the raw payload.
func Decode(raw string) (*Corrected, error) {
	text := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	var corrected Corrected
	if err := json.Unmarshal([]byte(text), &corrected); err != nil {
		return nil, errors.NewContractError("response is not the expected structured object", raw, err)
	}
	return &corrected, nil
}
