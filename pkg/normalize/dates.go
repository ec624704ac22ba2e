package normalize

import (
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/dracve/pkg/tabular"
)

// dateLayouts lists the formats sources are known to emit, in the order
// they are tried. MM/DD/YYYY appears in supplier shipment feeds; the rest
// are ISO variants.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ParseDate interprets a field value as a calendar timestamp in UTC.
// Numeric and null values never parse. Unparsable dates report false and
// are excluded by callers rather than raised as errors; that keeps rows
// with malformed dates out of recency decisions and in-transit windows.
func ParseDate(v tabular.Value) (utc.Time, bool) {
	s, ok := v.Str()
	if !ok {
		return utc.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return utc.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return utc.Time{Time: t.UTC()}, true
		}
	}
	return utc.Time{}, false
}
