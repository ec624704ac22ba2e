// Package report renders the collaborator's executive report as a plain-text
// document with three labeled sections.
package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/dracve/pkg/corrections"
)

var titler = cases.Title(language.English)

// Render formats the report as plain text. Every section is labeled even
// when empty so readers can tell "nothing reported" from "section missing".
func Render(r corrections.Report) string {
	var b strings.Builder
	writeSection(&b, "fixes applied", r.FixesApplied)
	writeSection(&b, "root cause analysis", r.RootCauseAnalysis)
	writeSection(&b, "recommendations", r.Recommendations)
	return b.String()
}

func writeSection(b *strings.Builder, label string, items []string) {
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	title := titler.String(label)
	b.WriteString(title)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("=", len(title)))
	b.WriteByte('\n')
	if len(items) == 0 {
		b.WriteString("(none)\n")
		return
	}
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteByte('\n')
	}
}
