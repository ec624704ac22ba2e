package tabular

import (
	"strings"
)

// Render produces a delimited-text document from a row list, suitable for
// offering as a downloadable export. The header is the union of all field
// names in first-seen order. Field values containing the delimiter are
// wrapped in quotes; null values render as empty fields. An empty row list
// renders as an empty document.
func Render(rows []*Row, delimiter rune) string {
	if len(rows) == 0 {
		return ""
	}

	var header []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, field := range row.Fields() {
			if !seen[field] {
				seen[field] = true
				header = append(header, field)
			}
		}
	}

	var b strings.Builder
	writeLine(&b, header, delimiter)
	for _, row := range rows {
		fields := make([]string, len(header))
		for i, name := range header {
			fields[i] = row.Value(name).Text()
		}
		writeLine(&b, fields, delimiter)
	}
	return b.String()
}

func writeLine(b *strings.Builder, fields []string, delimiter rune) {
	for i, field := range fields {
		if i > 0 {
			b.WriteRune(delimiter)
		}
		if strings.ContainsRune(field, delimiter) {
			b.WriteByte('"')
			b.WriteString(field)
			b.WriteByte('"')
		} else {
			b.WriteString(field)
		}
	}
	b.WriteByte('\n')
}
