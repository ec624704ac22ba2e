package tabular

import (
	"strings"
)

// DefaultDelimiter is the field separator assumed when none is configured.
const DefaultDelimiter = ','

// Parse turns raw delimited text into rows. The first line is the header;
// each data line is paired positionally with the header names. Fields split
// strictly on the delimiter; a single pair of surrounding quote characters
// per field is stripped, with no further escaping. Values that are empty
// after trimming become null, missing trailing fields become null, and extra
// trailing fields are ignored. Header-only or empty input yields no rows.
func Parse(text string, delimiter rune) []*Row {
	lines := splitLines(text)
	if len(lines) == 0 {
		return []*Row{}
	}

	header := splitFields(lines[0], delimiter)
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
	}

	rows := make([]*Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := splitFields(line, delimiter)
		row := NewRow()
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(fields) {
				row.Set(name, Coerce(fields[i]))
			} else {
				row.Set(name, Null)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// splitLines breaks text into non-blank lines, tolerating CRLF endings.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitFields splits a line on the delimiter and strips one pair of
// surrounding quotes per field.
func splitFields(line string, delimiter rune) []string {
	parts := strings.Split(line, string(delimiter))
	for i, part := range parts {
		parts[i] = stripQuotes(part)
	}
	return parts
}

func stripQuotes(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		return trimmed[1 : len(trimmed)-1]
	}
	return s
}
