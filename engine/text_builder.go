package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// TEXT BUILDER — Produces TextData for terminal output
// ============================================================================

// DefaultTextLines caps the rows BuildText renders.
const DefaultTextLines = 20

// BuildText renders up to maxLines table rows as "label: value" lines.
// maxLines ≤ 0 uses DefaultTextLines.
func BuildText(table *TableData, maxLines int) *TextData {
	if maxLines <= 0 {
		maxLines = DefaultTextLines
	}
	out := &TextData{Title: table.Title, Count: len(table.Rows)}
	if len(table.Rows) == 0 {
		out.Lines = []string{"No data"}
		return out
	}

	for i, row := range table.Rows {
		if i == maxLines {
			out.Lines = append(out.Lines, fmt.Sprintf("… and %s more", FormatInt(len(table.Rows)-maxLines)))
			break
		}
		parts := make([]string, 0, len(row))
		for j, cell := range row {
			if j < len(table.Columns) {
				parts = append(parts, table.Columns[j].Label+": "+cell)
			}
		}
		out.Lines = append(out.Lines, fmt.Sprintf("%d. %s", i+1, strings.Join(parts, ", ")))
	}
	return out
}

// BuildSummary is the one-line description of a table.
func BuildSummary(table *TableData) string {
	switch len(table.Rows) {
	case 0:
		return fmt.Sprintf("%s: no rows", table.Title)
	case 1:
		return fmt.Sprintf("%s: 1 row", table.Title)
	default:
		return fmt.Sprintf("%s: %s rows", table.Title, FormatInt(len(table.Rows)))
	}
}

// String joins the title and lines for printing.
func (t *TextData) String() string {
	var sb strings.Builder
	sb.WriteString(t.Title)
	sb.WriteByte('\n')
	for _, l := range t.Lines {
		sb.WriteString("  ")
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}
