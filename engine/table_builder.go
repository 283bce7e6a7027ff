package engine

import "fmt"

// ============================================================================
// TABLE BUILDER — Produces TableData from typed result rows
// ============================================================================
// Result rows render themselves through Tabular; the builder only pairs
// the cells with column metadata and adds a row-count summary.
// ============================================================================

// Tabular is a result row that can render itself as table cells, one per
// column, in column order.
type Tabular interface {
	Cells() []string
}

// TextColumn describes a left-aligned text column.
func TextColumn(key string) Column {
	return Column{Key: key, Label: LabelForDimension(key), Type: "text", Align: "left"}
}

// NumberColumn describes a right-aligned numeric column.
func NumberColumn(key string) Column {
	return Column{Key: key, Label: LabelForDimension(key), Type: "number", Align: "right"}
}

// BuildTable renders rows under columns. Rows with a cell count that does
// not match the columns are padded or truncated.
func BuildTable[T Tabular](title string, columns []Column, rows []T) *TableData {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells := r.Cells()
		row := make([]string, len(columns))
		copy(row, cells)
		out = append(out, row)
	}

	if columns == nil {
		columns = []Column{}
	}
	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    out,
		Summary: &Summary{
			Label:  fmt.Sprintf("Total (%s rows)", FormatInt(len(rows))),
			Values: map[string]string{},
		},
	}
}

// GroupTable renders aggregated groups: one text column per key part
// followed by one numeric column per named value.
func GroupTable(title string, keys []string, values []string, groups []Group) *TableData {
	columns := make([]Column, 0, len(keys)+len(values))
	for _, k := range keys {
		columns = append(columns, TextColumn(k))
	}
	for _, v := range values {
		columns = append(columns, NumberColumn(v))
	}

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		row := make([]string, 0, len(columns))
		for i := range keys {
			row = append(row, g.KeyPart(i))
		}
		for _, v := range values {
			if g.Has(v) {
				row = append(row, FormatFloat(g.Value(v)))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label:  fmt.Sprintf("Total (%s groups)", FormatInt(len(groups))),
			Values: map[string]string{},
		},
	}
}
