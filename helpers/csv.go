package helpers

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"github.com/spektr-org/bizlens/engine"
)

// ============================================================================
// CSV HELPER — Writes rendered views as spreadsheet-ready CSV
// ============================================================================
// Tables keep their column keys as the header row so the file can be
// loaded back by name. Charts become one row per label with one column per
// series.
// ============================================================================

// ErrNothingToWrite is returned for a nil table or chart.
var ErrNothingToWrite = errors.New("helpers: nothing to write")

// WriteTableCSV writes the column keys followed by every row.
func WriteTableCSV(w io.Writer, t *engine.TableData) error {
	if t == nil {
		return ErrNothingToWrite
	}
	cw := csv.NewWriter(w)

	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Key
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteChartCSV writes a chart as label + one column per series. Points
// are matched to labels by position.
func WriteChartCSV(w io.Writer, c *engine.ChartConfig) error {
	if c == nil || len(c.Series) == 0 {
		return ErrNothingToWrite
	}
	cw := csv.NewWriter(w)

	xLabel := c.XAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	header := []string{xLabel}
	for _, s := range c.Series {
		header = append(header, s.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, p := range c.Series[0].Data {
		row := []string{p.Label}
		for _, s := range c.Series {
			if i < len(s.Data) {
				row = append(row, FormatNumber(s.Data[i].Value))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatNumber renders whole numbers without decimals and anything else
// with two.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
