package engine

import "strings"

// ============================================================================
// ENGINE TYPES — Records, Groups and render-ready output
// ============================================================================
// The engine knows nothing about businesses or reviews. It reads rows
// through RecordView (string dimensions, optional numeric measures) and
// produces Groups, ranks, lags and trends. Builders turn view rows into
// TableData, ChartConfig or TextData.
//
// Dependency: engine has ZERO external dependencies.
// ============================================================================

// ============================================================================
// RECORD — Generic data row
// ============================================================================

// Record is a single data row with string dimensions and numeric measures.
// A measure missing from Measures is absent, not zero.
type Record struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group is one key tuple of an aggregation with its reduced values.
type Group struct {
	Key    []string           `json:"key"`
	Label  string             `json:"label"`
	Count  int                `json:"count"`
	Values map[string]float64 `json:"values"`
	View   RecordView         `json:"-"` // rows of this group (zero-copy)
}

// Value returns the named reduced value, or 0 when it is absent.
func (g Group) Value(name string) float64 {
	return g.Values[name]
}

// Has reports whether the named reduced value is present. An average over
// a group with no present values is absent.
func (g Group) Has(name string) bool {
	_, ok := g.Values[name]
	return ok
}

// KeyPart returns the i-th key component, or "" when out of range.
func (g Group) KeyPart(i int) string {
	if i < 0 || i >= len(g.Key) {
		return ""
	}
	return g.Key[i]
}

func joinKey(key []string) string {
	return strings.Join(key, " / ")
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "date"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals or aggregations for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TextData is a short human-readable rendering of a result.
type TextData struct {
	Title string   `json:"title"`
	Count int      `json:"count"`
	Lines []string `json:"lines"`
}
