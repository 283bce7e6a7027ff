package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct{ a, b string }

func (p pair) Cells() []string { return []string{p.a, p.b} }

func TestBuildTable(t *testing.T) {
	table := BuildTable("Pairs", []Column{TextColumn("left"), NumberColumn("right")}, []pair{{"x", "1"}, {"y", "2"}})

	assert.Equal(t, "Pairs", table.Title)
	assert.Equal(t, "Left", table.Columns[0].Label)
	assert.Equal(t, "right", table.Columns[1].Align)
	assert.Equal(t, [][]string{{"x", "1"}, {"y", "2"}}, table.Rows)
	assert.Equal(t, "Total (2 rows)", table.Summary.Label)

	empty := BuildTable[pair]("Empty", nil, nil)
	assert.NotNil(t, empty.Columns)
	assert.Empty(t, empty.Rows)
}

func TestGroupTable(t *testing.T) {
	groups := Aggregate(catAdapter.Bind([]catRow{{"B1", "A", 3}}), []string{"category"},
		Sum("total", "review_count"), Avg("avg", "missing"))

	table := GroupTable("By category", []string{"category"}, []string{"total", "avg"}, groups)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"A", "3", ""}, table.Rows[0])
}

func TestBuildChartMultiSeries(t *testing.T) {
	view := NewSliceView([]Record{
		{Dimensions: map[string]string{"slot": "Sun 00", "group": "1 star"}, Measures: map[string]float64{"n": 1}},
		{Dimensions: map[string]string{"slot": "Sun 00", "group": "4-5 stars"}, Measures: map[string]float64{"n": 1}},
		{Dimensions: map[string]string{"slot": "Sun 01", "group": "4-5 stars"}, Measures: map[string]float64{"n": 1}},
		{Dimensions: map[string]string{"slot": "Sun 01", "group": "4-5 stars"}, Measures: map[string]float64{"n": 1}},
	})
	groups := Aggregate(view, []string{"slot", "group"}, Sum("traffic", "n"))

	chart := BuildChart(ChartSpec{Type: "line", Title: "Traffic", Value: "traffic"}, groups)
	require.NotNil(t, chart)
	require.Len(t, chart.Series, 2)
	assert.Equal(t, "1 star", chart.Series[0].Name)
	assert.Equal(t, []ChartPoint{{"Sun 00", 1}, {"Sun 01", 0}}, chart.Series[0].Data)
	assert.Equal(t, []ChartPoint{{"Sun 00", 1}, {"Sun 01", 2}}, chart.Series[1].Data)
	assert.Len(t, chart.Colors, 2)

	assert.Nil(t, BuildChart(ChartSpec{}, nil))
}

func TestBuildChartSingleSeries(t *testing.T) {
	groups := Aggregate(catAdapter.Bind([]catRow{{"B1", "A", 3}, {"B2", "B", 4}}), []string{"category"},
		Sum("total", "review_count"))
	chart := BuildChart(ChartSpec{Title: "Reviews", Value: "total"}, groups)

	assert.Equal(t, "bar", chart.ChartType)
	require.Len(t, chart.Series, 1)
	assert.Equal(t, "Reviews", chart.Series[0].Name)
	assert.Equal(t, 4.0, chart.Series[0].Data[1].Value)
}

func TestBuildText(t *testing.T) {
	rows := []pair{{"a", "1"}, {"b", "2"}, {"c", "3"}}
	table := BuildTable("Letters", []Column{TextColumn("letter"), NumberColumn("n")}, rows)

	text := BuildText(table, 2)
	assert.Equal(t, 3, text.Count)
	assert.Equal(t, []string{"1. Letter: a, N: 1", "2. Letter: b, N: 2", "… and 1 more"}, text.Lines)
	assert.Contains(t, text.String(), "Letters\n")

	assert.Equal(t, "Letters: 3 rows", BuildSummary(table))
	assert.Equal(t, []string{"No data"}, BuildText(BuildTable[pair]("None", nil, nil), 0).Lines)
}
