package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catRow struct {
	BusinessID  string
	Category    string
	ReviewCount int
}

var catAdapter = NewDomainAdapter[catRow]().
	Dimension("business_id", func(r catRow) string { return r.BusinessID }).
	Dimension("category", func(r catRow) string { return r.Category }).
	Measure("review_count", func(r catRow) float64 { return float64(r.ReviewCount) })

func TestAggregateCategoryScore(t *testing.T) {
	rows := []catRow{
		{"B1", "A", 10},
		{"B1", "B", 10},
		{"B2", "A", 5},
	}

	groups := GroupAndAggregate(catAdapter.Bind(rows), []string{"category"},
		[]Reducer{
			Count("occurrence"),
			Sum("total_reviews", "review_count"),
			Score("score", "review_count"),
		}, "score", true, 15)

	require.Len(t, groups, 2)
	assert.Equal(t, []string{"A"}, groups[0].Key)
	assert.Equal(t, 2.0, groups[0].Value("occurrence"))
	assert.Equal(t, 15.0, groups[0].Value("total_reviews"))
	assert.Equal(t, 30.0, groups[0].Value("score"))
	assert.Equal(t, []string{"B"}, groups[1].Key)
	assert.Equal(t, 10.0, groups[1].Value("score"))
}

func TestGroupAndAggregateLimitAndTies(t *testing.T) {
	rows := []catRow{
		{"B1", "zeta", 1},
		{"B2", "alpha", 1},
		{"B3", "mid", 1},
	}
	groups := GroupAndAggregate(catAdapter.Bind(rows), []string{"category"},
		[]Reducer{Count("n")}, "n", true, 2)

	require.Len(t, groups, 2)
	assert.Equal(t, "alpha", groups[0].Label, "ties broken by key")
	assert.Equal(t, "mid", groups[1].Label)
}

func TestAggregateMultiKeyAndDistinct(t *testing.T) {
	rows := []catRow{
		{"B1", "A", 10},
		{"B1", "A", 10},
		{"B2", "A", 4},
		{"B3", "B", 7},
	}
	groups := Aggregate(catAdapter.Bind(rows), []string{"category"},
		CountDistinct("businesses", "business_id"),
		AvgDistinct("avg_reviews", "review_count", "business_id"),
		Avg("avg_rows", "review_count"),
	)

	require.Len(t, groups, 2)
	a := groups[0]
	assert.Equal(t, 3, a.Count)
	assert.Equal(t, 2.0, a.Value("businesses"))
	assert.InDelta(t, 7.0, a.Value("avg_reviews"), 1e-9)
	assert.InDelta(t, 8.0, a.Value("avg_rows"), 1e-9)

	pairs := Aggregate(catAdapter.Bind(rows), []string{"category", "business_id"}, Count("n"))
	require.Len(t, pairs, 3)
	assert.Equal(t, []string{"A", "B1"}, pairs[0].Key)
	assert.Equal(t, "A / B1", pairs[0].Label)
	assert.Equal(t, 2.0, pairs[0].Value("n"))
}

func TestAbsentMeasures(t *testing.T) {
	view := NewSliceView([]Record{
		{Dimensions: map[string]string{"k": "x"}, Measures: map[string]float64{"v": 4}},
		{Dimensions: map[string]string{"k": "x"}},
		{Dimensions: map[string]string{"k": "y"}},
	})

	groups := Aggregate(view, []string{"k"}, Sum("sum", "v"), Avg("avg", "v"), CountOf("present", "v"))
	require.Len(t, groups, 2)

	assert.Equal(t, 4.0, groups[0].Value("sum"))
	assert.Equal(t, 4.0, groups[0].Value("avg"), "absent values are ignored")
	assert.Equal(t, 1.0, groups[0].Value("present"))

	assert.True(t, groups[1].Has("sum"))
	assert.Equal(t, 0.0, groups[1].Value("sum"))
	assert.False(t, groups[1].Has("avg"), "average of nothing is absent")
}

func TestAggregateWholeView(t *testing.T) {
	rows := []catRow{{"B1", "A", 3}, {"B2", "B", 4}}
	groups := Aggregate(catAdapter.Bind(rows), nil, Sum("total", "review_count"))
	require.Len(t, groups, 1)
	assert.Equal(t, "Total", groups[0].Label)
	assert.Equal(t, 7.0, groups[0].Value("total"))

	assert.Nil(t, Aggregate(catAdapter.Bind(nil), []string{"category"}, Count("n")))
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	a := []catRow{{"B1", "A", 10}, {"B1", "B", 10}, {"B2", "A", 5}}
	b := []catRow{{"B2", "A", 5}, {"B1", "B", 10}, {"B1", "A", 10}}

	reducers := []Reducer{Count("n"), Sum("s", "review_count")}
	ga := GroupAndAggregate(catAdapter.Bind(a), []string{"category"}, reducers, "s", true, 0)
	gb := GroupAndAggregate(catAdapter.Bind(b), []string{"category"}, reducers, "s", true, 0)

	require.Len(t, gb, len(ga))
	for i := range ga {
		assert.Equal(t, ga[i].Key, gb[i].Key)
		assert.Equal(t, ga[i].Values, gb[i].Values)
	}
}

func TestWhereAndRows(t *testing.T) {
	rows := []catRow{{"B1", "A", 10}, {"B2", "B", 3}, {"B3", "A", 1}}
	view := catAdapter.Bind(rows)

	onlyA := ApplyFilters(view, Filters{"category": {"A"}})
	big := Where(onlyA, func(v RecordView, i int) bool { return MeasureOrZero(v, i, "review_count") > 5 })

	got := Rows(rows, big)
	require.Len(t, got, 1)
	assert.Equal(t, "B1", got[0].BusinessID)

	assert.Equal(t, view, ApplyFilters(view, Filters{}))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatInt(1234567))
	assert.Equal(t, "-1,000", FormatInt(-1000))
	assert.Equal(t, "3.33", FormatFloat(10.0/3))
	assert.Equal(t, "15", FormatFloat(15))
	assert.Equal(t, "Total reviews", LabelForDimension("total_reviews"))
}
