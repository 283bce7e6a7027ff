package engine

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type yearly struct {
	ID      string
	Year    int
	Traffic int
}

var yearlyAdapter = NewDomainAdapter[yearly]().
	Dimension("id", func(y yearly) string { return y.ID }).
	Dimension("year", func(y yearly) string { return strconv.Itoa(y.Year) }).
	Measure("traffic", func(y yearly) float64 { return float64(y.Traffic) })

var growthSpec = TrendSpec{
	Partition: "id",
	Order:     ByDimension("year", false),
	Value:     "traffic",
	MinTotal:  100,
}

func series(id string, start int, values ...int) []yearly {
	out := make([]yearly, len(values))
	for i, v := range values {
		out[i] = yearly{ID: id, Year: start + i, Traffic: v}
	}
	return out
}

func TestDetectGrowthCases(t *testing.T) {
	tests := []struct {
		name      string
		values    []int
		qualifies bool
	}{
		{"strictly increasing", []int{10, 30, 100}, true},
		{"decrease in last year", []int{10, 30, 5}, false},
		{"single year", []int{50}, false},
		{"single large year", []int{500}, false},
		{"total exactly at floor", []int{40, 60}, true},
		{"flat counts", []int{5, 5, 90}, true},
		{"below floor", []int{10, 20, 30}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trends := DetectGrowth(yearlyAdapter.Bind(series("b", 2018, tt.values...)), growthSpec)
			require.Len(t, trends, 1)
			assert.Equal(t, tt.qualifies, trends[0].Qualifies)
			assert.True(t, trends[0].Points[0].Grew, "first year has no comparator")
		})
	}
}

func TestDetectGrowthMetrics(t *testing.T) {
	rows := append(series("B1", 2020, 5, 5, 90), series("B2", 2019, 80, 10, 40)...)
	// shuffle source order; the year order must drive the comparison
	rows[0], rows[2] = rows[2], rows[0]

	trends := DetectGrowth(yearlyAdapter.Bind(rows), growthSpec)
	require.Len(t, trends, 2)

	b1 := trends[0]
	assert.Equal(t, "B1", b1.Key)
	assert.True(t, b1.Qualifies)
	assert.Equal(t, 2, b1.ConsecutiveYears)
	assert.Equal(t, 100.0, b1.Total)
	assert.Equal(t, []string{"2020", "2021", "2022"}, []string{b1.Points[0].Period, b1.Points[1].Period, b1.Points[2].Period})

	b2 := trends[1]
	assert.False(t, b2.Qualifies)
	assert.False(t, b2.Points[1].Grew)
	assert.True(t, b2.Points[2].Grew)

	q := Qualifying(trends)
	require.Len(t, q, 1)
	assert.Equal(t, "B1", q[0].Key)
}

func TestDetectGrowthDefaultFloor(t *testing.T) {
	spec := growthSpec
	spec.MinTotal = 0
	trends := DetectGrowth(yearlyAdapter.Bind(series("b", 2020, 49, 50)), spec)
	require.Len(t, trends, 1)
	assert.False(t, trends[0].Qualifies, "99 is below the default floor")
}
