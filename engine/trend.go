package engine

// ============================================================================
// TREND — Non-decreasing growth detection over LagWithin
// ============================================================================
// A partition's points are ordered by TrendSpec.Order. Each point after
// the first "grew" when its value is ≥ the previous one; the first point
// has no comparator and always grew. A trend qualifies when it has more
// than one point, every point grew, and the values total at least
// MinTotal.
// ============================================================================

// DefaultMinTotal is the traffic floor used when TrendSpec.MinTotal is 0.
const DefaultMinTotal = 100

// TrendSpec configures DetectGrowth.
type TrendSpec struct {
	Partition string // dimension identifying the series, e.g. business_id
	Order     Order  // point order within a series, e.g. ByDimension("year", false)
	Value     string // measure compared between consecutive points
	MinTotal  float64
}

// TrendPoint is one ordered point of a series.
type TrendPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
	Grew   bool    `json:"grew"`
}

// Trend is the growth classification of one partition.
type Trend struct {
	Key              string       `json:"key"`
	Points           []TrendPoint `json:"points"`
	Total            float64      `json:"total"`
	ConsecutiveYears int          `json:"consecutiveYears"`
	Qualifies        bool         `json:"qualifies"`
}

// DetectGrowth classifies every partition of view, in partition
// first-appearance order.
func DetectGrowth(view RecordView, spec TrendSpec) []Trend {
	minTotal := spec.MinTotal
	if minTotal == 0 {
		minTotal = DefaultMinTotal
	}

	partition := []string{spec.Partition}
	lags := LagWithin(view, partition, spec.Order, spec.Value)

	var trends []Trend
	for _, rows := range partitions(view, partition, spec.Order) {
		t := Trend{Key: view.Dimension(rows[0], spec.Partition)}
		allGrew := true
		for _, i := range rows {
			v := MeasureOrZero(view, i, spec.Value)
			grew := !lags[i].OK || v >= lags[i].Value
			allGrew = allGrew && grew
			t.Points = append(t.Points, TrendPoint{
				Period: orderLabel(view, i, spec.Order),
				Value:  v,
				Grew:   grew,
			})
			t.Total += v
		}
		t.ConsecutiveYears = len(t.Points) - 1
		t.Qualifies = len(t.Points) > 1 && allGrew && t.Total >= minTotal
		trends = append(trends, t)
	}
	return trends
}

// Qualifying filters trends down to those that qualify.
func Qualifying(trends []Trend) []Trend {
	var out []Trend
	for _, t := range trends {
		if t.Qualifies {
			out = append(out, t)
		}
	}
	return out
}

func orderLabel(view RecordView, i int, o Order) string {
	if o.Measure {
		return FormatFloat(MeasureOrZero(view, i, o.Key))
	}
	return view.Dimension(i, o.Key)
}
