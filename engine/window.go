package engine

import (
	"cmp"
	"slices"
	"strings"
)

// ============================================================================
// WINDOW — Partition / order / rank / lag primitives
// ============================================================================
// Partitions are identified by one or more dimensions and enumerated in
// order of first appearance. Within a partition, rows are ordered by an
// Order; equal rows keep their view order (stable), so every rank and
// lag is reproducible.
// ============================================================================

// Order names the sort key of a window.
type Order struct {
	Key     string
	Measure bool // compare numerically via Measure instead of Dimension
	Desc    bool
}

// ByDimension orders by a dimension, compared as strings.
func ByDimension(key string, desc bool) Order {
	return Order{Key: key, Desc: desc}
}

// ByMeasure orders by a measure. Absent values sort after present ones
// in both directions.
func ByMeasure(key string, desc bool) Order {
	return Order{Key: key, Measure: true, Desc: desc}
}

func (o Order) compare(view RecordView, a, b int) int {
	if !o.Measure {
		c := strings.Compare(view.Dimension(a, o.Key), view.Dimension(b, o.Key))
		if o.Desc {
			return -c
		}
		return c
	}

	va, okA := view.Measure(a, o.Key)
	vb, okB := view.Measure(b, o.Key)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	c := cmp.Compare(va, vb)
	if o.Desc {
		return -c
	}
	return c
}

// partitions returns the row indices of each partition, ordered by o.
func partitions(view RecordView, partition []string, o Order) [][]int {
	index := make(map[string]int)
	var parts [][]int

	var sb strings.Builder
	for i := 0; i < view.Len(); i++ {
		sb.Reset()
		for j, d := range partition {
			if j > 0 {
				sb.WriteByte(0)
			}
			sb.WriteString(view.Dimension(i, d))
		}
		k := sb.String()
		p, ok := index[k]
		if !ok {
			p = len(parts)
			index[k] = p
			parts = append(parts, nil)
		}
		parts[p] = append(parts[p], i)
	}

	for _, rows := range parts {
		slices.SortStableFunc(rows, func(a, b int) int { return o.compare(view, a, b) })
	}
	return parts
}

// RankWithin returns the 1-based row number of every row within its
// partition. An empty partition list ranks the whole view.
func RankWithin(view RecordView, partition []string, order Order) []int {
	ranks := make([]int, view.Len())
	for _, rows := range partitions(view, partition, order) {
		for r, i := range rows {
			ranks[i] = r + 1
		}
	}
	return ranks
}

// TopWithin keeps rows ranked ≤ n in each partition, ordered by partition
// first appearance then rank. n ≤ 0 keeps every row.
func TopWithin(view RecordView, partition []string, order Order, n int) RecordView {
	indices := make([]int, 0, view.Len())
	for _, rows := range partitions(view, partition, order) {
		if n > 0 && len(rows) > n {
			rows = rows[:n]
		}
		indices = append(indices, rows...)
	}
	return NewSubView(view, indices)
}

// Lag is the previous row's value within a partition. OK is false for the
// first row of a partition or when the previous value is absent.
type Lag struct {
	Value float64
	OK    bool
}

// LagWithin returns, for every row, the measure of the row before it in
// its partition under order.
func LagWithin(view RecordView, partition []string, order Order, measure string) []Lag {
	lags := make([]Lag, view.Len())
	for _, rows := range partitions(view, partition, order) {
		for r := 1; r < len(rows); r++ {
			v, ok := view.Measure(rows[r-1], measure)
			lags[rows[r]] = Lag{Value: v, OK: ok}
		}
	}
	return lags
}
