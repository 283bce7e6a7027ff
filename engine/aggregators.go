package engine

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView.
// Grouping produces SubViews (index lists into parent view). Groups come
// out in first-appearance order; SortGroups imposes a value order with a
// lexical key tie-break so results never depend on map iteration.
// ============================================================================

// Reducer computes one named value over the rows of a group. A reducer
// may report absence (ok=false), in which case the name is left out of
// Group.Values.
type Reducer struct {
	Name   string
	reduce func(view RecordView) (float64, bool)
}

// Count is the number of rows in the group.
func Count(name string) Reducer {
	return Reducer{Name: name, reduce: func(v RecordView) (float64, bool) {
		return float64(v.Len()), true
	}}
}

// CountOf counts rows where measure is present.
func CountOf(name, measure string) Reducer {
	return Reducer{Name: name, reduce: func(v RecordView) (float64, bool) {
		n := 0
		for i := 0; i < v.Len(); i++ {
			if _, ok := v.Measure(i, measure); ok {
				n++
			}
		}
		return float64(n), true
	}}
}

// CountDistinct counts distinct non-empty values of dimension.
func CountDistinct(name, dimension string) Reducer {
	return Reducer{Name: name, reduce: func(v RecordView) (float64, bool) {
		return float64(len(UniqueValues(v, dimension))), true
	}}
}

// Sum adds the present values of measure. An all-absent group sums to 0.
func Sum(name, measure string) Reducer {
	return Reducer{Name: name, reduce: func(v RecordView) (float64, bool) {
		return SumMeasure(v, measure), true
	}}
}

// Avg averages the present values of measure; absent when none are.
func Avg(name, measure string) Reducer {
	return Reducer{Name: name, reduce: func(v RecordView) (float64, bool) {
		return AvgMeasure(v, measure)
	}}
}

// AvgDistinct averages measure once per distinct value of dimension,
// taking the first row of each. Use it when a join repeats a per-entity
// value on several rows.
func AvgDistinct(name, measure, dimension string) Reducer {
	return Reducer{Name: name, reduce: func(v RecordView) (float64, bool) {
		seen := make(map[string]bool)
		var total float64
		n := 0
		for i := 0; i < v.Len(); i++ {
			d := v.Dimension(i, dimension)
			if seen[d] {
				continue
			}
			seen[d] = true
			if val, ok := v.Measure(i, measure); ok {
				total += val
				n++
			}
		}
		if n == 0 {
			return 0, false
		}
		return total / float64(n), true
	}}
}

// Score is COUNT × SUM(measure).
func Score(name, measure string) Reducer {
	return Reducer{Name: name, reduce: func(v RecordView) (float64, bool) {
		return float64(v.Len()) * SumMeasure(v, measure), true
	}}
}

// GroupAndAggregate runs the pipeline group → aggregate → sort → limit.
// sortBy names a reducer; empty keeps key order.
func GroupAndAggregate(
	view RecordView,
	groupBy []string,
	reducers []Reducer,
	sortBy string,
	desc bool,
	limit int,
) []Group {
	groups := Aggregate(view, groupBy, reducers...)

	if sortBy == "" {
		SortByKey(groups)
	} else {
		SortGroups(groups, sortBy, desc)
	}

	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// Aggregate groups view by the key dimensions and applies reducers to
// each group. With no keys the whole view is one group.
func Aggregate(view RecordView, keys []string, reducers ...Reducer) []Group {
	if view.Len() == 0 {
		return nil
	}

	var groups []Group
	if len(keys) == 0 {
		groups = []Group{{Label: "Total", View: view}}
	} else {
		groups = groupBy(view, keys)
	}

	for i := range groups {
		aggregateGroup(&groups[i], reducers)
	}
	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBy(view RecordView, dimensions []string) []Group {
	grouped := make(map[string][]int)
	tuples := make(map[string][]string)
	order := make([]string, 0)

	var sb strings.Builder
	for i := 0; i < view.Len(); i++ {
		sb.Reset()
		for j, d := range dimensions {
			if j > 0 {
				sb.WriteByte(0)
			}
			sb.WriteString(view.Dimension(i, d))
		}
		k := sb.String()
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
			tuple := make([]string, len(dimensions))
			for j, d := range dimensions {
				tuple[j] = view.Dimension(i, d)
			}
			tuples[k] = tuple
		}
		grouped[k] = append(grouped[k], i)
	}

	groups := make([]Group, 0, len(order))
	for _, k := range order {
		groups = append(groups, Group{
			Key:   tuples[k],
			Label: joinKey(tuples[k]),
			View:  NewSubView(view, grouped[k]),
		})
	}
	return groups
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group, reducers []Reducer) {
	group.Count = group.View.Len()
	group.Values = make(map[string]float64, len(reducers))
	for _, r := range reducers {
		if v, ok := r.reduce(group.View); ok {
			group.Values[r.Name] = v
		}
	}
}

// SumMeasure sums the present values of a measure across a view.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Measure(i, measure); ok {
			total += v
		}
	}
	return total
}

// AvgMeasure averages the present values of a measure.
func AvgMeasure(view RecordView, measure string) (float64, bool) {
	var total float64
	n := 0
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Measure(i, measure); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups orders groups by the named value, ties by key tuple.
func SortGroups(groups []Group, value string, desc bool) {
	slices.SortStableFunc(groups, func(a, b Group) int {
		c := cmp.Compare(a.Value(value), b.Value(value))
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return compareKeys(a.Key, b.Key)
	})
}

// SortByKey orders groups by key tuple.
func SortByKey(groups []Group) {
	slices.SortStableFunc(groups, func(a, b Group) int { return compareKeys(a.Key, b.Key) })
}

func compareKeys(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatFloat renders v rounded to 2 decimals without trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(RoundTo2(v), 'f', -1, 64)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// UniqueValues returns distinct non-empty values of a dimension in
// first-seen order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// LabelForDimension turns a snake_case key into a capitalized label.
func LabelForDimension(dimension string) string {
	if len(dimension) == 0 {
		return ""
	}
	s := strings.ReplaceAll(dimension, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
