package engine

// ============================================================================
// FILTERS — Dimension-based filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL constraints per record in one loop.
// Returns a SubView (index list into parent).
// ============================================================================

// Filters maps a dimension to its allowed values. OR within a dimension,
// AND across dimensions. Matching is exact.
type Filters map[string][]string

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	for _, vals := range f {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// ApplyFilters returns a view of records matching all dimension filters.
// Empty filter = no restriction (returns original view).
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	sets := make(map[string]map[string]bool)
	for dim, allowed := range filters {
		if len(allowed) > 0 {
			sets[dim] = toSet(allowed)
		}
	}

	return Where(view, func(v RecordView, i int) bool {
		for dim, set := range sets {
			if !set[v.Dimension(i, dim)] {
				return false
			}
		}
		return true
	})
}

// Where returns the rows of view for which keep is true, in view order.
func Where(view RecordView, keep func(view RecordView, i int) bool) RecordView {
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if keep(view, i) {
			indices = append(indices, i)
		}
	}
	return NewSubView(view, indices)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
