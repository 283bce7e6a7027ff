package engine

// ============================================================================
// CHART BUILDER — Produces ChartConfig from aggregated Groups
// ============================================================================
// Single-key groups become one series. Two-part keys become one series per
// second key part, each holding a point per first key part; labels and
// series both keep first-appearance order and missing points are 0.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// ChartSpec describes the chart to build.
type ChartSpec struct {
	Type  string // "bar", "line", "area", "stacked_bar"
	Title string
	XAxis string
	YAxis string
	Value string // reducer name plotted on the y axis
}

// BuildChart produces a ChartConfig from aggregated groups.
func BuildChart(spec ChartSpec, groups []Group) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}

	chartType := spec.Type
	if chartType == "" {
		chartType = "bar"
	}

	config := &ChartConfig{
		ChartType:  chartType,
		Title:      spec.Title,
		XAxis:      spec.XAxis,
		YAxis:      spec.YAxis,
		ShowLegend: true,
		ShowGrid:   chartType != "pie",
	}

	if len(groups[0].Key) >= 2 {
		config.Series = buildMultiSeries(groups, spec.Value)
	} else {
		config.Series = buildSingleSeries(groups, spec.Value, spec.Title)
	}

	config.Colors = assignColors(len(config.Series))
	return config
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(groups []Group, value, seriesName string) []ChartSeries {
	if seriesName == "" {
		seriesName = "Value"
	}

	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{
			Label: g.Label,
			Value: RoundTo2(g.Value(value)),
		})
	}

	return []ChartSeries{{
		Name: seriesName,
		Data: points,
	}}
}

func buildMultiSeries(groups []Group, value string) []ChartSeries {
	var labels, names []string
	seenLabel := make(map[string]bool)
	seenName := make(map[string]bool)
	cells := make(map[[2]string]float64)

	for _, g := range groups {
		label, name := g.KeyPart(0), g.KeyPart(1)
		if !seenLabel[label] {
			seenLabel[label] = true
			labels = append(labels, label)
		}
		if !seenName[name] {
			seenName[name] = true
			names = append(names, name)
		}
		cells[[2]string{label, name}] += g.Value(value)
	}

	series := make([]ChartSeries, 0, len(names))
	for i, name := range names {
		points := make([]ChartPoint, 0, len(labels))
		for _, label := range labels {
			points = append(points, ChartPoint{
				Label: label,
				Value: RoundTo2(cells[[2]string{label, name}]),
			})
		}
		series = append(series, ChartSeries{
			Name:  name,
			Data:  points,
			Color: defaultColors[i%len(defaultColors)],
		})
	}
	return series
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
