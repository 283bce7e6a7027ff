package insights

import (
	"context"
	"strconv"
	"strings"

	"github.com/spektr-org/bizlens/engine"
	"github.com/spektr-org/bizlens/schema"
)

// ============================================================================
// EXECUTE — Named-view dispatcher over string parameters
// ============================================================================
// The CLI and the HTTP adapter both speak in view names and string
// parameters. Execute converts them to the typed params of the view,
// runs it and renders the rows as table, summary and, for chartable
// views, a chart.
// ============================================================================

// Request names a view and its raw parameters.
type Request struct {
	View   string
	Params map[string]string
}

// Result is a computed view ready for rendering.
type Result struct {
	View    string              `json:"view"`
	Title   string              `json:"title"`
	Summary string              `json:"summary"`
	Rows    any                 `json:"rows"`
	Table   *engine.TableData   `json:"-"`
	Chart   *engine.ChartConfig `json:"chart,omitempty"`
}

type args map[string]string

func (a args) text(name string) string {
	return strings.TrimSpace(a[name])
}

func (a args) integer(name string) (int, error) {
	raw := a.text(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid(name, "must be an integer, got %q", raw)
	}
	return n, nil
}

// Execute runs the named view. Unknown views, missing required parameters
// and non-numeric integers are reported as *ValidationError.
func (s *Service) Execute(ctx context.Context, req Request) (*Result, error) {
	v, ok := schema.Lookup(req.View)
	if !ok {
		return nil, invalid("view", "unknown view %q", req.View)
	}
	a := args(req.Params)
	for _, p := range v.Params {
		if p.Required && a.text(p.Name) == "" {
			return nil, invalid(p.Name, "is required")
		}
	}

	city := CityParams{City: a.text("city")}
	switch v.Name {
	case schema.ViewCategoryPopularity:
		rows, err := s.CategoryPopularity(ctx, city)
		res, err := tabulate(v, rows, err)
		if res != nil {
			res.Chart = barChart(v, rows, "score", func(r CategoryPopularity) (string, float64) {
				return r.Category, float64(r.Score)
			})
		}
		return res, err

	case schema.ViewRestaurantInsights:
		rows, err := s.RestaurantInsights(ctx, city)
		return tabulate(v, rows, err)

	case schema.ViewOpenDayFeedback:
		minStar, err := a.integer("min_star")
		if err != nil {
			return nil, err
		}
		rows, err := s.OpenDayFeedback(ctx, StarParams{MinStar: minStar})
		return tabulate(v, rows, err)

	case schema.ViewActiveUsers:
		rows, err := s.ActiveUsers(ctx, city)
		return tabulate(v, rows, err)

	case schema.ViewTraffic:
		rows, err := s.Traffic(ctx, city)
		res, err := tabulate(v, rows, err)
		if res != nil {
			res.Chart = TrafficChart(rows)
		}
		return res, err

	case schema.ViewConsistentGrowth:
		rows, err := s.ConsistentGrowth(ctx, city)
		return tabulate(v, rows, err)

	case schema.ViewTopCities:
		rows, err := s.TopCities(ctx)
		res, err := tabulate(v, rows, err)
		if res != nil {
			res.Chart = barChart(v, rows, "total_reviews", func(r CityRanking) (string, float64) {
				return r.City, float64(r.TotalReviews)
			})
		}
		return res, err

	case schema.ViewCategories:
		rows, err := s.Categories(ctx)
		return tabulate(v, rows, err)

	case schema.ViewCategoryBusinesses:
		rows, err := s.CategoryBusinesses(ctx, CategoryParams{Category: a.text("category")})
		return tabulate(v, rows, err)

	case schema.ViewBusinessProfile:
		rows, err := s.BusinessProfile(ctx, BusinessParams{BusinessID: a.text("business_id")})
		return tabulate(v, rows, err)

	case schema.ViewRecommend:
		p := RecommendParams{
			City:         city.City,
			Category:     a.text("category"),
			Availability: strings.ToLower(a.text("availability")),
		}
		var err error
		if p.MinReviews, err = a.integer("min_reviews"); err != nil {
			return nil, err
		}
		if p.MaxReviews, err = a.integer("max_reviews"); err != nil {
			return nil, err
		}
		rows, err := s.Recommend(ctx, p)
		return tabulate(v, rows, err)
	}
	return nil, invalid("view", "view %q has no executor", v.Name)
}

func tabulate[T engine.Tabular](v schema.View, rows []T, err error) (*Result, error) {
	if err != nil {
		return nil, err
	}
	table := engine.BuildTable(v.Title, v.Columns, rows)
	return &Result{
		View:    v.Name,
		Title:   v.Title,
		Summary: engine.BuildSummary(table),
		Rows:    rows,
		Table:   table,
	}, nil
}

// barChart plots one value per row in row order.
func barChart[T any](v schema.View, rows []T, value string, point func(T) (string, float64)) *engine.ChartConfig {
	groups := make([]engine.Group, len(rows))
	for i, r := range rows {
		label, val := point(r)
		groups[i] = engine.Group{Key: []string{label}, Label: label, Values: map[string]float64{value: val}}
	}
	return engine.BuildChart(engine.ChartSpec{
		Type:  "bar",
		Title: v.Title,
		XAxis: engine.LabelForDimension(v.Columns[0].Key),
		YAxis: engine.LabelForDimension(value),
		Value: value,
	}, groups)
}
