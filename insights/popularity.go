package insights

import (
	"context"
	"strconv"

	"github.com/spektr-org/bizlens/engine"
	"github.com/spektr-org/bizlens/schema"
	"github.com/spektr-org/bizlens/store"
)

// CategoryPopularity is one row of the top-categories view.
type CategoryPopularity struct {
	Category     string `json:"category"`
	Occurrence   int    `json:"occurrence"`
	TotalReviews int    `json:"total_reviews"`
	Score        int    `json:"score"`
}

func (r CategoryPopularity) Cells() []string {
	return []string{r.Category, strconv.Itoa(r.Occurrence), strconv.Itoa(r.TotalReviews), strconv.Itoa(r.Score)}
}

type categoryRow struct {
	CategoryAssociation
	ReviewCount int
}

var categoryAdapter = engine.NewDomainAdapter[categoryRow]().
	Dimension("business_id", func(r categoryRow) string { return r.BusinessID }).
	Dimension("category", func(r categoryRow) string { return r.Category }).
	Measure("review_count", func(r categoryRow) float64 { return float64(r.ReviewCount) })

func explodeAll(bs []store.Business) []categoryRow {
	var rows []categoryRow
	for _, b := range bs {
		for _, a := range ExplodeCategories(b) {
			rows = append(rows, categoryRow{CategoryAssociation: a, ReviewCount: b.ReviewCount})
		}
	}
	return rows
}

// CategoryPopularity ranks the categories of a city by
// score = occurrence × total_reviews, ties by category name.
func (s *Service) CategoryPopularity(ctx context.Context, p CityParams) ([]CategoryPopularity, error) {
	return run(ctx, s, schema.ViewCategoryPopularity, p, s.categoryPopularity)
}

func (s *Service) categoryPopularity(ctx context.Context, p CityParams) ([]CategoryPopularity, error) {
	bs, err := s.businesses(ctx, p.City)
	if err != nil {
		return nil, err
	}

	groups := engine.GroupAndAggregate(categoryAdapter.Bind(explodeAll(bs)), []string{"category"},
		[]engine.Reducer{
			engine.Count("occurrence"),
			engine.Sum("total_reviews", "review_count"),
			engine.Score("score", "review_count"),
		}, "score", true, s.limits.TopCategories)

	out := make([]CategoryPopularity, 0, len(groups))
	for _, g := range groups {
		out = append(out, CategoryPopularity{
			Category:     g.KeyPart(0),
			Occurrence:   int(g.Value("occurrence")),
			TotalReviews: int(g.Value("total_reviews")),
			Score:        int(g.Value("score")),
		})
	}
	return out, nil
}
