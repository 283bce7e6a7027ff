package insights

import (
	"context"
	"strconv"

	"github.com/spektr-org/bizlens/engine"
	"github.com/spektr-org/bizlens/schema"
	"github.com/spektr-org/bizlens/store"
)

// RestaurantInsight is one star group of the restaurant-insights view.
type RestaurantInsight struct {
	City            string    `json:"city"`
	Category        string    `json:"category"`
	StarGroup       StarGroup `json:"star_group"`
	AvgReviewCount  float64   `json:"avg_review_count"`
	NumOfBusinesses int       `json:"num_of_businesses"`
	TotalUseful     int       `json:"total_useful"`
	TotalFunny      int       `json:"total_funny"`
	TotalCool       int       `json:"total_cool"`
}

func (r RestaurantInsight) Cells() []string {
	return []string{
		r.City, r.Category, string(r.StarGroup),
		engine.FormatFloat(r.AvgReviewCount), strconv.Itoa(r.NumOfBusinesses),
		strconv.Itoa(r.TotalUseful), strconv.Itoa(r.TotalFunny), strconv.Itoa(r.TotalCool),
	}
}

// restaurantRow is a business left-joined with one of its reviews. Review
// is nil for a business without reviews.
type restaurantRow struct {
	Business store.Business
	Category string
	Group    StarGroup
	Review   *store.Review
}

func reviewField(fn func(store.Review) int) func(restaurantRow) (float64, bool) {
	return func(r restaurantRow) (float64, bool) {
		if r.Review == nil {
			return 0, false
		}
		return float64(fn(*r.Review)), true
	}
}

var restaurantAdapter = engine.NewDomainAdapter[restaurantRow]().
	Dimension("city", func(r restaurantRow) string { return r.Business.City }).
	Dimension("category", func(r restaurantRow) string { return r.Category }).
	Dimension("star_group", func(r restaurantRow) string { return string(r.Group) }).
	Dimension("business_id", func(r restaurantRow) string { return r.Business.ID }).
	Measure("review_count", func(r restaurantRow) float64 { return float64(r.Business.ReviewCount) }).
	OptionalMeasure("useful", reviewField(func(rv store.Review) int { return rv.Useful })).
	OptionalMeasure("funny", reviewField(func(rv store.Review) int { return rv.Funny })).
	OptionalMeasure("cool", reviewField(func(rv store.Review) int { return rv.Cool }))

// RestaurantInsights summarizes the restaurants of a city per star group
// of the business rating.
func (s *Service) RestaurantInsights(ctx context.Context, p CityParams) ([]RestaurantInsight, error) {
	return run(ctx, s, schema.ViewRestaurantInsights, p, s.restaurantInsights)
}

func (s *Service) restaurantInsights(ctx context.Context, p CityParams) ([]RestaurantInsight, error) {
	bs, err := s.businesses(ctx, p.City)
	if err != nil {
		return nil, err
	}

	category := s.limits.RestaurantCategory
	var restaurants []store.Business
	groups := make(map[string]StarGroup)
	for _, b := range bs {
		g, ok := ClassifyStars(b.Stars)
		if !ok || !HasCategory(b, category) {
			continue
		}
		restaurants = append(restaurants, b)
		groups[b.ID] = g
	}
	if len(restaurants) == 0 {
		return nil, nil
	}

	reviews, err := s.reviews(ctx, store.ReviewFilter{BusinessIDs: businessIDs(restaurants)})
	if err != nil {
		return nil, err
	}
	byBusiness := make(map[string][]int)
	for i, r := range reviews {
		byBusiness[r.BusinessID] = append(byBusiness[r.BusinessID], i)
	}

	var rows []restaurantRow
	for _, b := range restaurants {
		base := restaurantRow{Business: b, Category: category, Group: groups[b.ID]}
		idx := byBusiness[b.ID]
		if len(idx) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, i := range idx {
			row := base
			row.Review = &reviews[i]
			rows = append(rows, row)
		}
	}

	// avg_review_count runs over the joined rows: a business weighs once
	// per matched review.
	agg := engine.GroupAndAggregate(restaurantAdapter.Bind(rows), []string{"city", "category", "star_group"},
		[]engine.Reducer{
			engine.Avg("avg_review_count", "review_count"),
			engine.CountDistinct("num_of_businesses", "business_id"),
			engine.Sum("total_useful", "useful"),
			engine.Sum("total_funny", "funny"),
			engine.Sum("total_cool", "cool"),
		}, "", false, 0)

	out := make([]RestaurantInsight, 0, len(agg))
	for _, g := range agg {
		out = append(out, RestaurantInsight{
			City:            g.KeyPart(0),
			Category:        g.KeyPart(1),
			StarGroup:       StarGroup(g.KeyPart(2)),
			AvgReviewCount:  engine.RoundTo2(g.Value("avg_review_count")),
			NumOfBusinesses: int(g.Value("num_of_businesses")),
			TotalUseful:     int(g.Value("total_useful")),
			TotalFunny:      int(g.Value("total_funny")),
			TotalCool:       int(g.Value("total_cool")),
		})
	}
	return out, nil
}
