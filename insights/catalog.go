package insights

import (
	"context"
	"slices"
	"strconv"

	"github.com/spektr-org/bizlens/engine"
	"github.com/spektr-org/bizlens/schema"
	"github.com/spektr-org/bizlens/store"
)

// ============================================================================
// CATALOGUE VIEWS — browsing and lookup over the business set
// ============================================================================

var businessAdapter = engine.NewDomainAdapter[store.Business]().
	Dimension("business_id", func(b store.Business) string { return b.ID }).
	Dimension("city", func(b store.Business) string { return b.City }).
	Measure("review_count", func(b store.Business) float64 { return float64(b.ReviewCount) }).
	Measure("stars", func(b store.Business) float64 { return b.Stars })

// CityRanking is one row of the top-cities view.
type CityRanking struct {
	City         string `json:"city"`
	Businesses   int    `json:"businesses"`
	TotalReviews int    `json:"total_reviews"`
}

func (r CityRanking) Cells() []string {
	return []string{r.City, strconv.Itoa(r.Businesses), strconv.Itoa(r.TotalReviews)}
}

// TopCities ranks cities by the summed review count of their businesses.
func (s *Service) TopCities(ctx context.Context) ([]CityRanking, error) {
	return run(ctx, s, schema.ViewTopCities, noParams{}, func(ctx context.Context, _ noParams) ([]CityRanking, error) {
		bs, err := s.businesses(ctx, "")
		if err != nil {
			return nil, err
		}
		groups := engine.GroupAndAggregate(businessAdapter.Bind(bs), []string{"city"},
			[]engine.Reducer{
				engine.Count("businesses"),
				engine.Sum("total_reviews", "review_count"),
			}, "total_reviews", true, s.limits.TopCities)

		out := make([]CityRanking, 0, len(groups))
		for _, g := range groups {
			out = append(out, CityRanking{
				City:         g.KeyPart(0),
				Businesses:   int(g.Value("businesses")),
				TotalReviews: int(g.Value("total_reviews")),
			})
		}
		return out, nil
	})
}

// CategoryName is one row of the categories view.
type CategoryName struct {
	Category string `json:"category"`
}

func (r CategoryName) Cells() []string { return []string{r.Category} }

// Categories lists every distinct category, sorted.
func (s *Service) Categories(ctx context.Context) ([]CategoryName, error) {
	return run(ctx, s, schema.ViewCategories, noParams{}, func(ctx context.Context, _ noParams) ([]CategoryName, error) {
		bs, err := s.businesses(ctx, "")
		if err != nil {
			return nil, err
		}
		names := engine.UniqueValues(categoryAdapter.Bind(explodeAll(bs)), "category")
		slices.Sort(names)

		out := make([]CategoryName, len(names))
		for i, n := range names {
			out[i] = CategoryName{Category: n}
		}
		return out, nil
	})
}

// CategoryBusiness is one row of the category-businesses view.
type CategoryBusiness struct {
	BusinessID string  `json:"business_id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Stars      float64 `json:"stars"`
	PostalCode string  `json:"postal_code"`
	City       string  `json:"city"`
	ReviewNum  int     `json:"review_num"`
}

func (r CategoryBusiness) Cells() []string {
	return []string{
		r.BusinessID, r.Name, r.Address, engine.FormatFloat(r.Stars),
		r.PostalCode, r.City, strconv.Itoa(r.ReviewNum),
	}
}

// CategoryBusinesses ranks the reviewed businesses of a category by the
// number of reviews in the store.
func (s *Service) CategoryBusinesses(ctx context.Context, p CategoryParams) ([]CategoryBusiness, error) {
	return run(ctx, s, schema.ViewCategoryBusinesses, p, s.categoryBusinesses)
}

func (s *Service) categoryBusinesses(ctx context.Context, p CategoryParams) ([]CategoryBusiness, error) {
	bs, err := s.businesses(ctx, "")
	if err != nil {
		return nil, err
	}
	bs = slices.DeleteFunc(bs, func(b store.Business) bool { return !HasCategory(b, p.Category) })
	if len(bs) == 0 {
		return nil, nil
	}
	reviews, err := s.reviews(ctx, store.ReviewFilter{BusinessIDs: businessIDs(bs)})
	if err != nil {
		return nil, err
	}

	groups := engine.GroupAndAggregate(reviewAdapter.Bind(reviews), []string{"business_id"},
		[]engine.Reducer{engine.Count("review_num")}, "review_num", true, s.limits.CategoryBusinesses)

	index := indexBusinesses(bs)
	out := make([]CategoryBusiness, 0, len(groups))
	for _, g := range groups {
		b := index[g.KeyPart(0)]
		out = append(out, CategoryBusiness{
			BusinessID: b.ID,
			Name:       b.Name,
			Address:    b.Address,
			Stars:      b.Stars,
			PostalCode: b.PostalCode,
			City:       b.City,
			ReviewNum:  int(g.Value("review_num")),
		})
	}
	return out, nil
}

// BusinessProfile is a business with its rating histogram and most useful
// review.
type BusinessProfile struct {
	BusinessID      string  `json:"business_id"`
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	AvgStar         float64 `json:"avg_star"`
	ReviewCount     int     `json:"review_count"`
	Star1Count      int     `json:"star1_count"`
	Star2Count      int     `json:"star2_count"`
	Star3Count      int     `json:"star3_count"`
	Star4Count      int     `json:"star4_count"`
	Star5Count      int     `json:"star5_count"`
	MostUsefulText  *string `json:"most_useful_text"`
	MostUsefulCount *int    `json:"most_useful_count"`
}

func (r BusinessProfile) Cells() []string {
	cells := []string{r.BusinessID, r.Name, r.Address, engine.FormatFloat(r.AvgStar), strconv.Itoa(r.ReviewCount)}
	for _, n := range []int{r.Star1Count, r.Star2Count, r.Star3Count, r.Star4Count, r.Star5Count} {
		cells = append(cells, strconv.Itoa(n))
	}
	text, count := "", ""
	if r.MostUsefulText != nil {
		text = *r.MostUsefulText
	}
	if r.MostUsefulCount != nil {
		count = strconv.Itoa(*r.MostUsefulCount)
	}
	return append(cells, text, count)
}

// BusinessProfile looks up one business. A business without reviews has
// zero counts and no most useful review.
func (s *Service) BusinessProfile(ctx context.Context, p BusinessParams) ([]BusinessProfile, error) {
	return run(ctx, s, schema.ViewBusinessProfile, p, s.businessProfile)
}

func (s *Service) businessProfile(ctx context.Context, p BusinessParams) ([]BusinessProfile, error) {
	b, err := s.business(ctx, p.BusinessID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews(ctx, store.ReviewFilter{BusinessID: b.ID})
	if err != nil {
		return nil, err
	}

	profile := BusinessProfile{
		BusinessID:  b.ID,
		Name:        b.Name,
		Address:     b.Address,
		AvgStar:     b.Stars,
		ReviewCount: len(reviews),
	}
	view := reviewAdapter.Bind(reviews)
	histogram := map[string]*int{
		"1": &profile.Star1Count, "2": &profile.Star2Count, "3": &profile.Star3Count,
		"4": &profile.Star4Count, "5": &profile.Star5Count,
	}
	for _, g := range engine.Aggregate(view, []string{"star"}, engine.Count("n")) {
		if n, ok := histogram[g.KeyPart(0)]; ok {
			*n = g.Count
		}
	}

	if top := engine.TopWithin(view, nil, engine.ByMeasure("useful", true), 1); top.Len() > 0 {
		r := reviews[engine.RootIndex(top, 0)]
		profile.MostUsefulText = &r.Text
		profile.MostUsefulCount = &r.Useful
	}
	return []BusinessProfile{profile}, nil
}

// Recommendation is one (business, category) row of the recommend view.
type Recommendation struct {
	BusinessID   string  `json:"business_id"`
	Name         string  `json:"name"`
	City         string  `json:"city"`
	Category     string  `json:"category"`
	Address      string  `json:"address"`
	Availability string  `json:"availability"`
	Reviews      int     `json:"reviews"`
	Stars        float64 `json:"stars"`
}

func (r Recommendation) Cells() []string {
	return []string{
		r.BusinessID, r.Name, r.City, r.Category, r.Address,
		r.Availability, strconv.Itoa(r.Reviews), engine.FormatFloat(r.Stars),
	}
}

type recommendRow struct {
	Business store.Business
	Category string
}

var recommendAdapter = engine.NewDomainAdapter[recommendRow]().
	Dimension("business_id", func(r recommendRow) string { return r.Business.ID }).
	Dimension("category", func(r recommendRow) string { return r.Category }).
	Measure("stars", func(r recommendRow) float64 { return r.Business.Stars })

// Recommend returns the best rated businesses of a city, one row per
// matching category of each business.
func (s *Service) Recommend(ctx context.Context, p RecommendParams) ([]Recommendation, error) {
	return run(ctx, s, schema.ViewRecommend, p, s.recommend)
}

func (s *Service) recommend(ctx context.Context, p RecommendParams) ([]Recommendation, error) {
	if p.MinReviews > p.maxReviews() {
		return nil, invalid("min_reviews", "must not exceed max_reviews (%d)", p.maxReviews())
	}
	bs, err := s.businesses(ctx, p.City)
	if err != nil {
		return nil, err
	}

	var rows []recommendRow
	for _, b := range bs {
		if b.ReviewCount < p.MinReviews || b.ReviewCount > p.maxReviews() {
			continue
		}
		if p.Availability != "" && b.IsOpen != (p.Availability == AvailabilityOpen) {
			continue
		}
		for _, a := range ExplodeCategories(b) {
			if p.Category == "" || a.Category == p.Category {
				rows = append(rows, recommendRow{Business: b, Category: a.Category})
			}
		}
	}

	view := recommendAdapter.Bind(rows)
	top := engine.TopWithin(view, nil, engine.ByMeasure("stars", true), s.limits.Recommend)

	out := make([]Recommendation, 0, top.Len())
	for _, r := range engine.Rows(rows, top) {
		availability := "Closed"
		if r.Business.IsOpen {
			availability = "Open"
		}
		out = append(out, Recommendation{
			BusinessID:   r.Business.ID,
			Name:         r.Business.Name,
			City:         r.Business.City,
			Category:     r.Category,
			Address:      r.Business.Address,
			Availability: availability,
			Reviews:      r.Business.ReviewCount,
			Stars:        r.Business.Stars,
		})
	}
	return out, nil
}
