package insights

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spektr-org/bizlens/engine"
	"github.com/spektr-org/bizlens/schema"
	"github.com/spektr-org/bizlens/store"
)

// ActiveUserEngagement is one (user, business) row of the active-user view.
type ActiveUserEngagement struct {
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	ReviewCount   int       `json:"review_count"`
	AverageStars  float64   `json:"average_stars"`
	RegionReviews int       `json:"region_reviews"`
	Rank          int       `json:"rank"`
	BusinessID    string    `json:"business_id"`
	BusinessName  string    `json:"business_name"`
	Interactions  int       `json:"interactions"`
	ReviewStar    int       `json:"review_star"`
	ReviewDate    time.Time `json:"review_date"`
}

func (r ActiveUserEngagement) Cells() []string {
	return []string{
		r.UserID, r.Name, strconv.Itoa(r.ReviewCount), engine.FormatFloat(r.AverageStars),
		strconv.Itoa(r.RegionReviews), strconv.Itoa(r.Rank), r.BusinessID, r.BusinessName,
		strconv.Itoa(r.Interactions), strconv.Itoa(r.ReviewStar), r.ReviewDate.Format(store.TimestampLayout),
	}
}

// userBusiness is the interaction summary of one (user, business) pair.
type userBusiness struct {
	UserID       string
	BusinessID   string
	Interactions int
	Latest       store.Review
}

var userBusinessAdapter = engine.NewDomainAdapter[userBusiness]().
	Dimension("user_id", func(r userBusiness) string { return r.UserID }).
	Dimension("business_id", func(r userBusiness) string { return r.BusinessID }).
	Measure("interactions", func(r userBusiness) float64 { return float64(r.Interactions) })

// ActiveUsers finds the most active reviewers of a city and, for each,
// the businesses they reviewed most often with their latest review there.
func (s *Service) ActiveUsers(ctx context.Context, p CityParams) ([]ActiveUserEngagement, error) {
	return run(ctx, s, schema.ViewActiveUsers, p, s.activeUsers)
}

func (s *Service) activeUsers(ctx context.Context, p CityParams) ([]ActiveUserEngagement, error) {
	bs, err := s.businesses(ctx, p.City)
	if err != nil || len(bs) == 0 {
		return nil, err
	}
	reviews, err := s.reviews(ctx, store.ReviewFilter{BusinessIDs: businessIDs(bs)})
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, nil
	}
	view := reviewAdapter.Bind(reviews)

	// Authors missing from the user table never take a ranking slot.
	users, err := s.users(ctx, engine.UniqueValues(view, "user_id"))
	if err != nil {
		return nil, err
	}
	userByID := make(map[string]store.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}
	view = engine.Where(view, func(v engine.RecordView, i int) bool {
		_, ok := userByID[v.Dimension(i, "user_id")]
		return ok
	})

	// Most active users of the region.
	top := engine.GroupAndAggregate(view, []string{"user_id"},
		[]engine.Reducer{
			engine.Count("region_reviews"),
			engine.Avg("average_stars", "stars"),
		}, "region_reviews", true, s.limits.ActiveUsers)
	if len(top) == 0 {
		return nil, nil
	}
	active := make(map[string]engine.Group, len(top))
	for _, g := range top {
		active[g.KeyPart(0)] = g
	}
	view = engine.Where(view, func(v engine.RecordView, i int) bool {
		_, ok := active[v.Dimension(i, "user_id")]
		return ok
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Interactions and latest review per (user, business).
	pairKey := []string{"user_id", "business_id"}
	latest := make(map[[2]string]store.Review)
	for i, rank := range engine.RankWithin(view, pairKey, engine.ByDimension("date", true)) {
		if rank == 1 {
			r := reviews[engine.RootIndex(view, i)]
			latest[[2]string{r.UserID, r.BusinessID}] = r
		}
	}
	var pairs []userBusiness
	for _, g := range engine.Aggregate(view, pairKey, engine.Count("interactions")) {
		pairs = append(pairs, userBusiness{
			UserID:       g.KeyPart(0),
			BusinessID:   g.KeyPart(1),
			Interactions: int(g.Value("interactions")),
			Latest:       latest[[2]string{g.KeyPart(0), g.KeyPart(1)}],
		})
	}

	// Most engaged businesses per user.
	order := engine.ByMeasure("interactions", true)
	pairView := userBusinessAdapter.Bind(pairs)
	ranks := engine.RankWithin(pairView, []string{"user_id"}, order)
	kept := engine.TopWithin(pairView, []string{"user_id"}, order, s.limits.BusinessesPerUser)

	names := indexBusinesses(bs)

	out := make([]ActiveUserEngagement, 0, kept.Len())
	for i := 0; i < kept.Len(); i++ {
		j := engine.RootIndex(kept, i)
		pb := pairs[j]
		u := userByID[pb.UserID]
		g := active[pb.UserID]
		out = append(out, ActiveUserEngagement{
			UserID:        u.ID,
			Name:          u.Name,
			ReviewCount:   u.ReviewCount,
			AverageStars:  engine.RoundTo2(g.Value("average_stars")),
			RegionReviews: int(g.Value("region_reviews")),
			Rank:          ranks[j],
			BusinessID:    pb.BusinessID,
			BusinessName:  names[pb.BusinessID].Name,
			Interactions:  pb.Interactions,
			ReviewStar:    pb.Latest.Stars,
			ReviewDate:    pb.Latest.Date,
		})
	}

	slices.SortStableFunc(out, func(a, b ActiveUserEngagement) int {
		return cmpOr(
			cmp.Compare(b.RegionReviews, a.RegionReviews),
			strings.Compare(a.UserID, b.UserID),
			cmp.Compare(a.Rank, b.Rank),
		)
	})
	return out, nil
}
