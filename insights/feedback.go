package insights

import (
	"context"
	"strconv"

	"github.com/spektr-org/bizlens/engine"
	"github.com/spektr-org/bizlens/schema"
	"github.com/spektr-org/bizlens/store"
)

// OpenDayFeedback is one business of the open-day feedback view.
type OpenDayFeedback struct {
	BusinessID            string  `json:"business_id"`
	BusinessName          string  `json:"business_name"`
	City                  string  `json:"city"`
	OpenDays              int     `json:"open_day"`
	TotalPositiveFeedback int     `json:"total_positive_feedback"`
	AvgTotalStars         float64 `json:"avg_total_stars"`
}

func (r OpenDayFeedback) Cells() []string {
	return []string{
		r.BusinessID, r.BusinessName, r.City,
		strconv.Itoa(r.OpenDays), strconv.Itoa(r.TotalPositiveFeedback),
		engine.FormatFloat(r.AvgTotalStars),
	}
}

// openDayRow is one (business, open day) pair with the business's
// positive-review aggregates.
type openDayRow struct {
	OpenDay
	Feedback float64
	AvgStars float64
}

var openDayAdapter = engine.NewDomainAdapter[openDayRow]().
	Dimension("business_id", func(r openDayRow) string { return r.BusinessID }).
	Dimension("day", func(r openDayRow) string { return r.Day }).
	Measure("feedback", func(r openDayRow) float64 { return r.Feedback }).
	Measure("avg_stars", func(r openDayRow) float64 { return r.AvgStars })

// OpenDayFeedback rolls the feedback of reviews rated at least MinStar up
// over the open days of every business that has structured hours.
func (s *Service) OpenDayFeedback(ctx context.Context, p StarParams) ([]OpenDayFeedback, error) {
	return run(ctx, s, schema.ViewOpenDayFeedback, p, s.openDayFeedback)
}

func (s *Service) openDayFeedback(ctx context.Context, p StarParams) ([]OpenDayFeedback, error) {
	bs, err := s.businesses(ctx, "")
	if err != nil {
		return nil, err
	}
	var open []store.Business
	for _, b := range bs {
		if len(b.Hours) > 0 {
			open = append(open, b)
		}
	}
	if len(open) == 0 {
		return nil, nil
	}

	reviews, err := s.reviews(ctx, store.ReviewFilter{BusinessIDs: businessIDs(open)})
	if err != nil {
		return nil, err
	}
	positive := reviews[:0:0]
	for _, r := range reviews {
		if r.Stars >= p.MinStar {
			positive = append(positive, r)
		}
	}

	perBusiness := engine.Aggregate(reviewAdapter.Bind(positive), []string{"business_id"},
		engine.Sum("feedback", "feedback"),
		engine.Avg("avg_stars", "stars"),
	)
	byID := make(map[string]engine.Group, len(perBusiness))
	for _, g := range perBusiness {
		byID[g.KeyPart(0)] = g
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var days []openDayRow
	for _, b := range open {
		g, ok := byID[b.ID]
		if !ok {
			continue
		}
		for _, d := range ExplodeHours(b) {
			days = append(days, openDayRow{OpenDay: d, Feedback: g.Value("feedback"), AvgStars: g.Value("avg_stars")})
		}
	}

	rolled := engine.GroupAndAggregate(openDayAdapter.Bind(days), []string{"business_id"},
		[]engine.Reducer{
			engine.CountDistinct("open_day", "day"),
			engine.Sum("total_positive_feedback", "feedback"),
			engine.Avg("avg_total_stars", "avg_stars"),
		}, "total_positive_feedback", true, 0)

	index := indexBusinesses(open)
	out := make([]OpenDayFeedback, 0, len(rolled))
	for _, g := range rolled {
		b := index[g.KeyPart(0)]
		out = append(out, OpenDayFeedback{
			BusinessID:            b.ID,
			BusinessName:          b.Name,
			City:                  b.City,
			OpenDays:              int(g.Value("open_day")),
			TotalPositiveFeedback: int(g.Value("total_positive_feedback")),
			AvgTotalStars:         engine.RoundTo2(g.Value("avg_total_stars")),
		})
	}
	return out, nil
}
