package insights

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/spektr-org/bizlens/engine"
	"github.com/spektr-org/bizlens/schema"
)

// GrowingBusiness is a business whose yearly checkins never decreased.
type GrowingBusiness struct {
	BusinessID       string  `json:"business_id"`
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	Stars            float64 `json:"stars"`
	ReviewCount      int     `json:"review_count"`
	Traffic          int     `json:"traffic"`
	ConsecutiveYears int     `json:"consecutive_years"`
	// Years holds the yearly checkin counts the classification was based on.
	Years []engine.TrendPoint `json:"years,omitempty"`
}

func (r GrowingBusiness) Cells() []string {
	return []string{
		r.BusinessID, r.Name, r.Address, r.City,
		engine.FormatFloat(r.Stars), strconv.Itoa(r.ReviewCount),
		strconv.Itoa(r.Traffic), strconv.Itoa(r.ConsecutiveYears),
	}
}

type yearlyTraffic struct {
	BusinessID string
	Year       string
	Traffic    int
}

var checkinYearAdapter = engine.NewDomainAdapter[CheckinEvent]().
	Dimension("business_id", func(e CheckinEvent) string { return e.BusinessID }).
	Dimension("year", func(e CheckinEvent) string { return strconv.Itoa(e.At.Year()) })

var yearlyTrafficAdapter = engine.NewDomainAdapter[yearlyTraffic]().
	Dimension("business_id", func(r yearlyTraffic) string { return r.BusinessID }).
	Dimension("year", func(r yearlyTraffic) string { return r.Year }).
	Measure("traffic", func(r yearlyTraffic) float64 { return float64(r.Traffic) })

// ConsistentGrowth finds the businesses of a city whose checkin count did
// not drop from one year to the next and whose total traffic reaches the
// configured floor.
func (s *Service) ConsistentGrowth(ctx context.Context, p CityParams) ([]GrowingBusiness, error) {
	return run(ctx, s, schema.ViewConsistentGrowth, p, s.consistentGrowth)
}

func (s *Service) consistentGrowth(ctx context.Context, p CityParams) ([]GrowingBusiness, error) {
	bs, err := s.businesses(ctx, p.City)
	if err != nil {
		return nil, err
	}
	events, err := s.checkinEvents(ctx, bs)
	if err != nil || len(events) == 0 {
		return nil, err
	}

	var yearly []yearlyTraffic
	for _, g := range engine.Aggregate(checkinYearAdapter.Bind(events), []string{"business_id", "year"}, engine.Count("traffic")) {
		yearly = append(yearly, yearlyTraffic{BusinessID: g.KeyPart(0), Year: g.KeyPart(1), Traffic: int(g.Value("traffic"))})
	}

	trends := engine.Qualifying(engine.DetectGrowth(yearlyTrafficAdapter.Bind(yearly), engine.TrendSpec{
		Partition: "business_id",
		Order:     engine.ByDimension("year", false),
		Value:     "traffic",
		MinTotal:  float64(s.limits.GrowthMinTraffic),
	}))

	index := indexBusinesses(bs)
	out := make([]GrowingBusiness, 0, len(trends))
	for _, t := range trends {
		b := index[t.Key]
		out = append(out, GrowingBusiness{
			BusinessID:       b.ID,
			Name:             b.Name,
			Address:          b.Address,
			City:             b.City,
			Stars:            b.Stars,
			ReviewCount:      b.ReviewCount,
			Traffic:          int(t.Total),
			ConsecutiveYears: t.ConsecutiveYears,
			Years:            t.Points,
		})
	}
	slices.SortStableFunc(out, func(a, b GrowingBusiness) int {
		return cmpOr(cmp.Compare(b.ReviewCount, a.ReviewCount), strings.Compare(a.BusinessID, b.BusinessID))
	})
	return out, nil
}
