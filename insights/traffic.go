package insights

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spektr-org/bizlens/engine"
	"github.com/spektr-org/bizlens/schema"
	"github.com/spektr-org/bizlens/store"
)

// HourlyTraffic is the checkin count of one (day, hour, star group) slot.
type HourlyTraffic struct {
	Day       int       `json:"day"`
	DayName   string    `json:"day_name"`
	Hour      int       `json:"hour"`
	StarGroup StarGroup `json:"star_group"`
	Traffic   int       `json:"traffic"`
}

func (r HourlyTraffic) Cells() []string {
	return []string{strconv.Itoa(r.Day), r.DayName, strconv.Itoa(r.Hour), string(r.StarGroup), strconv.Itoa(r.Traffic)}
}

// Slot is the chart label of the row, e.g. "Mon 09".
func (r HourlyTraffic) Slot() string {
	return fmt.Sprintf("%s %02d", r.DayName, r.Hour)
}

type visitRow struct {
	Bucket TimeBucket
	Group  StarGroup
}

var visitAdapter = engine.NewDomainAdapter[visitRow]().
	Dimension("day", func(r visitRow) string { return strconv.Itoa(r.Bucket.Day) }).
	Dimension("hour", func(r visitRow) string { return strconv.Itoa(r.Bucket.Hour) }).
	Dimension("star_group", func(r visitRow) string { return string(r.Group) })

// Traffic counts the checkins of a city's rated businesses per day of
// week, hour and star group. Every one of the 7 × 24 × 3 slots is
// reported, zero when it saw no visits, as soon as the city has a
// business.
func (s *Service) Traffic(ctx context.Context, p CityParams) ([]HourlyTraffic, error) {
	return run(ctx, s, schema.ViewTraffic, p, s.traffic)
}

func (s *Service) traffic(ctx context.Context, p CityParams) ([]HourlyTraffic, error) {
	bs, err := s.businesses(ctx, p.City)
	if err != nil || len(bs) == 0 {
		return nil, err
	}

	groups := make(map[string]StarGroup)
	var rated []store.Business
	for _, b := range bs {
		if g, ok := ClassifyStars(b.Stars); ok {
			groups[b.ID] = g
			rated = append(rated, b)
		}
	}

	events, err := s.checkinEvents(ctx, rated)
	if err != nil {
		return nil, err
	}
	visits := make([]visitRow, len(events))
	for i, ev := range events {
		visits[i] = visitRow{Bucket: BucketOf(ev.At), Group: groups[ev.BusinessID]}
	}

	counts := make(map[[3]string]int)
	for _, g := range engine.Aggregate(visitAdapter.Bind(visits), []string{"day", "hour", "star_group"}, engine.Count("traffic")) {
		counts[[3]string{g.KeyPart(0), g.KeyPart(1), g.KeyPart(2)}] = int(g.Value("traffic"))
	}

	out := make([]HourlyTraffic, 0, 7*24*len(StarGroups))
	for day := 1; day <= 7; day++ {
		for hour := 0; hour < 24; hour++ {
			for _, sg := range StarGroups {
				out = append(out, HourlyTraffic{
					Day:       day,
					DayName:   DayName(day),
					Hour:      hour,
					StarGroup: sg,
					Traffic:   counts[[3]string{strconv.Itoa(day), strconv.Itoa(hour), string(sg)}],
				})
			}
		}
	}
	return out, nil
}

// TrafficChart renders traffic rows as one series per star group over
// the 168 day-hour slots.
func TrafficChart(rows []HourlyTraffic) *engine.ChartConfig {
	groups := make([]engine.Group, len(rows))
	for i, r := range rows {
		groups[i] = engine.Group{
			Key:    []string{r.Slot(), string(r.StarGroup)},
			Values: map[string]float64{"traffic": float64(r.Traffic)},
		}
	}
	return engine.BuildChart(engine.ChartSpec{
		Type:  "line",
		Title: schema.MustLookup(schema.ViewTraffic).Title,
		XAxis: "Day and hour",
		YAxis: "Checkins",
		Value: "traffic",
	}, groups)
}
