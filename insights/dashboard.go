package insights

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/bizlens/metrics"
)

// Dashboard is every city view computed for one city and star level.
// A view without data leaves its section empty. RunID only correlates
// log lines and stays out of the JSON body.
type Dashboard struct {
	RunID       string                 `json:"-"`
	City        string                 `json:"city"`
	MinStar     int                    `json:"min_star"`
	Categories  []CategoryPopularity   `json:"category_popularity"`
	Restaurants []RestaurantInsight    `json:"restaurant_insights"`
	Feedback    []OpenDayFeedback      `json:"open_day_feedback"`
	ActiveUsers []ActiveUserEngagement `json:"active_users"`
	Traffic     []HourlyTraffic        `json:"traffic"`
	Growth      []GrowingBusiness      `json:"consistent_growth"`
}

// Dashboard computes the city views concurrently. The first failing view
// cancels the others and no partial dashboard is returned.
func (s *Service) Dashboard(ctx context.Context, city string, minStar int) (*Dashboard, error) {
	start := time.Now()
	d := &Dashboard{RunID: uuid.NewString(), City: city, MinStar: minStar}
	log := s.log.With().Str("run_id", d.RunID).Str("city", city).Logger()

	if err := validateParams(CityParams{City: city}); err != nil {
		return nil, err
	}
	if err := validateParams(StarParams{MinStar: minStar}); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	p := CityParams{City: city}
	section(g, gctx, &d.Categories, func(ctx context.Context) ([]CategoryPopularity, error) { return s.CategoryPopularity(ctx, p) })
	section(g, gctx, &d.Restaurants, func(ctx context.Context) ([]RestaurantInsight, error) { return s.RestaurantInsights(ctx, p) })
	section(g, gctx, &d.Feedback, func(ctx context.Context) ([]OpenDayFeedback, error) {
		return s.OpenDayFeedback(ctx, StarParams{MinStar: minStar})
	})
	section(g, gctx, &d.ActiveUsers, func(ctx context.Context) ([]ActiveUserEngagement, error) { return s.ActiveUsers(ctx, p) })
	section(g, gctx, &d.Traffic, func(ctx context.Context) ([]HourlyTraffic, error) { return s.Traffic(ctx, p) })
	section(g, gctx, &d.Growth, func(ctx context.Context) ([]GrowingBusiness, error) { return s.ConsistentGrowth(ctx, p) })

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("dashboard failed")
		return nil, err
	}

	took := time.Since(start)
	metrics.ObserveDashboard(took)
	log.Info().Dur("took", took).Msg("dashboard computed")
	return d, nil
}

// section runs one view in g and stores its rows in dst. ErrNoData leaves
// dst empty.
func section[R any](g *errgroup.Group, ctx context.Context, dst *[]R, fn func(context.Context) ([]R, error)) {
	g.Go(func() error {
		rows, err := fn(ctx)
		if errors.Is(err, ErrNoData) {
			return nil
		}
		if err != nil {
			return err
		}
		*dst = rows
		return nil
	})
}
