package insights

import "github.com/rs/zerolog"

// ============================================================================
// SERVICE OPTIONS — Functional options for New()
// ============================================================================

// Limits are the row caps and thresholds of the views.
type Limits struct {
	TopCategories      int
	ActiveUsers        int
	BusinessesPerUser  int
	GrowthMinTraffic   int
	RestaurantCategory string
	TopCities          int
	CategoryBusinesses int
	Recommend          int
}

// DefaultLimits returns the dashboard caps.
func DefaultLimits() Limits {
	return Limits{
		TopCategories:      15,
		ActiveUsers:        250,
		BusinessesPerUser:  30,
		GrowthMinTraffic:   100,
		RestaurantCategory: "Restaurants",
		TopCities:          25,
		CategoryBusinesses: 100,
		Recommend:          10,
	}
}

// Option configures a Service.
type Option func(*Service)

// WithLimits overrides the default limits. Non-positive fields and an
// empty restaurant category keep their defaults.
func WithLimits(l Limits) Option {
	return func(s *Service) {
		d := DefaultLimits()
		s.limits = Limits{
			TopCategories:      positive(l.TopCategories, d.TopCategories),
			ActiveUsers:        positive(l.ActiveUsers, d.ActiveUsers),
			BusinessesPerUser:  positive(l.BusinessesPerUser, d.BusinessesPerUser),
			GrowthMinTraffic:   positive(l.GrowthMinTraffic, d.GrowthMinTraffic),
			RestaurantCategory: l.RestaurantCategory,
			TopCities:          positive(l.TopCities, d.TopCities),
			CategoryBusinesses: positive(l.CategoryBusinesses, d.CategoryBusinesses),
			Recommend:          positive(l.Recommend, d.Recommend),
		}
		if s.limits.RestaurantCategory == "" {
			s.limits.RestaurantCategory = d.RestaurantCategory
		}
	}
}

// WithLogger sets the logger used for per-view diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

func positive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
