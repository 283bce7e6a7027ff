// Package schema describes the shape of every analytical view: its name,
// parameters and output columns. The CLI lists it, the HTTP adapter serves
// it, and the table builders take their columns from it.
package schema

import "github.com/spektr-org/bizlens/engine"

// ============================================================================
// SCHEMA — View catalogue
// ============================================================================

// View names.
const (
	ViewCategoryPopularity = "category-popularity"
	ViewRestaurantInsights = "restaurant-insights"
	ViewOpenDayFeedback    = "open-day-feedback"
	ViewActiveUsers        = "active-users"
	ViewTraffic            = "traffic"
	ViewConsistentGrowth   = "consistent-growth"
	ViewTopCities          = "top-cities"
	ViewCategories         = "categories"
	ViewCategoryBusinesses = "category-businesses"
	ViewBusinessProfile    = "business-profile"
	ViewRecommend          = "recommend"
)

// Param describes one named view parameter.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "text", "integer"
	Required    bool   `json:"required"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description"`
}

// View describes one analytical view.
type View struct {
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Params      []Param         `json:"params"`
	Columns     []engine.Column `json:"columns"`
	Chartable   bool            `json:"chartable,omitempty"`
}

// Param returns the named parameter.
func (v View) Param(name string) (Param, bool) {
	for _, p := range v.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ColumnKeys returns the column keys in output order.
func (v View) ColumnKeys() []string {
	keys := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		keys[i] = c.Key
	}
	return keys
}

var (
	cityParam = Param{Name: "city", Type: "text", Required: true, Description: "City to analyse, exact match"}

	text = engine.TextColumn
	num  = engine.NumberColumn
)

func date(key string) engine.Column {
	c := engine.TextColumn(key)
	c.Type = "date"
	return c
}

var catalog = []View{
	{
		Name:        ViewCategoryPopularity,
		Title:       "Top categories",
		Description: "Categories of a city ranked by occurrence × total reviews",
		Params:      []Param{cityParam},
		Columns:     []engine.Column{text("category"), num("occurrence"), num("total_reviews"), num("score")},
		Chartable:   true,
	},
	{
		Name:        ViewRestaurantInsights,
		Title:       "Restaurant insights",
		Description: "Restaurants of a city by star group with review feedback totals",
		Params:      []Param{cityParam},
		Columns: []engine.Column{
			text("city"), text("category"), text("star_group"),
			num("avg_review_count"), num("num_of_businesses"),
			num("total_useful"), num("total_funny"), num("total_cool"),
		},
	},
	{
		Name:        ViewOpenDayFeedback,
		Title:       "Open-day feedback",
		Description: "Positive feedback and ratings of reviews at or above a star level, rolled up over open days",
		Params: []Param{{
			Name: "min_star", Type: "integer", Required: true,
			Description: "Minimum review rating, 1 to 5",
		}},
		Columns: []engine.Column{
			text("business_id"), text("business_name"), text("city"),
			num("open_day"), num("total_positive_feedback"), num("avg_total_stars"),
		},
	},
	{
		Name:        ViewActiveUsers,
		Title:       "Active users",
		Description: "Most active reviewers of a city and the businesses they engage with most",
		Params:      []Param{cityParam},
		Columns: []engine.Column{
			text("user_id"), text("name"), num("review_count"), num("average_stars"),
			num("region_reviews"), num("rank"), text("business_id"), text("business_name"),
			num("interactions"), num("review_star"), date("review_date"),
		},
	},
	{
		Name:        ViewTraffic,
		Title:       "Hourly traffic by star group",
		Description: "Checkins per day of week and hour for each star group; day 1 is Sunday",
		Params:      []Param{cityParam},
		Columns: []engine.Column{
			num("day"), text("day_name"), num("hour"), text("star_group"), num("traffic"),
		},
		Chartable: true,
	},
	{
		Name:        ViewConsistentGrowth,
		Title:       "Consistently growing businesses",
		Description: "Businesses whose yearly checkins never decreased",
		Params:      []Param{cityParam},
		Columns: []engine.Column{
			text("business_id"), text("name"), text("address"), text("city"),
			num("stars"), num("review_count"), num("traffic"), num("consecutive_years"),
		},
	},
	{
		Name:        ViewTopCities,
		Title:       "Top cities",
		Description: "Cities ranked by the total review count of their businesses",
		Columns:     []engine.Column{text("city"), num("businesses"), num("total_reviews")},
		Chartable:   true,
	},
	{
		Name:        ViewCategories,
		Title:       "Categories",
		Description: "Every distinct business category",
		Columns:     []engine.Column{text("category")},
	},
	{
		Name:        ViewCategoryBusinesses,
		Title:       "Businesses in category",
		Description: "Businesses of a category ranked by number of reviews",
		Params: []Param{{
			Name: "category", Type: "text", Required: true, Description: "Category, exact match",
		}},
		Columns: []engine.Column{
			text("business_id"), text("name"), text("address"), num("stars"),
			text("postal_code"), text("city"), num("review_num"),
		},
	},
	{
		Name:        ViewBusinessProfile,
		Title:       "Business profile",
		Description: "One business with its rating histogram and most useful review",
		Params: []Param{{
			Name: "business_id", Type: "text", Required: true, Description: "Business id",
		}},
		Columns: []engine.Column{
			text("business_id"), text("name"), text("address"), num("avg_star"), num("review_count"),
			num("star1_count"), num("star2_count"), num("star3_count"), num("star4_count"), num("star5_count"),
			text("most_useful_text"), num("most_useful_count"),
		},
	},
	{
		Name:        ViewRecommend,
		Title:       "Recommended businesses",
		Description: "Best rated businesses of a city, optionally narrowed by category, availability and review count",
		Params: []Param{
			cityParam,
			{Name: "category", Type: "text", Description: "Category, exact match"},
			{Name: "availability", Type: "text", Description: "open or closed"},
			{Name: "min_reviews", Type: "integer", Default: "0", Description: "Minimum review count"},
			{Name: "max_reviews", Type: "integer", Default: "99999", Description: "Maximum review count"},
		},
		Columns: []engine.Column{
			text("business_id"), text("name"), text("city"), text("category"), text("address"),
			text("availability"), num("reviews"), num("stars"),
		},
	},
}

var byName = func() map[string]int {
	m := make(map[string]int, len(catalog))
	for i, v := range catalog {
		m[v.Name] = i
	}
	return m
}()

// Catalog returns every view in presentation order.
func Catalog() []View {
	out := make([]View, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the view with the given name.
func Lookup(name string) (View, bool) {
	i, ok := byName[name]
	if !ok {
		return View{}, false
	}
	return catalog[i], true
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name string) View {
	v, ok := Lookup(name)
	if !ok {
		panic("schema: unknown view " + name)
	}
	return v
}
