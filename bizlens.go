// Package bizlens computes business-intelligence views over a Yelp-style
// dataset of businesses, reviews, checkins and users.
//
// Usage:
//
//	import "github.com/spektr-org/bizlens/insights"
//
//	snap, err := store.LoadJSONLines(ctx, "data/")
//	svc := insights.New(snap, insights.WithLimits(limits))
//	res, err := svc.Execute(ctx, insights.Request{
//	    View:   "category-popularity",
//	    Params: map[string]string{"city": "Tampa"},
//	})
//
// The engine package holds the dataset-agnostic grouping, ranking and
// trend primitives; insights binds them to the business entities. The
// cmd/bizlens binary exposes every view on the command line and over HTTP.
// All computation is local to the loaded snapshot or the configured
// database.
package bizlens
