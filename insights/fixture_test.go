package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spektr-org/bizlens/store"
)

func at(s string) time.Time {
	t, err := time.Parse(store.TimestampLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

var workdays = map[string]string{"Monday": "8:0-17:0", "Tuesday": "8:0-17:0"}

// tampa is a small region: three rated restaurants and bars, one
// restaurant without a star group, and one business in another city.
func tampa() *store.Snapshot {
	businesses := []store.Business{
		{ID: "b1", Name: "Cafe One", City: "Tampa", Address: "1 Main St", PostalCode: "33601", Stars: 4.5, ReviewCount: 10, IsOpen: true, Categories: "Cafes, Restaurants", Hours: workdays},
		{ID: "b2", Name: "Bar Two", City: "Tampa", Address: "2 Main St", Stars: 2.5, ReviewCount: 4, Categories: "Restaurants, Bars", Hours: map[string]string{"Monday": "18:0-2:0"}},
		{ID: "b3", Name: "Pub Three", City: "Tampa", Address: "3 Main St", Stars: 1, ReviewCount: 2, IsOpen: true, Categories: "Bars"},
		{ID: "b4", Name: "Diner Four", City: "Tampa", Address: "4 Main St", Stars: 3.5, ReviewCount: 50, IsOpen: true, Categories: "Restaurants"},
		{ID: "b5", Name: "Reno Cafe", City: "Reno", Address: "5 Strip", Stars: 5, ReviewCount: 100, IsOpen: true, Categories: "Cafes", Hours: map[string]string{"Sunday": "9:0-12:0"}},
	}
	reviews := []store.Review{
		{ID: "r1", BusinessID: "b1", UserID: "u1", Stars: 5, Useful: 3, Funny: 1, Text: "great", Date: at("2020-01-01 10:00:00")},
		{ID: "r2", BusinessID: "b1", UserID: "u1", Stars: 4, Cool: 1, Text: "still good", Date: at("2021-06-01 10:00:00")},
		{ID: "r3", BusinessID: "b2", UserID: "u1", Stars: 2, Useful: 1, Text: "meh", Date: at("2020-03-01 10:00:00")},
		{ID: "r4", BusinessID: "b1", UserID: "u2", Stars: 3, Useful: 5, Text: "detailed", Date: at("2019-05-05 10:00:00")},
		{ID: "r5", BusinessID: "b3", UserID: "u2", Stars: 1, Text: "bad", Date: at("2020-02-02 10:00:00")},
		{ID: "r6", BusinessID: "b5", UserID: "u3", Stars: 5, Useful: 2, Funny: 2, Cool: 2, Text: "sunny", Date: at("2022-01-01 10:00:00")},
	}
	checkins := []store.Checkin{
		// Sunday 10h twice, Wednesday 9h once, one malformed entry.
		{BusinessID: "b1", Date: "2020-01-05 10:00:00, 2020-01-05 10:30:00, 2021-03-03 09:00:00, bad"},
		// Monday 23h.
		{BusinessID: "b3", Date: "2020-01-06 23:15:00"},
		// No star group: ignored by traffic.
		{BusinessID: "b4", Date: "2020-01-05 10:00:00"},
	}
	users := []store.User{
		{ID: "u1", Name: "Ann", ReviewCount: 50},
		{ID: "u2", Name: "Bo", ReviewCount: 20},
		{ID: "u3", Name: "Cy", ReviewCount: 5},
	}
	return store.NewSnapshot(businesses, reviews, checkins, users)
}

// checkinsPerYear builds a checkin list with n visits in each given year.
func checkinsPerYear(id string, counts map[int]int) store.Checkin {
	var stamps []string
	for year := 2000; year < 2100; year++ {
		for i := 0; i < counts[year]; i++ {
			stamps = append(stamps, fmt.Sprintf("%d-03-%02d 12:00:00", year, i%28+1))
		}
	}
	return store.Checkin{BusinessID: id, Date: strings.Join(stamps, ", ")}
}

// growth holds one business per trend shape in city X.
func growth() *store.Snapshot {
	businesses := []store.Business{
		{ID: "g1", Name: "Riser", City: "X", ReviewCount: 7, Stars: 4},
		{ID: "g2", Name: "Dropper", City: "X", ReviewCount: 9, Stars: 3},
		{ID: "g3", Name: "Single", City: "X", ReviewCount: 3, Stars: 2},
		{ID: "g4", Name: "Steady", City: "X", ReviewCount: 9, Stars: 5},
	}
	checkins := []store.Checkin{
		checkinsPerYear("g1", map[int]int{2020: 5, 2021: 5, 2022: 90}),
		checkinsPerYear("g2", map[int]int{2020: 10, 2021: 30, 2022: 5}),
		checkinsPerYear("g3", map[int]int{2020: 50}),
		checkinsPerYear("g4", map[int]int{2019: 40, 2020: 60}),
	}
	return store.NewSnapshot(businesses, nil, checkins, nil)
}

var errBoom = errors.New("boom")

// brokenReader fails every read.
type brokenReader struct{}

func (brokenReader) Businesses(context.Context, string) ([]store.Business, error) {
	return nil, errBoom
}

func (brokenReader) Business(context.Context, string) (store.Business, error) {
	return store.Business{}, errBoom
}

func (brokenReader) Reviews(context.Context, store.ReviewFilter) ([]store.Review, error) {
	return nil, errBoom
}

func (brokenReader) Checkins(context.Context, ...string) ([]store.Checkin, error) {
	return nil, errBoom
}

func (brokenReader) Users(context.Context, ...string) ([]store.User, error) {
	return nil, errBoom
}
