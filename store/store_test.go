package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func testSnapshot() *Snapshot {
	businesses := []Business{
		{ID: "b1", Name: "Cafe One", City: "Tampa", Stars: 4.5, ReviewCount: 10, IsOpen: true, Categories: "Cafes, Restaurants"},
		{ID: "b2", Name: "Bar Two", City: "Reno", Stars: 3, ReviewCount: 4, Categories: "Bars"},
		{ID: "b3", Name: "Diner Three", City: "Tampa", Stars: 1, ReviewCount: 2, Categories: "Restaurants"},
	}
	reviews := []Review{
		{ID: "r1", BusinessID: "b1", UserID: "u1", Stars: 5, Date: day("2020-01-01 10:00:00")},
		{ID: "r2", BusinessID: "b2", UserID: "u1", Stars: 3, Date: day("2020-02-01 10:00:00")},
		{ID: "r3", BusinessID: "b3", UserID: "u2", Stars: 1, Date: day("2020-03-01 10:00:00")},
		{ID: "r4", BusinessID: "b1", UserID: "u2", Stars: 4, Date: day("2020-04-01 10:00:00")},
	}
	checkins := []Checkin{
		{BusinessID: "b1", Date: "2020-01-01 10:00:00, 2021-01-01 11:00:00"},
		{BusinessID: "b3", Date: "2020-05-05 12:00:00"},
	}
	users := []User{
		{ID: "u1", Name: "Ann", ReviewCount: 2},
		{ID: "u2", Name: "Bob", ReviewCount: 2},
		{ID: "u3", Name: "Cy", ReviewCount: 0},
	}
	return NewSnapshot(businesses, reviews, checkins, users)
}

func TestSnapshotBusinesses(t *testing.T) {
	s := testSnapshot()
	ctx := context.Background()

	all, err := s.Businesses(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	tampa, err := s.Businesses(ctx, "Tampa")
	require.NoError(t, err)
	require.Len(t, tampa, 2)
	assert.Equal(t, "b1", tampa[0].ID)
	assert.Equal(t, "b3", tampa[1].ID)

	none, err := s.Businesses(ctx, "Nowhere")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSnapshotBusiness(t *testing.T) {
	s := testSnapshot()

	b, err := s.Business(context.Background(), "b2")
	require.NoError(t, err)
	assert.Equal(t, "Bar Two", b.Name)

	_, err = s.Business(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotReviewsFilters(t *testing.T) {
	s := testSnapshot()
	ctx := context.Background()

	all, err := s.Reviews(ctx, ReviewFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	byBusiness, err := s.Reviews(ctx, ReviewFilter{BusinessID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r4"}, reviewIDs(byBusiness))

	union, err := s.Reviews(ctx, ReviewFilter{BusinessIDs: []string{"b3", "b1", "b3"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r3", "r4"}, reviewIDs(union), "source order, deduplicated")

	byUser, err := s.Reviews(ctx, ReviewFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, reviewIDs(byUser))

	both, err := s.Reviews(ctx, ReviewFilter{BusinessIDs: []string{"b1", "b2"}, UserID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r4"}, reviewIDs(both))
}

func TestSnapshotReviewsDoNotAlias(t *testing.T) {
	s := testSnapshot()
	got, err := s.Reviews(context.Background(), ReviewFilter{})
	require.NoError(t, err)
	got[0].Stars = 1

	again, err := s.Reviews(context.Background(), ReviewFilter{})
	require.NoError(t, err)
	assert.Equal(t, 5, again[0].Stars)
}

func TestSnapshotCheckins(t *testing.T) {
	s := testSnapshot()

	got, err := s.Checkins(context.Background(), "b3")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2020-05-05 12:00:00", got[0].Date)

	all, err := s.Checkins(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSnapshotUsersAverageStars(t *testing.T) {
	s := testSnapshot()

	users, err := s.Users(context.Background(), "u2", "u1", "missing", "u1")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID)
	assert.InDelta(t, 4.0, users[0].AverageStars, 1e-9)
	assert.InDelta(t, 2.5, users[1].AverageStars, 1e-9)

	all, err := s.Users(context.Background())
	require.NoError(t, err)
	assert.Zero(t, all[2].AverageStars, "user without reviews")
}

func TestSnapshotCanceledContext(t *testing.T) {
	s := testSnapshot()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Businesses(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Reviews(ctx, ReviewFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotCounts(t *testing.T) {
	assert.Equal(t, map[string]int{
		"businesses": 3,
		"reviews":    4,
		"checkins":   2,
		"users":      3,
	}, testSnapshot().Counts())
}

func reviewIDs(reviews []Review) []string {
	out := make([]string, len(reviews))
	for i, r := range reviews {
		out[i] = r.ID
	}
	return out
}
