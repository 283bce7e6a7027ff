package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "yelp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Import(ctx, testSnapshot()))
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.Error(t, err)
}

func TestDBBusinesses(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	tampa, err := db.Businesses(ctx, "Tampa")
	require.NoError(t, err)
	require.Len(t, tampa, 2)
	assert.Equal(t, "b1", tampa[0].ID)
	assert.True(t, tampa[0].IsOpen)
	assert.Equal(t, "Cafes, Restaurants", tampa[0].Categories)

	b, err := db.Business(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, "Bar Two", b.Name)
	assert.InDelta(t, 3.0, b.Stars, 1e-9)

	_, err = db.Business(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDBHoursRoundTrip(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "hours.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))

	snap := NewSnapshot([]Business{
		{ID: "h1", City: "Tampa", Hours: map[string]string{"Monday": "8:0-17:0"}},
		{ID: "h2", City: "Tampa"},
	}, nil, nil, nil)
	require.NoError(t, db.Import(ctx, snap))

	got, err := db.Businesses(ctx, "Tampa")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, map[string]string{"Monday": "8:0-17:0"}, got[0].Hours)
	assert.Nil(t, got[1].Hours)
}

func TestDBReviews(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	got, err := db.Reviews(ctx, ReviewFilter{BusinessIDs: []string{"b3", "b1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r3", "r4"}, reviewIDs(got))
	assert.Equal(t, 2020, got[0].Date.Year())

	byUser, err := db.Reviews(ctx, ReviewFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, reviewIDs(byUser))
}

func TestDBUsersAverageStars(t *testing.T) {
	db := openTestDB(t)

	users, err := db.Users(context.Background(), "u2", "u1")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID)
	assert.InDelta(t, 4.0, users[0].AverageStars, 1e-9)
	assert.InDelta(t, 2.5, users[1].AverageStars, 1e-9)
}

func TestLoadSnapshotFromDB(t *testing.T) {
	db := openTestDB(t)

	snap, err := LoadSnapshot(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, testSnapshot().Counts(), snap.Counts())

	checkins, err := snap.Checkins(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, checkins, 1)
	assert.Equal(t, "2020-01-01 10:00:00, 2021-01-01 11:00:00", checkins[0].Date)
}

func TestChunks(t *testing.T) {
	assert.Nil(t, chunks(nil, 2))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunks([]string{"a", "b", "c"}, 2))
	assert.Equal(t, []string{"a", "b"}, dedupe([]string{"a", "b", "a"}))
}
