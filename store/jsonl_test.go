package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const businessFixture = `{"business_id":"b1","name":"Cafe One","address":"1 Main St","city":"Tampa","state":"FL","postal_code":"33602","stars":4.5,"review_count":10,"is_open":1,"categories":"Cafes, Restaurants","hours":{"Monday":"8:0-17:0","Tuesday":"8:0-17:0"}}
{"business_id":"b2","name":"Bar Two","city":"Tampa","stars":3.0,"review_count":4,"is_open":0,"categories":null,"hours":null}
not json at all
`

const reviewFixture = `{"review_id":"r1","user_id":"u1","business_id":"b1","stars":5.0,"useful":2,"funny":0,"cool":1,"text":"great","date":"2019-05-01 12:30:00"}
{"review_id":"r2","user_id":"u1","business_id":"b2","stars":3.0,"useful":0,"funny":1,"cool":0,"text":"ok","date":"yesterday"}

{"review_id":"r3","user_id":"u2","business_id":"b2","stars":2.0,"useful":0,"funny":0,"cool":0,"text":"meh","date":"2020-01-01 00:00:00"}
`

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadJSONLines(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "business.json", businessFixture)
	writeFixture(t, dir, "yelp_academic_dataset_review.json", reviewFixture)
	writeFixture(t, dir, "checkin.json", `{"business_id":"b1","date":"2019-01-01 10:00:00, 2019-01-02 11:00:00"}`+"\n")
	writeFixture(t, dir, "user.json", `{"user_id":"u1","name":"Ann","review_count":7}`+"\n")

	snap, err := LoadJSONLines(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"businesses": 2, "reviews": 2, "checkins": 1, "users": 1}, snap.Counts())

	b, err := snap.Business(context.Background(), "b1")
	require.NoError(t, err)
	assert.True(t, b.IsOpen)
	assert.Equal(t, "Cafes, Restaurants", b.Categories)
	assert.Equal(t, "8:0-17:0", b.Hours["Monday"])

	b2, err := snap.Business(context.Background(), "b2")
	require.NoError(t, err)
	assert.False(t, b2.IsOpen)
	assert.Empty(t, b2.Categories)
	assert.Nil(t, b2.Hours)

	reviews, err := snap.Reviews(context.Background(), ReviewFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, reviews, 1, "review with an unparseable date is skipped")
	assert.Equal(t, 5, reviews[0].Stars)
	assert.Equal(t, 2019, reviews[0].Date.Year())

	users, err := snap.Users(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 7, users[0].ReviewCount)
	assert.InDelta(t, 5.0, users[0].AverageStars, 1e-9)
}

func TestLoadJSONLinesOptionalFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "business.json", businessFixture)
	writeFixture(t, dir, "review.json", reviewFixture)

	snap, err := LoadJSONLines(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Counts()["checkins"])
	assert.Equal(t, 0, snap.Counts()["users"])
}

func TestLoadJSONLinesRequiresBusinesses(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "review.json", reviewFixture)

	_, err := LoadJSONLines(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no business file")
}

func TestDecodeLinesSkipsMalformed(t *testing.T) {
	input := "{\"business_id\":\"a\"}\n{broken\n\n{\"business_id\":\"b\"}"

	var ids []string
	skipped, err := DecodeLines(context.Background(), strings.NewReader(input), func(c Checkin) error {
		ids = append(ids, c.BusinessID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []string{"a", "b"}, ids, "last line without newline is decoded")
}

func TestDecodeLinesHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DecodeLines(ctx, strings.NewReader("{}\n"), func(Checkin) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
