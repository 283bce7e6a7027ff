package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStars(t *testing.T) {
	tests := []struct {
		rating float64
		want   StarGroup
		ok     bool
	}{
		{0, "", false},
		{1, OneStar, true},
		{1.5, "", false},
		{2, TwoThreeStars, true},
		{2.5, TwoThreeStars, true},
		{3, TwoThreeStars, true},
		{3.5, "", false},
		{4, FourFiveStars, true},
		{4.5, FourFiveStars, true},
		{5, FourFiveStars, true},
		{6, "", false},
	}
	for _, tt := range tests {
		got, ok := ClassifyStars(tt.rating)
		assert.Equal(t, tt.ok, ok, "rating %v", tt.rating)
		assert.Equal(t, tt.want, got, "rating %v", tt.rating)
	}
}

func TestBucketOf(t *testing.T) {
	sunday := time.Date(2020, 1, 5, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, TimeBucket{Day: 1, Hour: 23}, BucketOf(sunday))
	assert.Equal(t, TimeBucket{Day: 7, Hour: 0}, BucketOf(time.Date(2020, 1, 11, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, "Sun", DayName(1))
	assert.Equal(t, "Sat", DayName(7))
	assert.Equal(t, "", DayName(0))
}
