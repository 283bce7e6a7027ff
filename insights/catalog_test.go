package insights

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopCities(t *testing.T) {
	rows, err := New(tampa()).TopCities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []CityRanking{
		{City: "Reno", Businesses: 1, TotalReviews: 100},
		{City: "Tampa", Businesses: 4, TotalReviews: 66},
	}, rows)

	rows, err = New(tampa(), WithLimits(Limits{TopCities: 1})).TopCities(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCategories(t *testing.T) {
	rows, err := New(tampa()).Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []CategoryName{{"Bars"}, {"Cafes"}, {"Restaurants"}}, rows)
}

func TestCategoryBusinesses(t *testing.T) {
	s := New(tampa())
	rows, err := s.CategoryBusinesses(context.Background(), CategoryParams{Category: "Restaurants"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, CategoryBusiness{
		BusinessID: "b1", Name: "Cafe One", Address: "1 Main St", Stars: 4.5,
		PostalCode: "33601", City: "Tampa", ReviewNum: 3,
	}, rows[0])
	assert.Equal(t, "b2", rows[1].BusinessID)

	_, err = s.CategoryBusinesses(context.Background(), CategoryParams{Category: "Zoos"})
	assert.ErrorIs(t, err, ErrNoData)

	_, err = s.CategoryBusinesses(context.Background(), CategoryParams{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBusinessProfile(t *testing.T) {
	s := New(tampa())
	rows, err := s.BusinessProfile(context.Background(), BusinessParams{BusinessID: "b1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	p := rows[0]
	assert.Equal(t, "Cafe One", p.Name)
	assert.Equal(t, 4.5, p.AvgStar)
	assert.Equal(t, 3, p.ReviewCount)
	assert.Equal(t, []int{0, 0, 1, 1, 1}, []int{p.Star1Count, p.Star2Count, p.Star3Count, p.Star4Count, p.Star5Count})
	require.NotNil(t, p.MostUsefulText)
	assert.Equal(t, "detailed", *p.MostUsefulText)
	assert.Equal(t, 5, *p.MostUsefulCount)
	assert.Equal(t, "detailed", p.Cells()[10])

	rows, err = s.BusinessProfile(context.Background(), BusinessParams{BusinessID: "b4"})
	require.NoError(t, err)
	assert.Zero(t, rows[0].ReviewCount)
	assert.Nil(t, rows[0].MostUsefulText)
	assert.Equal(t, "", rows[0].Cells()[11])

	_, err = s.BusinessProfile(context.Background(), BusinessParams{BusinessID: "missing"})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRecommend(t *testing.T) {
	s := New(tampa())
	ctx := context.Background()

	rows, err := s.Recommend(ctx, RecommendParams{City: "Tampa"})
	require.NoError(t, err)
	got := make([][2]string, len(rows))
	for i, r := range rows {
		got[i] = [2]string{r.BusinessID, r.Category}
	}
	assert.Equal(t, [][2]string{
		{"b1", "Cafes"}, {"b1", "Restaurants"}, {"b4", "Restaurants"},
		{"b2", "Restaurants"}, {"b2", "Bars"}, {"b3", "Bars"},
	}, got)
	assert.Equal(t, "Open", rows[0].Availability)
	assert.Equal(t, "Closed", rows[3].Availability)

	rows, err = s.Recommend(ctx, RecommendParams{City: "Tampa", Category: "Restaurants", Availability: AvailabilityClosed})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b2", rows[0].BusinessID)

	rows, err = s.Recommend(ctx, RecommendParams{City: "Tampa", MinReviews: 5, MaxReviews: 20})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b1", rows[0].BusinessID)

	rows, err = New(tampa(), WithLimits(Limits{Recommend: 2})).Recommend(ctx, RecommendParams{City: "Tampa"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRecommendValidation(t *testing.T) {
	s := New(tampa())
	ctx := context.Background()

	_, err := s.Recommend(ctx, RecommendParams{City: "Tampa", Availability: "maybe"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "availability", verr.Field)

	_, err = s.Recommend(ctx, RecommendParams{City: "Tampa", MinReviews: 10, MaxReviews: 5})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Recommend(ctx, RecommendParams{City: "Tampa", MinReviews: -1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Recommend(ctx, RecommendParams{City: "Tampa", Category: "Zoos"})
	assert.ErrorIs(t, err, ErrNoData)
}
