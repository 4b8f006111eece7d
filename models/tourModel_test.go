package models

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func validTour() *Tour {
	return &Tour{
		Name:         strPtr("The Forest Hiker"),
		Duration:     floatPtr(5),
		MaxGroupSize: intPtr(25),
		Difficulty:   strPtr("easy"),
		Price:        floatPtr(397),
		Summary:      strPtr("Breathtaking hike through the Canadian Banff National Park"),
		ImageCover:   strPtr("tour-1-cover.jpg"),
	}
}

func TestTourDefaults(t *testing.T) {
	tour := validTour()
	tour.Name = strPtr("  The Forest Hiker  ")
	tour.StartLocation = &Location{Coordinates: []float64{-115.570154, 51.178456}}
	tour.Locations = []Location{{Coordinates: []float64{-116.214531, 51.417611}, Day: 1}}

	require.NoError(t, tourDefaults(context.Background(), tour))

	assert.Equal(t, "The Forest Hiker", *tour.Name)
	assert.Equal(t, 4.5, *tour.RatingsAverage)
	assert.Equal(t, 0, *tour.RatingQuantity)
	require.NotNil(t, tour.SecretTour)
	assert.False(t, *tour.SecretTour)
	assert.False(t, tour.CreatedAt.IsZero())
	assert.Equal(t, "Point", tour.StartLocation.Type)
	assert.Equal(t, "Point", tour.Locations[0].Type)
}

func TestTourDefaultsRoundsProvidedRating(t *testing.T) {
	tour := validTour()
	tour.RatingsAverage = floatPtr(4.666666)

	require.NoError(t, tourDefaults(context.Background(), tour))

	assert.Equal(t, 4.7, *tour.RatingsAverage)
}

func TestTourDefaultsKeepsExistingCreatedAt(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tour := validTour()
	tour.CreatedAt = created

	require.NoError(t, tourDefaults(context.Background(), tour))

	assert.Equal(t, created, tour.CreatedAt)
}

func TestSlugifyTour(t *testing.T) {
	tour := validTour()

	require.NoError(t, slugifyTour(context.Background(), tour))

	assert.False(t, tour.ID.IsZero())
	assert.Equal(t, "the-forest-hiker", tour.Slug)
}

func TestTourValidationRequiredFields(t *testing.T) {
	assert.Error(t, Validate.Struct(Tour{}))
	assert.NoError(t, Validate.Struct(validTour()))
}

func TestTourValidationDifficultyEnum(t *testing.T) {
	tour := validTour()
	tour.Difficulty = strPtr("impossible")

	assert.Error(t, Validate.Struct(tour))
}

func TestTourValidationDiscountBelowPrice(t *testing.T) {
	tour := validTour()
	tour.PriceDiscount = floatPtr(100)
	assert.NoError(t, Validate.Struct(tour))

	tour.PriceDiscount = floatPtr(397)
	assert.Error(t, Validate.Struct(tour))

	tour.PriceDiscount = floatPtr(500)
	assert.Error(t, Validate.Struct(tour))
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.7, RoundRating(4.666666))
	assert.Equal(t, 4.5, RoundRating(4.45))
	assert.Equal(t, 5.0, RoundRating(4.96))
	assert.Equal(t, 1.0, RoundRating(1))
}

func TestTourPresentComputesDurationWeeks(t *testing.T) {
	tour := validTour()
	tour.Duration = floatPtr(14)

	Tours.Present(tour)

	assert.Equal(t, 2.0, tour.DurationWeeks)
}
