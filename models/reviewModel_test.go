package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeRatings(t *testing.T) {
	quantity, average := summarizeRatings([]ratingStats{{NRating: 3, AvgRating: 4.666666}})

	assert.Equal(t, 3, quantity)
	assert.Equal(t, 4.7, average)
}

func TestSummarizeRatingsRevertsToBaseline(t *testing.T) {
	quantity, average := summarizeRatings(nil)

	assert.Equal(t, 0, quantity)
	assert.Equal(t, defaultRatingsAverage, average)
}
