package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCacheKeyStableAcrossParamOrder(t *testing.T) {
	a := mustParseQuery(t, "sort=price&limit=5&difficulty=easy")
	b := mustParseQuery(t, "difficulty=easy&limit=5&sort=price")

	assert.Equal(t, QueryCacheKey("tours", a), QueryCacheKey("tours", b))
}

func TestQueryCacheKeyDiffersPerQuery(t *testing.T) {
	a := mustParseQuery(t, "limit=5")
	b := mustParseQuery(t, "limit=10")

	assert.NotEqual(t, QueryCacheKey("tours", a), QueryCacheKey("tours", b))
	assert.NotEqual(t, QueryCacheKey("tours", a), QueryCacheKey("bookings", a))
}

func TestCacheNoopWithoutClient(t *testing.T) {
	require.Nil(t, RedisClient)

	hit, err := GetCached(context.Background(), "tours:key", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, SetCached(context.Background(), "tours:key", "value", time.Minute))
}
