//go:build integration

package recommend_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"librarycard/internal/card"
	"librarycard/internal/recommend"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	cache := recommend.NewRedisCache(client, "test", time.Minute)

	_, ok, err := cache.Get(ctx, "astrophysics")
	require.NoError(t, err)
	assert.False(t, ok)

	want := recommend.Suggestions{
		Recommendations: []card.CourseRecommendation{{Course: "BSc in Astronomy", Reason: "r", Semester: "1st"}},
		Message:         "m",
	}
	require.NoError(t, cache.Set(ctx, "astrophysics", want))

	got, ok, err := cache.Get(ctx, "astrophysics")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	ttl, err := client.TTL(ctx, "test:suggestions:astrophysics").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
