//go:build integration

package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	addr, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(addr)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisTracker(t *testing.T) {
	client := newRedisClient(t)
	tracker := NewRedisTracker(client)
	ctx := context.Background()

	t.Run("should not be on cooldown without an entry", func(t *testing.T) {
		req := require.New(t)
		onCooldown, err := tracker.IsOnCooldown(ctx, uuid.New(), "bob", time.Now())
		req.NoError(err)
		req.False(onCooldown)
	})

	t.Run("should apply the 48h window", func(t *testing.T) {
		req := require.New(t)
		groupID := uuid.New()
		leftAt := time.Now()
		req.NoError(tracker.RecordLeave(ctx, groupID, "bob", leftAt))

		onCooldown, err := tracker.IsOnCooldown(ctx, groupID, "bob", leftAt.Add(47*time.Hour+59*time.Minute))
		req.NoError(err)
		req.True(onCooldown)

		onCooldown, err = tracker.IsOnCooldown(ctx, groupID, "bob", leftAt.Add(48*time.Hour+time.Minute))
		req.NoError(err)
		req.False(onCooldown)
	})

	t.Run("should let redis expire the entry", func(t *testing.T) {
		req := require.New(t)
		groupID := uuid.New()
		req.NoError(tracker.RecordLeave(ctx, groupID, "carol", time.Now()))

		ttl, err := client.TTL(ctx, redisKey(groupID, "carol")).Result()
		req.NoError(err)
		req.Greater(ttl, 47*time.Hour)
		req.LessOrEqual(ttl, Duration)
	})
}
