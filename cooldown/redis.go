package cooldown

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"secure-chat/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cooldown:"

// RedisTracker shares cooldowns between service instances.
// Each entry expires on its own once the cooldown has elapsed.
type RedisTracker struct {
	client *redis.Client
}

func NewRedisTracker(client *redis.Client) *RedisTracker {
	return &RedisTracker{client: client}
}

func redisKey(groupID uuid.UUID, userID string) string {
	return keyPrefix + groupID.String() + ":" + userID
}

func (r *RedisTracker) RecordLeave(ctx context.Context, groupID uuid.UUID, userID string, at time.Time) error {
	value := strconv.FormatInt(at.UnixNano(), 10)
	if err := r.client.Set(ctx, redisKey(groupID, userID), value, Duration).Err(); err != nil {
		return fmt.Errorf("%w: record cooldown: %v", errors.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *RedisTracker) IsOnCooldown(ctx context.Context, groupID uuid.UUID, userID string, now time.Time) (bool, error) {
	value, err := r.client.Get(ctx, redisKey(groupID, userID)).Result()
	if stderrors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: read cooldown: %v", errors.ErrStoreUnavailable, err)
	}
	nanos, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false, fmt.Errorf("%w: corrupt cooldown entry: %v", errors.ErrStoreUnavailable, err)
	}
	return now.Sub(time.Unix(0, nanos)) < Duration, nil
}
