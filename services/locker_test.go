package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGroupLocker(t *testing.T) {
	t.Run("should serialize holders of the same group", func(t *testing.T) {
		req := require.New(t)
		locker := newGroupLocker()
		groupID := uuid.New()

		var mu sync.Mutex
		inside, maxInside := 0, 0
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.lock(context.Background(), groupID)
				if err != nil {
					t.Errorf("lock: %v", err)
					return
				}
				mu.Lock()
				inside++
				maxInside = max(maxInside, inside)
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				unlock()
			}()
		}
		wg.Wait()

		req.Equal(1, maxInside)
		req.Zero(locker.size())
	})

	t.Run("should not block other groups", func(t *testing.T) {
		req := require.New(t)
		locker := newGroupLocker()

		unlockFirst, err := locker.lock(context.Background(), uuid.New())
		req.NoError(err)
		defer unlockFirst()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		unlockSecond, err := locker.lock(ctx, uuid.New())
		req.NoError(err)
		unlockSecond()
		req.Equal(1, locker.size())
	})

	t.Run("should give up when the context is done", func(t *testing.T) {
		req := require.New(t)
		locker := newGroupLocker()
		groupID := uuid.New()

		unlock, err := locker.lock(context.Background(), groupID)
		req.NoError(err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = locker.lock(ctx, groupID)
		req.ErrorIs(err, context.DeadlineExceeded)

		unlock()
		req.Zero(locker.size())
	})
}
