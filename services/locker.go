package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// groupLocker gives each group its own mutual exclusion so that membership
// transitions on one group run one at a time while other groups proceed.
// Waiting for the lock stops as soon as the caller's context is done.
type groupLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*groupLock
}

type groupLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newGroupLocker() *groupLocker {
	return &groupLocker{locks: make(map[uuid.UUID]*groupLock)}
}

// lock blocks until the group is free and returns the matching unlock.
func (l *groupLocker) lock(ctx context.Context, groupID uuid.UUID) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[groupID]
	if !ok {
		entry = &groupLock{sem: semaphore.NewWeighted(1)}
		l.locks[groupID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	if err := entry.sem.Acquire(ctx, 1); err != nil {
		l.release(groupID, entry, false)
		return nil, err
	}
	return func() { l.release(groupID, entry, true) }, nil
}

func (l *groupLocker) release(groupID uuid.UUID, entry *groupLock, held bool) {
	if held {
		entry.sem.Release(1)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, groupID)
	}
}

func (l *groupLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
