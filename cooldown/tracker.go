//go:generate go run go.uber.org/mock/mockgen -source=tracker.go -destination=../mocks/mock_cooldown_tracker.go -package=mocks
package cooldown

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Duration is how long a user must wait after leaving a private group
// before requesting to join it again.
const Duration = 48 * time.Hour

type ITracker interface {
	RecordLeave(ctx context.Context, groupID uuid.UUID, userID string, at time.Time) error
	IsOnCooldown(ctx context.Context, groupID uuid.UUID, userID string, now time.Time) (bool, error)
}

type entryKey struct {
	groupID uuid.UUID
	userID  string
}

// MemoryTracker keeps last-leave timestamps in process memory.
// Entries are lost on restart and are not shared between instances.
type MemoryTracker struct {
	mu        sync.Mutex
	lastLeave map[entryKey]time.Time
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{lastLeave: make(map[entryKey]time.Time)}
}

func (m *MemoryTracker) RecordLeave(_ context.Context, groupID uuid.UUID, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLeave[entryKey{groupID, userID}] = at
	return nil
}

// IsOnCooldown drops the entry once it has expired.
func (m *MemoryTracker) IsOnCooldown(_ context.Context, groupID uuid.UUID, userID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entryKey{groupID, userID}
	last, ok := m.lastLeave[key]
	if !ok {
		return false, nil
	}
	if now.Sub(last) < Duration {
		return true, nil
	}
	delete(m.lastLeave, key)
	return false, nil
}

// Len returns the number of tracked entries.
func (m *MemoryTracker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lastLeave)
}

// Prune drops every entry whose cooldown has ended at now and returns how many were removed.
func (m *MemoryTracker) Prune(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, last := range m.lastLeave {
		if now.Sub(last) >= Duration {
			delete(m.lastLeave, key)
			removed++
		}
	}
	return removed
}
