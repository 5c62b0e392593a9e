package services

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"secure-chat/cooldown"
	"secure-chat/observability"
	"secure-chat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	alice = "alice"
	bob   = "bob"
	carol = "carol"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelError)
}

func testMetrics() *observability.Metrics {
	return observability.NewMetrics(prometheus.NewRegistry())
}

type membershipFixture struct {
	svc     *MembershipService
	groups  *repositories.GroupRepository
	tracker *cooldown.MemoryTracker
	clock   *manualClock
	metrics *observability.Metrics
	db      *badger.DB
}

func newMembershipFixture(t *testing.T) membershipFixture {
	t.Helper()
	db := openTestDB(t)
	clock := newManualClock()
	groups := repositories.NewGroupRepository(db, testLogger())
	tracker := cooldown.NewMemoryTracker()
	metrics := testMetrics()
	svc := NewMembershipService(groups, tracker, metrics, testLogger(), clock.Now, 100)
	return membershipFixture{svc: svc, groups: groups, tracker: tracker, clock: clock, metrics: metrics, db: db}
}
