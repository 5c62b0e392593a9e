package workers

import (
	"context"
	"log/slog"
	"time"
)

type pruner interface {
	Prune(now time.Time) int
}

// CooldownSweeper periodically drops expired cooldown entries from the
// in-memory tracker, which otherwise only forgets an entry when it is looked up.
type CooldownSweeper struct {
	tracker  pruner
	interval time.Duration
	now      func() time.Time
	log      *slog.Logger
}

func NewCooldownSweeper(tracker pruner, interval time.Duration, now func() time.Time, log *slog.Logger) *CooldownSweeper {
	return &CooldownSweeper{tracker: tracker, interval: interval, now: now, log: log}
}

func (w *CooldownSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := w.tracker.Prune(w.now()); removed > 0 {
				w.log.Debug("Expired cooldowns pruned", "count", removed)
			}
		}
	}
}
