package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const gcDiscardRatio = 0.5

// ValueLogGC reclaims badger value log space left by group rewrites.
type ValueLogGC struct {
	db       *badger.DB
	interval time.Duration
	log      *slog.Logger
}

func NewValueLogGC(db *badger.DB, interval time.Duration, log *slog.Logger) *ValueLogGC {
	return &ValueLogGC{db: db, interval: interval, log: log}
}

func (w *ValueLogGC) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.collect(ctx); err != nil {
				return err
			}
		}
	}
}

// collect rewrites value log files until badger reports nothing left to reclaim.
func (w *ValueLogGC) collect(ctx context.Context) error {
	rewrites := 0
	for ctx.Err() == nil {
		err := w.db.RunValueLogGC(gcDiscardRatio)
		switch {
		case err == nil:
			rewrites++
		case stderrors.Is(err, badger.ErrNoRewrite), stderrors.Is(err, badger.ErrRejected):
			if rewrites > 0 {
				w.log.Debug("Value log garbage collected", "rewrites", rewrites)
			}
			return nil
		default:
			return err
		}
	}
	return nil
}
