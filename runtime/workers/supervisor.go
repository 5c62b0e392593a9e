//go:generate go run go.uber.org/mock/mockgen -source=supervisor.go -destination=../../mocks/mock_worker.go -package=mocks
package workers

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"secure-chat/errors"
)

const waitTimeBeforeRestart = 200 * time.Millisecond

// Worker doesn't protect itself.
// Returning nil means it finished and must not be restarted.
type Worker interface {
	Run(ctx context.Context) error
}

// Supervisor runs each worker in its own goroutine, restarts the ones that
// fail or panic, and returns from Run once all of them have stopped.
type Supervisor struct {
	wg      sync.WaitGroup
	log     *slog.Logger
	workers []Worker
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{log: log}
}

func (s *Supervisor) Add(worker ...Worker) *Supervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run blocks until ctx is cancelled and every worker returned.
func (s *Supervisor) Run(ctx context.Context) {
	for _, worker := range s.workers {
		s.start(ctx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) start(ctx context.Context, worker Worker) {
	s.wg.Add(1)
	name := workerName(worker)

	go func() {
		defer s.wg.Done()
		for {
			err := s.runOnce(ctx, worker, name)
			if err == nil {
				s.log.Info("Worker finished", "name", name)
				return
			}
			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", name)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", name, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(waitTimeBeforeRestart):
			}
		}
	}()
}

func (s *Supervisor) runOnce(ctx context.Context, worker Worker, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Worker panicked", "name", name, "panic", r)
			err = errors.ErrWorkerPanic
		}
	}()
	return worker.Run(ctx)
}

func workerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
