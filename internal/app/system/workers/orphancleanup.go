// internal/app/system/workers/orphancleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/facultrack/internal/app/services/purge"
	"go.uber.org/zap"
)

// Cleaner removes users that fail validation. *purge.Service satisfies it.
type Cleaner interface {
	CleanupInvalidUsers(ctx context.Context) (purge.Result, error)
}

// OrphanCleanup is a background worker that periodically purges users with
// a missing name, email or role, along with their section membership and
// chats.
type OrphanCleanup struct {
	cleaner  Cleaner
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewOrphanCleanup creates the worker.
//
// Parameters:
//   - cleaner: usually the purge service
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 1 hour)
//   - timeout: deadline for a single sweep
func NewOrphanCleanup(cleaner Cleaner, logger *zap.Logger, interval, timeout time.Duration) *OrphanCleanup {
	return &OrphanCleanup{
		cleaner:  cleaner,
		log:      logger,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *OrphanCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("orphan cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *OrphanCleanup) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("orphan cleanup worker stopped")
	})
}

func (w *OrphanCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *OrphanCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	res, err := w.cleaner.CleanupInvalidUsers(ctx)
	if err != nil {
		w.log.Error("failed to purge invalid users", zap.Error(err))
		return
	}

	if res.Users > 0 {
		w.log.Info("orphan cleanup removed users", zap.Int64("count", res.Users))
	}
}
