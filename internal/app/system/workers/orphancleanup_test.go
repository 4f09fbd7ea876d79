package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/facultrack/internal/app/services/purge"
	"go.uber.org/zap"
)

type fakeCleaner struct {
	calls atomic.Int32
	err   error
}

func (f *fakeCleaner) CleanupInvalidUsers(ctx context.Context) (purge.Result, error) {
	f.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return purge.Result{}, errors.New("expected a deadline")
	}
	return purge.Result{Users: 1}, f.err
}

func TestOrphanCleanup_RunsOnTicker(t *testing.T) {
	c := &fakeCleaner{}
	w := NewOrphanCleanup(c, zap.NewNop(), 10*time.Millisecond, time.Second)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for c.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()

	if c.calls.Load() < 2 {
		t.Errorf("expected at least 2 sweeps, got %d", c.calls.Load())
	}

	after := c.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if c.calls.Load() != after {
		t.Error("worker kept running after Stop")
	}
}

func TestOrphanCleanup_ErrorDoesNotStopWorker(t *testing.T) {
	c := &fakeCleaner{err: errors.New("boom")}
	w := NewOrphanCleanup(c, zap.NewNop(), 10*time.Millisecond, time.Second)
	w.Start()
	defer w.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for c.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.calls.Load() < 2 {
		t.Errorf("expected sweeps to continue after an error, got %d", c.calls.Load())
	}
}

func TestOrphanCleanup_StopTwice(t *testing.T) {
	w := NewOrphanCleanup(&fakeCleaner{}, zap.NewNop(), time.Hour, time.Second)
	w.Start()
	w.Stop()
	w.Stop()
}
