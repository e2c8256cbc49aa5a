package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) Sweep() (int, int) {
	s.calls.Add(1)
	return 1, 0
}

func TestSweepWorker_RunsUntilCancelled(t *testing.T) {
	sweeper := &countingSweeper{}
	sw := NewSweepWorker(sweeper, 10*time.Millisecond, logrus.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 sweeps, got %d", sweeper.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
