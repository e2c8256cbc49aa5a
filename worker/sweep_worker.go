package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"verifyproxy/utils"
)

// Sweeper evicts stale rate-limit state and reports how much was removed.
type Sweeper interface {
	Sweep() (entries int, bans int)
}

type SweepWorker struct {
	sweeper  Sweeper
	interval time.Duration
	logger   logrus.FieldLogger
}

func NewSweepWorker(sweeper Sweeper, interval time.Duration, logger logrus.FieldLogger) *SweepWorker {
	return &SweepWorker{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Start runs until ctx is cancelled. It never touches request handling directly.
func (sw *SweepWorker) Start(ctx context.Context) {
	sw.logger.Info("Sweep worker started")
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sw.logger.Info("Sweep worker shutting down...")
			return
		case <-ticker.C:
			entries, bans := sw.sweeper.Sweep()
			if entries > 0 || bans > 0 {
				utils.LogEvent("sweep_completed", map[string]interface{}{
					"entries_evicted": entries,
					"bans_evicted":    bans,
				})
			}
		}
	}
}
