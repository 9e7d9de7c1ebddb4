package cron

import (
	"context"
	"time"

	"bloodlink/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// NoShowSweeper is the part of the scheduling service the sweep job needs.
type NoShowSweeper interface {
	SweepNoShows(ctx context.Context) (int, error)
}

// StartNoShowSweep registers the no-show sweep on spec and starts the scheduler.
// Stop the returned cron to shut it down.
func StartNoShowSweep(spec string, loc *time.Location, sweeper NoShowSweeper) (*cron.Cron, error) {
	logger := utils.GetLogger()
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := c.AddFunc(spec, SweepJob(sweeper, logger)); err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("[NoShowSweep] Scheduled", zap.String("spec", spec))
	return c, nil
}

// SweepJob runs one sweep with a bounded context.
func SweepJob(sweeper NoShowSweeper, logger *zap.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		marked, err := sweeper.SweepNoShows(ctx)
		if err != nil {
			logger.Error("[NoShowSweep] Sweep failed", zap.Error(err))
			return
		}
		logger.Debug("[NoShowSweep] Sweep finished", zap.Int("marked", marked))
	}
}
