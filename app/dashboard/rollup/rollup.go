// Package rollup keeps the weekly and monthly rollup tables fresh on a cron
// schedule. Each tick refreshes both granularities in parallel on a small
// bounded pool; a refresh is an idempotent INSERT..SELECT, so overlapping
// ticks are harmless.
package rollup

import (
	"context"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/pkgpulse/pkgpulse/pkg/db/downloads"
	"github.com/pkgpulse/pkgpulse/pkg/utils"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	Store  downloads.Store
	Logger *zap.Logger

	// Cron triggers RefreshAll according to CronSpec (seconds field included).
	Cron     *cron.Cron
	CronSpec string
}

// New builds a scheduler; the spec comes from ROLLUP_CRON (default: hourly).
func New(store downloads.Store, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Store:    store,
		Logger:   logger.With(zap.String("component", "rollup")),
		CronSpec: utils.Env("ROLLUP_CRON", "0 0 * * * *"),
	}
}

// Start registers the cron entry and launches the scheduler. An immediate
// refresh runs first so a fresh deployment has populated rollups.
func (s *Scheduler) Start(ctx context.Context) error {
	s.Cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	if _, err := s.Cron.AddFunc(s.CronSpec, func() { s.RefreshAll(ctx) }); err != nil {
		return err
	}

	go s.RefreshAll(ctx)
	s.Cron.Start()
	s.Logger.Info("Rollup scheduler started", zap.String("cron", s.CronSpec))
	return nil
}

// Stop halts the scheduler and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	if s.Cron == nil {
		return
	}
	stopCtx := s.Cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		s.Logger.Warn("Timed out waiting for running rollup refresh")
	}
}

// RefreshAll recomputes both rollup granularities in parallel.
func (s *Scheduler) RefreshAll(ctx context.Context) {
	start := time.Now()

	pool := pond.NewPool(2)
	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for _, granularity := range []string{downloads.GranularityWeekly, downloads.GranularityMonthly} {
		granularity := granularity
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				return
			}
			if err := s.Store.RefreshRollup(groupCtx, granularity); err != nil {
				s.Logger.Error("Rollup refresh failed",
					zap.String("granularity", granularity),
					zap.Error(err))
			}
		})
	}

	_ = group.Wait()
	pool.StopAndWait()

	s.Logger.Debug("Rollup refresh tick finished", zap.Duration("took", time.Since(start)))
}
