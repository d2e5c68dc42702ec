// Package jobs runs background maintenance: the periodic cache sweep
// and TTL cleanup of the extraction-attempt log, so neither the cache
// nor the database grows without bound.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"jobfetch/internal/cache"
	"jobfetch/internal/config"
	"jobfetch/internal/metrics"
	"jobfetch/internal/store"
)

// retentionSchedule runs the attempt cleanup once a day, off-peak.
const retentionSchedule = "13 3 * * *"

// Scheduler owns the cron instance so callers can stop it on shutdown.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// StartScheduler registers and starts the maintenance jobs. The
// retention job is only registered when enabled and a store exists.
func StartScheduler(cfg *config.Config, descCache cache.Cache, st *store.Store, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New()

	sweepEvery := cfg.Cache.SweepIntervalMinutes
	if sweepEvery <= 0 {
		sweepEvery = 60
	}
	sweepSpec := fmt.Sprintf("@every %dm", sweepEvery)
	if _, err := c.AddFunc(sweepSpec, func() {
		purged := descCache.Sweep(context.Background())
		metrics.RecordCacheSweep(purged)
		if purged > 0 {
			logger.Info("cache sweep", "purged", purged)
		}
	}); err != nil {
		return nil, fmt.Errorf("cache sweep schedule: %w", err)
	}

	if cfg.Retention.Enabled && st != nil {
		if _, err := c.AddFunc(retentionSchedule, func() {
			deleted, err := CleanupExpiredAttempts(context.Background(), cfg, st)
			if err != nil {
				logger.Warn("attempt retention cleanup failed", "error", err)
				return
			}
			if deleted > 0 {
				logger.Info("attempt retention cleanup", "deleted", deleted)
			}
		}); err != nil {
			return nil, fmt.Errorf("retention schedule: %w", err)
		}
	}

	c.Start()
	return &Scheduler{cron: c, logger: logger}, nil
}

// Stop halts the scheduler; running jobs finish first.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// CleanupExpiredAttempts deletes attempt records older than the
// configured retention window and reports how many went.
func CleanupExpiredAttempts(ctx context.Context, cfg *config.Config, st *store.Store) (int64, error) {
	days := cfg.Retention.AttemptDays
	if days <= 0 {
		days = 90
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	deleted, err := st.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		metrics.RecordRetentionAttempts(deleted)
	}
	return deleted, nil
}
