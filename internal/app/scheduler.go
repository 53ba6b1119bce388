/**
 * @description
 * Cron scheduler setup for the background jobs.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/HGJ777/IdeaVault/internal/config"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config config.Config
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg config.Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.config.PendingBillingSweepSchedule, s.jobs.SweepPendingBilling); err != nil {
		s.logger.Error("failed to schedule pending billing sweep", "error", err)
	} else {
		s.logger.Info("scheduled pending billing sweep", "schedule", s.config.PendingBillingSweepSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.NotificationPruneSchedule, s.jobs.PruneNotifications); err != nil {
		s.logger.Error("failed to schedule notification prune", "error", err)
	} else {
		s.logger.Info("scheduled notification prune", "schedule", s.config.NotificationPruneSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
