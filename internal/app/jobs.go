/**
 * @description
 * Scheduled job implementations: sweeping abandoned checkouts and pruning old
 * read notifications.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/HGJ777/IdeaVault/internal/store"
)

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	ideas         store.IdeaRepository
	notifications store.NotificationRepository
	logger        *slog.Logger

	pendingBillingMaxAge  time.Duration
	notificationRetention time.Duration
}

// NewJobs creates a new Jobs runner.
func NewJobs(ideas store.IdeaRepository, notifications store.NotificationRepository, logger *slog.Logger, pendingBillingMaxAge, notificationRetention time.Duration) *Jobs {
	return &Jobs{
		ideas:                 ideas,
		notifications:         notifications,
		logger:                logger,
		pendingBillingMaxAge:  pendingBillingMaxAge,
		notificationRetention: notificationRetention,
	}
}

// SweepPendingBilling deletes ideas whose checkout was started but never
// confirmed within the allowed window. This is the batch counterpart of the
// compensating delete the checkout flow performs inline: a browser closed
// mid-checkout leaves a public, unbilled row behind, and this job removes it.
func (j *Jobs) SweepPendingBilling() {
	j.logger.Info("starting pending billing sweep")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-j.pendingBillingMaxAge)
	deleted, err := j.ideas.DeleteStalePendingIdeas(ctx, cutoff)
	if err != nil {
		j.logger.Error("pending billing sweep failed", "error", err)
		return
	}
	j.logger.Info("pending billing sweep finished", "deleted", deleted, "cutoff", cutoff)
}

// PruneNotifications deletes read notifications older than the retention
// window.
func (j *Jobs) PruneNotifications() {
	j.logger.Info("starting notification prune")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-j.notificationRetention)
	deleted, err := j.notifications.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("notification prune failed", "error", err)
		return
	}
	j.logger.Info("notification prune finished", "deleted", deleted, "cutoff", cutoff)
}
