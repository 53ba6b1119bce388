package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/HGJ777/IdeaVault/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweepPendingBilling(t *testing.T) {
	ideas := newFakeIdeaRepo()
	notifications := newFakeNotificationRepo()

	pending := domain.BillingStatusPending
	active := domain.BillingStatusActive

	stale := privateIdea("idea-stale", "user-1")
	stale.IsPrivate = false
	stale.BillingStatus = &pending
	stale.CreatedAt = time.Now().Add(-48 * time.Hour)
	ideas.put(stale)

	fresh := privateIdea("idea-fresh", "user-1")
	fresh.IsPrivate = false
	fresh.BillingStatus = &pending
	fresh.CreatedAt = time.Now().Add(-1 * time.Hour)
	ideas.put(fresh)

	paid := privateIdea("idea-paid", "user-1")
	paid.IsPrivate = false
	paid.BillingStatus = &active
	paid.CreatedAt = time.Now().Add(-48 * time.Hour)
	ideas.put(paid)

	jobs := NewJobs(ideas, notifications, discardLogger(), 24*time.Hour, 30*24*time.Hour)
	jobs.SweepPendingBilling()

	if ideas.get("idea-stale") != nil {
		t.Fatalf("stale pending idea should be swept")
	}
	if ideas.get("idea-fresh") == nil {
		t.Fatalf("fresh pending idea must survive the sweep")
	}
	if ideas.get("idea-paid") == nil {
		t.Fatalf("active idea must survive the sweep regardless of age")
	}
}

func TestPruneNotifications(t *testing.T) {
	ideas := newFakeIdeaRepo()
	notifications := newFakeNotificationRepo()

	old := &domain.Notification{ID: "n-old", UserID: "u", Type: domain.NotificationTypeSystem, Read: true}
	if _, err := notifications.Create(context.Background(), old); err != nil {
		t.Fatalf("seed: %v", err)
	}
	notifications.notifications["n-old"].CreatedAt = time.Now().Add(-60 * 24 * time.Hour)

	oldUnread := &domain.Notification{ID: "n-unread", UserID: "u", Type: domain.NotificationTypeSystem}
	if _, err := notifications.Create(context.Background(), oldUnread); err != nil {
		t.Fatalf("seed: %v", err)
	}
	notifications.notifications["n-unread"].CreatedAt = time.Now().Add(-60 * 24 * time.Hour)

	recent := &domain.Notification{ID: "n-recent", UserID: "u", Type: domain.NotificationTypeSystem, Read: true}
	if _, err := notifications.Create(context.Background(), recent); err != nil {
		t.Fatalf("seed: %v", err)
	}

	jobs := NewJobs(ideas, notifications, discardLogger(), 24*time.Hour, 30*24*time.Hour)
	jobs.PruneNotifications()

	if _, ok := notifications.notifications["n-old"]; ok {
		t.Fatalf("old read notification should be pruned")
	}
	if _, ok := notifications.notifications["n-unread"]; !ok {
		t.Fatalf("unread notifications are never pruned")
	}
	if _, ok := notifications.notifications["n-recent"]; !ok {
		t.Fatalf("recent notifications must survive")
	}
}
