/**
 * @description
 * Shared pieces of the data access layer: the sentinel errors callers match
 * on and the interfaces the application layer consumes. The concrete
 * repositories in this package run against a pgx connection pool; the schema
 * itself lives in Supabase migrations, so no DDL is issued here.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/HGJ777/IdeaVault/internal/domain"
)

// Sentinel errors returned when a row is missing or not owned by the caller.
var (
	ErrIdeaNotFound         = errors.New("idea not found")
	ErrIdeaUpdateNotFound   = errors.New("idea update not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// IdeaRepository defines database operations on ideas and their updates.
type IdeaRepository interface {
	CreateIdea(ctx context.Context, idea *domain.Idea) (*domain.Idea, error)
	GetIdeaByID(ctx context.Context, id string) (*domain.Idea, error)
	GetIdeaForOwner(ctx context.Context, id, userID string) (*domain.Idea, error)
	ListPublicIdeas(ctx context.Context, filter domain.IdeaFilter) ([]domain.Idea, error)
	ListIdeasByUser(ctx context.Context, userID string) ([]domain.Idea, error)
	UpdateIdeaCategories(ctx context.Context, id, userID, category string, tags []string) error
	MarkIdeaPublished(ctx context.Context, id, userID, subscriptionID, priceID string) error
	SetPendingSubscription(ctx context.Context, id, userID, subscriptionID, priceID string) error
	SetBillingActive(ctx context.Context, id, userID, subscriptionID, priceID string) error
	SetBillingPastDue(ctx context.Context, id, userID string) error
	RevertIdeaToPrivate(ctx context.Context, id, userID string) error
	DeleteIdea(ctx context.Context, id, userID string) error
	IncrementViews(ctx context.Context, id string) error
	GetUserIdeaStats(ctx context.Context, userID string) (*domain.IdeaStats, error)
	DeleteStalePendingIdeas(ctx context.Context, cutoff time.Time) (int64, error)

	CreateIdeaUpdate(ctx context.Context, update *domain.IdeaUpdate) (*domain.IdeaUpdate, error)
	ListIdeaUpdates(ctx context.Context, ideaID string) ([]domain.IdeaUpdate, error)
	GetIdeaUpdate(ctx context.Context, id, userID string) (*domain.IdeaUpdate, error)
	EditIdeaUpdate(ctx context.Context, id, userID, content, updateType string) error
	DeleteIdeaUpdate(ctx context.Context, id, userID string) error
}

// MessageRepository defines database operations on inquiry messages.
type MessageRepository interface {
	CreateWithNotification(ctx context.Context, msg *domain.Message, n *domain.Notification) (*domain.Message, error)
	ListByRecipient(ctx context.Context, userID string, filter domain.MessageFilter) ([]domain.Message, error)
	GetByID(ctx context.Context, id, recipientID string) (*domain.Message, error)
	UpdateStatus(ctx context.Context, id, recipientID, status string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// NotificationRepository defines database operations on notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, filter domain.NotificationFilter) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SubscriptionRepository defines database operations on user_subscriptions.
type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.UserSubscription, error)
	Upsert(ctx context.Context, sub *domain.UserSubscription) (*domain.UserSubscription, error)
	SetTotalMonthlyCost(ctx context.Context, userID string, cost float64) error
}
