/**
 * @description
 * pgx-backed repository for the notifications table.
 */
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HGJ777/IdeaVault/internal/domain"
)

// PostgresNotificationRepository handles database operations for notifications.
type PostgresNotificationRepository struct {
	db *pgxpool.Pool
}

// NewPostgresNotificationRepository creates a new notification repository.
func NewPostgresNotificationRepository(db *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// Create inserts a notification row and returns the stored record.
func (r *PostgresNotificationRepository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	var created domain.Notification
	query := `
        INSERT INTO notifications (id, user_id, type, title, message, related_id, related_type, read)
        VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
        RETURNING id, user_id, type, title, message, related_id, related_type, read, created_at
    `
	err := r.db.QueryRow(ctx, query,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		n.RelatedID,
		n.RelatedType,
	).Scan(
		&created.ID,
		&created.UserID,
		&created.Type,
		&created.Title,
		&created.Message,
		&created.RelatedID,
		&created.RelatedType,
		&created.Read,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListByUser returns the user's notifications, newest first.
func (r *PostgresNotificationRepository) ListByUser(ctx context.Context, userID string, filter domain.NotificationFilter) ([]domain.Notification, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
        SELECT id, user_id, type, title, message, related_id, related_type, read, created_at
        FROM notifications
        WHERE user_id = $1
          AND ($2 = '' OR ($2 = 'unread' AND read = FALSE) OR ($2 = 'read' AND read = TRUE))
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4
    `
	rows, err := r.db.Query(ctx, query, userID, filter.Status, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.RelatedID, &n.RelatedType, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flags a single notification as read.
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2
    `, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification for the user as read.
func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
        UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE
    `, userID)
	return err
}

// Delete removes a notification owned by the user.
func (r *PostgresNotificationRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.db.Exec(ctx, `
        DELETE FROM notifications WHERE id = $1 AND user_id = $2
    `, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// CountUnread counts unread notifications for the navigation badge.
func (r *PostgresNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE
    `, userID).Scan(&count)
	return count, err
}

// DeleteReadOlderThan prunes read notifications past the retention window.
func (r *PostgresNotificationRepository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        DELETE FROM notifications WHERE read = TRUE AND created_at < $1
    `, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
