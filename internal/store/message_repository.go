/**
 * @description
 * pgx-backed repository for inquiry messages. The insert of a message and the
 * notification for its recipient happen inside one transaction: a message row
 * without its notification (or the reverse) cannot be observed.
 */
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HGJ777/IdeaVault/internal/domain"
)

const messageColumns = `
    id, sender_id, recipient_id, idea_id, subject, message, inquiry_type,
    budget, timeline, company_name, contact_email, status, created_at
`

// PostgresMessageRepository handles database operations for messages.
type PostgresMessageRepository struct {
	db *pgxpool.Pool
}

// NewPostgresMessageRepository creates a new message repository.
func NewPostgresMessageRepository(db *pgxpool.Pool) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

// CreateWithNotification inserts the message row and the recipient's
// notification row atomically and returns the stored message.
func (r *PostgresMessageRepository) CreateWithNotification(ctx context.Context, msg *domain.Message, n *domain.Notification) (*domain.Message, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var created domain.Message
	insertMessage := `
        INSERT INTO messages (
            id, sender_id, recipient_id, idea_id, subject, message, inquiry_type,
            budget, timeline, company_name, contact_email, status
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING ` + messageColumns
	err = tx.QueryRow(ctx, insertMessage,
		msg.ID,
		msg.SenderID,
		msg.RecipientID,
		msg.IdeaID,
		msg.Subject,
		msg.Message,
		msg.InquiryType,
		msg.Budget,
		msg.Timeline,
		msg.CompanyName,
		msg.ContactEmail,
		msg.Status,
	).Scan(
		&created.ID,
		&created.SenderID,
		&created.RecipientID,
		&created.IdeaID,
		&created.Subject,
		&created.Message,
		&created.InquiryType,
		&created.Budget,
		&created.Timeline,
		&created.CompanyName,
		&created.ContactEmail,
		&created.Status,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	insertNotification := `
        INSERT INTO notifications (id, user_id, type, title, message, related_id, related_type, read)
        VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
    `
	relatedID := created.ID
	if _, err := tx.Exec(ctx, insertNotification,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		relatedID,
		n.RelatedType,
	); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &created, nil
}

// ListByRecipient returns the user's inbox, newest first, with optional
// search and status filters.
func (r *PostgresMessageRepository) ListByRecipient(ctx context.Context, userID string, filter domain.MessageFilter) ([]domain.Message, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
        SELECT ` + messageColumns + `
        FROM messages
        WHERE recipient_id = $1
          AND ($2 = '' OR subject ILIKE '%' || $2 || '%' OR contact_email ILIKE '%' || $2 || '%' OR company_name ILIKE '%' || $2 || '%')
          AND ($3 = '' OR status = $3)
        ORDER BY created_at DESC
        LIMIT $4 OFFSET $5
    `
	rows, err := r.db.Query(ctx, query, userID, filter.Search, filter.Status, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID, &m.SenderID, &m.RecipientID, &m.IdeaID, &m.Subject, &m.Message,
			&m.InquiryType, &m.Budget, &m.Timeline, &m.CompanyName, &m.ContactEmail,
			&m.Status, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// GetByID retrieves a message only if the caller is its recipient.
func (r *PostgresMessageRepository) GetByID(ctx context.Context, id, recipientID string) (*domain.Message, error) {
	var m domain.Message
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1 AND recipient_id = $2`
	err := r.db.QueryRow(ctx, query, id, recipientID).Scan(
		&m.ID, &m.SenderID, &m.RecipientID, &m.IdeaID, &m.Subject, &m.Message,
		&m.InquiryType, &m.Budget, &m.Timeline, &m.CompanyName, &m.ContactEmail,
		&m.Status, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

// UpdateStatus moves a message through sent -> read -> replied / archived.
func (r *PostgresMessageRepository) UpdateStatus(ctx context.Context, id, recipientID, status string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE messages SET status = $3 WHERE id = $1 AND recipient_id = $2
    `, id, recipientID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// CountUnread counts messages still in 'sent' for the user's inbox badge.
func (r *PostgresMessageRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND status = 'sent'
    `, userID).Scan(&count)
	return count, err
}
