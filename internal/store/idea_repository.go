/**
 * @description
 * pgx-backed repository for the ideas and idea_updates tables. All owner-scoped
 * mutations carry `user_id` in the WHERE clause so a caller can never touch
 * another user's rows, regardless of what the service layer checked.
 */
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HGJ777/IdeaVault/internal/domain"
)

const ideaColumns = `
    id, user_id, title, description, category, tags, price, is_private,
    allow_licensing, billing_status, subscription_id, stripe_price_id,
    views, likes, status, created_at, updated_at
`

// PostgresIdeaRepository handles database operations for ideas.
type PostgresIdeaRepository struct {
	db *pgxpool.Pool
}

// NewPostgresIdeaRepository creates a new idea repository.
func NewPostgresIdeaRepository(db *pgxpool.Pool) *PostgresIdeaRepository {
	return &PostgresIdeaRepository{db: db}
}

func scanIdea(row pgx.Row) (*domain.Idea, error) {
	var idea domain.Idea
	err := row.Scan(
		&idea.ID,
		&idea.UserID,
		&idea.Title,
		&idea.Description,
		&idea.Category,
		&idea.Tags,
		&idea.Price,
		&idea.IsPrivate,
		&idea.AllowLicensing,
		&idea.BillingStatus,
		&idea.SubscriptionID,
		&idea.StripePriceID,
		&idea.Views,
		&idea.Likes,
		&idea.Status,
		&idea.CreatedAt,
		&idea.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdeaNotFound
		}
		return nil, err
	}
	return &idea, nil
}

// CreateIdea inserts a new idea row and returns the stored record.
func (r *PostgresIdeaRepository) CreateIdea(ctx context.Context, idea *domain.Idea) (*domain.Idea, error) {
	query := `
        INSERT INTO ideas (
            id, user_id, title, description, category, tags, price, is_private,
            allow_licensing, billing_status, subscription_id, stripe_price_id,
            views, likes, status
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, 0, $13)
        RETURNING ` + ideaColumns
	return scanIdea(r.db.QueryRow(ctx, query,
		idea.ID,
		idea.UserID,
		idea.Title,
		idea.Description,
		idea.Category,
		idea.Tags,
		idea.Price,
		idea.IsPrivate,
		idea.AllowLicensing,
		idea.BillingStatus,
		idea.SubscriptionID,
		idea.StripePriceID,
		idea.Status,
	))
}

// GetIdeaByID retrieves an idea regardless of owner. Visibility rules are
// applied by the service layer.
func (r *PostgresIdeaRepository) GetIdeaByID(ctx context.Context, id string) (*domain.Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE id = $1`
	return scanIdea(r.db.QueryRow(ctx, query, id))
}

// GetIdeaForOwner retrieves an idea only if it belongs to the given user.
func (r *PostgresIdeaRepository) GetIdeaForOwner(ctx context.Context, id, userID string) (*domain.Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE id = $1 AND user_id = $2`
	return scanIdea(r.db.QueryRow(ctx, query, id, userID))
}

// ListPublicIdeas returns gallery listings with optional search, category and
// sort parameters.
func (r *PostgresIdeaRepository) ListPublicIdeas(ctx context.Context, filter domain.IdeaFilter) ([]domain.Idea, error) {
	orderBy := "created_at DESC"
	switch filter.SortBy {
	case "oldest":
		orderBy = "created_at ASC"
	case "popular":
		orderBy = "views DESC"
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
        SELECT ` + ideaColumns + `
        FROM ideas
        WHERE is_private = FALSE
          AND ($1 = '' OR title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
          AND ($2 = '' OR category = $2)
        ORDER BY ` + orderBy + `
        LIMIT $3 OFFSET $4
    `
	rows, err := r.db.Query(ctx, query, filter.Search, filter.Category, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIdeas(rows)
}

// ListIdeasByUser returns every idea owned by a user, newest first.
func (r *PostgresIdeaRepository) ListIdeasByUser(ctx context.Context, userID string) ([]domain.Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIdeas(rows)
}

func collectIdeas(rows pgx.Rows) ([]domain.Idea, error) {
	var ideas []domain.Idea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, *idea)
	}
	return ideas, rows.Err()
}

// UpdateIdeaCategories persists a category/tags edit. Title and description
// are immutable after creation; only the taxonomy is editable.
func (r *PostgresIdeaRepository) UpdateIdeaCategories(ctx context.Context, id, userID, category string, tags []string) error {
	query := `
        UPDATE ideas
        SET category = $3, tags = $4, updated_at = NOW()
        WHERE id = $1 AND user_id = $2
    `
	return r.execOwned(ctx, query, ErrIdeaNotFound, id, userID, category, tags)
}

// MarkIdeaPublished flips a private idea to public with billing pending. The
// WHERE clause requires the row to still be private, so the transition happens
// at most once.
func (r *PostgresIdeaRepository) MarkIdeaPublished(ctx context.Context, id, userID, subscriptionID, priceID string) error {
	query := `
        UPDATE ideas
        SET is_private = FALSE,
            billing_status = 'pending',
            subscription_id = $3,
            stripe_price_id = $4,
            updated_at = NOW()
        WHERE id = $1 AND user_id = $2 AND is_private = TRUE
    `
	return r.execOwned(ctx, query, ErrIdeaNotFound, id, userID, subscriptionID, priceID)
}

// SetPendingSubscription attaches a freshly created subscription to an idea
// that is already public, e.g. one created optimistically public before its
// checkout completed.
func (r *PostgresIdeaRepository) SetPendingSubscription(ctx context.Context, id, userID, subscriptionID, priceID string) error {
	query := `
        UPDATE ideas
        SET billing_status = 'pending',
            subscription_id = $3,
            stripe_price_id = $4,
            updated_at = NOW()
        WHERE id = $1 AND user_id = $2
    `
	return r.execOwned(ctx, query, ErrIdeaNotFound, id, userID, subscriptionID, priceID)
}

// SetBillingActive records a confirmed payment for an idea's subscription.
func (r *PostgresIdeaRepository) SetBillingActive(ctx context.Context, id, userID, subscriptionID, priceID string) error {
	query := `
        UPDATE ideas
        SET billing_status = 'active',
            subscription_id = $3,
            stripe_price_id = $4,
            updated_at = NOW()
        WHERE id = $1 AND user_id = $2
    `
	return r.execOwned(ctx, query, ErrIdeaNotFound, id, userID, subscriptionID, priceID)
}

// SetBillingPastDue records a failed payment for an idea's subscription.
func (r *PostgresIdeaRepository) SetBillingPastDue(ctx context.Context, id, userID string) error {
	query := `
        UPDATE ideas
        SET billing_status = 'past_due', updated_at = NOW()
        WHERE id = $1 AND user_id = $2
    `
	return r.execOwned(ctx, query, ErrIdeaNotFound, id, userID)
}

// RevertIdeaToPrivate forces an idea back to private after its subscription
// was canceled. The update is idempotent: replaying it leaves the row in the
// same end state.
func (r *PostgresIdeaRepository) RevertIdeaToPrivate(ctx context.Context, id, userID string) error {
	query := `
        UPDATE ideas
        SET is_private = TRUE,
            billing_status = 'canceled',
            subscription_id = NULL,
            updated_at = NOW()
        WHERE id = $1 AND user_id = $2
    `
	return r.execOwned(ctx, query, ErrIdeaNotFound, id, userID)
}

// DeleteIdea removes an idea owned by the user.
func (r *PostgresIdeaRepository) DeleteIdea(ctx context.Context, id, userID string) error {
	return r.execOwned(ctx, `DELETE FROM ideas WHERE id = $1 AND user_id = $2`, ErrIdeaNotFound, id, userID)
}

// IncrementViews bumps the view counter atomically.
func (r *PostgresIdeaRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE ideas SET views = views + 1 WHERE id = $1`, id)
	return err
}

// GetUserIdeaStats aggregates portfolio counters for the manage dashboard.
func (r *PostgresIdeaRepository) GetUserIdeaStats(ctx context.Context, userID string) (*domain.IdeaStats, error) {
	var stats domain.IdeaStats
	query := `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE is_private = FALSE),
            COUNT(*) FILTER (WHERE is_private = TRUE),
            COALESCE(SUM(views), 0)
        FROM ideas
        WHERE user_id = $1
    `
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&stats.TotalIdeas,
		&stats.PublicIdeas,
		&stats.PrivateIdeas,
		&stats.TotalViews,
	)
	if err != nil {
		return nil, err
	}
	// $1/month per public idea.
	stats.MonthlyBillUSD = float64(stats.PublicIdeas)
	return &stats, nil
}

// DeleteStalePendingIdeas removes ideas whose checkout was started but never
// confirmed before the cutoff. This is the sweep counterpart of the
// compensating delete the create flow performs inline.
func (r *PostgresIdeaRepository) DeleteStalePendingIdeas(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        DELETE FROM ideas
        WHERE billing_status = 'pending' AND updated_at < $1
    `, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CreateIdeaUpdate appends a progress note to an idea's timeline.
func (r *PostgresIdeaRepository) CreateIdeaUpdate(ctx context.Context, update *domain.IdeaUpdate) (*domain.IdeaUpdate, error) {
	var created domain.IdeaUpdate
	query := `
        INSERT INTO idea_updates (id, idea_id, user_id, content, update_type)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, idea_id, user_id, content, update_type, created_at
    `
	err := r.db.QueryRow(ctx, query,
		update.ID,
		update.IdeaID,
		update.UserID,
		update.Content,
		update.UpdateType,
	).Scan(
		&created.ID,
		&created.IdeaID,
		&created.UserID,
		&created.Content,
		&created.UpdateType,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListIdeaUpdates returns an idea's timeline, newest first.
func (r *PostgresIdeaRepository) ListIdeaUpdates(ctx context.Context, ideaID string) ([]domain.IdeaUpdate, error) {
	query := `
        SELECT id, idea_id, user_id, content, update_type, created_at
        FROM idea_updates
        WHERE idea_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, ideaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []domain.IdeaUpdate
	for rows.Next() {
		var u domain.IdeaUpdate
		if err := rows.Scan(&u.ID, &u.IdeaID, &u.UserID, &u.Content, &u.UpdateType, &u.CreatedAt); err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

// GetIdeaUpdate retrieves a single update owned by the user.
func (r *PostgresIdeaRepository) GetIdeaUpdate(ctx context.Context, id, userID string) (*domain.IdeaUpdate, error) {
	var u domain.IdeaUpdate
	query := `
        SELECT id, idea_id, user_id, content, update_type, created_at
        FROM idea_updates
        WHERE id = $1 AND user_id = $2
    `
	err := r.db.QueryRow(ctx, query, id, userID).Scan(&u.ID, &u.IdeaID, &u.UserID, &u.Content, &u.UpdateType, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdeaUpdateNotFound
		}
		return nil, err
	}
	return &u, nil
}

// EditIdeaUpdate rewrites an update's content and type.
func (r *PostgresIdeaRepository) EditIdeaUpdate(ctx context.Context, id, userID, content, updateType string) error {
	query := `
        UPDATE idea_updates
        SET content = $3, update_type = $4
        WHERE id = $1 AND user_id = $2
    `
	return r.execOwned(ctx, query, ErrIdeaUpdateNotFound, id, userID, content, updateType)
}

// DeleteIdeaUpdate removes an update owned by the user.
func (r *PostgresIdeaRepository) DeleteIdeaUpdate(ctx context.Context, id, userID string) error {
	return r.execOwned(ctx, `DELETE FROM idea_updates WHERE id = $1 AND user_id = $2`, ErrIdeaUpdateNotFound, id, userID)
}

// execOwned runs an owner-scoped statement and maps a zero-row result to the
// given sentinel.
func (r *PostgresIdeaRepository) execOwned(ctx context.Context, query string, notFound error, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
