/**
 * @description
 * pgx-backed repository for the user_subscriptions table, which maps an
 * IdeaVault user to their Stripe customer record.
 */
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HGJ777/IdeaVault/internal/domain"
)

// PostgresSubscriptionRepository handles database operations for user_subscriptions.
type PostgresSubscriptionRepository struct {
	db *pgxpool.Pool
}

// NewPostgresSubscriptionRepository creates a new subscription repository.
func NewPostgresSubscriptionRepository(db *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

// GetByUserID retrieves the user's subscription record.
func (r *PostgresSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserSubscription, error) {
	var sub domain.UserSubscription
	query := `
        SELECT user_id, stripe_customer_id, total_monthly_cost, billing_status, created_at, updated_at
        FROM user_subscriptions
        WHERE user_id = $1
    `
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&sub.UserID,
		&sub.StripeCustomerID,
		&sub.TotalMonthlyCost,
		&sub.BillingStatus,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// Upsert creates or refreshes the user's subscription record.
func (r *PostgresSubscriptionRepository) Upsert(ctx context.Context, sub *domain.UserSubscription) (*domain.UserSubscription, error) {
	var stored domain.UserSubscription
	query := `
        INSERT INTO user_subscriptions (user_id, stripe_customer_id, total_monthly_cost, billing_status)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id) DO UPDATE SET
            stripe_customer_id = EXCLUDED.stripe_customer_id,
            total_monthly_cost = EXCLUDED.total_monthly_cost,
            billing_status = EXCLUDED.billing_status,
            updated_at = NOW()
        RETURNING user_id, stripe_customer_id, total_monthly_cost, billing_status, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		sub.UserID,
		sub.StripeCustomerID,
		sub.TotalMonthlyCost,
		sub.BillingStatus,
	).Scan(
		&stored.UserID,
		&stored.StripeCustomerID,
		&stored.TotalMonthlyCost,
		&stored.BillingStatus,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// SetTotalMonthlyCost recomputes the aggregate monthly charge after an idea
// is published or its subscription canceled.
func (r *PostgresSubscriptionRepository) SetTotalMonthlyCost(ctx context.Context, userID string, cost float64) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE user_subscriptions
        SET total_monthly_cost = $2, updated_at = NOW()
        WHERE user_id = $1
    `, userID, cost)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
