/**
 * @description
 * Domain model for the user_subscriptions table, which links an IdeaVault user
 * to their Stripe customer record. Each public idea carries its own Stripe
 * subscription; this row tracks the customer and the aggregate monthly cost.
 */
package domain

import "time"

// UserSubscription represents a row in the user_subscriptions table.
type UserSubscription struct {
	UserID           string    `json:"user_id"`
	StripeCustomerID string    `json:"stripe_customer_id"`
	TotalMonthlyCost float64   `json:"total_monthly_cost"`
	BillingStatus    string    `json:"billing_status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BillingSummary is the DTO returned to the billing page: every public idea
// with its billing state plus the aggregate monthly cost.
type BillingSummary struct {
	PublicIdeas      []Idea  `json:"public_ideas"`
	TotalMonthlyCost float64 `json:"total_monthly_cost"`
}
