/**
 * @description
 * This file defines the core domain models for idea records. An idea is the
 * central content entity of IdeaVault: it is created privately for free, and
 * can be published to the public gallery by attaching a recurring Stripe
 * subscription to it.
 */
package domain

import "time"

// Billing status values an idea moves through once published.
const (
	BillingStatusPending  = "pending"
	BillingStatusActive   = "active"
	BillingStatusPastDue  = "past_due"
	BillingStatusCanceled = "canceled"
)

// Idea lifecycle status values.
const (
	IdeaStatusDraft  = "draft"
	IdeaStatusActive = "active"
	IdeaStatusSold   = "sold"
)

// Idea represents a row in the ideas table.
type Idea struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Tags           []string  `json:"tags"`
	Price          *float64  `json:"price,omitempty"`
	IsPrivate      bool      `json:"is_private"`
	AllowLicensing bool      `json:"allow_licensing"`
	BillingStatus  *string   `json:"billing_status,omitempty"` // pending | active | past_due | canceled
	SubscriptionID *string   `json:"subscription_id,omitempty"`
	StripePriceID  *string   `json:"stripe_price_id,omitempty"`
	Views          int       `json:"views"`
	Likes          int       `json:"likes"`
	Status         string    `json:"status"` // draft | active | sold
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewIdeaInput carries the fields a user submits when creating an idea.
type NewIdeaInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Categories     []string `json:"categories"`
	IsPrivate      bool     `json:"is_private"`
	AllowLicensing bool     `json:"allow_licensing"`
}

// IdeaEdit carries the mutable fields of an idea update request. Title and
// description are immutable after creation. The privacy flag is accepted only
// so the service can reject forbidden transitions with a precise error:
// publishing goes through checkout and reverting to private goes through
// subscription cancellation.
type IdeaEdit struct {
	Categories []string `json:"categories"`
	IsPrivate  *bool    `json:"is_private,omitempty"`
}

// IdeaFilter narrows gallery and inbox listings.
type IdeaFilter struct {
	Search   string
	Category string
	SortBy   string // newest | oldest | popular
	Limit    int
	Offset   int
}

// IdeaStats summarises a user's portfolio for the manage dashboard.
type IdeaStats struct {
	TotalIdeas     int     `json:"total_ideas"`
	PublicIdeas    int     `json:"public_ideas"`
	PrivateIdeas   int     `json:"private_ideas"`
	TotalViews     int     `json:"total_views"`
	MonthlyBillUSD float64 `json:"monthly_bill_usd"`
}

// IdeaUpdate is an append-only progress note attached to an idea. Updates are
// editable only on the same calendar day (UTC) they were created.
type IdeaUpdate struct {
	ID         string    `json:"id"`
	IdeaID     string    `json:"idea_id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	UpdateType string    `json:"update_type"` // progress | milestone | pivot | note
	CreatedAt  time.Time `json:"created_at"`
}
