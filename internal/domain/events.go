/**
 * @description
 * Internal event payloads published to RabbitMQ after billing state changes
 * have been applied. The notification consumer turns these into in-app
 * system notifications for the idea owner.
 */
package domain

// Routing keys on the billing_events exchange.
const (
	RoutingKeyPaymentSucceeded     = "billing.payment_succeeded"
	RoutingKeyPaymentFailed        = "billing.payment_failed"
	RoutingKeySubscriptionCanceled = "billing.subscription_canceled"
)

// BillingEvent describes a billing state change for a single idea. It is
// published after the database row has already been updated, so consumers can
// treat it as a notification, not a command.
type BillingEvent struct {
	IdeaID         string `json:"idea_id"`
	UserID         string `json:"user_id"`
	IdeaTitle      string `json:"idea_title"`
	SubscriptionID string `json:"subscription_id"`
	BillingStatus  string `json:"billing_status"`
}
