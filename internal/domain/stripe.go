/**
 * @description
 * This file defines the Go representations of the Stripe API objects this
 * service touches. Only the fields the application reads are modeled; Stripe
 * payloads carry far more, and unknown fields are ignored on unmarshal.
 */
package domain

import "encoding/json"

// Webhook event types handled by the billing reconciliation logic. Every
// other event type is acknowledged and ignored.
const (
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
)

// StripeEvent is the envelope of a webhook event. Data.Object is kept raw
// because its shape depends on the event type.
type StripeEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// StripeCustomer is a Stripe customer object.
type StripeCustomer struct {
	ID       string            `json:"id"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"metadata"`
}

// StripeSubscription is a Stripe subscription object. The idea and owner this
// subscription bills for travel in the metadata, set at creation time.
type StripeSubscription struct {
	ID            string            `json:"id"`
	Customer      string            `json:"customer"`
	Status        string            `json:"status"`
	Metadata      map[string]string `json:"metadata"`
	LatestInvoice *StripeInvoice    `json:"latest_invoice,omitempty"`
}

// StripeInvoice is a Stripe invoice object.
type StripeInvoice struct {
	ID            string               `json:"id"`
	Subscription  string               `json:"subscription"`
	PaymentIntent *StripePaymentIntent `json:"payment_intent,omitempty"`
}

// StripePaymentIntent carries the client secret the frontend needs to confirm
// the first payment of a subscription.
type StripePaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// StripeCard is the card detail of a payment method.
type StripeCard struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

// StripePaymentMethod is a Stripe payment method object.
type StripePaymentMethod struct {
	ID   string     `json:"id"`
	Type string     `json:"type"`
	Card StripeCard `json:"card"`
}

// StripePaymentMethodList is the list envelope returned by the payment
// methods endpoint.
type StripePaymentMethodList struct {
	Data []StripePaymentMethod `json:"data"`
}

// StripeAPIError is the error envelope returned by the Stripe API on non-2xx
// responses.
type StripeAPIError struct {
	Err struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
