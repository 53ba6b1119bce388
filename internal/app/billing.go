/**
 * @description
 * Billing logic for public ideas. Publishing an idea means attaching a $1/month
 * Stripe subscription to it; this file owns the checkout flow, owner-initiated
 * cancellation, payment-method management, and the reconciliation of inbound
 * webhook events against the ideas table.
 *
 * State changes are applied to the database first and then announced on the
 * billing_events exchange, so consumers only ever observe committed state.
 */
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/HGJ777/IdeaVault/internal/domain"
	"github.com/HGJ777/IdeaVault/internal/store"
)

// Billing policy errors surfaced to the API layer.
var (
	// ErrAlreadyBilled rejects a checkout for an idea that already has a live
	// subscription attached. A past_due subscription is still live at the
	// processor; it is resolved by fixing the payment method, not by creating
	// a second subscription.
	ErrAlreadyBilled = errors.New("idea already has a subscription attached")
	// ErrNotSubscribed rejects a cancellation for an idea with no
	// subscription attached.
	ErrNotSubscribed = errors.New("idea has no subscription to cancel")
	// ErrNoCustomer is returned when a payment-method operation needs a
	// Stripe customer that does not exist yet.
	ErrNoCustomer = errors.New("no billing profile exists for this user")
)

// StripeGateway defines the payment processor operations the billing service
// needs. The concrete implementation lives in pkg/stripeclient.
type StripeGateway interface {
	CreateCustomer(ctx context.Context, email, userID string) (*domain.StripeCustomer, error)
	CreateSubscription(ctx context.Context, customerID, priceID, ideaID, userID string) (*domain.StripeSubscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*domain.StripeSubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*domain.StripeSubscription, error)
	AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error
	ListPaymentMethods(ctx context.Context, customerID string) ([]domain.StripePaymentMethod, error)
}

// EventPublisher publishes internal events after billing state changes.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// BillingEventsExchange is the topic exchange billing events are published on.
const BillingEventsExchange = "billing_events"

// CheckoutResult is returned to the frontend so it can confirm the first
// payment of the new subscription.
type CheckoutResult struct {
	SubscriptionID string `json:"subscription_id"`
	ClientSecret   string `json:"client_secret"`
}

// BillingService provides the business logic for idea billing.
type BillingService struct {
	ideas    store.IdeaRepository
	subs     store.SubscriptionRepository
	stripe   StripeGateway
	producer EventPublisher
	priceID  string
}

// NewBillingService creates a new billing service.
func NewBillingService(ideas store.IdeaRepository, subs store.SubscriptionRepository, stripe StripeGateway, producer EventPublisher, priceID string) *BillingService {
	return &BillingService{
		ideas:    ideas,
		subs:     subs,
		stripe:   stripe,
		producer: producer,
		priceID:  priceID,
	}
}

// CreateCheckout creates the recurring subscription that pays for a public
// idea and returns the client secret for the first payment.
//
// Two entry paths share this flow:
//   - an existing private idea being published: the privacy flag only flips
//     after the subscription exists, so a failed checkout leaves the idea
//     private and untouched;
//   - an idea created optimistically public (billing pending): a failed
//     checkout triggers the compensating delete, so no unbilled public idea
//     survives.
func (s *BillingService) CreateCheckout(ctx context.Context, userID, userEmail, ideaID string) (*CheckoutResult, error) {
	idea, err := s.ideas.GetIdeaForOwner(ctx, ideaID, userID)
	if err != nil {
		return nil, err
	}
	if !idea.IsPrivate && idea.BillingStatus != nil {
		switch *idea.BillingStatus {
		case domain.BillingStatusActive, domain.BillingStatusPastDue:
			return nil, ErrAlreadyBilled
		}
	}

	customerID, err := s.getOrCreateCustomer(ctx, userID, userEmail)
	if err != nil {
		return nil, err
	}

	sub, err := s.stripe.CreateSubscription(ctx, customerID, s.priceID, ideaID, userID)
	if err != nil {
		s.compensateFailedCheckout(ctx, idea)
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	if idea.IsPrivate {
		err = s.ideas.MarkIdeaPublished(ctx, ideaID, userID, sub.ID, s.priceID)
	} else {
		err = s.ideas.SetPendingSubscription(ctx, ideaID, userID, sub.ID, s.priceID)
	}
	if err != nil {
		return nil, fmt.Errorf("record subscription on idea: %w", err)
	}

	s.refreshMonthlyCost(ctx, userID)

	result := &CheckoutResult{SubscriptionID: sub.ID}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		result.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return result, nil
}

// compensateFailedCheckout deletes an idea that was inserted optimistically
// public but never got its subscription. Ideas that were still private keep
// their row; the failed checkout changed nothing for them.
func (s *BillingService) compensateFailedCheckout(ctx context.Context, idea *domain.Idea) {
	if idea.IsPrivate {
		return
	}
	if idea.BillingStatus == nil || *idea.BillingStatus != domain.BillingStatusPending {
		return
	}
	if err := s.ideas.DeleteIdea(ctx, idea.ID, idea.UserID); err != nil {
		log.Printf("ERROR: compensating delete failed for idea %s: %v", idea.ID, err)
	} else {
		log.Printf("Deleted idea %s after failed subscription creation", idea.ID)
	}
}

// CancelSubscription cancels the recurring charge for an idea and reverts the
// idea to private. This is the only user-initiated path that sets is_private
// back to true.
func (s *BillingService) CancelSubscription(ctx context.Context, userID, ideaID string) error {
	idea, err := s.ideas.GetIdeaForOwner(ctx, ideaID, userID)
	if err != nil {
		return err
	}
	if idea.SubscriptionID == nil || *idea.SubscriptionID == "" {
		return ErrNotSubscribed
	}

	if _, err := s.stripe.CancelSubscription(ctx, *idea.SubscriptionID); err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}

	if err := s.ideas.RevertIdeaToPrivate(ctx, ideaID, userID); err != nil {
		return fmt.Errorf("revert idea to private: %w", err)
	}

	s.refreshMonthlyCost(ctx, userID)
	return nil
}

// Summary returns the billing page payload: all of the user's public ideas and
// the aggregate monthly cost.
func (s *BillingService) Summary(ctx context.Context, userID string) (*domain.BillingSummary, error) {
	ideas, err := s.ideas.ListIdeasByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &domain.BillingSummary{PublicIdeas: []domain.Idea{}}
	for _, idea := range ideas {
		if !idea.IsPrivate {
			summary.PublicIdeas = append(summary.PublicIdeas, idea)
		}
	}
	// $1/month per public idea.
	summary.TotalMonthlyCost = float64(len(summary.PublicIdeas))
	return summary, nil
}

// ListPaymentMethods returns the user's saved cards. A user with no billing
// profile simply has none yet.
func (s *BillingService) ListPaymentMethods(ctx context.Context, userID string) ([]domain.StripePaymentMethod, error) {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return []domain.StripePaymentMethod{}, nil
		}
		return nil, err
	}
	return s.stripe.ListPaymentMethods(ctx, sub.StripeCustomerID)
}

// SavePaymentMethod attaches a card to the user's Stripe customer, creating
// the customer first if needed.
func (s *BillingService) SavePaymentMethod(ctx context.Context, userID, userEmail, paymentMethodID string) error {
	if paymentMethodID == "" {
		return fmt.Errorf("%w: payment method id is required", ErrValidation)
	}
	customerID, err := s.getOrCreateCustomer(ctx, userID, userEmail)
	if err != nil {
		return err
	}
	return s.stripe.AttachPaymentMethod(ctx, paymentMethodID, customerID)
}

// HandleEvent applies a verified webhook event to the ideas table. Updates are
// last-write-wins on the same fields, so replaying an event produces the same
// end state. Events for unknown ideas are logged and acknowledged; failing
// them would only make the processor retry a no-op forever.
func (s *BillingService) HandleEvent(ctx context.Context, event domain.StripeEvent) error {
	switch event.Type {
	case domain.EventInvoicePaymentSucceeded:
		return s.handleInvoiceEvent(ctx, event, true)
	case domain.EventInvoicePaymentFailed:
		return s.handleInvoiceEvent(ctx, event, false)
	case domain.EventSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, event)
	default:
		log.Printf("Ignoring unhandled webhook event type: %s", event.Type)
		return nil
	}
}

// handleInvoiceEvent resolves the subscription behind an invoice event and
// moves the idea's billing status to active or past_due.
func (s *BillingService) handleInvoiceEvent(ctx context.Context, event domain.StripeEvent, succeeded bool) error {
	var invoice domain.StripeInvoice
	if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
		return fmt.Errorf("decode invoice payload: %w", err)
	}
	if invoice.Subscription == "" {
		log.Printf("Invoice event %s carries no subscription; ignoring", event.ID)
		return nil
	}

	// The invoice payload does not carry the subscription metadata, so the
	// idea linkage has to be fetched from the processor.
	sub, err := s.stripe.GetSubscription(ctx, invoice.Subscription)
	if err != nil {
		return fmt.Errorf("retrieve subscription %s: %w", invoice.Subscription, err)
	}

	ideaID := sub.Metadata["idea_id"]
	userID := sub.Metadata["user_id"]
	if ideaID == "" || userID == "" {
		log.Printf("Subscription %s has no idea metadata; ignoring event %s", sub.ID, event.ID)
		return nil
	}

	idea, err := s.ideas.GetIdeaForOwner(ctx, ideaID, userID)
	if err != nil {
		if errors.Is(err, store.ErrIdeaNotFound) {
			log.Printf("Webhook event %s references unknown idea %s; acknowledging", event.ID, ideaID)
			return nil
		}
		return err
	}

	status := domain.BillingStatusPastDue
	routingKey := domain.RoutingKeyPaymentFailed
	if succeeded {
		status = domain.BillingStatusActive
		routingKey = domain.RoutingKeyPaymentSucceeded
		err = s.ideas.SetBillingActive(ctx, ideaID, userID, sub.ID, s.priceID)
	} else {
		err = s.ideas.SetBillingPastDue(ctx, ideaID, userID)
	}
	if err != nil {
		return fmt.Errorf("update billing status for idea %s: %w", ideaID, err)
	}

	log.Printf("Applied %s for idea %s (subscription %s)", event.Type, ideaID, sub.ID)
	s.publishBillingEvent(ctx, routingKey, domain.BillingEvent{
		IdeaID:         ideaID,
		UserID:         userID,
		IdeaTitle:      idea.Title,
		SubscriptionID: sub.ID,
		BillingStatus:  status,
	})
	return nil
}

// handleSubscriptionDeleted forces the idea back to private. The deleted
// subscription object carries its own metadata, so no processor round-trip is
// needed.
func (s *BillingService) handleSubscriptionDeleted(ctx context.Context, event domain.StripeEvent) error {
	var sub domain.StripeSubscription
	if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
		return fmt.Errorf("decode subscription payload: %w", err)
	}

	ideaID := sub.Metadata["idea_id"]
	userID := sub.Metadata["user_id"]
	if ideaID == "" || userID == "" {
		log.Printf("Deleted subscription %s has no idea metadata; ignoring event %s", sub.ID, event.ID)
		return nil
	}

	idea, err := s.ideas.GetIdeaForOwner(ctx, ideaID, userID)
	if err != nil {
		if errors.Is(err, store.ErrIdeaNotFound) {
			log.Printf("Webhook event %s references unknown idea %s; acknowledging", event.ID, ideaID)
			return nil
		}
		return err
	}

	if err := s.ideas.RevertIdeaToPrivate(ctx, ideaID, userID); err != nil {
		return fmt.Errorf("revert idea %s to private: %w", ideaID, err)
	}

	log.Printf("Subscription %s canceled; idea %s reverted to private", sub.ID, ideaID)
	s.refreshMonthlyCost(ctx, userID)
	s.publishBillingEvent(ctx, domain.RoutingKeySubscriptionCanceled, domain.BillingEvent{
		IdeaID:         ideaID,
		UserID:         userID,
		IdeaTitle:      idea.Title,
		SubscriptionID: sub.ID,
		BillingStatus:  domain.BillingStatusCanceled,
	})
	return nil
}

// getOrCreateCustomer returns the user's Stripe customer id, creating the
// customer and the user_subscriptions row on first use.
func (s *BillingService) getOrCreateCustomer(ctx context.Context, userID, userEmail string) (string, error) {
	existing, err := s.subs.GetByUserID(ctx, userID)
	if err == nil && existing.StripeCustomerID != "" {
		return existing.StripeCustomerID, nil
	}
	if err != nil && !errors.Is(err, store.ErrSubscriptionNotFound) {
		return "", err
	}

	customer, err := s.stripe.CreateCustomer(ctx, userEmail, userID)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}

	if _, err := s.subs.Upsert(ctx, &domain.UserSubscription{
		UserID:           userID,
		StripeCustomerID: customer.ID,
		BillingStatus:    domain.BillingStatusActive,
	}); err != nil {
		return "", fmt.Errorf("persist customer: %w", err)
	}
	return customer.ID, nil
}

// refreshMonthlyCost recomputes the user's aggregate monthly charge from the
// current number of public ideas. Failures are logged, not surfaced: the
// aggregate is display data, not billing truth.
func (s *BillingService) refreshMonthlyCost(ctx context.Context, userID string) {
	stats, err := s.ideas.GetUserIdeaStats(ctx, userID)
	if err != nil {
		log.Printf("WARN: failed to compute idea stats for user %s: %v", userID, err)
		return
	}
	if err := s.subs.SetTotalMonthlyCost(ctx, userID, stats.MonthlyBillUSD); err != nil && !errors.Is(err, store.ErrSubscriptionNotFound) {
		log.Printf("WARN: failed to update monthly cost for user %s: %v", userID, err)
	}
}

// publishBillingEvent announces an applied billing change. Publishing is best
// effort; the database is already consistent and the consumer only produces
// notifications.
func (s *BillingService) publishBillingEvent(ctx context.Context, routingKey string, event domain.BillingEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.Publish(ctx, BillingEventsExchange, routingKey, event); err != nil {
		log.Printf("WARN: failed to publish %s for idea %s: %v", routingKey, event.IdeaID, err)
	}
}
