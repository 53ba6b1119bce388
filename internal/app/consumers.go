/**
 * @description
 * This file contains the consumer-side logic for billing events. After the
 * webhook reconciliation updates an idea, an event lands on the billing_events
 * exchange and this handler turns it into an in-app system notification for
 * the idea's owner.
 */
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/HGJ777/IdeaVault/internal/domain"
	"github.com/HGJ777/IdeaVault/internal/store"
)

// BillingEventHandler consumes billing events and writes notifications.
type BillingEventHandler struct {
	notifications store.NotificationRepository
}

// NewBillingEventHandler creates a new handler for billing event consumption.
func NewBillingEventHandler(notifications store.NotificationRepository) *BillingEventHandler {
	return &BillingEventHandler{notifications: notifications}
}

// HandleBillingEvent processes one delivery from the billing_events exchange.
// It returns true to acknowledge the message; malformed payloads are acked so
// they never poison the queue, and only transient database errors requeue.
func (h *BillingEventHandler) HandleBillingEvent(body []byte) bool {
	var event domain.BillingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("Error unmarshaling billing event: %v", err)
		return true
	}
	if event.UserID == "" || event.IdeaID == "" {
		log.Printf("Billing event missing user or idea id; acking")
		return true
	}

	title, message := notificationCopyForBilling(event)
	if title == "" {
		log.Printf("No notification copy for billing status %q; acking", event.BillingStatus)
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	relatedType := "idea"
	_, err := h.notifications.Create(ctx, &domain.Notification{
		ID:          uuid.NewString(),
		UserID:      event.UserID,
		Type:        domain.NotificationTypeSystem,
		Title:       title,
		Message:     message,
		RelatedID:   &event.IdeaID,
		RelatedType: &relatedType,
	})
	if err != nil {
		log.Printf("ERROR: failed to create billing notification for user %s: %v", event.UserID, err)
		return false // Retryable database error.
	}

	log.Printf("Created billing notification for user %s (idea %s, status %s)", event.UserID, event.IdeaID, event.BillingStatus)
	return true
}

// notificationCopyForBilling maps a billing state change to the notification
// shown to the idea owner. Unknown statuses produce no notification.
func notificationCopyForBilling(event domain.BillingEvent) (title, message string) {
	switch event.BillingStatus {
	case domain.BillingStatusActive:
		return "Payment Received",
			fmt.Sprintf("Your payment for %q went through. The idea is public and protected.", event.IdeaTitle)
	case domain.BillingStatusPastDue:
		return "Payment Failed",
			fmt.Sprintf("We could not collect the monthly charge for %q. Please update your payment method to keep it public.", event.IdeaTitle)
	case domain.BillingStatusCanceled:
		return "Subscription Canceled",
			fmt.Sprintf("The subscription for %q was canceled. The idea is private again.", event.IdeaTitle)
	default:
		return "", ""
	}
}
