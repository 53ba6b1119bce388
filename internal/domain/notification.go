/**
 * @description
 * Domain models for in-app notifications. A notification row is created for an
 * idea owner when a viewer sends a business inquiry, and by the billing event
 * consumer when the payment processor reports a state change.
 */
package domain

import "time"

// Notification type values.
const (
	NotificationTypeMessage  = "message"
	NotificationTypeIdeaView = "idea_view"
	NotificationTypeContact  = "contact"
	NotificationTypeSystem   = "system"
)

// Notification represents a row in the notifications table.
type Notification struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"` // message | idea_view | contact | system
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	RelatedID   *string   `json:"related_id,omitempty"`
	RelatedType *string   `json:"related_type,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationFilter narrows notification listings.
type NotificationFilter struct {
	Status string // unread | read | ""
	Limit  int
	Offset int
}
