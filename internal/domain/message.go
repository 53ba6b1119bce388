/**
 * @description
 * Domain models for business-inquiry messages sent by viewers to idea owners.
 */
package domain

import "time"

// Message status values.
const (
	MessageStatusSent     = "sent"
	MessageStatusRead     = "read"
	MessageStatusReplied  = "replied"
	MessageStatusArchived = "archived"
)

// Message represents a contact inquiry row in the messages table.
type Message struct {
	ID           string    `json:"id"`
	SenderID     string    `json:"sender_id"`
	RecipientID  string    `json:"recipient_id"`
	IdeaID       string    `json:"idea_id"`
	Subject      string    `json:"subject"`
	Message      string    `json:"message"`
	InquiryType  string    `json:"inquiry_type"` // licensing | purchase | partnership | other
	Budget       *string   `json:"budget,omitempty"`
	Timeline     *string   `json:"timeline,omitempty"`
	CompanyName  *string   `json:"company_name,omitempty"`
	ContactEmail string    `json:"contact_email"`
	Status       string    `json:"status"` // sent | read | replied | archived
	CreatedAt    time.Time `json:"created_at"`
}

// InquiryInput is the payload a viewer submits on the contact form.
type InquiryInput struct {
	Subject      string  `json:"subject"`
	Message      string  `json:"message"`
	InquiryType  string  `json:"inquiry_type"`
	Budget       *string `json:"budget,omitempty"`
	Timeline     *string `json:"timeline,omitempty"`
	CompanyName  *string `json:"company_name,omitempty"`
	ContactEmail string  `json:"contact_email"`
}

// MessageFilter narrows inbox listings.
type MessageFilter struct {
	Search string
	Status string
	Limit  int
	Offset int
}
