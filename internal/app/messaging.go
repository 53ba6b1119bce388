/**
 * @description
 * Business logic for the contact/inquiry relay and the notification inbox.
 * An inquiry is only accepted for ideas that permit licensing contact, and
 * the message row plus the owner's notification row are written in a single
 * transaction by the store layer.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/HGJ777/IdeaVault/internal/domain"
	"github.com/HGJ777/IdeaVault/internal/store"
)

// Messaging policy errors surfaced to the API layer.
var (
	// ErrLicensingDisabled rejects inquiries on ideas whose owner has not
	// opened them for business contact.
	ErrLicensingDisabled = errors.New("this idea is not available for business inquiries")
	// ErrSelfContact rejects a user contacting themselves about their own idea.
	ErrSelfContact = errors.New("you cannot contact yourself about your own idea")
	// ErrPrivateIdea rejects inquiries on private ideas.
	ErrPrivateIdea = errors.New("this idea is private and not available for contact")
)

var inquiryTypes = map[string]bool{
	"licensing":   true,
	"purchase":    true,
	"partnership": true,
	"other":       true,
}

var messageStatuses = map[string]bool{
	domain.MessageStatusRead:     true,
	domain.MessageStatusReplied:  true,
	domain.MessageStatusArchived: true,
}

// MessagingService provides the business logic for inquiries and notifications.
type MessagingService struct {
	ideas         store.IdeaRepository
	messages      store.MessageRepository
	notifications store.NotificationRepository
}

// NewMessagingService creates a new messaging service.
func NewMessagingService(ideas store.IdeaRepository, messages store.MessageRepository, notifications store.NotificationRepository) *MessagingService {
	return &MessagingService{
		ideas:         ideas,
		messages:      messages,
		notifications: notifications,
	}
}

// SubmitInquiry validates and records a business inquiry about an idea. All
// policy checks run before anything is written; on success exactly one
// message row and one notification row exist, committed together.
func (s *MessagingService) SubmitInquiry(ctx context.Context, senderID, senderEmail, ideaID string, input domain.InquiryInput) (*domain.Message, error) {
	idea, err := s.ideas.GetIdeaByID(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	if !idea.AllowLicensing {
		return nil, ErrLicensingDisabled
	}
	if idea.UserID == senderID {
		return nil, ErrSelfContact
	}
	if idea.IsPrivate {
		return nil, ErrPrivateIdea
	}

	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Message)
	contactEmail := strings.TrimSpace(input.ContactEmail)
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if body == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}
	if contactEmail == "" {
		contactEmail = senderEmail
	}
	if contactEmail == "" {
		return nil, fmt.Errorf("%w: contact email is required", ErrValidation)
	}
	inquiryType := input.InquiryType
	if inquiryType == "" {
		inquiryType = "other"
	}
	if !inquiryTypes[inquiryType] {
		return nil, fmt.Errorf("%w: unknown inquiry type %q", ErrValidation, inquiryType)
	}

	msg := &domain.Message{
		ID:           uuid.NewString(),
		SenderID:     senderID,
		RecipientID:  idea.UserID,
		IdeaID:       idea.ID,
		Subject:      subject,
		Message:      body,
		InquiryType:  inquiryType,
		Budget:       input.Budget,
		Timeline:     input.Timeline,
		CompanyName:  input.CompanyName,
		ContactEmail: contactEmail,
		Status:       domain.MessageStatusSent,
	}

	relatedType := "message"
	notification := &domain.Notification{
		ID:          uuid.NewString(),
		UserID:      idea.UserID,
		Type:        domain.NotificationTypeMessage,
		Title:       "New Business Inquiry",
		Message:     fmt.Sprintf("You received a new inquiry from %s about %q", contactEmail, idea.Title),
		RelatedType: &relatedType,
	}

	return s.messages.CreateWithNotification(ctx, msg, notification)
}

// Inbox lists the user's received inquiries.
func (s *MessagingService) Inbox(ctx context.Context, userID string, filter domain.MessageFilter) ([]domain.Message, error) {
	return s.messages.ListByRecipient(ctx, userID, filter)
}

// GetMessage retrieves a single inquiry addressed to the user.
func (s *MessagingService) GetMessage(ctx context.Context, userID, messageID string) (*domain.Message, error) {
	return s.messages.GetByID(ctx, messageID, userID)
}

// SetMessageStatus moves an inquiry to read, replied or archived.
func (s *MessagingService) SetMessageStatus(ctx context.Context, userID, messageID, status string) error {
	if !messageStatuses[status] {
		return fmt.Errorf("%w: unknown message status %q", ErrValidation, status)
	}
	return s.messages.UpdateStatus(ctx, messageID, userID, status)
}

// UnreadMessageCount counts inquiries still in 'sent' for the inbox badge.
func (s *MessagingService) UnreadMessageCount(ctx context.Context, userID string) (int, error) {
	return s.messages.CountUnread(ctx, userID)
}

// Notifications lists the user's notifications.
func (s *MessagingService) Notifications(ctx context.Context, userID string, filter domain.NotificationFilter) ([]domain.Notification, error) {
	return s.notifications.ListByUser(ctx, userID, filter)
}

// MarkNotificationRead flags one notification as read.
func (s *MessagingService) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	return s.notifications.MarkRead(ctx, notificationID, userID)
}

// MarkAllNotificationsRead flags every unread notification as read.
func (s *MessagingService) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return s.notifications.MarkAllRead(ctx, userID)
}

// DeleteNotification removes a notification from the user's list.
func (s *MessagingService) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	return s.notifications.Delete(ctx, notificationID, userID)
}

// UnreadNotificationCount counts unread notifications for the navigation badge.
func (s *MessagingService) UnreadNotificationCount(ctx context.Context, userID string) (int, error) {
	return s.notifications.CountUnread(ctx, userID)
}
