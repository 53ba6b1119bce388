package app

import (
	"context"
	"errors"
	"testing"

	"github.com/HGJ777/IdeaVault/internal/domain"
)

func newMessagingFixture() (*MessagingService, *fakeIdeaRepo, *fakeMessageRepo, *fakeNotificationRepo) {
	ideas := newFakeIdeaRepo()
	messages := newFakeMessageRepo()
	notifications := newFakeNotificationRepo()
	service := NewMessagingService(ideas, messages, notifications)
	return service, ideas, messages, notifications
}

func contactableIdea(id, ownerID string) *domain.Idea {
	idea := privateIdea(id, ownerID)
	idea.IsPrivate = false
	idea.AllowLicensing = true
	return idea
}

func TestSubmitInquiryGuards(t *testing.T) {
	service, ideas, messages, _ := newMessagingFixture()

	noLicensing := contactableIdea("idea-nolic", "owner")
	noLicensing.AllowLicensing = false
	ideas.put(noLicensing)

	privateButLicensed := contactableIdea("idea-priv", "owner")
	privateButLicensed.IsPrivate = true
	ideas.put(privateButLicensed)

	ideas.put(contactableIdea("idea-ok", "owner"))

	input := domain.InquiryInput{Subject: "Interested", Message: "Tell me more", ContactEmail: "buyer@example.com"}

	tests := []struct {
		name    string
		sender  string
		ideaID  string
		wantErr error
	}{
		{"licensing disabled", "buyer", "idea-nolic", ErrLicensingDisabled},
		{"self contact", "owner", "idea-ok", ErrSelfContact},
		{"private idea", "buyer", "idea-priv", ErrPrivateIdea},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.SubmitInquiry(context.Background(), tc.sender, "buyer@example.com", tc.ideaID, input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if len(messages.messages) != 0 {
		t.Fatalf("rejected inquiries must not be written, found %d", len(messages.messages))
	}
}

func TestSubmitInquiryGuardOrder(t *testing.T) {
	service, ideas, _, _ := newMessagingFixture()

	// Licensing disabled wins over the private check.
	idea := contactableIdea("idea-1", "owner")
	idea.AllowLicensing = false
	idea.IsPrivate = true
	ideas.put(idea)

	_, err := service.SubmitInquiry(context.Background(), "buyer", "b@example.com", "idea-1", domain.InquiryInput{
		Subject: "s", Message: "m", ContactEmail: "b@example.com",
	})
	if !errors.Is(err, ErrLicensingDisabled) {
		t.Fatalf("licensing check must run first, got %v", err)
	}
}

func TestSubmitInquiryCreatesMessageAndNotification(t *testing.T) {
	service, ideas, messages, _ := newMessagingFixture()
	ideas.put(contactableIdea("idea-1", "owner"))

	msg, err := service.SubmitInquiry(context.Background(), "buyer", "buyer@example.com", "idea-1", domain.InquiryInput{
		Subject:     "Licensing question",
		Message:     "I want to license this.",
		InquiryType: "licensing",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.RecipientID != "owner" {
		t.Fatalf("message should go to the idea owner, got %s", msg.RecipientID)
	}
	if msg.ContactEmail != "buyer@example.com" {
		t.Fatalf("contact email should fall back to the sender's, got %s", msg.ContactEmail)
	}
	if msg.Status != domain.MessageStatusSent {
		t.Fatalf("new inquiries start as sent, got %s", msg.Status)
	}

	if len(messages.notifications) != 1 {
		t.Fatalf("expected one notification alongside the message, got %d", len(messages.notifications))
	}
	n := messages.notifications[0]
	if n.UserID != "owner" {
		t.Fatalf("notification should address the owner, got %s", n.UserID)
	}
	if n.Type != domain.NotificationTypeMessage {
		t.Fatalf("expected message notification type, got %s", n.Type)
	}
}

func TestSubmitInquiryValidation(t *testing.T) {
	service, ideas, _, _ := newMessagingFixture()
	ideas.put(contactableIdea("idea-1", "owner"))

	tests := []struct {
		name  string
		input domain.InquiryInput
	}{
		{"missing subject", domain.InquiryInput{Message: "m", ContactEmail: "b@e.com"}},
		{"missing message", domain.InquiryInput{Subject: "s", ContactEmail: "b@e.com"}},
		{"unknown inquiry type", domain.InquiryInput{Subject: "s", Message: "m", ContactEmail: "b@e.com", InquiryType: "hostile-takeover"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.SubmitInquiry(context.Background(), "buyer", "", "idea-1", tc.input)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	t.Run("no contact email anywhere", func(t *testing.T) {
		_, err := service.SubmitInquiry(context.Background(), "buyer", "", "idea-1", domain.InquiryInput{Subject: "s", Message: "m"})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestSetMessageStatus(t *testing.T) {
	service, ideas, _, _ := newMessagingFixture()
	ideas.put(contactableIdea("idea-1", "owner"))

	msg, err := service.SubmitInquiry(context.Background(), "buyer", "b@example.com", "idea-1", domain.InquiryInput{
		Subject: "s", Message: "m", ContactEmail: "b@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.SetMessageStatus(context.Background(), "owner", msg.ID, "bogus"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown status must be rejected, got %v", err)
	}
	if err := service.SetMessageStatus(context.Background(), "owner", msg.ID, domain.MessageStatusRead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := service.UnreadMessageCount(context.Background(), "owner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no unread messages after marking read, got %d", count)
	}
}
