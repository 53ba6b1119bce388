/**
 * @description
 * This file contains the core business logic for idea records: creation,
 * visibility, edits, deletion, view counting, and the append-only progress
 * timeline. The one rule with teeth lives here: once an idea has been made
 * public, no user-initiated edit can ever flip it back to private.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HGJ777/IdeaVault/internal/domain"
	"github.com/HGJ777/IdeaVault/internal/store"
)

// Policy errors surfaced to the API layer.
var (
	// ErrPrivacyDowngrade rejects any attempt to make a public idea private
	// through an edit. Reverting to private only happens through subscription
	// cancellation, because the public timestamp claim must stay auditable.
	ErrPrivacyDowngrade = errors.New("public ideas cannot be changed back to private")
	// ErrCheckoutRequired rejects publishing through a plain edit; the
	// private-to-public transition must go through checkout so a subscription
	// exists before the flag flips.
	ErrCheckoutRequired = errors.New("making an idea public requires completing checkout")
	// ErrEditWindowClosed rejects edits to timeline updates after the UTC day
	// they were created.
	ErrEditWindowClosed = errors.New("updates can only be edited on the day they were created")
	// ErrValidation wraps input problems the caller can fix.
	ErrValidation = errors.New("invalid input")
)

var ideaUpdateTypes = map[string]bool{
	"progress":  true,
	"milestone": true,
	"pivot":     true,
	"note":      true,
}

// IdeaService provides the business logic for idea management.
type IdeaService struct {
	repo   store.IdeaRepository
	stripe StripeGateway
}

// NewIdeaService creates a new idea service.
func NewIdeaService(repo store.IdeaRepository, stripe StripeGateway) *IdeaService {
	return &IdeaService{repo: repo, stripe: stripe}
}

// CreateIdea stores a new idea. Private ideas are free and complete
// immediately. Public ideas are inserted optimistically with
// billing_status=pending; the caller must follow up with checkout, and the
// billing layer deletes the row if subscription creation fails.
func (s *IdeaService) CreateIdea(ctx context.Context, userID string, input domain.NewIdeaInput) (*domain.Idea, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(title) > 100 {
		title = title[:100]
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if len(input.Categories) == 0 {
		return nil, fmt.Errorf("%w: at least one category is required", ErrValidation)
	}
	if len(input.Categories) > 5 {
		return nil, fmt.Errorf("%w: at most five categories are allowed", ErrValidation)
	}

	idea := &domain.Idea{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		Category:       input.Categories[0],
		Tags:           input.Categories,
		IsPrivate:      input.IsPrivate,
		AllowLicensing: input.AllowLicensing,
		Status:         domain.IdeaStatusActive,
	}
	if !input.IsPrivate {
		pending := domain.BillingStatusPending
		idea.BillingStatus = &pending
	}

	created, err := s.repo.CreateIdea(ctx, idea)
	if err != nil {
		return nil, fmt.Errorf("create idea: %w", err)
	}
	return created, nil
}

// GetIdeaForViewer returns an idea if the viewer is allowed to see it.
// Private ideas are only visible to their owner; to everyone else they do not
// exist.
func (s *IdeaService) GetIdeaForViewer(ctx context.Context, viewerID, ideaID string) (*domain.Idea, error) {
	idea, err := s.repo.GetIdeaByID(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.IsPrivate && idea.UserID != viewerID {
		return nil, store.ErrIdeaNotFound
	}
	return idea, nil
}

// Gallery lists public ideas with search, category and sort parameters.
func (s *IdeaService) Gallery(ctx context.Context, filter domain.IdeaFilter) ([]domain.Idea, error) {
	return s.repo.ListPublicIdeas(ctx, filter)
}

// ListMine returns every idea owned by the user.
func (s *IdeaService) ListMine(ctx context.Context, userID string) ([]domain.Idea, error) {
	return s.repo.ListIdeasByUser(ctx, userID)
}

// Stats aggregates the user's portfolio counters.
func (s *IdeaService) Stats(ctx context.Context, userID string) (*domain.IdeaStats, error) {
	return s.repo.GetUserIdeaStats(ctx, userID)
}

// RecordView bumps an idea's view counter. Views by the owner are ignored.
func (s *IdeaService) RecordView(ctx context.Context, viewerID, ideaID string) error {
	idea, err := s.repo.GetIdeaByID(ctx, ideaID)
	if err != nil {
		return err
	}
	if idea.UserID == viewerID {
		return nil
	}
	if idea.IsPrivate {
		return store.ErrIdeaNotFound
	}
	return s.repo.IncrementViews(ctx, ideaID)
}

// UpdateIdea applies a category/tags edit. Title and description are
// immutable after creation. Privacy transitions are rejected here in both
// directions: making a public idea private violates the one-way policy, and
// making a private idea public must go through checkout instead.
func (s *IdeaService) UpdateIdea(ctx context.Context, userID, ideaID string, edit domain.IdeaEdit) (*domain.Idea, error) {
	current, err := s.repo.GetIdeaForOwner(ctx, ideaID, userID)
	if err != nil {
		return nil, err
	}

	if edit.IsPrivate != nil && *edit.IsPrivate != current.IsPrivate {
		if !current.IsPrivate && *edit.IsPrivate {
			return nil, ErrPrivacyDowngrade
		}
		return nil, ErrCheckoutRequired
	}

	if len(edit.Categories) == 0 {
		return nil, fmt.Errorf("%w: at least one category is required", ErrValidation)
	}
	if len(edit.Categories) > 5 {
		return nil, fmt.Errorf("%w: at most five categories are allowed", ErrValidation)
	}

	if err := s.repo.UpdateIdeaCategories(ctx, ideaID, userID, edit.Categories[0], edit.Categories); err != nil {
		return nil, err
	}
	return s.repo.GetIdeaForOwner(ctx, ideaID, userID)
}

// DeleteIdea removes an idea. If the idea still carries a subscription the
// recurring charge is cancelled first, best effort: a processor outage must
// not leave the user unable to delete their own record.
func (s *IdeaService) DeleteIdea(ctx context.Context, userID, ideaID string) error {
	idea, err := s.repo.GetIdeaForOwner(ctx, ideaID, userID)
	if err != nil {
		return err
	}
	if idea.SubscriptionID != nil && *idea.SubscriptionID != "" {
		if _, err := s.stripe.CancelSubscription(ctx, *idea.SubscriptionID); err != nil {
			log.Printf("WARN: failed to cancel subscription %s while deleting idea %s: %v", *idea.SubscriptionID, ideaID, err)
		}
	}
	return s.repo.DeleteIdea(ctx, ideaID, userID)
}

// AddIdeaUpdate appends a progress note to an idea the user owns.
func (s *IdeaService) AddIdeaUpdate(ctx context.Context, userID, ideaID, content, updateType string) (*domain.IdeaUpdate, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: update content is required", ErrValidation)
	}
	if updateType == "" {
		updateType = "note"
	}
	if !ideaUpdateTypes[updateType] {
		return nil, fmt.Errorf("%w: unknown update type %q", ErrValidation, updateType)
	}

	if _, err := s.repo.GetIdeaForOwner(ctx, ideaID, userID); err != nil {
		return nil, err
	}

	return s.repo.CreateIdeaUpdate(ctx, &domain.IdeaUpdate{
		ID:         uuid.NewString(),
		IdeaID:     ideaID,
		UserID:     userID,
		Content:    strings.TrimSpace(content),
		UpdateType: updateType,
	})
}

// ListIdeaUpdates returns an idea's timeline, subject to the same visibility
// rules as the idea itself.
func (s *IdeaService) ListIdeaUpdates(ctx context.Context, viewerID, ideaID string) ([]domain.IdeaUpdate, error) {
	if _, err := s.GetIdeaForViewer(ctx, viewerID, ideaID); err != nil {
		return nil, err
	}
	return s.repo.ListIdeaUpdates(ctx, ideaID)
}

// EditIdeaUpdate rewrites a timeline update. Updates are only editable on the
// UTC calendar day they were created; after that the owner can delete and
// re-post, keeping the timeline honest.
func (s *IdeaService) EditIdeaUpdate(ctx context.Context, userID, updateID, content, updateType string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: update content is required", ErrValidation)
	}
	if updateType != "" && !ideaUpdateTypes[updateType] {
		return fmt.Errorf("%w: unknown update type %q", ErrValidation, updateType)
	}

	update, err := s.repo.GetIdeaUpdate(ctx, updateID, userID)
	if err != nil {
		return err
	}
	if !editableOn(update.CreatedAt, time.Now()) {
		return ErrEditWindowClosed
	}
	if updateType == "" {
		updateType = update.UpdateType
	}
	return s.repo.EditIdeaUpdate(ctx, updateID, userID, strings.TrimSpace(content), updateType)
}

// DeleteIdeaUpdate removes a timeline update the user owns.
func (s *IdeaService) DeleteIdeaUpdate(ctx context.Context, userID, updateID string) error {
	return s.repo.DeleteIdeaUpdate(ctx, updateID, userID)
}

// editableOn reports whether a timeline update created at createdAt may still
// be edited at now. Both instants are compared on the UTC calendar day.
func editableOn(createdAt, now time.Time) bool {
	cy, cm, cd := createdAt.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return cy == ny && cm == nm && cd == nd
}
