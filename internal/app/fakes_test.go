package app

import (
	"context"
	"sync"
	"time"

	"github.com/HGJ777/IdeaVault/internal/domain"
	"github.com/HGJ777/IdeaVault/internal/store"
)

// fakeIdeaRepo is an in-memory IdeaRepository for service tests.
type fakeIdeaRepo struct {
	mu      sync.Mutex
	ideas   map[string]*domain.Idea
	updates map[string]*domain.IdeaUpdate

	deleteCalls []string
	failDelete  error
}

func newFakeIdeaRepo() *fakeIdeaRepo {
	return &fakeIdeaRepo{
		ideas:   make(map[string]*domain.Idea),
		updates: make(map[string]*domain.IdeaUpdate),
	}
}

func (f *fakeIdeaRepo) put(idea *domain.Idea) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *idea
	f.ideas[idea.ID] = &copied
}

func (f *fakeIdeaRepo) get(id string) *domain.Idea {
	f.mu.Lock()
	defer f.mu.Unlock()
	if idea, ok := f.ideas[id]; ok {
		copied := *idea
		return &copied
	}
	return nil
}

func (f *fakeIdeaRepo) CreateIdea(_ context.Context, idea *domain.Idea) (*domain.Idea, error) {
	idea.CreatedAt = time.Now()
	idea.UpdatedAt = idea.CreatedAt
	f.put(idea)
	return f.get(idea.ID), nil
}

func (f *fakeIdeaRepo) GetIdeaByID(_ context.Context, id string) (*domain.Idea, error) {
	if idea := f.get(id); idea != nil {
		return idea, nil
	}
	return nil, store.ErrIdeaNotFound
}

func (f *fakeIdeaRepo) GetIdeaForOwner(_ context.Context, id, userID string) (*domain.Idea, error) {
	if idea := f.get(id); idea != nil && idea.UserID == userID {
		return idea, nil
	}
	return nil, store.ErrIdeaNotFound
}

func (f *fakeIdeaRepo) ListPublicIdeas(_ context.Context, _ domain.IdeaFilter) ([]domain.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Idea
	for _, idea := range f.ideas {
		if !idea.IsPrivate {
			out = append(out, *idea)
		}
	}
	return out, nil
}

func (f *fakeIdeaRepo) ListIdeasByUser(_ context.Context, userID string) ([]domain.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Idea
	for _, idea := range f.ideas {
		if idea.UserID == userID {
			out = append(out, *idea)
		}
	}
	return out, nil
}

func (f *fakeIdeaRepo) UpdateIdeaCategories(_ context.Context, id, userID, category string, tags []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idea, ok := f.ideas[id]
	if !ok || idea.UserID != userID {
		return store.ErrIdeaNotFound
	}
	idea.Category = category
	idea.Tags = tags
	return nil
}

func (f *fakeIdeaRepo) MarkIdeaPublished(_ context.Context, id, userID, subscriptionID, priceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idea, ok := f.ideas[id]
	if !ok || idea.UserID != userID || !idea.IsPrivate {
		return store.ErrIdeaNotFound
	}
	pending := domain.BillingStatusPending
	idea.IsPrivate = false
	idea.BillingStatus = &pending
	idea.SubscriptionID = &subscriptionID
	idea.StripePriceID = &priceID
	return nil
}

func (f *fakeIdeaRepo) SetPendingSubscription(_ context.Context, id, userID, subscriptionID, priceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idea, ok := f.ideas[id]
	if !ok || idea.UserID != userID {
		return store.ErrIdeaNotFound
	}
	pending := domain.BillingStatusPending
	idea.BillingStatus = &pending
	idea.SubscriptionID = &subscriptionID
	idea.StripePriceID = &priceID
	return nil
}

func (f *fakeIdeaRepo) SetBillingActive(_ context.Context, id, userID, subscriptionID, priceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idea, ok := f.ideas[id]
	if !ok || idea.UserID != userID {
		return store.ErrIdeaNotFound
	}
	active := domain.BillingStatusActive
	idea.IsPrivate = false
	idea.BillingStatus = &active
	idea.SubscriptionID = &subscriptionID
	idea.StripePriceID = &priceID
	return nil
}

func (f *fakeIdeaRepo) SetBillingPastDue(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idea, ok := f.ideas[id]
	if !ok || idea.UserID != userID {
		return store.ErrIdeaNotFound
	}
	pastDue := domain.BillingStatusPastDue
	idea.BillingStatus = &pastDue
	return nil
}

func (f *fakeIdeaRepo) RevertIdeaToPrivate(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idea, ok := f.ideas[id]
	if !ok || idea.UserID != userID {
		return store.ErrIdeaNotFound
	}
	canceled := domain.BillingStatusCanceled
	idea.IsPrivate = true
	idea.BillingStatus = &canceled
	idea.SubscriptionID = nil
	return nil
}

func (f *fakeIdeaRepo) DeleteIdea(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	if f.failDelete != nil {
		return f.failDelete
	}
	idea, ok := f.ideas[id]
	if !ok || idea.UserID != userID {
		return store.ErrIdeaNotFound
	}
	delete(f.ideas, id)
	return nil
}

func (f *fakeIdeaRepo) IncrementViews(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idea, ok := f.ideas[id]
	if !ok {
		return store.ErrIdeaNotFound
	}
	idea.Views++
	return nil
}

func (f *fakeIdeaRepo) GetUserIdeaStats(_ context.Context, userID string) (*domain.IdeaStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &domain.IdeaStats{}
	for _, idea := range f.ideas {
		if idea.UserID != userID {
			continue
		}
		stats.TotalIdeas++
		stats.TotalViews += idea.Views
		if idea.IsPrivate {
			stats.PrivateIdeas++
		} else {
			stats.PublicIdeas++
		}
	}
	stats.MonthlyBillUSD = float64(stats.PublicIdeas)
	return stats, nil
}

func (f *fakeIdeaRepo) DeleteStalePendingIdeas(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, idea := range f.ideas {
		if idea.BillingStatus != nil && *idea.BillingStatus == domain.BillingStatusPending && idea.CreatedAt.Before(cutoff) {
			delete(f.ideas, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeIdeaRepo) CreateIdeaUpdate(_ context.Context, update *domain.IdeaUpdate) (*domain.IdeaUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now()
	}
	copied := *update
	f.updates[update.ID] = &copied
	return update, nil
}

func (f *fakeIdeaRepo) ListIdeaUpdates(_ context.Context, ideaID string) ([]domain.IdeaUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.IdeaUpdate
	for _, u := range f.updates {
		if u.IdeaID == ideaID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeIdeaRepo) GetIdeaUpdate(_ context.Context, id, userID string) (*domain.IdeaUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.updates[id]; ok && u.UserID == userID {
		copied := *u
		return &copied, nil
	}
	return nil, store.ErrIdeaUpdateNotFound
}

func (f *fakeIdeaRepo) EditIdeaUpdate(_ context.Context, id, userID, content, updateType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.updates[id]
	if !ok || u.UserID != userID {
		return store.ErrIdeaUpdateNotFound
	}
	u.Content = content
	u.UpdateType = updateType
	return nil
}

func (f *fakeIdeaRepo) DeleteIdeaUpdate(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.updates[id]
	if !ok || u.UserID != userID {
		return store.ErrIdeaUpdateNotFound
	}
	delete(f.updates, id)
	return nil
}

// fakeStripe is a scriptable StripeGateway.
type fakeStripe struct {
	failCreateSubscription error
	subscriptionMetadata   map[string]string

	createdCustomers      int
	createdSubscriptions  int
	canceledSubscriptions []string
}

func (f *fakeStripe) CreateCustomer(_ context.Context, email, userID string) (*domain.StripeCustomer, error) {
	f.createdCustomers++
	return &domain.StripeCustomer{ID: "cus_test", Email: email}, nil
}

func (f *fakeStripe) CreateSubscription(_ context.Context, customerID, priceID, ideaID, userID string) (*domain.StripeSubscription, error) {
	if f.failCreateSubscription != nil {
		return nil, f.failCreateSubscription
	}
	f.createdSubscriptions++
	return &domain.StripeSubscription{
		ID:       "sub_test",
		Customer: customerID,
		Status:   "incomplete",
		Metadata: map[string]string{"idea_id": ideaID, "user_id": userID},
		LatestInvoice: &domain.StripeInvoice{
			PaymentIntent: &domain.StripePaymentIntent{ClientSecret: "pi_secret"},
		},
	}, nil
}

func (f *fakeStripe) GetSubscription(_ context.Context, subscriptionID string) (*domain.StripeSubscription, error) {
	return &domain.StripeSubscription{ID: subscriptionID, Metadata: f.subscriptionMetadata}, nil
}

func (f *fakeStripe) CancelSubscription(_ context.Context, subscriptionID string) (*domain.StripeSubscription, error) {
	f.canceledSubscriptions = append(f.canceledSubscriptions, subscriptionID)
	return &domain.StripeSubscription{ID: subscriptionID, Status: "canceled"}, nil
}

func (f *fakeStripe) AttachPaymentMethod(_ context.Context, paymentMethodID, customerID string) error {
	return nil
}

func (f *fakeStripe) ListPaymentMethods(_ context.Context, customerID string) ([]domain.StripePaymentMethod, error) {
	return []domain.StripePaymentMethod{}, nil
}

// fakePublisher records published billing events.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	exchange   string
	routingKey string
	body       interface{}
}

func (f *fakePublisher) Publish(_ context.Context, exchange, routingKey string, body interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{exchange: exchange, routingKey: routingKey, body: body})
	return nil
}

// fakeSubscriptionRepo is an in-memory SubscriptionRepository.
type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*domain.UserSubscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]*domain.UserSubscription)}
}

func (f *fakeSubscriptionRepo) GetByUserID(_ context.Context, userID string) (*domain.UserSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subs[userID]; ok {
		copied := *sub
		return &copied, nil
	}
	return nil, store.ErrSubscriptionNotFound
}

func (f *fakeSubscriptionRepo) Upsert(_ context.Context, sub *domain.UserSubscription) (*domain.UserSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *sub
	f.subs[sub.UserID] = &copied
	return sub, nil
}

func (f *fakeSubscriptionRepo) SetTotalMonthlyCost(_ context.Context, userID string, cost float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[userID]
	if !ok {
		return store.ErrSubscriptionNotFound
	}
	sub.TotalMonthlyCost = cost
	return nil
}

// fakeMessageRepo is an in-memory MessageRepository that also records the
// notifications written alongside messages.
type fakeMessageRepo struct {
	mu            sync.Mutex
	messages      map[string]*domain.Message
	notifications []*domain.Notification
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string]*domain.Message)}
}

func (f *fakeMessageRepo) CreateWithNotification(_ context.Context, msg *domain.Message, n *domain.Notification) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.CreatedAt = time.Now()
	copied := *msg
	f.messages[msg.ID] = &copied
	f.notifications = append(f.notifications, n)
	return msg, nil
}

func (f *fakeMessageRepo) ListByRecipient(_ context.Context, userID string, _ domain.MessageFilter) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Message
	for _, m := range f.messages {
		if m.RecipientID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) GetByID(_ context.Context, id, recipientID string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.messages[id]; ok && m.RecipientID == recipientID {
		copied := *m
		return &copied, nil
	}
	return nil, store.ErrMessageNotFound
}

func (f *fakeMessageRepo) UpdateStatus(_ context.Context, id, recipientID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok || m.RecipientID != recipientID {
		return store.ErrMessageNotFound
	}
	m.Status = status
	return nil
}

func (f *fakeMessageRepo) CountUnread(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, m := range f.messages {
		if m.RecipientID == userID && m.Status == domain.MessageStatusSent {
			count++
		}
	}
	return count, nil
}

// fakeNotificationRepo is an in-memory NotificationRepository.
type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]*domain.Notification
	failCreate    error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[string]*domain.Notification)}
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	n.CreatedAt = time.Now()
	copied := *n
	f.notifications[n.ID] = &copied
	return n, nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string, _ domain.NotificationFilter) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok || n.UserID != userID {
		return store.ErrNotificationNotFound
	}
	n.Read = true
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) Delete(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok || n.UserID != userID {
		return store.ErrNotificationNotFound
	}
	delete(f.notifications, id)
	return nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) DeleteReadOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, n := range f.notifications {
		if n.Read && n.CreatedAt.Before(cutoff) {
			delete(f.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}
