package billing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v78"

	"github.com/magabrotheeeer/fitness-backend/internal/config"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
	"github.com/magabrotheeeer/fitness-backend/internal/rabbitmq"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetOrCreateProfile(ctx context.Context, uid, email string) (*models.Profile, error) {
	args := m.Called(ctx, uid, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *RepoMock) GetProfileByUID(ctx context.Context, uid string) (*models.Profile, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *RepoMock) GetProfileByStripeCustomerID(ctx context.Context, customerID string) (*models.Profile, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *RepoMock) SetPremium(ctx context.Context, uid string, tier models.Tier, expiry *time.Time, subscriptionID *string) error {
	return m.Called(ctx, uid, tier, expiry, subscriptionID).Error(0)
}
func (m *RepoMock) SetStripeCustomerID(ctx context.Context, uid, customerID string) error {
	return m.Called(ctx, uid, customerID).Error(0)
}
func (m *RepoMock) UpsertSubscription(ctx context.Context, sub models.Subscription) (bool, error) {
	args := m.Called(ctx, sub)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) SetSubscriptionStatus(ctx context.Context, id, status string) (string, error) {
	args := m.Called(ctx, id, status)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) ClearEventProcessed(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreateCustomer(ctx context.Context, email, userUID string) (string, error) {
	args := m.Called(ctx, email, userUID)
	return args.String(0), args.Error(1)
}
func (m *ProviderMock) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL, userUID string) (string, error) {
	args := m.Called(ctx, customerID, priceID, successURL, cancelURL, userUID)
	return args.String(0), args.Error(1)
}
func (m *ProviderMock) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}
func (m *ProviderMock) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Subscription), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

type InvalidatorMock struct{ mock.Mock }

func (m *InvalidatorMock) Invalidate(uid string) {
	m.Called(uid)
}

type fixture struct {
	repo        *RepoMock
	provider    *ProviderMock
	publisher   *PublisherMock
	invalidator *InvalidatorMock
	svc         *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:        new(RepoMock),
		provider:    new(ProviderMock),
		publisher:   new(PublisherMock),
		invalidator: new(InvalidatorMock),
	}
	cfg := config.Stripe{
		CheckoutSuccessURL: "https://app.example.com/success",
		CheckoutCancelURL:  "https://app.example.com/cancel",
		PortalReturnURL:    "https://app.example.com/account",
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = New(f.repo, f.provider, f.publisher, f.invalidator, cfg, log)
	return f
}

func TestCreateCheckoutSession_CreatesCustomerOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.On("GetOrCreateProfile", ctx, "user-1", "one@example.com").
		Return(&models.Profile{UID: "user-1", Email: "one@example.com"}, nil)
	f.provider.On("CreateCustomer", ctx, "one@example.com", "user-1").Return("cus_new", nil)
	f.repo.On("SetStripeCustomerID", ctx, "user-1", "cus_new").Return(nil)
	f.provider.On("CreateCheckoutSession", ctx, "cus_new", "price_monthly",
		"https://app.example.com/success", "https://app.example.com/cancel", "user-1").
		Return("https://checkout.example.com/s/1", nil)

	url, err := f.svc.CreateCheckoutSession(ctx, "user-1", "one@example.com",
		models.DummyCheckoutRequest{PriceID: "price_monthly"})
	assert.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/s/1", url)
	f.repo.AssertExpectations(t)
	f.provider.AssertExpectations(t)
}

func TestCreateCheckoutSession_ReusesExistingCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	customerID := "cus_existing"
	f.repo.On("GetOrCreateProfile", ctx, "user-1", "one@example.com").
		Return(&models.Profile{UID: "user-1", StripeCustomerID: &customerID}, nil)
	f.provider.On("CreateCheckoutSession", ctx, "cus_existing", "price_monthly",
		"https://other.example.com/ok", "https://app.example.com/cancel", "user-1").
		Return("https://checkout.example.com/s/2", nil)

	_, err := f.svc.CreateCheckoutSession(ctx, "user-1", "one@example.com",
		models.DummyCheckoutRequest{PriceID: "price_monthly", SuccessURL: "https://other.example.com/ok"})
	assert.NoError(t, err)
	f.provider.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePortalSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	customerID := "cus_existing"
	f.repo.On("GetOrCreateProfile", ctx, "user-1", "one@example.com").
		Return(&models.Profile{UID: "user-1", StripeCustomerID: &customerID}, nil)
	f.provider.On("CreatePortalSession", ctx, "cus_existing", "https://app.example.com/account").
		Return("https://portal.example.com/p/1", nil)

	url, err := f.svc.CreatePortalSession(ctx, "user-1", "one@example.com", models.DummyPortalRequest{})
	assert.NoError(t, err)
	assert.Equal(t, "https://portal.example.com/p/1", url)
}

func subscriptionEvent(t *testing.T, eventType string, sub stripe.Subscription) stripe.Event {
	raw, err := json.Marshal(sub)
	assert.NoError(t, err)
	return stripe.Event{
		ID:      "evt_1",
		Type:    stripe.EventType(eventType),
		Created: time.Now().Unix(),
		Data:    &stripe.EventData{Raw: raw},
	}
}

func TestHandleEvent_ReplayedEventIsNoop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.On("MarkEventProcessed", ctx, "evt_1").Return(false, nil)

	event := subscriptionEvent(t, "customer.subscription.updated", stripe.Subscription{ID: "sub_1"})
	err := f.svc.HandleEvent(ctx, event)
	assert.NoError(t, err)
	f.repo.AssertNotCalled(t, "UpsertSubscription", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "SetPremium", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleEvent_ActiveSubscriptionGrantsPremium(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
	sub := stripe.Subscription{
		ID:               "sub_1",
		Status:           stripe.SubscriptionStatusActive,
		CurrentPeriodEnd: periodEnd,
		Metadata:         map[string]string{"user_uid": "user-1"},
	}

	f.repo.On("MarkEventProcessed", ctx, "evt_1").Return(true, nil)
	f.repo.On("UpsertSubscription", ctx, mock.MatchedBy(func(s models.Subscription) bool {
		return s.ID == "sub_1" && s.UserUID == "user-1" && s.Status == models.SubscriptionStatusActive
	})).Return(true, nil)
	subID := "sub_1"
	f.repo.On("SetPremium", ctx, "user-1", models.TierPremium,
		mock.AnythingOfType("*time.Time"), &subID).Return(nil)
	f.invalidator.On("Invalidate", "user-1").Return()

	err := f.svc.HandleEvent(ctx, subscriptionEvent(t, "customer.subscription.updated", sub))
	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
	f.invalidator.AssertExpectations(t)
}

func TestHandleEvent_SubscriptionDeletedRevokesPremium(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sub := stripe.Subscription{
		ID:       "sub_1",
		Status:   stripe.SubscriptionStatusCanceled,
		Metadata: map[string]string{"user_uid": "user-1"},
	}

	f.repo.On("MarkEventProcessed", ctx, "evt_1").Return(true, nil)
	f.repo.On("UpsertSubscription", ctx, mock.MatchedBy(func(s models.Subscription) bool {
		return s.Status == models.SubscriptionStatusCanceled
	})).Return(true, nil)
	f.repo.On("SetPremium", ctx, "user-1", models.TierFree, (*time.Time)(nil), (*string)(nil)).Return(nil)
	f.invalidator.On("Invalidate", "user-1").Return()

	err := f.svc.HandleEvent(ctx, subscriptionEvent(t, "customer.subscription.deleted", sub))
	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestHandleEvent_ResolvesUIDByCustomerID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sub := stripe.Subscription{
		ID:               "sub_1",
		Status:           stripe.SubscriptionStatusActive,
		CurrentPeriodEnd: time.Now().Add(24 * time.Hour).Unix(),
		Customer:         &stripe.Customer{ID: "cus_1"},
	}

	f.repo.On("MarkEventProcessed", ctx, "evt_1").Return(true, nil)
	f.repo.On("GetProfileByStripeCustomerID", ctx, "cus_1").
		Return(&models.Profile{UID: "user-1"}, nil)
	f.repo.On("UpsertSubscription", ctx, mock.Anything).Return(true, nil)
	f.repo.On("SetPremium", ctx, "user-1", models.TierPremium, mock.Anything, mock.Anything).Return(nil)
	f.invalidator.On("Invalidate", "user-1").Return()

	err := f.svc.HandleEvent(ctx, subscriptionEvent(t, "customer.subscription.created", sub))
	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestHandleEvent_PaymentFailedKeepsPremiumAndNotifies(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	invoice := stripe.Invoice{
		Subscription: &stripe.Subscription{ID: "sub_1"},
	}
	raw, err := json.Marshal(invoice)
	assert.NoError(t, err)
	event := stripe.Event{
		ID:      "evt_1",
		Type:    "invoice.payment_failed",
		Created: time.Now().Unix(),
		Data:    &stripe.EventData{Raw: raw},
	}

	f.repo.On("MarkEventProcessed", ctx, "evt_1").Return(true, nil)
	f.repo.On("SetSubscriptionStatus", ctx, "sub_1", models.SubscriptionStatusPastDue).
		Return("user-1", nil)
	f.repo.On("GetProfileByUID", ctx, "user-1").
		Return(&models.Profile{UID: "user-1", Email: "one@example.com"}, nil)
	f.publisher.On("Publish", rabbitmq.RoutingKeyPaymentFailed, models.BillingNotification{
		UserUID: "user-1",
		Email:   "one@example.com",
		Kind:    models.NotificationPaymentFailed,
	}).Return(nil)

	err = f.svc.HandleEvent(ctx, event)
	assert.NoError(t, err)
	// premium не отзывается при первом неуспешном списании
	f.repo.AssertNotCalled(t, "SetPremium", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertExpectations(t)
}

func TestHandleEvent_CheckoutCompletedFetchesFreshSubscription(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	session := stripe.CheckoutSession{
		ID:           "cs_1",
		Subscription: &stripe.Subscription{ID: "sub_1"},
		Metadata:     map[string]string{"user_uid": "user-1"},
	}
	raw, err := json.Marshal(session)
	assert.NoError(t, err)
	event := stripe.Event{
		ID:      "evt_1",
		Type:    "checkout.session.completed",
		Created: time.Now().Unix(),
		Data:    &stripe.EventData{Raw: raw},
	}

	f.repo.On("MarkEventProcessed", ctx, "evt_1").Return(true, nil)
	f.provider.On("GetSubscription", ctx, "sub_1").Return(&stripe.Subscription{
		ID:               "sub_1",
		Status:           stripe.SubscriptionStatusActive,
		CurrentPeriodEnd: time.Now().Add(30 * 24 * time.Hour).Unix(),
	}, nil)
	f.repo.On("UpsertSubscription", ctx, mock.Anything).Return(true, nil)
	f.repo.On("SetPremium", ctx, "user-1", models.TierPremium, mock.Anything, mock.Anything).Return(nil)
	f.invalidator.On("Invalidate", "user-1").Return()

	err = f.svc.HandleEvent(ctx, event)
	assert.NoError(t, err)
	f.provider.AssertExpectations(t)
	f.repo.AssertExpectations(t)
}

func TestHandleEvent_StaleSnapshotLeavesProfileUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	now := time.Now()
	deleted := stripe.Subscription{
		ID:       "sub_1",
		Status:   stripe.SubscriptionStatusCanceled,
		Metadata: map[string]string{"user_uid": "user-1"},
	}
	deletedRaw, err := json.Marshal(deleted)
	assert.NoError(t, err)
	// событие updated создано раньше deleted, но доставлено позже
	stale := stripe.Subscription{
		ID:               "sub_1",
		Status:           stripe.SubscriptionStatusActive,
		CurrentPeriodEnd: now.Add(30 * 24 * time.Hour).Unix(),
		Metadata:         map[string]string{"user_uid": "user-1"},
	}
	staleRaw, err := json.Marshal(stale)
	assert.NoError(t, err)

	f.repo.On("MarkEventProcessed", ctx, "evt_deleted").Return(true, nil)
	f.repo.On("MarkEventProcessed", ctx, "evt_stale").Return(true, nil)
	f.repo.On("UpsertSubscription", ctx, mock.MatchedBy(func(s models.Subscription) bool {
		return s.Status == models.SubscriptionStatusCanceled
	})).Return(true, nil)
	// зеркало отвергает устаревший снапшот
	f.repo.On("UpsertSubscription", ctx, mock.MatchedBy(func(s models.Subscription) bool {
		return s.Status == models.SubscriptionStatusActive
	})).Return(false, nil)
	f.repo.On("SetPremium", ctx, "user-1", models.TierFree, (*time.Time)(nil), (*string)(nil)).Return(nil)
	f.invalidator.On("Invalidate", "user-1").Return()

	err = f.svc.HandleEvent(ctx, stripe.Event{
		ID:      "evt_deleted",
		Type:    "customer.subscription.deleted",
		Created: now.Unix(),
		Data:    &stripe.EventData{Raw: deletedRaw},
	})
	assert.NoError(t, err)

	err = f.svc.HandleEvent(ctx, stripe.Event{
		ID:      "evt_stale",
		Type:    "customer.subscription.updated",
		Created: now.Add(-time.Hour).Unix(),
		Data:    &stripe.EventData{Raw: staleRaw},
	})
	assert.NoError(t, err)

	// опоздавший active-снапшот не возвращает premium
	f.repo.AssertNotCalled(t, "SetPremium", ctx, "user-1", models.TierPremium,
		mock.Anything, mock.Anything)
	f.repo.AssertExpectations(t)
}

func TestHandleEvent_FailedMutationIsRetryable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
	sub := stripe.Subscription{
		ID:               "sub_1",
		Status:           stripe.SubscriptionStatusActive,
		CurrentPeriodEnd: periodEnd,
		Metadata:         map[string]string{"user_uid": "user-1"},
	}
	event := subscriptionEvent(t, "customer.subscription.updated", sub)

	f.repo.On("MarkEventProcessed", ctx, "evt_1").Return(true, nil).Twice()
	f.repo.On("UpsertSubscription", ctx, mock.Anything).
		Return(false, errors.New("connection reset")).Once()
	f.repo.On("ClearEventProcessed", ctx, "evt_1").Return(nil).Once()
	f.repo.On("UpsertSubscription", ctx, mock.Anything).Return(true, nil).Once()
	subID := "sub_1"
	f.repo.On("SetPremium", ctx, "user-1", models.TierPremium,
		mock.AnythingOfType("*time.Time"), &subID).Return(nil).Once()
	f.invalidator.On("Invalidate", "user-1").Return()

	// первая доставка падает, отметка об обработке снимается
	err := f.svc.HandleEvent(ctx, event)
	assert.Error(t, err)

	// ретрай провайдера доводит мутацию до конца
	err = f.svc.HandleEvent(ctx, event)
	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestHandleEvent_UnknownEventIgnored(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.On("MarkEventProcessed", ctx, "evt_1").Return(true, nil)

	event := stripe.Event{
		ID:      "evt_1",
		Type:    "charge.refunded",
		Created: time.Now().Unix(),
		Data:    &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	assert.NoError(t, f.svc.HandleEvent(ctx, event))
}
