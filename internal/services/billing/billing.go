// Package billing содержит бизнес-логику работы с платёжным провайдером:
// создание checkout- и portal-сессий и перевод webhook-событий
// в изменения entitlement-состояния.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v78"

	"github.com/magabrotheeeer/fitness-backend/internal/config"
	"github.com/magabrotheeeer/fitness-backend/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

// Repository определяет методы хранилища, нужные биллингу.
type Repository interface {
	GetOrCreateProfile(ctx context.Context, uid, email string) (*models.Profile, error)
	GetProfileByUID(ctx context.Context, uid string) (*models.Profile, error)
	GetProfileByStripeCustomerID(ctx context.Context, customerID string) (*models.Profile, error)
	SetPremium(ctx context.Context, uid string, tier models.Tier, expiry *time.Time, subscriptionID *string) error
	SetStripeCustomerID(ctx context.Context, uid, customerID string) error
	UpsertSubscription(ctx context.Context, sub models.Subscription) (bool, error)
	SetSubscriptionStatus(ctx context.Context, id, status string) (string, error)
	MarkEventProcessed(ctx context.Context, eventID string) (bool, error)
	ClearEventProcessed(ctx context.Context, eventID string) error
}

// Provider определяет методы клиента платёжного провайдера.
type Provider interface {
	CreateCustomer(ctx context.Context, email, userUID string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL, userUID string) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
}

// Publisher публикует уведомления в очередь для notification-sender.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// EntitlementInvalidator сбрасывает кеш статуса доступа после мутаций.
type EntitlementInvalidator interface {
	Invalidate(uid string)
}

// Service реализует бизнес-логику биллинга.
type Service struct {
	repo        Repository
	provider    Provider
	publisher   Publisher
	entitlement EntitlementInvalidator
	cfg         config.Stripe
	log         *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, provider Provider, publisher Publisher,
	entitlement EntitlementInvalidator, cfg config.Stripe, log *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		provider:    provider,
		publisher:   publisher,
		entitlement: entitlement,
		cfg:         cfg,
		log:         log,
	}
}

// ensureCustomer возвращает customer ID профиля, создавая customer
// у провайдера при первом обращении и сохраняя ссылку в профиле.
func (s *Service) ensureCustomer(ctx context.Context, uid, email string) (string, error) {
	profile, err := s.repo.GetOrCreateProfile(ctx, uid, email)
	if err != nil {
		return "", err
	}
	if profile.StripeCustomerID != nil && *profile.StripeCustomerID != "" {
		return *profile.StripeCustomerID, nil
	}

	customerID, err := s.provider.CreateCustomer(ctx, email, uid)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetStripeCustomerID(ctx, uid, customerID); err != nil {
		return "", err
	}
	s.log.Info("created payment customer", sl.Uid(uid))
	return customerID, nil
}

// CreateCheckoutSession создаёт checkout-сессию и возвращает URL редиректа.
// URL возврата берутся из запроса, при их отсутствии — из конфигурации.
func (s *Service) CreateCheckoutSession(ctx context.Context, uid, email string, req models.DummyCheckoutRequest) (string, error) {
	customerID, err := s.ensureCustomer(ctx, uid, email)
	if err != nil {
		return "", err
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = s.cfg.CheckoutSuccessURL
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.cfg.CheckoutCancelURL
	}

	url, err := s.provider.CreateCheckoutSession(ctx, customerID, req.PriceID, successURL, cancelURL, uid)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return url, nil
}

// CreatePortalSession создаёт сессию billing-портала для управления подпиской.
func (s *Service) CreatePortalSession(ctx context.Context, uid, email string, req models.DummyPortalRequest) (string, error) {
	customerID, err := s.ensureCustomer(ctx, uid, email)
	if err != nil {
		return "", err
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = s.cfg.PortalReturnURL
	}

	url, err := s.provider.CreatePortalSession(ctx, customerID, returnURL)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return url, nil
}
