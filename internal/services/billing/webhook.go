package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v78"

	"github.com/magabrotheeeer/fitness-backend/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
	"github.com/magabrotheeeer/fitness-backend/internal/rabbitmq"
	"github.com/magabrotheeeer/fitness-backend/internal/storage"
)

// HandleEvent переводит webhook-событие провайдера в изменение
// entitlement-состояния. Повторная доставка события — no-op. При ошибке
// мутации отметка об обработке снимается: ответ 500 заставит провайдера
// повторить доставку, и ретрай должен пройти через обработку заново.
func (s *Service) HandleEvent(ctx context.Context, event stripe.Event) error {
	const op = "billing.HandleEvent"

	firstSeen, err := s.repo.MarkEventProcessed(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !firstSeen {
		s.log.Info("skipping replayed event", slog.String("event_id", event.ID))
		return nil
	}

	if err := s.dispatchEvent(ctx, event); err != nil {
		if clearErr := s.repo.ClearEventProcessed(ctx, event.ID); clearErr != nil {
			s.log.Error("failed to clear processed event",
				slog.String("event_id", event.ID), sl.Err(clearErr))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// dispatchEvent разбирает payload события и применяет мутацию по типу.
func (s *Service) dispatchEvent(ctx context.Context, event stripe.Event) error {
	const op = "billing.dispatchEvent"

	eventTime := time.Unix(event.Created, 0)

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.handleCheckoutCompleted(ctx, &session, eventTime)

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.applySubscription(ctx, &sub, eventTime)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.handleSubscriptionDeleted(ctx, &sub, eventTime)

	case "invoice.payment_succeeded":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.handlePaymentSucceeded(ctx, &invoice, eventTime)

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.handlePaymentFailed(ctx, &invoice)

	default:
		// неизвестные типы подтверждаем, чтобы провайдер не копил ретраи
		s.log.Info("ignoring event", slog.String("type", string(event.Type)))
		return nil
	}
}

// resolveUID находит владельца подписки: сперва по metadata,
// затем по ссылке на customer.
func (s *Service) resolveUID(ctx context.Context, metadata map[string]string, customer *stripe.Customer) (string, error) {
	if uid, ok := metadata["user_uid"]; ok && uid != "" {
		return uid, nil
	}
	if customer == nil || customer.ID == "" {
		return "", fmt.Errorf("event has no user reference")
	}
	profile, err := s.repo.GetProfileByStripeCustomerID(ctx, customer.ID)
	if err != nil {
		return "", err
	}
	return profile.UID, nil
}

// handleCheckoutCompleted обрабатывает завершение checkout-сессии.
// Снапшот подписки в событии может быть неполным, поэтому состояние
// перечитывается у провайдера.
func (s *Service) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession, eventTime time.Time) error {
	if session.Subscription == nil || session.Subscription.ID == "" {
		s.log.Warn("checkout session without subscription", slog.String("session_id", session.ID))
		return nil
	}

	sub, err := s.provider.GetSubscription(ctx, session.Subscription.ID)
	if err != nil {
		return err
	}
	if sub.Metadata["user_uid"] == "" {
		// привязку uid переносим из сессии, если провайдер её ещё не отразил
		if uid := session.Metadata["user_uid"]; uid != "" {
			if sub.Metadata == nil {
				sub.Metadata = map[string]string{}
			}
			sub.Metadata["user_uid"] = uid
		}
	}
	return s.applySubscription(ctx, sub, eventTime)
}

// applySubscription синхронизирует зеркало подписки и premium-поля
// профиля с полученным снапшотом.
func (s *Service) applySubscription(ctx context.Context, sub *stripe.Subscription, eventTime time.Time) error {
	uid, err := s.resolveUID(ctx, sub.Metadata, sub.Customer)
	if err != nil {
		return err
	}

	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0)
	var priceID string
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		priceID = sub.Items.Data[0].Price.ID
	}

	applied, err := s.repo.UpsertSubscription(ctx, models.Subscription{
		ID:                sub.ID,
		UserUID:           uid,
		Status:            string(sub.Status),
		PriceID:           priceID,
		CurrentPeriodEnd:  periodEnd,
		ProviderUpdatedAt: eventTime,
	})
	if err != nil {
		return err
	}
	if !applied {
		// устаревший снапшот: зеркало держит более свежее состояние,
		// premium-поля профиля тоже остаются нетронутыми
		s.log.Info("skipping stale subscription snapshot",
			slog.String("subscription_id", sub.ID),
			slog.String("status", string(sub.Status)))
		return nil
	}

	switch sub.Status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		subID := sub.ID
		if err := s.repo.SetPremium(ctx, uid, models.TierPremium, &periodEnd, &subID); err != nil {
			return err
		}
	case stripe.SubscriptionStatusPastDue:
		// grace-период: доступ сохраняется до конца оплаченного периода
		subID := sub.ID
		if err := s.repo.SetPremium(ctx, uid, models.TierPremium, &periodEnd, &subID); err != nil {
			return err
		}
	default:
		// canceled, unpaid, incomplete_expired и прочие терминальные статусы
		if err := s.repo.SetPremium(ctx, uid, models.TierFree, nil, nil); err != nil {
			return err
		}
	}

	s.entitlement.Invalidate(uid)
	s.log.Info("subscription applied",
		sl.Uid(uid),
		slog.String("subscription_id", sub.ID),
		slog.String("status", string(sub.Status)))
	return nil
}

// handleSubscriptionDeleted отзывает premium и помечает зеркало canceled.
func (s *Service) handleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription, eventTime time.Time) error {
	uid, err := s.resolveUID(ctx, sub.Metadata, sub.Customer)
	if err != nil {
		return err
	}

	applied, err := s.repo.UpsertSubscription(ctx, models.Subscription{
		ID:                sub.ID,
		UserUID:           uid,
		Status:            models.SubscriptionStatusCanceled,
		CurrentPeriodEnd:  time.Unix(sub.CurrentPeriodEnd, 0),
		ProviderUpdatedAt: eventTime,
	})
	if err != nil {
		return err
	}
	if !applied {
		s.log.Info("skipping stale subscription snapshot",
			slog.String("subscription_id", sub.ID),
			slog.String("status", models.SubscriptionStatusCanceled))
		return nil
	}
	if err := s.repo.SetPremium(ctx, uid, models.TierFree, nil, nil); err != nil {
		return err
	}

	s.entitlement.Invalidate(uid)
	s.log.Info("subscription revoked", sl.Uid(uid), slog.String("subscription_id", sub.ID))
	return nil
}

// handlePaymentSucceeded подтверждает продление: перечитывает подписку
// у провайдера и применяет свежий снапшот.
func (s *Service) handlePaymentSucceeded(ctx context.Context, invoice *stripe.Invoice, eventTime time.Time) error {
	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		// разовые инвойсы entitlement не меняют
		return nil
	}
	sub, err := s.provider.GetSubscription(ctx, invoice.Subscription.ID)
	if err != nil {
		return err
	}
	return s.applySubscription(ctx, sub, eventTime)
}

// handlePaymentFailed переводит зеркало в past_due и публикует
// уведомление. Premium при этом не отзывается: отзыв произойдёт либо
// по subscription.deleted, либо по истечении оплаченного периода.
func (s *Service) handlePaymentFailed(ctx context.Context, invoice *stripe.Invoice) error {
	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		return nil
	}

	uid, err := s.repo.SetSubscriptionStatus(ctx, invoice.Subscription.ID, models.SubscriptionStatusPastDue)
	if err != nil {
		if errors.Is(err, storage.ErrSubscriptionNotFound) {
			s.log.Warn("payment failed for unknown subscription",
				slog.String("subscription_id", invoice.Subscription.ID))
			return nil
		}
		return err
	}

	profile, err := s.repo.GetProfileByUID(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(rabbitmq.RoutingKeyPaymentFailed, models.BillingNotification{
		UserUID: uid,
		Email:   profile.Email,
		Kind:    models.NotificationPaymentFailed,
	}); err != nil {
		s.log.Error("failed to publish payment failed notification", slog.Any("err", err))
	}

	s.log.Info("payment failed, grace period started", sl.Uid(uid))
	return nil
}
