// Package sweeper периодически понижает профили с истёкшим триалом
// до free. Оплаченные подписки процесс не трогает: их жизненный цикл
// ведут webhook-события провайдера.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/fitness-backend/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
	"github.com/magabrotheeeer/fitness-backend/internal/rabbitmq"
)

// Repository определяет методы хранилища для sweep-прохода.
type Repository interface {
	FindExpiredTrials(ctx context.Context, now time.Time) ([]*models.Profile, error)
	DowngradeExpiredTrial(ctx context.Context, uid string, now time.Time) (int, error)
}

// Publisher публикует уведомления об истёкших триалах.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// EntitlementInvalidator сбрасывает кеш статуса доступа после понижения.
type EntitlementInvalidator interface {
	Invalidate(uid string)
}

// Service реализует периодический sweep истёкших триалов.
type Service struct {
	repo        Repository
	publisher   Publisher
	entitlement EntitlementInvalidator
	log         *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, publisher Publisher, entitlement EntitlementInvalidator, log *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		publisher:   publisher,
		entitlement: entitlement,
		log:         log,
	}
}

// Run запускает цикл sweep-проходов с заданным интервалом.
// Первый проход выполняется сразу. Останавливается по отмене контекста.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.Sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep выполняет один проход: находит истёкшие триалы, понижает их
// и публикует уведомления.
func (s *Service) Sweep(ctx context.Context) {
	s.log.Info("starting expired trial sweep")
	now := time.Now().UTC()

	profiles, err := s.repo.FindExpiredTrials(ctx, now)
	if err != nil {
		s.log.Error("failed to find expired trials", sl.Err(err))
		return
	}
	if len(profiles) == 0 {
		s.log.Info("no expired trials found")
		return
	}
	s.log.Info("found expired trials", "count", len(profiles))

	for _, profile := range profiles {
		n, err := s.repo.DowngradeExpiredTrial(ctx, profile.UID, now)
		if err != nil {
			s.log.Error("failed to downgrade trial", sl.Uid(profile.UID), sl.Err(err))
			continue
		}
		if n == 0 {
			// профиль успел измениться между выборкой и апдейтом
			continue
		}

		s.entitlement.Invalidate(profile.UID)
		if err := s.publisher.Publish(rabbitmq.RoutingKeyTrialExpired, models.BillingNotification{
			UserUID: profile.UID,
			Email:   profile.Email,
			Kind:    models.NotificationTrialExpired,
		}); err != nil {
			s.log.Error("failed to publish trial expired notification", sl.Err(err))
		}
		s.log.Info("trial expired, downgraded to free", sl.Uid(profile.UID))
	}
}
