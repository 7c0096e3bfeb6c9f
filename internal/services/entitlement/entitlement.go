// Package entitlement содержит бизнес-логику определения статуса
// доступа пользователя: tier, premium-флаг и срок действия.
package entitlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/fitness-backend/internal/lib/promo"
	"github.com/magabrotheeeer/fitness-backend/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

// ProfileRepository определяет методы хранилища профилей.
type ProfileRepository interface {
	// GetOrCreateProfile возвращает профиль, создавая его при первом обращении.
	GetOrCreateProfile(ctx context.Context, uid, email string) (*models.Profile, error)
	// GetProfileByUID возвращает профиль по uid.
	GetProfileByUID(ctx context.Context, uid string) (*models.Profile, error)
	// SetPremium перезаписывает premium-поля профиля.
	SetPremium(ctx context.Context, uid string, tier models.Tier, expiry *time.Time, subscriptionID *string) error
	// RecordPromoCode запоминает применённый промокод.
	RecordPromoCode(ctx context.Context, uid, code string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует чтение статуса доступа с кешированием
// и применение промокодов.
type Service struct {
	repo  ProfileRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo ProfileRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// CacheKey возвращает ключ кеша статуса доступа для пользователя.
func CacheKey(uid string) string {
	return "entitlement:" + uid
}

// cacheTTL ограничивает время жизни снапшота в кеше: даже при потерянной
// инвалидации статус сойдётся с базой за это время.
const cacheTTL = 5 * time.Minute

// IsPremiumNow вычисляет premium-флаг из tier и срока действия на момент
// now. Флаг никогда не хранится: он всегда производная величина.
func IsPremiumNow(tier models.Tier, expiry *time.Time, now time.Time) bool {
	if tier == models.TierFree {
		return false
	}
	if expiry == nil {
		// бессрочный грант
		return true
	}
	return expiry.After(now)
}

// Status возвращает статус доступа пользователя. В кеше хранится только
// снапшот (tier, срок), premium-флаг пересчитывается при каждом чтении.
func (s *Service) Status(ctx context.Context, uid, email string) (*models.EntitlementStatus, error) {
	var snapshot models.EntitlementSnapshot
	cacheKey := CacheKey(uid)

	found, err := s.cache.Get(cacheKey, &snapshot)
	if err != nil {
		s.log.Warn("failed to read entitlement cache", slog.String("key", cacheKey), slog.Any("err", err))
		found = false
	}
	if !found {
		profile, err := s.repo.GetOrCreateProfile(ctx, uid, email)
		if err != nil {
			return nil, err
		}
		snapshot = models.EntitlementSnapshot{
			Tier:          profile.Tier,
			PremiumExpiry: profile.PremiumExpiry,
		}
		if err := s.cache.Set(cacheKey, snapshot, cacheTTL); err != nil {
			s.log.Warn("failed to cache entitlement", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}

	now := time.Now()
	return &models.EntitlementStatus{
		Tier:          snapshot.Tier,
		Premium:       IsPremiumNow(snapshot.Tier, snapshot.PremiumExpiry, now),
		PremiumExpiry: snapshot.PremiumExpiry,
	}, nil
}

// Invalidate сбрасывает кеш статуса доступа пользователя. Вызывается
// после любой мутации premium-полей.
func (s *Service) Invalidate(uid string) {
	cacheKey := CacheKey(uid)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate entitlement cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
}

// ApplyPromo применяет промокод к профилю пользователя. Ссылка на
// подписку провайдера при этом сохраняется: промокод не должен
// перетирать оплаченную подписку.
func (s *Service) ApplyPromo(ctx context.Context, uid, email, code string) (*promo.Result, error) {
	result := promo.Validate(code)
	if !result.Valid {
		return &result, nil
	}

	profile, err := s.repo.GetOrCreateProfile(ctx, uid, email)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var expiry *time.Time
	switch result.Grant {
	case promo.GrantLifetime:
		expiry = nil
	case promo.GrantTrial:
		t := now.Add(time.Duration(result.Days) * 24 * time.Hour)
		expiry = &t
	}

	if holdsStrongerGrant(profile, expiry, now) {
		s.log.Info("promo grant skipped, existing entitlement is stronger",
			sl.Uid(uid),
			slog.String("grant", string(result.Grant)))
		return &result, nil
	}

	if err := s.repo.SetPremium(ctx, uid, models.TierPremium, expiry, profile.StripeSubscriptionID); err != nil {
		return nil, err
	}
	if err := s.repo.RecordPromoCode(ctx, uid, code); err != nil {
		s.log.Warn("failed to record promo code", sl.Uid(uid), slog.Any("err", err))
	}
	s.Invalidate(uid)

	s.log.Info("promo applied",
		sl.Uid(uid),
		slog.String("grant", string(result.Grant)))
	return &result, nil
}

// holdsStrongerGrant сообщает, что текущий грант профиля не слабее нового:
// бессрочный premium или датированный срок, заканчивающийся позже нового.
// Такой грант промокод не перетирает.
func holdsStrongerGrant(profile *models.Profile, newExpiry *time.Time, now time.Time) bool {
	if !IsPremiumNow(profile.Tier, profile.PremiumExpiry, now) {
		return false
	}
	if profile.PremiumExpiry == nil {
		return true
	}
	if newExpiry == nil {
		return false
	}
	return profile.PremiumExpiry.After(*newExpiry)
}
