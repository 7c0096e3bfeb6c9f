// Package models содержит доменные структуры приложения: профиль пользователя,
// зеркало подписки платёжного провайдера, записи тренировок,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Tier уровень доступа пользователя.
type Tier string

const (
	// TierFree базовый бесплатный уровень.
	TierFree Tier = "free"
	// TierPro промежуточный платный уровень (legacy, промокоды старого формата).
	TierPro Tier = "pro"
	// TierPremium полный платный уровень.
	TierPremium Tier = "premium"
)

// Profile представляет профиль пользователя. Авторитетный источник
// состояния entitlement: premium-поля меняются только переводчиком
// платёжных событий, промокодами и sweeper-ом.
type Profile struct {
	UID                  string     // Идентификатор пользователя у identity-провайдера
	Email                string     // Электронная почта
	Tier                 Tier       // Текущий уровень доступа
	PremiumExpiry        *time.Time // Дата окончания premium (nil — бессрочно)
	StripeCustomerID     *string    // Ссылка на customer в Stripe
	StripeSubscriptionID *string    // Ссылка на активную подписку в Stripe
	PromoCode            *string    // Последний применённый промокод
	CreatedAt            time.Time
}

// EntitlementSnapshot кэшируемая часть профиля: только авторитетные поля,
// из которых premium-флаг каждый раз выводится заново.
type EntitlementSnapshot struct {
	Tier          Tier       `json:"tier"`
	PremiumExpiry *time.Time `json:"premium_expiry,omitempty"`
}

// EntitlementStatus ответ клиенту: снапшот плюс производный флаг.
type EntitlementStatus struct {
	Tier          Tier       `json:"tier"`
	Premium       bool       `json:"premium"`
	PremiumExpiry *time.Time `json:"premium_expiry,omitempty"`
}
