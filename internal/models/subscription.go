package models

import "time"

// Статусы локального зеркала подписки. Совпадают со статусами Stripe.
const (
	SubscriptionStatusActive     = "active"
	SubscriptionStatusPastDue    = "past_due"
	SubscriptionStatusCanceled   = "canceled"
	SubscriptionStatusIncomplete = "incomplete"
)

// Subscription локальное зеркало подписки платёжного провайдера.
// Записи не удаляются: при отмене статус переводится в canceled.
type Subscription struct {
	ID                string    // Идентификатор подписки у провайдера
	UserUID           string    // Владелец
	Status            string    // active | past_due | canceled | incomplete
	PriceID           string    // Тарифный план провайдера
	CurrentPeriodEnd  time.Time // Конец оплаченного периода
	ProviderUpdatedAt time.Time // Время события провайдера, защита от устаревших снапшотов
	UpdatedAt         time.Time
}

// DummyCheckoutRequest тело запроса на создание checkout-сессии.
type DummyCheckoutRequest struct {
	PriceID    string `json:"price_id" validate:"required"`
	SuccessURL string `json:"success_url,omitempty" validate:"omitempty,url"`
	CancelURL  string `json:"cancel_url,omitempty" validate:"omitempty,url"`
}

// DummyPortalRequest тело запроса на создание сессии billing-портала.
type DummyPortalRequest struct {
	ReturnURL string `json:"return_url,omitempty" validate:"omitempty,url"`
}

// DummyPromoRequest тело запроса на применение промокода.
type DummyPromoRequest struct {
	Code string `json:"code" validate:"required"`
}

// BillingNotification сообщение для notification-sender.
const (
	NotificationPaymentFailed = "payment_failed"
	NotificationTrialExpired  = "trial_expired"
)

// BillingNotification публикуется в RabbitMQ при событиях биллинга,
// требующих письма пользователю.
type BillingNotification struct {
	UserUID string `json:"user_uid"`
	Email   string `json:"email"`
	Kind    string `json:"kind"`
}
