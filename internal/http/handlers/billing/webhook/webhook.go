// Package webhook реализует HTTP-обработчик webhook-событий платёжного
// провайдера.
//
// Подпись события проверяется по заголовку Stripe-Signature до любой
// обработки. События с неверной подписью отклоняются с 400, ошибки
// обработки возвращают 500, чтобы провайдер повторил доставку.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/magabrotheeeer/fitness-backend/internal/http/response"
	"github.com/magabrotheeeer/fitness-backend/internal/lib/sl"
)

// maxBodyBytes ограничивает размер тела webhook-запроса.
const maxBodyBytes = int64(65536)

// Handler управляет HTTP-запросами webhook-событий провайдера.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// Service описывает интерфейс перевода события в изменение entitlement.
type Service interface {
	HandleEvent(ctx context.Context, event stripe.Event) error
}

// New создает новый Handler с переданными логгером, сервисом и секретом подписи.
func New(log *slog.Logger, service Service, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// ServeHTTP godoc
// @Summary Принять webhook платёжного провайдера
// @Description Проверяет подпись события и применяет его к entitlement-состоянию. Вызывается провайдером, не клиентами.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Success 200 {object} response.Response "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки, провайдер повторит доставку"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		log.Error("webhook signature verification failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}
	log.Info("webhook event received",
		slog.String("event_id", event.ID),
		slog.String("type", string(event.Type)))

	if err := h.service.HandleEvent(r.Context(), event); err != nil {
		log.Error("failed to handle event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process event"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"received": true,
	}))
}
