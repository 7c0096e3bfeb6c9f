// Package checkoutcreate реализует HTTP-обработчик создания checkout-сессии
// платёжного провайдера.
//
// Handler принимает JSON-запрос с price_id и опциональными URL возврата,
// валидирует их, извлекает uid пользователя из контекста и возвращает URL
// для редиректа на страницу оплаты.
package checkoutcreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fitness-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fitness-backend/internal/http/response"
	"github.com/magabrotheeeer/fitness-backend/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

// Handler управляет HTTP-запросами на создание checkout-сессий.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики биллинга
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания checkout-сессии.
type Service interface {
	CreateCheckoutSession(ctx context.Context, uid, email string, req models.DummyCheckoutRequest) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать checkout-сессию
// @Description Создает checkout-сессию платёжного провайдера для оформления premium-подписки. Возвращает URL для редиректа.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body models.DummyCheckoutRequest true "Параметры checkout-сессии"
// @Success 200 {object} map[string]any "URL checkout-сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка при создании сессии"
// @Security BearerAuth
// @Router /billing/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkoutcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	email, _ := r.Context().Value(middlewarectx.Email).(string)

	url, err := h.service.CreateCheckoutSession(r.Context(), uid, email, req)
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create checkout session"))
		return
	}

	log.Info("checkout session created", sl.Uid(uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"url": url,
	}))
}
