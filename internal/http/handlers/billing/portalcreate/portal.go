// Package portalcreate реализует HTTP-обработчик создания сессии
// billing-портала платёжного провайдера.
package portalcreate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
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

// Handler управляет HTTP-запросами на создание сессий billing-портала.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания portal-сессии.
type Service interface {
	CreatePortalSession(ctx context.Context, uid, email string, req models.DummyPortalRequest) (string, error)
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
// @Summary Создать сессию billing-портала
// @Description Создает сессию портала управления подпиской. Возвращает URL для редиректа.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body models.DummyPortalRequest false "Параметры portal-сессии"
// @Success 200 {object} map[string]any "URL портала"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка при создании сессии"
// @Security BearerAuth
// @Router /billing/portal [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.portalcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	// тело опционально: без него используются URL из конфигурации
	var req models.DummyPortalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
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

	url, err := h.service.CreatePortalSession(r.Context(), uid, email, req)
	if err != nil {
		log.Error("failed to create portal session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create portal session"))
		return
	}

	log.Info("portal session created", sl.Uid(uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"url": url,
	}))
}
