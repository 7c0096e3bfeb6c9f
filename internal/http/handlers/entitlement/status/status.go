// Package status реализует HTTP-обработчик чтения статуса доступа
// пользователя: tier, premium-флаг и срок действия.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fitness-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fitness-backend/internal/http/response"
	"github.com/magabrotheeeer/fitness-backend/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

// Handler управляет HTTP-запросами на чтение статуса доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения статуса доступа.
type Service interface {
	Status(ctx context.Context, uid, email string) (*models.EntitlementStatus, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить статус доступа
// @Description Возвращает tier, premium-флаг и срок действия premium текущего пользователя.
// @Tags Entitlement
// @Produce  json
// @Success 200 {object} map[string]any "Статус доступа"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка чтения статуса"
// @Security BearerAuth
// @Router /entitlement [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	email, _ := r.Context().Value(middlewarectx.Email).(string)

	status, err := h.service.Status(r.Context(), uid, email)
	if err != nil {
		log.Error("failed to get entitlement status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get entitlement status"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(status))
}
