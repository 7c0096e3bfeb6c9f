// Package chat реализует HTTP-обработчик диалога с AI-тренером.
// Маршрут закрыт premium-гейтом на уровне роутера.
package chat

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

// Handler управляет HTTP-запросами диалога с AI-тренером.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс диалога с моделью.
type Service interface {
	Chat(ctx context.Context, uid, message string) (string, error)
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
// @Summary Спросить AI-тренера
// @Description Отправляет сообщение AI-тренеру и возвращает его ответ. Требует активный premium.
// @Tags Coach
// @Accept  json
// @Produce  json
// @Param request body models.DummyChatRequest true "Сообщение пользователя"
// @Success 200 {object} map[string]any "Ответ тренера"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется premium"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка генерации ответа"
// @Security BearerAuth
// @Router /coach/chat [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coach.chat"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyChatRequest
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

	reply, err := h.service.Chat(r.Context(), uid, req.Message)
	if err != nil {
		log.Error("failed to generate coach reply", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not generate reply"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"reply": reply,
	}))
}
