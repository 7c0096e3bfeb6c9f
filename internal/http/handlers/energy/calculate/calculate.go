// Package calculate реализует HTTP-обработчик расчёта энергозатрат:
// BMR и TDEE по антропометрическим параметрам.
package calculate

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fitness-backend/internal/http/response"
	"github.com/magabrotheeeer/fitness-backend/internal/lib/energy"
	"github.com/magabrotheeeer/fitness-backend/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

// Handler управляет HTTP-запросами на расчёт энергозатрат.
// Расчёт чистый, сервис бизнес-логики не требуется.
type Handler struct {
	log      *slog.Logger
	validate *validator.Validate
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{
		log:      log,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Рассчитать BMR и TDEE
// @Description Считает базовый метаболизм по Миффлину-Сан Жеору и суточную норму с учётом уровня активности.
// @Tags Energy
// @Accept  json
// @Produce  json
// @Param request body models.DummyEnergyRequest true "Антропометрические параметры"
// @Success 200 {object} map[string]any "BMR и TDEE в ккал/сутки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Security BearerAuth
// @Router /energy/calculate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.energy.calculate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyEnergyRequest
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

	bmr := energy.BMR(req.Sex, req.WeightKg, req.HeightCm, req.AgeYears)
	tdee := energy.TDEE(bmr, req.ActivityLevel)

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"bmr":  math.Round(bmr),
		"tdee": math.Round(tdee),
	}))
}
