// Package health реализует HTTP-обработчик проверки работоспособности сервиса.
package health

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fitness-backend/internal/http/response"
)

// Handler обрабатывает запросы проверки работоспособности.
type Handler struct{}

// New создает новый Handler.
func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Проверка работоспособности
// @Description Возвращает OK, если сервис жив.
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response "Сервис работает"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(map[string]string{
		"status": "healthy",
	}))
}
