package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fitness-backend/internal/http/response"
	"github.com/magabrotheeeer/fitness-backend/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

// EntitlementService определяет интерфейс для проверки статуса доступа.
type EntitlementService interface {
	Status(ctx context.Context, uid, email string) (*models.EntitlementStatus, error)
}

// PremiumMiddleware создает middleware, пропускающий только пользователей
// с активным premium. Проверка выполняется на сервере при каждом запросе:
// клиентскому состоянию доверять нельзя.
func PremiumMiddleware(log *slog.Logger, entitlements EntitlementService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := r.Context().Value(UserUID).(string)
			if !ok || uid == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}
			email, _ := r.Context().Value(Email).(string)

			status, err := entitlements.Status(r.Context(), uid, email)
			if err != nil {
				log.Error("failed to get entitlement status", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if !status.Premium {
				log.Info("premium required, access denied", sl.Uid(uid))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("premium required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
