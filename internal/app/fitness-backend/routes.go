// Package fitnessbackend предоставляет маршруты для основного приложения.
package fitnessbackend

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/fitness-backend/internal/config"
	"github.com/magabrotheeeer/fitness-backend/internal/http/handlers/billing/checkoutcreate"
	"github.com/magabrotheeeer/fitness-backend/internal/http/handlers/billing/portalcreate"
	"github.com/magabrotheeeer/fitness-backend/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/fitness-backend/internal/http/handlers/coach/chat"
	"github.com/magabrotheeeer/fitness-backend/internal/http/handlers/energy/calculate"
	"github.com/magabrotheeeer/fitness-backend/internal/http/handlers/entitlement/status"
	"github.com/magabrotheeeer/fitness-backend/internal/http/handlers/health"
	"github.com/magabrotheeeer/fitness-backend/internal/http/handlers/promo/redeem"
	"github.com/magabrotheeeer/fitness-backend/internal/http/handlers/stats/summary"
	workoutcreate "github.com/magabrotheeeer/fitness-backend/internal/http/handlers/workout/create"
	workoutlist "github.com/magabrotheeeer/fitness-backend/internal/http/handlers/workout/list"
	"github.com/magabrotheeeer/fitness-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fitness-backend/internal/lib/jwt"
	billingservice "github.com/magabrotheeeer/fitness-backend/internal/services/billing"
	coachservice "github.com/magabrotheeeer/fitness-backend/internal/services/coach"
	entitlementservice "github.com/magabrotheeeer/fitness-backend/internal/services/entitlement"
	gamificationservice "github.com/magabrotheeeer/fitness-backend/internal/services/gamification"
	workoutservice "github.com/magabrotheeeer/fitness-backend/internal/services/workout"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, jwtMaker jwt.Maker,
	entitlementService *entitlementservice.Service,
	billingService *billingservice.Service,
	workoutService *workoutservice.Service,
	gamificationService *gamificationservice.Service,
	coachService *coachservice.Service,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New().ServeHTTP)

		// Webhook endpoint: аутентификация по подписи провайдера
		r.Post("/billing/webhook", webhook.New(logger, billingService, cfg.StripeWebhookSecret).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, 50, 100))

			r.Get("/entitlement", status.New(logger, entitlementService).ServeHTTP)
			r.Post("/promo/redeem", redeem.New(logger, entitlementService).ServeHTTP)
			r.Post("/billing/checkout", checkoutcreate.New(logger, billingService).ServeHTTP)
			r.Post("/billing/portal", portalcreate.New(logger, billingService).ServeHTTP)

			r.Post("/workouts", workoutcreate.New(logger, workoutService).ServeHTTP)
			r.Get("/workouts", workoutlist.New(logger, workoutService).ServeHTTP)
			r.Get("/stats", summary.New(logger, gamificationService).ServeHTTP)
			r.Post("/energy/calculate", calculate.New(logger).ServeHTTP)

			// Premium-гейт: проверка на сервере при каждом запросе
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.PremiumMiddleware(logger, entitlementService))
				r.Post("/coach/chat", chat.New(logger, coachService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
