// Package fitnessbackend собирает и запускает основное HTTP-приложение:
// хранилище, кеш, очередь, платёжный провайдер, сервисы и роутер.
package fitnessbackend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/fitness-backend/internal/cache"
	"github.com/magabrotheeeer/fitness-backend/internal/config"
	"github.com/magabrotheeeer/fitness-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/fitness-backend/internal/migrations"
	"github.com/magabrotheeeer/fitness-backend/internal/paymentprovider"
	"github.com/magabrotheeeer/fitness-backend/internal/rabbitmq"
	billingservice "github.com/magabrotheeeer/fitness-backend/internal/services/billing"
	coachservice "github.com/magabrotheeeer/fitness-backend/internal/services/coach"
	entitlementservice "github.com/magabrotheeeer/fitness-backend/internal/services/entitlement"
	gamificationservice "github.com/magabrotheeeer/fitness-backend/internal/services/gamification"
	workoutservice "github.com/magabrotheeeer/fitness-backend/internal/services/workout"
	"github.com/magabrotheeeer/fitness-backend/internal/storage"
)

// App основное HTTP-приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New собирает приложение из конфигурации.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.Db, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetBillingQueues())
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	publisher := rabbitmq.NewPublisher(ch, rabbitmq.BillingExchange)

	providerClient := paymentprovider.NewClient(cfg.StripeSecretKey)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	entitlementService := entitlementservice.New(db, cacheRedis, logger)
	billingService := billingservice.New(db, providerClient, publisher, entitlementService, cfg.Stripe, logger)
	gamificationService := gamificationservice.New(db, cacheRedis, logger)
	workoutService := workoutservice.New(db, gamificationService, logger)
	coachService := coachservice.New(coachservice.NewOpenAIClient(cfg.Coach), logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, jwtMaker,
		entitlementService, billingService, workoutService, gamificationService, coachService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		if closeErr := a.db.Db.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
