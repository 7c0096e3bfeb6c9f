// Package sweeper собирает и запускает процесс понижения истёкших триалов.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/fitness-backend/internal/cache"
	"github.com/magabrotheeeer/fitness-backend/internal/config"
	"github.com/magabrotheeeer/fitness-backend/internal/rabbitmq"
	entitlementservice "github.com/magabrotheeeer/fitness-backend/internal/services/entitlement"
	sweeperservice "github.com/magabrotheeeer/fitness-backend/internal/services/sweeper"
	"github.com/magabrotheeeer/fitness-backend/internal/storage"
)

// App приложение sweeper-процесса.
type App struct {
	sweeperService *sweeperservice.Service
	interval       config.Sweeper
	conn           *amqp.Connection
	ch             *amqp.Channel
	db             *storage.Storage
	logger         *slog.Logger
}

// New создает новый экземпляр приложения sweeper.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("cache not initialized: %w", err)
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

	entitlementService := entitlementservice.New(db, cacheRedis, logger)
	publisher := rabbitmq.NewPublisher(ch, rabbitmq.BillingExchange)
	sweeperService := sweeperservice.New(db, publisher, entitlementService, logger)

	return &App{
		sweeperService: sweeperService,
		interval:       cfg.Sweeper,
		conn:           conn,
		ch:             ch,
		db:             db,
		logger:         logger,
	}, nil
}

// Run запускает периодический sweep до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	go a.sweeperService.Run(ctx, a.interval.SweepInterval)

	<-ctx.Done()
	a.logger.Info("shutting down sweeper service")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	if err := a.db.Db.Close(); err != nil {
		a.logger.Error("failed to close database", slog.Any("err", err))
	}
	return nil
}
