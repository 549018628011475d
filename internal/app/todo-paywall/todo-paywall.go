package todopaywall

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/todo-paywall/internal/cache"
	"github.com/magabrotheeeer/todo-paywall/internal/config"
	"github.com/magabrotheeeer/todo-paywall/internal/lib/jwt"
	"github.com/magabrotheeeer/todo-paywall/internal/migrations"
	"github.com/magabrotheeeer/todo-paywall/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/todo-paywall/internal/services/auth"
	subservice "github.com/magabrotheeeer/todo-paywall/internal/services/subscription"
	todoservice "github.com/magabrotheeeer/todo-paywall/internal/services/todo"
	"github.com/magabrotheeeer/todo-paywall/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.AddressRabbitMQ, cfg.ConnectRetries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	amqpChannel, err := rabbitmq.SetupChannel(amqpConn, []rabbitmq.QueueConfig{
		{QueueName: "subscription_events", RoutingKey: subservice.ActivatedRoutingKey},
	})
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(amqpChannel, "notifications")

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker)
	todoService := todoservice.NewTodoService(db, logger)
	subscriptionService := subservice.NewSubscriptionService(db, cacheRedis, publisher, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, jwtMaker, authService, todoService, subscriptionService, db)

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
		amqp:   amqpConn,
	}, nil
}

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
		_ = a.amqp.Close()
		_ = a.db.DB.Close()
		return err
	}
}
