package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"hostdesk/internal/app/server/api"
	"hostdesk/internal/app/server/config"
	"hostdesk/internal/domain/records"
	"hostdesk/internal/infrastructure/broker/rabbitmq"
	"hostdesk/internal/infrastructure/cache/redis"
	"hostdesk/internal/infrastructure/migration"
	"hostdesk/internal/infrastructure/storage/postgres"
	"hostdesk/internal/utils/logger"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	conf := config.MustLoad()
	log := logger.New(conf.Env)

	if err := run(conf, log); err != nil {
		log.Error("server stopped with error", logger.Err(err))
		os.Exit(1)
	}
}

func run(conf *config.Config, log *slog.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	storage, err := postgres.New(startupCtx, conf, migration.DefaultEngine)
	if err != nil {
		return err
	}
	defer storage.Close()

	// Redis и RabbitMQ необязательны: без них сервер работает без дедупликации и событий
	var cache records.IdempotencyCache
	if conf.Redis.Addr != "" {
		client, err := redis.NewClient(startupCtx, conf.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		cache = redis.NewIdempotencyCache(client, conf.Redis.IdempotencyTTL, log)
		log.Info("idempotency cache enabled", "addr", conf.Redis.Addr)
	}

	var publisher records.Publisher
	if conf.Broker.URL != "" {
		pub, err := rabbitmq.Dial(conf.Broker.URL, log)
		if err != nil {
			return err
		}
		defer pub.Close()
		publisher = pub
		log.Info("change events enabled", "queue", rabbitmq.QueueName)
	}

	repo := postgres.NewRecordRepository(storage.Pool(), log)
	service := records.NewService(repo, cache, publisher, log)

	server := &http.Server{
		Addr:              conf.Server.RunAddress,
		Handler:           api.New(service, storage, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", conf.Server.RunAddress, "env", conf.Env)
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("server stopped")
	return nil
}
