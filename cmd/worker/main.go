package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sweetshop/internal/cache"
	"sweetshop/internal/config"
	"sweetshop/internal/log"
	"sweetshop/internal/queue"
	"sweetshop/internal/tasks"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level).With().Str("component", "worker").Logger()

	if cfg.Redis.Addr == "" {
		logger.Fatal().Msg("redis.addr is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	if err := cache.EnsureGroup(ctx, client, cfg.Worker.Stream, cfg.Worker.Group); err != nil {
		logger.Fatal().Err(err).Msg("consumer group setup failed")
	}

	processor := tasks.NewProcessor(logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Worker.Stream,
		cfg.Worker.Group,
		cfg.Worker.Consumer,
		cfg.Worker.ClaimInterval,
		logger,
		processor,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("consumer stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	select {
	case <-done:
	case <-time.After(cfg.Worker.ShutdownTimeout):
		logger.Warn().Msg("consumer did not stop in time")
	}
}
