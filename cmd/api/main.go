package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sweetshop/internal/cache"
	"sweetshop/internal/config"
	"sweetshop/internal/database"
	"sweetshop/internal/directory"
	"sweetshop/internal/events"
	"sweetshop/internal/handlers"
	"sweetshop/internal/jobs"
	"sweetshop/internal/ledger"
	"sweetshop/internal/log"
	"sweetshop/internal/repository"
	"sweetshop/internal/security"
	"sweetshop/internal/server"
	"sweetshop/internal/service"
	"sweetshop/internal/session"
	"sweetshop/internal/storage"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)
	if envErr != nil {
		logger.Debug().Msg("no .env file found; relying on existing environment")
	}

	ctx := context.Background()

	var (
		dbPool      *pgxpool.Pool
		redisClient *redis.Client
		publisher   events.Publisher = events.Nop{}
	)

	directoryOpts := []directory.Option{}
	ledgerOpts := []ledger.Option{}
	if cfg.Inventory.SeedCatalog {
		ledgerOpts = append(ledgerOpts, ledger.WithStarterCatalog())
	}

	if cfg.Postgres.DSN != "" {
		dbPool, err = database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		directoryOpts = append(directoryOpts, directory.WithStore(repository.NewAccountRepository(dbPool)))
		ledgerOpts = append(ledgerOpts, ledger.WithStore(repository.NewItemRepository(dbPool)))
	} else {
		logger.Warn().Msg("postgres not configured; accounts and sweets live in memory only")
	}

	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		publisher = events.NewRedisPublisher(redisClient, cfg.Worker.Stream)
	} else {
		logger.Info().Msg("redis not configured; stock events disabled")
	}

	accounts, err := directory.New(ctx, security.NewPasswordHasher(security.DefaultParams), logger, directoryOpts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load accounts")
	}

	secret, ephemeral, err := security.SigningKey(cfg.Security.SessionSecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to generate session signing key")
	}
	if ephemeral {
		logger.Warn().Msg("security.sessionsecret not set; session tokens are signed with an ephemeral key")
	}
	sessions, err := session.NewManager(accounts, secret, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init session manager")
	}

	inventory, err := ledger.New(ctx, logger, ledgerOpts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load inventory")
	}

	shop := service.NewShopService(accounts, sessions, inventory, logger,
		service.WithEvents(publisher),
		service.WithLowStockThreshold(cfg.Inventory.LowStockThreshold),
	)

	var images *service.ImageService
	if cfg.Storage.Endpoint != "" {
		objectStore, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := objectStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
		images = service.NewImageService(objectStore.Client(), objectStore.Bucket(), objectStore.PublicURL(), inventory, sessions, logger)
	} else {
		logger.Info().Msg("object storage not configured; image upload disabled")
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg.Environment, shop, images, dbPool, redisClient)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	var scheduler *jobs.Scheduler
	if redisClient != nil {
		scheduler = jobs.NewScheduler(cfg.Inventory.ReportSchedule, shop, publisher, logger)
		if err := scheduler.Start(); err != nil {
			logger.Error().Err(err).Msg("scheduler start failed")
			scheduler = nil
		}
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
