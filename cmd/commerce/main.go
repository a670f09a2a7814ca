package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/consignd/commerce-backend/api/controllers"
	"github.com/consignd/commerce-backend/api/routes"
	"github.com/consignd/commerce-backend/internal/bus"
	"github.com/consignd/commerce-backend/internal/reservation"
	"github.com/consignd/commerce-backend/internal/scheduler"
	"github.com/consignd/commerce-backend/internal/statestore"
	"github.com/consignd/commerce-backend/internal/warehouse"
	"github.com/consignd/commerce-backend/pkg/config"
	"github.com/consignd/commerce-backend/pkg/instance"
	"github.com/consignd/commerce-backend/pkg/logger"
	"github.com/consignd/commerce-backend/pkg/metrics"
	"github.com/consignd/commerce-backend/pkg/pubsub"
	"github.com/consignd/commerce-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "commerce"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "commerce",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	commerceMetrics := metrics.NewCommerceMetrics(registry)
	jobMetrics := metrics.NewJobMetrics(registry)

	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	store, err := buildStore(cfg, redisClient)
	if err != nil {
		logg.Error(ctx, "failed to build state store", err)
		os.Exit(1)
	}

	eventBus, pubsubClient, err := buildBus(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to build event bus", err)
		os.Exit(1)
	}
	if pubsubClient != nil {
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub client", err)
			}
		}()
	}

	warehouseClient, err := buildWarehouse(cfg, redisClient)
	if err != nil {
		logg.Error(ctx, "failed to build warehouse client", err)
		os.Exit(1)
	}

	commerceService, err := reservation.NewService(reservation.ServiceParams{
		Logger:            logg,
		Store:             store,
		Bus:               eventBus,
		Warehouse:         warehouseClient,
		Metrics:           commerceMetrics,
		StakePercentage:   cfg.Commerce.StakePercentage,
		CartTTL:           cfg.Commerce.CartTTL,
		ClearOrdersOnSync: cfg.Commerce.ClearOrdersOnSync,
	})
	if err != nil {
		logg.Error(ctx, "failed to create commerce service", err)
		os.Exit(1)
	}
	if err := commerceService.Start(ctx); err != nil {
		logg.Error(ctx, "failed to start commerce service", err)
		os.Exit(1)
	}

	sched, err := buildScheduler(cfg, logg, redisClient, jobMetrics, commerceService)
	if err != nil {
		logg.Error(ctx, "failed to build scheduler", err)
		os.Exit(1)
	}
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			logg.Error(ctx, "scheduler stopped unexpectedly", err)
		}
	}()

	var redisPinger controllers.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	router := routes.NewRouter(routes.RouterParams{
		Config:   cfg,
		Logger:   logg,
		Commerce: commerceService,
		Redis:    redisPinger,
		Gatherer: registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"service":    cfg.Service.Kind,
		"addr":       server.Addr,
		"instance":   instance.GetID(),
		"store":      storeVariant(cfg),
		"bus":        busVariant(cfg),
		"warehouse":  cfg.Warehouse.Variant,
		"stake_pct":  cfg.Commerce.StakePercentage,
		"cart_ttl_s": int(cfg.Commerce.CartTTL.Seconds()),
	})
	logg.Info(startCtx, "starting commerce server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "commerce server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logg.Info(shutdownCtx, "shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "http shutdown failed", err)
	}
	if err := commerceService.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "commerce shutdown failed", err)
	}
	logg.Info(shutdownCtx, "shutdown complete")
}

func buildStore(cfg *config.Config, redisClient *redis.Client) (statestore.Store, error) {
	if redisClient == nil {
		return statestore.NewMemory(nil), nil
	}
	return statestore.NewRedis(redisClient, redisClient.LedgerKey(cfg.Commerce.LedgerKey))
}

func buildBus(ctx context.Context, cfg *config.Config, logg *logger.Logger) (bus.Bus, *pubsub.Client, error) {
	if cfg.GCP.ProjectID == "" {
		return bus.NewMemory(logg), nil, nil
	}
	client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return nil, nil, err
	}
	psBus, err := bus.NewPubSub(client.CommercePublisher(), client.CommerceSubscription(), logg)
	if err != nil {
		return nil, nil, err
	}
	return psBus, client, nil
}

func buildWarehouse(cfg *config.Config, redisClient *redis.Client) (warehouse.Client, error) {
	if cfg.Warehouse.Variant != "http" {
		return warehouse.NewMock(), nil
	}

	var limiter warehouse.Limiter
	if redisClient != nil {
		redisLimiter, err := warehouse.NewRedisLimiter(
			redisClient,
			"warehouse",
			int64(cfg.Warehouse.RateLimitRequests),
			cfg.Warehouse.RateLimitWindow,
		)
		if err != nil {
			return nil, err
		}
		limiter = redisLimiter
	} else {
		limiter = warehouse.NewSlidingWindowLimiter(cfg.Warehouse.RateLimitRequests, cfg.Warehouse.RateLimitWindow)
	}

	return warehouse.NewHTTP(warehouse.HTTPConfig{
		BaseURL:        cfg.Warehouse.BaseURL,
		APIKey:         cfg.Warehouse.APIKey,
		RequestTimeout: cfg.Warehouse.RequestTimeout,
	}, limiter)
}

func buildScheduler(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	jobMetrics *metrics.JobMetrics,
	commerceService *reservation.Service,
) (*scheduler.Service, error) {
	syncJob, err := scheduler.NewSyncJob(scheduler.SyncJobParams{
		Logger:   logg,
		Commerce: commerceService,
		Interval: cfg.Scheduler.SyncInterval,
	})
	if err != nil {
		return nil, err
	}
	sweepJob, err := scheduler.NewSweepJob(scheduler.SweepJobParams{
		Logger:   logg,
		Commerce: commerceService,
		Interval: cfg.Scheduler.SweepInterval,
	})
	if err != nil {
		return nil, err
	}

	var lock scheduler.Lock = scheduler.NoopLock{}
	if cfg.Scheduler.UseLock && redisClient != nil {
		redisLock, err := scheduler.NewRedisLock(redisClient, redisClient.LockKey("scheduler"), cfg.Scheduler.LockTTL)
		if err != nil {
			return nil, err
		}
		lock = redisLock
	}

	return scheduler.NewService(scheduler.ServiceParams{
		Logger:   logg,
		Registry: scheduler.NewRegistry(syncJob, sweepJob),
		Lock:     lock,
		Metrics:  jobMetrics,
	})
}

func storeVariant(cfg *config.Config) string {
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		return "redis"
	}
	return "memory"
}

func busVariant(cfg *config.Config) string {
	if cfg.GCP.ProjectID == "" {
		return "memory"
	}
	return "pubsub"
}
