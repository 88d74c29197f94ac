package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/swifthaul/swifthaul-backend/internal/bidding"
	"github.com/swifthaul/swifthaul-backend/internal/commission"
	"github.com/swifthaul/swifthaul-backend/internal/cron"
	"github.com/swifthaul/swifthaul-backend/internal/deliveries"
	"github.com/swifthaul/swifthaul-backend/internal/partners"
	"github.com/swifthaul/swifthaul-backend/internal/pricing"
	"github.com/swifthaul/swifthaul-backend/internal/settlement"
	"github.com/swifthaul/swifthaul-backend/pkg/config"
	"github.com/swifthaul/swifthaul-backend/pkg/db"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
	"github.com/swifthaul/swifthaul-backend/pkg/metrics"
	"github.com/swifthaul/swifthaul-backend/pkg/migrate"
	"github.com/swifthaul/swifthaul-backend/pkg/outbox"
	"github.com/swifthaul/swifthaul-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxRepo := outbox.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outboxRepo, logg)

	partnersRepo := partners.NewRepository(dbClient.DB())
	pricingEngine := pricing.NewEngine(cfg.Pricing)
	pricingService, err := pricing.NewService(pricing.ServiceParams{
		Engine: pricingEngine,
		Cards:  partnersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	commissionService, err := commission.NewService(commission.ServiceParams{
		Engine: commission.NewEngine(cfg.Commission),
		Repo:   commission.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create commission service", err)
		os.Exit(1)
	}

	biddingService, err := bidding.NewService(bidding.ServiceParams{
		Repo:     bidding.NewRepository(dbClient.DB()),
		Partners: partnersRepo,
		Engine:   pricingEngine,
		Tx:       dbClient,
		Outbox:   outboxService,
		Logger:   logg,
		Config:   cfg.Bidding,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bidding service", err)
		os.Exit(1)
	}

	deliveriesService, err := deliveries.NewService(deliveries.ServiceParams{
		Repo:    deliveries.NewRepository(dbClient.DB()),
		Pricing: pricingService,
		Tx:      dbClient,
		Outbox:  outboxService,
		Logger:  logg,
		Config:  cfg.Bidding,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create deliveries service", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(settlement.ServiceParams{
		Repo:       settlement.NewRepository(dbClient.DB()),
		Commission: commissionService,
		Tx:         dbClient,
		Outbox:     outboxService,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	bidExpiryJob, err := cron.NewBidExpiryJob(cron.BidExpiryJobParams{
		Logger:  logg,
		Bidding: biddingService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bid expiry job", err)
		os.Exit(1)
	}
	deliveryExpiryJob, err := cron.NewDeliveryExpiryJob(cron.DeliveryExpiryJobParams{
		Logger:     logg,
		Deliveries: deliveriesService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery expiry job", err)
		os.Exit(1)
	}
	settlementJob, err := cron.NewSettlementJob(cron.SettlementJobParams{
		Logger:     logg,
		Settlement: settlementService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement job", err)
		os.Exit(1)
	}
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(bidExpiryJob, deliveryExpiryJob, settlementJob, retentionJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("cron-worker:%s", env)
}
