package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/swifthaul/swifthaul-backend/api/routes"
	"github.com/swifthaul/swifthaul-backend/internal/bidding"
	"github.com/swifthaul/swifthaul-backend/internal/commission"
	"github.com/swifthaul/swifthaul-backend/internal/deliveries"
	"github.com/swifthaul/swifthaul-backend/internal/partners"
	"github.com/swifthaul/swifthaul-backend/internal/pricing"
	"github.com/swifthaul/swifthaul-backend/internal/settlement"
	"github.com/swifthaul/swifthaul-backend/pkg/config"
	"github.com/swifthaul/swifthaul-backend/pkg/db"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
	"github.com/swifthaul/swifthaul-backend/pkg/migrate"
	"github.com/swifthaul/swifthaul-backend/pkg/outbox"
	"github.com/swifthaul/swifthaul-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	partnersRepo := partners.NewRepository(dbClient.DB())
	partnersService, err := partners.NewService(partners.ServiceParams{
		Repo:   partnersRepo,
		Tx:     dbClient,
		Outbox: outboxService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create partners service", err)
		os.Exit(1)
	}

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
		Engine:   commission.NewEngine(cfg.Commission),
		Repo:     commission.NewRepository(dbClient.DB()),
		Partners: partnersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create commission service", err)
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

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Deliveries:  deliveriesService,
			Bidding:     biddingService,
			Partners:    partnersService,
			Pricing:     pricingService,
			Commission:  commissionService,
			Settlements: settlementService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
