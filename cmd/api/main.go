package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tradedesk/backoffice/api/routes"
	"github.com/tradedesk/backoffice/internal/allocation"
	"github.com/tradedesk/backoffice/internal/banks"
	"github.com/tradedesk/backoffice/internal/capture"
	"github.com/tradedesk/backoffice/internal/dues"
	"github.com/tradedesk/backoffice/internal/notes"
	"github.com/tradedesk/backoffice/internal/orders"
	"github.com/tradedesk/backoffice/internal/payments"
	"github.com/tradedesk/backoffice/internal/schema"
	"github.com/tradedesk/backoffice/internal/wallet"
	"github.com/tradedesk/backoffice/pkg/config"
	"github.com/tradedesk/backoffice/pkg/db"
	"github.com/tradedesk/backoffice/pkg/logger"
	"github.com/tradedesk/backoffice/pkg/metrics"
	"github.com/tradedesk/backoffice/pkg/migrate"
	"github.com/tradedesk/backoffice/pkg/redis"
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

	// Redis only backs idempotency replay and the readiness probe; the engine
	// itself runs without it.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency replay disabled")
	}

	registry := prometheus.NewRegistry()
	met := metrics.NewCaptureMetrics(registry)

	caps := schema.Full()
	if cfg.FeatureFlags.ProbeSchema {
		caps = schema.Detect(dbClient.DB())
	}

	walletSvc, err := wallet.NewService(wallet.NewRepository(dbClient.DB()), cfg.Wallet.Currency)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	calc := dues.NewCalculator(caps)
	alloc, err := allocation.NewAllocator(caps, calc)
	if err != nil {
		logg.Error(context.Background(), "failed to create allocator", err)
		os.Exit(1)
	}

	captureSvc, err := capture.NewService(capture.Deps{
		Tx:         dbClient,
		Orders:     orders.NewRepository(dbClient.DB()),
		Payments:   payments.NewRepository(dbClient.DB()),
		Wallets:    walletSvc,
		Calculator: calc,
		Allocator:  alloc,
		Notifier:   notes.NewService(dbClient.DB(), logg),
		Logger:     logg,
		Metrics:    met,
		Wallet:     cfg.Wallet,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create capture service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Metrics:         met,
			MetricsGatherer: registry,
			CaptureService:  captureSvc,
			WalletService:   walletSvc,
			PaymentsRepo:    payments.NewRepository(dbClient.DB()),
			BanksRepo:       banks.NewRepository(dbClient.DB()),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
