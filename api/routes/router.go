package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradedesk/backoffice/api/controllers"
	"github.com/tradedesk/backoffice/api/middleware"
	"github.com/tradedesk/backoffice/internal/banks"
	"github.com/tradedesk/backoffice/internal/capture"
	"github.com/tradedesk/backoffice/internal/payments"
	"github.com/tradedesk/backoffice/internal/wallet"
	"github.com/tradedesk/backoffice/pkg/config"
	"github.com/tradedesk/backoffice/pkg/db"
	"github.com/tradedesk/backoffice/pkg/logger"
	"github.com/tradedesk/backoffice/pkg/metrics"
	"github.com/tradedesk/backoffice/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	Metrics         *metrics.CaptureMetrics
	MetricsGatherer prometheus.Gatherer
	CaptureService  capture.Service
	WalletService   wallet.Service
	PaymentsRepo    payments.Repository
	BanksRepo       banks.Repository
}

// NewRouter wires the middleware chain and all routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger, deps.Metrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DB, readyRedis(deps.Redis)))
	})

	r.Get("/api/public/ping", controllers.PublicPing())

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.RateLimit(rateLimiter(deps.Redis, deps.Config), rateLimitBound(deps.Config), rateLimitWindow(deps.Config), deps.Logger),
			middleware.Idempotency(idempotencyStore(deps.Redis), deps.Logger),
		)

		r.Route("/orders/{orderID}", func(r chi.Router) {
			r.Post("/capture", controllers.CapturePayment(deps.CaptureService, deps.Logger))
			r.Get("/payments", controllers.ListOrderPayments(deps.PaymentsRepo, deps.Logger))
		})

		r.Route("/wallets/{ownerID}", func(r chi.Router) {
			r.Get("/balance", controllers.WalletBalance(deps.WalletService, deps.Logger))
			r.Get("/statement", controllers.WalletStatement(deps.WalletService, deps.Logger))
			r.Post("/topup", controllers.WalletTopup(deps.CaptureService, deps.Logger))
			r.Post("/adjust", controllers.WalletAdjust(deps.WalletService, deps.Logger))
		})

		r.Get("/bank-accounts", controllers.ListBankAccounts(deps.BanksRepo, deps.Logger))
	})

	return r
}

// readyRedis keeps the nil-interface trap out of HealthReady: a nil *Client
// wrapped in the Pinger interface would be non-nil and panic on use.
func readyRedis(client *redis.Client) redis.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

// rateLimiter is nil without redis or with throttling disabled; the
// middleware passes everything through in that case.
func rateLimiter(client *redis.Client, cfg *config.Config) middleware.RateLimiter {
	if client == nil || cfg == nil || !cfg.RateLimit.Enabled {
		return nil
	}
	return client
}

func rateLimitBound(cfg *config.Config) int64 {
	if cfg == nil {
		return 0
	}
	return cfg.RateLimit.Limit
}

func rateLimitWindow(cfg *config.Config) time.Duration {
	if cfg == nil {
		return 0
	}
	return cfg.RateLimit.Window
}
