package controller

import (
	"time"

	appGateway "github.com/cassiomorais/gateway/internal/application/gateway"
	"github.com/cassiomorais/gateway/internal/domain/payment"
	"github.com/cassiomorais/gateway/internal/infrastructure/config"
	"github.com/cassiomorais/gateway/internal/infrastructure/observability"
	redisinfra "github.com/cassiomorais/gateway/internal/infrastructure/redis"
	customMW "github.com/cassiomorais/gateway/internal/middleware"
	"github.com/cassiomorais/gateway/internal/repository/postgres"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Pool            *pgxpool.Pool
	RedisClient     *redis.Client
	PaymentRepo     payment.Repository
	Orchestrator    *appGateway.Orchestrator
	IdempotencyRepo *postgres.IdempotencyRepository
	PaymentLocker   *redisinfra.PaymentLocker
	Metrics         *observability.Metrics
	CORSConfig      config.CORSConfig
	IdempotencyTTL  time.Duration
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(customMW.SecurityHeaders())
	r.Use(customMW.RateLimit(300))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	gatewayH := NewGatewayController(deps.Orchestrator)
	paymentH := NewPaymentController(deps.Orchestrator, deps.PaymentRepo)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		idempotencyMW := customMW.Idempotency(deps.IdempotencyRepo, deps.IdempotencyTTL)
		lockMW := customMW.PaymentLock(deps.PaymentLocker)

		// Gateways
		r.Get("/gateways", gatewayH.ListGateways)
		r.Get("/gateways/{name}/customers/{customerID}/sources", gatewayH.ListPaymentSources)

		// Payments
		r.With(idempotencyMW).Post("/payments", paymentH.CreatePayment)
		r.Get("/payments/{id}", paymentH.GetPayment)
		r.Get("/payments/{id}/transactions", paymentH.ListTransactions)
		r.Get("/payments/{id}/client-token", paymentH.GetClientToken)

		// Gateway operations run one at a time per payment.
		r.Group(func(r chi.Router) {
			r.Use(idempotencyMW, lockMW)
			r.Post("/payments/{id}/process", paymentH.ProcessPayment)
			r.Post("/payments/{id}/authorize", paymentH.AuthorizePayment)
			r.Post("/payments/{id}/capture", paymentH.CapturePayment)
			r.Post("/payments/{id}/refund", paymentH.RefundPayment)
			r.Post("/payments/{id}/void", paymentH.VoidPayment)
			r.Post("/payments/{id}/confirm", paymentH.ConfirmPayment)
		})
	})

	return r
}
