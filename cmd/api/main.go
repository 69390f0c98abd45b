package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appGateway "github.com/cassiomorais/gateway/internal/application/gateway"
	"github.com/cassiomorais/gateway/internal/bootstrap"
	"github.com/cassiomorais/gateway/internal/controller"
	"github.com/cassiomorais/gateway/internal/gateways"
	infraRedis "github.com/cassiomorais/gateway/internal/infrastructure/redis"
	"github.com/cassiomorais/gateway/internal/repository/postgres"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "gateway-api", "gateway")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Gateway backends ---
	registry := gateways.NewRegistryWithBreaker(
		gateways.BreakerSettings{
			Threshold: uint32(app.Config.Gateway.CircuitBreakerThreshold),
			Timeout:   app.Config.Gateway.CircuitBreakerTimeout,
		},
		gateways.NewSandboxBackend("sandbox",
			gateways.WithLatency(app.Config.Gateway.SandboxLatency),
			gateways.WithFailureRate(app.Config.Gateway.SandboxFailureRate),
		),
		gateways.NewSandboxBackend("sandbox-alt",
			gateways.WithLatency(app.Config.Gateway.SandboxLatency),
			gateways.WithFailureRate(app.Config.Gateway.SandboxFailureRate),
		),
	)

	// --- Orchestration ---
	orchestrator := appGateway.NewOrchestrator(
		paymentRepo,
		registry,
		txManager,
		outboxRepo,
		app.Logger,
		app.Metrics,
		appGateway.WithCallTimeout(app.Config.Gateway.CallTimeout),
	)

	locker := infraRedis.NewPaymentLocker(app.Redis, app.Config.Gateway.LockTTL)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		PaymentRepo:     paymentRepo,
		Orchestrator:    orchestrator,
		IdempotencyRepo: idempotencyRepo,
		PaymentLocker:   locker,
		Metrics:         app.Metrics,
		CORSConfig:      app.Config.Server.CORS,
		IdempotencyTTL:  app.Config.Worker.IdempotencyTTL,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
