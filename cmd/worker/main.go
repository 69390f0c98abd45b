package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cassiomorais/gateway/internal/bootstrap"
	"github.com/cassiomorais/gateway/internal/domain/outbox"
	"github.com/cassiomorais/gateway/internal/infrastructure/observability"
	infraRedis "github.com/cassiomorais/gateway/internal/infrastructure/redis"
	"github.com/cassiomorais/gateway/internal/repository/postgres"
	"github.com/cassiomorais/gateway/pkg/retry"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "gateway-worker", "gateway_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	streamProducer := infraRedis.NewStreamProducer(app.Redis)

	// Transaction event tap for reconciliation logging.
	consumer := infraRedis.NewStreamConsumer(
		app.Redis,
		infraRedis.TransactionStream,
		"gateway-recon",
		app.Config.InstanceID,
		int64(app.Config.Worker.BatchSize),
		time.Second,
	)
	if err := consumer.CreateGroup(ctx); err != nil {
		app.Logger.Error().Err(err).Msg("Failed to create consumer group (may already exist)")
	}

	app.Logger.Info().
		Str("stream", infraRedis.TransactionStream).
		Str("consumer", app.Config.InstanceID).
		Msg("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Outbox publisher (polls outbox table and publishes to Redis Streams).
	g.Go(func() error {
		return runOutboxPublisher(gCtx, app, txManager, outboxRepo, streamProducer)
	})

	// 2. Transaction event tap (reads the stream and logs each event).
	g.Go(func() error {
		return runEventTap(gCtx, observability.Component(app.Logger, "event_tap"), consumer)
	})

	// 3. Expired idempotency key cleanup.
	g.Go(func() error {
		return runIdempotencyCleanup(gCtx, observability.Component(app.Logger, "idempotency_cleanup"), idempotencyRepo)
	})

	// 4. Wait for shutdown signal.
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}

func runOutboxPublisher(
	ctx context.Context,
	app *bootstrap.App,
	txManager *postgres.TxManager,
	outboxRepo *postgres.OutboxRepository,
	streamProducer *infraRedis.StreamProducer,
) error {
	cfg := app.Config.Worker
	logger := observability.Component(app.Logger, "outbox_publisher")
	publishRetry := retry.Config{
		MaxAttempts:  uint(cfg.PublishRetries),
		InitialDelay: cfg.PublishRetryDelay,
		MaxDelay:     5 * time.Second,
		Notify: func(attempt uint, err error) {
			logger.Warn().Uint("attempt", attempt).Err(err).Msg("Stream publish failed, retrying")
		},
	}

	ticker := time.NewTicker(cfg.OutboxPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		start := time.Now()
		err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			return publishPending(txCtx, logger, app.Metrics, outboxRepo, streamProducer, cfg.BatchSize, publishRetry)
		})
		app.Metrics.OutboxPublishDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			logger.Error().Err(err).Msg("Outbox publisher error")
		}
	}
}

// transactionEventPublisher is what publishPending needs from the stream
// producer.
type transactionEventPublisher interface {
	PublishTransactionEvent(ctx context.Context, entry *outbox.Entry) error
	PublishToDLQ(ctx context.Context, entry *outbox.Entry, reason string) error
}

// publishPending drains one batch of pending outbox entries. A failed
// status update is logged and never aborts the batch: the entry stays
// pending and the event goes out again on the next poll, which the
// at-least-once contract allows.
func publishPending(
	ctx context.Context,
	logger zerolog.Logger,
	metrics *observability.Metrics,
	outboxRepo outbox.Repository,
	producer transactionEventPublisher,
	batchSize int,
	publishRetry retry.Config,
) error {
	entries, err := outboxRepo.GetPending(ctx, batchSize)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		publishErr := retry.Do(ctx, publishRetry, func() error {
			return producer.PublishTransactionEvent(ctx, entry)
		})
		if publishErr != nil {
			logger.Error().Err(publishErr).Str("outbox_id", entry.ID.String()).Msg("Failed to publish outbox event")
			if err := outboxRepo.MarkFailed(ctx, entry.ID); err != nil {
				logger.Error().Err(err).Str("outbox_id", entry.ID.String()).Msg("Failed to mark outbox entry failed")
			}
			metrics.OutboxPublished.WithLabelValues("failed").Inc()

			// Entries out of attempts go to the DLQ for manual replay.
			entry.RetryCount++
			if entry.Exhausted() {
				if dlqErr := producer.PublishToDLQ(ctx, entry, publishErr.Error()); dlqErr != nil {
					logger.Error().Err(dlqErr).Str("outbox_id", entry.ID.String()).Msg("Failed to publish to DLQ")
				}
			}
			continue
		}
		if err := outboxRepo.MarkPublished(ctx, entry.ID); err != nil {
			logger.Error().Err(err).Str("outbox_id", entry.ID.String()).Msg("Failed to mark outbox entry published")
		}
		metrics.OutboxPublished.WithLabelValues("published").Inc()
	}
	return nil
}

func runEventTap(ctx context.Context, logger zerolog.Logger, consumer *infraRedis.StreamConsumer) error {
	readRetry := retry.Config{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond, MaxDelay: time.Second}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		streams, err := retry.DoWithResult(ctx, readRetry, func() ([]redis.XStream, error) {
			return consumer.Read(ctx)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error().Err(err).Msg("Failed to read from stream")
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				paymentID, _ := msg.Values["payment_id"].(string)
				transactionID, _ := msg.Values["transaction_id"].(string)
				eventType, _ := msg.Values["event_type"].(string)

				logger.Info().
					Str("payment_id", paymentID).
					Str("transaction_id", transactionID).
					Str("event_type", eventType).
					Bool("recognized", eventType == outbox.EventTransactionRecorded).
					Msg("Transaction event")

				consumer.Ack(ctx, msg.ID)
			}
		}
	}
}

func runIdempotencyCleanup(ctx context.Context, logger zerolog.Logger, repo *postgres.IdempotencyRepository) error {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		removed, err := repo.Cleanup(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Idempotency cleanup error")
			continue
		}
		if removed > 0 {
			logger.Info().Int64("removed", removed).Msg("Cleaned up expired idempotency keys")
		}
	}
}
