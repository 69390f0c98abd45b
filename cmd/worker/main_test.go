package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cassiomorais/gateway/internal/domain/outbox"
	"github.com/cassiomorais/gateway/internal/infrastructure/observability"
	"github.com/cassiomorais/gateway/internal/testutil"
	"github.com/cassiomorais/gateway/pkg/retry"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	publishErr error
	published  []*outbox.Entry
	dlq        []*outbox.Entry
}

func (f *fakeProducer) PublishTransactionEvent(ctx context.Context, entry *outbox.Entry) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, entry)
	return nil
}

func (f *fakeProducer) PublishToDLQ(ctx context.Context, entry *outbox.Entry, reason string) error {
	f.dlq = append(f.dlq, entry)
	return nil
}

func testRetry() retry.Config {
	return retry.Config{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func pendingEntry() *outbox.Entry {
	return outbox.NewEntry(uuid.New(), uuid.New(), outbox.EventTransactionRecorded, map[string]any{"kind": "capture"})
}

func TestPublishPending_PublishesAndMarks(t *testing.T) {
	repo := testutil.NewMockOutboxRepository()
	producer := &fakeProducer{}
	entry := pendingEntry()
	require.NoError(t, repo.Insert(context.Background(), entry))

	err := publishPending(context.Background(), zerolog.Nop(),
		observability.NewMetrics("test", prometheus.NewRegistry()),
		repo, producer, 10, testRetry())

	require.NoError(t, err)
	require.Len(t, producer.published, 1)
	assert.Equal(t, outbox.StatusPublished, entry.Status)
	assert.Empty(t, producer.dlq)
}

func TestPublishPending_MarkPublishedFailure_DoesNotAbortBatch(t *testing.T) {
	repo := testutil.NewMockOutboxRepository()
	producer := &fakeProducer{}
	first := pendingEntry()
	second := pendingEntry()
	require.NoError(t, repo.Insert(context.Background(), first))
	require.NoError(t, repo.Insert(context.Background(), second))

	var markCalls int
	repo.MarkPublishedFunc = func(ctx context.Context, id uuid.UUID) error {
		markCalls++
		if id == first.ID {
			return errors.New("connection reset")
		}
		return nil
	}

	err := publishPending(context.Background(), zerolog.Nop(),
		observability.NewMetrics("test", prometheus.NewRegistry()),
		repo, producer, 10, testRetry())

	require.NoError(t, err)
	assert.Equal(t, 2, markCalls)
	assert.Len(t, producer.published, 2)
}

func TestPublishPending_PublishFailure_MarksFailed(t *testing.T) {
	repo := testutil.NewMockOutboxRepository()
	producer := &fakeProducer{publishErr: errors.New("stream down")}
	entry := pendingEntry()
	require.NoError(t, repo.Insert(context.Background(), entry))

	var failedID uuid.UUID
	repo.MarkFailedFunc = func(ctx context.Context, id uuid.UUID) error {
		failedID = id
		return nil
	}

	err := publishPending(context.Background(), zerolog.Nop(),
		observability.NewMetrics("test", prometheus.NewRegistry()),
		repo, producer, 10, testRetry())

	require.NoError(t, err)
	assert.Equal(t, entry.ID, failedID)
	assert.Empty(t, producer.published)
	assert.Empty(t, producer.dlq)
}

func TestPublishPending_ExhaustedEntry_GoesToDLQ(t *testing.T) {
	repo := testutil.NewMockOutboxRepository()
	producer := &fakeProducer{publishErr: errors.New("stream down")}
	entry := pendingEntry()
	entry.RetryCount = entry.MaxRetries - 1
	require.NoError(t, repo.Insert(context.Background(), entry))
	repo.MarkFailedFunc = func(ctx context.Context, id uuid.UUID) error { return nil }

	err := publishPending(context.Background(), zerolog.Nop(),
		observability.NewMetrics("test", prometheus.NewRegistry()),
		repo, producer, 10, testRetry())

	require.NoError(t, err)
	require.Len(t, producer.dlq, 1)
	assert.Equal(t, entry.ID, producer.dlq[0].ID)
}
