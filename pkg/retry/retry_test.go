package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cassiomorais/gateway/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts uint) retry.Config {
	return retry.Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fastConfig(5), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsLastErrorOnly(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fastConfig(3), func() error {
		calls++
		return errors.New("always down")
	})

	require.EqualError(t, err, "always down")
	assert.Equal(t, 3, calls)
}

func TestDo_NotifyReportsEachFailedAttempt(t *testing.T) {
	cfg := fastConfig(3)
	var notified []uint
	cfg.Notify = func(attempt uint, err error) {
		notified = append(notified, attempt)
	}

	_ = retry.Do(context.Background(), cfg, func() error {
		return errors.New("always down")
	})

	assert.Equal(t, []uint{0, 1, 2}, notified)
}

func TestDoWithResult_ReturnsValueFromSuccessfulAttempt(t *testing.T) {
	calls := 0
	got, err := retry.DoWithResult(context.Background(), fastConfig(5), func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "payload", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "payload", got)
	assert.Equal(t, 2, calls)
}

func TestDo_CanceledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry.Do(ctx, fastConfig(10), func() error {
		calls++
		cancel()
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.LessOrEqual(t, calls, 2)
}
