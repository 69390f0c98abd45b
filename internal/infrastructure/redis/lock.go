package redis

import (
	"context"
	"fmt"
	"time"

	domainErrors "github.com/cassiomorais/gateway/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Release only succeeds for the holder that set the value.
var releaseLockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// PaymentLocker hands out per-payment locks so concurrent requests
// cannot run two gateway operations against the same payment at once.
type PaymentLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPaymentLocker(client *redis.Client, ttl time.Duration) *PaymentLocker {
	return &PaymentLocker{client: client, ttl: ttl}
}

// Lock acquires the lock for the payment, retrying briefly before giving
// up with ErrLockAcquisitionFailed.
func (pl *PaymentLocker) Lock(ctx context.Context, paymentID string) (*DistributedLock, error) {
	lock := NewDistributedLock(pl.client, fmt.Sprintf("payment:%s", paymentID), pl.ttl)
	if err := lock.AcquireWithRetry(ctx, 3, 100*time.Millisecond); err != nil {
		return nil, err
	}
	return lock, nil
}

// DistributedLock is a single-holder lock backed by a Redis key. The
// value is a random token so only the goroutine that acquired the lock
// can release or extend it.
type DistributedLock struct {
	client   *redis.Client
	key      string
	value    string
	ttl      time.Duration
	acquired bool
}

func NewDistributedLock(client *redis.Client, key string, ttl time.Duration) *DistributedLock {
	return &DistributedLock{
		client: client,
		key:    fmt.Sprintf("lock:%s", key),
		value:  uuid.New().String(),
		ttl:    ttl,
	}
}

// Acquire attempts to take the lock without blocking.
func (l *DistributedLock) Acquire(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	l.acquired = success
	return success, nil
}

// AcquireWithRetry attempts to take the lock, waiting retryDelay between
// attempts.
func (l *DistributedLock) AcquireWithRetry(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		acquired, err := l.Acquire(ctx)
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return domainErrors.ErrLockAcquisitionFailed
}

// Release gives the lock back. Releasing a lock that was never acquired
// is a no-op.
func (l *DistributedLock) Release(ctx context.Context) error {
	if !l.acquired {
		return nil
	}

	result, err := releaseLockScript.Run(
		ctx,
		l.client,
		[]string{l.key},
		l.value,
	).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	val, ok := result.(int64)
	if !ok || val == 0 {
		return domainErrors.ErrLockNotHeld
	}

	l.acquired = false
	return nil
}
