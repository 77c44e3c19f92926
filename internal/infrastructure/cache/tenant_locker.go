package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultLockTTL    = 10 * time.Second
	lockRetryInterval = 50 * time.Millisecond
)

// RedisTenantLocker serializes ledger writers of a tenant across API instances
type RedisTenantLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisTenantLocker creates a locker. Obtaining is retried at a fixed
// interval for at most ttl.
func NewRedisTenantLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisTenantLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisTenantLocker{
		locker: redislock.New(client),
		ttl:    ttl,
		logger: logger,
	}
}

// LockKey returns the Redis key guarding a tenant
func LockKey(tenantID uuid.UUID) string {
	return "ledger:tenant:" + tenantID.String()
}

// Lock obtains the tenant lock. Running out of wait time while another
// writer holds it is a CONCURRENCY_CONFLICT.
func (l *RedisTenantLocker) Lock(ctx context.Context, tenantID uuid.UUID) (func(), error) {
	key := LockKey(tenantID)
	waitCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	// LimitRetry counts attempts, so every call needs its own strategy
	retry := redislock.LimitRetry(redislock.LinearBackoff(lockRetryInterval), int(l.ttl/lockRetryInterval))
	lock, err := l.locker.Obtain(waitCtx, key, l.ttl, &redislock.Options{RetryStrategy: retry})
	if errors.Is(err, redislock.ErrNotObtained) || (errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil) {
		l.logger.Debug("Tenant lock contended", zap.String("key", key), zap.Error(err))
		return nil, shared.Errorf(shared.CodeConcurrencyConflict, "Another ledger update for this shop is in progress, retry shortly")
	}
	if err != nil {
		return nil, fmt.Errorf("obtain %s: %w", key, err)
	}
	return func() {
		// the caller's context may already be cancelled
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("Failed to release tenant lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

var _ ledger.TenantLocker = (*RedisTenantLocker)(nil)
