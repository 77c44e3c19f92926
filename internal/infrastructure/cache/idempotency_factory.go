package cache

import (
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore picks the Redis store when a client is available and the
// in-memory store otherwise
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		logger.Info("Using in-memory idempotency store")
		return NewInMemoryIdempotencyStore()
	}
	logger.Info("Using Redis idempotency store", zap.String("prefix", DefaultIdempotencyPrefix))
	return NewRedisIdempotencyStore(client, DefaultIdempotencyPrefix)
}
