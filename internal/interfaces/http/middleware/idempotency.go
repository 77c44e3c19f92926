package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/clothshop/backend/internal/infrastructure/logger"
	"github.com/clothshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyHeader carries the client chosen key of a mutation
const IdempotencyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds client supplied keys
const MaxIdempotencyKeyLength = 128

// Idempotency rejects a replayed mutation carrying an Idempotency-Key that the
// same tenant already used within ttl. A request that fails releases its key.
// Must run after Tenant.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if store == nil || key == "" || !isMutation(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeBadRequest, IdempotencyHeader+" is too long", GetRequestID(c)))
			return
		}
		tenantID, ok := GetTenantID(c)
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		storeKey := tenantID.String() + ":" + key
		fresh, err := store.MarkProcessed(ctx, storeKey, ttl)
		if err != nil {
			// the mutation is still guarded by the ledger; only replay detection is lost
			logger.Enrich(ctx, log).Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				dto.ErrCodeDuplicateRequest, "A request with this "+IdempotencyHeader+" was already processed", GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(context.WithoutCancel(ctx), storeKey); err != nil {
				logger.Enrich(ctx, log).Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
