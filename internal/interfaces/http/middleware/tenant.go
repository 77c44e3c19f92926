package middleware

import (
	"errors"
	"net/http"

	"github.com/clothshop/backend/internal/infrastructure/auth"
	"github.com/clothshop/backend/internal/infrastructure/logger"
	"github.com/clothshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TenantHeader names the shop when bearer tokens are disabled
const TenantHeader = "X-Tenant-ID"

// TenantIDKey is the gin context key of the resolved tenant
const TenantIDKey = "tenant_id"

// TokenVerifier resolves a bearer token to its tenant
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// Tenant resolves the shop every ledger call is scoped to. With a verifier the
// tenant comes from the bearer token only; without one the X-Tenant-ID header is used.
func Tenant(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		var (
			tenantID uuid.UUID
			err      error
		)
		if verifier != nil {
			token, ok := auth.BearerToken(c.GetHeader("Authorization"))
			if !ok {
				abortUnauthorized(c, "Missing bearer token")
				return
			}
			tenantID, err = verifier.Verify(token)
			if err != nil {
				logger.Enrich(c.Request.Context(), log).Debug("Rejected bearer token", zap.Error(err))
				abortUnauthorized(c, tokenMessage(err))
				return
			}
		} else {
			raw := c.GetHeader(TenantHeader)
			if raw == "" {
				abortUnauthorized(c, "Missing "+TenantHeader+" header")
				return
			}
			tenantID, err = uuid.Parse(raw)
			if err != nil || tenantID == uuid.Nil {
				abortUnauthorized(c, "Invalid tenant ID format")
				return
			}
		}

		c.Set(TenantIDKey, tenantID)
		ctx := logger.WithTenantID(c.Request.Context(), tenantID)
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(attribute.String("tenant_id", tenantID.String()))
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetTenantID returns the tenant resolved by Tenant
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(TenantIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return logger.TenantID(c.Request.Context())
}

func tokenMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return "Token is not yet valid"
	case errors.Is(err, auth.ErrMissingTenantID):
		return "Token does not name a tenant"
	default:
		return "Invalid token"
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, message, GetRequestID(c)))
}
