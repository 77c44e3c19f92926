// Package auth verifies the bearer tokens that carry the shop (tenant) identity.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clothshop/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTenantClaim is read when no claim name is configured
const DefaultTenantClaim = "tenant_id"

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing tenant id in claims")
)

// TenantVerifier checks HMAC signed tokens issued by the identity service and
// extracts the tenant from them
type TenantVerifier struct {
	secret      []byte
	issuer      string
	tenantClaim string
	parser      *jwt.Parser
}

// NewTenantVerifier creates a verifier from the jwt section of the config
func NewTenantVerifier(cfg config.JWTConfig) *TenantVerifier {
	claim := cfg.TenantClaim
	if claim == "" {
		claim = DefaultTenantClaim
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &TenantVerifier{
		secret:      []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		tenantClaim: claim,
		parser:      jwt.NewParser(opts...),
	}
}

// Verify validates the token and returns its tenant
func (v *TenantVerifier) Verify(tokenString string) (uuid.UUID, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return uuid.Nil, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return uuid.Nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return uuid.Nil, ErrTokenNotYetValid
	case err != nil:
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	raw, ok := claims[v.tenantClaim].(string)
	if !ok || raw == "" {
		return uuid.Nil, ErrMissingTenantID
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil || tenantID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: tenant claim is not a UUID", ErrInvalidToken)
	}
	return tenantID, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
