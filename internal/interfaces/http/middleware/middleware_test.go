package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clothshop/backend/internal/infrastructure/auth"
	"github.com/clothshop/backend/internal/infrastructure/cache"
	"github.com/clothshop/backend/internal/infrastructure/logger"
	"github.com/clothshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	tenant uuid.UUID
	err    error
}

func (s stubVerifier) Verify(string) (uuid.UUID, error) {
	return s.tenant, s.err
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/x", func(c *gin.Context) {
		assert.Equal(t, GetRequestID(c), logger.RequestID(c.Request.Context()))
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates one", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps the client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(RequestIDHeader, "client-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "client-42", w.Header().Get(RequestIDHeader))
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("a", MaxRequestIDLength+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})
}

func TestTenantHeader(t *testing.T) {
	tenant := uuid.New()
	router := gin.New()
	router.Use(RequestID(), Tenant(nil, nil))
	router.GET("/x", func(c *gin.Context) {
		id, ok := GetTenantID(c)
		require.True(t, ok)
		ctxID, ok := logger.TenantID(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, id, ctxID)
		c.String(http.StatusOK, id.String())
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", tenant.String(), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "shop-1", http.StatusUnauthorized},
		{"nil uuid", uuid.Nil.String(), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set(TenantHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				resp := decode(t, w)
				assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
				assert.NotEmpty(t, resp.Error.RequestID)
			}
		})
	}
}

func TestTenantBearer(t *testing.T) {
	tenant := uuid.New()

	t.Run("token tenant wins over header", func(t *testing.T) {
		router := gin.New()
		router.Use(Tenant(stubVerifier{tenant: tenant}, nil))
		router.GET("/x", func(c *gin.Context) {
			id, _ := GetTenantID(c)
			c.String(http.StatusOK, id.String())
		})
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer abc")
		req.Header.Set(TenantHeader, uuid.NewString())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tenant.String(), w.Body.String())
	})

	t.Run("header alone is not enough", func(t *testing.T) {
		router := gin.New()
		router.Use(Tenant(stubVerifier{tenant: tenant}, nil))
		router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(TenantHeader, tenant.String())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		router := gin.New()
		router.Use(Tenant(stubVerifier{err: auth.ErrExpiredToken}, nil))
		router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token has expired", decode(t, w).Error.Message)
	})
}

func TestIdempotency(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	calls := 0
	fail := false
	router := gin.New()
	router.Use(RequestID(), Tenant(nil, nil), Idempotency(store, time.Hour, nil))
	router.POST("/sales", func(c *gin.Context) {
		calls++
		if fail {
			c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse("INSUFFICIENT_STOCK", "no", ""))
			return
		}
		c.Status(http.StatusCreated)
	})
	router.GET("/sales", func(c *gin.Context) {
		calls++
		c.Status(http.StatusOK)
	})

	tenantA := uuid.NewString()
	tenantB := uuid.NewString()
	send := func(method, tenant, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/sales", nil)
		req.Header.Set(TenantHeader, tenant)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, send(http.MethodPost, tenantA, "k1").Code)
	w := send(http.MethodPost, tenantA, "k1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeDuplicateRequest, decode(t, w).Error.Code)
	assert.Equal(t, 1, calls)

	// keys are per tenant
	assert.Equal(t, http.StatusCreated, send(http.MethodPost, tenantB, "k1").Code)
	// reads and keyless requests pass through
	assert.Equal(t, http.StatusOK, send(http.MethodGet, tenantA, "k1").Code)
	assert.Equal(t, http.StatusCreated, send(http.MethodPost, tenantA, "").Code)
	assert.Equal(t, 4, calls)

	// a failed request can be retried with the same key
	fail = true
	assert.Equal(t, http.StatusUnprocessableEntity, send(http.MethodPost, tenantA, "k2").Code)
	fail = false
	assert.Equal(t, http.StatusCreated, send(http.MethodPost, tenantA, "k2").Code)
}

func TestBodyLimit(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), BodyLimit(100))
	router.POST("/x", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				c.Status(http.StatusRequestEntityTooLarge)
				return
			}
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":1}`)))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared length too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewReader(make([]byte, 200)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, decode(t, w).Error.Code)
	})

	t.Run("streamed body too large", func(t *testing.T) {
		body := `{"a":"` + strings.Repeat("x", 200) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://shop.example"}
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://shop.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), IdempotencyHeader)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()
	type body struct {
		Name string `json:"name" binding:"required"`
		Unit string `json:"unit" binding:"oneof=pieces meters"`
	}
	router := gin.New()
	router.POST("/x", func(c *gin.Context) {
		var b body
		err := c.ShouldBindJSON(&b)
		c.JSON(http.StatusBadRequest, ValidationDetails(err))
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"unit":"kg"}`)))

	var details []dto.ValidationDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	require.Len(t, details, 2)
	assert.Equal(t, "name", details[0].Field)
	assert.Equal(t, "This field is required", details[0].Message)
	assert.Equal(t, "unit", details[1].Field)
	assert.Equal(t, "Must be one of: pieces meters", details[1].Message)

	assert.Nil(t, ValidationDetails(errors.New("boom")))
}
