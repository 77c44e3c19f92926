package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/clothshop/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:         true,
		Bucket:          "shop-reports",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
	}
}

func TestNewS3ReportStore_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ReportStore(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket", func(t *testing.T) {
		cfg := validConfig()
		cfg.Bucket = ""
		_, err := NewS3ReportStore(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key", func(t *testing.T) {
		cfg := validConfig()
		cfg.AccessKeyID = ""
		_, err := NewS3ReportStore(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key id is required")
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.SecretAccessKey = ""
		_, err := NewS3ReportStore(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret access key is required")
	})

	t.Run("defaults", func(t *testing.T) {
		store, err := NewS3ReportStore(ctx, validConfig())
		require.NoError(t, err)
		assert.Equal(t, "shop-reports", store.Bucket())
		assert.Equal(t, 15*time.Minute, store.presignExpiry)
	})

	t.Run("endpoint without scheme", func(t *testing.T) {
		cfg := validConfig()
		cfg.Endpoint = "minio.local:9000"
		store, err := NewS3ReportStore(ctx, cfg)
		require.NoError(t, err)
		url, _, err := store.GenerateDownloadURL(ctx, "reports/a.xlsx", time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "https://minio.local:9000"))
	})
}

func TestS3ReportStore_Options(t *testing.T) {
	store, err := NewS3ReportStore(context.Background(), validConfig(),
		WithLogger(zaptest.NewLogger(t)),
		WithPresignExpiry(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, store.presignExpiry)
	assert.NotNil(t, store.logger)
}

func TestS3ReportStore_GenerateDownloadURL(t *testing.T) {
	ctx := context.Background()
	store, err := NewS3ReportStore(ctx, validConfig())
	require.NoError(t, err)

	t.Run("empty key", func(t *testing.T) {
		url, _, err := store.GenerateDownloadURL(ctx, "", time.Minute)
		require.Error(t, err)
		assert.Empty(t, url)
	})

	t.Run("presigned path style URL", func(t *testing.T) {
		url, expiresAt, err := store.GenerateDownloadURL(ctx, "reports/t1/stock.xlsx", 0)
		require.NoError(t, err)
		assert.Contains(t, url, "localhost:9000/shop-reports/reports")
		assert.Contains(t, url, "X-Amz-Signature")
		assert.True(t, expiresAt.After(time.Now().Add(14*time.Minute)))
		assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
	})
}

func TestS3ReportStore_UploadRequiresKey(t *testing.T) {
	store, err := NewS3ReportStore(context.Background(), validConfig())
	require.NoError(t, err)

	err = store.Upload(context.Background(), "", []byte("x"), "text/plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage key is required")
}
