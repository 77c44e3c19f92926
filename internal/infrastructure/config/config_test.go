package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "clothshop-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "clothshop", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "tenant_id", cfg.JWT.TenantClaim)
		assert.Equal(t, 10*time.Second, cfg.Ledger.LockTTL)
		assert.Equal(t, 5, cfg.Assistant.MaxRounds)
		assert.False(t, cfg.Assistant.Enabled())
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("loads values from environment variables with SHOP prefix", func(t *testing.T) {
		t.Setenv("SHOP_APP_NAME", "test-app")
		t.Setenv("SHOP_APP_PORT", "9000")
		t.Setenv("SHOP_DATABASE_DRIVER", "sqlite")
		t.Setenv("SHOP_DATABASE_PATH", ":memory:")
		t.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("SHOP_LEDGER_REJECT_BELOW_COST", "true")
		t.Setenv("SHOP_ASSISTANT_OPENAI_API_KEY", "sk-test")
		t.Setenv("SHOP_ASSISTANT_MAX_ROUNDS", "3")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.DSN())
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Ledger.RejectBelowCost)
		assert.True(t, cfg.Assistant.Enabled())
		assert.Equal(t, 3, cfg.Assistant.MaxRounds)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		t.Setenv("SHOP_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("distributed lock requires redis", func(t *testing.T) {
		t.Setenv("SHOP_LEDGER_DISTRIBUTED_LOCK", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis.enabled")

		t.Setenv("SHOP_REDIS_ENABLED", "true")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Ledger.DistributedLock)
	})
}

func TestValidateProduction(t *testing.T) {
	base := func() *Config {
		cfg, err := fromViper(viper.New())
		require.NoError(t, err)
		cfg.App.Env = "production"
		cfg.JWT.Enabled = true
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		return cfg
	}

	t.Run("valid production config", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("short jwt secret", func(t *testing.T) {
		cfg := base()
		cfg.JWT.Secret = "short"
		assert.ErrorContains(t, cfg.validate(), "jwt.secret")
	})

	t.Run("sqlite not allowed", func(t *testing.T) {
		cfg := base()
		cfg.Database.Driver = DriverSQLite
		assert.ErrorContains(t, cfg.validate(), "sqlite")
	})

	t.Run("sslmode disable", func(t *testing.T) {
		cfg := base()
		cfg.Database.SSLMode = "disable"
		assert.ErrorContains(t, cfg.validate(), "sslmode")
	})

	t.Run("wildcard cors", func(t *testing.T) {
		cfg := base()
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.ErrorContains(t, cfg.validate(), "cors_allow_origins")
	})
}

func TestValidateSamplingRatio(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	cfg.Telemetry.SamplingRatio = 1.5
	assert.ErrorContains(t, cfg.validate(), "sampling_ratio")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     5432,
		User:     "shop",
		Password: "p@ss word",
		DBName:   "clothshop",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://shop:p%40ss%20word@db:5432/clothshop?sslmode=disable", d.DSN())
}
