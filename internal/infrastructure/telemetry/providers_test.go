package telemetry

import (
	"context"
	"testing"

	"github.com/clothshop/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.TracingEnabled())
	assert.Nil(t, p.LogCore(zapcore.InfoLevel))

	// the no-op meter still hands out working instruments
	m, err := NewLedgerMetrics(p.Meter(LedgerMeterName))
	require.NoError(t, err)
	m.SaleRecorded(context.Background(), decimal.NewFromInt(1))

	require.NoError(t, p.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestLevelCore(t *testing.T) {
	core := &levelCore{Core: zapcore.NewNopCore(), min: zapcore.WarnLevel}
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.False(t, core.With([]zap.Field{zap.String("k", "v")}).Enabled(zapcore.DebugLevel))
}
