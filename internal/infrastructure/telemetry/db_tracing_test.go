package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type tracedRow struct {
	ID   int
	Name string
}

func TestRegisterDBTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))

	require.NoError(t, RegisterDBTracing(db, "sqlite", time.Nanosecond, zaptest.NewLogger(t)))

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{ID: 1, Name: "Cotton"}).Error)
	var rows []tracedRow
	require.NoError(t, db.WithContext(ctx).Where("name = ?", "Cotton").Find(&rows).Error)
	span.End()

	var dbSpans []sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.Name() != "request" {
			dbSpans = append(dbSpans, s)
		}
	}
	require.NotEmpty(t, dbSpans)

	slow := false
	for _, s := range dbSpans {
		for _, kv := range s.Attributes() {
			if kv.Key == attribute.Key("db.slow_query") && kv.Value.AsBool() {
				slow = true
			}
			if kv.Key == attribute.Key("db.statement") {
				assert.NotContains(t, kv.Value.AsString(), "Cotton", "query variables must not leak into spans")
			}
		}
	}
	assert.True(t, slow)
}
