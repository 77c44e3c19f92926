package telemetry

import (
	"context"

	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMeterName is the instrumentation scope of the ledger instruments
const LedgerMeterName = "github.com/clothshop/backend/ledger"

// LedgerMetrics records committed ledger activity
type LedgerMetrics struct {
	movements    metric.Int64Counter
	sales        metric.Int64Counter
	saleQuantity metric.Float64Histogram
}

// NewLedgerMetrics creates the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	movements, err := meter.Int64Counter("ledger_movements_total",
		metric.WithDescription("Stock movements written to the ledger"),
		metric.WithUnit("{movement}"))
	if err != nil {
		return nil, err
	}
	sales, err := meter.Int64Counter("ledger_sales_total",
		metric.WithDescription("Sales recorded"),
		metric.WithUnit("{sale}"))
	if err != nil {
		return nil, err
	}
	quantity, err := meter.Float64Histogram("ledger_sale_quantity",
		metric.WithDescription("Quantity sold per sale"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 20, 50, 100, 250, 500))
	if err != nil {
		return nil, err
	}
	return &LedgerMetrics{movements: movements, sales: sales, saleQuantity: quantity}, nil
}

// MovementRecorded counts one movement by type
func (m *LedgerMetrics) MovementRecorded(ctx context.Context, t inventory.MovementType, _ decimal.Decimal) {
	m.movements.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(t))))
}

// SaleRecorded counts one sale and records its quantity
func (m *LedgerMetrics) SaleRecorded(ctx context.Context, quantity decimal.Decimal) {
	m.sales.Add(ctx, 1)
	m.saleQuantity.Record(ctx, quantity.InexactFloat64())
}

var _ ledger.Recorder = (*LedgerMetrics)(nil)
