package ledger

import (
	"context"

	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantLocker serializes ledger writers of one tenant across processes.
// Lock returns a release func; a lock that cannot be obtained is a CONCURRENCY_CONFLICT.
type TenantLocker interface {
	Lock(ctx context.Context, tenantID uuid.UUID) (release func(), err error)
}

// NoopLocker relies on database row locks alone
type NoopLocker struct{}

// Lock always succeeds
func (NoopLocker) Lock(context.Context, uuid.UUID) (func(), error) {
	return func() {}, nil
}

// Recorder receives ledger events after their transaction committed
type Recorder interface {
	MovementRecorded(ctx context.Context, t inventory.MovementType, quantity decimal.Decimal)
	SaleRecorded(ctx context.Context, quantity decimal.Decimal)
}

// NopRecorder discards everything
type NopRecorder struct{}

func (NopRecorder) MovementRecorded(context.Context, inventory.MovementType, decimal.Decimal) {}
func (NopRecorder) SaleRecorded(context.Context, decimal.Decimal)                             {}
