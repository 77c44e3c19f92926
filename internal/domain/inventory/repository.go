package inventory

import (
	"context"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// VarietyFilter narrows variety listings
type VarietyFilter struct {
	shared.Filter
	Search   string
	LowStock bool
}

// VarietyRepository defines persistence for varieties. Every method is tenant-scoped.
type VarietyRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Variety, error)
	// FindByIDForUpdate reads the row under a write lock inside a transaction
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Variety, error)
	// FindByNameForUpdate looks a variety up by case-folded name under a write lock
	FindByNameForUpdate(ctx context.Context, tenantID uuid.UUID, name string) (*Variety, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter VarietyFilter) ([]Variety, int64, error)
	FindLowStock(ctx context.Context, tenantID uuid.UUID) ([]Variety, error)
	Create(ctx context.Context, v *Variety) error
	// SaveWithLock updates the row if its version still matches, then bumps the version
	SaveWithLock(ctx context.Context, v *Variety) error
	// Delete removes the variety and everything that references it
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// BatchFilter narrows batch listings
type BatchFilter struct {
	shared.Filter
	VarietyID    *uuid.UUID
	SupplierName string
	Dates        shared.DateRange
	WithStock    bool
}

// BatchRepository defines persistence for supplier batches
type BatchRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Batch, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Batch, error)
	// FindAvailableForUpdate returns batches with remaining stock, oldest first, locked
	FindAvailableForUpdate(ctx context.Context, tenantID, varietyID uuid.UUID) ([]Batch, error)
	// FindOldestFromSupplierForUpdate returns the oldest batch of the supplier with remaining stock
	FindOldestFromSupplierForUpdate(ctx context.Context, tenantID, varietyID uuid.UUID, supplier string) (*Batch, error)
	FindByVariety(ctx context.Context, tenantID, varietyID uuid.UUID) ([]Batch, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter BatchFilter) ([]Batch, int64, error)
	// FindByDates returns every batch supplied in the range without paging
	FindByDates(ctx context.Context, tenantID uuid.UUID, dates shared.DateRange) ([]Batch, error)
	Create(ctx context.Context, b *Batch) error
	SaveWithLock(ctx context.Context, b *Batch) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// MovementRepository is the append-only movement log
type MovementRepository interface {
	Append(ctx context.Context, m *Movement) error
	// FindByVariety pages movements newest first
	FindByVariety(ctx context.Context, tenantID, varietyID uuid.UUID, filter shared.Filter) ([]Movement, int64, error)
	// FindAllByVariety returns the full log in sequence order
	FindAllByVariety(ctx context.Context, tenantID, varietyID uuid.UUID) ([]Movement, error)
}

// ReturnFilter narrows supplier return listings
type ReturnFilter struct {
	shared.Filter
	VarietyID    *uuid.UUID
	SupplierName string
	Dates        shared.DateRange
}

// SupplierReturnRepository defines persistence for supplier returns
type SupplierReturnRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SupplierReturn, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ReturnFilter) ([]SupplierReturn, int64, error)
	FindByDates(ctx context.Context, tenantID uuid.UUID, dates shared.DateRange) ([]SupplierReturn, error)
	Create(ctx context.Context, r *SupplierReturn) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
