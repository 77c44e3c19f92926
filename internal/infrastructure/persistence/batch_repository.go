package persistence

import (
	"context"
	"strings"

	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

func fifoOrder(query *gorm.DB) *gorm.DB {
	return query.Order("supply_date ASC").Order("created_at ASC").Order("id ASC")
}

// FindByID finds a batch by ID within a tenant
func (r *GormBatchRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Batch, error) {
	var b inventory.Batch
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// FindByIDForUpdate finds a batch by ID and locks the row
func (r *GormBatchRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Batch, error) {
	var b inventory.Batch
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("tenant_id = ? AND id = ?", tenantID, id).First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// FindAvailableForUpdate locks every batch of the variety that still has stock, oldest first
func (r *GormBatchRepository) FindAvailableForUpdate(ctx context.Context, tenantID, varietyID uuid.UUID) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	query := r.db.WithContext(ctx).Clauses(forUpdate).
		Where("tenant_id = ? AND variety_id = ? AND quantity_remaining > 0", tenantID, varietyID)
	if err := fifoOrder(query).Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindOldestFromSupplierForUpdate locks the supplier's oldest batch of the variety that still has stock
func (r *GormBatchRepository) FindOldestFromSupplierForUpdate(ctx context.Context, tenantID, varietyID uuid.UUID, supplier string) (*inventory.Batch, error) {
	var b inventory.Batch
	query := r.db.WithContext(ctx).Clauses(forUpdate).
		Where("tenant_id = ? AND variety_id = ? AND LOWER(supplier_name) = ? AND quantity_remaining > 0",
			tenantID, varietyID, strings.ToLower(strings.TrimSpace(supplier)))
	if err := fifoOrder(query).First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// FindByVariety returns every batch of the variety, oldest first
func (r *GormBatchRepository) FindByVariety(ctx context.Context, tenantID, varietyID uuid.UUID) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	query := r.db.WithContext(ctx).Where("tenant_id = ? AND variety_id = ?", tenantID, varietyID)
	if err := fifoOrder(query).Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindAll lists batches, newest supply date first by default
func (r *GormBatchRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter inventory.BatchFilter) ([]inventory.Batch, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.Batch{}).Where("tenant_id = ?", tenantID)
	if filter.VarietyID != nil {
		query = query.Where("variety_id = ?", *filter.VarietyID)
	}
	if s := strings.TrimSpace(filter.SupplierName); s != "" {
		query = query.Where("LOWER(supplier_name) = ?", strings.ToLower(s))
	}
	if filter.WithStock {
		query = query.Where("quantity_remaining > 0")
	}
	query = dateScope(query, "supply_date", filter.Dates)
	return findPage[inventory.Batch](query, filter.Filter, BatchSortFields, "supply_date")
}

// FindByDates returns every batch supplied in the range, oldest first
func (r *GormBatchRepository) FindByDates(ctx context.Context, tenantID uuid.UUID, dates shared.DateRange) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	query := dateScope(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), "supply_date", dates)
	if err := fifoOrder(query).Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Create inserts a new batch
func (r *GormBatchRepository) Create(ctx context.Context, b *inventory.Batch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// SaveWithLock updates the batch if its version still matches and advances b.Version
func (r *GormBatchRepository) SaveWithLock(ctx context.Context, b *inventory.Batch) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.Batch{}).
		Where("tenant_id = ? AND id = ? AND version = ?", b.TenantID, b.ID, b.Version).
		Updates(map[string]any{
			"supplier_name":      b.SupplierName,
			"quantity":           b.Quantity,
			"price_per_item":     b.PricePerItem,
			"total_amount":       b.TotalAmount,
			"supply_date":        b.SupplyDate,
			"quantity_used":      b.QuantityUsed,
			"quantity_remaining": b.QuantityRemaining,
			"quantity_returned":  b.QuantityReturned,
			"auto_created":       b.AutoCreated,
			"version":            b.Version + 1,
			"updated_at":         b.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return optimisticLockFailed("Supplier batch")
	}
	b.Version++
	return nil
}

// Delete removes a batch
func (r *GormBatchRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&inventory.Batch{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormBatchRepository implements BatchRepository
var _ inventory.BatchRepository = (*GormBatchRepository)(nil)
