package persistence

import (
	"context"
	"strings"

	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierReturnRepository implements SupplierReturnRepository using GORM
type GormSupplierReturnRepository struct {
	db *gorm.DB
}

// NewGormSupplierReturnRepository creates a new GormSupplierReturnRepository
func NewGormSupplierReturnRepository(db *gorm.DB) *GormSupplierReturnRepository {
	return &GormSupplierReturnRepository{db: db}
}

// FindByID finds a supplier return by ID within a tenant
func (r *GormSupplierReturnRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.SupplierReturn, error) {
	var ret inventory.SupplierReturn
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&ret).Error; err != nil {
		return nil, translate(err)
	}
	return &ret, nil
}

// FindAll lists supplier returns, newest return date first by default
func (r *GormSupplierReturnRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter inventory.ReturnFilter) ([]inventory.SupplierReturn, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.SupplierReturn{}).Where("tenant_id = ?", tenantID)
	if filter.VarietyID != nil {
		query = query.Where("variety_id = ?", *filter.VarietyID)
	}
	if s := strings.TrimSpace(filter.SupplierName); s != "" {
		query = query.Where("LOWER(supplier_name) = ?", strings.ToLower(s))
	}
	query = dateScope(query, "return_date", filter.Dates)
	return findPage[inventory.SupplierReturn](query, filter.Filter, SupplierReturnSortFields, "return_date")
}

// FindByDates returns every return in the range, oldest first
func (r *GormSupplierReturnRepository) FindByDates(ctx context.Context, tenantID uuid.UUID, dates shared.DateRange) ([]inventory.SupplierReturn, error) {
	var returns []inventory.SupplierReturn
	query := dateScope(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), "return_date", dates)
	if err := query.Order("return_date ASC").Order("created_at ASC").Find(&returns).Error; err != nil {
		return nil, err
	}
	return returns, nil
}

// Create inserts a supplier return
func (r *GormSupplierReturnRepository) Create(ctx context.Context, ret *inventory.SupplierReturn) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

// Delete removes a supplier return
func (r *GormSupplierReturnRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&inventory.SupplierReturn{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSupplierReturnRepository implements SupplierReturnRepository
var _ inventory.SupplierReturnRepository = (*GormSupplierReturnRepository)(nil)
