package persistence

import (
	"context"
	"strings"

	"github.com/clothshop/backend/internal/domain/sales"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by ID within a tenant
func (r *GormSaleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	var s sales.Sale
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// FindByIDForUpdate finds a sale by ID and locks the row
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	var s sales.Sale
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("tenant_id = ? AND id = ?", tenantID, id).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// FindAll lists sales, newest sale date first by default
func (r *GormSaleRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter sales.SaleFilter) ([]sales.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&sales.Sale{}).Where("tenant_id = ?", tenantID)
	if filter.VarietyID != nil {
		query = query.Where("variety_id = ?", *filter.VarietyID)
	}
	if s := strings.TrimSpace(filter.SalespersonName); s != "" {
		query = query.Where("LOWER(salesperson_name) = ?", strings.ToLower(s))
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	query = dateScope(query, "sale_date", filter.Dates)
	return findPage[sales.Sale](query, filter.Filter, SaleSortFields, "sale_date")
}

// FindByDates returns every sale in the range, oldest first
func (r *GormSaleRepository) FindByDates(ctx context.Context, tenantID uuid.UUID, dates shared.DateRange) ([]sales.Sale, error) {
	var result []sales.Sale
	query := dateScope(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), "sale_date", dates)
	if err := query.Order("sale_date ASC").Order("created_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a sale
func (r *GormSaleRepository) Create(ctx context.Context, s *sales.Sale) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// SaveWithLock updates the sale if its version still matches and advances s.Version
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, s *sales.Sale) error {
	result := r.db.WithContext(ctx).
		Model(&sales.Sale{}).
		Where("tenant_id = ? AND id = ? AND version = ?", s.TenantID, s.ID, s.Version).
		Updates(map[string]any{
			"salesperson_name":      s.SalespersonName,
			"quantity":              s.Quantity,
			"selling_price":         s.SellingPrice,
			"cost_price":            s.CostPrice,
			"profit":                s.Profit,
			"sale_date":             s.SaleDate,
			"supplier_inventory_id": s.BatchID,
			"payment_status":        s.PaymentStatus,
			"customer_name":         s.CustomerName,
			"version":               s.Version + 1,
			"updated_at":            s.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return optimisticLockFailed("Sale")
	}
	s.Version++
	return nil
}

// Delete removes a sale
func (r *GormSaleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&sales.Sale{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
