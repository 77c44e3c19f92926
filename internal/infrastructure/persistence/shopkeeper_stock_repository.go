package persistence

import (
	"context"
	"strings"

	"github.com/clothshop/backend/internal/domain/consignment"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormShopkeeperStockRepository implements ShopkeeperStockRepository using GORM
type GormShopkeeperStockRepository struct {
	db *gorm.DB
}

// NewGormShopkeeperStockRepository creates a new GormShopkeeperStockRepository
func NewGormShopkeeperStockRepository(db *gorm.DB) *GormShopkeeperStockRepository {
	return &GormShopkeeperStockRepository{db: db}
}

func (r *GormShopkeeperStockRepository) first(query *gorm.DB) (*consignment.ShopkeeperStock, error) {
	var s consignment.ShopkeeperStock
	if err := query.First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// FindByID finds a consignment by ID within a tenant
func (r *GormShopkeeperStockRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*consignment.ShopkeeperStock, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByIDForUpdate finds a consignment by ID and locks the row
func (r *GormShopkeeperStockRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*consignment.ShopkeeperStock, error) {
	return r.first(r.db.WithContext(ctx).Clauses(forUpdate).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindAll lists consignments, newest issue date first by default
func (r *GormShopkeeperStockRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter consignment.StockFilter) ([]consignment.ShopkeeperStock, int64, error) {
	query := r.db.WithContext(ctx).Model(&consignment.ShopkeeperStock{}).Where("tenant_id = ?", tenantID)
	if s := strings.TrimSpace(filter.ShopkeeperName); s != "" {
		query = query.Where("LOWER(shopkeeper_name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filter.VarietyID != nil {
		query = query.Where("variety_id = ?", *filter.VarietyID)
	}
	if filter.Outstanding {
		query = query.Where("quantity_remaining > 0")
	}
	return findPage[consignment.ShopkeeperStock](query, filter.Filter, ShopkeeperStockSortFields, "issue_date")
}

// FindByShopkeeper returns every record of the named shopkeeper, oldest first
func (r *GormShopkeeperStockRepository) FindByShopkeeper(ctx context.Context, tenantID uuid.UUID, name string) ([]consignment.ShopkeeperStock, error) {
	var stocks []consignment.ShopkeeperStock
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND LOWER(shopkeeper_name) = ?", tenantID, strings.ToLower(strings.TrimSpace(name))).
		Order("issue_date ASC").Order("created_at ASC").
		Find(&stocks).Error
	return stocks, err
}

// FindAllUnpaged returns every consignment of the tenant ordered by shopkeeper
func (r *GormShopkeeperStockRepository) FindAllUnpaged(ctx context.Context, tenantID uuid.UUID) ([]consignment.ShopkeeperStock, error) {
	var stocks []consignment.ShopkeeperStock
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("shopkeeper_name ASC").Order("issue_date ASC").
		Find(&stocks).Error
	return stocks, err
}

// Create inserts a consignment
func (r *GormShopkeeperStockRepository) Create(ctx context.Context, s *consignment.ShopkeeperStock) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// SaveWithLock updates the consignment if its version still matches and advances s.Version
func (r *GormShopkeeperStockRepository) SaveWithLock(ctx context.Context, s *consignment.ShopkeeperStock) error {
	result := r.db.WithContext(ctx).
		Model(&consignment.ShopkeeperStock{}).
		Where("tenant_id = ? AND id = ? AND version = ?", s.TenantID, s.ID, s.Version).
		Updates(map[string]any{
			"shopkeeper_name":    s.ShopkeeperName,
			"shopkeeper_phone":   s.ShopkeeperPhone,
			"quantity_issued":    s.QuantityIssued,
			"quantity_sold":      s.QuantitySold,
			"quantity_returned":  s.QuantityReturned,
			"quantity_remaining": s.QuantityRemaining,
			"notes":              s.Notes,
			"version":            s.Version + 1,
			"updated_at":         s.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return optimisticLockFailed("Shopkeeper stock")
	}
	s.Version++
	return nil
}

// Delete removes the consignment with its sale and return rows
func (r *GormShopkeeperStockRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := "tenant_id = ? AND shopkeeper_stock_id = ?"
		if err := tx.Where(scope, tenantID, id).Delete(&consignment.ShopkeeperSale{}).Error; err != nil {
			return err
		}
		if err := tx.Where(scope, tenantID, id).Delete(&consignment.ShopkeeperReturn{}).Error; err != nil {
			return err
		}
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&consignment.ShopkeeperStock{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// AddSale inserts a shopkeeper sale row
func (r *GormShopkeeperStockRepository) AddSale(ctx context.Context, sale *consignment.ShopkeeperSale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// AddReturn inserts a shopkeeper return row
func (r *GormShopkeeperStockRepository) AddReturn(ctx context.Context, ret *consignment.ShopkeeperReturn) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

// FindSales returns the sales recorded against a consignment, oldest first
func (r *GormShopkeeperStockRepository) FindSales(ctx context.Context, tenantID, stockID uuid.UUID) ([]consignment.ShopkeeperSale, error) {
	var rows []consignment.ShopkeeperSale
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND shopkeeper_stock_id = ?", tenantID, stockID).
		Order("sale_date ASC").Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// FindReturns returns the returns recorded against a consignment, oldest first
func (r *GormShopkeeperStockRepository) FindReturns(ctx context.Context, tenantID, stockID uuid.UUID) ([]consignment.ShopkeeperReturn, error) {
	var rows []consignment.ShopkeeperReturn
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND shopkeeper_stock_id = ?", tenantID, stockID).
		Order("return_date ASC").Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Ensure GormShopkeeperStockRepository implements ShopkeeperStockRepository
var _ consignment.ShopkeeperStockRepository = (*GormShopkeeperStockRepository)(nil)
