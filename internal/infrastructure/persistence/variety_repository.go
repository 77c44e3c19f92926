package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/clothshop/backend/internal/domain/consignment"
	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/sales"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVarietyRepository implements VarietyRepository using GORM
type GormVarietyRepository struct {
	db *gorm.DB
}

// NewGormVarietyRepository creates a new GormVarietyRepository
func NewGormVarietyRepository(db *gorm.DB) *GormVarietyRepository {
	return &GormVarietyRepository{db: db}
}

func (r *GormVarietyRepository) find(ctx context.Context, query *gorm.DB) (*inventory.Variety, error) {
	var v inventory.Variety
	if err := query.WithContext(ctx).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// FindByID finds a variety by ID within a tenant
func (r *GormVarietyRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Variety, error) {
	return r.find(ctx, r.db.Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByIDForUpdate finds a variety by ID and locks the row
func (r *GormVarietyRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Variety, error) {
	return r.find(ctx, r.db.Clauses(forUpdate).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByNameForUpdate finds a variety by its case-folded name and locks the row
func (r *GormVarietyRepository) FindByNameForUpdate(ctx context.Context, tenantID uuid.UUID, name string) (*inventory.Variety, error) {
	return r.find(ctx, r.db.Clauses(forUpdate).Where("tenant_id = ? AND name_key = ?", tenantID, inventory.NameKey(name)))
}

// FindAll lists varieties ordered by name unless the filter says otherwise
func (r *GormVarietyRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter inventory.VarietyFilter) ([]inventory.Variety, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.Variety{}).Where("tenant_id = ?", tenantID)
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("name_key LIKE ?", "%"+inventory.NameKey(s)+"%")
	}
	if filter.LowStock {
		query = query.Where("min_stock_level IS NOT NULL AND current_stock <= min_stock_level")
	}

	f := filter.Filter
	if f.OrderBy == "" {
		f.OrderBy, f.OrderDir = "name_key", "asc"
	}
	return findPage[inventory.Variety](query, f, VarietySortFields, "name_key")
}

// FindLowStock returns every variety at or below its minimum stock level
func (r *GormVarietyRepository) FindLowStock(ctx context.Context, tenantID uuid.UUID) ([]inventory.Variety, error) {
	var varieties []inventory.Variety
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND min_stock_level IS NOT NULL AND current_stock <= min_stock_level", tenantID).
		Order("current_stock ASC").Order("name_key ASC").
		Find(&varieties).Error
	return varieties, err
}

// Create inserts a new variety
func (r *GormVarietyRepository) Create(ctx context.Context, v *inventory.Variety) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.Errorf(shared.CodeAlreadyExists, "Variety %q already exists", v.Name)
		}
		return err
	}
	return nil
}

// SaveWithLock updates the variety if nobody changed it since it was read.
// On success v.Version is advanced.
func (r *GormVarietyRepository) SaveWithLock(ctx context.Context, v *inventory.Variety) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.Variety{}).
		Where("tenant_id = ? AND id = ? AND version = ?", v.TenantID, v.ID, v.Version).
		Updates(map[string]any{
			"name":               v.Name,
			"name_key":           v.NameKey,
			"measurement_unit":   v.Unit,
			"standard_length":    v.StandardLength,
			"description":        v.Description,
			"default_cost_price": v.DefaultCostPrice,
			"current_stock":      v.CurrentStock,
			"min_stock_level":    v.MinStockLevel,
			"last_movement_seq":  v.LastMovementSeq,
			"version":            v.Version + 1,
			"updated_at":         v.UpdatedAt,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return shared.Errorf(shared.CodeAlreadyExists, "Variety %q already exists", v.Name)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return optimisticLockFailed("Variety")
	}
	v.Version++
	return nil
}

// Delete removes the variety together with its movements, batches, returns,
// sales, loans and consignments
func (r *GormVarietyRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := "tenant_id = ? AND variety_id = ?"

		saleIDs := tx.Model(&sales.Sale{}).Select("id").Where(scope, tenantID, id)
		loanIDs := tx.Model(&sales.CustomerLoan{}).Select("id").Where("tenant_id = ? AND sale_id IN (?)", tenantID, saleIDs)
		if err := tx.Where("tenant_id = ? AND loan_id IN (?)", tenantID, loanIDs).Delete(&sales.LoanPayment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND sale_id IN (?)", tenantID, saleIDs).Delete(&sales.CustomerLoan{}).Error; err != nil {
			return err
		}

		stockIDs := tx.Model(&consignment.ShopkeeperStock{}).Select("id").Where(scope, tenantID, id)
		if err := tx.Where("tenant_id = ? AND shopkeeper_stock_id IN (?)", tenantID, stockIDs).Delete(&consignment.ShopkeeperSale{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND shopkeeper_stock_id IN (?)", tenantID, stockIDs).Delete(&consignment.ShopkeeperReturn{}).Error; err != nil {
			return err
		}

		for _, model := range []any{
			&consignment.ShopkeeperStock{},
			&sales.Sale{},
			&inventory.SupplierReturn{},
			&inventory.Batch{},
			&inventory.Movement{},
		} {
			if err := tx.Where(scope, tenantID, id).Delete(model).Error; err != nil {
				return err
			}
		}

		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&inventory.Variety{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Ensure GormVarietyRepository implements VarietyRepository
var _ inventory.VarietyRepository = (*GormVarietyRepository)(nil)
