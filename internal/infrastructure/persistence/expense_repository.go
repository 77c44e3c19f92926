package persistence

import (
	"context"

	"github.com/clothshop/backend/internal/domain/expense"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRepository implements expense.Repository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by ID within a tenant
func (r *GormExpenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*expense.Expense, error) {
	var e expense.Expense
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// FindAll lists expenses, newest expense date first by default
func (r *GormExpenseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter expense.Filter) ([]expense.Expense, int64, error) {
	query := r.db.WithContext(ctx).Model(&expense.Expense{}).Where("tenant_id = ?", tenantID)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	query = dateScope(query, "expense_date", filter.Dates)
	return findPage[expense.Expense](query, filter.Filter, ExpenseSortFields, "expense_date")
}

// FindByDates returns every expense in the range, oldest first
func (r *GormExpenseRepository) FindByDates(ctx context.Context, tenantID uuid.UUID, dates shared.DateRange) ([]expense.Expense, error) {
	var expenses []expense.Expense
	query := dateScope(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), "expense_date", dates)
	if err := query.Order("expense_date ASC").Order("created_at ASC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// Create inserts an expense
func (r *GormExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// Delete removes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&expense.Expense{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormExpenseRepository implements expense.Repository
var _ expense.Repository = (*GormExpenseRepository)(nil)
