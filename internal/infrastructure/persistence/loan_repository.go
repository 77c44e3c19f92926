package persistence

import (
	"context"
	"strings"

	"github.com/clothshop/backend/internal/domain/sales"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLoanRepository implements LoanRepository using GORM
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

func (r *GormLoanRepository) first(query *gorm.DB) (*sales.CustomerLoan, error) {
	var l sales.CustomerLoan
	if err := query.First(&l).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

// FindByID finds a loan by ID within a tenant
func (r *GormLoanRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*sales.CustomerLoan, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByIDForUpdate finds a loan by ID and locks the row
func (r *GormLoanRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*sales.CustomerLoan, error) {
	return r.first(r.db.WithContext(ctx).Clauses(forUpdate).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindBySale finds the loan attached to a sale
func (r *GormLoanRepository) FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) (*sales.CustomerLoan, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND sale_id = ?", tenantID, saleID))
}

// FindAll lists loans, newest loan date first by default
func (r *GormLoanRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter sales.LoanFilter) ([]sales.CustomerLoan, int64, error) {
	query := r.db.WithContext(ctx).Model(&sales.CustomerLoan{}).Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		query = query.Where("loan_status = ?", filter.Status)
	}
	if s := strings.TrimSpace(filter.CustomerName); s != "" {
		query = query.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	return findPage[sales.CustomerLoan](query, filter.Filter, LoanSortFields, "loan_date")
}

// FindUnpaid returns every loan with an outstanding balance, oldest first
func (r *GormLoanRepository) FindUnpaid(ctx context.Context, tenantID uuid.UUID) ([]sales.CustomerLoan, error) {
	var loans []sales.CustomerLoan
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND loan_status <> ?", tenantID, sales.LoanPaid).
		Order("loan_date ASC").Order("created_at ASC").
		Find(&loans).Error
	return loans, err
}

// Create inserts a loan. A second loan for the same sale is rejected.
func (r *GormLoanRepository) Create(ctx context.Context, l *sales.CustomerLoan) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		if shared.IsConflict(translate(err)) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A loan already exists for this sale")
		}
		return err
	}
	return nil
}

// SaveWithLock updates the loan if its version still matches and advances l.Version
func (r *GormLoanRepository) SaveWithLock(ctx context.Context, l *sales.CustomerLoan) error {
	result := r.db.WithContext(ctx).
		Model(&sales.CustomerLoan{}).
		Where("tenant_id = ? AND id = ? AND version = ?", l.TenantID, l.ID, l.Version).
		Updates(map[string]any{
			"customer_name":     l.CustomerName,
			"customer_phone":    l.CustomerPhone,
			"total_loan_amount": l.TotalLoanAmount,
			"amount_paid":       l.AmountPaid,
			"amount_remaining":  l.AmountRemaining,
			"loan_status":       l.Status,
			"due_date":          l.DueDate,
			"notes":             l.Notes,
			"version":           l.Version + 1,
			"updated_at":        l.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return optimisticLockFailed("Loan")
	}
	l.Version++
	return nil
}

// Delete removes a loan and its payments
func (r *GormLoanRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND loan_id = ?", tenantID, id).Delete(&sales.LoanPayment{}).Error; err != nil {
			return err
		}
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&sales.CustomerLoan{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// AddPayment inserts a payment row
func (r *GormLoanRepository) AddPayment(ctx context.Context, p *sales.LoanPayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindPayments returns the payments of a loan, oldest first
func (r *GormLoanRepository) FindPayments(ctx context.Context, tenantID, loanID uuid.UUID) ([]sales.LoanPayment, error) {
	var payments []sales.LoanPayment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND loan_id = ?", tenantID, loanID).
		Order("payment_date ASC").Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

// Ensure GormLoanRepository implements LoanRepository
var _ sales.LoanRepository = (*GormLoanRepository)(nil)
