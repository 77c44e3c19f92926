package sales

import (
	"context"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SaleFilter narrows sale listings
type SaleFilter struct {
	shared.Filter
	Dates           shared.DateRange
	VarietyID       *uuid.UUID
	SalespersonName string
	PaymentStatus   PaymentStatus
}

// SaleRepository defines persistence for sales
type SaleRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]Sale, int64, error)
	// FindByDates returns every sale in the range without paging
	FindByDates(ctx context.Context, tenantID uuid.UUID, dates shared.DateRange) ([]Sale, error)
	Create(ctx context.Context, s *Sale) error
	SaveWithLock(ctx context.Context, s *Sale) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// LoanFilter narrows loan listings
type LoanFilter struct {
	shared.Filter
	Status       LoanStatus
	CustomerName string
}

// LoanRepository defines persistence for customer loans and their payments
type LoanRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomerLoan, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*CustomerLoan, error)
	FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) (*CustomerLoan, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter LoanFilter) ([]CustomerLoan, int64, error)
	// FindUnpaid returns every loan not yet fully paid
	FindUnpaid(ctx context.Context, tenantID uuid.UUID) ([]CustomerLoan, error)
	Create(ctx context.Context, l *CustomerLoan) error
	SaveWithLock(ctx context.Context, l *CustomerLoan) error
	// Delete removes the loan and its payments
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	AddPayment(ctx context.Context, p *LoanPayment) error
	FindPayments(ctx context.Context, tenantID, loanID uuid.UUID) ([]LoanPayment, error)
}
