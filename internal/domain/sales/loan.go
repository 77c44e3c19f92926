package sales

import (
	"strings"
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerLoan is the credit extended on one loan sale.
// AmountPaid + AmountRemaining always equals TotalLoanAmount.
type CustomerLoan struct {
	shared.TenantAggregateRoot
	CustomerName    string          `gorm:"type:varchar(100);not null;index"`
	CustomerPhone   *string         `gorm:"type:varchar(20)"`
	SaleID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	TotalLoanAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountRemaining decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status          LoanStatus      `gorm:"column:loan_status;type:varchar(20);not null;default:'pending';index"`
	LoanDate        time.Time       `gorm:"not null;index"`
	DueDate         *time.Time      `gorm:"index"`
	Notes           string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerLoan) TableName() string {
	return "customer_loans"
}

// LoanPayment is one repayment against a loan
type LoanPayment struct {
	shared.TenantEntity
	LoanID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"column:payment_amount;type:decimal(18,4);not null"`
	PaymentDate   time.Time       `gorm:"not null;index"`
	PaymentMethod string          `gorm:"type:varchar(50)"`
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (LoanPayment) TableName() string {
	return "loan_payments"
}

// NewCustomerLoan opens a pending loan for a loan sale
func NewCustomerLoan(sale *Sale, customerName, customerPhone string, amount decimal.Decimal, dueDate *time.Time, notes string) (*CustomerLoan, error) {
	if sale.PaymentStatus != PaymentLoan {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Loans can only be opened for loan sales")
	}
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, shared.NewDomainError(shared.CodeCustomerRequired, "Customer name is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidPrice, "Loan amount must be positive")
	}
	if err := shared.CheckScale("Loan amount", amount); err != nil {
		return nil, err
	}
	loan := &CustomerLoan{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(sale.TenantID),
		CustomerName:        customerName,
		SaleID:              sale.ID,
		TotalLoanAmount:     amount,
		AmountPaid:          decimal.Zero,
		AmountRemaining:     amount,
		Status:              LoanPending,
		LoanDate:            sale.SaleDate,
		Notes:               strings.TrimSpace(notes),
	}
	if phone := strings.TrimSpace(customerPhone); phone != "" {
		loan.CustomerPhone = &phone
	}
	if dueDate != nil {
		d := shared.DateOnly(*dueDate)
		loan.DueDate = &d
	}
	return loan, nil
}

// ApplyPayment records a repayment and advances the status
func (l *CustomerLoan) ApplyPayment(amount decimal.Decimal, paymentDate time.Time, method, notes string) (*LoanPayment, error) {
	if l.Status == LoanPaid {
		return nil, shared.NewDomainError(shared.CodeLoanAlreadyPaid, "This loan has already been fully paid")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidPrice, "Payment amount must be positive")
	}
	if err := shared.CheckScale("Payment amount", amount); err != nil {
		return nil, err
	}
	if amount.GreaterThan(l.AmountRemaining) {
		return nil, shared.Errorf(shared.CodeValidation,
			"Payment amount %s exceeds remaining balance %s", amount, l.AmountRemaining)
	}
	l.AmountPaid = l.AmountPaid.Add(amount)
	l.AmountRemaining = l.AmountRemaining.Sub(amount)
	if l.AmountRemaining.IsZero() {
		l.Status = LoanPaid
	} else {
		l.Status = LoanPartial
	}
	l.Touch()
	return &LoanPayment{
		TenantEntity:  shared.NewTenantEntity(l.TenantID),
		LoanID:        l.ID,
		Amount:        amount,
		PaymentDate:   shared.DateOnly(paymentDate),
		PaymentMethod: strings.TrimSpace(method),
		Notes:         strings.TrimSpace(notes),
	}, nil
}

// IsOverdue reports whether the loan is unpaid past its due date
func (l *CustomerLoan) IsOverdue(asOf time.Time) bool {
	return l.Status != LoanPaid && l.DueDate != nil && l.DueDate.Before(shared.DateOnly(asOf))
}
