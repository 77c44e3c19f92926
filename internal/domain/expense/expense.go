package expense

import (
	"context"
	"strings"
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category classifies an expense
type Category string

const (
	CategoryRent           Category = "rent"
	CategoryUtilities      Category = "utilities"
	CategorySalaries       Category = "salaries"
	CategoryMarketing      Category = "marketing"
	CategoryTransportation Category = "transportation"
	CategoryOfficeSupplies Category = "office_supplies"
	CategoryMaintenance    Category = "maintenance"
	CategoryInsurance      Category = "insurance"
	CategoryTaxes          Category = "taxes"
	CategoryOther          Category = "other"
)

// IsValid returns true if the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryRent, CategoryUtilities, CategorySalaries, CategoryMarketing, CategoryTransportation,
		CategoryOfficeSupplies, CategoryMaintenance, CategoryInsurance, CategoryTaxes, CategoryOther:
		return true
	}
	return false
}

// Expense is a shop operating cost
type Expense struct {
	shared.TenantEntity
	Category    Category        `gorm:"type:varchar(30);not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpenseDate time.Time       `gorm:"not null;index"`
	Description string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "expenses"
}

// NewExpense validates and creates an expense
func NewExpense(tenantID uuid.UUID, category Category, amount decimal.Decimal, date time.Time, description string) (*Expense, error) {
	if !category.IsValid() {
		return nil, shared.Errorf(shared.CodeValidation, "Unknown expense category %q", string(category))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidPrice, "Expense amount must be positive")
	}
	if err := shared.CheckScale("Expense amount", amount); err != nil {
		return nil, err
	}
	return &Expense{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Category:     category,
		Amount:       amount,
		ExpenseDate:  shared.DateOnly(date),
		Description:  strings.TrimSpace(description),
	}, nil
}

// Filter narrows expense listings
type Filter struct {
	shared.Filter
	Dates    shared.DateRange
	Category Category
}

// Repository defines persistence for expenses
type Repository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Expense, int64, error)
	FindByDates(ctx context.Context, tenantID uuid.UUID, dates shared.DateRange) ([]Expense, error)
	Create(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
