package sales

import (
	"strings"
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places kept for per-unit prices and totals
const PriceScale = shared.AmountScale

// Sale is one sold transaction. SellingPrice and CostPrice are per unit, Profit is the total.
type Sale struct {
	shared.TenantAggregateRoot
	SalespersonName string          `gorm:"type:varchar(100);not null;index"`
	VarietyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SellingPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Profit          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SaleDate        time.Time       `gorm:"not null;index"`
	BatchID         *uuid.UUID      `gorm:"column:supplier_inventory_id;type:uuid;index"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'paid'"`
	CustomerName    *string         `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// PerUnit divides a total by quantity at price scale
func PerUnit(total, quantity decimal.Decimal) decimal.Decimal {
	return total.DivRound(quantity, PriceScale)
}

// ProfitFor computes total profit from per-unit prices
func ProfitFor(sellingPrice, costPrice, quantity decimal.Decimal) decimal.Decimal {
	return sellingPrice.Sub(costPrice).Mul(quantity).Round(PriceScale)
}

// SaleParams carries validated values for a new sale
type SaleParams struct {
	SalespersonName string
	VarietyID       uuid.UUID
	Quantity        decimal.Decimal
	SellingPrice    decimal.Decimal
	CostPrice       decimal.Decimal
	SaleDate        time.Time
	BatchID         *uuid.UUID
	PaymentStatus   PaymentStatus
	CustomerName    string
}

// NewSale creates a sale and derives its profit
func NewSale(tenantID uuid.UUID, p SaleParams) (*Sale, error) {
	if err := ValidateQuantity(p.Quantity); err != nil {
		return nil, err
	}
	if p.SellingPrice.IsNegative() || p.CostPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidPrice, "Prices cannot be negative")
	}
	if err := shared.CheckScale("Selling price", p.SellingPrice); err != nil {
		return nil, err
	}
	if err := shared.CheckScale("Cost price", p.CostPrice); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(p.SalespersonName)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Salesperson name is required")
	}
	s := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SalespersonName:     name,
		VarietyID:           p.VarietyID,
		Quantity:            p.Quantity,
		SellingPrice:        p.SellingPrice,
		CostPrice:           p.CostPrice,
		SaleDate:            shared.DateOnly(p.SaleDate),
		BatchID:             p.BatchID,
	}
	if err := s.SetPayment(p.PaymentStatus, p.CustomerName); err != nil {
		return nil, err
	}
	s.recompute()
	return s, nil
}

// ValidateQuantity rejects non-positive quantities and ones finer than the stored scale
func ValidateQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity must be positive")
	}
	return shared.CheckScale("Quantity", q)
}

// SetPayment sets the payment status. A loan requires a customer name.
func (s *Sale) SetPayment(status PaymentStatus, customerName string) error {
	if !status.IsValid() {
		return shared.Errorf(shared.CodeValidation, "Unknown payment status %q", string(status))
	}
	customerName = strings.TrimSpace(customerName)
	if status == PaymentLoan && customerName == "" {
		return shared.NewDomainError(shared.CodeCustomerRequired, "Customer name is required for loan sales")
	}
	s.PaymentStatus = status
	if customerName == "" {
		s.CustomerName = nil
	} else {
		s.CustomerName = &customerName
	}
	return nil
}

// Reprice sets a new per-unit cost
func (s *Sale) Reprice(costPrice decimal.Decimal) error {
	if costPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidPrice, "Cost price cannot be negative")
	}
	if err := shared.CheckScale("Cost price", costPrice); err != nil {
		return err
	}
	s.CostPrice = costPrice
	s.recompute()
	return nil
}

// SetSellingPrice sets a new per-unit selling price
func (s *Sale) SetSellingPrice(sellingPrice decimal.Decimal) error {
	if sellingPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidPrice, "Selling price cannot be negative")
	}
	if err := shared.CheckScale("Selling price", sellingPrice); err != nil {
		return err
	}
	s.SellingPrice = sellingPrice
	s.recompute()
	return nil
}

// ChangeQuantity sets a new quantity and returns new - old
func (s *Sale) ChangeQuantity(q decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateQuantity(q); err != nil {
		return decimal.Zero, err
	}
	delta := q.Sub(s.Quantity)
	s.Quantity = q
	s.recompute()
	return delta, nil
}

// IsBelowCost reports whether the sale loses money per unit
func (s *Sale) IsBelowCost() bool {
	return s.SellingPrice.LessThan(s.CostPrice)
}

// TotalAmount returns the revenue of the sale
func (s *Sale) TotalAmount() decimal.Decimal {
	return s.SellingPrice.Mul(s.Quantity).Round(PriceScale)
}

// CheckProfit verifies the stored profit matches the per-unit prices
func (s *Sale) CheckProfit() error {
	want := ProfitFor(s.SellingPrice, s.CostPrice, s.Quantity)
	if !s.Profit.Equal(want) {
		return shared.Errorf(shared.CodeInvariantViolation, "Sale %s profit %s, expected %s", s.ID, s.Profit, want)
	}
	return nil
}

func (s *Sale) recompute() {
	s.Profit = ProfitFor(s.SellingPrice, s.CostPrice, s.Quantity)
	s.Touch()
}
