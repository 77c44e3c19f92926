package consignment

import (
	"strings"
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShopkeeperStock is stock issued on consignment to a third-party shopkeeper.
// QuantityIssued always equals QuantitySold + QuantityReturned + QuantityRemaining.
type ShopkeeperStock struct {
	shared.TenantAggregateRoot
	ShopkeeperName        string          `gorm:"type:varchar(100);not null;index"`
	ShopkeeperPhone       *string         `gorm:"type:varchar(20)"`
	VarietyID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityIssued        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantitySold          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityReturned      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityRemaining     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IssueDate             time.Time       `gorm:"not null;index"`
	Notes                 string          `gorm:"type:text"`
	DeductedFromInventory bool            `gorm:"not null;default:false"`
	BatchID               *uuid.UUID      `gorm:"column:supplier_inventory_id;type:uuid;index"`
}

// TableName returns the table name for GORM
func (ShopkeeperStock) TableName() string {
	return "shopkeeper_stock"
}

// ShopkeeperSale records units the shopkeeper reported as sold
type ShopkeeperSale struct {
	shared.TenantEntity
	StockID  uuid.UUID       `gorm:"column:shopkeeper_stock_id;type:uuid;not null;index"`
	Quantity decimal.Decimal `gorm:"column:quantity_sold;type:decimal(18,4);not null"`
	SaleDate time.Time       `gorm:"not null;index"`
	Notes    string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ShopkeeperSale) TableName() string {
	return "shopkeeper_sales"
}

// ShopkeeperReturn records units the shopkeeper brought back
type ShopkeeperReturn struct {
	shared.TenantEntity
	StockID    uuid.UUID       `gorm:"column:shopkeeper_stock_id;type:uuid;not null;index"`
	Quantity   decimal.Decimal `gorm:"column:quantity_returned;type:decimal(18,4);not null"`
	ReturnDate time.Time       `gorm:"not null;index"`
	Notes      string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ShopkeeperReturn) TableName() string {
	return "shopkeeper_returns"
}

// IssueParams carries the values for a new consignment
type IssueParams struct {
	ShopkeeperName        string
	ShopkeeperPhone       string
	VarietyID             uuid.UUID
	Quantity              decimal.Decimal
	IssueDate             time.Time
	Notes                 string
	DeductedFromInventory bool
	BatchID               *uuid.UUID
}

// NewShopkeeperStock creates a consignment with everything still with the shopkeeper
func NewShopkeeperStock(tenantID uuid.UUID, p IssueParams) (*ShopkeeperStock, error) {
	name := strings.TrimSpace(p.ShopkeeperName)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Shopkeeper name is required")
	}
	if err := checkQuantity(p.Quantity); err != nil {
		return nil, err
	}
	if p.DeductedFromInventory && p.BatchID == nil {
		return nil, shared.NewDomainError(shared.CodeInvariantViolation, "Deducted consignment must reference a batch")
	}
	s := &ShopkeeperStock{
		TenantAggregateRoot:   shared.NewTenantAggregateRoot(tenantID),
		ShopkeeperName:        name,
		VarietyID:             p.VarietyID,
		QuantityIssued:        p.Quantity,
		QuantitySold:          decimal.Zero,
		QuantityReturned:      decimal.Zero,
		QuantityRemaining:     p.Quantity,
		IssueDate:             shared.DateOnly(p.IssueDate),
		Notes:                 strings.TrimSpace(p.Notes),
		DeductedFromInventory: p.DeductedFromInventory,
		BatchID:               p.BatchID,
	}
	if phone := strings.TrimSpace(p.ShopkeeperPhone); phone != "" {
		s.ShopkeeperPhone = &phone
	}
	return s, nil
}

func checkQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity must be positive")
	}
	return shared.CheckScale("Quantity", q)
}

func (s *ShopkeeperStock) takeRemaining(q decimal.Decimal, what string) error {
	if err := checkQuantity(q); err != nil {
		return err
	}
	if q.GreaterThan(s.QuantityRemaining) {
		return shared.Errorf(shared.CodeInsufficientStock,
			"Cannot %s more than remaining quantity %s", what, s.QuantityRemaining)
	}
	s.QuantityRemaining = s.QuantityRemaining.Sub(q)
	return nil
}

// RecordSale marks q units as sold by the shopkeeper
func (s *ShopkeeperStock) RecordSale(q decimal.Decimal, date time.Time, notes string) (*ShopkeeperSale, error) {
	if err := s.takeRemaining(q, "sell"); err != nil {
		return nil, err
	}
	s.QuantitySold = s.QuantitySold.Add(q)
	s.Touch()
	return &ShopkeeperSale{
		TenantEntity: shared.NewTenantEntity(s.TenantID),
		StockID:      s.ID,
		Quantity:     q,
		SaleDate:     shared.DateOnly(date),
		Notes:        strings.TrimSpace(notes),
	}, nil
}

// RecordReturn marks q units as returned by the shopkeeper
func (s *ShopkeeperStock) RecordReturn(q decimal.Decimal, date time.Time, notes string) (*ShopkeeperReturn, error) {
	if err := s.takeRemaining(q, "return"); err != nil {
		return nil, err
	}
	s.QuantityReturned = s.QuantityReturned.Add(q)
	s.Touch()
	return &ShopkeeperReturn{
		TenantEntity: shared.NewTenantEntity(s.TenantID),
		StockID:      s.ID,
		Quantity:     q,
		ReturnDate:   shared.DateOnly(date),
		Notes:        strings.TrimSpace(notes),
	}, nil
}

// RestoreOnDelete is the quantity that goes back to the ledgers when the record is deleted.
// Returns already restored their own share, so it is issued minus returned, not remaining.
func (s *ShopkeeperStock) RestoreOnDelete() decimal.Decimal {
	if !s.DeductedFromInventory {
		return decimal.Zero
	}
	return s.QuantityIssued.Sub(s.QuantityReturned)
}

// IsOutstanding reports whether the shopkeeper still holds stock
func (s *ShopkeeperStock) IsOutstanding() bool {
	return s.QuantityRemaining.IsPositive()
}

// CheckConservation verifies the counters add up
func (s *ShopkeeperStock) CheckConservation() error {
	sum := s.QuantitySold.Add(s.QuantityReturned).Add(s.QuantityRemaining)
	if !sum.Equal(s.QuantityIssued) || s.QuantityRemaining.IsNegative() {
		return shared.Errorf(shared.CodeInvariantViolation,
			"Consignment %s counters sum to %s, issued %s", s.ID, sum, s.QuantityIssued)
	}
	return nil
}
