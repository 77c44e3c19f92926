package inventory

import (
	"strings"
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AutoSupplierName is the placeholder supplier for batches created by a sale with no stock to draw from
const AutoSupplierName = "To Be Updated"

// Batch is one receipt of physical stock from a supplier.
// Quantity always equals QuantityUsed + QuantityRemaining + QuantityReturned.
type Batch struct {
	shared.TenantAggregateRoot
	VarietyID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_batch_variety_fifo,priority:1"`
	SupplierName      string          `gorm:"type:varchar(100);not null;index"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PricePerItem      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SupplyDate        time.Time       `gorm:"not null;index:idx_batch_variety_fifo,priority:2"`
	QuantityUsed      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityRemaining decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityReturned  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AutoCreated       bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "supplier_inventory"
}

// NewBatch creates a fully available batch
func NewBatch(tenantID, varietyID uuid.UUID, supplier string, quantity, pricePerItem decimal.Decimal, supplyDate time.Time) (*Batch, error) {
	supplier = strings.TrimSpace(supplier)
	if supplier == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Supplier name cannot be empty")
	}
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	if err := checkPrice(pricePerItem); err != nil {
		return nil, err
	}
	return &Batch{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		VarietyID:           varietyID,
		SupplierName:        supplier,
		Quantity:            quantity,
		PricePerItem:        pricePerItem,
		TotalAmount:         quantity.Mul(pricePerItem).Round(shared.AmountScale),
		SupplyDate:          shared.DateOnly(supplyDate),
		QuantityUsed:        decimal.Zero,
		QuantityRemaining:   quantity,
		QuantityReturned:    decimal.Zero,
	}, nil
}

// NewAutoBatch creates the placeholder batch sized exactly to a sale that found no stock
func NewAutoBatch(tenantID, varietyID uuid.UUID, quantity, costPerUnit decimal.Decimal, saleDate time.Time) (*Batch, error) {
	b, err := NewBatch(tenantID, varietyID, AutoSupplierName, quantity, costPerUnit, saleDate)
	if err != nil {
		return nil, err
	}
	b.AutoCreated = true
	return b, nil
}

// checkQuantity rejects non-positive quantities and ones finer than the stored scale
func checkQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity must be positive")
	}
	return shared.CheckScale("Quantity", q)
}

func checkPrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidPrice, "Price per item cannot be negative")
	}
	return shared.CheckScale("Price per item", p)
}

// Consume moves q from remaining to used
func (b *Batch) Consume(q decimal.Decimal) error {
	if err := checkQuantity(q); err != nil {
		return err
	}
	if b.QuantityRemaining.LessThan(q) {
		return shared.Errorf(shared.CodeInsufficientStock,
			"Batch from %s has %s remaining, requested %s", b.SupplierName, b.QuantityRemaining, q)
	}
	b.QuantityUsed = b.QuantityUsed.Add(q)
	b.QuantityRemaining = b.QuantityRemaining.Sub(q)
	b.Touch()
	return nil
}

// Release moves q from used back to remaining
func (b *Batch) Release(q decimal.Decimal) error {
	if err := checkQuantity(q); err != nil {
		return err
	}
	if b.QuantityUsed.LessThan(q) {
		return shared.Errorf(shared.CodeInvariantViolation,
			"Cannot release %s from batch with %s used", q, b.QuantityUsed)
	}
	b.QuantityUsed = b.QuantityUsed.Sub(q)
	b.QuantityRemaining = b.QuantityRemaining.Add(q)
	b.Touch()
	return nil
}

// ReturnToSupplier moves q from remaining to returned
func (b *Batch) ReturnToSupplier(q decimal.Decimal) error {
	if err := checkQuantity(q); err != nil {
		return err
	}
	if b.QuantityRemaining.LessThan(q) {
		return shared.Errorf(shared.CodeInsufficientStock,
			"Batch from %s has %s remaining, cannot return %s", b.SupplierName, b.QuantityRemaining, q)
	}
	b.QuantityReturned = b.QuantityReturned.Add(q)
	b.QuantityRemaining = b.QuantityRemaining.Sub(q)
	b.Touch()
	return nil
}

// UndoReturn moves q from returned back to remaining
func (b *Batch) UndoReturn(q decimal.Decimal) error {
	if err := checkQuantity(q); err != nil {
		return err
	}
	if b.QuantityReturned.LessThan(q) {
		return shared.Errorf(shared.CodeInvariantViolation,
			"Cannot undo return of %s from batch with %s returned", q, b.QuantityReturned)
	}
	b.QuantityReturned = b.QuantityReturned.Sub(q)
	b.QuantityRemaining = b.QuantityRemaining.Add(q)
	b.Touch()
	return nil
}

// Reprice sets a new per-unit cost and recomputes the total
func (b *Batch) Reprice(pricePerItem decimal.Decimal) error {
	if err := checkPrice(pricePerItem); err != nil {
		return err
	}
	b.PricePerItem = pricePerItem
	b.TotalAmount = b.Quantity.Mul(pricePerItem).Round(shared.AmountScale)
	b.Touch()
	return nil
}

// IsUntouched reports whether nothing has been sold or returned from the batch
func (b *Batch) IsUntouched() bool {
	return b.QuantityUsed.IsZero() && b.QuantityReturned.IsZero()
}

// CheckConservation verifies the batch counters add up
func (b *Batch) CheckConservation() error {
	if b.QuantityUsed.IsNegative() || b.QuantityRemaining.IsNegative() || b.QuantityReturned.IsNegative() {
		return shared.Errorf(shared.CodeInvariantViolation, "Batch %s has a negative counter", b.ID)
	}
	sum := b.QuantityUsed.Add(b.QuantityRemaining).Add(b.QuantityReturned)
	if !sum.Equal(b.Quantity) {
		return shared.Errorf(shared.CodeInvariantViolation,
			"Batch %s counters sum to %s, quantity is %s", b.ID, sum, b.Quantity)
	}
	return nil
}
