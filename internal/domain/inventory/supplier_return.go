package inventory

import (
	"strings"
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierReturn records stock sent back to a supplier out of one batch
type SupplierReturn struct {
	shared.TenantEntity
	VarietyID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID      *uuid.UUID      `gorm:"type:uuid;index"`
	SupplierName string          `gorm:"type:varchar(100);not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PricePerItem decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReturnDate   time.Time       `gorm:"not null;index"`
	Reason       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierReturn) TableName() string {
	return "supplier_returns"
}

// NewSupplierReturn creates a return drawn from the given batch
func NewSupplierReturn(batch *Batch, quantity, pricePerItem decimal.Decimal, reason string, returnDate time.Time) (*SupplierReturn, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	if err := checkPrice(pricePerItem); err != nil {
		return nil, err
	}
	batchID := batch.ID
	return &SupplierReturn{
		TenantEntity: shared.NewTenantEntity(batch.TenantID),
		VarietyID:    batch.VarietyID,
		BatchID:      &batchID,
		SupplierName: batch.SupplierName,
		Quantity:     quantity,
		PricePerItem: pricePerItem,
		TotalAmount:  quantity.Mul(pricePerItem).Round(shared.AmountScale),
		ReturnDate:   shared.DateOnly(returnDate),
		Reason:       strings.TrimSpace(reason),
	}, nil
}
