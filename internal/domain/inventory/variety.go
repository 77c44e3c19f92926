package inventory

import (
	"strings"
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Variety is a product type and the authoritative stock counter for it
type Variety struct {
	shared.BaseEntity
	TenantID         uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_variety_tenant_name,priority:1"`
	Name             string           `gorm:"type:varchar(100);not null"`
	NameKey          string           `gorm:"type:varchar(100);not null;uniqueIndex:idx_variety_tenant_name,priority:2"`
	Unit             MeasurementUnit  `gorm:"column:measurement_unit;type:varchar(20);not null;default:'pieces'"`
	StandardLength   *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Description      string           `gorm:"type:text"`
	DefaultCostPrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CurrentStock     decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	MinStockLevel    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	LastMovementSeq  int64            `gorm:"not null;default:0"`
	Version          int              `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (Variety) TableName() string {
	return "cloth_varieties"
}

// NameKey folds a variety name for case-insensitive lookup
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// NewVariety creates a variety with zero stock
func NewVariety(tenantID uuid.UUID, name string, unit MeasurementUnit) (*Variety, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Variety name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Variety name cannot exceed 100 characters")
	}
	if !unit.IsValid() {
		return nil, shared.Errorf(shared.CodeValidation, "Unknown measurement unit %q", string(unit))
	}
	return &Variety{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     tenantID,
		Name:         name,
		NameKey:      NameKey(name),
		Unit:         unit,
		CurrentStock: decimal.Zero,
		Version:      1,
	}, nil
}

// Rename changes the display name and lookup key
func (v *Variety) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeValidation, "Variety name cannot be empty")
	}
	v.Name = name
	v.NameKey = NameKey(name)
	return nil
}

// SetMinStockLevel sets or clears the low-stock threshold
func (v *Variety) SetMinStockLevel(level *decimal.Decimal) error {
	if level != nil && level.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Minimum stock level cannot be negative")
	}
	if level != nil {
		if err := shared.CheckScale("Minimum stock level", *level); err != nil {
			return err
		}
	}
	v.MinStockLevel = level
	return nil
}

// SetDefaultCostPrice sets or clears the default per-unit cost
func (v *Variety) SetDefaultCostPrice(price *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidPrice, "Default cost price cannot be negative")
	}
	if price != nil {
		if err := shared.CheckScale("Default cost price", *price); err != nil {
			return err
		}
	}
	v.DefaultCostPrice = price
	return nil
}

// IsLowStock reports whether stock is at or below the configured minimum
func (v *Variety) IsLowStock() bool {
	return v.MinStockLevel != nil && v.CurrentStock.LessThanOrEqual(*v.MinStockLevel)
}

// Apply changes CurrentStock by delta and returns the movement describing it.
// Stock never goes below zero; such a delta fails with INSUFFICIENT_STOCK and leaves v untouched.
func (v *Variety) Apply(t MovementType, delta decimal.Decimal, ref Reference, date time.Time, notes string) (*Movement, error) {
	if err := t.CheckDelta(delta); err != nil {
		return nil, err
	}
	if err := shared.CheckScale("Quantity", delta); err != nil {
		return nil, err
	}
	next := v.CurrentStock.Add(delta)
	if next.IsNegative() {
		return nil, shared.Errorf(shared.CodeInsufficientStock,
			"Insufficient stock for %s: available %s, requested %s", v.Name, v.CurrentStock, delta.Neg())
	}
	v.CurrentStock = next
	v.LastMovementSeq++
	v.Touch()

	m := &Movement{
		ID:            uuid.New(),
		TenantID:      v.TenantID,
		VarietyID:     v.ID,
		Sequence:      v.LastMovementSeq,
		Type:          t,
		Quantity:      delta,
		ReferenceType: ref.Type,
		Notes:         notes,
		MovementDate:  shared.DateOnly(date),
		StockAfter:    next,
		CreatedAt:     time.Now().UTC(),
	}
	if ref.ID != uuid.Nil {
		id := ref.ID
		m.ReferenceID = &id
	}
	return m, nil
}
