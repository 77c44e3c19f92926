package inventory

import (
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MeasurementUnit is the unit a variety is counted in
type MeasurementUnit string

const (
	UnitPieces MeasurementUnit = "pieces"
	UnitMeters MeasurementUnit = "meters"
	UnitYards  MeasurementUnit = "yards"
)

// String returns the string representation of MeasurementUnit
func (u MeasurementUnit) String() string {
	return string(u)
}

// IsValid returns true if the unit is one of the known units
func (u MeasurementUnit) IsValid() bool {
	switch u {
	case UnitPieces, UnitMeters, UnitYards:
		return true
	}
	return false
}

// ParseMeasurementUnit parses a unit, defaulting to pieces when empty
func ParseMeasurementUnit(s string) (MeasurementUnit, error) {
	if s == "" {
		return UnitPieces, nil
	}
	u := MeasurementUnit(s)
	if !u.IsValid() {
		return "", shared.Errorf(shared.CodeValidation, "Unknown measurement unit %q", s)
	}
	return u, nil
}

// MovementType is the kind of stock-affecting event recorded in the movement log
type MovementType string

const (
	MovementSupply                  MovementType = "supply"
	MovementAutoSupply              MovementType = "auto_supply"
	MovementSale                    MovementType = "sale"
	MovementReturn                  MovementType = "return"
	MovementManualAdjustment        MovementType = "manual_adjustment"
	MovementSaleAdjustment          MovementType = "sale_adjustment"
	MovementSaleReversal            MovementType = "sale_reversal"
	MovementSupplyReversal          MovementType = "supply_reversal"
	MovementReturnReversal          MovementType = "return_reversal"
	MovementShopkeeperIssue         MovementType = "shopkeeper_issue"
	MovementShopkeeperReturn        MovementType = "shopkeeper_return"
	MovementShopkeeperIssueReversal MovementType = "shopkeeper_issue_reversal"
)

// AllMovementTypes returns every movement type
func AllMovementTypes() []MovementType {
	return []MovementType{
		MovementSupply,
		MovementAutoSupply,
		MovementSale,
		MovementReturn,
		MovementManualAdjustment,
		MovementSaleAdjustment,
		MovementSaleReversal,
		MovementSupplyReversal,
		MovementReturnReversal,
		MovementShopkeeperIssue,
		MovementShopkeeperReturn,
		MovementShopkeeperIssueReversal,
	}
}

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is known
func (t MovementType) IsValid() bool {
	_, err := t.Direction()
	return err == nil
}

// Direction describes which sign a movement's delta may take
type Direction int

const (
	DirectionIn Direction = iota + 1
	DirectionOut
	DirectionEither
)

// Direction returns the sign rule for the movement type
func (t MovementType) Direction() (Direction, error) {
	switch t {
	case MovementSupply, MovementAutoSupply, MovementSaleReversal, MovementReturnReversal,
		MovementShopkeeperReturn, MovementShopkeeperIssueReversal:
		return DirectionIn, nil
	case MovementSale, MovementReturn, MovementSupplyReversal, MovementShopkeeperIssue:
		return DirectionOut, nil
	case MovementManualAdjustment, MovementSaleAdjustment:
		return DirectionEither, nil
	default:
		return 0, shared.Errorf(shared.CodeInvariantViolation, "Unknown movement type %q", string(t))
	}
}

// CheckDelta verifies that delta is non-zero and carries the sign the type allows
func (t MovementType) CheckDelta(delta decimal.Decimal) error {
	dir, err := t.Direction()
	if err != nil {
		return err
	}
	if delta.IsZero() {
		return shared.Errorf(shared.CodeInvariantViolation, "Movement %s has zero quantity", t)
	}
	switch dir {
	case DirectionIn:
		if delta.IsNegative() {
			return shared.Errorf(shared.CodeInvariantViolation, "Movement %s must increase stock", t)
		}
	case DirectionOut:
		if delta.IsPositive() {
			return shared.Errorf(shared.CodeInvariantViolation, "Movement %s must decrease stock", t)
		}
	case DirectionEither:
	}
	return nil
}

// ReferenceType names the business record a movement originates from
type ReferenceType string

const (
	ReferenceNone              ReferenceType = ""
	ReferenceSale              ReferenceType = "sale"
	ReferenceSaleDeleted       ReferenceType = "sale_deleted"
	ReferenceSupplierInventory ReferenceType = "supplier_inventory"
	ReferenceInventoryDeleted  ReferenceType = "inventory_deleted"
	ReferenceSupplierReturn    ReferenceType = "supplier_return"
	ReferenceReturnDeleted     ReferenceType = "return_deleted"
	ReferenceShopkeeperStock   ReferenceType = "shopkeeper_stock"
	ReferenceShopkeeperReturn  ReferenceType = "shopkeeper_return"
	ReferenceShopkeeperDeleted ReferenceType = "shopkeeper_deleted"
	ReferenceManual            ReferenceType = "manual"
)

// IsValid returns true if the reference type is known
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceNone, ReferenceSale, ReferenceSaleDeleted, ReferenceSupplierInventory,
		ReferenceInventoryDeleted, ReferenceSupplierReturn, ReferenceReturnDeleted,
		ReferenceShopkeeperStock, ReferenceShopkeeperReturn, ReferenceShopkeeperDeleted, ReferenceManual:
		return true
	}
	return false
}
