package inventory

import (
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement is one immutable entry of the stock audit log.
// Sequence is assigned from the owning variety and orders replay.
type Movement struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	VarietyID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_movement_variety_seq,priority:1"`
	Sequence      int64           `gorm:"not null;uniqueIndex:idx_movement_variety_seq,priority:2"`
	Type          MovementType    `gorm:"type:varchar(40);not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceID   *uuid.UUID      `gorm:"type:uuid;index"`
	ReferenceType ReferenceType   `gorm:"type:varchar(40)"`
	Notes         string          `gorm:"type:text"`
	MovementDate  time.Time       `gorm:"not null;index"`
	StockAfter    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "inventory_movements"
}

// Reference points a movement at the record that caused it
type Reference struct {
	ID   uuid.UUID
	Type ReferenceType
}

// NoReference is used for movements that stand alone
var NoReference = Reference{}

// Ref builds a Reference
func Ref(t ReferenceType, id uuid.UUID) Reference {
	return Reference{ID: id, Type: t}
}

// ReplayResult describes a movement log checked against a variety
type ReplayResult struct {
	Stock      decimal.Decimal
	Count      int
	Consistent bool
	// FirstBreak is the sequence of the first movement whose StockAfter disagrees with the running sum
	FirstBreak int64
}

// Replay sums movements in sequence order starting from zero.
// The input must already be sorted by Sequence ascending.
func Replay(movements []Movement) ReplayResult {
	res := ReplayResult{Stock: decimal.Zero, Consistent: true}
	var last int64
	for _, m := range movements {
		res.Stock = res.Stock.Add(m.Quantity)
		res.Count++
		if res.Consistent && (m.Sequence <= last || !m.StockAfter.Equal(res.Stock)) {
			res.Consistent = false
			res.FirstBreak = m.Sequence
		}
		last = m.Sequence
	}
	return res
}

// Verify checks the replay against the variety's recorded stock
func (r ReplayResult) Verify(v *Variety) error {
	if !r.Consistent {
		return shared.Errorf(shared.CodeInvariantViolation, "Movement log breaks at sequence %d", r.FirstBreak)
	}
	if !r.Stock.Equal(v.CurrentStock) {
		return shared.Errorf(shared.CodeInvariantViolation,
			"Movement replay gives %s but variety %s holds %s", r.Stock, v.Name, v.CurrentStock)
	}
	return nil
}
