package persistence

import (
	"context"

	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementRepository implements MovementRepository using GORM.
// Movements are only ever inserted; there is no update or delete path.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append inserts a movement. A duplicate (variety, sequence) pair means a
// concurrent writer got there first.
func (r *GormMovementRepository) Append(ctx context.Context, m *inventory.Movement) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if shared.IsConflict(translate(err)) {
			return shared.Errorf(shared.CodeConcurrencyConflict,
				"Movement %d for variety %s was already written", m.Sequence, m.VarietyID)
		}
		return err
	}
	return nil
}

// FindByVariety pages a variety's movements, newest first
func (r *GormMovementRepository) FindByVariety(ctx context.Context, tenantID, varietyID uuid.UUID, filter shared.Filter) ([]inventory.Movement, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.Movement{}).
		Where("tenant_id = ? AND variety_id = ?", tenantID, varietyID)
	filter.OrderBy, filter.OrderDir = "sequence", "desc"
	return findPage[inventory.Movement](query, filter, movementSortFields, "sequence")
}

var movementSortFields = map[string]bool{"sequence": true}

// FindAllByVariety returns the complete log of a variety in sequence order
func (r *GormMovementRepository) FindAllByVariety(ctx context.Context, tenantID, varietyID uuid.UUID) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND variety_id = ?", tenantID, varietyID).
		Order("sequence ASC").
		Find(&movements).Error
	return movements, err
}

// Ensure GormMovementRepository implements MovementRepository
var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
