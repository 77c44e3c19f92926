package shared

import (
	"github.com/google/uuid"
)

// TenantAggregateRoot is a tenant-scoped entity with a version column.
// The version backs optimistic locking on save.
type TenantAggregateRoot struct {
	TenantEntity
	Version int `gorm:"not null;default:1"`
}

// NewTenantAggregateRoot creates a new tenant-scoped aggregate root at version 1
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		TenantEntity: NewTenantEntity(tenantID),
		Version:      1,
	}
}
