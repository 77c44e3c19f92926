package consignment

import (
	"context"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockFilter narrows consignment listings
type StockFilter struct {
	shared.Filter
	ShopkeeperName string
	VarietyID      *uuid.UUID
	Outstanding    bool
}

// ShopkeeperStockRepository defines persistence for consignments and their event rows
type ShopkeeperStockRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ShopkeeperStock, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ShopkeeperStock, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter StockFilter) ([]ShopkeeperStock, int64, error)
	// FindByShopkeeper returns every record for a shopkeeper (case-insensitive), oldest first
	FindByShopkeeper(ctx context.Context, tenantID uuid.UUID, name string) ([]ShopkeeperStock, error)
	// FindAllUnpaged returns every record of the tenant
	FindAllUnpaged(ctx context.Context, tenantID uuid.UUID) ([]ShopkeeperStock, error)
	Create(ctx context.Context, s *ShopkeeperStock) error
	SaveWithLock(ctx context.Context, s *ShopkeeperStock) error
	// Delete removes the record with its sale and return rows
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	AddSale(ctx context.Context, sale *ShopkeeperSale) error
	AddReturn(ctx context.Context, ret *ShopkeeperReturn) error
	FindSales(ctx context.Context, tenantID, stockID uuid.UUID) ([]ShopkeeperSale, error)
	FindReturns(ctx context.Context, tenantID, stockID uuid.UUID) ([]ShopkeeperReturn, error)
}
