package ledger

import (
	"context"
	"strings"

	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateVarietyInput holds the fields of a new variety
type CreateVarietyInput struct {
	Name             string
	Unit             string
	StandardLength   *decimal.Decimal
	Description      string
	DefaultCostPrice *decimal.Decimal
	MinStockLevel    *decimal.Decimal
}

// UpdateVarietyInput holds optional changes to a variety. Nil fields are left alone.
type UpdateVarietyInput struct {
	Name             *string
	Unit             *string
	StandardLength   *decimal.Decimal
	Description      *string
	DefaultCostPrice *decimal.Decimal
	MinStockLevel    *decimal.Decimal
	ClearMinStock    bool
}

// VarietyService manages the variety catalogue
type VarietyService struct {
	ledger *Ledger
	logger *zap.Logger
}

// NewVarietyService creates a new VarietyService
func NewVarietyService(lg *Ledger) *VarietyService {
	return &VarietyService{ledger: lg, logger: lg.logger}
}

// Create adds a variety with zero stock. Names are unique per tenant, ignoring case.
func (s *VarietyService) Create(ctx context.Context, tenantID uuid.UUID, in CreateVarietyInput) (*VarietyResponse, error) {
	unit, err := inventory.ParseMeasurementUnit(in.Unit)
	if err != nil {
		return nil, err
	}
	v, err := inventory.NewVariety(tenantID, in.Name, unit)
	if err != nil {
		return nil, err
	}
	if in.StandardLength != nil {
		if !in.StandardLength.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Standard length must be positive")
		}
		if err := shared.CheckScale("Standard length", *in.StandardLength); err != nil {
			return nil, err
		}
	}
	v.StandardLength = in.StandardLength
	v.Description = strings.TrimSpace(in.Description)
	if err := v.SetDefaultCostPrice(in.DefaultCostPrice); err != nil {
		return nil, err
	}
	if err := v.SetMinStockLevel(in.MinStockLevel); err != nil {
		return nil, err
	}

	err = s.ledger.scope.Execute(ctx, func(repos Repositories) error {
		if _, err := repos.VarietyRepo().FindByNameForUpdate(ctx, tenantID, v.Name); err == nil {
			return shared.Errorf(shared.CodeAlreadyExists, "Variety %q already exists", v.Name)
		} else if !shared.IsNotFound(err) {
			return err
		}
		return repos.VarietyRepo().Create(ctx, v)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Variety created", zap.String("tenant_id", tenantID.String()), zap.String("variety", v.Name))
	resp := ToVarietyResponse(v)
	return &resp, nil
}

// Get returns one variety
func (s *VarietyService) Get(ctx context.Context, tenantID, id uuid.UUID) (*VarietyResponse, error) {
	v, err := s.ledger.reads.VarietyRepo().FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToVarietyResponse(v)
	return &resp, nil
}

// List pages through varieties ordered by name
func (s *VarietyService) List(ctx context.Context, tenantID uuid.UUID, filter inventory.VarietyFilter) (shared.Paginated[VarietyResponse], error) {
	varieties, total, err := s.ledger.reads.VarietyRepo().FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[VarietyResponse]{}, err
	}
	items := make([]VarietyResponse, len(varieties))
	for i := range varieties {
		items[i] = ToVarietyResponse(&varieties[i])
	}
	f := filter.Filter.Normalize()
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// Update changes descriptive fields. Stock is only changed through movements.
func (s *VarietyService) Update(ctx context.Context, tenantID, id uuid.UUID, in UpdateVarietyInput) (*VarietyResponse, error) {
	var out *inventory.Variety
	err := s.ledger.scope.Execute(ctx, func(repos Repositories) error {
		v, err := repos.VarietyRepo().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if in.Name != nil && inventory.NameKey(*in.Name) != v.NameKey {
			if _, err := repos.VarietyRepo().FindByNameForUpdate(ctx, tenantID, *in.Name); err == nil {
				return shared.Errorf(shared.CodeAlreadyExists, "Variety %q already exists", strings.TrimSpace(*in.Name))
			} else if !shared.IsNotFound(err) {
				return err
			}
		}
		if in.Name != nil {
			if err := v.Rename(*in.Name); err != nil {
				return err
			}
		}
		if in.Unit != nil {
			unit, err := inventory.ParseMeasurementUnit(*in.Unit)
			if err != nil {
				return err
			}
			v.Unit = unit
		}
		if in.StandardLength != nil {
			if !in.StandardLength.IsPositive() {
				return shared.NewDomainError(shared.CodeInvalidQuantity, "Standard length must be positive")
			}
			if err := shared.CheckScale("Standard length", *in.StandardLength); err != nil {
				return err
			}
			v.StandardLength = in.StandardLength
		}
		if in.Description != nil {
			v.Description = strings.TrimSpace(*in.Description)
		}
		if in.DefaultCostPrice != nil {
			if err := v.SetDefaultCostPrice(in.DefaultCostPrice); err != nil {
				return err
			}
		}
		if in.ClearMinStock {
			_ = v.SetMinStockLevel(nil)
		} else if in.MinStockLevel != nil {
			if err := v.SetMinStockLevel(in.MinStockLevel); err != nil {
				return err
			}
		}
		v.Touch()
		out = v
		return repos.VarietyRepo().SaveWithLock(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	resp := ToVarietyResponse(out)
	return &resp, nil
}

// Delete removes a variety with all of its batches, sales, consignments and movements
func (s *VarietyService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	err := s.ledger.mutate(ctx, tenantID, func(m *mutation) error {
		v, err := m.VarietyRepo().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		s.logger.Warn("Deleting variety with its history",
			zap.String("tenant_id", tenantID.String()),
			zap.String("variety", v.Name),
			zap.String("current_stock", v.CurrentStock.String()))
		return m.VarietyRepo().Delete(ctx, tenantID, id)
	})
	return err
}

// resolveVariety finds the variety by ID, else by name, creating it when only
// a new name was given. The result is locked and tracked by m.
func (lg *Ledger) resolveVariety(ctx context.Context, m *mutation, id *uuid.UUID, name string, defaultCost *decimal.Decimal) (*inventory.Variety, error) {
	if id != nil && *id != uuid.Nil {
		return m.lockVariety(ctx, *id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Either variety_id or variety_name is required")
	}

	v, err := m.VarietyRepo().FindByNameForUpdate(ctx, m.tenantID, name)
	if err == nil {
		return m.track(v), nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	v, err = inventory.NewVariety(m.tenantID, name, inventory.UnitPieces)
	if err != nil {
		return nil, err
	}
	if defaultCost != nil {
		if err := v.SetDefaultCostPrice(defaultCost); err != nil {
			return nil, err
		}
	}
	if err := m.VarietyRepo().Create(ctx, v); err != nil {
		return nil, err
	}
	lg.logger.Info("Variety auto-created",
		zap.String("tenant_id", m.tenantID.String()),
		zap.String("variety", v.Name))
	return m.track(v), nil
}
