package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AdjustStockInput is a manual correction of a variety's stock. Quantity is signed.
type AdjustStockInput struct {
	VarietyID uuid.UUID
	Quantity  decimal.Decimal
	Notes     string
	Date      time.Time
}

// StockStatus is the stock position of one variety
type StockStatus struct {
	VarietyID       uuid.UUID        `json:"variety_id"`
	VarietyName     string           `json:"variety_name"`
	MeasurementUnit string           `json:"measurement_unit"`
	CurrentStock    decimal.Decimal  `json:"current_stock"`
	MinStockLevel   *decimal.Decimal `json:"min_stock_level,omitempty"`
	LowStock        bool             `json:"is_low_stock"`
	BatchStock      decimal.Decimal  `json:"batch_stock"`
	ActiveBatches   int              `json:"active_batches"`
}

// ReconcileReport describes how far one variety's counters agree with each other
type ReconcileReport struct {
	VarietyID       uuid.UUID       `json:"variety_id"`
	VarietyName     string          `json:"variety_name"`
	CurrentStock    decimal.Decimal `json:"current_stock"`
	BatchRemaining  decimal.Decimal `json:"batch_remaining"`
	Drift           decimal.Decimal `json:"drift"`
	ReplayedStock   decimal.Decimal `json:"replayed_stock"`
	MovementCount   int             `json:"movement_count"`
	ReplayMatches   bool            `json:"replay_matches"`
	BatchViolations []string        `json:"batch_violations,omitempty"`
}

// Consistent reports whether every check passed
func (r ReconcileReport) Consistent() bool {
	return r.Drift.IsZero() && r.ReplayMatches && len(r.BatchViolations) == 0
}

// StockService handles manual adjustments and stock queries
type StockService struct {
	ledger *Ledger
	logger *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(lg *Ledger) *StockService {
	return &StockService{ledger: lg, logger: lg.logger}
}

// AdjustStock applies a signed correction to variety stock. Batches are not touched.
func (s *StockService) AdjustStock(ctx context.Context, tenantID uuid.UUID, in AdjustStockInput) (*VarietyResponse, error) {
	if in.Quantity.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Adjustment quantity cannot be zero")
	}
	if err := shared.CheckScale("Adjustment quantity", in.Quantity); err != nil {
		return nil, err
	}
	date := in.Date
	if date.IsZero() {
		date = shared.Today()
	}

	var out *inventory.Variety
	err := s.ledger.mutate(ctx, tenantID, func(m *mutation) error {
		v, err := m.lockVariety(ctx, in.VarietyID)
		if err != nil {
			return err
		}
		notes := strings.TrimSpace(in.Notes)
		if notes == "" {
			notes = "Manual adjustment"
		}
		if err := m.apply(ctx, v, inventory.MovementManualAdjustment, in.Quantity, inventory.Ref(inventory.ReferenceManual, uuid.Nil), date, notes); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Stock adjusted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("variety", out.Name),
		zap.String("quantity", in.Quantity.String()),
		zap.String("stock_after", out.CurrentStock.String()))
	resp := ToVarietyResponse(out)
	return &resp, nil
}

// ListMovements pages through the movement log of a variety, newest first
func (s *StockService) ListMovements(ctx context.Context, tenantID, varietyID uuid.UUID, filter shared.Filter) (shared.Paginated[MovementResponse], error) {
	if _, err := s.ledger.reads.VarietyRepo().FindByID(ctx, tenantID, varietyID); err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	rows, total, err := s.ledger.reads.MovementRepo().FindByVariety(ctx, tenantID, varietyID, filter)
	if err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	items := make([]MovementResponse, len(rows))
	for i := range rows {
		items[i] = ToMovementResponse(&rows[i])
	}
	f := filter.Normalize()
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// StockStatus returns the current stock of a variety with its low-stock flag
func (s *StockService) StockStatus(ctx context.Context, tenantID, varietyID uuid.UUID) (*StockStatus, error) {
	v, err := s.ledger.reads.VarietyRepo().FindByID(ctx, tenantID, varietyID)
	if err != nil {
		return nil, err
	}
	batches, err := s.ledger.reads.BatchRepo().FindByVariety(ctx, tenantID, varietyID)
	if err != nil {
		return nil, err
	}
	status := &StockStatus{
		VarietyID:       v.ID,
		VarietyName:     v.Name,
		MeasurementUnit: string(v.Unit),
		CurrentStock:    v.CurrentStock,
		MinStockLevel:   v.MinStockLevel,
		LowStock:        v.IsLowStock(),
		BatchStock:      decimal.Zero,
	}
	for _, b := range batches {
		if b.QuantityRemaining.IsPositive() {
			status.BatchStock = status.BatchStock.Add(b.QuantityRemaining)
			status.ActiveBatches++
		}
	}
	return status, nil
}

// ListLowStock returns every variety at or below its minimum level
func (s *StockService) ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]VarietyResponse, error) {
	rows, err := s.ledger.reads.VarietyRepo().FindLowStock(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]VarietyResponse, len(rows))
	for i := range rows {
		out[i] = ToVarietyResponse(&rows[i])
	}
	return out, nil
}

// Reconcile checks batch conservation, batch/variety agreement and the movement
// replay for one variety, or for all varieties when varietyID is nil
func (s *StockService) Reconcile(ctx context.Context, tenantID uuid.UUID, varietyID *uuid.UUID) ([]ReconcileReport, error) {
	var varieties []inventory.Variety
	if varietyID != nil {
		v, err := s.ledger.reads.VarietyRepo().FindByID(ctx, tenantID, *varietyID)
		if err != nil {
			return nil, err
		}
		varieties = []inventory.Variety{*v}
	} else {
		filter := inventory.VarietyFilter{Filter: shared.Filter{Page: 1, PageSize: 200}}
		for {
			page, total, err := s.ledger.reads.VarietyRepo().FindAll(ctx, tenantID, filter)
			if err != nil {
				return nil, err
			}
			varieties = append(varieties, page...)
			if len(page) == 0 || int64(len(varieties)) >= total {
				break
			}
			filter.Page++
		}
	}

	reports := make([]ReconcileReport, 0, len(varieties))
	for i := range varieties {
		r, err := s.reconcileOne(ctx, tenantID, &varieties[i])
		if err != nil {
			return nil, err
		}
		if !r.Consistent() {
			s.logger.Warn("Ledger out of balance",
				zap.String("tenant_id", tenantID.String()),
				zap.String("variety", r.VarietyName),
				zap.String("drift", r.Drift.String()),
				zap.Bool("replay_matches", r.ReplayMatches),
				zap.Int("batch_violations", len(r.BatchViolations)))
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (s *StockService) reconcileOne(ctx context.Context, tenantID uuid.UUID, v *inventory.Variety) (ReconcileReport, error) {
	batches, err := s.ledger.reads.BatchRepo().FindByVariety(ctx, tenantID, v.ID)
	if err != nil {
		return ReconcileReport{}, err
	}
	movements, err := s.ledger.reads.MovementRepo().FindAllByVariety(ctx, tenantID, v.ID)
	if err != nil {
		return ReconcileReport{}, err
	}

	r := ReconcileReport{
		VarietyID:      v.ID,
		VarietyName:    v.Name,
		CurrentStock:   v.CurrentStock,
		BatchRemaining: decimal.Zero,
	}
	for i := range batches {
		r.BatchRemaining = r.BatchRemaining.Add(batches[i].QuantityRemaining)
		if err := batches[i].CheckConservation(); err != nil {
			r.BatchViolations = append(r.BatchViolations, err.Error())
		}
	}
	r.Drift = v.CurrentStock.Sub(r.BatchRemaining)

	replay := inventory.Replay(movements)
	r.ReplayedStock = replay.Stock
	r.MovementCount = replay.Count
	r.ReplayMatches = replay.Verify(v) == nil
	return r, nil
}
