package ledger

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordSupplyInput describes stock received from a supplier
type RecordSupplyInput struct {
	VarietyID    *uuid.UUID
	VarietyName  string
	SupplierName string
	Quantity     decimal.Decimal
	PricePerItem decimal.Decimal
	SupplyDate   time.Time
}

// RecordReturnInput describes stock sent back to a supplier
type RecordReturnInput struct {
	VarietyID    uuid.UUID
	SupplierName string
	Quantity     decimal.Decimal
	PricePerItem decimal.Decimal
	Reason       string
	ReturnDate   time.Time
}

// SupplierDaySummary totals supply and returns of one day
type SupplierDaySummary struct {
	Date               time.Time       `json:"date"`
	TotalSupplyAmount  decimal.Decimal `json:"total_supply_amount"`
	TotalSupplyCount   int             `json:"total_supply_count"`
	TotalReturnAmount  decimal.Decimal `json:"total_return_amount"`
	TotalReturnCount   int             `json:"total_return_count"`
	NetSupplyAmount    decimal.Decimal `json:"net_supply_amount"`
	TotalSupplyUnits   decimal.Decimal `json:"total_supply_quantity"`
	TotalReturnedUnits decimal.Decimal `json:"total_return_quantity"`
}

// SupplierTotals is one supplier's share of a day
type SupplierTotals struct {
	SupplierName   string          `json:"supplier_name"`
	SupplyAmount   decimal.Decimal `json:"supply_amount"`
	SupplyQuantity decimal.Decimal `json:"supply_quantity"`
	ReturnAmount   decimal.Decimal `json:"return_amount"`
	ReturnQuantity decimal.Decimal `json:"return_quantity"`
	NetAmount      decimal.Decimal `json:"net_amount"`
}

// SupplyService books supplier receipts and returns
type SupplyService struct {
	ledger *Ledger
	logger *zap.Logger
}

// NewSupplyService creates a new SupplyService
func NewSupplyService(lg *Ledger) *SupplyService {
	return &SupplyService{ledger: lg, logger: lg.logger}
}

// RecordSupply creates a batch and adds its quantity to the variety stock
func (s *SupplyService) RecordSupply(ctx context.Context, tenantID uuid.UUID, in RecordSupplyInput) (*BatchResponse, error) {
	var out *inventory.Batch
	err := s.ledger.mutate(ctx, tenantID, func(m *mutation) error {
		price := in.PricePerItem
		v, err := s.ledger.resolveVariety(ctx, m, in.VarietyID, in.VarietyName, &price)
		if err != nil {
			return err
		}
		batch, err := inventory.NewBatch(tenantID, v.ID, in.SupplierName, in.Quantity, in.PricePerItem, eventDate(in.SupplyDate))
		if err != nil {
			return err
		}
		if err := m.BatchRepo().Create(ctx, batch); err != nil {
			return err
		}
		ref := inventory.Ref(inventory.ReferenceSupplierInventory, batch.ID)
		notes := "Supply from " + batch.SupplierName
		if err := m.apply(ctx, v, inventory.MovementSupply, batch.Quantity, ref, batch.SupplyDate, notes); err != nil {
			return err
		}
		out = batch
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToBatchResponse(out)
	return &resp, nil
}

// DeleteBatch removes a batch nothing has been drawn from and takes its quantity off the shelf.
// The variety row is locked before the batch row, as in every other ledger write.
func (s *SupplyService) DeleteBatch(ctx context.Context, tenantID, batchID uuid.UUID) error {
	return s.ledger.mutate(ctx, tenantID, func(m *mutation) error {
		peek, err := m.BatchRepo().FindByID(ctx, tenantID, batchID)
		if err != nil {
			return err
		}
		v, err := m.lockVariety(ctx, peek.VarietyID)
		if err != nil {
			return err
		}
		batch, err := m.BatchRepo().FindByIDForUpdate(ctx, tenantID, batchID)
		if err != nil {
			return err
		}
		if !batch.IsUntouched() {
			return shared.NewDomainError(shared.CodeBatchInUse,
				"Cannot delete a batch that has been partially used or returned")
		}
		if v.CurrentStock.LessThan(batch.Quantity) {
			return shared.Errorf(shared.CodeInvariantViolation,
				"Deleting batch would make stock of %s negative: stock %s, batch %s", v.Name, v.CurrentStock, batch.Quantity)
		}
		ref := inventory.Ref(inventory.ReferenceInventoryDeleted, batch.ID)
		if err := m.apply(ctx, v, inventory.MovementSupplyReversal, batch.Quantity.Neg(), ref, shared.Today(), "Supply deleted"); err != nil {
			return err
		}
		return m.BatchRepo().Delete(ctx, tenantID, batch.ID)
	})
}

// RecordReturn sends stock back to a supplier out of that supplier's oldest batch with stock
func (s *SupplyService) RecordReturn(ctx context.Context, tenantID uuid.UUID, in RecordReturnInput) (*SupplierReturnResponse, error) {
	if !in.Quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity must be positive")
	}
	if err := shared.CheckScale("Quantity", in.Quantity); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.SupplierName) == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Supplier name cannot be empty")
	}

	var out *inventory.SupplierReturn
	err := s.ledger.mutate(ctx, tenantID, func(m *mutation) error {
		v, err := m.lockVariety(ctx, in.VarietyID)
		if err != nil {
			return err
		}
		batch, err := m.BatchRepo().FindOldestFromSupplierForUpdate(ctx, tenantID, v.ID, in.SupplierName)
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.Errorf(shared.CodeInsufficientStock,
					"No stock of %s from supplier %s to return", v.Name, strings.TrimSpace(in.SupplierName))
			}
			return err
		}
		if err := batch.ReturnToSupplier(in.Quantity); err != nil {
			return err
		}
		ret, err := inventory.NewSupplierReturn(batch, in.Quantity, in.PricePerItem, in.Reason, eventDate(in.ReturnDate))
		if err != nil {
			return err
		}
		if err := m.saveBatch(ctx, batch); err != nil {
			return err
		}
		if err := m.ReturnRepo().Create(ctx, ret); err != nil {
			return err
		}
		ref := inventory.Ref(inventory.ReferenceSupplierReturn, ret.ID)
		notes := "Returned to " + ret.SupplierName
		if ret.Reason != "" {
			notes += ": " + ret.Reason
		}
		if err := m.apply(ctx, v, inventory.MovementReturn, in.Quantity.Neg(), ref, ret.ReturnDate, notes); err != nil {
			return err
		}
		out = ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToSupplierReturnResponse(out)
	return &resp, nil
}

// DeleteReturn undoes a supplier return, putting the quantity back into its batch
func (s *SupplyService) DeleteReturn(ctx context.Context, tenantID, returnID uuid.UUID) error {
	return s.ledger.mutate(ctx, tenantID, func(m *mutation) error {
		ret, err := m.ReturnRepo().FindByID(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		v, err := m.lockVariety(ctx, ret.VarietyID)
		if err != nil {
			return err
		}
		batch, err := m.lockBatch(ctx, ret.BatchID)
		if err != nil {
			return err
		}
		if batch != nil {
			if err := batch.UndoReturn(ret.Quantity); err != nil {
				return err
			}
			if err := m.saveBatch(ctx, batch); err != nil {
				return err
			}
			ref := inventory.Ref(inventory.ReferenceReturnDeleted, ret.ID)
			if err := m.apply(ctx, v, inventory.MovementReturnReversal, ret.Quantity, ref, shared.Today(), "Supplier return deleted"); err != nil {
				return err
			}
		} else {
			s.logger.Warn("Supplier return has no batch, stock left unchanged",
				zap.String("tenant_id", tenantID.String()),
				zap.String("return_id", ret.ID.String()))
		}
		return m.ReturnRepo().Delete(ctx, tenantID, ret.ID)
	})
}

// ListBatches pages through supplier batches
func (s *SupplyService) ListBatches(ctx context.Context, tenantID uuid.UUID, filter inventory.BatchFilter) (shared.Paginated[BatchResponse], error) {
	rows, total, err := s.ledger.reads.BatchRepo().FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[BatchResponse]{}, err
	}
	f := filter.Filter.Normalize()
	return shared.NewPaginated(ToBatchResponses(rows), total, f.Page, f.PageSize), nil
}

// ListBatchesWithStock returns the batches of a variety that still hold stock, in the order sales draw from them
func (s *SupplyService) ListBatchesWithStock(ctx context.Context, tenantID, varietyID uuid.UUID) ([]BatchResponse, error) {
	if _, err := s.ledger.reads.VarietyRepo().FindByID(ctx, tenantID, varietyID); err != nil {
		return nil, err
	}
	rows, err := s.ledger.reads.BatchRepo().FindByVariety(ctx, tenantID, varietyID)
	if err != nil {
		return nil, err
	}
	withStock := rows[:0]
	for _, b := range rows {
		if b.QuantityRemaining.IsPositive() {
			withStock = append(withStock, b)
		}
	}
	inventory.SortFIFO(withStock)
	return ToBatchResponses(withStock), nil
}

// ListReturns pages through supplier returns
func (s *SupplyService) ListReturns(ctx context.Context, tenantID uuid.UUID, filter inventory.ReturnFilter) (shared.Paginated[SupplierReturnResponse], error) {
	rows, total, err := s.ledger.reads.ReturnRepo().FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[SupplierReturnResponse]{}, err
	}
	items := make([]SupplierReturnResponse, len(rows))
	for i := range rows {
		items[i] = ToSupplierReturnResponse(&rows[i])
	}
	f := filter.Filter.Normalize()
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// DailySupplierSummary totals supply and returns for one day
func (s *SupplyService) DailySupplierSummary(ctx context.Context, tenantID uuid.UUID, date time.Time) (*SupplierDaySummary, error) {
	day := shared.DayRange(date)
	batches, err := s.ledger.reads.BatchRepo().FindByDates(ctx, tenantID, day)
	if err != nil {
		return nil, err
	}
	returns, err := s.ledger.reads.ReturnRepo().FindByDates(ctx, tenantID, day)
	if err != nil {
		return nil, err
	}
	summary := summarizeSupply(batches, returns)
	summary.Date = shared.DateOnly(date)
	return &summary, nil
}

func summarizeSupply(batches []inventory.Batch, returns []inventory.SupplierReturn) SupplierDaySummary {
	out := SupplierDaySummary{
		TotalSupplyAmount:  decimal.Zero,
		TotalReturnAmount:  decimal.Zero,
		TotalSupplyUnits:   decimal.Zero,
		TotalReturnedUnits: decimal.Zero,
	}
	for _, b := range batches {
		out.TotalSupplyAmount = out.TotalSupplyAmount.Add(b.TotalAmount)
		out.TotalSupplyUnits = out.TotalSupplyUnits.Add(b.Quantity)
		out.TotalSupplyCount++
	}
	for _, r := range returns {
		out.TotalReturnAmount = out.TotalReturnAmount.Add(r.TotalAmount)
		out.TotalReturnedUnits = out.TotalReturnedUnits.Add(r.Quantity)
		out.TotalReturnCount++
	}
	out.NetSupplyAmount = out.TotalSupplyAmount.Sub(out.TotalReturnAmount)
	return out
}

// SupplierWiseSummary splits one day's supply and returns by supplier, ordered by name
func (s *SupplyService) SupplierWiseSummary(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]SupplierTotals, error) {
	day := shared.DayRange(date)
	batches, err := s.ledger.reads.BatchRepo().FindByDates(ctx, tenantID, day)
	if err != nil {
		return nil, err
	}
	returns, err := s.ledger.reads.ReturnRepo().FindByDates(ctx, tenantID, day)
	if err != nil {
		return nil, err
	}

	bySupplier := make(map[string]*SupplierTotals)
	var names []string
	get := func(name string) *SupplierTotals {
		t, ok := bySupplier[name]
		if !ok {
			t = &SupplierTotals{
				SupplierName:   name,
				SupplyAmount:   decimal.Zero,
				SupplyQuantity: decimal.Zero,
				ReturnAmount:   decimal.Zero,
				ReturnQuantity: decimal.Zero,
			}
			bySupplier[name] = t
			names = append(names, name)
		}
		return t
	}
	for _, b := range batches {
		t := get(b.SupplierName)
		t.SupplyAmount = t.SupplyAmount.Add(b.TotalAmount)
		t.SupplyQuantity = t.SupplyQuantity.Add(b.Quantity)
	}
	for _, r := range returns {
		t := get(r.SupplierName)
		t.ReturnAmount = t.ReturnAmount.Add(r.TotalAmount)
		t.ReturnQuantity = t.ReturnQuantity.Add(r.Quantity)
	}

	sort.Strings(names)
	out := make([]SupplierTotals, 0, len(names))
	for _, name := range names {
		t := bySupplier[name]
		t.NetAmount = t.SupplyAmount.Sub(t.ReturnAmount)
		out = append(out, *t)
	}
	return out, nil
}
