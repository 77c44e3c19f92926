package ledger

import (
	"context"
	"time"

	"github.com/clothshop/backend/internal/domain/consignment"
	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IssueInput describes stock handed to a shopkeeper
type IssueInput struct {
	ShopkeeperName        string
	ShopkeeperPhone       string
	VarietyID             uuid.UUID
	Quantity              decimal.Decimal
	IssueDate             time.Time
	Notes                 string
	DeductedFromInventory bool
}

// ConsignmentEventInput is a sale or return reported by a shopkeeper
type ConsignmentEventInput struct {
	Quantity decimal.Decimal
	Date     time.Time
	Notes    string
}

// ShopkeeperSummary totals every consignment of one shopkeeper
type ShopkeeperSummary struct {
	ShopkeeperName  string          `json:"shopkeeper_name"`
	ShopkeeperPhone *string         `json:"shopkeeper_phone,omitempty"`
	TotalIssued     decimal.Decimal `json:"total_issued"`
	TotalSold       decimal.Decimal `json:"total_sold"`
	TotalReturned   decimal.Decimal `json:"total_returned"`
	TotalRemaining  decimal.Decimal `json:"total_remaining"`
	Records         int             `json:"records"`
}

// ShopkeeperDetail is a shopkeeper summary with the underlying records
type ShopkeeperDetail struct {
	ShopkeeperSummary
	Stocks []ShopkeeperStockResponse `json:"stocks"`
}

// ConsignmentDetail is one consignment with its sale and return events
type ConsignmentDetail struct {
	ShopkeeperStockResponse
	Sales   []ShopkeeperEventResponse `json:"sales"`
	Returns []ShopkeeperEventResponse `json:"returns"`
}

// ConsignmentService tracks stock issued to shopkeepers
type ConsignmentService struct {
	ledger *Ledger
	logger *zap.Logger
}

// NewConsignmentService creates a new ConsignmentService
func NewConsignmentService(lg *Ledger) *ConsignmentService {
	return &ConsignmentService{ledger: lg, logger: lg.logger}
}

// Issue hands stock to a shopkeeper. When the stock is deducted from inventory it is
// drawn from a single batch chosen like a sale; otherwise only the record is kept.
func (s *ConsignmentService) Issue(ctx context.Context, tenantID uuid.UUID, in IssueInput) (*ShopkeeperStockResponse, error) {
	if !in.Quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity must be positive")
	}
	if err := shared.CheckScale("Quantity", in.Quantity); err != nil {
		return nil, err
	}

	var out *consignment.ShopkeeperStock
	err := s.ledger.mutate(ctx, tenantID, func(m *mutation) error {
		v, err := m.lockVariety(ctx, in.VarietyID)
		if err != nil {
			return err
		}
		params := consignment.IssueParams{
			ShopkeeperName:        in.ShopkeeperName,
			ShopkeeperPhone:       in.ShopkeeperPhone,
			VarietyID:             v.ID,
			Quantity:              in.Quantity,
			IssueDate:             in.IssueDate,
			Notes:                 in.Notes,
			DeductedFromInventory: in.DeductedFromInventory,
		}

		if in.DeductedFromInventory {
			if v.CurrentStock.LessThan(in.Quantity) {
				return shared.Errorf(shared.CodeInsufficientStock,
					"Insufficient stock for %s: available %s, requested %s", v.Name, v.CurrentStock, in.Quantity)
			}
			batch, err := s.ledger.allocate(ctx, m, v.ID, in.Quantity)
			if err != nil {
				return err
			}
			if batch == nil {
				return shared.Errorf(shared.CodeInsufficientStock,
					"No single batch of %s holds %s", v.Name, in.Quantity)
			}
			batchID := batch.ID
			params.BatchID = &batchID
		}

		stock, err := consignment.NewShopkeeperStock(tenantID, params)
		if err != nil {
			return err
		}
		if err := m.ConsignmentRepo().Create(ctx, stock); err != nil {
			return err
		}
		if stock.DeductedFromInventory {
			ref := inventory.Ref(inventory.ReferenceShopkeeperStock, stock.ID)
			if err := m.apply(ctx, v, inventory.MovementShopkeeperIssue, stock.QuantityIssued.Neg(), ref, stock.IssueDate,
				"Issued to "+stock.ShopkeeperName); err != nil {
				return err
			}
		}
		out = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToShopkeeperStockResponse(out)
	return &resp, nil
}

// RecordSale marks units as sold by the shopkeeper. The main ledger is not touched:
// those units left it at issue time, or never entered it.
func (s *ConsignmentService) RecordSale(ctx context.Context, tenantID, stockID uuid.UUID, in ConsignmentEventInput) (*ShopkeeperStockResponse, error) {
	var out *consignment.ShopkeeperStock
	err := s.ledger.scope.Execute(ctx, func(repos Repositories) error {
		stock, err := repos.ConsignmentRepo().FindByIDForUpdate(ctx, tenantID, stockID)
		if err != nil {
			return err
		}
		sale, err := stock.RecordSale(in.Quantity, eventDate(in.Date), in.Notes)
		if err != nil {
			return err
		}
		if err := stock.CheckConservation(); err != nil {
			return err
		}
		if err := repos.ConsignmentRepo().AddSale(ctx, sale); err != nil {
			return err
		}
		out = stock
		return repos.ConsignmentRepo().SaveWithLock(ctx, stock)
	})
	if err != nil {
		return nil, err
	}
	resp := ToShopkeeperStockResponse(out)
	return &resp, nil
}

// RecordReturn takes units back from the shopkeeper. Deducted stock goes back into
// the batch it came from and onto the shelf.
func (s *ConsignmentService) RecordReturn(ctx context.Context, tenantID, stockID uuid.UUID, in ConsignmentEventInput) (*ShopkeeperStockResponse, error) {
	var out *consignment.ShopkeeperStock
	err := s.ledger.mutate(ctx, tenantID, func(m *mutation) error {
		stock, err := m.ConsignmentRepo().FindByIDForUpdate(ctx, tenantID, stockID)
		if err != nil {
			return err
		}
		ret, err := stock.RecordReturn(in.Quantity, eventDate(in.Date), in.Notes)
		if err != nil {
			return err
		}
		if err := stock.CheckConservation(); err != nil {
			return err
		}
		if stock.DeductedFromInventory {
			ref := inventory.Ref(inventory.ReferenceShopkeeperReturn, stock.ID)
			if err := s.restore(ctx, m, stock, ret.Quantity, inventory.MovementShopkeeperReturn, ref, ret.ReturnDate,
				"Returned by "+stock.ShopkeeperName); err != nil {
				return err
			}
		}
		if err := m.ConsignmentRepo().AddReturn(ctx, ret); err != nil {
			return err
		}
		out = stock
		return m.ConsignmentRepo().SaveWithLock(ctx, stock)
	})
	if err != nil {
		return nil, err
	}
	resp := ToShopkeeperStockResponse(out)
	return &resp, nil
}

// Delete removes a consignment. For deducted stock everything not already returned,
// issued minus returned, goes back to the ledger.
func (s *ConsignmentService) Delete(ctx context.Context, tenantID, stockID uuid.UUID) error {
	return s.ledger.mutate(ctx, tenantID, func(m *mutation) error {
		stock, err := m.ConsignmentRepo().FindByIDForUpdate(ctx, tenantID, stockID)
		if err != nil {
			return err
		}
		if n := stock.RestoreOnDelete(); n.IsPositive() {
			ref := inventory.Ref(inventory.ReferenceShopkeeperDeleted, stock.ID)
			if err := s.restore(ctx, m, stock, n, inventory.MovementShopkeeperIssueReversal, ref, shared.Today(),
				"Consignment to "+stock.ShopkeeperName+" deleted"); err != nil {
				return err
			}
		}
		return m.ConsignmentRepo().Delete(ctx, tenantID, stock.ID)
	})
}

// restore puts q back into the consignment's batch and onto the variety stock
func (s *ConsignmentService) restore(ctx context.Context, m *mutation, stock *consignment.ShopkeeperStock, q decimal.Decimal,
	t inventory.MovementType, ref inventory.Reference, date time.Time, notes string) error {
	v, err := m.lockVariety(ctx, stock.VarietyID)
	if err != nil {
		return err
	}
	batch, err := m.lockBatch(ctx, stock.BatchID)
	if err != nil {
		return err
	}
	if batch != nil {
		if err := batch.Release(q); err != nil {
			return err
		}
		if err := m.saveBatch(ctx, batch); err != nil {
			return err
		}
	}
	return m.apply(ctx, v, t, q, ref, date, notes)
}

func eventDate(d time.Time) time.Time {
	if d.IsZero() {
		return shared.Today()
	}
	return d
}

// Get returns one consignment with its events
func (s *ConsignmentService) Get(ctx context.Context, tenantID, stockID uuid.UUID) (*ConsignmentDetail, error) {
	repo := s.ledger.reads.ConsignmentRepo()
	stock, err := repo.FindByID(ctx, tenantID, stockID)
	if err != nil {
		return nil, err
	}
	saleRows, err := repo.FindSales(ctx, tenantID, stockID)
	if err != nil {
		return nil, err
	}
	returnRows, err := repo.FindReturns(ctx, tenantID, stockID)
	if err != nil {
		return nil, err
	}
	detail := &ConsignmentDetail{
		ShopkeeperStockResponse: ToShopkeeperStockResponse(stock),
		Sales:                   make([]ShopkeeperEventResponse, len(saleRows)),
		Returns:                 make([]ShopkeeperEventResponse, len(returnRows)),
	}
	for i, r := range saleRows {
		detail.Sales[i] = ShopkeeperEventResponse{ID: r.ID, StockID: r.StockID, Quantity: r.Quantity, Date: r.SaleDate, Notes: r.Notes}
	}
	for i, r := range returnRows {
		detail.Returns[i] = ShopkeeperEventResponse{ID: r.ID, StockID: r.StockID, Quantity: r.Quantity, Date: r.ReturnDate, Notes: r.Notes}
	}
	return detail, nil
}

// List pages through consignments
func (s *ConsignmentService) List(ctx context.Context, tenantID uuid.UUID, filter consignment.StockFilter) (shared.Paginated[ShopkeeperStockResponse], error) {
	rows, total, err := s.ledger.reads.ConsignmentRepo().FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[ShopkeeperStockResponse]{}, err
	}
	items := make([]ShopkeeperStockResponse, len(rows))
	for i := range rows {
		items[i] = ToShopkeeperStockResponse(&rows[i])
	}
	f := filter.Filter.Normalize()
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// ListOutstanding pages through consignments the shopkeeper still holds stock of
func (s *ConsignmentService) ListOutstanding(ctx context.Context, tenantID uuid.UUID, filter consignment.StockFilter) (shared.Paginated[ShopkeeperStockResponse], error) {
	filter.Outstanding = true
	return s.List(ctx, tenantID, filter)
}

// SummaryByShopkeeper totals consignments per shopkeeper, ordered by name
func (s *ConsignmentService) SummaryByShopkeeper(ctx context.Context, tenantID uuid.UUID) ([]ShopkeeperSummary, error) {
	rows, err := s.ledger.reads.ConsignmentRepo().FindAllUnpaged(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	var out []ShopkeeperSummary
	for i := range rows {
		key := inventory.NameKey(rows[i].ShopkeeperName)
		idx, ok := index[key]
		if !ok {
			idx = len(out)
			index[key] = idx
			out = append(out, newShopkeeperSummary(&rows[i]))
		}
		out[idx].add(&rows[i])
	}
	return out, nil
}

// ShopkeeperDetail returns the summary and records of one shopkeeper
func (s *ConsignmentService) ShopkeeperDetail(ctx context.Context, tenantID uuid.UUID, name string) (*ShopkeeperDetail, error) {
	rows, err := s.ledger.reads.ConsignmentRepo().FindByShopkeeper(ctx, tenantID, name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.Errorf(shared.CodeNotFound, "No stock issued to shopkeeper %q", name)
	}
	detail := &ShopkeeperDetail{
		ShopkeeperSummary: newShopkeeperSummary(&rows[0]),
		Stocks:            make([]ShopkeeperStockResponse, len(rows)),
	}
	for i := range rows {
		detail.add(&rows[i])
		detail.Stocks[i] = ToShopkeeperStockResponse(&rows[i])
	}
	return detail, nil
}

func newShopkeeperSummary(s *consignment.ShopkeeperStock) ShopkeeperSummary {
	return ShopkeeperSummary{
		ShopkeeperName:  s.ShopkeeperName,
		ShopkeeperPhone: s.ShopkeeperPhone,
		TotalIssued:     decimal.Zero,
		TotalSold:       decimal.Zero,
		TotalReturned:   decimal.Zero,
		TotalRemaining:  decimal.Zero,
	}
}

func (sum *ShopkeeperSummary) add(s *consignment.ShopkeeperStock) {
	sum.TotalIssued = sum.TotalIssued.Add(s.QuantityIssued)
	sum.TotalSold = sum.TotalSold.Add(s.QuantitySold)
	sum.TotalReturned = sum.TotalReturned.Add(s.QuantityReturned)
	sum.TotalRemaining = sum.TotalRemaining.Add(s.QuantityRemaining)
	sum.Records++
	if sum.ShopkeeperPhone == nil {
		sum.ShopkeeperPhone = s.ShopkeeperPhone
	}
}
