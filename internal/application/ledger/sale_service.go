package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/sales"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordSaleInput describes a sale as entered at the counter. Totals are for the whole quantity.
type RecordSaleInput struct {
	VarietyID       *uuid.UUID
	VarietyName     string
	Quantity        decimal.Decimal
	TotalCost       decimal.Decimal
	TotalSelling    decimal.Decimal
	SaleDate        time.Time
	SalespersonName string
	PaymentStatus   string
	CustomerName    string
}

// UpdateSaleInput holds optional changes to a sale. Prices are per unit.
type UpdateSaleInput struct {
	CostPrice       *decimal.Decimal
	SellingPrice    *decimal.Decimal
	Quantity        *decimal.Decimal
	SalespersonName *string
	PaymentStatus   *string
	CustomerName    *string
}

// SalesSummary aggregates the sales of one day
type SalesSummary struct {
	Date          time.Time       `json:"date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	SalesCount    int             `json:"sales_count"`
}

// SaleService records sales against the stock ledger
type SaleService struct {
	ledger *Ledger
	logger *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(lg *Ledger) *SaleService {
	return &SaleService{ledger: lg, logger: lg.logger}
}

// RecordSale books a sale. Stock is drawn from the oldest batch that covers the
// entire quantity; when no batch does, a placeholder batch of exactly the sold
// quantity is created and consumed, leaving stock unchanged.
func (s *SaleService) RecordSale(ctx context.Context, tenantID uuid.UUID, in RecordSaleInput) (*SaleResponse, error) {
	if err := sales.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if in.TotalCost.IsNegative() || in.TotalSelling.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidPrice, "Totals cannot be negative")
	}
	if err := shared.CheckScale("Total cost", in.TotalCost); err != nil {
		return nil, err
	}
	if err := shared.CheckScale("Total selling price", in.TotalSelling); err != nil {
		return nil, err
	}
	status, err := sales.ParsePaymentStatus(in.PaymentStatus)
	if err != nil {
		return nil, err
	}
	cost := sales.PerUnit(in.TotalCost, in.Quantity)
	sell := sales.PerUnit(in.TotalSelling, in.Quantity)

	sale, err := sales.NewSale(tenantID, sales.SaleParams{
		SalespersonName: in.SalespersonName,
		Quantity:        in.Quantity,
		SellingPrice:    sell,
		CostPrice:       cost,
		SaleDate:        eventDate(in.SaleDate),
		PaymentStatus:   status,
		CustomerName:    in.CustomerName,
	})
	if err != nil {
		return nil, err
	}
	if err := s.checkBelowCost(tenantID, sale); err != nil {
		return nil, err
	}

	q := sale.Quantity
	ref := inventory.Ref(inventory.ReferenceSale, sale.ID)
	err = s.ledger.mutate(ctx, tenantID, func(m *mutation) error {
		v, err := s.ledger.resolveVariety(ctx, m, in.VarietyID, in.VarietyName, &cost)
		if err != nil {
			return err
		}
		sale.VarietyID = v.ID

		batch, err := s.ledger.allocate(ctx, m, v.ID, q)
		if err != nil {
			return err
		}
		if batch == nil {
			batch, err = inventory.NewAutoBatch(tenantID, v.ID, q, cost, sale.SaleDate)
			if err != nil {
				return err
			}
			if err := m.apply(ctx, v, inventory.MovementAutoSupply, q, ref, sale.SaleDate, "Auto-created batch for sale"); err != nil {
				return err
			}
			if err := batch.Consume(q); err != nil {
				return err
			}
			if err := m.BatchRepo().Create(ctx, batch); err != nil {
				return err
			}
			s.logger.Info("Auto-created supplier batch for sale",
				zap.String("tenant_id", tenantID.String()),
				zap.String("variety", v.Name),
				zap.String("quantity", q.String()))
		}

		if err := m.apply(ctx, v, inventory.MovementSale, q.Neg(), ref, sale.SaleDate, ""); err != nil {
			return err
		}

		batchID := batch.ID
		sale.BatchID = &batchID
		m.sales = append(m.sales, q)
		return m.SaleRepo().Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	resp := ToSaleResponse(sale)
	return &resp, nil
}

func (s *SaleService) checkBelowCost(tenantID uuid.UUID, sale *sales.Sale) error {
	if !sale.IsBelowCost() {
		return nil
	}
	if s.ledger.rejectBelowCost {
		return shared.Errorf(shared.CodeBelowCost,
			"Selling price %s is below cost %s", sale.SellingPrice, sale.CostPrice)
	}
	s.logger.Warn("Sale below cost",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("selling_price", sale.SellingPrice.String()),
		zap.String("cost_price", sale.CostPrice.String()))
	return nil
}

// UpdateSale applies corrections to a sale. A cost change is carried to the
// linked batch and the variety default; a quantity change moves stock.
func (s *SaleService) UpdateSale(ctx context.Context, tenantID, saleID uuid.UUID, in UpdateSaleInput) (*SaleResponse, error) {
	var out *sales.Sale
	err := s.ledger.mutate(ctx, tenantID, func(m *mutation) error {
		sale, err := m.SaleRepo().FindByIDForUpdate(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		v, err := m.lockVariety(ctx, sale.VarietyID)
		if err != nil {
			return err
		}
		batch, err := m.lockBatch(ctx, sale.BatchID)
		if err != nil {
			return err
		}
		batchChanged := false

		if in.CostPrice != nil {
			if err := sale.Reprice(*in.CostPrice); err != nil {
				return err
			}
			if batch != nil {
				if err := batch.Reprice(*in.CostPrice); err != nil {
					return err
				}
				batchChanged = true
			}
			cost := *in.CostPrice
			if err := v.SetDefaultCostPrice(&cost); err != nil {
				return err
			}
		}
		if in.SellingPrice != nil {
			if err := sale.SetSellingPrice(*in.SellingPrice); err != nil {
				return err
			}
		}
		if in.Quantity != nil {
			delta, err := sale.ChangeQuantity(*in.Quantity)
			if err != nil {
				return err
			}
			if !delta.IsZero() {
				if batch != nil {
					if delta.IsPositive() {
						err = batch.Consume(delta)
					} else {
						err = batch.Release(delta.Neg())
					}
					if err != nil {
						return err
					}
					batchChanged = true
				}
				ref := inventory.Ref(inventory.ReferenceSale, sale.ID)
				if err := m.apply(ctx, v, inventory.MovementSaleAdjustment, delta.Neg(), ref, sale.SaleDate, "Sale quantity corrected"); err != nil {
					return err
				}
			}
		}
		if in.SalespersonName != nil {
			name := strings.TrimSpace(*in.SalespersonName)
			if name == "" {
				return shared.NewDomainError(shared.CodeValidation, "Salesperson name is required")
			}
			sale.SalespersonName = name
		}
		if in.PaymentStatus != nil || in.CustomerName != nil {
			if err := s.changePayment(ctx, m, sale, in); err != nil {
				return err
			}
		}
		sale.Touch()

		if batchChanged {
			if err := m.saveBatch(ctx, batch); err != nil {
				return err
			}
		}
		if err := s.checkBelowCost(tenantID, sale); err != nil {
			return err
		}
		out = sale
		return m.SaleRepo().SaveWithLock(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(out)
	return &resp, nil
}

func (s *SaleService) changePayment(ctx context.Context, m *mutation, sale *sales.Sale, in UpdateSaleInput) error {
	status := sale.PaymentStatus
	if in.PaymentStatus != nil {
		parsed, err := sales.ParsePaymentStatus(*in.PaymentStatus)
		if err != nil {
			return err
		}
		status = parsed
	}
	customer := ""
	if sale.CustomerName != nil {
		customer = *sale.CustomerName
	}
	if in.CustomerName != nil {
		customer = *in.CustomerName
	}

	if sale.PaymentStatus == sales.PaymentLoan && status == sales.PaymentPaid {
		if _, err := m.LoanRepo().FindBySale(ctx, m.tenantID, sale.ID); err == nil {
			return shared.NewDomainError(shared.CodeInvalidState,
				"Sale has a customer loan; delete or settle the loan instead of marking the sale paid")
		} else if !shared.IsNotFound(err) {
			return err
		}
	}
	return sale.SetPayment(status, customer)
}

// DeleteSale removes a sale and puts its quantity back on the shelf
func (s *SaleService) DeleteSale(ctx context.Context, tenantID, saleID uuid.UUID) error {
	return s.ledger.mutate(ctx, tenantID, func(m *mutation) error {
		sale, err := m.SaleRepo().FindByIDForUpdate(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		v, err := m.lockVariety(ctx, sale.VarietyID)
		if err != nil {
			return err
		}
		batch, err := m.lockBatch(ctx, sale.BatchID)
		if err != nil {
			return err
		}
		if batch != nil {
			if err := batch.Release(sale.Quantity); err != nil {
				return err
			}
			if err := m.saveBatch(ctx, batch); err != nil {
				return err
			}
		}

		ref := inventory.Ref(inventory.ReferenceSaleDeleted, sale.ID)
		if err := m.apply(ctx, v, inventory.MovementSaleReversal, sale.Quantity, ref, shared.Today(), "Sale deleted"); err != nil {
			return err
		}

		loan, err := m.LoanRepo().FindBySale(ctx, tenantID, sale.ID)
		switch {
		case err == nil:
			if err := m.LoanRepo().Delete(ctx, tenantID, loan.ID); err != nil {
				return err
			}
		case !shared.IsNotFound(err):
			return err
		}
		return m.SaleRepo().Delete(ctx, tenantID, sale.ID)
	})
}

// GetSale returns one sale
func (s *SaleService) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.ledger.reads.SaleRepo().FindByID(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// ListSales pages through sales
func (s *SaleService) ListSales(ctx context.Context, tenantID uuid.UUID, filter sales.SaleFilter) (shared.Paginated[SaleResponse], error) {
	rows, total, err := s.ledger.reads.SaleRepo().FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[SaleResponse]{}, err
	}
	items := make([]SaleResponse, len(rows))
	for i := range rows {
		items[i] = ToSaleResponse(&rows[i])
	}
	f := filter.Filter.Normalize()
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// DailySummary totals the sales of one day
func (s *SaleService) DailySummary(ctx context.Context, tenantID uuid.UUID, date time.Time) (*SalesSummary, error) {
	rows, err := s.ledger.reads.SaleRepo().FindByDates(ctx, tenantID, shared.DayRange(date))
	if err != nil {
		return nil, err
	}
	summary := summarizeSales(rows)
	summary.Date = shared.DateOnly(date)
	return &summary, nil
}

func summarizeSales(rows []sales.Sale) SalesSummary {
	out := SalesSummary{
		TotalAmount:   decimal.Zero,
		TotalProfit:   decimal.Zero,
		TotalQuantity: decimal.Zero,
	}
	for i := range rows {
		out.TotalAmount = out.TotalAmount.Add(rows[i].TotalAmount())
		out.TotalProfit = out.TotalProfit.Add(rows[i].Profit)
		out.TotalQuantity = out.TotalQuantity.Add(rows[i].Quantity)
		out.SalesCount++
	}
	return out
}
