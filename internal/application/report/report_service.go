package report

import (
	"context"
	"sort"
	"time"

	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/expense"
	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/sales"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// percentScale is the number of decimal places kept for ratios
const percentScale = 2

var hundred = decimal.NewFromInt(100)

// DailyReport combines the supplier and sales activity of one day
type DailyReport struct {
	Date              time.Time                 `json:"date"`
	Supplier          ledger.SupplierDaySummary `json:"supplier_summary"`
	Sales             ledger.SalesSummary       `json:"sales_summary"`
	NetInventoryValue decimal.Decimal           `json:"net_inventory_value"`
	Suppliers         []ledger.SupplierTotals   `json:"suppliers"`
}

// ProfitLine is the profit of one variety or salesperson
type ProfitLine struct {
	Key        string          `json:"key"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
	Cost       decimal.Decimal `json:"cost"`
	Profit     decimal.Decimal `json:"profit"`
	SalesCount int             `json:"sales_count"`
}

// ProfitReport splits one day's profit by variety and salesperson
type ProfitReport struct {
	Date          time.Time       `json:"date"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	ByVariety     []ProfitLine    `json:"by_variety"`
	BySalesperson []ProfitLine    `json:"by_salesperson"`
}

// FinancialReport is the monthly result of the shop
type FinancialReport struct {
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Revenue        decimal.Decimal `json:"revenue"`
	Cost           decimal.Decimal `json:"cost"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	Expenses       decimal.Decimal `json:"expenses"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	ProfitMargin   decimal.Decimal `json:"profit_margin_percent"`
	ExpenseRatio   decimal.Decimal `json:"expense_ratio_percent"`
	SalesCount     int             `json:"sales_count"`
	ExpenseCount   int             `json:"expense_count"`
	ExpensesByType []CategoryLine  `json:"expenses_by_category"`
}

// CategoryLine is the spend of one expense category
type CategoryLine struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Service builds reports from the ledger and expenses
type Service struct {
	reads    ledger.Repositories
	supply   *ledger.SupplyService
	sales    *ledger.SaleService
	expenses expense.Repository
	store    ObjectStore
	logger   *zap.Logger
}

// NewService creates a report Service. store may be nil, exports are then returned inline.
func NewService(lg *ledger.Ledger, expenses expense.Repository, store ObjectStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reads:    lg.Reads(),
		supply:   ledger.NewSupplyService(lg),
		sales:    ledger.NewSaleService(lg),
		expenses: expenses,
		store:    store,
		logger:   logger,
	}
}

// DailyReport returns supply, returns and sales for one day.
// Net inventory value is what was supplied minus what was returned.
func (s *Service) DailyReport(ctx context.Context, tenantID uuid.UUID, date time.Time) (*DailyReport, error) {
	supplier, err := s.supply.DailySupplierSummary(ctx, tenantID, date)
	if err != nil {
		return nil, err
	}
	salesSummary, err := s.sales.DailySummary(ctx, tenantID, date)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.supply.SupplierWiseSummary(ctx, tenantID, date)
	if err != nil {
		return nil, err
	}
	return &DailyReport{
		Date:              shared.DateOnly(date),
		Supplier:          *supplier,
		Sales:             *salesSummary,
		NetInventoryValue: supplier.TotalSupplyAmount.Sub(supplier.TotalReturnAmount),
		Suppliers:         suppliers,
	}, nil
}

// ProfitReport returns one day's profit by variety and by salesperson, highest profit first
func (s *Service) ProfitReport(ctx context.Context, tenantID uuid.UUID, date time.Time) (*ProfitReport, error) {
	rows, err := s.reads.SaleRepo().FindByDates(ctx, tenantID, shared.DayRange(date))
	if err != nil {
		return nil, err
	}
	names, err := s.varietyNames(ctx, tenantID, rows)
	if err != nil {
		return nil, err
	}

	out := &ProfitReport{
		Date:         shared.DateOnly(date),
		TotalRevenue: decimal.Zero,
		TotalProfit:  decimal.Zero,
	}
	byVariety := newProfitTable()
	bySalesperson := newProfitTable()
	for i := range rows {
		sale := &rows[i]
		out.TotalRevenue = out.TotalRevenue.Add(sale.TotalAmount())
		out.TotalProfit = out.TotalProfit.Add(sale.Profit)
		byVariety.add(sale.VarietyID.String(), names[sale.VarietyID], sale)
		bySalesperson.add(inventory.NameKey(sale.SalespersonName), sale.SalespersonName, sale)
	}
	out.ByVariety = byVariety.lines()
	out.BySalesperson = bySalesperson.lines()
	return out, nil
}

// FinancialReport returns revenue, profit and expenses of a calendar month
func (s *Service) FinancialReport(ctx context.Context, tenantID uuid.UUID, year int, month time.Month) (*FinancialReport, error) {
	if month < time.January || month > time.December {
		return nil, shared.Errorf(shared.CodeValidation, "Month must be between 1 and 12, got %d", int(month))
	}
	if year < 2000 || year > 2100 {
		return nil, shared.Errorf(shared.CodeValidation, "Year %d is out of range", year)
	}
	dates := shared.MonthRange(year, month)
	rows, err := s.reads.SaleRepo().FindByDates(ctx, tenantID, dates)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.FindByDates(ctx, tenantID, dates)
	if err != nil {
		return nil, err
	}
	return buildFinancialReport(year, month, rows, expenses), nil
}

func buildFinancialReport(year int, month time.Month, rows []sales.Sale, expenses []expense.Expense) *FinancialReport {
	out := &FinancialReport{
		Year:           year,
		Month:          int(month),
		Revenue:        decimal.Zero,
		Cost:           decimal.Zero,
		GrossProfit:    decimal.Zero,
		Expenses:       decimal.Zero,
		ProfitMargin:   decimal.Zero,
		ExpenseRatio:   decimal.Zero,
		ExpensesByType: []CategoryLine{},
	}
	for i := range rows {
		out.Revenue = out.Revenue.Add(rows[i].TotalAmount())
		out.Cost = out.Cost.Add(rows[i].CostPrice.Mul(rows[i].Quantity))
		out.GrossProfit = out.GrossProfit.Add(rows[i].Profit)
		out.SalesCount++
	}
	index := make(map[expense.Category]int)
	for _, e := range expenses {
		out.Expenses = out.Expenses.Add(e.Amount)
		out.ExpenseCount++
		idx, ok := index[e.Category]
		if !ok {
			idx = len(out.ExpensesByType)
			index[e.Category] = idx
			out.ExpensesByType = append(out.ExpensesByType, CategoryLine{Category: string(e.Category), Amount: decimal.Zero})
		}
		out.ExpensesByType[idx].Amount = out.ExpensesByType[idx].Amount.Add(e.Amount)
	}
	out.NetProfit = out.GrossProfit.Sub(out.Expenses)
	if out.Revenue.IsPositive() {
		out.ProfitMargin = out.NetProfit.Div(out.Revenue).Mul(hundred).Round(percentScale)
		out.ExpenseRatio = out.Expenses.Div(out.Revenue).Mul(hundred).Round(percentScale)
	}
	return out
}

func (s *Service) varietyNames(ctx context.Context, tenantID uuid.UUID, rows []sales.Sale) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string)
	for i := range rows {
		id := rows[i].VarietyID
		if _, ok := names[id]; ok {
			continue
		}
		v, err := s.reads.VarietyRepo().FindByID(ctx, tenantID, id)
		if err != nil {
			if shared.IsNotFound(err) {
				names[id] = id.String()
				continue
			}
			return nil, err
		}
		names[id] = v.Name
	}
	return names, nil
}

type profitTable struct {
	index map[string]int
	rows  []ProfitLine
}

func newProfitTable() *profitTable {
	return &profitTable{index: make(map[string]int)}
}

func (t *profitTable) add(key, name string, sale *sales.Sale) {
	idx, ok := t.index[key]
	if !ok {
		idx = len(t.rows)
		t.index[key] = idx
		t.rows = append(t.rows, ProfitLine{
			Key:      key,
			Name:     name,
			Quantity: decimal.Zero,
			Revenue:  decimal.Zero,
			Cost:     decimal.Zero,
			Profit:   decimal.Zero,
		})
	}
	line := &t.rows[idx]
	line.Quantity = line.Quantity.Add(sale.Quantity)
	line.Revenue = line.Revenue.Add(sale.TotalAmount())
	line.Cost = line.Cost.Add(sale.CostPrice.Mul(sale.Quantity))
	line.Profit = line.Profit.Add(sale.Profit)
	line.SalesCount++
}

func (t *profitTable) lines() []ProfitLine {
	out := append([]ProfitLine{}, t.rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Profit.GreaterThan(out[j].Profit)
	})
	return out
}
