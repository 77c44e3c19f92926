package assistant

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type listVarietiesArgs struct {
	Search       string `json:"search,omitempty" jsonschema:"description=Part of the variety name to filter by"`
	LowStockOnly bool   `json:"low_stock_only,omitempty" jsonschema:"description=Only varieties at or below their minimum stock level"`
	Page         int    `json:"page,omitempty" jsonschema:"minimum=1,description=Result page starting at 1"`
}

type varietyArgs struct {
	Variety string `json:"variety" jsonschema:"required,description=Variety name or ID"`
}

type dateArgs struct {
	Date string `json:"date,omitempty" jsonschema:"format=date,description=Day as YYYY-MM-DD. Defaults to today"`
}

type listMovementsArgs struct {
	Variety string `json:"variety" jsonschema:"required,description=Variety name or ID"`
	Limit   int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=200,description=How many recent movements to return"`
}

type recordSaleArgs struct {
	Variety       string `json:"variety" jsonschema:"required,description=Variety name or ID. Unknown names are created"`
	Quantity      string `json:"quantity" jsonschema:"required,description=Quantity sold as a decimal string"`
	TotalSelling  string `json:"total_selling_price" jsonschema:"required,description=Total amount charged as a decimal string"`
	TotalCost     string `json:"total_cost_price" jsonschema:"required,description=Total cost of the goods as a decimal string"`
	Salesperson   string `json:"salesperson_name" jsonschema:"required"`
	PaymentStatus string `json:"payment_status,omitempty" jsonschema:"enum=paid,enum=loan"`
	CustomerName  string `json:"customer_name,omitempty" jsonschema:"description=Required when payment_status is loan"`
	Date          string `json:"date,omitempty" jsonschema:"format=date,description=Sale day as YYYY-MM-DD. Defaults to today"`
}

type recordSupplyArgs struct {
	Variety      string `json:"variety" jsonschema:"required,description=Variety name or ID. Unknown names are created"`
	Supplier     string `json:"supplier_name" jsonschema:"required"`
	Quantity     string `json:"quantity" jsonschema:"required,description=Quantity received as a decimal string"`
	PricePerItem string `json:"price_per_item" jsonschema:"required,description=Unit cost as a decimal string"`
	Date         string `json:"date,omitempty" jsonschema:"format=date,description=Supply day as YYYY-MM-DD. Defaults to today"`
}

type adjustStockArgs struct {
	Variety  string `json:"variety" jsonschema:"required,description=Variety name or ID"`
	Quantity string `json:"quantity" jsonschema:"required,description=Signed correction, negative removes stock"`
	Notes    string `json:"notes,omitempty"`
}

// ledgerTools exposes ledger services as tools. It holds no per-tenant state.
type ledgerTools struct {
	varieties *ledger.VarietyService
	stock     *ledger.StockService
	sales     *ledger.SaleService
	supply    *ledger.SupplyService
}

// NewLedgerRegistry registers the read and write ledger tools
func NewLedgerRegistry(lg *ledger.Ledger) *ToolRegistry {
	t := &ledgerTools{
		varieties: ledger.NewVarietyService(lg),
		stock:     ledger.NewStockService(lg),
		sales:     ledger.NewSaleService(lg),
		supply:    ledger.NewSupplyService(lg),
	}
	r := NewToolRegistry()
	r.Register(ToolDefinition{
		Name:        "list_varieties",
		Description: "List cloth varieties with their current stock",
		InputSchema: schemaFor[listVarietiesArgs](),
		Handler:     t.listVarieties,
	})
	r.Register(ToolDefinition{
		Name:        "stock_status",
		Description: "Current stock, minimum level and open batches of one variety",
		InputSchema: schemaFor[varietyArgs](),
		Handler:     t.stockStatus,
	})
	r.Register(ToolDefinition{
		Name:        "low_stock",
		Description: "Varieties at or below their minimum stock level",
		InputSchema: noArgsSchema(),
		Handler:     t.lowStock,
	})
	r.Register(ToolDefinition{
		Name:        "daily_sales_summary",
		Description: "Sales totals and profit for one day",
		InputSchema: schemaFor[dateArgs](),
		Handler:     t.dailySalesSummary,
	})
	r.Register(ToolDefinition{
		Name:        "list_movements",
		Description: "Most recent stock movements of one variety",
		InputSchema: schemaFor[listMovementsArgs](),
		Handler:     t.listMovements,
	})
	r.Register(ToolDefinition{
		Name:        "record_sale",
		Description: "Record a sale and take the stock from the oldest batch that covers it",
		InputSchema: schemaFor[recordSaleArgs](),
		Mutates:     true,
		Handler:     t.recordSale,
	})
	r.Register(ToolDefinition{
		Name:        "record_supply",
		Description: "Record stock received from a supplier as a new batch",
		InputSchema: schemaFor[recordSupplyArgs](),
		Mutates:     true,
		Handler:     t.recordSupply,
	})
	r.Register(ToolDefinition{
		Name:        "adjust_stock",
		Description: "Apply a manual correction to the stock of a variety",
		InputSchema: schemaFor[adjustStockArgs](),
		Mutates:     true,
		Handler:     t.adjustStock,
	})
	return r
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, shared.Errorf(shared.CodeInvalidInput, "Invalid tool arguments: %v", err)
	}
	return v, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, shared.Errorf(shared.CodeInvalidInput, "%s must be a decimal number, got %q", field, s)
	}
	return d, nil
}

// varietyRef splits a variety argument into an ID or a name
func varietyRef(s string) (*uuid.UUID, string) {
	s = strings.TrimSpace(s)
	if id, err := uuid.Parse(s); err == nil {
		return &id, ""
	}
	return nil, s
}

// findVariety resolves an existing variety by ID or case-insensitive name
func (t *ledgerTools) findVariety(ctx context.Context, tenantID uuid.UUID, ref string) (*ledger.VarietyResponse, error) {
	id, name := varietyRef(ref)
	if id != nil {
		return t.varieties.Get(ctx, tenantID, *id)
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Variety is required")
	}
	page, err := t.varieties.List(ctx, tenantID, inventory.VarietyFilter{
		Filter: shared.Filter{Page: 1, PageSize: 50},
		Search: name,
	})
	if err != nil {
		return nil, err
	}
	key := inventory.NameKey(name)
	for i := range page.Items {
		if inventory.NameKey(page.Items[i].Name) == key {
			return &page.Items[i], nil
		}
	}
	return nil, shared.Errorf(shared.CodeNotFound, "Variety %q not found", name)
}

func (t *ledgerTools) listVarieties(ctx context.Context, s Session, raw json.RawMessage) (any, error) {
	args, err := decode[listVarietiesArgs](raw)
	if err != nil {
		return nil, err
	}
	return t.varieties.List(ctx, s.TenantID, inventory.VarietyFilter{
		Filter:   shared.Filter{Page: args.Page, PageSize: 50, OrderBy: "name", OrderDir: "asc"},
		Search:   args.Search,
		LowStock: args.LowStockOnly,
	})
}

func (t *ledgerTools) stockStatus(ctx context.Context, s Session, raw json.RawMessage) (any, error) {
	args, err := decode[varietyArgs](raw)
	if err != nil {
		return nil, err
	}
	v, err := t.findVariety(ctx, s.TenantID, args.Variety)
	if err != nil {
		return nil, err
	}
	return t.stock.StockStatus(ctx, s.TenantID, v.ID)
}

func (t *ledgerTools) lowStock(ctx context.Context, s Session, _ json.RawMessage) (any, error) {
	return t.stock.ListLowStock(ctx, s.TenantID)
}

func (t *ledgerTools) dailySalesSummary(ctx context.Context, s Session, raw json.RawMessage) (any, error) {
	args, err := decode[dateArgs](raw)
	if err != nil {
		return nil, err
	}
	day, err := shared.ParseDate(args.Date)
	if err != nil {
		return nil, err
	}
	if day.IsZero() {
		day = shared.Today()
	}
	return t.sales.DailySummary(ctx, s.TenantID, day)
}

func (t *ledgerTools) listMovements(ctx context.Context, s Session, raw json.RawMessage) (any, error) {
	args, err := decode[listMovementsArgs](raw)
	if err != nil {
		return nil, err
	}
	v, err := t.findVariety(ctx, s.TenantID, args.Variety)
	if err != nil {
		return nil, err
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	return t.stock.ListMovements(ctx, s.TenantID, v.ID, shared.Filter{Page: 1, PageSize: limit})
}

func (t *ledgerTools) recordSale(ctx context.Context, s Session, raw json.RawMessage) (any, error) {
	args, err := decode[recordSaleArgs](raw)
	if err != nil {
		return nil, err
	}
	q, err := parseAmount("quantity", args.Quantity)
	if err != nil {
		return nil, err
	}
	selling, err := parseAmount("total_selling_price", args.TotalSelling)
	if err != nil {
		return nil, err
	}
	cost, err := parseAmount("total_cost_price", args.TotalCost)
	if err != nil {
		return nil, err
	}
	day, err := shared.ParseDate(args.Date)
	if err != nil {
		return nil, err
	}
	id, name := varietyRef(args.Variety)
	return t.sales.RecordSale(ctx, s.TenantID, ledger.RecordSaleInput{
		VarietyID:       id,
		VarietyName:     name,
		Quantity:        q,
		TotalCost:       cost,
		TotalSelling:    selling,
		SaleDate:        day,
		SalespersonName: args.Salesperson,
		PaymentStatus:   args.PaymentStatus,
		CustomerName:    args.CustomerName,
	})
}

func (t *ledgerTools) recordSupply(ctx context.Context, s Session, raw json.RawMessage) (any, error) {
	args, err := decode[recordSupplyArgs](raw)
	if err != nil {
		return nil, err
	}
	q, err := parseAmount("quantity", args.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := parseAmount("price_per_item", args.PricePerItem)
	if err != nil {
		return nil, err
	}
	day, err := shared.ParseDate(args.Date)
	if err != nil {
		return nil, err
	}
	id, name := varietyRef(args.Variety)
	return t.supply.RecordSupply(ctx, s.TenantID, ledger.RecordSupplyInput{
		VarietyID:    id,
		VarietyName:  name,
		SupplierName: args.Supplier,
		Quantity:     q,
		PricePerItem: price,
		SupplyDate:   day,
	})
}

func (t *ledgerTools) adjustStock(ctx context.Context, s Session, raw json.RawMessage) (any, error) {
	args, err := decode[adjustStockArgs](raw)
	if err != nil {
		return nil, err
	}
	q, err := parseAmount("quantity", args.Quantity)
	if err != nil {
		return nil, err
	}
	v, err := t.findVariety(ctx, s.TenantID, args.Variety)
	if err != nil {
		return nil, err
	}
	return t.stock.AdjustStock(ctx, s.TenantID, ledger.AdjustStockInput{
		VarietyID: v.ID,
		Quantity:  q,
		Notes:     args.Notes,
	})
}
