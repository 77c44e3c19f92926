package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/consignment"
	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/sales"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/clothshop/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	t           *testing.T
	ctx         context.Context
	tenant      uuid.UUID
	lg          *ledger.Ledger
	varieties   *ledger.VarietyService
	supply      *ledger.SupplyService
	sales       *ledger.SaleService
	stock       *ledger.StockService
	consignment *ledger.ConsignmentService
	loans       *ledger.LoanService
}

func newFixture(t *testing.T, opts ...ledger.Option) *fixture {
	t.Helper()
	lg := testutil.NewLedger(t, testutil.NewSQLiteDB(t), opts...)
	return &fixture{
		t:           t,
		ctx:         context.Background(),
		tenant:      testutil.TestTenantID(),
		lg:          lg,
		varieties:   ledger.NewVarietyService(lg),
		supply:      ledger.NewSupplyService(lg),
		sales:       ledger.NewSaleService(lg),
		stock:       ledger.NewStockService(lg),
		consignment: ledger.NewConsignmentService(lg),
		loans:       ledger.NewLoanService(lg),
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func daysAgo(n int) time.Time {
	return shared.Today().AddDate(0, 0, -n)
}

func (f *fixture) variety(name string) uuid.UUID {
	f.t.Helper()
	v, err := f.varieties.Create(f.ctx, f.tenant, ledger.CreateVarietyInput{Name: name, Unit: "meters"})
	require.NoError(f.t, err)
	return v.ID
}

func (f *fixture) batch(varietyID uuid.UUID, supplier, qty, price string, date time.Time) ledger.BatchResponse {
	f.t.Helper()
	b, err := f.supply.RecordSupply(f.ctx, f.tenant, ledger.RecordSupplyInput{
		VarietyID:    &varietyID,
		SupplierName: supplier,
		Quantity:     d(qty),
		PricePerItem: d(price),
		SupplyDate:   date,
	})
	require.NoError(f.t, err)
	return *b
}

func (f *fixture) sell(varietyID uuid.UUID, qty, cost, selling string) ledger.SaleResponse {
	f.t.Helper()
	s, err := f.sales.RecordSale(f.ctx, f.tenant, ledger.RecordSaleInput{
		VarietyID:       &varietyID,
		Quantity:        d(qty),
		TotalCost:       d(cost),
		TotalSelling:    d(selling),
		SalespersonName: "Asif",
	})
	require.NoError(f.t, err)
	return *s
}

func (f *fixture) currentStock(varietyID uuid.UUID) string {
	f.t.Helper()
	v, err := f.varieties.Get(f.ctx, f.tenant, varietyID)
	require.NoError(f.t, err)
	return v.CurrentStock.String()
}

func (f *fixture) remaining(batchID uuid.UUID, varietyID uuid.UUID) string {
	f.t.Helper()
	batches, err := f.supply.ListBatches(f.ctx, f.tenant, inventory.BatchFilter{VarietyID: &varietyID})
	require.NoError(f.t, err)
	for _, b := range batches.Items {
		if b.ID == batchID {
			return b.QuantityRemaining.String()
		}
	}
	f.t.Fatalf("batch %s not found", batchID)
	return ""
}

// assertBalanced checks batch conservation and the movement replay of every variety
func (f *fixture) assertBalanced() {
	f.t.Helper()
	reports, err := f.stock.Reconcile(f.ctx, f.tenant, nil)
	require.NoError(f.t, err)
	for _, r := range reports {
		assert.True(f.t, r.ReplayMatches, "replay of %s", r.VarietyName)
		assert.Empty(f.t, r.BatchViolations, "batches of %s", r.VarietyName)
		assert.True(f.t, r.Drift.IsZero(), "drift of %s is %s", r.VarietyName, r.Drift)
	}
}

func TestVarietyService_CreateRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	f.variety("Cotton Lawn")

	_, err := f.varieties.Create(f.ctx, f.tenant, ledger.CreateVarietyInput{Name: "  COTTON LAWN ", Unit: "meters"})
	assert.Equal(t, shared.CodeAlreadyExists, shared.CodeOf(err))

	other := testutil.NewTestUUID("other-tenant")
	_, err = f.varieties.Create(f.ctx, other, ledger.CreateVarietyInput{Name: "Cotton Lawn", Unit: "meters"})
	assert.NoError(t, err, "names are unique per tenant only")
}

func TestSupplyService_RecordSupplyCreatesVarietyByName(t *testing.T) {
	f := newFixture(t)

	b, err := f.supply.RecordSupply(f.ctx, f.tenant, ledger.RecordSupplyInput{
		VarietyName:  "Karandi",
		SupplierName: "Karim Textiles",
		Quantity:     d("25"),
		PricePerItem: d("40"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1000", b.TotalAmount.String())

	page, err := f.varieties.List(f.ctx, f.tenant, inventory.VarietyFilter{Search: "karandi"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "25", page.Items[0].CurrentStock.String())
	require.NotNil(t, page.Items[0].DefaultCostPrice)
	assert.Equal(t, "40", page.Items[0].DefaultCostPrice.String())
	f.assertBalanced()
}

func TestSaleService_AllocatesOldestBatchCoveringQuantity(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Khaddar")
	older := f.batch(v, "Karim Textiles", "10", "10", daysAgo(2))
	newer := f.batch(v, "Noor Mills", "20", "12", daysAgo(1))

	big := f.sell(v, "15", "180", "240")
	require.NotNil(t, big.BatchID)
	assert.Equal(t, newer.ID, *big.BatchID, "older batch cannot cover 15")

	small := f.sell(v, "5", "50", "75")
	require.NotNil(t, small.BatchID)
	assert.Equal(t, older.ID, *small.BatchID)

	assert.Equal(t, "5", f.remaining(older.ID, v))
	assert.Equal(t, "5", f.remaining(newer.ID, v))
	assert.Equal(t, "10", f.currentStock(v))
	f.assertBalanced()
}

func TestSaleService_PlaceholderBatchWhenNoneCovers(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Chiffon")
	existing := f.batch(v, "Karim Textiles", "4", "10", daysAgo(1))

	sale := f.sell(v, "6", "60", "90")
	require.NotNil(t, sale.BatchID)
	assert.NotEqual(t, existing.ID, *sale.BatchID)
	assert.Equal(t, "4", f.currentStock(v), "placeholder supply and sale cancel out")

	batches, err := f.supply.ListBatchesWithStock(f.ctx, f.tenant, v)
	require.NoError(t, err)
	require.Len(t, batches, 1, "placeholder batch is fully consumed")
	assert.Equal(t, existing.ID, batches[0].ID)

	movements, err := f.stock.ListMovements(f.ctx, f.tenant, v, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, movements.Items, 3)
	assert.Equal(t, string(inventory.MovementSale), movements.Items[0].MovementType)
	assert.Equal(t, string(inventory.MovementAutoSupply), movements.Items[1].MovementType)
	f.assertBalanced()
}

func TestSaleService_ValidatesInput(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Silk")

	tests := []struct {
		name string
		in   ledger.RecordSaleInput
		code string
	}{
		{"zero quantity", ledger.RecordSaleInput{VarietyID: &v, Quantity: d("0"), SalespersonName: "Asif"}, shared.CodeInvalidQuantity},
		{"negative total", ledger.RecordSaleInput{VarietyID: &v, Quantity: d("1"), TotalCost: d("-1"), SalespersonName: "Asif"}, shared.CodeInvalidPrice},
		{"unknown payment", ledger.RecordSaleInput{VarietyID: &v, Quantity: d("1"), SalespersonName: "Asif", PaymentStatus: "barter"}, shared.CodeValidation},
		{"loan without customer", ledger.RecordSaleInput{VarietyID: &v, Quantity: d("1"), SalespersonName: "Asif", PaymentStatus: "loan"}, shared.CodeCustomerRequired},
		{"no variety", ledger.RecordSaleInput{Quantity: d("1"), SalespersonName: "Asif"}, shared.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sales.RecordSale(f.ctx, f.tenant, tt.in)
			assert.Equal(t, tt.code, shared.CodeOf(err), "err: %v", err)
		})
	}
	assert.Equal(t, "0", f.currentStock(v))
}

func TestSaleService_RejectBelowCost(t *testing.T) {
	f := newFixture(t, ledger.WithRejectBelowCost(true))
	v := f.variety("Velvet")
	f.batch(v, "Karim Textiles", "10", "100", daysAgo(1))

	_, err := f.sales.RecordSale(f.ctx, f.tenant, ledger.RecordSaleInput{
		VarietyID:       &v,
		Quantity:        d("1"),
		TotalCost:       d("100"),
		TotalSelling:    d("90"),
		SalespersonName: "Asif",
	})
	assert.Equal(t, shared.CodeBelowCost, shared.CodeOf(err))
	assert.Equal(t, "10", f.currentStock(v))
}

func TestSaleService_BelowCostAllowedByDefault(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Velvet")
	f.batch(v, "Karim Textiles", "10", "100", daysAgo(1))

	sale := f.sell(v, "1", "100", "90")
	assert.True(t, sale.BelowCost)
	assert.Equal(t, "-10", sale.Profit.String())
}

func TestSaleService_UpdateSale(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Lawn")
	b := f.batch(v, "Karim Textiles", "50", "10", daysAgo(1))
	sale := f.sell(v, "10", "100", "150")

	qty := d("15")
	cost := d("11")
	updated, err := f.sales.UpdateSale(f.ctx, f.tenant, sale.ID, ledger.UpdateSaleInput{Quantity: &qty, CostPrice: &cost})
	require.NoError(t, err)
	assert.Equal(t, "15", updated.Quantity.String())
	assert.Equal(t, "11", updated.CostPrice.String())
	assert.Equal(t, "35", f.currentStock(v))
	assert.Equal(t, "35", f.remaining(b.ID, v))

	qty = d("5")
	_, err = f.sales.UpdateSale(f.ctx, f.tenant, sale.ID, ledger.UpdateSaleInput{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "45", f.currentStock(v))

	got, err := f.varieties.Get(f.ctx, f.tenant, v)
	require.NoError(t, err)
	require.NotNil(t, got.DefaultCostPrice)
	assert.Equal(t, "11", got.DefaultCostPrice.String())

	batches, err := f.supply.ListBatchesWithStock(f.ctx, f.tenant, v)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "11", batches[0].PricePerItem.String())
	f.assertBalanced()
}

func TestSaleService_UpdateSaleIncreaseBeyondStockChangesNothing(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Lawn")
	b := f.batch(v, "Karim Textiles", "50", "10", daysAgo(1))
	sale := f.sell(v, "10", "100", "150")

	// leave the batch with 40 but the shelf with 2
	_, err := f.stock.AdjustStock(f.ctx, f.tenant, ledger.AdjustStockInput{VarietyID: v, Quantity: d("-38"), Notes: "damaged"})
	require.NoError(t, err)
	before, err := f.stock.ListMovements(f.ctx, f.tenant, v, shared.Filter{})
	require.NoError(t, err)

	qty := d("15")
	_, err = f.sales.UpdateSale(f.ctx, f.tenant, sale.ID, ledger.UpdateSaleInput{Quantity: &qty})
	assert.Equal(t, shared.CodeInsufficientStock, shared.CodeOf(err))

	assert.Equal(t, "2", f.currentStock(v))
	assert.Equal(t, "40", f.remaining(b.ID, v), "batch consumption is rolled back")
	got, err := f.sales.GetSale(f.ctx, f.tenant, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", got.Quantity.String())
	after, err := f.stock.ListMovements(f.ctx, f.tenant, v, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, before.Total, after.Total)
}

func TestSaleService_DeleteSaleWithMissingBatchWarns(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	core, logs := observer.New(zapcore.WarnLevel)
	lg := testutil.NewLedger(t, db, ledger.WithLogger(zap.New(core)))
	ctx, tenant := context.Background(), testutil.TestTenantID()

	v, err := ledger.NewVarietyService(lg).Create(ctx, tenant, ledger.CreateVarietyInput{Name: "Cambric", Unit: "meters"})
	require.NoError(t, err)
	b, err := ledger.NewSupplyService(lg).RecordSupply(ctx, tenant, ledger.RecordSupplyInput{
		VarietyID: &v.ID, SupplierName: "Karim Textiles", Quantity: d("10"), PricePerItem: d("10"),
	})
	require.NoError(t, err)
	saleSvc := ledger.NewSaleService(lg)
	sale, err := saleSvc.RecordSale(ctx, tenant, ledger.RecordSaleInput{
		VarietyID: &v.ID, Quantity: d("4"), TotalCost: d("40"), TotalSelling: d("60"), SalespersonName: "Asif",
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("DELETE FROM supplier_inventory WHERE id = ?", b.ID).Error)

	require.NoError(t, saleSvc.DeleteSale(ctx, tenant, sale.ID))

	got, err := ledger.NewVarietyService(lg).Get(ctx, tenant, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", got.CurrentStock.String())
	warned := logs.FilterMessage("Referenced batch missing, updating variety stock only").All()
	require.Len(t, warned, 1)
	assert.Equal(t, b.ID.String(), warned[0].ContextMap()["batch_id"])
}

func TestLedger_RejectsAmountsFinerThanStored(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Voile")
	b := f.batch(v, "Karim Textiles", "100", "10", daysAgo(1))

	tests := []struct {
		name string
		run  func() error
	}{
		{"sale quantity", func() error {
			_, err := f.sales.RecordSale(f.ctx, f.tenant, ledger.RecordSaleInput{
				VarietyID: &v, Quantity: d("0.00001"), TotalCost: d("0"), TotalSelling: d("0"), SalespersonName: "Asif"})
			return err
		}},
		{"sale quantity that would round up", func() error {
			_, err := f.sales.RecordSale(f.ctx, f.tenant, ledger.RecordSaleInput{
				VarietyID: &v, Quantity: d("0.00005"), TotalCost: d("0"), TotalSelling: d("0"), SalespersonName: "Asif"})
			return err
		}},
		{"sale total", func() error {
			_, err := f.sales.RecordSale(f.ctx, f.tenant, ledger.RecordSaleInput{
				VarietyID: &v, Quantity: d("1"), TotalCost: d("10"), TotalSelling: d("12.00001"), SalespersonName: "Asif"})
			return err
		}},
		{"supply quantity", func() error {
			_, err := f.supply.RecordSupply(f.ctx, f.tenant, ledger.RecordSupplyInput{
				VarietyID: &v, SupplierName: "Noor Mills", Quantity: d("1.00001"), PricePerItem: d("10")})
			return err
		}},
		{"supply price", func() error {
			_, err := f.supply.RecordSupply(f.ctx, f.tenant, ledger.RecordSupplyInput{
				VarietyID: &v, SupplierName: "Noor Mills", Quantity: d("1"), PricePerItem: d("9.99999")})
			return err
		}},
		{"supplier return", func() error {
			_, err := f.supply.RecordReturn(f.ctx, f.tenant, ledger.RecordReturnInput{
				VarietyID: v, SupplierName: "Karim Textiles", Quantity: d("0.00001"), PricePerItem: d("10")})
			return err
		}},
		{"adjustment", func() error {
			_, err := f.stock.AdjustStock(f.ctx, f.tenant, ledger.AdjustStockInput{VarietyID: v, Quantity: d("-0.00001")})
			return err
		}},
		{"consignment issue", func() error {
			_, err := f.consignment.Issue(f.ctx, f.tenant, ledger.IssueInput{
				ShopkeeperName: "Bilal", VarietyID: v, Quantity: d("0.00001"), DeductedFromInventory: true})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, shared.CodeValidation, shared.CodeOf(tt.run()))
		})
	}

	assert.Equal(t, "100", f.currentStock(v))
	assert.Equal(t, "100", f.remaining(b.ID, v))
	movements, err := f.stock.ListMovements(f.ctx, f.tenant, v, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), movements.Total, "only the supply was booked")

	sale := f.sell(v, "2.50000", "25", "30")
	assert.Equal(t, "2.5", sale.Quantity.String(), "trailing zeros are within scale")
	f.assertBalanced()
}

func TestSaleService_DeleteSaleRestoresStockAndDropsLoan(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Denim")
	b := f.batch(v, "Karim Textiles", "20", "50", daysAgo(1))

	sale, err := f.sales.RecordSale(f.ctx, f.tenant, ledger.RecordSaleInput{
		VarietyID:       &v,
		Quantity:        d("4"),
		TotalCost:       d("200"),
		TotalSelling:    d("320"),
		SalespersonName: "Asif",
		PaymentStatus:   "loan",
		CustomerName:    "Nadia",
	})
	require.NoError(t, err)
	loan, err := f.loans.CreateLoan(f.ctx, f.tenant, ledger.CreateLoanInput{SaleID: sale.ID, CustomerName: "Nadia"})
	require.NoError(t, err)

	require.NoError(t, f.sales.DeleteSale(f.ctx, f.tenant, sale.ID))
	assert.Equal(t, "20", f.currentStock(v))
	assert.Equal(t, "20", f.remaining(b.ID, v))

	_, err = f.loans.Get(f.ctx, f.tenant, loan.ID)
	assert.True(t, shared.IsNotFound(err))
	_, err = f.sales.GetSale(f.ctx, f.tenant, sale.ID)
	assert.True(t, shared.IsNotFound(err))
	f.assertBalanced()
}

func TestSaleService_DailySummary(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Organza")
	f.batch(v, "Karim Textiles", "20", "10", daysAgo(1))
	f.sell(v, "2", "20", "30")
	f.sell(v, "3", "30", "60")

	summary, err := f.sales.DailySummary(f.ctx, f.tenant, shared.Today())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SalesCount)
	assert.Equal(t, "90", summary.TotalAmount.String())
	assert.Equal(t, "40", summary.TotalProfit.String())
	assert.Equal(t, "5", summary.TotalQuantity.String())

	yesterday, err := f.sales.DailySummary(f.ctx, f.tenant, daysAgo(1))
	require.NoError(t, err)
	assert.Zero(t, yesterday.SalesCount)
}

func TestSupplyService_DeleteBatch(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Georgette")
	untouched := f.batch(v, "Karim Textiles", "10", "10", daysAgo(2))
	used := f.batch(v, "Noor Mills", "30", "10", daysAgo(1))
	f.sell(v, "12", "120", "180")

	err := f.supply.DeleteBatch(f.ctx, f.tenant, used.ID)
	assert.Equal(t, shared.CodeBatchInUse, shared.CodeOf(err))

	require.NoError(t, f.supply.DeleteBatch(f.ctx, f.tenant, untouched.ID))
	assert.Equal(t, "18", f.currentStock(v))
	f.assertBalanced()
}

func TestSupplyService_Returns(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Linen")
	karim := f.batch(v, "Karim Textiles", "40", "12", daysAgo(2))
	f.batch(v, "Noor Mills", "10", "15", daysAgo(1))

	ret, err := f.supply.RecordReturn(f.ctx, f.tenant, ledger.RecordReturnInput{
		VarietyID:    v,
		SupplierName: "karim textiles",
		Quantity:     d("5"),
		PricePerItem: d("12"),
		Reason:       "torn",
	})
	require.NoError(t, err)
	require.NotNil(t, ret.BatchID)
	assert.Equal(t, karim.ID, *ret.BatchID)
	assert.Equal(t, "60", ret.TotalAmount.String())
	assert.Equal(t, "45", f.currentStock(v))
	assert.Equal(t, "35", f.remaining(karim.ID, v))

	_, err = f.supply.RecordReturn(f.ctx, f.tenant, ledger.RecordReturnInput{
		VarietyID:    v,
		SupplierName: "Unknown Supplier",
		Quantity:     d("1"),
		PricePerItem: d("1"),
	})
	assert.Equal(t, shared.CodeInsufficientStock, shared.CodeOf(err))

	summary, err := f.supply.DailySupplierSummary(f.ctx, f.tenant, shared.Today())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalReturnCount)
	assert.Equal(t, "60", summary.TotalReturnAmount.String())

	require.NoError(t, f.supply.DeleteReturn(f.ctx, f.tenant, ret.ID))
	assert.Equal(t, "50", f.currentStock(v))
	assert.Equal(t, "40", f.remaining(karim.ID, v))
	f.assertBalanced()
}

func TestSupplyService_SupplierWiseSummary(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Cambric")
	today := shared.Today()
	f.batch(v, "Karim Textiles", "10", "10", today)
	f.batch(v, "Karim Textiles", "5", "10", today)
	f.batch(v, "Noor Mills", "2", "50", today)

	totals, err := f.supply.SupplierWiseSummary(f.ctx, f.tenant, today)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	byName := map[string]ledger.SupplierTotals{}
	for _, s := range totals {
		byName[s.SupplierName] = s
	}
	assert.Equal(t, "150", byName["Karim Textiles"].SupplyAmount.String())
	assert.Equal(t, "100", byName["Noor Mills"].SupplyAmount.String())
}

func TestStockService_AdjustStock(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Muslin")
	f.batch(v, "Karim Textiles", "10", "10", daysAgo(1))

	out, err := f.stock.AdjustStock(f.ctx, f.tenant, ledger.AdjustStockInput{VarietyID: v, Quantity: d("3")})
	require.NoError(t, err)
	assert.Equal(t, "13", out.CurrentStock.String())

	_, err = f.stock.AdjustStock(f.ctx, f.tenant, ledger.AdjustStockInput{VarietyID: v, Quantity: d("-14")})
	assert.Equal(t, shared.CodeInsufficientStock, shared.CodeOf(err))

	_, err = f.stock.AdjustStock(f.ctx, f.tenant, ledger.AdjustStockInput{VarietyID: v, Quantity: decimal.Zero})
	assert.Equal(t, shared.CodeInvalidQuantity, shared.CodeOf(err))

	reports, err := f.stock.Reconcile(f.ctx, f.tenant, &v)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].ReplayMatches)
	assert.Equal(t, "3", reports[0].Drift.String(), "adjustments do not touch batches")
}

func TestStockService_LowStock(t *testing.T) {
	f := newFixture(t)
	minLevel := d("5")
	low, err := f.varieties.Create(f.ctx, f.tenant, ledger.CreateVarietyInput{Name: "Voile", Unit: "meters", MinStockLevel: &minLevel})
	require.NoError(t, err)
	healthy, err := f.varieties.Create(f.ctx, f.tenant, ledger.CreateVarietyInput{Name: "Poplin", Unit: "meters", MinStockLevel: &minLevel})
	require.NoError(t, err)
	f.batch(low.ID, "Karim Textiles", "4", "10", daysAgo(1))
	f.batch(healthy.ID, "Karim Textiles", "40", "10", daysAgo(1))

	rows, err := f.stock.ListLowStock(f.ctx, f.tenant)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, low.ID, rows[0].ID)

	status, err := f.stock.StockStatus(f.ctx, f.tenant, low.ID)
	require.NoError(t, err)
	assert.True(t, status.LowStock)
	assert.Equal(t, 1, status.ActiveBatches)
}

func TestConsignmentService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Jamawar")
	b := f.batch(v, "Karim Textiles", "70", "8", daysAgo(1))

	stock, err := f.consignment.Issue(f.ctx, f.tenant, ledger.IssueInput{
		ShopkeeperName:        "Bilal",
		VarietyID:             v,
		Quantity:              d("50"),
		DeductedFromInventory: true,
	})
	require.NoError(t, err)
	require.NotNil(t, stock.BatchID)
	assert.Equal(t, b.ID, *stock.BatchID)
	assert.Equal(t, "20", f.currentStock(v))

	event := func(q string) ledger.ConsignmentEventInput { return ledger.ConsignmentEventInput{Quantity: d(q)} }

	_, err = f.consignment.RecordReturn(f.ctx, f.tenant, stock.ID, event("10"))
	require.NoError(t, err)
	assert.Equal(t, "30", f.currentStock(v))

	out, err := f.consignment.RecordSale(f.ctx, f.tenant, stock.ID, event("20"))
	require.NoError(t, err)
	assert.Equal(t, "20", out.QuantityRemaining.String())
	assert.Equal(t, "30", f.currentStock(v), "shopkeeper sales do not touch inventory")

	_, err = f.consignment.RecordSale(f.ctx, f.tenant, stock.ID, event("21"))
	assert.Equal(t, shared.CodeInsufficientStock, shared.CodeOf(err))

	detail, err := f.consignment.Get(f.ctx, f.tenant, stock.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Sales, 1)
	assert.Len(t, detail.Returns, 1)

	summaries, err := f.consignment.SummaryByShopkeeper(f.ctx, f.tenant)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "20", summaries[0].TotalRemaining.String())

	require.NoError(t, f.consignment.Delete(f.ctx, f.tenant, stock.ID))
	assert.Equal(t, "70", f.currentStock(v), "delete restores issued minus returned")
	assert.Equal(t, "70", f.remaining(b.ID, v))
	f.assertBalanced()
}

func TestConsignmentService_IssueWithoutDeduction(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Kosa")

	stock, err := f.consignment.Issue(f.ctx, f.tenant, ledger.IssueInput{
		ShopkeeperName: "Bilal",
		VarietyID:      v,
		Quantity:       d("15"),
	})
	require.NoError(t, err)
	assert.False(t, stock.DeductedFromInventory)
	assert.Nil(t, stock.BatchID)

	_, err = f.consignment.RecordReturn(f.ctx, f.tenant, stock.ID, ledger.ConsignmentEventInput{Quantity: d("5")})
	require.NoError(t, err)
	assert.Equal(t, "0", f.currentStock(v), "returns of undeducted stock never enter inventory")

	outstanding, err := f.consignment.ListOutstanding(f.ctx, f.tenant, consignment.StockFilter{})
	require.NoError(t, err)
	assert.Len(t, outstanding.Items, 1)

	require.NoError(t, f.consignment.Delete(f.ctx, f.tenant, stock.ID))
	assert.Equal(t, "0", f.currentStock(v))
}

func TestConsignmentService_IssueNeedsStock(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Tissue")
	f.batch(v, "Karim Textiles", "6", "8", daysAgo(2))
	f.batch(v, "Noor Mills", "6", "8", daysAgo(1))

	_, err := f.consignment.Issue(f.ctx, f.tenant, ledger.IssueInput{
		ShopkeeperName:        "Bilal",
		VarietyID:             v,
		Quantity:              d("10"),
		DeductedFromInventory: true,
	})
	assert.Equal(t, shared.CodeInsufficientStock, shared.CodeOf(err), "no single batch holds 10")
	assert.Equal(t, "12", f.currentStock(v))
}

func TestLoanService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Banarsi")
	f.batch(v, "Karim Textiles", "10", "100", daysAgo(3))

	paidSale := f.sell(v, "1", "100", "150")
	_, err := f.loans.CreateLoan(f.ctx, f.tenant, ledger.CreateLoanInput{SaleID: paidSale.ID, CustomerName: "Nadia"})
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))

	sale, err := f.sales.RecordSale(f.ctx, f.tenant, ledger.RecordSaleInput{
		VarietyID:       &v,
		Quantity:        d("3"),
		TotalCost:       d("300"),
		TotalSelling:    d("450"),
		SalespersonName: "Asif",
		PaymentStatus:   "loan",
		CustomerName:    "Nadia",
	})
	require.NoError(t, err)

	due := daysAgo(1)
	loan, err := f.loans.CreateLoan(f.ctx, f.tenant, ledger.CreateLoanInput{SaleID: sale.ID, CustomerName: "Nadia", DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, string(sales.LoanPending), loan.Status)

	overdue, err := f.loans.ListOverdue(f.ctx, f.tenant, shared.Today())
	require.NoError(t, err)
	assert.Len(t, overdue, 1)

	loan, err = f.loans.RecordPayment(f.ctx, f.tenant, loan.ID, ledger.RecordPaymentInput{Amount: d("200")})
	require.NoError(t, err)
	assert.Equal(t, string(sales.LoanPartial), loan.Status)

	_, err = f.loans.RecordPayment(f.ctx, f.tenant, loan.ID, ledger.RecordPaymentInput{Amount: d("251")})
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))

	loan, err = f.loans.RecordPayment(f.ctx, f.tenant, loan.ID, ledger.RecordPaymentInput{Amount: d("250")})
	require.NoError(t, err)
	assert.Equal(t, string(sales.LoanPaid), loan.Status)
	assert.True(t, loan.AmountRemaining.IsZero())

	_, err = f.loans.RecordPayment(f.ctx, f.tenant, loan.ID, ledger.RecordPaymentInput{Amount: d("1")})
	assert.Equal(t, shared.CodeLoanAlreadyPaid, shared.CodeOf(err))

	overdue, err = f.loans.ListOverdue(f.ctx, f.tenant, shared.Today())
	require.NoError(t, err)
	assert.Empty(t, overdue, "paid loans are never overdue")

	byStatus, err := f.loans.SummaryByStatus(f.ctx, f.tenant)
	require.NoError(t, err)
	require.NotEmpty(t, byStatus)

	byCustomer, err := f.loans.SummaryByCustomer(f.ctx, f.tenant)
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, "450", byCustomer[0].AmountPaid.String())

	require.NoError(t, f.loans.DeleteLoan(f.ctx, f.tenant, loan.ID))
	got, err := f.sales.GetSale(f.ctx, f.tenant, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, string(sales.PaymentPaid), got.PaymentStatus, "deleting the loan settles the sale")
}

type countingRecorder struct {
	mu        sync.Mutex
	movements map[inventory.MovementType]int
	sales     int
}

func (r *countingRecorder) MovementRecorded(_ context.Context, t inventory.MovementType, _ decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.movements == nil {
		r.movements = map[inventory.MovementType]int{}
	}
	r.movements[t]++
}

func (r *countingRecorder) SaleRecorded(context.Context, decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales++
}

func TestLedger_RecorderSeesCommittedWorkOnly(t *testing.T) {
	rec := &countingRecorder{}
	f := newFixture(t, ledger.WithRecorder(rec))
	v := f.variety("Rayon")
	f.batch(v, "Karim Textiles", "5", "10", daysAgo(1))
	f.sell(v, "2", "20", "30")

	_, err := f.stock.AdjustStock(f.ctx, f.tenant, ledger.AdjustStockInput{VarietyID: v, Quantity: d("-100")})
	require.Error(t, err)

	assert.Equal(t, 1, rec.movements[inventory.MovementSupply])
	assert.Equal(t, 1, rec.movements[inventory.MovementSale])
	assert.Zero(t, rec.movements[inventory.MovementManualAdjustment])
	assert.Equal(t, 1, rec.sales)
}

type fakeLocker struct {
	err      error
	locked   []uuid.UUID
	released int
}

func (l *fakeLocker) Lock(_ context.Context, tenantID uuid.UUID) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, tenantID)
	return func() { l.released++ }, nil
}

func TestLedger_WritesHoldTenantLock(t *testing.T) {
	locker := &fakeLocker{}
	f := newFixture(t, ledger.WithLocker(locker))
	v := f.variety("Satin")
	f.batch(v, "Karim Textiles", "5", "10", daysAgo(1))

	require.Len(t, locker.locked, 1)
	assert.Equal(t, f.tenant, locker.locked[0])
	assert.Equal(t, 1, locker.released)

	locker.err = shared.NewDomainError(shared.CodeConcurrencyConflict, "busy")
	_, err := f.stock.AdjustStock(f.ctx, f.tenant, ledger.AdjustStockInput{VarietyID: v, Quantity: d("1")})
	assert.Equal(t, shared.CodeConcurrencyConflict, shared.CodeOf(err))
	assert.Equal(t, "5", f.currentStock(v))
}

func TestLedger_TenantIsolation(t *testing.T) {
	f := newFixture(t)
	v := f.variety("Lawn")
	f.batch(v, "Karim Textiles", "5", "10", daysAgo(1))

	other := testutil.NewTestUUID("other-tenant")
	_, err := f.sales.RecordSale(f.ctx, other, ledger.RecordSaleInput{
		VarietyID:       &v,
		Quantity:        d("1"),
		TotalCost:       d("10"),
		TotalSelling:    d("15"),
		SalespersonName: "Asif",
	})
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	assert.Equal(t, "5", f.currentStock(v))
}
