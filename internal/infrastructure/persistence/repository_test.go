package persistence_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/expense"
	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/clothshop/backend/internal/infrastructure/persistence"
	"github.com/clothshop/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVariety(t *testing.T, tenant uuid.UUID, name string, stock int64, minLevel *int64) *inventory.Variety {
	t.Helper()
	v, err := inventory.NewVariety(tenant, name, inventory.UnitMeters)
	require.NoError(t, err)
	v.CurrentStock = decimal.NewFromInt(stock)
	if minLevel != nil {
		m := decimal.NewFromInt(*minLevel)
		v.MinStockLevel = &m
	}
	return v
}

func TestGormVarietyRepository_FindByIDForUpdateLocksRow(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	repo := persistence.NewGormVarietyRepository(mockDB.DB)
	tenant, id := testutil.TestTenantID(), uuid.New()

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "name_key", "current_stock", "version"}).
		AddRow(id.String(), tenant.String(), "Lawn", "lawn", "12.5", 3)
	mockDB.Mock.ExpectQuery(`SELECT \* FROM "cloth_varieties" WHERE .* FOR UPDATE`).
		WillReturnRows(rows)

	v, err := repo.FindByIDForUpdate(context.Background(), tenant, id)
	require.NoError(t, err)
	assert.Equal(t, "Lawn", v.Name)
	assert.Equal(t, "12.5", v.CurrentStock.String())
	assert.Equal(t, 3, v.Version)
	mockDB.ExpectationsWereMet(t)
}

func TestGormVarietyRepository_FindByIDNotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	repo := persistence.NewGormVarietyRepository(mockDB.DB)

	mockDB.Mock.ExpectQuery(`SELECT \* FROM "cloth_varieties"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), testutil.TestTenantID(), uuid.New())
	assert.True(t, shared.IsNotFound(err))
	mockDB.ExpectationsWereMet(t)
}

func TestGormVarietyRepository_SaveWithLockDetectsStaleVersion(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	repo := persistence.NewGormVarietyRepository(mockDB.DB)
	v := newVariety(t, testutil.TestTenantID(), "Lawn", 10, nil)
	v.Version = 4

	mockDB.Mock.ExpectExec(`UPDATE "cloth_varieties" SET .* WHERE .*version = \$`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.SaveWithLock(context.Background(), v)
	assert.Equal(t, shared.CodeOptimisticLock, shared.CodeOf(err))
	assert.Equal(t, 4, v.Version, "version is untouched on failure")

	mockDB.Mock.ExpectExec(`UPDATE "cloth_varieties" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SaveWithLock(context.Background(), v))
	assert.Equal(t, 5, v.Version)
	mockDB.ExpectationsWereMet(t)
}

func TestGormBatchRepository_FindAvailableForUpdateOrdersOldestFirst(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	repo := persistence.NewGormBatchRepository(mockDB.DB)

	older, newer := uuid.New(), uuid.New()
	rows := sqlmock.NewRows([]string{"id", "supplier_name", "quantity_remaining"}).
		AddRow(older.String(), "Karim Textiles", "4").
		AddRow(newer.String(), "Noor Mills", "9")
	mockDB.Mock.ExpectQuery(`FROM "supplier_inventory" WHERE .*quantity_remaining > 0.* ORDER BY supply_date ASC.* FOR UPDATE`).
		WillReturnRows(rows)

	batches, err := repo.FindAvailableForUpdate(context.Background(), testutil.TestTenantID(), uuid.New())
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, older, batches[0].ID)
	mockDB.ExpectationsWereMet(t)
}

func TestSupplyService_DeleteBatchLocksVarietyBeforeBatch(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	lg := ledger.New(persistence.NewGormTransactionScope(mockDB.DB), persistence.NewLedgerRepositories(mockDB.DB))
	tenant, varietyID, batchID := testutil.TestTenantID(), uuid.New(), uuid.New()

	batchRow := func(used, remaining string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "tenant_id", "variety_id", "supplier_name", "quantity",
			"quantity_used", "quantity_remaining", "quantity_returned", "version"}).
			AddRow(batchID.String(), tenant.String(), varietyID.String(), "Karim Textiles", "10", used, remaining, "0", 1)
	}

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectQuery(`FROM "supplier_inventory" WHERE .* LIMIT (\$\d+|1)$`).
		WillReturnRows(batchRow("0", "10"))
	mockDB.Mock.ExpectQuery(`FROM "cloth_varieties" WHERE .* FOR UPDATE$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "name_key", "current_stock", "version"}).
			AddRow(varietyID.String(), tenant.String(), "Lawn", "lawn", "10", 2))
	// used by a sale committed after the unlocked read
	mockDB.Mock.ExpectQuery(`FROM "supplier_inventory" WHERE .* FOR UPDATE$`).
		WillReturnRows(batchRow("2", "8"))
	mockDB.Mock.ExpectRollback()

	err := ledger.NewSupplyService(lg).DeleteBatch(context.Background(), tenant, batchID)
	assert.Equal(t, shared.CodeBatchInUse, shared.CodeOf(err))
	mockDB.ExpectationsWereMet(t)
}

func TestGormTransactionScope_DeadlockIsConflict(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)

	for _, code := range []string{"40P01", "40001", "55P03"} {
		err := scope.Execute(context.Background(), func(ledger.Repositories) error {
			return fmt.Errorf("lock batch: %w", &pgconn.PgError{Code: code, Message: "deadlock detected"})
		})
		assert.Equal(t, shared.CodeConcurrencyConflict, shared.CodeOf(err), code)
	}

	other := &pgconn.PgError{Code: "23503"}
	err := scope.Execute(context.Background(), func(ledger.Repositories) error { return other })
	assert.ErrorIs(t, err, other)
	assert.Empty(t, shared.CodeOf(err))
}

func TestGormVarietyRepository_FindAll(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := persistence.NewGormVarietyRepository(db)
	ctx := context.Background()
	tenant := testutil.TestTenantID()
	twenty := int64(20)

	for _, v := range []*inventory.Variety{
		newVariety(t, tenant, "Lawn Print", 50, &twenty),
		newVariety(t, tenant, "Silk", 5, &twenty),
		newVariety(t, tenant, "Plain Lawn", 20, &twenty),
		newVariety(t, tenant, "Cotton", 0, nil),
		newVariety(t, uuid.New(), "Lawn Other Shop", 0, nil),
	} {
		require.NoError(t, repo.Create(ctx, v))
	}

	t.Run("search is case-insensitive and tenant scoped", func(t *testing.T) {
		got, total, err := repo.FindAll(ctx, tenant, inventory.VarietyFilter{Search: "LAWN"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, got, 2)
		assert.Equal(t, "Lawn Print", got[0].Name, "ordered by name")
	})

	t.Run("low stock includes the boundary", func(t *testing.T) {
		got, total, err := repo.FindAll(ctx, tenant, inventory.VarietyFilter{LowStock: true})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		names := []string{got[0].Name, got[1].Name}
		assert.ElementsMatch(t, []string{"Silk", "Plain Lawn"}, names)
	})

	t.Run("paging keeps the total", func(t *testing.T) {
		got, total, err := repo.FindAll(ctx, tenant, inventory.VarietyFilter{Filter: shared.Filter{Page: 2, PageSize: 3}})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, got, 1)
	})

	t.Run("lowest stock first", func(t *testing.T) {
		got, err := repo.FindLowStock(ctx, tenant)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Silk", got[0].Name)
	})
}

func TestGormVarietyRepository_CreateDuplicateName(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := persistence.NewGormVarietyRepository(db)
	tenant := testutil.TestTenantID()

	require.NoError(t, repo.Create(context.Background(), newVariety(t, tenant, "Lawn", 0, nil)))
	err := repo.Create(context.Background(), newVariety(t, tenant, "LAWN", 0, nil))
	assert.Equal(t, shared.CodeAlreadyExists, shared.CodeOf(err))
}

func TestGormMovementRepository_AppendRejectsTakenSequence(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := persistence.NewGormMovementRepository(db)
	ctx := context.Background()
	v := newVariety(t, testutil.TestTenantID(), "Lawn", 0, nil)

	first, err := v.Apply(inventory.MovementSupply, decimal.NewFromInt(10), inventory.NoReference, shared.Today(), "")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, first))

	dup := *first
	dup.ID = uuid.New()
	err = repo.Append(ctx, &dup)
	assert.Equal(t, shared.CodeConcurrencyConflict, shared.CodeOf(err))

	second, err := v.Apply(inventory.MovementManualAdjustment, decimal.NewFromInt(-4), inventory.NoReference, shared.Today(), "count")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, second))

	all, err := repo.FindAllByVariety(ctx, v.TenantID, v.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "6", all[1].StockAfter.String())

	page, total, err := repo.FindByVariety(ctx, v.TenantID, v.ID, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, second.Sequence, page[0].Sequence, "newest first")
}

func TestGormExpenseRepository_FindByDatesIsInclusive(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := persistence.NewGormExpenseRepository(db)
	ctx := context.Background()
	tenant := testutil.TestTenantID()

	for _, day := range []int{29, 1, 31} {
		month := time.March
		if day == 29 {
			month = time.February
		}
		e, err := expense.NewExpense(tenant, expense.CategoryUtilities, decimal.NewFromInt(10),
			time.Date(2024, month, day, 18, 30, 0, 0, time.UTC), "")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, e))
	}

	march, err := repo.FindByDates(ctx, tenant, shared.MonthRange(2024, time.March))
	require.NoError(t, err)
	assert.Len(t, march, 2)

	lastDay, err := repo.FindByDates(ctx, tenant, shared.DayRange(time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Len(t, lastDay, 1)
}

func TestGormVarietyRepository_DeleteRemovesHistory(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	lg := testutil.NewLedger(t, db)
	ctx := context.Background()
	tenant := testutil.TestTenantID()

	v, err := ledger.NewVarietyService(lg).Create(ctx, tenant, ledger.CreateVarietyInput{Name: "Lawn", Unit: "meters"})
	require.NoError(t, err)
	_, err = ledger.NewSupplyService(lg).RecordSupply(ctx, tenant, ledger.RecordSupplyInput{
		VarietyID: &v.ID, SupplierName: "Karim Textiles", Quantity: decimal.NewFromInt(30), PricePerItem: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	_, err = ledger.NewSaleService(lg).RecordSale(ctx, tenant, ledger.RecordSaleInput{
		VarietyID: &v.ID, Quantity: decimal.NewFromInt(3), TotalCost: decimal.NewFromInt(15), TotalSelling: decimal.NewFromInt(24), SalespersonName: "Asif",
	})
	require.NoError(t, err)

	repo := persistence.NewGormVarietyRepository(db)
	require.NoError(t, repo.Delete(ctx, tenant, v.ID))

	for _, table := range []string{"inventory_movements", "supplier_inventory", "sales"} {
		var n int64
		require.NoError(t, db.Table(table).Where("variety_id = ?", v.ID).Count(&n).Error)
		assert.Zero(t, n, table)
	}
	assert.True(t, shared.IsNotFound(repo.Delete(ctx, tenant, v.ID)))
}
