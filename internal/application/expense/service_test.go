package expense_test

import (
	"context"
	"testing"
	"time"

	appexpense "github.com/clothshop/backend/internal/application/expense"
	"github.com/clothshop/backend/internal/domain/expense"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/clothshop/backend/internal/infrastructure/persistence"
	"github.com/clothshop/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) *appexpense.Service {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return appexpense.NewService(persistence.NewGormExpenseRepository(db), zap.NewNop())
}

func TestService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	tenant := testutil.TestTenantID()
	today := shared.Today()

	for _, in := range []appexpense.CreateInput{
		{Category: "rent", Amount: decimal.NewFromInt(500), ExpenseDate: today},
		{Category: "utilities", Amount: decimal.NewFromInt(80), ExpenseDate: today, Description: "electricity"},
		{Category: "rent", Amount: decimal.NewFromInt(20), ExpenseDate: today.AddDate(0, 0, -3)},
	} {
		_, err := svc.Create(ctx, tenant, in)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, tenant, expense.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)

	rent, err := svc.List(ctx, tenant, expense.Filter{Category: expense.CategoryRent})
	require.NoError(t, err)
	assert.Len(t, rent.Items, 2)

	recent, err := svc.List(ctx, tenant, expense.Filter{Dates: shared.DayRange(today)})
	require.NoError(t, err)
	assert.Len(t, recent.Items, 2)

	_, err = svc.List(ctx, tenant, expense.Filter{Category: "parties"})
	require.Error(t, err)
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))

	other, err := svc.List(ctx, testutil.NewTestUUID("other-tenant"), expense.Filter{})
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}

func TestService_CreateValidates(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	tenant := testutil.TestTenantID()

	tests := []struct {
		name string
		in   appexpense.CreateInput
		code string
	}{
		{"unknown category", appexpense.CreateInput{Category: "parties", Amount: decimal.NewFromInt(1)}, shared.CodeValidation},
		{"zero amount", appexpense.CreateInput{Category: "rent", Amount: decimal.Zero}, shared.CodeInvalidPrice},
		{"negative amount", appexpense.CreateInput{Category: "rent", Amount: decimal.NewFromInt(-5)}, shared.CodeInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tenant, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.code, shared.CodeOf(err))
		})
	}
}

func TestService_CreateDefaultsToToday(t *testing.T) {
	svc := newService(t)
	out, err := svc.Create(context.Background(), testutil.TestTenantID(), appexpense.CreateInput{
		Category: "other",
		Amount:   decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	assert.True(t, out.ExpenseDate.Equal(shared.Today()))
}

func TestService_Summaries(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	tenant := testutil.TestTenantID()
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	add := func(category string, amount int64, date time.Time) {
		_, err := svc.Create(ctx, tenant, appexpense.CreateInput{Category: category, Amount: decimal.NewFromInt(amount), ExpenseDate: date})
		require.NoError(t, err)
	}
	add("salaries", 300, day)
	add("rent", 100, day)
	add("salaries", 50, day)
	add("taxes", 70, day.AddDate(0, 0, 1))

	daily, err := svc.DailySummary(ctx, tenant, day)
	require.NoError(t, err)
	assert.Equal(t, 3, daily.Count)
	assert.Equal(t, "450", daily.Total.String())
	require.Len(t, daily.ByCategory, 2)
	assert.Equal(t, "salaries", daily.ByCategory[0].Category)
	assert.Equal(t, "350", daily.ByCategory[0].Amount.String())
	assert.Equal(t, 2, daily.ByCategory[0].Count)

	month, err := svc.Summarize(ctx, tenant, shared.MonthRange(2024, time.March))
	require.NoError(t, err)
	assert.Equal(t, 4, month.Count)
	assert.Equal(t, "520", month.Total.String())
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	tenant := testutil.TestTenantID()

	out, err := svc.Create(ctx, tenant, appexpense.CreateInput{Category: "maintenance", Amount: decimal.NewFromInt(9)})
	require.NoError(t, err)

	err = svc.Delete(ctx, testutil.NewTestUUID("other-tenant"), out.ID)
	assert.True(t, shared.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, tenant, out.ID))
	assert.True(t, shared.IsNotFound(svc.Delete(ctx, tenant, out.ID)))
}
