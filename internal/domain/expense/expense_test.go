package expense

import (
	"testing"
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpense(t *testing.T) {
	e, err := NewExpense(uuid.New(), CategoryRent, decimal.NewFromInt(12000), time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), " March rent ")
	require.NoError(t, err)
	assert.Equal(t, "March rent", e.Description)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), e.ExpenseDate)

	_, err = NewExpense(uuid.New(), Category("fuel"), decimal.NewFromInt(1), time.Now(), "")
	assert.True(t, shared.IsValidation(err))

	_, err = NewExpense(uuid.New(), CategoryOther, decimal.Zero, time.Now(), "")
	assert.True(t, shared.IsValidation(err))
}
