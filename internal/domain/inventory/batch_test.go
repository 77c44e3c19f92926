package inventory

import (
	"testing"
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBatch(t *testing.T, qty string, day time.Time) *Batch {
	t.Helper()
	b, err := NewBatch(uuid.New(), uuid.New(), "Ravi Traders", dec(qty), dec("50"), day)
	require.NoError(t, err)
	return b
}

func TestNewBatch(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("fully available on creation", func(t *testing.T) {
		b := newTestBatch(t, "100", day)
		assert.True(t, b.QuantityRemaining.Equal(dec("100")))
		assert.True(t, b.TotalAmount.Equal(dec("5000")))
		assert.True(t, b.IsUntouched())
		assert.NoError(t, b.CheckConservation())
	})

	t.Run("validates input", func(t *testing.T) {
		_, err := NewBatch(uuid.New(), uuid.New(), "", dec("1"), dec("1"), day)
		assert.True(t, shared.IsValidation(err))

		_, err = NewBatch(uuid.New(), uuid.New(), "X", dec("0"), dec("1"), day)
		assert.True(t, shared.IsValidation(err))

		_, err = NewBatch(uuid.New(), uuid.New(), "X", dec("1"), dec("-1"), day)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rejects values finer than four places", func(t *testing.T) {
		_, err := NewBatch(uuid.New(), uuid.New(), "X", dec("0.00005"), dec("1"), day)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))

		_, err = NewBatch(uuid.New(), uuid.New(), "X", dec("1"), dec("0.12345"), day)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))

		b := newTestBatch(t, "100", day)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(b.Consume(dec("0.00001"))))
		assert.True(t, b.QuantityRemaining.Equal(dec("100")))
		assert.NoError(t, b.CheckConservation())
	})

	t.Run("auto batch uses placeholder supplier", func(t *testing.T) {
		b, err := NewAutoBatch(uuid.New(), uuid.New(), dec("3"), dec("12.5"), day)
		require.NoError(t, err)
		assert.Equal(t, AutoSupplierName, b.SupplierName)
		assert.True(t, b.AutoCreated)
	})
}

func TestBatch_Counters(t *testing.T) {
	b := newTestBatch(t, "100", time.Now())

	require.NoError(t, b.Consume(dec("30")))
	require.NoError(t, b.ReturnToSupplier(dec("20")))
	assert.True(t, b.QuantityRemaining.Equal(dec("50")))
	assert.NoError(t, b.CheckConservation())
	assert.False(t, b.IsUntouched())

	err := b.Consume(dec("50.0001"))
	assert.True(t, shared.IsInsufficientStock(err))

	err = b.ReturnToSupplier(dec("51"))
	assert.True(t, shared.IsInsufficientStock(err))

	err = b.Release(dec("31"))
	assert.True(t, shared.IsInvariantViolation(err))

	require.NoError(t, b.Release(dec("30")))
	require.NoError(t, b.UndoReturn(dec("20")))
	assert.True(t, b.QuantityRemaining.Equal(dec("100")))
	assert.True(t, b.IsUntouched())
	assert.NoError(t, b.CheckConservation())
}

func TestBatch_Reprice(t *testing.T) {
	b := newTestBatch(t, "4", time.Now())
	require.NoError(t, b.Reprice(dec("12.25")))
	assert.True(t, b.TotalAmount.Equal(dec("49")))
}

func TestBatch_CheckConservation_DetectsDrift(t *testing.T) {
	b := newTestBatch(t, "10", time.Now())
	b.QuantityRemaining = dec("9")
	assert.True(t, shared.IsInvariantViolation(b.CheckConservation()))
}
