package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches by code regardless of message", func(t *testing.T) {
		err := NewDomainError(CodeNotFound, "Variety not found")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrInsufficientStock))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("record sale: %w", Errorf(CodeInsufficientStock, "need %d", 5))
		assert.True(t, errors.Is(err, ErrInsufficientStock))
		assert.True(t, IsInsufficientStock(err))
	})

	t.Run("plain errors never match", func(t *testing.T) {
		assert.False(t, errors.Is(errors.New("boom"), ErrNotFound))
		assert.False(t, IsNotFound(errors.New("boom")))
	})
}

func TestErrorFamilies(t *testing.T) {
	tests := []struct {
		code         string
		validation   bool
		conflict     bool
		invalidState bool
	}{
		{CodeInvalidQuantity, true, false, false},
		{CodeCustomerRequired, true, false, false},
		{CodeBelowCost, true, false, false},
		{CodeOptimisticLock, false, true, false},
		{CodeDuplicateRequest, false, true, false},
		{CodeBatchInUse, false, false, true},
		{CodeLoanAlreadyPaid, false, false, true},
		{CodeInsufficientStock, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := NewDomainError(tt.code, "x")
			assert.Equal(t, tt.validation, IsValidation(err))
			assert.Equal(t, tt.conflict, IsConflict(err))
			assert.Equal(t, tt.invalidState, IsInvalidState(err))
		})
	}
}
