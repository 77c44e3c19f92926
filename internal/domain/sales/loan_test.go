package sales

import (
	"testing"
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomerLoan(t *testing.T) {
	t.Run("only for loan sales", func(t *testing.T) {
		s := newTestSale(t, PaymentPaid, "")
		_, err := NewCustomerLoan(s, "Meena", "", s.TotalAmount(), nil, "")
		assert.True(t, shared.IsInvalidState(err))
	})

	t.Run("opens pending loan dated on the sale", func(t *testing.T) {
		s := newTestSale(t, PaymentLoan, "Meena")
		loan, err := NewCustomerLoan(s, "Meena", "98450", s.TotalAmount(), nil, "")
		require.NoError(t, err)
		assert.Equal(t, LoanPending, loan.Status)
		assert.Equal(t, s.SaleDate, loan.LoanDate)
		assert.True(t, loan.AmountRemaining.Equal(dec("2400")))
		assert.Equal(t, "98450", *loan.CustomerPhone)
	})
}

func TestCustomerLoan_ApplyPayment(t *testing.T) {
	s := newTestSale(t, PaymentLoan, "Meena")
	loan, err := NewCustomerLoan(s, "Meena", "", dec("1000"), nil, "")
	require.NoError(t, err)
	day := time.Now()

	_, err = loan.ApplyPayment(dec("1000.01"), day, "cash", "")
	assert.True(t, shared.IsValidation(err))

	_, err = loan.ApplyPayment(dec("0.00001"), day, "cash", "")
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	assert.True(t, loan.AmountPaid.IsZero())

	p, err := loan.ApplyPayment(dec("400"), day, "cash", "")
	require.NoError(t, err)
	assert.Equal(t, loan.ID, p.LoanID)
	assert.Equal(t, LoanPartial, loan.Status)

	_, err = loan.ApplyPayment(dec("600"), day, "upi", "")
	require.NoError(t, err)
	assert.Equal(t, LoanPaid, loan.Status)
	assert.True(t, loan.AmountRemaining.IsZero())
	assert.True(t, loan.AmountPaid.Add(loan.AmountRemaining).Equal(loan.TotalLoanAmount))

	_, err = loan.ApplyPayment(dec("1"), day, "", "")
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeLoanAlreadyPaid, de.Code)
}

func TestCustomerLoan_IsOverdue(t *testing.T) {
	s := newTestSale(t, PaymentLoan, "Meena")
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	loan, err := NewCustomerLoan(s, "Meena", "", dec("10"), &due, "")
	require.NoError(t, err)

	assert.False(t, loan.IsOverdue(due))
	assert.True(t, loan.IsOverdue(due.AddDate(0, 0, 1)))

	loan.Status = LoanPaid
	assert.False(t, loan.IsOverdue(due.AddDate(0, 0, 1)))
}
