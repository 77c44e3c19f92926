package sales

import "github.com/clothshop/backend/internal/domain/shared"

// PaymentStatus records how a sale was settled
type PaymentStatus string

const (
	PaymentPaid PaymentStatus = "paid"
	PaymentLoan PaymentStatus = "loan"
)

// IsValid returns true if the status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPaid, PaymentLoan:
		return true
	}
	return false
}

// ParsePaymentStatus parses a payment status, defaulting to paid when empty
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	if s == "" {
		return PaymentPaid, nil
	}
	p := PaymentStatus(s)
	if !p.IsValid() {
		return "", shared.Errorf(shared.CodeValidation, "Unknown payment status %q", s)
	}
	return p, nil
}

// LoanStatus is the repayment state of a customer loan
type LoanStatus string

const (
	LoanPending LoanStatus = "pending"
	LoanPartial LoanStatus = "partial"
	LoanPaid    LoanStatus = "paid"
)

// IsValid returns true if the status is known
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanPending, LoanPartial, LoanPaid:
		return true
	}
	return false
}
