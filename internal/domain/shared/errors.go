package shared

import (
	"errors"
	"fmt"
)

// Error codes shared across the ledger
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidQuantity     = "INVALID_QUANTITY"
	CodeInvalidPrice        = "INVALID_PRICE"
	CodeCustomerRequired    = "CUSTOMER_REQUIRED"
	CodeBelowCost           = "BELOW_COST"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeOptimisticLock      = "OPTIMISTIC_LOCK_FAILED"
	CodeDuplicateRequest    = "DUPLICATE_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidState        = "INVALID_STATE"
	CodeBatchInUse          = "BATCH_IN_USE"
	CodeLoanAlreadyPaid     = "LOAN_ALREADY_PAID"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeInvariantViolation  = "INVARIANT_VIOLATION"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so
// errors.Is(err, ErrNotFound) holds for a NotFound with a custom message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a domain error with a formatted message
func Errorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInvariantViolation  = NewDomainError(CodeInvariantViolation, "Ledger invariant violated")
)

var validationCodes = map[string]bool{
	CodeInvalidInput:     true,
	CodeValidation:       true,
	CodeInvalidQuantity:  true,
	CodeInvalidPrice:     true,
	CodeCustomerRequired: true,
	CodeBelowCost:        true,
}

var conflictCodes = map[string]bool{
	CodeAlreadyExists:       true,
	CodeConcurrencyConflict: true,
	CodeOptimisticLock:      true,
	CodeDuplicateRequest:    true,
}

var invalidStateCodes = map[string]bool{
	CodeInvalidState:    true,
	CodeBatchInUse:      true,
	CodeLoanAlreadyPaid: true,
}

// CodeOf returns the code of a DomainError in err's chain, or "" for other errors
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsNotFound reports whether err is a NotFound domain error
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsInsufficientStock reports whether err is an InsufficientStock domain error
func IsInsufficientStock(err error) bool {
	return CodeOf(err) == CodeInsufficientStock
}

// IsInvariantViolation reports whether err is an InvariantViolation domain error
func IsInvariantViolation(err error) bool {
	return CodeOf(err) == CodeInvariantViolation
}

// IsValidation reports whether err belongs to the validation family
func IsValidation(err error) bool {
	return validationCodes[CodeOf(err)]
}

// IsConflict reports whether err belongs to the conflict family
func IsConflict(err error) bool {
	return conflictCodes[CodeOf(err)]
}

// IsInvalidState reports whether err belongs to the invalid-state family
func IsInvalidState(err error) bool {
	return invalidStateCodes[CodeOf(err)]
}
