package dto

import (
	"net/http"

	"github.com/clothshop/backend/internal/domain/shared"
)

// Transport error codes. Domain errors keep their own codes (see shared.Code*).
const (
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidation         = shared.CodeValidation
	ErrCodeNotFound           = shared.CodeNotFound
	ErrCodeUnauthorized       = shared.CodeUnauthorized
	ErrCodeDuplicateRequest   = shared.CodeDuplicateRequest
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeServiceUnavailable = shared.CodeServiceUnavailable
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:           http.StatusBadRequest,
	shared.CodeValidation:       http.StatusBadRequest,
	shared.CodeInvalidInput:     http.StatusBadRequest,
	shared.CodeInvalidQuantity:  http.StatusBadRequest,
	shared.CodeInvalidPrice:     http.StatusBadRequest,
	shared.CodeCustomerRequired: http.StatusBadRequest,
	shared.CodeBelowCost:        http.StatusBadRequest,

	shared.CodeUnauthorized: http.StatusUnauthorized,
	shared.CodeNotFound:     http.StatusNotFound,

	// Conflicts -> 409
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeOptimisticLock:      http.StatusConflict,
	shared.CodeDuplicateRequest:    http.StatusConflict,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Ledger rule errors -> 422 Unprocessable Entity
	shared.CodeInsufficientStock:  http.StatusUnprocessableEntity,
	shared.CodeInvariantViolation: http.StatusUnprocessableEntity,
	shared.CodeInvalidState:       http.StatusUnprocessableEntity,
	shared.CodeBatchInUse:         http.StatusUnprocessableEntity,
	shared.CodeLoanAlreadyPaid:    http.StatusUnprocessableEntity,

	shared.CodeServiceUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode returns code when the API knows it and INTERNAL_ERROR otherwise
func NormalizeErrorCode(code string) string {
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}
