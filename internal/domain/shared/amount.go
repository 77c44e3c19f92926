package shared

import "github.com/shopspring/decimal"

// AmountScale is the number of decimal places stored for quantities and money
const AmountScale = 4

// CheckScale rejects a value that has more significant decimal places than
// the ledger stores. Trailing zeros are fine.
func CheckScale(field string, d decimal.Decimal) error {
	if d.Equal(d.Truncate(AmountScale)) {
		return nil
	}
	return Errorf(CodeValidation, "%s %s has more than %d decimal places", field, d, AmountScale)
}
