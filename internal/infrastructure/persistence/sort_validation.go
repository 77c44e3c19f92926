package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// VarietySortFields contains allowed sort fields for varieties
var VarietySortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"name_key":      true,
	"current_stock": true,
}

// BatchSortFields contains allowed sort fields for supplier batches
var BatchSortFields = map[string]bool{
	"created_at":         true,
	"supply_date":        true,
	"supplier_name":      true,
	"quantity":           true,
	"quantity_remaining": true,
	"price_per_item":     true,
}

// SupplierReturnSortFields contains allowed sort fields for supplier returns
var SupplierReturnSortFields = map[string]bool{
	"created_at":    true,
	"return_date":   true,
	"supplier_name": true,
	"quantity":      true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"created_at":       true,
	"sale_date":        true,
	"salesperson_name": true,
	"quantity":         true,
	"selling_price":    true,
	"profit":           true,
}

// LoanSortFields contains allowed sort fields for customer loans
var LoanSortFields = map[string]bool{
	"created_at":       true,
	"loan_date":        true,
	"due_date":         true,
	"customer_name":    true,
	"amount_remaining": true,
}

// ShopkeeperStockSortFields contains allowed sort fields for consignments
var ShopkeeperStockSortFields = map[string]bool{
	"created_at":         true,
	"issue_date":         true,
	"shopkeeper_name":    true,
	"quantity_remaining": true,
}

// ExpenseSortFields contains allowed sort fields for expenses
var ExpenseSortFields = map[string]bool{
	"created_at":   true,
	"expense_date": true,
	"category":     true,
	"amount":       true,
}
