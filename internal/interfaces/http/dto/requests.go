package dto

import (
	"time"

	"github.com/clothshop/backend/internal/application/expense"
	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request bodies carry amounts as JSON numbers or strings and dates as YYYY-MM-DD.

// CreateVarietyRequest is the body of POST /varieties
type CreateVarietyRequest struct {
	Name             string           `json:"name" binding:"required,max=100"`
	Unit             string           `json:"unit" binding:"required,oneof=pieces meters yards"`
	StandardLength   *decimal.Decimal `json:"standard_length"`
	Description      string           `json:"description" binding:"max=500"`
	DefaultCostPrice *decimal.Decimal `json:"default_cost_price"`
	MinStockLevel    *decimal.Decimal `json:"min_stock_level"`
}

// ToInput converts the request
func (r *CreateVarietyRequest) ToInput() ledger.CreateVarietyInput {
	return ledger.CreateVarietyInput{
		Name:             r.Name,
		Unit:             r.Unit,
		StandardLength:   r.StandardLength,
		Description:      r.Description,
		DefaultCostPrice: r.DefaultCostPrice,
		MinStockLevel:    r.MinStockLevel,
	}
}

// UpdateVarietyRequest is the body of PUT /varieties/:id. Absent fields are left unchanged.
type UpdateVarietyRequest struct {
	Name             *string          `json:"name" binding:"omitempty,max=100"`
	Unit             *string          `json:"unit" binding:"omitempty,oneof=pieces meters yards"`
	StandardLength   *decimal.Decimal `json:"standard_length"`
	Description      *string          `json:"description" binding:"omitempty,max=500"`
	DefaultCostPrice *decimal.Decimal `json:"default_cost_price"`
	MinStockLevel    *decimal.Decimal `json:"min_stock_level"`
	ClearMinStock    bool             `json:"clear_min_stock"`
}

// ToInput converts the request
func (r *UpdateVarietyRequest) ToInput() ledger.UpdateVarietyInput {
	return ledger.UpdateVarietyInput{
		Name:             r.Name,
		Unit:             r.Unit,
		StandardLength:   r.StandardLength,
		Description:      r.Description,
		DefaultCostPrice: r.DefaultCostPrice,
		MinStockLevel:    r.MinStockLevel,
		ClearMinStock:    r.ClearMinStock,
	}
}

// VarietyListRequest holds the query of GET /varieties
type VarietyListRequest struct {
	ListRequest
	Search   string `form:"search"`
	LowStock bool   `form:"low_stock"`
}

// RecordSaleRequest is the body of POST /sales. Either variety_id or variety_name is required.
type RecordSaleRequest struct {
	VarietyID       *uuid.UUID       `json:"variety_id"`
	VarietyName     string           `json:"variety_name" binding:"required_without=VarietyID,max=100"`
	Quantity        *decimal.Decimal `json:"quantity" binding:"required"`
	TotalCost       *decimal.Decimal `json:"total_cost" binding:"required"`
	TotalSelling    *decimal.Decimal `json:"total_selling" binding:"required"`
	SaleDate        string           `json:"sale_date"`
	SalespersonName string           `json:"salesperson_name" binding:"required,max=100"`
	PaymentStatus   string           `json:"payment_status" binding:"omitempty,oneof=paid loan"`
	CustomerName    string           `json:"customer_name" binding:"max=100"`
}

// ToInput converts the request
func (r *RecordSaleRequest) ToInput() (ledger.RecordSaleInput, error) {
	date, err := shared.ParseDate(r.SaleDate)
	if err != nil {
		return ledger.RecordSaleInput{}, err
	}
	return ledger.RecordSaleInput{
		VarietyID:       r.VarietyID,
		VarietyName:     r.VarietyName,
		Quantity:        *r.Quantity,
		TotalCost:       *r.TotalCost,
		TotalSelling:    *r.TotalSelling,
		SaleDate:        date,
		SalespersonName: r.SalespersonName,
		PaymentStatus:   r.PaymentStatus,
		CustomerName:    r.CustomerName,
	}, nil
}

// UpdateSaleRequest is the body of PUT /sales/:id. Prices are per unit.
type UpdateSaleRequest struct {
	CostPrice       *decimal.Decimal `json:"cost_price"`
	SellingPrice    *decimal.Decimal `json:"selling_price"`
	Quantity        *decimal.Decimal `json:"quantity"`
	SalespersonName *string          `json:"salesperson_name" binding:"omitempty,max=100"`
	PaymentStatus   *string          `json:"payment_status" binding:"omitempty,oneof=paid loan"`
	CustomerName    *string          `json:"customer_name" binding:"omitempty,max=100"`
}

// ToInput converts the request
func (r *UpdateSaleRequest) ToInput() ledger.UpdateSaleInput {
	return ledger.UpdateSaleInput{
		CostPrice:       r.CostPrice,
		SellingPrice:    r.SellingPrice,
		Quantity:        r.Quantity,
		SalespersonName: r.SalespersonName,
		PaymentStatus:   r.PaymentStatus,
		CustomerName:    r.CustomerName,
	}
}

// SaleListRequest holds the query of GET /sales
type SaleListRequest struct {
	ListRequest
	From            string `form:"from"`
	To              string `form:"to"`
	VarietyID       string `form:"variety_id" binding:"omitempty,uuid"`
	SalespersonName string `form:"salesperson_name"`
	PaymentStatus   string `form:"payment_status" binding:"omitempty,oneof=paid loan"`
}

// RecordSupplyRequest is the body of POST /supplier/inventory
type RecordSupplyRequest struct {
	VarietyID    *uuid.UUID       `json:"variety_id"`
	VarietyName  string           `json:"variety_name" binding:"required_without=VarietyID,max=100"`
	SupplierName string           `json:"supplier_name" binding:"required,max=100"`
	Quantity     *decimal.Decimal `json:"quantity" binding:"required"`
	PricePerItem *decimal.Decimal `json:"price_per_item" binding:"required"`
	SupplyDate   string           `json:"supply_date"`
}

// ToInput converts the request
func (r *RecordSupplyRequest) ToInput() (ledger.RecordSupplyInput, error) {
	date, err := shared.ParseDate(r.SupplyDate)
	if err != nil {
		return ledger.RecordSupplyInput{}, err
	}
	return ledger.RecordSupplyInput{
		VarietyID:    r.VarietyID,
		VarietyName:  r.VarietyName,
		SupplierName: r.SupplierName,
		Quantity:     *r.Quantity,
		PricePerItem: *r.PricePerItem,
		SupplyDate:   date,
	}, nil
}

// BatchListRequest holds the query of GET /supplier/inventory
type BatchListRequest struct {
	ListRequest
	From         string `form:"from"`
	To           string `form:"to"`
	VarietyID    string `form:"variety_id" binding:"omitempty,uuid"`
	SupplierName string `form:"supplier_name"`
	WithStock    bool   `form:"with_stock"`
}

// RecordReturnRequest is the body of POST /supplier/returns
type RecordReturnRequest struct {
	VarietyID    uuid.UUID        `json:"variety_id" binding:"required"`
	SupplierName string           `json:"supplier_name" binding:"required,max=100"`
	Quantity     *decimal.Decimal `json:"quantity" binding:"required"`
	PricePerItem *decimal.Decimal `json:"price_per_item" binding:"required"`
	Reason       string           `json:"reason" binding:"max=500"`
	ReturnDate   string           `json:"return_date"`
}

// ToInput converts the request
func (r *RecordReturnRequest) ToInput() (ledger.RecordReturnInput, error) {
	date, err := shared.ParseDate(r.ReturnDate)
	if err != nil {
		return ledger.RecordReturnInput{}, err
	}
	return ledger.RecordReturnInput{
		VarietyID:    r.VarietyID,
		SupplierName: r.SupplierName,
		Quantity:     *r.Quantity,
		PricePerItem: *r.PricePerItem,
		Reason:       r.Reason,
		ReturnDate:   date,
	}, nil
}

// ReturnListRequest holds the query of GET /supplier/returns
type ReturnListRequest struct {
	ListRequest
	From         string `form:"from"`
	To           string `form:"to"`
	VarietyID    string `form:"variety_id" binding:"omitempty,uuid"`
	SupplierName string `form:"supplier_name"`
}

// AdjustStockRequest is the body of POST /stock/adjust. quantity is signed.
type AdjustStockRequest struct {
	VarietyID uuid.UUID        `json:"variety_id" binding:"required"`
	Quantity  *decimal.Decimal `json:"quantity" binding:"required"`
	Notes     string           `json:"notes" binding:"max=500"`
	Date      string           `json:"date"`
}

// ToInput converts the request
func (r *AdjustStockRequest) ToInput() (ledger.AdjustStockInput, error) {
	date, err := shared.ParseDate(r.Date)
	if err != nil {
		return ledger.AdjustStockInput{}, err
	}
	return ledger.AdjustStockInput{
		VarietyID: r.VarietyID,
		Quantity:  *r.Quantity,
		Notes:     r.Notes,
		Date:      date,
	}, nil
}

// IssueConsignmentRequest is the body of POST /shopkeeper-stock/issue
type IssueConsignmentRequest struct {
	ShopkeeperName        string           `json:"shopkeeper_name" binding:"required,max=100"`
	ShopkeeperPhone       string           `json:"shopkeeper_phone" binding:"max=30"`
	VarietyID             uuid.UUID        `json:"variety_id" binding:"required"`
	Quantity              *decimal.Decimal `json:"quantity_issued" binding:"required"`
	IssueDate             string           `json:"issue_date"`
	Notes                 string           `json:"notes" binding:"max=500"`
	DeductedFromInventory *bool            `json:"deducted_from_inventory"`
}

// ToInput converts the request. Stock is deducted from inventory unless the caller opts out.
func (r *IssueConsignmentRequest) ToInput() (ledger.IssueInput, error) {
	date, err := shared.ParseDate(r.IssueDate)
	if err != nil {
		return ledger.IssueInput{}, err
	}
	deduct := true
	if r.DeductedFromInventory != nil {
		deduct = *r.DeductedFromInventory
	}
	return ledger.IssueInput{
		ShopkeeperName:        r.ShopkeeperName,
		ShopkeeperPhone:       r.ShopkeeperPhone,
		VarietyID:             r.VarietyID,
		Quantity:              *r.Quantity,
		IssueDate:             date,
		Notes:                 r.Notes,
		DeductedFromInventory: deduct,
	}, nil
}

// ConsignmentEventRequest is the body of a shopkeeper sale or return
type ConsignmentEventRequest struct {
	Quantity *decimal.Decimal `json:"quantity" binding:"required"`
	Date     string           `json:"date"`
	Notes    string           `json:"notes" binding:"max=500"`
}

// ToInput converts the request
func (r *ConsignmentEventRequest) ToInput() (ledger.ConsignmentEventInput, error) {
	date, err := shared.ParseDate(r.Date)
	if err != nil {
		return ledger.ConsignmentEventInput{}, err
	}
	return ledger.ConsignmentEventInput{Quantity: *r.Quantity, Date: date, Notes: r.Notes}, nil
}

// ConsignmentListRequest holds the query of GET /shopkeeper-stock
type ConsignmentListRequest struct {
	ListRequest
	ShopkeeperName string `form:"shopkeeper_name"`
	VarietyID      string `form:"variety_id" binding:"omitempty,uuid"`
}

// CreateLoanRequest is the body of POST /customer-loans
type CreateLoanRequest struct {
	SaleID          uuid.UUID        `json:"sale_id" binding:"required"`
	CustomerName    string           `json:"customer_name" binding:"required,max=100"`
	CustomerPhone   string           `json:"customer_phone" binding:"max=30"`
	TotalLoanAmount *decimal.Decimal `json:"total_loan_amount"`
	DueDate         string           `json:"due_date"`
	Notes           string           `json:"notes" binding:"max=500"`
}

// ToInput converts the request
func (r *CreateLoanRequest) ToInput() (ledger.CreateLoanInput, error) {
	in := ledger.CreateLoanInput{
		SaleID:          r.SaleID,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		TotalLoanAmount: r.TotalLoanAmount,
		Notes:           r.Notes,
	}
	if r.DueDate != "" {
		due, err := shared.ParseDate(r.DueDate)
		if err != nil {
			return ledger.CreateLoanInput{}, err
		}
		in.DueDate = &due
	}
	return in, nil
}

// LoanPaymentRequest is the body of POST /customer-loans/:id/payments
type LoanPaymentRequest struct {
	Amount        *decimal.Decimal `json:"payment_amount" binding:"required"`
	PaymentDate   string           `json:"payment_date"`
	PaymentMethod string           `json:"payment_method" binding:"max=50"`
	Notes         string           `json:"notes" binding:"max=500"`
}

// ToInput converts the request
func (r *LoanPaymentRequest) ToInput() (ledger.RecordPaymentInput, error) {
	date, err := shared.ParseDate(r.PaymentDate)
	if err != nil {
		return ledger.RecordPaymentInput{}, err
	}
	return ledger.RecordPaymentInput{
		Amount:        *r.Amount,
		PaymentDate:   date,
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}, nil
}

// LoanListRequest holds the query of GET /customer-loans
type LoanListRequest struct {
	ListRequest
	Status       string `form:"status" binding:"omitempty,oneof=pending partial paid"`
	CustomerName string `form:"customer_name"`
}

// CreateExpenseRequest is the body of POST /expenses
type CreateExpenseRequest struct {
	Category    string           `json:"category" binding:"required"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	ExpenseDate string           `json:"expense_date"`
	Description string           `json:"description" binding:"max=500"`
}

// ToInput converts the request
func (r *CreateExpenseRequest) ToInput() (expense.CreateInput, error) {
	date, err := shared.ParseDate(r.ExpenseDate)
	if err != nil {
		return expense.CreateInput{}, err
	}
	return expense.CreateInput{
		Category:    r.Category,
		Amount:      *r.Amount,
		ExpenseDate: date,
		Description: r.Description,
	}, nil
}

// ExpenseListRequest holds the query of GET /expenses
type ExpenseListRequest struct {
	ListRequest
	From     string `form:"from"`
	To       string `form:"to"`
	Category string `form:"category"`
}

// ChatRequest is the body of POST /assistant/chat
type ChatRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

// DateRange parses optional from/to query values
func DateRange(from, to string) (shared.DateRange, error) {
	var out shared.DateRange
	var err error
	if out.From, err = shared.ParseDate(from); err != nil {
		return out, err
	}
	if out.To, err = shared.ParseDate(to); err != nil {
		return out, err
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.To.Before(out.From) {
		return out, shared.NewDomainError(shared.CodeValidation, "to must not be before from")
	}
	return out, nil
}

// OptionalUUID parses an optional id query value
func OptionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, shared.Errorf(shared.CodeValidation, "Invalid id %q", raw)
	}
	return &id, nil
}

// PathDate parses a YYYY-MM-DD path segment; "today" is accepted
func PathDate(raw string) (time.Time, error) {
	if raw == "today" {
		return shared.Today(), nil
	}
	if raw == "" {
		return time.Time{}, shared.NewDomainError(shared.CodeValidation, "date is required")
	}
	return shared.ParseDate(raw)
}
