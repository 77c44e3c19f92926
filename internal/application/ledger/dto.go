package ledger

import (
	"time"

	"github.com/clothshop/backend/internal/domain/consignment"
	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VarietyResponse represents a cloth variety in API responses
type VarietyResponse struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	MeasurementUnit  string           `json:"measurement_unit"`
	StandardLength   *decimal.Decimal `json:"standard_length,omitempty"`
	Description      string           `json:"description,omitempty"`
	DefaultCostPrice *decimal.Decimal `json:"default_cost_price,omitempty"`
	CurrentStock     decimal.Decimal  `json:"current_stock"`
	MinStockLevel    *decimal.Decimal `json:"min_stock_level,omitempty"`
	IsLowStock       bool             `json:"is_low_stock"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Version          int              `json:"version"`
}

// ToVarietyResponse converts a domain variety
func ToVarietyResponse(v *inventory.Variety) VarietyResponse {
	return VarietyResponse{
		ID:               v.ID,
		Name:             v.Name,
		MeasurementUnit:  string(v.Unit),
		StandardLength:   v.StandardLength,
		Description:      v.Description,
		DefaultCostPrice: v.DefaultCostPrice,
		CurrentStock:     v.CurrentStock,
		MinStockLevel:    v.MinStockLevel,
		IsLowStock:       v.IsLowStock(),
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
		Version:          v.Version,
	}
}

// BatchResponse represents a supplier batch
type BatchResponse struct {
	ID                uuid.UUID       `json:"id"`
	VarietyID         uuid.UUID       `json:"variety_id"`
	SupplierName      string          `json:"supplier_name"`
	Quantity          decimal.Decimal `json:"quantity"`
	PricePerItem      decimal.Decimal `json:"price_per_item"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	SupplyDate        time.Time       `json:"supply_date"`
	QuantityUsed      decimal.Decimal `json:"quantity_used"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
	QuantityReturned  decimal.Decimal `json:"quantity_returned"`
	AutoCreated       bool            `json:"auto_created"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ToBatchResponse converts a domain batch
func ToBatchResponse(b *inventory.Batch) BatchResponse {
	return BatchResponse{
		ID:                b.ID,
		VarietyID:         b.VarietyID,
		SupplierName:      b.SupplierName,
		Quantity:          b.Quantity,
		PricePerItem:      b.PricePerItem,
		TotalAmount:       b.TotalAmount,
		SupplyDate:        b.SupplyDate,
		QuantityUsed:      b.QuantityUsed,
		QuantityRemaining: b.QuantityRemaining,
		QuantityReturned:  b.QuantityReturned,
		AutoCreated:       b.AutoCreated,
		CreatedAt:         b.CreatedAt,
	}
}

// ToBatchResponses converts a slice of batches
func ToBatchResponses(batches []inventory.Batch) []BatchResponse {
	out := make([]BatchResponse, len(batches))
	for i := range batches {
		out[i] = ToBatchResponse(&batches[i])
	}
	return out
}

// MovementResponse represents one entry of the movement log
type MovementResponse struct {
	ID            uuid.UUID       `json:"id"`
	VarietyID     uuid.UUID       `json:"variety_id"`
	Sequence      int64           `json:"sequence"`
	MovementType  string          `json:"movement_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	MovementDate  time.Time       `json:"movement_date"`
	StockAfter    decimal.Decimal `json:"stock_after"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToMovementResponse converts a domain movement
func ToMovementResponse(m *inventory.Movement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		VarietyID:     m.VarietyID,
		Sequence:      m.Sequence,
		MovementType:  string(m.Type),
		Quantity:      m.Quantity,
		ReferenceID:   m.ReferenceID,
		ReferenceType: string(m.ReferenceType),
		Notes:         m.Notes,
		MovementDate:  m.MovementDate,
		StockAfter:    m.StockAfter,
		CreatedAt:     m.CreatedAt,
	}
}

// SupplierReturnResponse represents a return to a supplier
type SupplierReturnResponse struct {
	ID           uuid.UUID       `json:"id"`
	VarietyID    uuid.UUID       `json:"variety_id"`
	BatchID      *uuid.UUID      `json:"supplier_inventory_id,omitempty"`
	SupplierName string          `json:"supplier_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ReturnDate   time.Time       `json:"return_date"`
	Reason       string          `json:"reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToSupplierReturnResponse converts a domain supplier return
func ToSupplierReturnResponse(r *inventory.SupplierReturn) SupplierReturnResponse {
	return SupplierReturnResponse{
		ID:           r.ID,
		VarietyID:    r.VarietyID,
		BatchID:      r.BatchID,
		SupplierName: r.SupplierName,
		Quantity:     r.Quantity,
		PricePerItem: r.PricePerItem,
		TotalAmount:  r.TotalAmount,
		ReturnDate:   r.ReturnDate,
		Reason:       r.Reason,
		CreatedAt:    r.CreatedAt,
	}
}

// SaleResponse represents a sale
type SaleResponse struct {
	ID              uuid.UUID       `json:"id"`
	VarietyID       uuid.UUID       `json:"variety_id"`
	SalespersonName string          `json:"salesperson_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	Profit          decimal.Decimal `json:"profit"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	SaleDate        time.Time       `json:"sale_date"`
	BatchID         *uuid.UUID      `json:"supplier_inventory_id,omitempty"`
	PaymentStatus   string          `json:"payment_status"`
	CustomerName    *string         `json:"customer_name,omitempty"`
	BelowCost       bool            `json:"below_cost"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ToSaleResponse converts a domain sale
func ToSaleResponse(s *sales.Sale) SaleResponse {
	return SaleResponse{
		ID:              s.ID,
		VarietyID:       s.VarietyID,
		SalespersonName: s.SalespersonName,
		Quantity:        s.Quantity,
		SellingPrice:    s.SellingPrice,
		CostPrice:       s.CostPrice,
		Profit:          s.Profit,
		TotalAmount:     s.TotalAmount(),
		SaleDate:        s.SaleDate,
		BatchID:         s.BatchID,
		PaymentStatus:   string(s.PaymentStatus),
		CustomerName:    s.CustomerName,
		BelowCost:       s.IsBelowCost(),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		Version:         s.Version,
	}
}

// ShopkeeperStockResponse represents a consignment issued to a shopkeeper
type ShopkeeperStockResponse struct {
	ID                    uuid.UUID       `json:"id"`
	ShopkeeperName        string          `json:"shopkeeper_name"`
	ShopkeeperPhone       *string         `json:"shopkeeper_phone,omitempty"`
	VarietyID             uuid.UUID       `json:"variety_id"`
	QuantityIssued        decimal.Decimal `json:"quantity_issued"`
	QuantitySold          decimal.Decimal `json:"quantity_sold"`
	QuantityReturned      decimal.Decimal `json:"quantity_returned"`
	QuantityRemaining     decimal.Decimal `json:"quantity_remaining"`
	IssueDate             time.Time       `json:"issue_date"`
	Notes                 string          `json:"notes,omitempty"`
	DeductedFromInventory bool            `json:"deducted_from_inventory"`
	BatchID               *uuid.UUID      `json:"supplier_inventory_id,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	Version               int             `json:"version"`
}

// ToShopkeeperStockResponse converts a domain consignment
func ToShopkeeperStockResponse(s *consignment.ShopkeeperStock) ShopkeeperStockResponse {
	return ShopkeeperStockResponse{
		ID:                    s.ID,
		ShopkeeperName:        s.ShopkeeperName,
		ShopkeeperPhone:       s.ShopkeeperPhone,
		VarietyID:             s.VarietyID,
		QuantityIssued:        s.QuantityIssued,
		QuantitySold:          s.QuantitySold,
		QuantityReturned:      s.QuantityReturned,
		QuantityRemaining:     s.QuantityRemaining,
		IssueDate:             s.IssueDate,
		Notes:                 s.Notes,
		DeductedFromInventory: s.DeductedFromInventory,
		BatchID:               s.BatchID,
		CreatedAt:             s.CreatedAt,
		Version:               s.Version,
	}
}

// ShopkeeperEventResponse is a sale or return recorded against a consignment
type ShopkeeperEventResponse struct {
	ID       uuid.UUID       `json:"id"`
	StockID  uuid.UUID       `json:"shopkeeper_stock_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Date     time.Time       `json:"date"`
	Notes    string          `json:"notes,omitempty"`
}

// LoanResponse represents a customer loan
type LoanResponse struct {
	ID              uuid.UUID       `json:"id"`
	SaleID          uuid.UUID       `json:"sale_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   *string         `json:"customer_phone,omitempty"`
	TotalLoanAmount decimal.Decimal `json:"total_loan_amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	AmountRemaining decimal.Decimal `json:"amount_remaining"`
	Status          string          `json:"loan_status"`
	LoanDate        time.Time       `json:"loan_date"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Version         int             `json:"version"`
}

// ToLoanResponse converts a domain loan
func ToLoanResponse(l *sales.CustomerLoan) LoanResponse {
	return LoanResponse{
		ID:              l.ID,
		SaleID:          l.SaleID,
		CustomerName:    l.CustomerName,
		CustomerPhone:   l.CustomerPhone,
		TotalLoanAmount: l.TotalLoanAmount,
		AmountPaid:      l.AmountPaid,
		AmountRemaining: l.AmountRemaining,
		Status:          string(l.Status),
		LoanDate:        l.LoanDate,
		DueDate:         l.DueDate,
		Notes:           l.Notes,
		CreatedAt:       l.CreatedAt,
		Version:         l.Version,
	}
}

// PaymentResponse represents a loan payment
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	LoanID        uuid.UUID       `json:"loan_id"`
	Amount        decimal.Decimal `json:"payment_amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *sales.LoanPayment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		LoanID:        p.LoanID,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		PaymentMethod: p.PaymentMethod,
		Notes:         p.Notes,
	}
}
