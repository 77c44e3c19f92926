package handler

import (
	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/sales"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/clothshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// LoanHandler serves /customer-loans
type LoanHandler struct {
	BaseHandler
	loans *ledger.LoanService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(lg *ledger.Ledger) *LoanHandler {
	return &LoanHandler{loans: ledger.NewLoanService(lg)}
}

// Create handles POST /customer-loans
func (h *LoanHandler) Create(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.CreateLoanRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	loan, err := h.loans.CreateLoan(c.Request.Context(), tenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, loan)
}

// List handles GET /customer-loans
func (h *LoanHandler) List(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.LoanListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.loans.List(c.Request.Context(), tenantID, sales.LoanFilter{
		Filter:       req.Filter(),
		Status:       sales.LoanStatus(req.Status),
		CustomerName: req.CustomerName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get handles GET /customer-loans/:id
func (h *LoanHandler) Get(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	loan, err := h.loans.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loan)
}

// RecordPayment handles POST /customer-loans/:id/payments
func (h *LoanHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.LoanPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	loan, err := h.loans.RecordPayment(c.Request.Context(), tenantID, id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, loan)
}

// Payments handles GET /customer-loans/:id/payments
func (h *LoanHandler) Payments(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.loans.ListPayments(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Overdue handles GET /customer-loans/overdue. ?as_of defaults to today.
func (h *LoanHandler) Overdue(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	asOf, err := shared.ParseDate(c.Query("as_of"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if asOf.IsZero() {
		asOf = shared.Today()
	}
	rows, err := h.loans.ListOverdue(c.Request.Context(), tenantID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// SummaryByCustomer handles GET /customer-loans/summary/by-customer
func (h *LoanHandler) SummaryByCustomer(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	rows, err := h.loans.SummaryByCustomer(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// SummaryByStatus handles GET /customer-loans/summary/by-status
func (h *LoanHandler) SummaryByStatus(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	rows, err := h.loans.SummaryByStatus(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Delete handles DELETE /customer-loans/:id
func (h *LoanHandler) Delete(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.loans.DeleteLoan(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes mounts the loan routes
func (h *LoanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/customer-loans")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/overdue", h.Overdue)
	g.GET("/summary/by-customer", h.SummaryByCustomer)
	g.GET("/summary/by-status", h.SummaryByStatus)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/payments", h.RecordPayment)
	g.GET("/:id/payments", h.Payments)
}
