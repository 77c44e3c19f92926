package handler

import (
	appexpense "github.com/clothshop/backend/internal/application/expense"
	"github.com/clothshop/backend/internal/domain/expense"
	"github.com/clothshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ExpenseHandler serves /expenses
type ExpenseHandler struct {
	BaseHandler
	expenses *appexpense.Service
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenses *appexpense.Service) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// Create handles POST /expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.CreateExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out, err := h.expenses.Create(c.Request.Context(), tenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, out)
}

// List handles GET /expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.ExpenseListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	dates, err := dto.DateRange(req.From, req.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := h.expenses.List(c.Request.Context(), tenantID, expense.Filter{
		Filter:   req.Filter(),
		Dates:    dates,
		Category: expense.Category(req.Category),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Delete handles DELETE /expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.expenses.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DailySummary handles GET /expenses/summary/:date
func (h *ExpenseHandler) DailySummary(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	date, err := dto.PathDate(c.Param("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	summary, err := h.expenses.DailySummary(c.Request.Context(), tenantID, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// RegisterRoutes mounts the expense routes
func (h *ExpenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/expenses")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/summary/:date", h.DailySummary)
	g.DELETE("/:id", h.Delete)
}
