package handler

import (
	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/sales"
	"github.com/clothshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SaleHandler serves /sales
type SaleHandler struct {
	BaseHandler
	sales *ledger.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(lg *ledger.Ledger) *SaleHandler {
	return &SaleHandler{sales: ledger.NewSaleService(lg)}
}

// Record handles POST /sales
func (h *SaleHandler) Record(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.RecordSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sale, err := h.sales.RecordSale(c.Request.Context(), tenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.SaleListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	dates, err := dto.DateRange(req.From, req.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	varietyID, err := dto.OptionalUUID(req.VarietyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := h.sales.ListSales(c.Request.Context(), tenantID, sales.SaleFilter{
		Filter:          req.Filter(),
		Dates:           dates,
		VarietyID:       varietyID,
		SalespersonName: req.SalespersonName,
		PaymentStatus:   sales.PaymentStatus(req.PaymentStatus),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get handles GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.GetSale(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Update handles PUT /sales/:id
func (h *SaleHandler) Update(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sale, err := h.sales.UpdateSale(c.Request.Context(), tenantID, id, req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Delete handles DELETE /sales/:id, restoring the sold quantity to its batch
func (h *SaleHandler) Delete(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.sales.DeleteSale(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DailySummary handles GET /sales/daily-summary/:date
func (h *SaleHandler) DailySummary(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	date, err := dto.PathDate(c.Param("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	summary, err := h.sales.DailySummary(c.Request.Context(), tenantID, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// RegisterRoutes mounts the sale routes
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/sales")
	g.POST("", h.Record)
	g.GET("", h.List)
	g.GET("/daily-summary/:date", h.DailySummary)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
