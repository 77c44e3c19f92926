package handler

import (
	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SupplierHandler serves /supplier: incoming batches, returns to suppliers and
// their daily summaries
type SupplierHandler struct {
	BaseHandler
	supply *ledger.SupplyService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(lg *ledger.Ledger) *SupplierHandler {
	return &SupplierHandler{supply: ledger.NewSupplyService(lg)}
}

// RecordSupply handles POST /supplier/inventory
func (h *SupplierHandler) RecordSupply(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.RecordSupplyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	batch, err := h.supply.RecordSupply(c.Request.Context(), tenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, batch)
}

// ListBatches handles GET /supplier/inventory
func (h *SupplierHandler) ListBatches(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.BatchListRequest
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
	page, err := h.supply.ListBatches(c.Request.Context(), tenantID, inventory.BatchFilter{
		Filter:       req.Filter(),
		VarietyID:    varietyID,
		SupplierName: req.SupplierName,
		Dates:        dates,
		WithStock:    req.WithStock,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// DeleteBatch handles DELETE /supplier/inventory/:id. Only untouched batches can go.
func (h *SupplierHandler) DeleteBatch(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.supply.DeleteBatch(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RecordReturn handles POST /supplier/returns
func (h *SupplierHandler) RecordReturn(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.RecordReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	ret, err := h.supply.RecordReturn(c.Request.Context(), tenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

// ListReturns handles GET /supplier/returns
func (h *SupplierHandler) ListReturns(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.ReturnListRequest
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
	page, err := h.supply.ListReturns(c.Request.Context(), tenantID, inventory.ReturnFilter{
		Filter:       req.Filter(),
		VarietyID:    varietyID,
		SupplierName: req.SupplierName,
		Dates:        dates,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// DeleteReturn handles DELETE /supplier/returns/:id
func (h *SupplierHandler) DeleteReturn(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.supply.DeleteReturn(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DailySummary handles GET /supplier/daily-summary/:date
func (h *SupplierHandler) DailySummary(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	date, err := dto.PathDate(c.Param("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	summary, err := h.supply.DailySupplierSummary(c.Request.Context(), tenantID, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// SupplierSummary handles GET /supplier/supplier-summary/:date
func (h *SupplierHandler) SupplierSummary(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	date, err := dto.PathDate(c.Param("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	rows, err := h.supply.SupplierWiseSummary(c.Request.Context(), tenantID, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// RegisterRoutes mounts the supplier routes
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/supplier")
	g.POST("/inventory", h.RecordSupply)
	g.GET("/inventory", h.ListBatches)
	g.DELETE("/inventory/:id", h.DeleteBatch)
	g.POST("/returns", h.RecordReturn)
	g.GET("/returns", h.ListReturns)
	g.DELETE("/returns/:id", h.DeleteReturn)
	g.GET("/daily-summary/:date", h.DailySummary)
	g.GET("/supplier-summary/:date", h.SupplierSummary)
}
