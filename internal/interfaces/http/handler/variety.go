package handler

import (
	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// VarietyHandler serves /varieties
type VarietyHandler struct {
	BaseHandler
	varieties *ledger.VarietyService
	stock     *ledger.StockService
	supply    *ledger.SupplyService
}

// NewVarietyHandler creates a new VarietyHandler
func NewVarietyHandler(lg *ledger.Ledger) *VarietyHandler {
	return &VarietyHandler{
		varieties: ledger.NewVarietyService(lg),
		stock:     ledger.NewStockService(lg),
		supply:    ledger.NewSupplyService(lg),
	}
}

// Create handles POST /varieties
func (h *VarietyHandler) Create(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.CreateVarietyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	v, err := h.varieties.Create(c.Request.Context(), tenantID, req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, v)
}

// List handles GET /varieties
func (h *VarietyHandler) List(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.VarietyListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.varieties.List(c.Request.Context(), tenantID, inventory.VarietyFilter{
		Filter:   req.Filter(),
		Search:   req.Search,
		LowStock: req.LowStock,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get handles GET /varieties/:id
func (h *VarietyHandler) Get(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	v, err := h.varieties.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

// Update handles PUT /varieties/:id
func (h *VarietyHandler) Update(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateVarietyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	v, err := h.varieties.Update(c.Request.Context(), tenantID, id, req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

// Delete handles DELETE /varieties/:id
func (h *VarietyHandler) Delete(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.varieties.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Stock handles GET /varieties/:id/stock
func (h *VarietyHandler) Stock(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	status, err := h.stock.StockStatus(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// Movements handles GET /varieties/:id/movements
func (h *VarietyHandler) Movements(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.stock.ListMovements(c.Request.Context(), tenantID, id, req.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Batches handles GET /varieties/:id/batches, the batches still holding stock in FIFO order
func (h *VarietyHandler) Batches(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	batches, err := h.supply.ListBatchesWithStock(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// LowStock handles GET /varieties/low-stock
func (h *VarietyHandler) LowStock(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	rows, err := h.stock.ListLowStock(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Reconcile handles GET /varieties/reconcile. ?variety_id limits the check to one variety.
func (h *VarietyHandler) Reconcile(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	varietyID, err := dto.OptionalUUID(c.Query("variety_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	reports, err := h.stock.Reconcile(c.Request.Context(), tenantID, varietyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reports)
}

// RegisterRoutes mounts the variety routes
func (h *VarietyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/varieties")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/low-stock", h.LowStock)
	g.GET("/reconcile", h.Reconcile)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/stock", h.Stock)
	g.GET("/:id/movements", h.Movements)
	g.GET("/:id/batches", h.Batches)
}
