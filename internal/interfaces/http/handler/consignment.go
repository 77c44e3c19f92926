package handler

import (
	"context"

	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/domain/consignment"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/clothshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ConsignmentHandler serves /shopkeeper-stock, stock handed to shopkeepers on consignment
type ConsignmentHandler struct {
	BaseHandler
	consignments *ledger.ConsignmentService
}

// NewConsignmentHandler creates a new ConsignmentHandler
func NewConsignmentHandler(lg *ledger.Ledger) *ConsignmentHandler {
	return &ConsignmentHandler{consignments: ledger.NewConsignmentService(lg)}
}

// Issue handles POST /shopkeeper-stock/issue
func (h *ConsignmentHandler) Issue(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.IssueConsignmentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	stock, err := h.consignments.Issue(c.Request.Context(), tenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, stock)
}

// List handles GET /shopkeeper-stock
func (h *ConsignmentHandler) List(c *gin.Context) {
	h.list(c, false)
}

// Outstanding handles GET /shopkeeper-stock/outstanding, consignments with quantity still out
func (h *ConsignmentHandler) Outstanding(c *gin.Context) {
	h.list(c, true)
}

func (h *ConsignmentHandler) list(c *gin.Context, outstanding bool) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.ConsignmentListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	varietyID, err := dto.OptionalUUID(req.VarietyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	filter := consignment.StockFilter{
		Filter:         req.Filter(),
		ShopkeeperName: req.ShopkeeperName,
		VarietyID:      varietyID,
	}
	var page shared.Paginated[ledger.ShopkeeperStockResponse]
	if outstanding {
		page, err = h.consignments.ListOutstanding(c.Request.Context(), tenantID, filter)
	} else {
		page, err = h.consignments.List(c.Request.Context(), tenantID, filter)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get handles GET /shopkeeper-stock/:id with its sales and returns
func (h *ConsignmentHandler) Get(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.consignments.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// RecordSale handles POST /shopkeeper-stock/:id/sales
func (h *ConsignmentHandler) RecordSale(c *gin.Context) {
	h.event(c, h.consignments.RecordSale)
}

// RecordReturn handles POST /shopkeeper-stock/:id/return
func (h *ConsignmentHandler) RecordReturn(c *gin.Context) {
	h.event(c, h.consignments.RecordReturn)
}

type consignmentEvent = func(ctx context.Context, tenantID, stockID uuid.UUID, in ledger.ConsignmentEventInput) (*ledger.ShopkeeperStockResponse, error)

func (h *ConsignmentHandler) event(c *gin.Context, apply consignmentEvent) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.ConsignmentEventRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	stock, err := apply(c.Request.Context(), tenantID, id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, stock)
}

// Delete handles DELETE /shopkeeper-stock/:id, returning unsold stock to inventory
func (h *ConsignmentHandler) Delete(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.consignments.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SummaryByShopkeeper handles GET /shopkeeper-stock/summary/by-shopkeeper
func (h *ConsignmentHandler) SummaryByShopkeeper(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	rows, err := h.consignments.SummaryByShopkeeper(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// ShopkeeperDetail handles GET /shopkeeper-stock/shopkeeper/:name/summary
func (h *ConsignmentHandler) ShopkeeperDetail(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	detail, err := h.consignments.ShopkeeperDetail(c.Request.Context(), tenantID, c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// RegisterRoutes mounts the consignment routes
func (h *ConsignmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/shopkeeper-stock")
	g.POST("/issue", h.Issue)
	g.GET("", h.List)
	g.GET("/outstanding", h.Outstanding)
	g.GET("/summary/by-shopkeeper", h.SummaryByShopkeeper)
	g.GET("/shopkeeper/:name/summary", h.ShopkeeperDetail)
	g.GET("/:id", h.Get)
	g.POST("/:id/sales", h.RecordSale)
	g.POST("/:id/return", h.RecordReturn)
	g.DELETE("/:id", h.Delete)
}
