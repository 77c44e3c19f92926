package handler

import (
	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// StockHandler serves /stock
type StockHandler struct {
	BaseHandler
	stock *ledger.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(lg *ledger.Ledger) *StockHandler {
	return &StockHandler{stock: ledger.NewStockService(lg)}
}

// Adjust handles POST /stock/adjust with a signed quantity
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	v, err := h.stock.AdjustStock(c.Request.Context(), tenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

// RegisterRoutes mounts the stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/stock/adjust", h.Adjust)
}
