package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/clothshop/backend/internal/application/report"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/clothshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves /reports
type ReportHandler struct {
	BaseHandler
	reports *report.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Daily handles GET /reports/daily/:date
func (h *ReportHandler) Daily(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	date, err := dto.PathDate(c.Param("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out, err := h.reports.DailyReport(c.Request.Context(), tenantID, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// Profit handles GET /reports/profit/:date
func (h *ReportHandler) Profit(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	date, err := dto.PathDate(c.Param("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out, err := h.reports.ProfitReport(c.Request.Context(), tenantID, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// Financial handles GET /reports/financial/:year/:month
func (h *ReportHandler) Financial(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.Error(c, shared.CodeValidation, "year must be a number")
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		h.Error(c, shared.CodeValidation, "month must be a number")
		return
	}
	out, err := h.reports.FinancialReport(c.Request.Context(), tenantID, year, time.Month(month))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// StockExport handles GET /reports/stock.xlsx. With object storage configured the
// response is a download link, otherwise the workbook itself.
func (h *ReportHandler) StockExport(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	varietyID, err := dto.OptionalUUID(c.Query("variety_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	export, err := h.reports.ExportStockReport(c.Request.Context(), tenantID, varietyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if export.Uploaded() {
		h.Success(c, export)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Data(http.StatusOK, report.XLSXContentType, export.Data)
}

// RegisterRoutes mounts the report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/reports")
	g.GET("/daily/:date", h.Daily)
	g.GET("/profit/:date", h.Profit)
	g.GET("/financial/:year/:month", h.Financial)
	g.GET("/stock.xlsx", h.StockExport)
}
