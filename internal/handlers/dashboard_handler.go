package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smart-evolve/grading-service/internal/services"
	"github.com/smart-evolve/grading-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
	export  services.ExportService
}

func NewDashboardHandler(service services.DashboardService, export services.ExportService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		export:      export,
	}
}

// GetMetrics returns the headline dashboard numbers.
func (h *DashboardHandler) GetMetrics(c *gin.Context) {
	h.LogRequest(c, "Getting dashboard metrics")

	metrics, err := h.service.GetMetrics(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// GetRecent returns the latest completed evaluations.
func (h *DashboardHandler) GetRecent(c *gin.Context) {
	h.LogRequest(c, "Getting recent evaluations")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit < 1 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}

	recent, err := h.service.GetRecent(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recent)
}

// GetPerformance returns subject, mode and trend series.
func (h *DashboardHandler) GetPerformance(c *gin.Context) {
	h.LogRequest(c, "Getting performance series")

	performance, err := h.service.GetPerformance(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, performance)
}

// Export streams all completed evaluations as an XLSX download.
func (h *DashboardHandler) Export(c *gin.Context) {
	h.LogRequest(c, "Exporting evaluations")

	workbook, err := h.export.ExportEvaluations(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("evaluations-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, workbook)
}
