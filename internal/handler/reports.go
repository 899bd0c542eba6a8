package handler

import (
	"net/http"
	"strconv"

	"github.com/AmericableSA/Sistema-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct{ svc service.ReportService }

func NewReportHandler(svc service.ReportService) *ReportHandler { return &ReportHandler{svc: svc} }

// DailySummary godoc
// @Summary Aggregates one day of collections
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} dto.DailySummaryResponse
// @Router /v1/reports/daily [get]
func (h *ReportHandler) DailySummary(c *gin.Context) {
	resp, err := h.svc.DailySummary(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TopDebtors godoc
// @Summary Lists the most delinquent clients
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows, default 20"
// @Success 200 {array} dto.DebtorItem
// @Router /v1/reports/debtors [get]
func (h *ReportHandler) TopDebtors(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := h.svc.TopDebtors(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
