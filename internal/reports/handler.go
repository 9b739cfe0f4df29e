package reports

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

// DailyLogs handles GET /admin/reports/daily-logs
// @Summary Export daily collection logs
// @Tags Reports
// @Produce application/octet-stream
// @Param format query string false "xlsx, pdf or csv" default(xlsx)
// @Param date_range query string false "daily, weekly, monthly, yearly or custom"
// @Param start_date query string false "YYYY-MM-DD (custom range)"
// @Param end_date query string false "YYYY-MM-DD (custom range)"
// @Param temple_code query string false "Only this temple"
// @Success 200 {file} file
// @Router /api/v1/admin/reports/daily-logs [get]
func (h *Handler) DailyLogs(c *gin.Context) {
	h.export(c, ReportDailyLogs)
}

// Leaderboard handles GET /admin/reports/leaderboard
// @Summary Export the temple points leaderboard
// @Tags Reports
// @Produce application/octet-stream
// @Param format query string false "xlsx, pdf or csv" default(xlsx)
// @Param date_range query string false "daily, weekly, monthly, yearly or custom"
// @Success 200 {file} file
// @Router /api/v1/admin/reports/leaderboard [get]
func (h *Handler) Leaderboard(c *gin.Context) {
	h.export(c, ReportLeaderboard)
}

func (h *Handler) export(c *gin.Context, kind string) {
	var req Request
	if err := c.ShouldBindQuery(&req); err != nil {
		apperr.Respond(c, apperr.Validation("invalid query: %v", err))
		return
	}
	out, err := h.service.Export(c.Request.Context(), kind, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.FileName))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}
