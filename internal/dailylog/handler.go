package dailylog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SubmitLog handles POST /admin/daily-logs
// @Summary Record a temple's collection for a day
// @Description Inserts or overwrites the (temple_code, day) log and moves the temple's donation points.
// @Tags DailyLogs
// @Accept json
// @Produce json
// @Param body body SubmitRequest true "Collection"
// @Success 200 {object} SubmitResult
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/admin/daily-logs [post]
func (h *Handler) SubmitLog(c *gin.Context) {
	var input SubmitRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	if input.CollectedBy == "" {
		if p, ok := middleware.CurrentPrincipal(c); ok {
			input.CollectedBy = p.Email
		}
	}
	res, err := h.service.Submit(c.Request.Context(), input)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListLogs handles GET /admin/daily-logs
// @Summary List daily logs, newest day first
// @Tags DailyLogs
// @Produce json
// @Param temple_code query string false "Temple code"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param limit query int false "Maximum rows"
// @Success 200 {array} DailyLog
// @Router /api/v1/admin/daily-logs [get]
func (h *Handler) ListLogs(c *gin.Context) {
	f, err := FilterFromQuery(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	logs, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// FilterFromQuery reads temple_code, from, to and limit.
func FilterFromQuery(c *gin.Context) (ListFilter, error) {
	f := ListFilter{TempleCode: c.Query("temple_code")}
	if v := c.Query("from"); v != "" {
		d, err := ParseDay(v)
		if err != nil {
			return f, err
		}
		f.From = &d
	}
	if v := c.Query("to"); v != "" {
		d, err := ParseDay(v)
		if err != nil {
			return f, err
		}
		f.To = &d
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, apperr.Validation("limit must be a non-negative integer")
		}
		f.Limit = n
	}
	return f, nil
}
