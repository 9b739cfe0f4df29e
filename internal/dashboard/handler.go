package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

// Admin handles GET /admin/dashboard
// @Summary Totals, waste mix and leaderboard across all temples
// @Tags Dashboard
// @Produce json
// @Success 200 {object} AdminDashboard
// @Router /api/v1/admin/dashboard [get]
func (h *Handler) Admin(c *gin.Context) {
	d, err := h.service.Admin(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /temple/dashboard
func (h *Handler) Temple(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	d, err := h.service.Temple(c.Request.Context(), p)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /ngo/dashboard
func (h *Handler) NGO(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	d, err := h.service.NGO(c.Request.Context(), p)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
