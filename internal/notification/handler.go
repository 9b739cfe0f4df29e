package notification

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

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

// GET /api/v1/notifications?unread=true&limit=20
func (h *Handler) List(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		apperr.Respond(c, apperr.ErrUnauthenticated)
		return
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			apperr.Respond(c, apperr.Validation("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	list, err := h.service.List(c.Request.Context(), p.ID, c.Query("unread") == "true", limit)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/v1/notifications/:id/read
func (h *Handler) MarkRead(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		apperr.Respond(c, apperr.ErrUnauthenticated)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperr.Respond(c, apperr.Validation("invalid notification id"))
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), p.ID, uint(id)); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

// POST /api/v1/notifications/devices
func (h *Handler) RegisterDevice(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		apperr.Respond(c, apperr.ErrUnauthenticated)
		return
	}
	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	d, err := h.service.RegisterDevice(c.Request.Context(), p.ID, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}
