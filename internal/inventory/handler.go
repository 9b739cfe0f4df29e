package inventory

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateItem handles POST /admin/inventory
// @Summary Add inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param body body CreateItemRequest true "Item"
// @Success 201 {object} Item
// @Router /api/v1/admin/inventory [post]
func (h *Handler) CreateItem(c *gin.Context) {
	var input CreateItemRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	it, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperr.Respond(c, apperr.Validation("invalid item id"))
		return
	}
	var input UpdateItemRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	it, err := h.service.Update(c.Request.Context(), uint(id), input)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperr.Respond(c, apperr.Validation("invalid item id"))
		return
	}
	if err := h.service.Delete(c.Request.Context(), uint(id)); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item deleted", "id": id})
}
