package ngo

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/asset"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperr.Respond(c, apperr.Validation("invalid ngo id"))
		return 0, false
	}
	return uint(id), true
}

// CreateNGO handles POST /admin/ngos
// @Summary Create NGO
// @Tags NGOs
// @Accept json
// @Produce json
// @Param body body CreateNGORequest true "NGO"
// @Success 201 {object} NGO
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/admin/ngos [post]
func (h *Handler) CreateNGO(c *gin.Context) {
	var input CreateNGORequest
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	n, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// ListNGOs handles GET /admin/ngos
// @Summary List NGOs, newest first
// @Tags NGOs
// @Produce json
// @Success 200 {array} NGO
// @Router /api/v1/admin/ngos [get]
func (h *Handler) ListNGOs(c *gin.Context) {
	ngos, err := h.service.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ngos)
}

func (h *Handler) GetNGO(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	n, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) UpdateNGO(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input UpdateNGORequest
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	n, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteNGO(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ngo deleted", "id": id})
}

// UploadLogo handles POST /admin/ngos/:id/logo (multipart field "logo").
func (h *Handler) UploadLogo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("logo")
	if err != nil {
		apperr.Respond(c, apperr.Validation("logo file is required"))
		return
	}
	name, data, err := asset.ReadUpload(fh)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	n, err := h.service.UploadLogo(c.Request.Context(), id, name, data)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}
