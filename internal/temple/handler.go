package temple

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

// CreateTemple handles POST /admin/temples
// @Summary Create temple
// @Tags Temples
// @Accept json
// @Produce json
// @Param body body CreateTempleRequest true "Temple"
// @Success 201 {object} Temple
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/admin/temples [post]
func (h *Handler) CreateTemple(c *gin.Context) {
	var input CreateTempleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	t, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// ListTemples handles GET /admin/temples
// @Summary List temples
// @Tags Temples
// @Produce json
// @Param historic query bool false "Only historic (true) or non-historic (false)"
// @Param limit query int false "Maximum rows"
// @Success 200 {array} Temple
// @Router /api/v1/admin/temples [get]
func (h *Handler) ListTemples(c *gin.Context) {
	var f ListFilter
	if v := c.Query("historic"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			apperr.Respond(c, apperr.Validation("historic must be true or false"))
			return
		}
		f.Historic = &b
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			apperr.Respond(c, apperr.Validation("limit must be a non-negative integer"))
			return
		}
		f.Limit = n
	}
	temples, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, temples)
}

func (h *Handler) GetTemple(c *gin.Context) {
	t, err := h.service.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// UpdateTemple handles PUT /admin/temples/:code
// @Summary Update temple
// @Tags Temples
// @Accept json
// @Produce json
// @Param code path string true "Temple unique code"
// @Param body body UpdateTempleRequest true "Fields to change"
// @Success 200 {object} Temple
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/admin/temples/{code} [put]
func (h *Handler) UpdateTemple(c *gin.Context) {
	var input UpdateTempleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	t, err := h.service.Update(c.Request.Context(), c.Param("code"), input)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTemple handles DELETE /admin/temples/:code. Deleting an unknown code
// still answers 200.
// @Summary Delete temple
// @Tags Temples
// @Param code path string true "Temple unique code"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/temples/{code} [delete]
func (h *Handler) DeleteTemple(c *gin.Context) {
	code := c.Param("code")
	if err := h.service.Delete(c.Request.Context(), code); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "temple deleted", "unique_code": code})
}

// UploadImage handles POST /admin/temples/:code/image (multipart field "image").
func (h *Handler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		apperr.Respond(c, apperr.Validation("image file is required"))
		return
	}
	name, data, err := asset.ReadUpload(fh)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	t, err := h.service.UploadImage(c.Request.Context(), c.Param("code"), name, data)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) AdjustPoints(c *gin.Context) {
	var input AdjustPointsRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	t, err := h.service.AdjustPoints(c.Request.Context(), c.Param("code"), input.Delta)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// ReconcilePoints handles POST /admin/temples/:code/points/reconcile
// @Summary Recompute a temple's points from its daily logs
// @Tags Temples
// @Param code path string true "Temple unique code"
// @Success 200 {object} Temple
// @Router /api/v1/admin/temples/{code}/points/reconcile [post]
func (h *Handler) ReconcilePoints(c *gin.Context) {
	t, err := h.service.ReconcilePoints(c.Request.Context(), c.Param("code"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
