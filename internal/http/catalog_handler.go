package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/recycle-disposals/internal/service"
)

func (h *Handler) listMaterials(c *gin.Context) {
	materials, err := h.catalog.ListMaterials(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

func (h *Handler) searchMaterials(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return
		}
		page = parsed
	}

	result, err := h.catalog.SearchMaterials(c.Request.Context(), service.MaterialSearchInput{
		Search: c.Query("search"),
		Type:   c.Query("type"),
		Page:   page,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getMaterial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	material, err := h.catalog.GetMaterial(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, material)
}

func (h *Handler) listAchievements(c *gin.Context) {
	achievements, err := h.catalog.ListAchievements(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, achievements)
}

func (h *Handler) getAchievement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	achievement, err := h.catalog.GetAchievement(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, achievement)
}
