package category

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/idea-factory-backend/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetMainCategories handles GET /api/main-categories
// @Summary List main categories
// @Tags Category
// @Produce json
// @Success 200 {array} string
// @Router /api/main-categories [get]
func (h *Handler) GetMainCategories(c *gin.Context) {
	out, err := h.service.MainCategories(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetSubCategories handles GET /api/sub-categories?mainCategory=
// @Summary List sub categories of a main category
// @Tags Category
// @Produce json
// @Param mainCategory query string true "Main category"
// @Success 200 {array} string
// @Failure 400 {object} gin.H
// @Router /api/sub-categories [get]
func (h *Handler) GetSubCategories(c *gin.Context) {
	out, err := h.service.SubCategories(c.Request.Context(), c.Query("mainCategory"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetHierarchy handles GET /api/category-hierarchy
// @Summary Main category to sub category mapping
// @Tags Category
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/category-hierarchy [get]
func (h *Handler) GetHierarchy(c *gin.Context) {
	out, err := h.service.Hierarchy(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateCategory handles POST /admin/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "mainCategory and subCategory are required"})
		return
	}
	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
