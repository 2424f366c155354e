package idea

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ParseFilter reads the listing predicates from the query string.
func ParseFilter(c *gin.Context) (Filter, error) {
	f := Filter{
		Category:         c.Query("category"),
		Sector:           c.Query("sector"),
		DifficultyLevel:  c.Query("difficultyLevel"),
		Location:         c.Query("location"),
		TargetAudience:   c.Query("targetAudience"),
		SpecialAdvantage: c.Query("specialAdvantage"),
		Search:           c.Query("search"),
	}
	if raw := strings.TrimSpace(c.Query("maxInvestment")); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, apperr.Validation("maxInvestment must be a number")
		}
		f.MaxInvestment = &d
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperr.Validation("active must be true or false")
		}
		f.Active = &b
	}
	return f, nil
}

// ParsePage reads page, size (or limit), sortBy and sortDir.
func ParsePage(c *gin.Context) PageRequest {
	p := PageRequest{SortBy: c.Query("sortBy"), SortDir: c.Query("sortDir")}
	p.Page, _ = strconv.Atoi(c.Query("page"))
	size := c.Query("size")
	if size == "" {
		size = c.Query("limit")
	}
	p.Limit, _ = strconv.Atoi(size)
	return p
}

// =============================
// Public reads
// =============================

// GetActiveIdeas handles GET /api/ideas
// @Summary List all active ideas
// @Tags Idea
// @Produce json
// @Success 200 {array} Idea
// @Router /api/ideas [get]
func (h *Handler) GetActiveIdeas(c *gin.Context) {
	ideas, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ideas)
}

// GetIdeasPaginated handles GET /api/ideas/paginated and GET /api/ideas/filter
// @Summary Filtered, paginated listing of active ideas
// @Tags Idea
// @Produce json
// @Param category query string false "Main category"
// @Param sector query string false "Sub category"
// @Param difficultyLevel query string false "Easy, Medium or Hard"
// @Param location query string false "Urban, Rural or Both"
// @Param maxInvestment query number false "Inclusive investment upper bound"
// @Param targetAudience query string false "Target audience tag"
// @Param specialAdvantage query string false "Special advantage tag"
// @Param search query string false "Case-insensitive title/description search"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 12, max: 100)"
// @Param sortBy query string false "id, title, category, sector, investmentNeeded, difficultyLevel, location, createdAt"
// @Param sortDir query string false "asc or desc (default: desc)"
// @Success 200 {object} Page
// @Failure 400 {object} gin.H
// @Router /api/ideas/paginated [get]
func (h *Handler) GetIdeasPaginated(c *gin.Context) {
	h.list(c, true)
}

// GetIdea handles GET /api/ideas/:id
// @Summary Get one active idea
// @Tags Idea
// @Produce json
// @Param id path int true "Idea ID"
// @Success 200 {object} Idea
// @Failure 404 {object} gin.H
// @Router /api/ideas/{id} [get]
func (h *Handler) GetIdea(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	i, err := h.service.Get(c.Request.Context(), id, true)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, i)
}

// GetFacet serves /api/categories, /api/sectors, /api/difficulty-levels and /api/locations.
func (h *Handler) GetFacet(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := h.service.Facet(c.Request.Context(), name)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// =============================
// Writes
// =============================

// CreateIdea handles POST /api/ideas
// @Summary Create an idea
// @Tags Idea
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param idea body Request true "Idea"
// @Success 201 {object} Idea
// @Failure 400 {object} gin.H
// @Router /api/ideas [post]
func (h *Handler) CreateIdea(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid idea payload: " + err.Error()})
		return
	}
	created, err := h.service.Create(c.Request.Context(), req, auditlog.ActorFromContext(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateIdea handles PUT /api/ideas/:id (full replace)
// @Summary Replace an idea
// @Tags Idea
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Idea ID"
// @Param idea body Request true "Idea"
// @Success 200 {object} Idea
// @Failure 400 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /api/ideas/{id} [put]
func (h *Handler) UpdateIdea(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid idea payload: " + err.Error()})
		return
	}
	updated, err := h.service.Update(c.Request.Context(), id, req, auditlog.ActorFromContext(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteIdea handles DELETE /api/ideas/:id
// @Summary Delete an idea and its child records
// @Tags Idea
// @Security BearerAuth
// @Param id path int true "Idea ID"
// @Success 200 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /api/ideas/{id} [delete]
func (h *Handler) DeleteIdea(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, auditlog.ActorFromContext(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Idea deleted successfully")
}

// =============================
// Admin
// =============================

// GetAdminIdeas handles GET /admin/ideas (active and inactive)
// @Summary Admin listing with the full filter set
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} Page
// @Router /admin/ideas [get]
func (h *Handler) GetAdminIdeas(c *gin.Context) {
	h.list(c, false)
}

// GetAdminIdea handles GET /admin/ideas/:id
func (h *Handler) GetAdminIdea(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	i, err := h.service.Get(c.Request.Context(), id, false)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, i)
}

// ToggleStatus handles PATCH /admin/ideas/:id/toggle-status
// @Summary Flip an idea's visibility
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Idea ID"
// @Success 200 {object} Idea
// @Router /admin/ideas/{id}/toggle-status [patch]
func (h *Handler) ToggleStatus(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	i, err := h.service.ToggleStatus(c.Request.Context(), id, auditlog.ActorFromContext(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Idea status updated", "idea": i})
}

type statusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetStatus handles PATCH /admin/ideas/:id/status
func (h *Handler) SetStatus(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "active is required"})
		return
	}
	i, err := h.service.SetStatus(c.Request.Context(), id, *req.Active, auditlog.ActorFromContext(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Idea status updated", "idea": i})
}

func (h *Handler) list(c *gin.Context, public bool) {
	f, err := ParseFilter(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	page, err := h.service.List(c.Request.Context(), f, ParsePage(c), public)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
