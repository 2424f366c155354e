package userprofile

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/utils"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

func currentUser(c *gin.Context) (uint, bool) {
	id, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, apperr.Unauthorized("authentication required"))
	}
	return id, ok
}

// GetDashboard handles GET /api/dashboard
// @Summary Signed-in user's dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Dashboard
// @Router /api/dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.service.Dashboard(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/dashboard/profile
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateProfile handles PUT /api/dashboard/profile
// @Summary Update bio, phone, location or picture
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateRequest true "Fields to change"
// @Success 200 {object} Profile
// @Failure 400 {object} gin.H
// @Router /api/dashboard/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid profile payload: " + err.Error()})
		return
	}
	out, err := h.service.UpdateProfile(c.Request.Context(), userID, req, utils.ClientIP(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":                     true,
		"message":                     "Profile updated successfully",
		"user":                        out.User,
		"profileCompletionPercentage": out.CompletionPercentage,
	})
}

// POST /api/dashboard/logout
func (h *Handler) Logout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	h.service.Logout(c.Request.Context(), userID, utils.ClientIP(c))
	utils.RespondMessage(c, http.StatusOK, "User logged out successfully")
}

// GetAdminDashboard handles GET /admin/dashboard
// @Summary Idea, upload and moderation counters
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AdminDashboard
// @Router /admin/dashboard [get]
func (h *Handler) GetAdminDashboard(c *gin.Context) {
	out, err := h.service.AdminDashboard(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
