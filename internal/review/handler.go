package review

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetReviews handles GET /api/idea-details/:ideaId/reviews
// @Summary Approved reviews of an idea, newest first
// @Tags Review
// @Produce json
// @Param ideaId path int true "Idea ID"
// @Success 200 {array} IdeaReview
// @Router /api/idea-details/{ideaId}/reviews [get]
func (h *Handler) GetReviews(c *gin.Context) {
	ideaID, ok := utils.ParamID(c, "ideaId")
	if !ok {
		return
	}
	out, err := h.service.ListApproved(c.Request.Context(), ideaID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetRatingSummary handles GET /api/idea-details/:ideaId/rating-summary
// @Summary Average rating and distribution of approved reviews
// @Tags Review
// @Produce json
// @Param ideaId path int true "Idea ID"
// @Success 200 {object} RatingSummary
// @Router /api/idea-details/{ideaId}/rating-summary [get]
func (h *Handler) GetRatingSummary(c *gin.Context) {
	ideaID, ok := utils.ParamID(c, "ideaId")
	if !ok {
		return
	}
	out, err := h.service.RatingSummary(c.Request.Context(), ideaID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// SubmitReview handles POST /api/idea-details/:ideaId/reviews
// @Summary Submit a review for moderation
// @Tags Review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ideaId path int true "Idea ID"
// @Param review body SubmitRequest true "Review"
// @Success 201 {object} IdeaReview
// @Failure 400 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /api/idea-details/{ideaId}/reviews [post]
func (h *Handler) SubmitReview(c *gin.Context) {
	ideaID, ok := utils.ParamID(c, "ideaId")
	if !ok {
		return
	}
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid review payload: " + err.Error()})
		return
	}
	var userID *uint
	if id, ok := utils.CurrentUserID(c); ok {
		userID = &id
	}
	rv, err := h.service.Submit(c.Request.Context(), ideaID, req, userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Review submitted and awaiting approval",
		"review":  rv,
	})
}

// VoteReview handles POST /api/idea-details/reviews/:reviewId/vote
func (h *Handler) VoteReview(c *gin.Context) {
	id, ok := utils.ParamID(c, "reviewId")
	if !ok {
		return
	}
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "helpful is required"})
		return
	}
	if err := h.service.Vote(c.Request.Context(), id, *req.Helpful); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Vote recorded")
}

// GetPendingReviews handles GET /admin/reviews/pending
func (h *Handler) GetPendingReviews(c *gin.Context) {
	out, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ApproveReview handles POST /admin/reviews/:reviewId/approve
func (h *Handler) ApproveReview(c *gin.Context) {
	id, ok := utils.ParamID(c, "reviewId")
	if !ok {
		return
	}
	if err := h.service.Approve(c.Request.Context(), id, auditlog.ActorFromContext(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Review approved")
}

// RejectReview handles DELETE /admin/reviews/:reviewId
func (h *Handler) RejectReview(c *gin.Context) {
	id, ok := utils.ParamID(c, "reviewId")
	if !ok {
		return
	}
	if err := h.service.Reject(c.Request.Context(), id, auditlog.ActorFromContext(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Review rejected")
}
