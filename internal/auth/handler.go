package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/idea-factory-backend/utils"
)

type Handler struct{ service Service }

func NewHandler(s Service) *Handler { return &Handler{s} }

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request: " + err.Error()})
}

// ===============================
// User account lifecycle
// ===============================

// Signup handles POST /api/users/signup
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body SignupRequest true "Signup payload"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} gin.H
// @Failure 409 {object} gin.H
// @Router /api/users/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Login handles POST /api/users/login
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} gin.H
// @Router /api/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GoogleLogin handles POST /api/users/google-login
// @Summary Log in with a Google identity
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body GoogleLoginRequest true "Google ID token or profile"
// @Success 200 {object} AuthResponse
// @Failure 409 {object} gin.H
// @Router /api/users/google-login [post]
func (h *Handler) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.service.GoogleLogin(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh handles POST /api/users/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

type forgotPasswordReq struct {
	Email string `json:"email" binding:"required"`
}

// ForgotPassword handles POST /api/users/forgot-password
// @Summary Request a password reset link
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body forgotPasswordReq true "Email"
// @Success 200 {object} gin.H
// @Router /api/users/forgot-password [post]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "If the email is registered, a reset link has been sent")
}

type resetPasswordReq struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ResetPassword handles POST /api/users/reset-password
// @Summary Reset password with a reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body resetPasswordReq true "Token and new password"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H
// @Router /api/users/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Password reset successfully")
}

type verifyEmailReq struct {
	Token string `json:"token" binding:"required"`
}

// VerifyEmail handles POST /api/users/verify-email
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req verifyEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.service.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Email verified successfully")
}

// ===============================
// Admin
// ===============================

// AdminLogin handles POST /api/auth/login and POST /api/admin/login
// @Summary Admin login; replaces any other active session of the admin
// @Tags Admin Auth
// @Accept json
// @Produce json
// @Param body body AdminLoginRequest true "Username or email and password"
// @Success 200 {object} AdminAuthResponse
// @Failure 401 {object} gin.H
// @Failure 403 {object} gin.H
// @Router /api/auth/login [post]
func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.service.AdminLogin(c.Request.Context(), req, utils.ClientIP(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Validate handles POST /api/auth/validate. The bearer token is checked
// here because the route sits on the public allow-list.
// @Summary Validate an admin bearer token
// @Tags Admin Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H
// @Failure 401 {object} gin.H
// @Router /api/auth/validate [post]
func (h *Handler) Validate(c *gin.Context) {
	token := BearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token"})
		return
	}
	claims, user, err := h.service.Authenticate(c.Request.Context(), token)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Token is valid",
		"username":  user.Username,
		"role":      user.Role,
		"sessionId": claims.SessionID,
	})
}

// AdminLogout handles POST /admin/logout
func (h *Handler) AdminLogout(c *gin.Context) {
	if err := h.service.AdminLogout(c.Request.Context(), c.GetString(utils.CtxSessionID)); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Admin logged out successfully")
}

// AdminProfile handles GET /admin/profile
func (h *Handler) AdminProfile(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}
	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
