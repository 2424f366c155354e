package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/sharath018/idea-factory-backend/config"
	_ "github.com/sharath018/idea-factory-backend/docs"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/auth"
	"github.com/sharath018/idea-factory-backend/internal/bulkupload"
	"github.com/sharath018/idea-factory-backend/internal/category"
	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/ideadetail"
	"github.com/sharath018/idea-factory-backend/internal/notification"
	"github.com/sharath018/idea-factory-backend/internal/review"
	"github.com/sharath018/idea-factory-backend/internal/uploadhistory"
	"github.com/sharath018/idea-factory-backend/internal/userprofile"
	"github.com/sharath018/idea-factory-backend/middleware"
)

// Setup registers every route. Catalog reads and the sign-in endpoints are
// public; everything under /admin needs an admin token.
func Setup(r *gin.Engine, cfg *config.Config, svc *Services) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authHandler := auth.NewHandler(svc.Auth)
	categoryHandler := category.NewHandler(svc.Categories)
	ideaHandler := idea.NewHandler(svc.Ideas)
	uploadHandler := bulkupload.NewHandler(svc.Ingestion, cfg.MaxUploadMB)
	historyHandler := uploadhistory.NewHandler(svc.UploadHistory)
	reviewHandler := review.NewHandler(svc.Reviews)
	detailHandler := ideadetail.NewHandler(svc.IdeaDetails)
	profileHandler := userprofile.NewHandler(svc.Profiles)
	auditHandler := auditlog.NewHandler(svc.Audit)
	notificationHandler := notification.NewHandler(svc.Notifications)

	requireAuth := middleware.AuthMiddleware(svc.Auth)

	// ========== Public API ==========
	api := r.Group("/api")
	api.Use(middleware.RateLimiter(cfg.RateLimitPerMinute))
	api.Use(middleware.AuditMiddleware())

	users := api.Group("/users")
	{
		users.POST("/signup", authHandler.Signup)
		users.POST("/login", authHandler.Login)
		users.POST("/google-login", authHandler.GoogleLogin)
		users.POST("/refresh", authHandler.Refresh)
		users.POST("/forgot-password", authHandler.ForgotPassword)
		users.POST("/reset-password", authHandler.ResetPassword)
		users.POST("/verify-email", authHandler.VerifyEmail)
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.AdminLogin)
		authGroup.POST("/validate", authHandler.Validate)
	}
	api.POST("/admin/login", authHandler.AdminLogin)

	api.GET("/main-categories", categoryHandler.GetMainCategories)
	api.GET("/sub-categories", categoryHandler.GetSubCategories)
	api.GET("/category-hierarchy", categoryHandler.GetHierarchy)

	api.GET("/categories", ideaHandler.GetFacet("categories"))
	api.GET("/sectors", ideaHandler.GetFacet("sectors"))
	api.GET("/difficulty-levels", ideaHandler.GetFacet("difficultyLevels"))
	api.GET("/locations", ideaHandler.GetFacet("locations"))

	ideas := api.Group("/ideas")
	{
		ideas.GET("", ideaHandler.GetActiveIdeas)
		ideas.GET("/paginated", ideaHandler.GetIdeasPaginated)
		ideas.GET("/filter", ideaHandler.GetIdeasPaginated)
		ideas.GET("/:id", ideaHandler.GetIdea)

		writes := ideas.Group("", requireAuth, middleware.RequireUser())
		writes.POST("", ideaHandler.CreateIdea)
		writes.PUT("/:id", ideaHandler.UpdateIdea)
		writes.DELETE("/:id", ideaHandler.DeleteIdea)
	}

	details := api.Group("/idea-details")
	{
		details.GET("/:ideaId/complete", detailHandler.GetComplete)
		details.GET("/:ideaId/internal-factors", detailHandler.GetInternalFactors)
		details.GET("/:ideaId/investments", detailHandler.GetInvestments)
		details.GET("/:ideaId/schemes", detailHandler.GetSchemes)
		details.GET("/:ideaId/schemes/:schemeType", detailHandler.GetSchemes)
		details.GET("/:ideaId/bank-loans", detailHandler.GetBankLoans)
		details.GET("/:ideaId/bank-loans/:loanType", detailHandler.GetBankLoans)
		details.GET("/:ideaId/reviews", reviewHandler.GetReviews)
		details.GET("/:ideaId/rating-summary", reviewHandler.GetRatingSummary)

		details.POST("/:ideaId/reviews", requireAuth, middleware.RequireUser(), reviewHandler.SubmitReview)
		details.POST("/reviews/:reviewId/vote", requireAuth, middleware.RequireUser(), reviewHandler.VoteReview)
	}

	// ========== Signed-in users ==========
	protected := api.Group("", requireAuth, middleware.RequireUser())
	{
		dashboard := protected.Group("/dashboard")
		dashboard.GET("", profileHandler.GetDashboard)
		dashboard.GET("/profile", profileHandler.GetProfile)
		dashboard.PUT("/profile", profileHandler.UpdateProfile)
		dashboard.POST("/logout", profileHandler.Logout)

		notifications := protected.Group("/notifications")
		notifications.GET("", notificationHandler.GetMyNotifications)
		notifications.PUT("/read-all", notificationHandler.MarkAllRead)
		notifications.PUT("/:id/read", notificationHandler.MarkRead)
	}

	// ========== Admin ==========
	admin := r.Group("/admin")
	admin.Use(middleware.RateLimiter(cfg.RateLimitPerMinute))
	admin.Use(middleware.AuditMiddleware())
	admin.Use(requireAuth, middleware.RequireAdmin())
	{
		admin.POST("/logout", authHandler.AdminLogout)
		admin.GET("/profile", authHandler.AdminProfile)
		admin.GET("/dashboard", profileHandler.GetAdminDashboard)

		admin.POST("/categories", categoryHandler.CreateCategory)

		admin.GET("/ideas", ideaHandler.GetAdminIdeas)
		admin.GET("/ideas/:id", ideaHandler.GetAdminIdea)
		admin.PATCH("/ideas/:id/toggle-status", ideaHandler.ToggleStatus)
		admin.PATCH("/ideas/:id/status", ideaHandler.SetStatus)

		admin.POST("/upload-ideas", uploadHandler.UploadIdeas)
		admin.GET("/upload-template", uploadHandler.UploadTemplate)

		history := admin.Group("/upload-history")
		history.GET("", historyHandler.GetUploadHistory)
		history.GET("/stats", historyHandler.GetUploadStats)
		history.GET("/export", historyHandler.ExportUploadHistory)
		history.GET("/:batchId", historyHandler.GetUploadBatch)
		history.DELETE("/:batchId", historyHandler.DeleteUploadBatch)

		reviews := admin.Group("/reviews")
		reviews.GET("/pending", reviewHandler.GetPendingReviews)
		reviews.POST("/:reviewId/approve", reviewHandler.ApproveReview)
		reviews.DELETE("/:reviewId", reviewHandler.RejectReview)

		adminDetails := admin.Group("/idea-details")
		adminDetails.POST("/:ideaId/internal-factors", detailHandler.CreateInternalFactors)
		adminDetails.POST("/:ideaId/investments", detailHandler.CreateInvestment)
		adminDetails.POST("/:ideaId/schemes", detailHandler.CreateScheme)
		adminDetails.POST("/:ideaId/bank-loans", detailHandler.CreateBankLoan)
		adminDetails.DELETE("/internal-factors/:id", detailHandler.DeleteInternalFactors)
		adminDetails.DELETE("/investments/:id", detailHandler.DeleteInvestment)
		adminDetails.DELETE("/schemes/:id", detailHandler.DeleteScheme)
		adminDetails.DELETE("/bank-loans/:id", detailHandler.DeleteBankLoan)

		admin.GET("/audit-logs", auditHandler.GetAuditLogs)
		admin.GET("/audit-logs/:id", auditHandler.GetAuditLogByID)
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") || strings.HasPrefix(c.Request.URL.Path, "/admin") {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "endpoint not found"})
			return
		}
		c.Status(http.StatusNotFound)
	})
}
