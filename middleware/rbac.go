package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auth"
	"github.com/sharath018/idea-factory-backend/utils"
)

// RequireRole lets the request through when the authenticated user holds one
// of the allowed roles. It must run after AuthMiddleware.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(utils.CtxRole)
		if role == "" {
			utils.RespondError(c, apperr.Unauthorized("unauthenticated"))
			return
		}
		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}
		utils.RespondError(c, apperr.Forbidden("insufficient permissions"))
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRole(auth.RoleAdmin)
}

// RequireUser accepts any signed-in account.
func RequireUser() gin.HandlerFunc {
	return RequireRole(auth.RoleUser, auth.RoleAdmin)
}
