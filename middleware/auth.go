package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auth"
	"github.com/sharath018/idea-factory-backend/utils"
)

// Authenticator is the part of auth.Service the middleware needs.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, *auth.User, error)
}

// AuthMiddleware requires a valid bearer access token and stores the caller
// on the gin context.
func AuthMiddleware(authSvc Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			utils.RespondError(c, apperr.Unauthorized("missing Authorization header"))
			return
		}

		claims, user, err := authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.Set(utils.CtxUser, user)
		c.Set(utils.CtxUserID, user.ID)
		c.Set(utils.CtxUsername, user.Username)
		c.Set(utils.CtxRole, user.Role)
		c.Set(utils.CtxClaims, claims)
		if claims.SessionID != "" {
			c.Set(utils.CtxSessionID, claims.SessionID)
		}
		c.Next()
	}
}
