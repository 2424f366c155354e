package auditlog

import (
	"github.com/gin-gonic/gin"

	"github.com/sharath018/idea-factory-backend/utils"
)

// ActorFromContext reads the authenticated user and client IP set by middleware.
func ActorFromContext(c *gin.Context) Actor {
	a := Actor{IP: utils.ClientIP(c)}
	if id, ok := utils.CurrentUserID(c); ok {
		a.UserID = &id
	}
	return a
}
