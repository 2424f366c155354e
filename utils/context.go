package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Keys set on the gin context by the auth and audit middleware.
const (
	CtxUser      = "user"
	CtxUserID    = "user_id"
	CtxUsername  = "username"
	CtxRole      = "role"
	CtxSessionID = "session_id"
	CtxClaims    = "claims"
	CtxClientIP  = "client_ip"
)

func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func ClientIP(c *gin.Context) string {
	if ip := c.GetString(CtxClientIP); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// ParamID parses a positive numeric path parameter, answering 400 when it
// is not one.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
