package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/idea-factory-backend/utils"
)

// AuditMiddleware stores the caller's IP for audit entries.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.CtxClientIP, getClientIP(c))
		c.Next()
	}
}

// getClientIP prefers proxy headers over the socket address.
func getClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		// first hop is the client
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if isValidIP(ip) {
			return ip
		}
	}
	for _, h := range []string{"X-Real-Ip", "CF-Connecting-IP", "X-Forwarded"} {
		if v := strings.TrimSpace(c.GetHeader(h)); v != "" && isValidIP(v) {
			return v
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
