package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimiter limits requests per client IP over a one minute window.
func RateLimiter(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 100
	}
	store := memory.NewStore()
	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  int64(perMinute),
	}
	return ginlimiter.NewMiddleware(limiter.New(store, rate))
}
