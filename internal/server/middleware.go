package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"trade-journal-go/internal/config"
)

// userIDHeader carries the owner identity. Authentication happens in
// front of this service; the header value is trusted as-is.
const userIDHeader = "X-User-ID"

const userIDKey = "userID"

// requireUser extracts the owner identity or rejects the request.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiResponse{Error: "missing user identity"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// rateLimit enforces a per-user token bucket.
func rateLimit(cfg config.RateLimit) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		limiter, ok := limiters[key]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
			limiters[key] = limiter
		}
		return limiter
	}
	return func(c *gin.Context) {
		key := c.GetHeader(userIDHeader)
		if key == "" {
			key = c.ClientIP()
		}
		if !limiterFor(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apiResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
