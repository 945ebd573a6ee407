package middleware

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const rateLimitedCode = "RATE_LIMITED"

// Health-check не ограничивается.
var skipPaths = map[string]bool{
	"/health":        true,
	"/api/v1/health": true,
}

// RateLimitMiddleware ограничивает весь сервис одним лимитером.
func RateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		if !limiter.Allow() {
			log.Printf("[ratelimit] blocked %s %s", c.ClientIP(), c.Request.URL.Path)
			abortLimited(c)
			return
		}

		c.Next()
	}
}

// IPRateLimiter хранит отдельный лимитер на каждый адрес.
type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		r:   r,
		b:   b,
	}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = limiter
	}
	return limiter
}

func IPRateLimitMiddleware(ipLimiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		if !ipLimiter.GetLimiter(clientIP).Allow() {
			log.Printf("[ratelimit] blocked %s %s", clientIP, c.Request.URL.Path)
			abortLimited(c)
			return
		}

		c.Next()
	}
}

func abortLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"ok": false,
		"error": gin.H{
			"code":     rateLimitedCode,
			"message":  "rate limit exceeded, please try again later",
			"trace_id": uuid.NewString(),
		},
	})
}
