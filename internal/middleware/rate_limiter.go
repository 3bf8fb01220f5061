package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// IPRateLimiter keeps one token bucket per client IP
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewIPRateLimiter allows perMinute requests per IP with the same burst
func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (l *IPRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// Allow reports whether ip may make another request now
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.get(ip).Allow()
}

// Cleanup drops the limiters of IPs whose bucket has refilled
func (l *IPRateLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, limiter := range l.limiters {
		if limiter.Tokens() >= float64(l.burst) {
			delete(l.limiters, ip)
		}
	}
}

// limitByClientIP keys the limiter on gin's ClientIP, which only honors
// forwarding headers from the engine's trusted proxies.
func limitByClientIP(limiter *IPRateLimiter, logger *logrus.Logger, reject func(*gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.Allow(ip) {
			logger.WithFields(logrus.Fields{"ip": ip, "path": c.Request.URL.Path}).Warn("Rate limit exceeded")
			reject(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginRateLimit rejects login attempts from IPs over their budget
func LoginRateLimit(limiter *IPRateLimiter, logger *logrus.Logger) gin.HandlerFunc {
	return limitByClientIP(limiter, logger, func(c *gin.Context) {
		c.String(http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
	})
}

// APIRateLimit rejects JSON API requests from IPs over their budget
func APIRateLimit(limiter *IPRateLimiter, logger *logrus.Logger) gin.HandlerFunc {
	return limitByClientIP(limiter, logger, func(c *gin.Context) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate_limited",
			"message": "Too many requests. Please try again later.",
			"code":    "RATE_LIMITED",
		})
	})
}
