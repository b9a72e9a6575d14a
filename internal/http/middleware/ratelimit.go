package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	last  time.Time
	count int
}

// LocalRateLimiter is the single-process fallback used when Redis is not configured.
type LocalRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientInfo
	lastSweep time.Time
	now       func() time.Time
}

func NewLocalRateLimiter() *LocalRateLimiter {
	return &LocalRateLimiter{clients: make(map[string]*clientInfo), now: time.Now}
}

// Limit blocks clients that send more than maxRequests per window
func (l *LocalRateLimiter) Limit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := l.now()

		l.mu.Lock()
		ci, ok := l.clients[ip]
		if !ok || now.Sub(ci.last) > window {
			l.sweep(now, window)
			l.clients[ip] = &clientInfo{last: now, count: 1}
			l.mu.Unlock()
			RLRequests.WithLabelValues(c.FullPath()).Inc()
			c.Next()
			return
		}
		ci.count++
		count := ci.count
		l.mu.Unlock()

		if count > maxRequests {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

// sweep drops clients whose window has ended, at most once per window.
// Callers hold l.mu.
func (l *LocalRateLimiter) sweep(now time.Time, window time.Duration) {
	if now.Sub(l.lastSweep) < window {
		return
	}
	l.lastSweep = now
	for ip, ci := range l.clients {
		if now.Sub(ci.last) > window {
			delete(l.clients, ip)
		}
	}
}
