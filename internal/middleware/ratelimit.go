package middleware

import (
	"net/http"
	"sync"
	"time"

	apperrors "micasa/internal/errors"
	"micasa/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long a client's limiter survives without requests.
const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out a token bucket per client key.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	rps      rate.Limit
	burst    int
	lastScan time.Time
	now      func() time.Time
}

// NewRateLimiter allows rps requests per second with the given burst per client.
func NewRateLimiter(rps, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow reports whether key may make another request now.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastScan) > idleLimiterTTL {
		for k, cl := range l.clients {
			if now.Sub(cl.lastSeen) > idleLimiterTTL {
				delete(l.clients, k)
			}
		}
		l.lastScan = now
	}

	cl, ok := l.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// RateLimit rejects requests over the limit with 429. Authenticated callers are
// keyed by uid, anonymous ones by client IP.
func RateLimit(l *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GetUserID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !l.Allow(key) {
			c.Header("Retry-After", "1")
			response.Abort(c, http.StatusTooManyRequests, apperrors.ErrRateLimited.Error())
			return
		}
		c.Next()
	}
}
