package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	visitorMaxIdle = 3 * time.Minute
	sweepInterval  = time.Minute
)

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles per client IP, with separate budgets for anonymous
// and authenticated callers (token-bearing requests get the higher one).
// A janitor sweeps idle entries so the map stays bounded under IP churn.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	anonRPS  rate.Limit
	authRPS  rate.Limit
	burst    int
	now      func() time.Time
}

func NewRateLimiter(anonRPS, authRPS float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		anonRPS:  rate.Limit(anonRPS),
		authRPS:  rate.Limit(authRPS),
		burst:    burst,
		now:      time.Now,
	}
	go rl.janitor()
	return rl
}

func (rl *RateLimiter) limiterFor(key string, rps rate.Limit) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = rl.now()
		return v.lim
	}
	v := &visitor{lim: rate.NewLimiter(rps, rl.burst), lastSeen: rl.now()}
	rl.visitors[key] = v
	return v.lim
}

func (rl *RateLimiter) janitor() {
	for range time.Tick(sweepInterval) {
		rl.sweep()
	}
}

// sweep drops visitors not seen within the idle window. A returning client
// simply gets a fresh limiter with a full burst.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-visitorMaxIdle)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rps := rl.anonRPS
		key := "anon:" + c.ClientIP()
		if c.GetHeader("Authorization") != "" {
			rps = rl.authRPS
			key = "auth:" + c.ClientIP()
		}

		if !rl.limiterFor(key, rps).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": "Trop de requêtes. Veuillez réessayer plus tard.",
			})
			return
		}
		c.Next()
	}
}
