package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimiterThrottles(t *testing.T) {
	rl := NewRateLimiter(0.001, 0.001, 2)
	r := limitedRouter(rl)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/ping", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterSeparatesAnonAndAuth(t *testing.T) {
	rl := NewRateLimiter(0.001, 0.001, 1)
	r := limitedRouter(rl)

	anon := httptest.NewRequest("GET", "/ping", nil)
	anon.RemoteAddr = "203.0.113.7:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, anon)
	require.Equal(t, http.StatusOK, w.Code)

	// Same IP with a token draws from its own bucket.
	authed := httptest.NewRequest("GET", "/ping", nil)
	authed.RemoteAddr = "203.0.113.7:1234"
	authed.Header.Set("Authorization", "Bearer x")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSweepDropsIdleVisitors(t *testing.T) {
	clock := time.Now()
	rl := NewRateLimiter(5, 20, 10)
	rl.now = func() time.Time { return clock }

	rl.limiterFor("anon:203.0.113.7", rl.anonRPS)
	rl.limiterFor("anon:203.0.113.8", rl.anonRPS)
	require.Len(t, rl.visitors, 2)

	// One visitor comes back later, the other goes idle.
	clock = clock.Add(2 * time.Minute)
	rl.limiterFor("anon:203.0.113.7", rl.anonRPS)

	clock = clock.Add(2 * time.Minute)
	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.visitors, 1)
	_, kept := rl.visitors["anon:203.0.113.7"]
	assert.True(t, kept)
}

func TestSweepKeepsRecentVisitors(t *testing.T) {
	rl := NewRateLimiter(5, 20, 10)
	rl.limiterFor("anon:203.0.113.9", rl.anonRPS)
	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.visitors, 1)
}
