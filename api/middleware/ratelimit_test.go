package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/getmd/config"
)

func TestRateLimitBurstThenRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d within burst: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("request over burst: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("rejected request carries no Retry-After header")
	}
}

func TestIdentityForKeepsKeyAndIPNamespacesDisjoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	withKey, _ := gin.CreateTestContext(httptest.NewRecorder())
	withKey.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	withKey.Set("api_key", "192.0.2.1")

	anonymous, _ := gin.CreateTestContext(httptest.NewRecorder())
	anonymous.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	anonymous.Request.RemoteAddr = "192.0.2.1:1234"

	keyID := identityFor(withKey)
	ipID := identityFor(anonymous)
	if keyID == ipID {
		t.Errorf("key identity %q collides with ip identity %q", keyID, ipID)
	}
	if keyID != "key:192.0.2.1" {
		t.Errorf("key identity = %q, want key:192.0.2.1", keyID)
	}
	if ipID != "ip:192.0.2.1" {
		t.Errorf("ip identity = %q, want ip:192.0.2.1", ipID)
	}
}

func TestLimiterPoolEvictsIdleEntries(t *testing.T) {
	pool := newLimiterPool(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	pool.get("key:a")
	pool.get("key:b")

	pool.evictIdle(time.Now().Add(1 * time.Minute))
	pool.mu.Lock()
	n := len(pool.entries)
	pool.mu.Unlock()
	if n != 0 {
		t.Errorf("entries after eviction = %d, want 0", n)
	}
}
