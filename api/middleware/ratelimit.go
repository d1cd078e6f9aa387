package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/use-agent/getmd/config"
	"github.com/use-agent/getmd/models"
)

const (
	// idleEviction is how long a limiter may sit unused before it is dropped.
	idleEviction = 1 * time.Hour

	// evictInterval is how often the eviction sweep runs.
	evictInterval = 5 * time.Minute
)

// limiterPool hands out one token bucket per client identity and drops
// buckets that have been idle too long.
type limiterPool struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterPool(cfg config.RateLimitConfig) *limiterPool {
	return &limiterPool{
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		entries: make(map[string]*limiterEntry),
	}
}

func (p *limiterPool) get(identity string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[identity]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(p.rps, p.burst)}
		p.entries[identity] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

// evictIdle removes entries whose last use is before cutoff.
func (p *limiterPool) evictIdle(cutoff time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, e := range p.entries {
		if e.lastSeen.Before(cutoff) {
			delete(p.entries, id)
		}
	}
}

// RateLimit returns token-bucket rate limiting middleware. Each API key has
// its own bucket; unauthenticated clients are bucketed by IP. A background
// goroutine evicts idle buckets so the pool cannot grow without bound.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	pool := newLimiterPool(cfg)

	go func() {
		ticker := time.NewTicker(evictInterval)
		defer ticker.Stop()
		for range ticker.C {
			pool.evictIdle(time.Now().Add(-idleEviction))
		}
	}()

	return func(c *gin.Context) {
		if !pool.get(identityFor(c)).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.FetchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit exceeded for this API key or client IP",
				},
			})
			return
		}
		c.Next()
	}
}

// identityFor derives the rate-limit bucket for a request. The prefixes keep
// the key and IP namespaces disjoint, so an API key that happens to look
// like an address can never share a bucket with one.
func identityFor(c *gin.Context) string {
	if key, ok := c.Get("api_key"); ok {
		return "key:" + key.(string)
	}
	return "ip:" + c.ClientIP()
}
