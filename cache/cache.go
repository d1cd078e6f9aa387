// Package cache holds recently converted pages for the server mode, keyed
// by everything that shapes the output.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/getmd/models"
)

// entry holds a cached response with its creation timestamp.
type entry struct {
	response  *models.FetchResponse
	createdAt time.Time
}

// Cache is a simple in-memory cache for fetch responses.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// New creates a new Cache with the given maximum number of entries.
// A background goroutine runs every 5 minutes to evict expired entries
// (older than 1 hour).
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}

	go c.cleanupLoop()
	return c
}

// Key derives a cache key from every request field that changes the output.
// Two requests differing only in timing knobs (wait, timeout) share a key.
func Key(req *models.FetchRequest) string {
	h := sha256.New()
	h.Write([]byte(req.URL))
	h.Write([]byte("|"))
	h.Write([]byte(strings.Join(req.Selectors, ",")))
	h.Write([]byte("|"))
	h.Write([]byte(strings.Join(req.ExcludeSelectors, ",")))
	h.Write([]byte("|"))
	h.Write([]byte(req.FetchMode))
	if req.Readability {
		h.Write([]byte("|readability"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached response if it exists and is younger than maxAge.
// maxAge is in milliseconds. If maxAge <= 0, no cache lookup is performed.
// Returns the response and whether it was a cache hit.
func (c *Cache) Get(key string, maxAgeMs int) (*models.FetchResponse, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	maxAge := time.Duration(maxAgeMs) * time.Millisecond
	if time.Since(e.createdAt) > maxAge {
		return nil, false
	}

	// Hand out a copy so callers can stamp CacheStatus and Timing without
	// mutating the stored entry.
	resp := *e.response
	return &resp, true
}

// Set stores a response in the cache. If the cache is at capacity,
// a random entry is evicted to make room.
func (c *Cache) Set(key string, resp *models.FetchResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	cp := *resp
	c.store[key] = &entry{
		response:  &cp,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts entries older than 1 hour every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
