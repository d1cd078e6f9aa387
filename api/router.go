// Package api wires the HTTP surface for server mode.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/getmd/api/handler"
	"github.com/use-agent/getmd/api/middleware"
	"github.com/use-agent/getmd/cache"
	"github.com/use-agent/getmd/cleaner"
	"github.com/use-agent/getmd/config"
	"github.com/use-agent/getmd/engine"
	"github.com/use-agent/getmd/scraper"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if keys configured) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(d *engine.Dispatcher, sc *scraper.Scraper, cl *cleaner.Cleaner, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health endpoint stays outside auth.
	v1.GET("/health", handler.Health(sc, startTime))

	// Protected group with auth and rate limiting.
	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/fetch", handler.Fetch(d, cl, cc))

	return r
}
