package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/getmd/models"
	"github.com/use-agent/getmd/scraper"
)

// degradedPoolUtilisation is the fraction of the page pool in use at which
// the health endpoint starts reporting "degraded".
const degradedPoolUtilisation = 0.8

// Health returns a handler for GET /api/v1/health. It is mounted outside
// auth so monitoring probes work without a key.
func Health(sc *scraper.Scraper, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := sc.Stats()
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    poolStatus(stats),
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Version:   models.Version,
		})
	}
}

// poolStatus grades pool pressure: "degraded" once utilisation reaches the
// threshold, "healthy" otherwise.
func poolStatus(stats models.PoolStats) string {
	if stats.MaxPages > 0 && float64(stats.ActivePages) >= float64(stats.MaxPages)*degradedPoolUtilisation {
		return "degraded"
	}
	return "healthy"
}
