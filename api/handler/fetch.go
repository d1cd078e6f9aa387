package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/getmd/cache"
	"github.com/use-agent/getmd/cleaner"
	"github.com/use-agent/getmd/engine"
	"github.com/use-agent/getmd/models"
)

// Fetch returns a handler for POST /api/v1/fetch.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Dispatcher.Fetch   → HTML fragments + title   (records navigation_ms)
//  3. Cleaner.Convert    → post-processed Markdown   (records conversion_ms)
//  4. Merge metadata (readability title → page title fallback).
//  5. Fill Timing, return 200.
func Fetch(d *engine.Dispatcher, cl *cleaner.Cleaner, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.FetchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.FetchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		// ── 1b. Cache lookup ───────────────────────────────────────
		cacheKey := cache.Key(&req)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				cached.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		// ── 2. Fetch ────────────────────────────────────────────────
		navStart := time.Now()
		result, err := d.Fetch(c.Request.Context(), &req)
		navigationMs := time.Since(navStart).Milliseconds()

		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				NavigationMs: navigationMs,
			})
			return
		}

		// ── 3. Convert ──────────────────────────────────────────────
		convStart := time.Now()
		converted, err := cl.Convert(result.Fragments, result.FinalURL, cleaner.Options{
			Selectors:        req.Selectors,
			SelectorsApplied: result.SelectorsApplied,
			ExcludeSelectors: req.ExcludeSelectors,
			Readability:      req.Readability,
		})
		conversionMs := time.Since(convStart).Milliseconds()

		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				NavigationMs: navigationMs,
				ConversionMs: conversionMs,
			})
			return
		}

		// ── 4. Title fallback ───────────────────────────────────────
		// Readability extracts a better title when it runs; otherwise use
		// the page's own.
		title := converted.Title
		if title == "" {
			title = result.Title
		}

		// ── 5. Assemble response ────────────────────────────────────
		resp := &models.FetchResponse{
			Success:  true,
			Markdown: converted.Markdown,
			Metadata: models.Metadata{
				Title:     title,
				SourceURL: result.FinalURL,
				Selectors: converted.Fragments,
			},
			Tokens:      models.TokenInfo{Estimate: converted.Tokens},
			FetchMethod: result.FetchMethod,
			Timing: models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				NavigationMs: navigationMs,
				ConversionMs: conversionMs,
			},
		}

		// ── 6. Cache store ──────────────────────────────────────────
		if cc != nil && req.MaxAge > 0 {
			cc.Set(cacheKey, resp)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps a FetchError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	var fetchErr *models.FetchError
	if !errors.As(err, &fetchErr) {
		fetchErr = models.NewFetchError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(fetchErr), models.FetchResponse{
		Success: false,
		Error:   fetchErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.FetchError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeNoMatch:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
