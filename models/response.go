package models

// FetchResponse is the response for POST /api/v1/fetch.
type FetchResponse struct {
	// Success indicates whether the fetch completed without errors.
	Success bool `json:"success"`

	// Markdown is the final, publication-ready document.
	Markdown string `json:"markdown"`

	// Metadata contains page metadata gathered during the fetch.
	Metadata Metadata `json:"metadata"`

	// Tokens provides token estimates for the converted output.
	Tokens TokenInfo `json:"tokens"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// FetchMethod records how the page was fetched: "http" or "browser".
	FetchMethod string `json:"fetch_method,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// Metadata contains page metadata gathered during the fetch.
type Metadata struct {
	Title     string `json:"title,omitempty"`
	SourceURL string `json:"source_url"`
	Selectors int    `json:"selectors_matched"`
}

// TokenInfo provides a rough token estimate for the converted output.
type TokenInfo struct {
	Estimate int `json:"estimate"`
}

// TimingInfo breaks down where time was spent.
type TimingInfo struct {
	TotalMs      int64 `json:"total_ms"`
	NavigationMs int64 `json:"navigation_ms,omitempty"`
	ConversionMs int64 `json:"conversion_ms,omitempty"`
}

// Version is reported by the health endpoint and the MCP server.
const Version = "0.1.0"

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool"`
	Version   string    `json:"version"`
}

// PoolStats is a snapshot of browser page pool utilisation.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}
