package models

// Fetch modes accepted by FetchRequest.FetchMode.
const (
	FetchModeAuto    = "auto"
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// FetchRequest describes one fetch-and-convert operation. It is the payload
// for POST /api/v1/fetch and the internal carrier for the CLI and MCP
// front-ends.
type FetchRequest struct {
	// URL is the target page. Required.
	URL string `json:"url" binding:"required,url"`

	// Selectors lists CSS selectors whose matching elements are converted
	// to Markdown. When empty, the whole page body is used (or the main
	// article, when Readability is set).
	Selectors []string `json:"selectors,omitempty"`

	// Wait is the extra wait in seconds after page load, giving JS
	// rendering time to settle. Default: 2.
	Wait int `json:"wait,omitempty" binding:"omitempty,min=0,max=120"`

	// Timeout is the maximum duration in seconds for navigation and
	// rendering. Default: 60. Max: 300.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=300"`

	// FetchMode controls the fetching strategy.
	// "auto" (default): plain HTTP first, escalate to the browser when the
	// page looks JS-rendered or the HTTP fetch fails.
	// "http": force pure HTTP (fastest, no JS rendering).
	// "browser": force headless Chrome.
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=auto browser http"`

	// Readability extracts the main article content instead of the body
	// when no selectors are given.
	Readability bool `json:"readability,omitempty"`

	// Stealth enables anti-bot-detection evasions in the browser path.
	Stealth bool `json:"stealth,omitempty"`

	// NoCache disables the browser cache so the latest content is fetched.
	NoCache bool `json:"no_cache,omitempty"`

	// ExcludeSelectors lists CSS selectors whose elements are removed from
	// the fetched HTML before conversion.
	ExcludeSelectors []string `json:"exclude_selectors,omitempty"`

	// MaxAge is the maximum acceptable cache age in milliseconds for
	// server mode. 0 disables cache lookup.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// ValidFetchMode reports whether mode is one of the accepted fetch modes or
// empty. The API validates via the binding tag; the CLI and other callers
// use this directly.
func ValidFetchMode(mode string) bool {
	switch mode {
	case "", FetchModeAuto, FetchModeHTTP, FetchModeBrowser:
		return true
	}
	return false
}

// Defaults applies default values to unset fields.
func (r *FetchRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 60
	}
	if r.Wait == 0 {
		r.Wait = 2
	}
	if r.FetchMode == "" {
		r.FetchMode = FetchModeAuto
	}
}
