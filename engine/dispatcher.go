package engine

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/use-agent/getmd/models"
)

// Dispatcher applies the request's fetch mode. In auto mode it tries the
// HTTP engine first and escalates to the browser engine when the HTTP
// result fails or looks JS-rendered. Per-domain outcomes are remembered so
// repeat fetches of browser-only sites skip the wasted HTTP attempt.
type Dispatcher struct {
	httpEngine    Engine
	browserEngine Engine
	memory        *ModeMemory
	maxTimeout    time.Duration
}

// NewDispatcher creates a Dispatcher over the two engines. maxTimeout caps
// the per-request timeout for the HTTP path (the browser path clamps its
// own).
func NewDispatcher(httpEngine, browserEngine Engine, maxTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		httpEngine:    httpEngine,
		browserEngine: browserEngine,
		memory:        NewModeMemory(24 * time.Hour),
		maxTimeout:    maxTimeout,
	}
}

// Fetch retrieves the page according to req.FetchMode.
func (d *Dispatcher) Fetch(ctx context.Context, req *models.FetchRequest) (*Result, error) {
	switch req.FetchMode {
	case models.FetchModeHTTP:
		return d.fetchHTTP(ctx, req)
	case models.FetchModeBrowser:
		return d.browserEngine.Fetch(ctx, req)
	}

	// Auto mode.
	domain := hostOf(req.URL)
	if d.memory.Get(domain) == models.FetchModeBrowser {
		slog.Debug("mode memory: domain needs the browser", "domain", domain)
		return d.browserEngine.Fetch(ctx, req)
	}

	res, err := d.fetchHTTP(ctx, req)
	if err == nil && !needsBrowser(res.Fragments[0]) {
		d.memory.Set(domain, models.FetchModeHTTP)
		return res, nil
	}
	if err != nil {
		slog.Debug("http fetch failed, escalating to browser",
			"url", req.URL, "error", err)
	} else {
		slog.Debug("page looks JS-rendered, escalating to browser",
			"url", req.URL)
	}

	browserRes, browserErr := d.browserEngine.Fetch(ctx, req)
	if browserErr != nil {
		return nil, browserErr
	}
	d.memory.Set(domain, models.FetchModeBrowser)
	return browserRes, nil
}

// Stop terminates the dispatcher's background bookkeeping.
func (d *Dispatcher) Stop() {
	d.memory.Stop()
}

// fetchHTTP bounds the HTTP engine with the request timeout and wraps raw
// errors into typed FetchErrors.
func (d *Dispatcher) fetchHTTP(ctx context.Context, req *models.FetchRequest) (*Result, error) {
	timeout := time.Duration(req.Timeout) * time.Second
	if timeout > d.maxTimeout {
		timeout = d.maxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := d.httpEngine.Fetch(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewFetchError(models.ErrCodeTimeout, "http fetch timed out", err)
		}
		return nil, models.NewFetchError(models.ErrCodeNavigation, "http fetch failed", err)
	}
	return res, nil
}

// hostOf parses the hostname from a URL string.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
