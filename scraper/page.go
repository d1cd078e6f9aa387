package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/getmd/models"
	"github.com/ysmood/gson"
)

// Fetch renders the requested page in a pooled browser tab and extracts the
// HTML fragments matching the request's selectors.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Timeout guard           – clamp the page timeout, hard deadline on the whole fetch
//  2. Acquire page            – borrow a tab from the pool (or create one)
//  3. DEFER: cleanup          – about:blank + return to pool (leak prevention)
//  4. Stealth injection       – mask navigator.webdriver etc. (before navigation!)
//  5. Cache + hijack          – disable browser cache, block heavy resource types
//  6. Context binding         – propagate the deadline to all Rod operations
//  7. Navigate                – triggers page load
//  8. Wait                    – DOM stable, then the extra JS-rendering wait
//  9. Extract                 – per-selector outerHTML (or the full document)
//  10. Metadata               – status code, title, final URL (best-effort)
//
// Why this order matters:
//   - Steps 4-5 MUST happen before step 7: stealth JS, cache settings and
//     resource blocking only take effect for navigations that happen after
//     they are installed.
//   - Step 3's about:blank uses the ORIGINAL page reference (without request
//     context), so cleanup succeeds even if the request context has expired.
func (s *Scraper) Fetch(ctx context.Context, req *models.FetchRequest) (*FetchResult, error) {
	// ── 1. Timeout guard ──────────────────────────────────────────────
	timeout := time.Duration(req.Timeout) * time.Second
	if timeout > s.fetcherCfg.MaxTimeout {
		timeout = s.fetcherCfg.MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, fetchDeadline(timeout))
	defer cancel()

	// ── 2. Acquire page from pool ─────────────────────────────────────
	s.activePages.Add(1)
	defer s.activePages.Add(-1)

	page, acquireErr := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return nil, models.NewFetchError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			acquireErr,
		)
	}

	// ── 3. CRITICAL DEFER: prevent DOM memory leak + guarantee pool return
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank",
				"error", navErr,
			)
		}
		s.pagePool.Put(page)
	}()

	// ── 4. Stealth injection ──────────────────────────────────────────
	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	// ── 4b. Referer header: pretend we arrived from a Google search ──
	if u, parseErr := url.Parse(req.URL); parseErr == nil {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{
				"Referer": "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname()),
			}),
		}.Call(page)
	}

	// ── 5. Cache + hijack ─────────────────────────────────────────────
	if req.NoCache {
		if cacheErr := (proto.NetworkSetCacheDisabled{CacheDisabled: true}).Call(page); cacheErr != nil {
			slog.Warn("failed to disable browser cache", "error", cacheErr)
		}
	}
	router := setupHijack(page, s.fetcherCfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	// ── 6. Bind request context to page ───────────────────────────────
	p := page.Context(ctx)

	// ── 7. Navigate ───────────────────────────────────────────────────
	if navErr := p.Navigate(req.URL); navErr != nil {
		return nil, categorizeError(navErr, "navigation to target URL failed")
	}

	// ── 8. Wait strategy ──────────────────────────────────────────────
	// NOTE: WaitRequestIdle uses the Fetch domain which conflicts with
	// HijackRequests on Chromium 145+. Use WaitDOMStable instead.
	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"error", stableErr,
		)
	}
	if req.Wait > 0 {
		select {
		case <-time.After(time.Duration(req.Wait) * time.Second):
		case <-ctx.Done():
			return nil, categorizeError(ctx.Err(), "timed out waiting for JS rendering")
		}
	}

	// ── 9. Extract fragments ──────────────────────────────────────────
	result := &FetchResult{}
	if len(req.Selectors) > 0 {
		for _, sel := range req.Selectors {
			fragment, evalErr := extractSelector(p, sel)
			if evalErr != nil {
				return nil, categorizeError(evalErr, "failed to evaluate selector "+sel)
			}
			if fragment == "" {
				slog.Warn("no elements matched selector", "selector", sel, "url", req.URL)
				continue
			}
			result.Fragments = append(result.Fragments, fragment)
		}
		if len(result.Fragments) == 0 {
			return nil, models.NewFetchError(
				models.ErrCodeNoMatch,
				"no elements matched the specified selectors",
				nil,
			)
		}
		result.SelectorsApplied = true
	} else {
		rawHTML, htmlErr := p.HTML()
		if htmlErr != nil {
			return nil, categorizeError(htmlErr, "failed to extract page HTML")
		}
		result.Fragments = []string{rawHTML}
	}

	// ── 10. Metadata (best-effort) ────────────────────────────────────
	// performance.getEntriesByType gives the HTTP status code without CDP
	// event listeners, which conflict with the hijack router's Fetch domain.
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); err == nil {
		result.StatusCode = res.Value.Int()
	}

	result.Title = evalStringOrEmpty(p, `() => document.title`)
	result.FinalURL = evalStringOrEmpty(p, `() => window.location.href`)
	if result.FinalURL == "" {
		result.FinalURL = req.URL
	}

	return result, nil
}

// extractSelector returns the outerHTML of every element matching the CSS
// selector, newline-joined, or "" when nothing matched. The selector is
// spliced into the script as an escaped JS string literal.
func extractSelector(p *rod.Page, selector string) (string, error) {
	js := `() => {
		const els = document.querySelectorAll(` + escapeJSString(selector) + `);
		return Array.from(els).map(el => el.outerHTML).join('\n');
	}`
	res, err := p.Eval(js)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed FetchErrors so callers can map
// them to exit codes or HTTP statuses.
func categorizeError(err error, msg string) *models.FetchError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewFetchError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewFetchError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewFetchError(models.ErrCodeNavigation, msg, err)
	}
}
