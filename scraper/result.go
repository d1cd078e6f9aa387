package scraper

// FetchResult is the output of one browser fetch.
type FetchResult struct {
	// Fragments holds the extracted HTML, one entry per requested selector
	// that matched at least one element. Each entry is the outerHTML of
	// every match for that selector, newline-joined. When the request has
	// no selectors, Fragments holds the full document as a single entry.
	Fragments []string

	// SelectorsApplied reports whether the request's selectors were
	// evaluated in-page. The HTTP path leaves this false so the cleaner
	// knows to apply them itself.
	SelectorsApplied bool

	// Title is the page title after rendering.
	Title string

	// FinalURL is the page URL after any redirects. Link resolution uses
	// this as the base, not the requested URL.
	FinalURL string

	// StatusCode is the HTTP status of the navigation, 0 when unknown.
	StatusCode int
}
