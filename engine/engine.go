// Package engine selects how a page is fetched: plain HTTP with a browser
// TLS fingerprint, or a full headless-browser render. The Dispatcher applies
// the request's fetch mode, escalating from HTTP to the browser in auto mode
// when the page looks JS-rendered.
package engine

import (
	"context"

	"github.com/use-agent/getmd/models"
)

// Engine is the interface both fetch paths implement.
type Engine interface {
	// Name returns the engine identifier: "http" or "browser".
	Name() string

	// Fetch retrieves the page content for the given request.
	Fetch(ctx context.Context, req *models.FetchRequest) (*Result, error)
}

// Result is the output of a successful fetch, whichever engine produced it.
type Result struct {
	// Fragments holds the extracted HTML. The browser engine fills one
	// entry per matched selector; the HTTP engine always returns the full
	// document as a single entry.
	Fragments []string

	// SelectorsApplied reports whether the request's selectors were
	// already applied. The HTTP engine leaves this false so the cleaner
	// applies them post-fetch.
	SelectorsApplied bool

	Title       string
	FinalURL    string
	StatusCode  int
	FetchMethod string
}
