package engine

import (
	"context"

	"github.com/use-agent/getmd/models"
	"github.com/use-agent/getmd/scraper"
)

// BrowserEngine renders pages in the shared headless-browser pool.
type BrowserEngine struct {
	scraper *scraper.Scraper
}

// NewBrowserEngine wraps an already-launched scraper.
func NewBrowserEngine(s *scraper.Scraper) *BrowserEngine {
	return &BrowserEngine{scraper: s}
}

func (e *BrowserEngine) Name() string { return models.FetchModeBrowser }

func (e *BrowserEngine) Fetch(ctx context.Context, req *models.FetchRequest) (*Result, error) {
	res, err := e.scraper.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Result{
		Fragments:        res.Fragments,
		SelectorsApplied: res.SelectorsApplied,
		Title:            res.Title,
		FinalURL:         res.FinalURL,
		StatusCode:       res.StatusCode,
		FetchMethod:      e.Name(),
	}, nil
}
