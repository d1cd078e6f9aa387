// Package cleaner turns fetched HTML fragments into compact Markdown:
// selector extraction, readability, HTML→Markdown conversion, and the
// mdproc post-processing passes (link resolution, table compaction).
package cleaner

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/use-agent/getmd/mdproc"
	"github.com/use-agent/getmd/models"
)

// fragmentSeparator joins the Markdown of multiple fragments with a
// thematic break, so the boundaries between selector matches stay visible.
const fragmentSeparator = "\n\n---\n\n"

// Cleaner converts fetched HTML into post-processed Markdown. The converter
// is created once and reused across all requests (goroutine-safe).
type Cleaner struct {
	mdConverter *converter.Converter
}

// New initialises the Cleaner with a pre-configured Markdown converter.
func New() *Cleaner {
	return &Cleaner{
		mdConverter: newMarkdownConverter(),
	}
}

// Options carries the content-shaping parameters for one conversion.
type Options struct {
	// Selectors to apply when the fetch path did not apply them in-page.
	Selectors []string

	// SelectorsApplied is true when the fragments already are the
	// selector matches (browser path).
	SelectorsApplied bool

	// ExcludeSelectors are removed from every fragment before conversion.
	ExcludeSelectors []string

	// Readability extracts the main article when no selectors are given.
	Readability bool
}

// ConvertResult is the output of one Convert call.
type ConvertResult struct {
	Markdown string
	Title    string
	Tokens   int

	// Fragments is the number of HTML fragments that went into the
	// output after selector application and deduplication.
	Fragments int
}

// Convert runs the full pipeline on the fetched fragments.
//
// Flow:
//  1. Apply selectors when the fetch path didn't (HTTP path).
//  2. Readability extraction when requested and no selectors are in play.
//  3. Strip excluded elements from every fragment.
//  4. Drop exact-duplicate fragments (overlapping selectors).
//  5. Convert each fragment to Markdown, join with a thematic break.
//  6. Post-process: resolve relative links against pageURL, compact tables.
func (c *Cleaner) Convert(fragments []string, pageURL string, opts Options) (*ConvertResult, error) {
	if len(fragments) == 0 {
		return nil, models.NewFetchError(
			models.ErrCodeInternal,
			"nothing fetched to convert",
			nil,
		)
	}

	title := ""
	haveSelectors := opts.SelectorsApplied || len(opts.Selectors) > 0

	// ── 1. Selector extraction (HTTP path) ──────────────────────────
	if !opts.SelectorsApplied && len(opts.Selectors) > 0 {
		selected, err := ApplySelectors(fragments[0], opts.Selectors)
		if err != nil {
			return nil, err
		}
		fragments = selected
	}

	// ── 2. Readability ───────────────────────────────────────────────
	if opts.Readability && !haveSelectors {
		article, ok := ExtractContent(fragments[0], pageURL)
		if ok {
			title = article.Title
		}
		fragments = []string{article.Content}
	}

	// ── 3. Exclusion filtering ────────────────────────────────────────
	if len(opts.ExcludeSelectors) > 0 {
		for i, fragment := range fragments {
			fragments[i] = RemoveSelectors(fragment, opts.ExcludeSelectors)
		}
	}

	// ── 4. Duplicate fragment removal ─────────────────────────────────
	fragments = dedupFragments(fragments)

	// ── 5. Markdown conversion ────────────────────────────────────────
	parts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		md, err := c.mdConverter.ConvertString(fragment)
		if err != nil {
			return nil, models.NewFetchError(
				models.ErrCodeConversion,
				"markdown conversion failed",
				err,
			)
		}
		parts = append(parts, md)
	}
	markdown := strings.Join(parts, fragmentSeparator)

	// ── 6. Post-processing ────────────────────────────────────────────
	markdown = mdproc.Process(markdown, pageURL)

	return &ConvertResult{
		Markdown:  markdown,
		Title:     title,
		Tokens:    EstimateTokens(markdown),
		Fragments: len(fragments),
	}, nil
}

// dedupFragments removes exact duplicates while preserving order. Two
// selectors matching the same element would otherwise emit it twice.
func dedupFragments(fragments []string) []string {
	if len(fragments) < 2 {
		return fragments
	}
	seen := make(map[string]struct{}, len(fragments))
	out := fragments[:0]
	for _, f := range fragments {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
