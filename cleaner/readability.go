package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length (in characters) for
// readability output to be considered valid. Below this threshold we assume
// the algorithm failed to locate the main content and fall back to the full
// document.
const minContentLength = 50

// ExtractContent runs the Mozilla Readability algorithm on the document.
//
// On success it returns the Article with clean HTML in Content, plain text
// in TextContent, and metadata (Title, Byline, Excerpt, SiteName, Language).
//
// Fallback behaviour (a fetch must never fail just because readability
// choked):
//   - URL parsing fails            → full document in Content
//   - readability.FromReader errs  → full document in Content
//   - extracted TextContent < 50   → full document in Content
//
// The second return value reports whether extraction actually happened.
func ExtractContent(rawHTML string, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, using full document",
			"url", sourceURL, "error", err,
		)
		return fallbackArticle(rawHTML), false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed, using full document",
			"url", sourceURL, "error", err,
		)
		return fallbackArticle(rawHTML), false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Warn("readability: extracted content too short, using full document",
			"url", sourceURL, "length", len(article.TextContent),
		)
		return fallbackArticle(rawHTML), false
	}

	return article, true
}

// fallbackArticle wraps the full document into an Article so the pipeline
// can proceed uniformly regardless of whether readability succeeded.
func fallbackArticle(rawHTML string) readability.Article {
	return readability.Article{
		Content:     rawHTML,
		TextContent: rawHTML,
	}
}
