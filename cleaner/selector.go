package cleaner

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/getmd/models"
)

// ApplySelectors extracts HTML fragments from a full document, one fragment
// per selector that matched. Within a fragment the outer HTML of every match
// is newline-joined, mirroring what the in-page extraction produces on the
// browser path. Selectors that match nothing are skipped with a warning;
// when nothing matches at all the caller gets a NO_SELECTOR_MATCH error.
func ApplySelectors(rawHTML string, selectors []string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewFetchError(
			models.ErrCodeInternal,
			"failed to parse fetched HTML",
			err,
		)
	}

	var fragments []string
	for _, selector := range selectors {
		sel, err := cascadia.Parse(selector)
		if err != nil {
			return nil, models.NewFetchError(
				models.ErrCodeInvalidInput,
				"invalid CSS selector "+selector,
				err,
			)
		}

		matches := cascadia.QueryAll(doc, sel)
		if len(matches) == 0 {
			slog.Warn("no elements matched selector", "selector", selector)
			continue
		}

		var buf bytes.Buffer
		for i, node := range matches {
			if i > 0 {
				buf.WriteByte('\n')
			}
			if err := html.Render(&buf, node); err != nil {
				return nil, models.NewFetchError(
					models.ErrCodeInternal,
					"failed to render matched element",
					err,
				)
			}
		}
		fragments = append(fragments, buf.String())
	}

	if len(fragments) == 0 {
		return nil, models.NewFetchError(
			models.ErrCodeNoMatch,
			"no elements matched the specified selectors",
			nil,
		)
	}
	return fragments, nil
}
